package rawstore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

func record(service, region, operation string) domain.RawRecord {
	return domain.RawRecord{
		Metadata: domain.RecordMetadata{
			Service:   service,
			Region:    region,
			Operation: operation,
			Status:    string(domain.TaskSuccess),
		},
		Data: []map[string]any{{"Items": []any{map[string]any{"Name": operation}}}},
	}
}

func TestStorePutWalk(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(record("s3", "us-east-1", "ListBuckets")))
	require.NoError(t, store.Put(record("ec2", "us-east-1", "DescribeVpcs")))
	require.NoError(t, store.Put(record("ec2", "eu-west-1", "DescribeVpcs")))

	t.Run("walk returns every record", func(t *testing.T) {
		var keys []string
		err := store.Walk(Filter{}, func(rec domain.RawRecord) error {
			m := rec.Metadata
			keys = append(keys, m.Service+"/"+m.Region+"/"+m.Operation)
			return nil
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"s3/us-east-1/ListBuckets",
			"ec2/us-east-1/DescribeVpcs",
			"ec2/eu-west-1/DescribeVpcs",
		}, keys)
	})

	t.Run("filters narrow the walk", func(t *testing.T) {
		var count int
		err := store.Walk(Filter{Service: "ec2", Region: "eu-west-1"}, func(domain.RawRecord) error {
			count++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("payload round-trips", func(t *testing.T) {
		var got domain.RawRecord
		err := store.Walk(Filter{Service: "s3"}, func(rec domain.RawRecord) error {
			got = rec
			return nil
		})
		require.NoError(t, err)
		require.Len(t, got.Data, 1)
		items := got.Data[0]["Items"].([]any)
		assert.Equal(t, "ListBuckets", items[0].(map[string]any)["Name"])
	})
}

func TestStoreOverwrite(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first := record("iam", "us-east-1", "ListRoles")
	require.NoError(t, store.Put(first))

	second := first
	second.Data = []map[string]any{{"Roles": []any{}}}
	require.NoError(t, store.Put(second))

	var records []domain.RawRecord
	require.NoError(t, store.Walk(Filter{}, func(rec domain.RawRecord) error {
		records = append(records, rec)
		return nil
	}))
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Data[0], "Roles")
}

func TestStoreConcurrentPut(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Put(record("ec2", "us-east-1", "DescribeSubnets")))
		}()
	}
	wg.Wait()

	var count int
	require.NoError(t, store.Walk(Filter{}, func(domain.RawRecord) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count)
}

func TestStorePutValidation(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	err = store.Put(domain.RawRecord{Metadata: domain.RecordMetadata{Service: "s3"}})
	assert.Error(t, err)
}

func TestStoreNoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(record("rds", "us-east-1", "DescribeDBInstances")))

	entries, err := os.ReadDir(filepath.Join(dir, "raw", "rds", "us-east-1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DescribeDBInstances.json.gz", entries[0].Name())
}
