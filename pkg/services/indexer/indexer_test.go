package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/store/rawstore"
)

type memWalker []domain.RawRecord

func (w memWalker) Walk(filter rawstore.Filter, fn func(domain.RawRecord) error) error {
	for _, rec := range w {
		m := rec.Metadata
		if filter.Service != "" && filter.Service != m.Service {
			continue
		}
		if filter.Region != "" && filter.Region != m.Region {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func success(service, region, operation string, pages ...map[string]any) domain.RawRecord {
	return domain.RawRecord{
		Metadata: domain.RecordMetadata{
			Service:   service,
			Region:    region,
			Operation: operation,
			Account:   "123456789012",
			Status:    string(domain.TaskSuccess),
			Pages:     len(pages),
		},
		Data: pages,
	}
}

func failure(service, region, operation string, kind domain.ErrorKind, status domain.TaskStatus) domain.RawRecord {
	return domain.RawRecord{
		Metadata: domain.RecordMetadata{
			Service:   service,
			Region:    region,
			Operation: operation,
			Status:    string(status),
		},
		Error: &domain.RecordError{Kind: string(kind), Message: "boom"},
	}
}

func TestBuild(t *testing.T) {
	store := memWalker{
		success("ec2", "us-east-1", "DescribeVpcs", map[string]any{
			"Vpcs": []any{
				map[string]any{"VpcId": "vpc-1"},
				map[string]any{"VpcId": "vpc-2"},
			},
		}),
		success("ec2", "eu-west-1", "DescribeVpcs", map[string]any{
			"Vpcs": []any{map[string]any{"VpcId": "vpc-3"}},
		}),
		success("s3", "us-east-1", "ListBuckets", map[string]any{
			"Buckets": []any{map[string]any{"Name": "alpha"}},
		}),
		failure("cloudtrail", "us-east-1", "ListTrails", domain.ErrAccessDenied, domain.TaskSkipped),
	}

	ix, err := Build(store)
	require.NoError(t, err)

	assert.Equal(t, "123456789012", ix.Account)
	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, ix.Regions)
	assert.Equal(t, 4, ix.TotalOperations)
	assert.Equal(t, 4, ix.TotalResources)

	ec2 := ix.Service("ec2")
	require.NotNil(t, ec2)
	assert.Equal(t, 3, ec2.ResourceCount)
	assert.Equal(t, []string{"DescribeVpcs"}, ec2.Operations)
	assert.Equal(t, 2, ec2.Successful)

	trail := ix.Service("cloudtrail")
	require.NotNil(t, trail)
	assert.Equal(t, 1, trail.Skipped)
	assert.False(t, ix.OperationSucceeded("cloudtrail", "ListTrails"))
	assert.Equal(t, string(domain.ErrAccessDenied), ix.ErrorKindFor("cloudtrail", "ListTrails"))

	assert.Equal(t, []domain.Rank{{Name: "ec2", Resources: 3}, {Name: "s3", Resources: 1}, {Name: "cloudtrail", Resources: 0}}, ix.TopServices)
	assert.Equal(t, []domain.Rank{{Name: "us-east-1", Resources: 3}, {Name: "eu-west-1", Resources: 1}}, ix.TopRegions)
}

func TestBuildDeduplicatesAcrossPages(t *testing.T) {
	store := memWalker{
		success("iam", "us-east-1", "ListRoles",
			map[string]any{"Roles": []any{
				map[string]any{"RoleName": "admin"},
				map[string]any{"RoleName": "reader"},
			}},
			map[string]any{"Roles": []any{
				map[string]any{"RoleName": "reader"},
			}},
		),
	}

	ix, err := Build(store)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.ResourceTotal("iam", "ListRoles"))
}

func TestBuildNestedInstances(t *testing.T) {
	store := memWalker{
		success("ec2", "us-east-1", "DescribeInstances", map[string]any{
			"Reservations": []any{
				map[string]any{"Instances": []any{
					map[string]any{"InstanceId": "i-1"},
					map[string]any{"InstanceId": "i-2"},
				}},
				map[string]any{"Instances": []any{
					map[string]any{"InstanceId": "i-2"},
				}},
			},
		}),
	}

	ix, err := Build(store)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.ResourceTotal("ec2", "DescribeInstances"))
}

func TestBuildUnmappedOperation(t *testing.T) {
	store := memWalker{
		success("ec2", "us-east-1", "DescribeSomethingNew", map[string]any{
			"Things": []any{map[string]any{"Id": "t-1"}},
		}),
	}

	ix, err := Build(store)
	require.NoError(t, err)

	// No extraction rule: counted as zero and not treated as presence.
	assert.Equal(t, 0, ix.ResourceTotal("ec2", "DescribeSomethingNew"))
	assert.False(t, ix.OperationSucceeded("ec2", "DescribeSomethingNew"))
}

func TestBuildPresenceOnlyAttributes(t *testing.T) {
	store := memWalker{
		success("cloudtrail", "us-east-1", "GetTrailStatus", map[string]any{
			"IsLogging": false,
		}),
	}

	ix, err := Build(store)
	require.NoError(t, err)

	svc := ix.Service("cloudtrail")
	require.NotNil(t, svc)
	entries := svc.Regions["us-east-1"].Entries
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Present)
	assert.Equal(t, map[string]string{"is_logging": "false"}, entries[0].Attributes)
	assert.Equal(t, 0, entries[0].Count)
}

func TestBuildIsDeterministic(t *testing.T) {
	store := memWalker{
		success("s3", "us-east-1", "ListBuckets", map[string]any{
			"Buckets": []any{map[string]any{"Name": "alpha"}},
		}),
		success("ec2", "us-east-1", "DescribeVpcs", map[string]any{
			"Vpcs": []any{map[string]any{"VpcId": "vpc-1"}},
		}),
	}

	first, err := Build(store)
	require.NoError(t, err)
	second, err := Build(store)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
