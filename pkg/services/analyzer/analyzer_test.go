package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/account"
	"github.com/de-tools/cloud-atlas/pkg/store/rawstore"
)

func seedRun(t *testing.T) string {
	t.Helper()
	runDir := filepath.Join(t.TempDir(), "run-20260830-090000-prod")
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	require.NoError(t, account.WriteMetadata(runDir, domain.AccountMetadata{
		AccountID: "123456789012",
		Timestamp: time.Now().UTC(),
	}))

	store, err := rawstore.NewStore(runDir)
	require.NoError(t, err)

	put := func(service, region, operation string, status domain.TaskStatus, data []map[string]any, errKind string) {
		rec := domain.RawRecord{
			Metadata: domain.RecordMetadata{
				Service:   service,
				Region:    region,
				Operation: operation,
				Status:    string(status),
			},
			Data: data,
		}
		if errKind != "" {
			rec.Error = &domain.RecordError{Kind: errKind, Message: "recorded"}
		}
		require.NoError(t, store.Put(rec))
	}

	put("ec2", "us-east-1", "DescribeVpcs", domain.TaskSuccess, []map[string]any{{
		"Vpcs": []any{map[string]any{"VpcId": "vpc-1"}},
	}}, "")
	put("ec2", "us-east-1", "DescribeFlowLogs", domain.TaskSuccess, []map[string]any{{
		"FlowLogs": []any{},
	}}, "")
	put("cloudtrail", "us-east-1", "ListTrails", domain.TaskSkipped, nil, string(domain.ErrNotFound))

	return runDir
}

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return New(zerolog.New(zerolog.NewTestWriter(t)))
}

func TestAnalyze(t *testing.T) {
	runDir := seedRun(t)

	result, err := testAnalyzer(t).Analyze(context.Background(), runDir)
	require.NoError(t, err)

	assert.Equal(t, "123456789012", result.Index.Account)
	assert.Equal(t, 1, result.Index.TotalResources)

	ids := make([]string, 0, len(result.Findings.Findings))
	for _, f := range result.Findings.Findings {
		ids = append(ids, f.ID)
	}
	assert.Contains(t, ids, "SEC-001")
	assert.Contains(t, ids, "SEC-003")

	assert.Equal(t, result.Summary.FindingsCount, result.Findings.Total)
	assert.Equal(t, result.Summary.OverallScore, result.Scores.Overall)

	for _, name := range []string{IndexFile, FindingsFile, ScoresFile, SummaryFile} {
		data, err := os.ReadFile(filepath.Join(runDir, name))
		require.NoError(t, err, name)
		assert.True(t, json.Valid(data), name)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	runDir := seedRun(t)
	a := testAnalyzer(t)

	first, err := a.Analyze(context.Background(), runDir)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), runDir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestListRuns(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"run-20260701-000000-a",
		"run-20260830-000000-b",
		"notarun",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}

	runs, err := ListRuns(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-20260830-000000-b", "run-20260701-000000-a"}, runs)
}

func TestListRunsMissingRoot(t *testing.T) {
	runs, err := ListRuns(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReadArtifactMissing(t *testing.T) {
	_, err := ReadArtifact(t.TempDir(), IndexFile)
	assert.ErrorIs(t, err, ErrNoArtifact)
}
