package account

import (
	"context"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/store/awsclient"
)

type stubCaller struct {
	responses map[string]*awsclient.Page
	errs      map[string]error
}

func (s *stubCaller) Invoke(_ context.Context, call awsclient.Call) (*awsclient.Page, error) {
	key := call.Service + "/" + call.Operation
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	if page, ok := s.responses[key]; ok {
		return page, nil
	}
	return nil, awsclient.ErrUnsupportedOperation
}

func TestDescribe(t *testing.T) {
	caller := &stubCaller{
		responses: map[string]*awsclient.Page{
			"sts/GetCallerIdentity": {Body: map[string]any{
				"Account": "123456789012",
				"Arn":     "arn:aws:iam::123456789012:user/audit",
				"UserId":  "AIDEXAMPLE",
			}},
			"iam/ListAccountAliases": {Body: map[string]any{
				"AccountAliases": []any{"prod-main"},
			}},
			"ec2/DescribeRegions": {Body: map[string]any{
				"Regions": []any{
					map[string]any{"RegionName": "us-east-1"},
					map[string]any{"RegionName": "eu-west-1"},
				},
			}},
		},
	}

	meta := NewExplorer(caller, "us-east-1").Describe(context.Background())

	assert.Equal(t, "123456789012", meta.AccountID)
	assert.Equal(t, "prod-main", meta.AccountAlias)
	assert.Equal(t, "arn:aws:iam::123456789012:user/audit", meta.ARN)
	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, meta.Regions)
	assert.False(t, meta.Timestamp.IsZero())
}

func TestDescribeBestEffort(t *testing.T) {
	denied := &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}
	caller := &stubCaller{
		responses: map[string]*awsclient.Page{
			"sts/GetCallerIdentity": {Body: map[string]any{"Account": "123456789012"}},
		},
		errs: map[string]error{
			"iam/ListAccountAliases": denied,
			"ec2/DescribeRegions":    denied,
		},
	}

	meta := NewExplorer(caller, "us-east-1").Describe(context.Background())

	assert.Equal(t, "123456789012", meta.AccountID)
	assert.Empty(t, meta.AccountAlias)
	assert.Empty(t, meta.Regions)
	assert.False(t, meta.Timestamp.IsZero())
}

func TestMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	meta := domain.AccountMetadata{
		AccountID:    "123456789012",
		AccountAlias: "prod",
		Regions:      []string{"us-east-1"},
		Timestamp:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, WriteMetadata(dir, meta))
	got, err := ReadMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, meta, got)
}

func TestReadMetadataMissing(t *testing.T) {
	_, err := ReadMetadata(t.TempDir())
	assert.Error(t, err)
}

func TestRunDirName(t *testing.T) {
	start := time.Date(2026, 8, 30, 9, 15, 42, 0, time.UTC)

	tests := []struct {
		name     string
		meta     domain.AccountMetadata
		expected string
	}{
		{
			name:     "alias preferred",
			meta:     domain.AccountMetadata{AccountID: "123456789012", AccountAlias: "Prod Main"},
			expected: "run-20260830-091542-prod-main",
		},
		{
			name:     "falls back to account id",
			meta:     domain.AccountMetadata{AccountID: "123456789012"},
			expected: "run-20260830-091542-123456789012",
		},
		{
			name:     "unknown identity",
			meta:     domain.AccountMetadata{},
			expected: "run-20260830-091542-unknown",
		},
		{
			name:     "hostile characters stripped",
			meta:     domain.AccountMetadata{AccountAlias: "../a/b!!"},
			expected: "run-20260830-091542-ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RunDirName(start, tt.meta))
		})
	}
}
