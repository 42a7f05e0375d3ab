package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

func TestClassify(t *testing.T) {
	producer := &domain.ProducerRef{
		Operation: "ListBuckets",
		Items:     "Buckets",
		Field:     "Name",
		Param:     "Bucket",
	}

	tests := []struct {
		name     string
		op       domain.OperationDescriptor
		expected domain.SafetyClass
	}{
		{
			name:     "list without params is safe",
			op:       domain.OperationDescriptor{Service: "s3", Name: "ListBuckets"},
			expected: domain.SafeNoParams,
		},
		{
			name:     "describe without params is safe",
			op:       domain.OperationDescriptor{Service: "ec2", Name: "DescribeInstances"},
			expected: domain.SafeNoParams,
		},
		{
			name: "get with producer-covered param is inferred",
			op: domain.OperationDescriptor{
				Service:        "s3",
				Name:           "GetBucketVersioning",
				RequiredParams: []string{"Bucket"},
				Producer:       producer,
			},
			expected: domain.SafeWithInferredParams,
		},
		{
			name: "required param without producer is unsafe",
			op: domain.OperationDescriptor{
				Service:        "s3",
				Name:           "GetBucketPolicy",
				RequiredParams: []string{"Bucket"},
			},
			expected: domain.UnsafeUnknownParams,
		},
		{
			name: "two required params stay unsafe even with a producer",
			op: domain.OperationDescriptor{
				Service:        "s3",
				Name:           "GetObjectTagging",
				RequiredParams: []string{"Bucket", "Key"},
				Producer:       producer,
			},
			expected: domain.UnsafeUnknownParams,
		},
		{
			name: "producer param mismatch is unsafe",
			op: domain.OperationDescriptor{
				Service:        "s3",
				Name:           "GetBucketVersioning",
				RequiredParams: []string{"BucketName"},
				Producer:       producer,
			},
			expected: domain.UnsafeUnknownParams,
		},
		{
			name:     "mutating verb is excluded",
			op:       domain.OperationDescriptor{Service: "ec2", Name: "TerminateInstances"},
			expected: domain.Excluded,
		},
		{
			name:     "non read-like verb is excluded",
			op:       domain.OperationDescriptor{Service: "s3", Name: "HeadBucket"},
			expected: domain.Excluded,
		},
		{
			name:     "get prefixed by a mutating verb is excluded",
			op:       domain.OperationDescriptor{Service: "iam", Name: "PutRolePolicy"},
			expected: domain.Excluded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.op))
		})
	}
}

// Every operation in the shipped registry must classify as schedulable
// or excluded without panicking, and nothing mutating may slip through.
func TestClassifyShippedRegistry(t *testing.T) {
	registry, err := NewRegistry(testLogger(t))
	require.NoError(t, err)

	for _, op := range registry.Operations() {
		class := Classify(op)
		assert.NotEqual(t, domain.Excluded, class,
			"registry ships operation %s that can never run", op.Key())

		switch class {
		case domain.SafeNoParams:
			assert.Empty(t, op.RequiredParams, op.Key())
		case domain.SafeWithInferredParams:
			require.NotNil(t, op.Producer, op.Key())
			_, ok := registry.Descriptor(op.Service, op.Producer.Operation)
			assert.True(t, ok, "producer of %s not in registry", op.Key())
		}
	}
}
