package awsclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected domain.ErrorKind
	}{
		{"throttling", &smithy.GenericAPIError{Code: "Throttling"}, domain.ErrThrottled},
		{"throttling exception", &smithy.GenericAPIError{Code: "ThrottlingException"}, domain.ErrThrottled},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, domain.ErrThrottled},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, domain.ErrAccessDenied},
		{"unauthorized ec2", &smithy.GenericAPIError{Code: "UnauthorizedOperation"}, domain.ErrAccessDenied},
		{"opt-in required", &smithy.GenericAPIError{Code: "OptInRequired"}, domain.ErrUnsupported},
		{"no such entity", &smithy.GenericAPIError{Code: "NoSuchEntity"}, domain.ErrNotFound},
		{"trail not found", &smithy.GenericAPIError{Code: "TrailNotFoundException"}, domain.ErrNotFound},
		{"encryption config absent", &smithy.GenericAPIError{Code: "ServerSideEncryptionConfigurationNotFoundError"}, domain.ErrNotFound},
		{"no such bucket policy", &smithy.GenericAPIError{Code: "NoSuchBucketPolicy"}, domain.ErrNotFound},
		{"unknown api code", &smithy.GenericAPIError{Code: "ValidationException"}, domain.ErrParse},
		{"unsupported sentinel", ErrUnsupportedOperation, domain.ErrUnsupported},
		{"wrapped unsupported sentinel", fmt.Errorf("invoke: %w", ErrUnsupportedOperation), domain.ErrUnsupported},
		{"deadline exceeded", context.DeadlineExceeded, domain.ErrConnection},
		{"net timeout", timeoutErr{}, domain.ErrConnection},
		{"plain error", errors.New("weird"), domain.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyError(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(domain.ErrThrottled))
	assert.True(t, IsTransient(domain.ErrConnection))
	assert.False(t, IsTransient(domain.ErrAccessDenied))
	assert.False(t, IsTransient(domain.ErrNotFound))
	assert.False(t, IsTransient(domain.ErrUnsupported))
	assert.False(t, IsTransient(domain.ErrParse))
}
