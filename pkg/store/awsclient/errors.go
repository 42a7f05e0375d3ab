package awsclient

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

var throttleCodes = map[string]bool{
	"Throttling":               true,
	"ThrottlingException":      true,
	"TooManyRequestsException": true,
	"RequestLimitExceeded":     true,
	"RequestThrottled":         true,
	"SlowDown":                 true,
	"ServiceUnavailable":       true,
}

var accessDeniedCodes = map[string]bool{
	"AccessDenied":          true,
	"AccessDeniedException": true,
	"UnauthorizedOperation": true,
	"UnauthorizedAccess":    true,
	"AuthorizationError":    true,
}

var unsupportedCodes = map[string]bool{
	"InvalidAction":               true,
	"UnsupportedOperation":        true,
	"OperationNotPermitted":       true,
	"OptInRequired":               true,
	"SubscriptionRequired":        true,
	"InvalidClientTokenId":        true,
	"UnrecognizedClientException": true,
}

// ClassifyError maps a remote failure onto the error taxonomy. Timeouts
// and connection resets classify as transient connection errors so the
// retry policy picks them up.
func ClassifyError(err error) domain.ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnsupportedOperation) {
		return domain.ErrUnsupported
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrConnection
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case throttleCodes[code]:
			return domain.ErrThrottled
		case accessDeniedCodes[code]:
			return domain.ErrAccessDenied
		case unsupportedCodes[code]:
			return domain.ErrUnsupported
		case isNotFoundCode(code):
			return domain.ErrNotFound
		}
		// Some services report encryption/configuration absence as a
		// distinct error rather than an empty payload.
		if strings.Contains(code, "NotFound") || strings.HasPrefix(code, "NoSuch") {
			return domain.ErrNotFound
		}
		return domain.ErrParse
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.ErrConnection
	}

	return domain.ErrParse
}

func isNotFoundCode(code string) bool {
	switch code {
	case "NoSuchEntity", "ResourceNotFoundException", "NoSuchBucket",
		"TrailNotFoundException", "NoSuchConfigurationRecorderException",
		"ServerSideEncryptionConfigurationNotFoundError":
		return true
	}
	return false
}

// IsTransient reports whether a kind is subject to the retry policy.
func IsTransient(kind domain.ErrorKind) bool {
	return kind == domain.ErrThrottled || kind == domain.ErrConnection
}
