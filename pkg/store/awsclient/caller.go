package awsclient

import (
	"context"
	"errors"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// ErrUnsupportedOperation marks a registry operation with no SDK binding
// in this build. The executor records it as skipped, not failed.
var ErrUnsupportedOperation = errors.New("operation not supported by this client")

// Call requests one page of one operation.
type Call struct {
	Service   string
	Region    string
	Operation string
	Params    domain.ParamSet
	PageToken string
}

// Page is one page of a response, already decoded to a JSON-shaped map.
// NextToken is empty on the last page.
type Page struct {
	Body      map[string]any
	NextToken string
}

// Caller invokes a single page of a remote operation. Implementations
// must be safe for concurrent use; the collector calls from many workers.
type Caller interface {
	Invoke(ctx context.Context, call Call) (*Page, error)
}
