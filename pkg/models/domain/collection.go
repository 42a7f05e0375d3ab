package domain

import "time"

// ParamSet is one concrete assignment of input parameters for a task.
type ParamSet map[string]string

// TaskStatus is the terminal outcome of a collection task.
type TaskStatus string

const (
	TaskSuccess TaskStatus = "success"
	TaskFailed  TaskStatus = "error"
	TaskSkipped TaskStatus = "skipped"
)

// ErrorKind classifies a failed or skipped remote call.
type ErrorKind string

const (
	ErrAccessDenied ErrorKind = "AccessDenied"
	ErrThrottled    ErrorKind = "Throttled"
	ErrNotFound     ErrorKind = "NotFound"
	ErrUnsupported  ErrorKind = "Unsupported"
	ErrParse        ErrorKind = "ParseError"
	ErrConnection   ErrorKind = "ConnectionError"
)

// CollectionTask is one scheduled invocation of an operation against a
// (service, region) pair. Tasks are consumed exactly once; retries happen
// inside the executor and surface as the attempt count on the result.
// A follow-up operation carries one ParamSet per item its producer
// discovered, already capped; ParamSets is nil for no-param operations.
type CollectionTask struct {
	Descriptor OperationDescriptor
	Region     string
	ParamSets  []ParamSet
}

// Key identifies the raw store slot this task writes to.
func (t CollectionTask) Key() RecordKey {
	return RecordKey{
		Service:   t.Descriptor.Service,
		Region:    t.Region,
		Operation: t.Descriptor.Name,
	}
}

// CollectionResult is the terminal record of one task. Exactly one result
// is produced per task and written once to the raw store.
type CollectionResult struct {
	Task      CollectionTask
	Status    TaskStatus
	Pages     []map[string]any
	Truncated bool
	ErrKind   ErrorKind
	ErrCode   string
	ErrMsg    string
	Attempts  int
	Elapsed   time.Duration
}

// RecordKey addresses one raw record: raw/{service}/{region}/{operation}.
type RecordKey struct {
	Service   string
	Region    string
	Operation string
}

// RawRecord is the on-disk unit of collected data. Last write for a key
// wins; a record is either data or error, never both.
type RawRecord struct {
	Metadata RecordMetadata   `json:"metadata"`
	Data     []map[string]any `json:"data,omitempty"`
	Error    *RecordError     `json:"error,omitempty"`
}

type RecordMetadata struct {
	Service   string    `json:"service"`
	Region    string    `json:"region"`
	Operation string    `json:"operation"`
	Account   string    `json:"account,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Paginated bool      `json:"paginated"`
	Pages     int       `json:"pages,omitempty"`
	Truncated bool      `json:"truncated,omitempty"`
	Attempts  int       `json:"attempts,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms,omitempty"`
}

type RecordError struct {
	Kind    string `json:"kind"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// CollectionStats summarizes one collection run. Partial failures live
// here, not in the process exit status.
type CollectionStats struct {
	ServicesDiscovered    int       `json:"services_discovered"`
	OperationsExecuted    int       `json:"operations_executed"`
	OperationsSuccessful  int       `json:"operations_successful"`
	OperationsFailed      int       `json:"operations_failed"`
	OperationsSkipped     int       `json:"operations_skipped"`
	FollowUpsGenerated    int       `json:"followups_generated"`
	ElapsedSeconds        float64   `json:"elapsed_seconds"`
	Timestamp             time.Time `json:"timestamp"`
	InterruptedBeforeWork bool      `json:"interrupted_before_work,omitempty"`
}

// AccountMetadata identifies the account a run was collected from.
// Every field except Timestamp is best effort.
type AccountMetadata struct {
	AccountID    string    `json:"account_id,omitempty"`
	AccountAlias string    `json:"account_alias,omitempty"`
	ARN          string    `json:"arn,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Regions      []string  `json:"regions,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
