package domain

// SafetyClass is the scheduling decision for a single operation. It is a
// pure function of the operation's registry entry and never changes at
// runtime.
type SafetyClass int

const (
	// SafeNoParams is a read-only operation with no required input.
	SafeNoParams SafetyClass = iota
	// SafeWithInferredParams requires input that a companion list
	// operation in the same service can supply.
	SafeWithInferredParams
	// UnsafeUnknownParams requires input with no known producer; the
	// operation is never scheduled.
	UnsafeUnknownParams
	// Excluded is outside the read-only action family.
	Excluded
)

func (s SafetyClass) String() string {
	switch s {
	case SafeNoParams:
		return "safe"
	case SafeWithInferredParams:
		return "safe_inferred"
	case UnsafeUnknownParams:
		return "unsafe"
	default:
		return "excluded"
	}
}

// ProducerRef names the list operation whose items supply a required
// parameter for a follow-up describe/get operation.
type ProducerRef struct {
	// Operation is the producing list operation, same service.
	Operation string
	// Items is the principal list field of the producer's payload.
	Items string
	// Field is the key within each item that holds the identifier.
	Field string
	// Param is the required input parameter filled from Field.
	Param string
}

// OperationDescriptor describes one callable API action. Descriptors are
// loaded once from the capability registry and never mutated.
type OperationDescriptor struct {
	Service        string
	Name           string
	RequiredParams []string
	Paginated      bool
	// Catalog marks operations that page through large static
	// catalogs (pricing, instance types); collection fetches a single
	// page for these.
	Catalog  bool
	Producer *ProducerRef
}

// Key returns the service-qualified operation name.
func (d OperationDescriptor) Key() string {
	return d.Service + "/" + d.Name
}
