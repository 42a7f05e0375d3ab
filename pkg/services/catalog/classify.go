package catalog

import (
	"strings"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// readPrefixes mark the read-only action family.
var readPrefixes = []string{"List", "Describe", "Get"}

// mutatingVerbs is the denylist of verbs that can never be scheduled,
// regardless of what a registry document claims.
var mutatingVerbs = []string{
	"Create", "Delete", "Put", "Update", "Modify", "Terminate",
	"Start", "Stop", "Reboot", "Run", "Attach", "Detach",
	"Associate", "Disassociate", "Enable", "Disable", "Tag", "Untag",
	"Set", "Cancel", "Accept", "Reject", "Import", "Restore", "Invoke",
}

// Classify decides whether an operation may be scheduled. The decision is
// deterministic: the same descriptor always yields the same class.
func Classify(d domain.OperationDescriptor) domain.SafetyClass {
	for _, verb := range mutatingVerbs {
		if strings.HasPrefix(d.Name, verb) {
			return domain.Excluded
		}
	}

	readLike := false
	for _, prefix := range readPrefixes {
		if strings.HasPrefix(d.Name, prefix) {
			readLike = true
			break
		}
	}
	if !readLike {
		return domain.Excluded
	}

	if len(d.RequiredParams) == 0 {
		return domain.SafeNoParams
	}

	// A producer mapping can satisfy exactly one required parameter.
	if d.Producer != nil && len(d.RequiredParams) == 1 && d.RequiredParams[0] == d.Producer.Param {
		return domain.SafeWithInferredParams
	}

	return domain.UnsafeUnknownParams
}
