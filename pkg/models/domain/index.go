package domain

// IndexEntry is the normalized view of one raw record.
type IndexEntry struct {
	Service      string            `json:"service"`
	Region       string            `json:"region"`
	Operation    string            `json:"operation"`
	ResourceType string            `json:"resource_type,omitempty"`
	Count        int               `json:"count"`
	Present      bool              `json:"present"`
	ErrorKind    string            `json:"error_kind,omitempty"`
	Truncated    bool              `json:"truncated,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// RegionIndex groups entries for one service in one region.
type RegionIndex struct {
	Entries    []IndexEntry `json:"entries"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
}

// ServiceIndex aggregates one service across regions.
type ServiceIndex struct {
	Name          string                  `json:"name"`
	Regions       map[string]*RegionIndex `json:"regions"`
	Operations    []string                `json:"operations"`
	ResourceCount int                     `json:"resource_count"`
	Successful    int                     `json:"successful"`
	Failed        int                     `json:"failed"`
	Skipped       int                     `json:"skipped"`
}

// Rank is one row of a top-N ranking.
type Rank struct {
	Name      string `json:"name"`
	Resources int    `json:"resources"`
}

// Index is the queryable representation of a run, fully recomputed on
// each analysis pass. Counts are best effort: truncated or
// permission-limited listings undercount by design of the collection
// phase.
type Index struct {
	Account         string                   `json:"account,omitempty"`
	Services        map[string]*ServiceIndex `json:"services"`
	Regions         []string                 `json:"regions"`
	TotalOperations int                      `json:"total_operations"`
	TotalResources  int                      `json:"total_resources"`
	TopServices     []Rank                   `json:"top_services"`
	TopRegions      []Rank                   `json:"top_regions"`
}

// Service returns the service index or nil when the service was not
// collected at all.
func (ix *Index) Service(name string) *ServiceIndex {
	if ix.Services == nil {
		return nil
	}
	return ix.Services[name]
}

// HasService reports whether any record for the service exists.
func (ix *Index) HasService(name string) bool {
	return ix.Service(name) != nil
}

// OperationSucceeded reports whether the operation completed successfully
// in at least one region.
func (ix *Index) OperationSucceeded(service, operation string) bool {
	svc := ix.Service(service)
	if svc == nil {
		return false
	}
	for _, region := range svc.Regions {
		for _, e := range region.Entries {
			if e.Operation == operation && e.Present {
				return true
			}
		}
	}
	return false
}

// ResourceTotal sums the counted resources for one operation across
// regions.
func (ix *Index) ResourceTotal(service, operation string) int {
	svc := ix.Service(service)
	if svc == nil {
		return 0
	}
	total := 0
	for _, region := range svc.Regions {
		for _, e := range region.Entries {
			if e.Operation == operation {
				total += e.Count
			}
		}
	}
	return total
}

// ErrorKindFor returns the recorded error kind for an operation, or the
// empty string when it succeeded or was never collected.
func (ix *Index) ErrorKindFor(service, operation string) string {
	svc := ix.Service(service)
	if svc == nil {
		return ""
	}
	for _, region := range svc.Regions {
		for _, e := range region.Entries {
			if e.Operation == operation && e.ErrorKind != "" {
				return e.ErrorKind
			}
		}
	}
	return ""
}
