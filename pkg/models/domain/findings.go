package domain

// Severity orders findings from informational to high. The numeric order
// matters: scoring and report ordering rely on it.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "info"
	}
}

// Evaluation domains, fixed set.
const (
	DomainSecurity    = "Security"
	DomainReliability = "Reliability"
	DomainCost        = "Cost Optimization"
	DomainOperations  = "Operational Excellence"
)

// Domains lists the evaluation domains in report order.
func Domains() []string {
	return []string{DomainSecurity, DomainReliability, DomainCost, DomainOperations}
}

// EvidenceRef points a finding back at the index entries that triggered
// it. For absence findings Note explains what was expected and missing.
type EvidenceRef struct {
	Service   string `json:"service,omitempty"`
	Region    string `json:"region,omitempty"`
	Operation string `json:"operation,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Finding is one detected condition. Findings are regenerated whole on
// every analysis run and never mutated in place.
type Finding struct {
	ID             string        `json:"id"`
	Domain         string        `json:"domain"`
	Severity       Severity      `json:"-"`
	SeverityLabel  string        `json:"severity"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Impact         string        `json:"impact"`
	Effort         string        `json:"effort"`
	Recommendation string        `json:"recommendation"`
	Evidence       []EvidenceRef `json:"evidence"`
}

// FindingsReport is the ordered finding list plus the severity summary
// table consumed by the rendering layer.
type FindingsReport struct {
	Findings   []Finding                 `json:"findings"`
	BySeverity map[string]int            `json:"findings_by_severity"`
	ByDomain   map[string]map[string]int `json:"findings_by_domain"`
	Total      int                       `json:"total_findings"`
}
