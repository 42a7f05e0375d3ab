package findings

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// Engine evaluates the rule table against an index.
type Engine struct {
	rules  []Rule
	logger zerolog.Logger
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{rules: rules, logger: logger.With().Str("component", "findings").Logger()}
}

// Evaluate runs every rule against the index and returns the ordered
// report. Evaluation is pure: the same index always produces the same
// findings in the same order.
func (e *Engine) Evaluate(ix *domain.Index) domain.FindingsReport {
	report := domain.FindingsReport{
		BySeverity: map[string]int{},
		ByDomain:   map[string]map[string]int{},
	}
	for _, d := range domain.Domains() {
		report.ByDomain[d] = map[string]int{}
	}

	for _, rule := range e.rules {
		fired, evidence := rule.Predicate(ix)
		if !fired {
			continue
		}
		sortEvidence(evidence)
		report.Findings = append(report.Findings, domain.Finding{
			ID:             rule.ID,
			Domain:         rule.Domain,
			Severity:       rule.Severity,
			SeverityLabel:  rule.Severity.String(),
			Title:          rule.Title,
			Description:    rule.Description,
			Impact:         rule.Impact,
			Effort:         rule.Effort,
			Recommendation: rule.Recommendation,
			Evidence:       evidence,
		})
		e.logger.Debug().
			Str("rule", rule.ID).
			Str("severity", rule.Severity.String()).
			Msg("finding raised")
	}

	domainOrder := make(map[string]int, len(domain.Domains()))
	for i, d := range domain.Domains() {
		domainOrder[d] = i
	}
	sort.SliceStable(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.Domain != b.Domain {
			return domainOrder[a.Domain] < domainOrder[b.Domain]
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		return a.ID < b.ID
	})

	for _, f := range report.Findings {
		report.BySeverity[f.SeverityLabel]++
		report.ByDomain[f.Domain][f.SeverityLabel]++
	}
	report.Total = len(report.Findings)
	return report
}

// attributeEquals fires when any region entry for the operation carries
// the attribute with the given value.
func attributeEquals(ix *domain.Index, service, operation, attr, want string) (bool, []domain.EvidenceRef) {
	svc := ix.Service(service)
	if svc == nil {
		return false, nil
	}
	var refs []domain.EvidenceRef
	for region, rix := range svc.Regions {
		for _, e := range rix.Entries {
			if e.Operation != operation || e.Attributes[attr] != want {
				continue
			}
			refs = append(refs, domain.EvidenceRef{
				Service:   service,
				Region:    region,
				Operation: operation,
				Note:      attr + "=" + want,
			})
		}
	}
	return len(refs) > 0, refs
}

func sortEvidence(refs []domain.EvidenceRef) {
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		return a.Operation < b.Operation
	})
}
