package scoring

import (
	"fmt"
	"math"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// Score maps the findings of one domain to a 1-5 maturity score via a
// fixed decision table. More or worse findings never raise the score.
func Score(findings []domain.Finding) (int, []string) {
	var high, medium, low int
	var rationale []string
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityHigh:
			high++
		case domain.SeverityMedium:
			medium++
		case domain.SeverityLow:
			low++
		}
		if f.Severity != domain.SeverityInfo {
			rationale = append(rationale, fmt.Sprintf("%s: %s", f.SeverityLabel, f.Title))
		}
	}

	score := 5
	switch {
	case high >= 2:
		score = 1
	case high == 1 || medium >= 2:
		score = 2
	case medium == 1 || low >= 2:
		score = 3
	case low == 1:
		score = 4
	}
	if score == 5 {
		rationale = append(rationale, "no findings above informational severity")
	}
	return score, rationale
}

// Report scores every domain and computes the overall mean, rounded to
// one decimal place. Domains without findings score 5.
func Report(fr domain.FindingsReport) domain.ScoreReport {
	byDomain := map[string][]domain.Finding{}
	for _, f := range fr.Findings {
		byDomain[f.Domain] = append(byDomain[f.Domain], f)
	}

	var report domain.ScoreReport
	sum := 0
	for _, d := range domain.Domains() {
		score, rationale := Score(byDomain[d])
		report.Domains = append(report.Domains, domain.DomainScore{
			Domain:    d,
			Score:     score,
			Rationale: rationale,
		})
		sum += score
	}
	report.Overall = math.Round(float64(sum)/float64(len(report.Domains))*10) / 10
	return report
}
