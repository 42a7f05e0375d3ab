package domain

// DomainScore is the 1-5 maturity score for one domain. Rationale lists
// the finding IDs the decision table matched on; a score of 5 has an
// empty rationale.
type DomainScore struct {
	Domain    string   `json:"domain"`
	Score     int      `json:"score"`
	Rationale []string `json:"rationale,omitempty"`
}

// ScoreReport holds every domain score plus the overall average, rounded
// to one decimal.
type ScoreReport struct {
	Domains []DomainScore `json:"domains"`
	Overall float64       `json:"overall"`
}
