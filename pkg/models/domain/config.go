package domain

import "time"

// RunConfig carries every knob for one collection run. It is built once
// by the config service and passed down explicitly; there is no
// process-wide mutable configuration.
type RunConfig struct {
	RunDir            string
	Profile           string
	Regions           []string
	MaxWorkers        int
	MaxPages          int
	MaxFollowUps      int
	MaxAttempts       int
	RequestsPerSecond float64
	CallTimeout       time.Duration
	ServiceAllowlist  []string
	ServiceDenylist   []string
}

// AllowsService applies the allow/deny lists. Deny wins.
func (c RunConfig) AllowsService(name string) bool {
	for _, s := range c.ServiceDenylist {
		if s == name {
			return false
		}
	}
	if len(c.ServiceAllowlist) == 0 {
		return true
	}
	for _, s := range c.ServiceAllowlist {
		if s == name {
			return true
		}
	}
	return false
}

// Summary is the executive roll-up of one analysis pass.
type Summary struct {
	RunDir         string         `json:"run_dir"`
	ServicesCount  int            `json:"services_count"`
	RegionsCount   int            `json:"regions_count"`
	TotalResources int            `json:"total_resources"`
	FindingsCount  int            `json:"findings_count"`
	BySeverity     map[string]int `json:"findings_by_severity"`
	TopServices    []Rank         `json:"top_services"`
	TopRegions     []Rank         `json:"top_regions"`
	OverallScore   float64        `json:"overall_score"`
}

// Timeouts with sane defaults applied by the config service.
const (
	DefaultCallTimeout   = 30 * time.Second
	DefaultMaxWorkers    = 16
	DefaultMaxPages      = 100
	DefaultMaxFollowUps  = 5
	DefaultMaxAttempts   = 3
	DefaultRatePerSecond = 20.0
)
