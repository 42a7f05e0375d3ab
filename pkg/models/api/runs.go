package api

import "time"

// Run is one collected run directory as exposed over the API.
type Run struct {
	Name        string    `json:"name"`
	Account     string    `json:"account,omitempty"`
	Alias       string    `json:"alias,omitempty"`
	CollectedAt time.Time `json:"collected_at,omitempty"`
	Analyzed    bool      `json:"analyzed"`
}

// Error is the uniform error envelope.
type Error struct {
	Error string `json:"error"`
}
