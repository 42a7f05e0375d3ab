package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureRouter(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	router := ConfigureRouter(logger, Config{RunsDir: t.TempDir()})

	server := httptest.NewServer(router)
	defer server.Close()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"runs listing", "/api/v1/runs", http.StatusOK},
		{"summary of unknown run", "/api/v1/runs/run-20260101-000000-x/summary", http.StatusNotFound},
		{"index of unknown run", "/api/v1/runs/run-20260101-000000-x/index", http.StatusNotFound},
		{"findings of unknown run", "/api/v1/runs/run-20260101-000000-x/findings", http.StatusNotFound},
		{"scores of unknown run", "/api/v1/runs/run-20260101-000000-x/scores", http.StatusNotFound},
		{"unknown route", "/api/v1/other", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
