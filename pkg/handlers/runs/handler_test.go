package runs

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/account"
	"github.com/de-tools/cloud-atlas/pkg/services/analyzer"
)

func testRouter(root string) *chi.Mux {
	logger := zerolog.New(zerolog.NewTestWriter(nil))
	h := NewHandler(root)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
		})
	})
	router.Get("/api/v1/runs", h.ListRuns)
	router.Route("/api/v1/runs/{run}", func(r chi.Router) {
		r.Get("/summary", h.GetSummary)
		r.Get("/index", h.GetIndex)
		r.Get("/findings", h.GetFindings)
		r.Get("/scores", h.GetScores)
	})
	return router
}

func seedRun(t *testing.T, root, name string, analyzed bool) {
	t.Helper()
	runDir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	meta := domain.AccountMetadata{
		AccountID:    "123456789012",
		AccountAlias: "prod",
		Timestamp:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, account.WriteMetadata(runDir, meta))

	if analyzed {
		summary := domain.Summary{RunDir: name, ServicesCount: 2, OverallScore: 4.5}
		data, err := json.Marshal(summary)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(runDir, analyzer.SummaryFile), data, 0o644))
	}
}

func TestListRuns(t *testing.T) {
	root := t.TempDir()
	seedRun(t, root, "run-20260801-120000-prod", true)
	seedRun(t, root, "run-20260715-090000-prod", false)

	server := httptest.NewServer(testRouter(root))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runs []api.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-20260801-120000-prod", runs[0].Name)
	assert.True(t, runs[0].Analyzed)
	assert.Equal(t, "123456789012", runs[0].Account)
	assert.False(t, runs[1].Analyzed)
}

func TestListRunsEmpty(t *testing.T) {
	server := httptest.NewServer(testRouter(t.TempDir()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}

func TestGetSummary(t *testing.T) {
	root := t.TempDir()
	seedRun(t, root, "run-20260801-120000-prod", true)

	server := httptest.NewServer(testRouter(root))
	defer server.Close()

	t.Run("serves the artifact verbatim", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/runs/run-20260801-120000-prod/summary")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var summary domain.Summary
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
		assert.Equal(t, 4.5, summary.OverallScore)
	})

	t.Run("unanalyzed run is 404", func(t *testing.T) {
		seedRun(t, root, "run-20260802-120000-prod", false)
		resp, err := http.Get(server.URL + "/api/v1/runs/run-20260802-120000-prod/summary")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown run is 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/runs/run-20990101-000000-x/summary")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("traversal attempts are rejected", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/runs/..%2F..%2Fetc/summary")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestValidRunName(t *testing.T) {
	assert.True(t, validRunName("run-20260801-120000-prod"))
	assert.False(t, validRunName(""))
	assert.False(t, validRunName("../run-x"))
	assert.False(t, validRunName("run-a/b"))
	assert.False(t, validRunName("latest"))
}
