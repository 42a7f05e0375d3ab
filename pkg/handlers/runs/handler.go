package runs

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/services/account"
	"github.com/de-tools/cloud-atlas/pkg/services/analyzer"
)

// Handler serves collected runs and their derived artifacts. It reads
// straight from the runs directory; the collector and analyzer write
// artifacts atomically so no coordination is needed.
type Handler struct {
	root string
}

func NewHandler(root string) *Handler {
	return &Handler{root: root}
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	names, err := analyzer.ListRuns(h.root)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list runs")
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	response := make([]api.Run, 0, len(names))
	for _, name := range names {
		runDir := filepath.Join(h.root, name)
		meta, err := account.ReadMetadata(runDir)
		if err != nil {
			logger.Debug().Err(err).Str("run", name).Msg("run has no metadata")
		}
		_, serr := os.Stat(filepath.Join(runDir, analyzer.SummaryFile))
		response = append(response, adapters.MapRunToApi(name, meta, serr == nil))
	}

	writeJSON(w, logger, response)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, analyzer.SummaryFile)
}

func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, analyzer.IndexFile)
}

func (h *Handler) GetFindings(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, analyzer.FindingsFile)
}

func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, analyzer.ScoresFile)
}

func (h *Handler) serveArtifact(w http.ResponseWriter, r *http.Request, artifact string) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	run := chi.URLParam(r, "run")
	if !validRunName(run) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	data, err := analyzer.ReadArtifact(filepath.Join(h.root, run), artifact)
	if errors.Is(err, analyzer.ErrNoArtifact) {
		writeError(w, http.StatusNotFound, "run not analyzed")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("run", run).Str("artifact", artifact).Msg("failed to read artifact")
		writeError(w, http.StatusInternalServerError, "failed to read artifact")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		logger.Error().Err(err).Str("run", run).Msg("failed to write artifact")
	}
}

// validRunName rejects anything that could escape the runs directory.
func validRunName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, "/\\") &&
		name == filepath.Base(name) &&
		strings.HasPrefix(name, "run-")
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Error: msg})
}
