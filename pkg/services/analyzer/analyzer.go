package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/account"
	"github.com/de-tools/cloud-atlas/pkg/services/findings"
	"github.com/de-tools/cloud-atlas/pkg/services/indexer"
	"github.com/de-tools/cloud-atlas/pkg/services/scoring"
	"github.com/de-tools/cloud-atlas/pkg/store/rawstore"
)

// Artifact file names inside a run directory.
const (
	IndexFile    = "index.json"
	FindingsFile = "findings.json"
	ScoresFile   = "scores.json"
	SummaryFile  = "summary.json"
)

// Result bundles everything one analysis pass produces.
type Result struct {
	Index    *domain.Index
	Findings domain.FindingsReport
	Scores   domain.ScoreReport
	Summary  domain.Summary
}

// Analyzer turns the raw records of a run directory into the derived
// artifacts. It never talks to the network: everything it needs is
// already on disk.
type Analyzer struct {
	engine *findings.Engine
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		engine: findings.NewEngine(logger),
		logger: logger.With().Str("component", "analyzer").Logger(),
	}
}

// Analyze rebuilds every derived artifact for runDir from scratch and
// writes them next to the raw records. Re-running over the same records
// produces identical artifacts.
func (a *Analyzer) Analyze(ctx context.Context, runDir string) (*Result, error) {
	store, err := rawstore.NewStore(runDir)
	if err != nil {
		return nil, fmt.Errorf("open run %s: %w", runDir, err)
	}

	ix, err := indexer.Build(store)
	if err != nil {
		return nil, fmt.Errorf("index run %s: %w", runDir, err)
	}
	if meta, err := account.ReadMetadata(runDir); err == nil {
		ix.Account = meta.AccountID
	} else {
		a.logger.Debug().Err(err).Msg("run has no account metadata")
	}

	report := a.engine.Evaluate(ix)
	scores := scoring.Report(report)

	result := &Result{
		Index:    ix,
		Findings: report,
		Scores:   scores,
		Summary: domain.Summary{
			RunDir:         filepath.Base(runDir),
			ServicesCount:  len(ix.Services),
			RegionsCount:   len(ix.Regions),
			TotalResources: ix.TotalResources,
			FindingsCount:  report.Total,
			BySeverity:     report.BySeverity,
			TopServices:    ix.TopServices,
			TopRegions:     ix.TopRegions,
			OverallScore:   scores.Overall,
		},
	}

	artifacts := map[string]any{
		IndexFile:    result.Index,
		FindingsFile: result.Findings,
		ScoresFile:   result.Scores,
		SummaryFile:  result.Summary,
	}
	for name, v := range artifacts {
		if err := writeArtifact(runDir, name, v); err != nil {
			return nil, err
		}
	}

	a.logger.Info().
		Str("run", filepath.Base(runDir)).
		Int("services", result.Summary.ServicesCount).
		Int("findings", result.Summary.FindingsCount).
		Float64("overall_score", result.Summary.OverallScore).
		Msg("analysis complete")
	return result, nil
}

// writeArtifact replaces an artifact atomically so a concurrent reader
// never observes a partial file.
func writeArtifact(runDir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(runDir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(runDir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
