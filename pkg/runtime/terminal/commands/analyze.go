package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/de-tools/cloud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/cloud-atlas/pkg/services/analyzer"
)

type AnalyzeCmd struct {
	runsRoot string
	runName  string
	verbose  bool
	reporter *export.Reporter
}

func NewAnalyzeCmd(reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rebuild index, findings and scores for a collected run",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.runsRoot, "runs-dir", "runs", "Directory holding run outputs")
	cmd.Flags().StringVar(&ac.runName, "run", "", "Run directory name (default: latest run)")
	cmd.Flags().BoolVar(&ac.verbose, "verbose", false, "Enable debug logging")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	logger := newLogger(ac.verbose)
	ctx := logger.WithContext(cmd.Context())

	run := ac.runName
	if run == "" {
		runs, err := analyzer.ListRuns(ac.runsRoot)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs found under %s", ac.runsRoot)
		}
		run = runs[0]
	}

	result, err := analyzer.New(logger).Analyze(ctx, filepath.Join(ac.runsRoot, run))
	if err != nil {
		return err
	}

	return ac.reporter.Handle(result)
}
