package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/cloud-atlas/pkg/services/account"
	"github.com/de-tools/cloud-atlas/pkg/services/catalog"
	"github.com/de-tools/cloud-atlas/pkg/services/collector"
	"github.com/de-tools/cloud-atlas/pkg/services/config"
	"github.com/de-tools/cloud-atlas/pkg/store/awsclient"
	"github.com/de-tools/cloud-atlas/pkg/store/rawstore"
)

// homeRegion is where the account identity calls go; the actual
// collection regions come from configuration or region discovery.
const homeRegion = "us-east-1"

type CollectCmd struct {
	configPath string
	profile    string
	regions    []string
	runsRoot   string
	workers    int
	verbose    bool
}

func NewCollectCmd() *cobra.Command {
	cc := &CollectCmd{}
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Crawl an account read-only and store raw responses",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.configPath, "config", "", "Path to the run configuration file")
	cmd.Flags().StringVar(&cc.profile, "profile", "", "AWS shared config profile to use")
	cmd.Flags().StringSliceVar(&cc.regions, "regions", nil, "Regions to collect (default: discovered enabled regions)")
	cmd.Flags().StringVar(&cc.runsRoot, "runs-dir", "runs", "Directory holding run outputs")
	cmd.Flags().IntVar(&cc.workers, "max-workers", 0, "Worker pool size override")
	cmd.Flags().BoolVar(&cc.verbose, "verbose", false, "Enable debug logging")

	return cmd
}

func (cc *CollectCmd) run(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cc.verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	cfg, err := config.LoadRunConfig(cc.configPath)
	if err != nil {
		return err
	}
	if cc.profile != "" {
		cfg.Profile = cc.profile
	}
	if len(cc.regions) > 0 {
		cfg.Regions = cc.regions
	}
	if cc.workers > 0 {
		cfg.MaxWorkers = cc.workers
	}

	client, err := awsclient.NewClient(ctx, cfg.Profile)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS client: %w", err)
	}

	start := time.Now()
	meta := account.NewExplorer(client, homeRegion).Describe(ctx)
	if len(cfg.Regions) == 0 {
		cfg.Regions = meta.Regions
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = []string{homeRegion}
		logger.Warn().Msg("region discovery empty, falling back to the home region")
	}

	cfg.RunDir = filepath.Join(cc.runsRoot, account.RunDirName(start, meta))
	if err := os.MkdirAll(cfg.RunDir, 0o755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	if err := account.WriteMetadata(cfg.RunDir, meta); err != nil {
		return err
	}

	registry, err := catalog.NewRegistry(logger)
	if err != nil {
		return fmt.Errorf("failed to load capability registry: %w", err)
	}
	store, err := rawstore.NewStore(cfg.RunDir)
	if err != nil {
		return err
	}

	coll := collector.New(cfg, registry, client, store)
	coll.SetAccount(meta.AccountID)

	logger.Info().
		Str("run", cfg.RunDir).
		Str("account", meta.AccountID).
		Strs("regions", cfg.Regions).
		Int("workers", cfg.MaxWorkers).
		Msg("collection starting")

	stats, err := coll.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Collected %d operations (%d ok, %d skipped, %d failed) across %d services in %.1fs\nRun stored at %s\n",
		stats.OperationsExecuted, stats.OperationsSuccessful, stats.OperationsSkipped,
		stats.OperationsFailed, stats.ServicesDiscovered, stats.ElapsedSeconds, cfg.RunDir)
	return nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
