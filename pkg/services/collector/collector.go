package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/catalog"
	"github.com/de-tools/cloud-atlas/pkg/services/resolver"
	"github.com/de-tools/cloud-atlas/pkg/store/awsclient"
)

// Store is the raw record sink. *rawstore.Store satisfies it.
type Store interface {
	Put(domain.RawRecord) error
}

// Collector schedules classified-safe operations across (service, region)
// pairs on a bounded worker pool and persists one raw record per terminal
// task.
type Collector struct {
	cfg      domain.RunConfig
	registry *catalog.Registry
	caller   awsclient.Caller
	store    Store
	limiter  *rate.Limiter
	account  string

	mu    sync.Mutex
	stats domain.CollectionStats
}

// New wires a collector for one run. The rate limiter is global: adding
// workers never raises the remote request rate past the configured
// ceiling.
func New(cfg domain.RunConfig, registry *catalog.Registry, caller awsclient.Caller, store Store) *Collector {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = domain.DefaultRatePerSecond
	}
	return &Collector{
		cfg:      cfg,
		registry: registry,
		caller:   caller,
		store:    store,
		limiter:  rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

// SetAccount stamps subsequent raw records with the account id.
func (c *Collector) SetAccount(id string) { c.account = id }

// unit is the parallelism grain: one service in one region. Operations
// inside a unit run sequentially so follow-up resolution can consume the
// unit's own list results.
type unit struct {
	service string
	region  string
}

// Run executes the full collection. Cancellation stops submission
// immediately; in-flight units finish their current task and every
// terminal task still produces exactly one raw record. The returned stats
// are also persisted to collection_stats.json in the run directory.
func (c *Collector) Run(ctx context.Context) (domain.CollectionStats, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	services := c.collectableServices()
	c.mu.Lock()
	c.stats.ServicesDiscovered = len(services)
	c.mu.Unlock()

	units := make([]unit, 0, len(services)*len(c.cfg.Regions))
	for _, svc := range services {
		for _, region := range c.cfg.Regions {
			units = append(units, unit{service: svc, region: region})
		}
	}

	workers := c.cfg.MaxWorkers
	if workers <= 0 {
		workers = domain.DefaultMaxWorkers
	}

	queue := make(chan unit)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range queue {
				c.collectUnit(ctx, u)
			}
		}()
	}

	submitted := 0
submit:
	for _, u := range units {
		select {
		case <-ctx.Done():
			logger.Warn().Msg("cancellation requested, stopping task submission")
			break submit
		case queue <- u:
			submitted++
		}
	}
	close(queue)
	wg.Wait()

	c.mu.Lock()
	stats := c.stats
	c.mu.Unlock()
	stats.ElapsedSeconds = time.Since(start).Seconds()
	stats.Timestamp = time.Now().UTC()
	stats.InterruptedBeforeWork = ctx.Err() != nil && stats.OperationsExecuted == 0

	if err := writeStats(c.cfg.RunDir, stats); err != nil {
		return stats, err
	}

	logger.Info().
		Int("executed", stats.OperationsExecuted).
		Int("successful", stats.OperationsSuccessful).
		Int("failed", stats.OperationsFailed).
		Int("skipped", stats.OperationsSkipped).
		Float64("elapsed_seconds", stats.ElapsedSeconds).
		Msg("collection finished")

	if stats.InterruptedBeforeWork {
		return stats, fmt.Errorf("collection cancelled before any task completed: %w", ctx.Err())
	}
	return stats, nil
}

func (c *Collector) collectableServices() []string {
	var out []string
	for _, svc := range c.registry.Services() {
		if c.cfg.AllowsService(svc) {
			out = append(out, svc)
		}
	}
	return out
}

// collectUnit runs every schedulable operation of one service in one
// region. Safe no-param operations run first so their payloads can feed
// follow-up resolution.
func (c *Collector) collectUnit(ctx context.Context, u unit) {
	logger := zerolog.Ctx(ctx).With().Str("service", u.service).Str("region", u.region).Logger()

	res := resolver.New(c.cfg.MaxFollowUps)

	var followUps []domain.OperationDescriptor
	for _, op := range c.registry.Operations() {
		if op.Service != u.service {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		switch catalog.Classify(op) {
		case domain.SafeNoParams:
			result := c.execute(ctx, domain.CollectionTask{Descriptor: op, Region: u.region})
			c.finish(&logger, result)
			if result.Status == domain.TaskSuccess {
				res.Record(result.Task.Key(), result.Pages)
			}
		case domain.SafeWithInferredParams:
			followUps = append(followUps, op)
		default:
			// Unsafe and excluded operations are never scheduled.
		}
	}

	for _, op := range followUps {
		if ctx.Err() != nil {
			return
		}
		params, err := res.Resolve(op, u.region)
		if err != nil {
			logger.Warn().Err(err).Str("operation", op.Name).Msg("follow-up resolution failed")
			continue
		}
		if len(params) == 0 {
			// Producer never ran or returned nothing: a no-op, and
			// deliberately absent from the statistics.
			logger.Debug().Str("operation", op.Name).Msg("no producer items, skipping follow-up")
			continue
		}
		c.mu.Lock()
		c.stats.FollowUpsGenerated += len(params)
		c.mu.Unlock()
		result := c.execute(ctx, domain.CollectionTask{Descriptor: op, Region: u.region, ParamSets: params})
		c.finish(&logger, result)
	}
}

// finish updates statistics and writes the task's single raw record.
func (c *Collector) finish(logger *zerolog.Logger, result domain.CollectionResult) {
	c.mu.Lock()
	c.stats.OperationsExecuted++
	switch result.Status {
	case domain.TaskSuccess:
		c.stats.OperationsSuccessful++
	case domain.TaskFailed:
		c.stats.OperationsFailed++
	case domain.TaskSkipped:
		c.stats.OperationsSkipped++
	}
	c.mu.Unlock()

	rec := c.toRecord(result)
	if err := c.store.Put(rec); err != nil {
		logger.Error().Err(err).Str("operation", result.Task.Descriptor.Name).Msg("failed to persist raw record")
		return
	}

	logger.Debug().
		Str("operation", result.Task.Descriptor.Name).
		Str("status", string(result.Status)).
		Int("attempts", result.Attempts).
		Msg("task finished")
}

func (c *Collector) toRecord(result domain.CollectionResult) domain.RawRecord {
	task := result.Task
	rec := domain.RawRecord{
		Metadata: domain.RecordMetadata{
			Service:   task.Descriptor.Service,
			Region:    task.Region,
			Operation: task.Descriptor.Name,
			Account:   c.account,
			Timestamp: time.Now().UTC(),
			Status:    string(result.Status),
			Paginated: task.Descriptor.Paginated,
			Pages:     len(result.Pages),
			Truncated: result.Truncated,
			Attempts:  result.Attempts,
			ElapsedMS: result.Elapsed.Milliseconds(),
		},
	}
	if result.Status == domain.TaskSuccess {
		rec.Data = result.Pages
	} else {
		rec.Error = &domain.RecordError{
			Kind:    string(result.ErrKind),
			Code:    result.ErrCode,
			Message: result.ErrMsg,
		}
	}
	return rec
}

func writeStats(runDir string, stats domain.CollectionStats) error {
	path := filepath.Join(runDir, "collection_stats.json")
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection stats: %w", err)
	}
	return nil
}
