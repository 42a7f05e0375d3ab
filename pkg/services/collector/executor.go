package collector

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/store/awsclient"
)

// catalogPageLimit caps operations that page through large static
// catalogs; one page is enough for presence analysis.
const catalogPageLimit = 1

// execute drives one task to a terminal state. Pagination within the
// task is sequential: page N+1 is never requested before page N landed.
func (c *Collector) execute(ctx context.Context, task domain.CollectionTask) domain.CollectionResult {
	result := domain.CollectionResult{Task: task}
	start := time.Now()

	paramSets := task.ParamSets
	if len(paramSets) == 0 {
		paramSets = []domain.ParamSet{nil}
	}

	var firstErr error
	for _, params := range paramSets {
		pages, truncated, attempts, err := c.fetchPages(ctx, task, params)
		result.Attempts += attempts
		result.Pages = append(result.Pages, pages...)
		result.Truncated = result.Truncated || truncated
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	result.Elapsed = time.Since(start)

	// Any successful page keeps the task successful: a follow-up fan-out
	// where some identifiers have vanished since the listing is expected.
	if len(result.Pages) > 0 {
		result.Status = domain.TaskSuccess
		return result
	}

	if firstErr == nil {
		result.Status = domain.TaskSuccess
		return result
	}

	kind := awsclient.ClassifyError(firstErr)
	result.ErrKind = kind
	result.ErrMsg = firstErr.Error()
	var apiErr interface{ ErrorCode() string }
	if errors.As(firstErr, &apiErr) {
		result.ErrCode = apiErr.ErrorCode()
	}

	switch kind {
	case domain.ErrAccessDenied, domain.ErrNotFound, domain.ErrUnsupported:
		// Recorded, never retried, and not a failure signal.
		result.Status = domain.TaskSkipped
	default:
		result.Status = domain.TaskFailed
	}
	return result
}

// fetchPages pulls every page for one parameter assignment, honoring the
// page cap. Hitting the cap is a successful, truncated fetch.
func (c *Collector) fetchPages(ctx context.Context, task domain.CollectionTask, params domain.ParamSet) ([]map[string]any, bool, int, error) {
	limit := c.cfg.MaxPages
	if limit <= 0 {
		limit = domain.DefaultMaxPages
	}
	if task.Descriptor.Catalog {
		limit = catalogPageLimit
	}

	var (
		pages    []map[string]any
		attempts int
		token    string
	)
	for page := 0; ; page++ {
		if page >= limit {
			return pages, true, attempts, nil
		}

		body, next, tries, err := c.invokeWithRetry(ctx, awsclient.Call{
			Service:   task.Descriptor.Service,
			Region:    task.Region,
			Operation: task.Descriptor.Name,
			Params:    params,
			PageToken: token,
		})
		attempts += tries
		if err != nil {
			return pages, false, attempts, err
		}

		pages = append(pages, body)
		if next == "" || !task.Descriptor.Paginated {
			return pages, false, attempts, nil
		}
		token = next
	}
}

// invokeWithRetry performs one page fetch with the transient-failure
// retry policy: full exponential backoff with jitter, bounded by the
// configured attempt count. Non-transient errors return immediately.
func (c *Collector) invokeWithRetry(ctx context.Context, call awsclient.Call) (map[string]any, string, int, error) {
	maxAttempts := c.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}
	callTimeout := c.cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = domain.DefaultCallTimeout
	}

	var (
		page     *awsclient.Page
		attempts int
	)
	operation := func() error {
		attempts++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		p, err := c.caller.Invoke(callCtx, call)
		if err != nil {
			// The parent context ending is cancellation, not a
			// retryable timeout.
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			if awsclient.IsTransient(awsclient.ClassifyError(err)) {
				return err
			}
			return backoff.Permanent(err)
		}
		page = p
		return nil
	}

	policy := backoff.WithContext(newBackoffPolicy(maxAttempts), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, "", attempts, err
	}
	return page.Body, page.NextToken, attempts, nil
}

func newBackoffPolicy(maxAttempts int) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	// RandomizationFactor defaults to 0.5: jittered delays avoid a
	// thundering herd when many workers are throttled together.
	return backoff.WithMaxRetries(policy, uint64(maxAttempts-1))
}
