package resolver

import (
	"fmt"
	"strings"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

// Resolver infers follow-up parameters from the most recent successful
// result of a producing list operation. It holds per-run state only: the
// producer payload cache is scoped to one (service, region) collection
// pass and discarded afterwards.
type Resolver struct {
	maxFollowUps int
	// producer payloads keyed by service/region/operation
	cache map[string][]map[string]any
}

func New(maxFollowUps int) *Resolver {
	if maxFollowUps <= 0 {
		maxFollowUps = domain.DefaultMaxFollowUps
	}
	return &Resolver{
		maxFollowUps: maxFollowUps,
		cache:        make(map[string][]map[string]any),
	}
}

// Record stores the pages of a successful list operation for later
// follow-up resolution.
func (r *Resolver) Record(key domain.RecordKey, pages []map[string]any) {
	r.cache[cacheKey(key)] = pages
}

// Resolve returns one ParamSet per item the producer discovered, capped
// at the follow-up limit. A producer that never ran or returned zero
// items yields an empty slice; the caller treats that as a no-op, not an
// error.
func (r *Resolver) Resolve(op domain.OperationDescriptor, region string) ([]domain.ParamSet, error) {
	if op.Producer == nil {
		return nil, fmt.Errorf("operation %s has no producer mapping", op.Key())
	}

	pages, ok := r.cache[cacheKey(domain.RecordKey{
		Service:   op.Service,
		Region:    region,
		Operation: op.Producer.Operation,
	})]
	if !ok {
		return nil, nil
	}

	var params []domain.ParamSet
	for _, page := range pages {
		items, ok := page[op.Producer.Items].([]any)
		if !ok {
			continue
		}
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			value := identifierValue(item, op.Producer.Field)
			if value == "" {
				continue
			}
			params = append(params, domain.ParamSet{op.Producer.Param: value})
			if len(params) >= r.maxFollowUps {
				return params, nil
			}
		}
	}
	return params, nil
}

func cacheKey(key domain.RecordKey) string {
	return key.Service + "/" + key.Region + "/" + key.Operation
}

// identifierValue extracts a string identifier from one producer item.
// Composite identifiers like "/hostedzone/Z123" reduce to the trailing
// segment so they are usable as input parameters.
func identifierValue(item map[string]any, field string) string {
	raw, ok := item[field]
	if !ok {
		return ""
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return ""
	}
	if strings.HasPrefix(value, "/") {
		if idx := strings.LastIndex(value, "/"); idx >= 0 && idx+1 < len(value) {
			return value[idx+1:]
		}
	}
	return value
}
