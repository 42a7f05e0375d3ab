package indexer

import (
	"fmt"
	"sort"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/store/rawstore"
)

const topN = 10

// Walker streams raw records. *rawstore.Store satisfies it.
type Walker interface {
	Walk(filter rawstore.Filter, fn func(domain.RawRecord) error) error
}

// Build recomputes the full index from the raw store. It never patches a
// prior index: the same store contents always produce the same index.
func Build(store Walker) (*domain.Index, error) {
	ix := &domain.Index{
		Services: make(map[string]*domain.ServiceIndex),
	}
	regions := make(map[string]bool)
	regionResources := make(map[string]int)

	err := store.Walk(rawstore.Filter{}, func(rec domain.RawRecord) error {
		m := rec.Metadata
		regions[m.Region] = true
		if ix.Account == "" {
			ix.Account = m.Account
		}

		svc := ix.Services[m.Service]
		if svc == nil {
			svc = &domain.ServiceIndex{
				Name:    m.Service,
				Regions: make(map[string]*domain.RegionIndex),
			}
			ix.Services[m.Service] = svc
		}
		region := svc.Regions[m.Region]
		if region == nil {
			region = &domain.RegionIndex{}
			svc.Regions[m.Region] = region
		}

		entry := buildEntry(rec)
		region.Entries = append(region.Entries, entry)
		ix.TotalOperations++

		switch m.Status {
		case string(domain.TaskSuccess):
			region.Successful++
			svc.Successful++
		case string(domain.TaskFailed):
			region.Failed++
			svc.Failed++
		case string(domain.TaskSkipped):
			region.Skipped++
			svc.Skipped++
		}

		svc.ResourceCount += entry.Count
		ix.TotalResources += entry.Count
		regionResources[m.Region] += entry.Count
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index raw store: %w", err)
	}

	for _, svc := range ix.Services {
		ops := make(map[string]bool)
		for _, region := range svc.Regions {
			sort.Slice(region.Entries, func(i, j int) bool {
				return region.Entries[i].Operation < region.Entries[j].Operation
			})
			for _, e := range region.Entries {
				ops[e.Operation] = true
			}
		}
		svc.Operations = sortedKeys(ops)
	}

	ix.Regions = sortedKeys(regions)

	serviceResources := make(map[string]int, len(ix.Services))
	for name, svc := range ix.Services {
		serviceResources[name] = svc.ResourceCount
	}
	ix.TopServices = rank(serviceResources)
	ix.TopRegions = rank(regionResources)

	return ix, nil
}

func buildEntry(rec domain.RawRecord) domain.IndexEntry {
	m := rec.Metadata
	key := m.Service + "/" + m.Operation
	entry := domain.IndexEntry{
		Service:   m.Service,
		Region:    m.Region,
		Operation: m.Operation,
		Truncated: m.Truncated,
	}

	if m.Status == string(domain.TaskSuccess) && rec.Error == nil {
		entry.Count, entry.ResourceType = countResources(key, rec.Data)
		entry.Present = mapped(key)
		entry.Attributes = extractAttributes(key, rec.Data)
		return entry
	}

	if rec.Error != nil {
		entry.ErrorKind = rec.Error.Kind
	}
	return entry
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rank produces a deterministic top-N ordering: resources descending,
// name ascending on ties.
func rank(resources map[string]int) []domain.Rank {
	ranks := make([]domain.Rank, 0, len(resources))
	for name, count := range resources {
		ranks = append(ranks, domain.Rank{Name: name, Resources: count})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Resources != ranks[j].Resources {
			return ranks[i].Resources > ranks[j].Resources
		}
		return ranks[i].Name < ranks[j].Name
	})
	if len(ranks) > topN {
		ranks = ranks[:topN]
	}
	return ranks
}
