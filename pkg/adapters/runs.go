package adapters

import (
	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

func MapRunToApi(name string, meta domain.AccountMetadata, analyzed bool) api.Run {
	return api.Run{
		Name:        name,
		Account:     meta.AccountID,
		Alias:       meta.AccountAlias,
		CollectedAt: meta.Timestamp,
		Analyzed:    analyzed,
	}
}
