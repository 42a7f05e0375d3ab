package account

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/store/awsclient"
)

const metadataFile = "metadata.json"

// Explorer resolves who a run belongs to and where it may collect.
type Explorer interface {
	Describe(ctx context.Context) domain.AccountMetadata
}

type explorer struct {
	caller awsclient.Caller
	region string
}

// NewExplorer builds an explorer that identifies the account through the
// given caller. region is the home region used for the identity calls.
func NewExplorer(caller awsclient.Caller, region string) Explorer {
	return &explorer{caller: caller, region: region}
}

// Describe gathers account identity, alias and enabled regions. Every
// lookup is best effort: a denied or failed call leaves its fields empty
// and is logged, never returned as an error. The timestamp is always
// set.
func (e *explorer) Describe(ctx context.Context) domain.AccountMetadata {
	logger := zerolog.Ctx(ctx)
	meta := domain.AccountMetadata{Timestamp: time.Now().UTC()}

	if page, err := e.invoke(ctx, "sts", "GetCallerIdentity", nil); err != nil {
		logger.Warn().Err(err).Msg("caller identity lookup failed")
	} else {
		meta.AccountID, _ = page.Body["Account"].(string)
		meta.ARN, _ = page.Body["Arn"].(string)
		meta.UserID, _ = page.Body["UserId"].(string)
	}

	if page, err := e.invoke(ctx, "iam", "ListAccountAliases", nil); err != nil {
		logger.Debug().Err(err).Msg("account alias lookup failed")
	} else if aliases, ok := page.Body["AccountAliases"].([]any); ok && len(aliases) > 0 {
		meta.AccountAlias, _ = aliases[0].(string)
	}

	if page, err := e.invoke(ctx, "ec2", "DescribeRegions", nil); err != nil {
		logger.Debug().Err(err).Msg("region discovery failed")
	} else if regions, ok := page.Body["Regions"].([]any); ok {
		for _, r := range regions {
			item, ok := r.(map[string]any)
			if !ok {
				continue
			}
			if name, ok := item["RegionName"].(string); ok && name != "" {
				meta.Regions = append(meta.Regions, name)
			}
		}
		sort.Strings(meta.Regions)
	}

	return meta
}

func (e *explorer) invoke(ctx context.Context, service, operation string, params domain.ParamSet) (*awsclient.Page, error) {
	return e.caller.Invoke(ctx, awsclient.Call{
		Service:   service,
		Region:    e.region,
		Operation: operation,
		Params:    params,
	})
}

// WriteMetadata persists the metadata next to the raw records.
func WriteMetadata(runDir string, meta domain.AccountMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	path := filepath.Join(runDir, metadataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadMetadata loads previously persisted metadata.
func ReadMetadata(runDir string) (domain.AccountMetadata, error) {
	var meta domain.AccountMetadata
	data, err := os.ReadFile(filepath.Join(runDir, metadataFile))
	if err != nil {
		return meta, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}

// RunDirName derives a run directory name from the collection start time
// and the account identity, preferring the alias over the numeric ID.
func RunDirName(start time.Time, meta domain.AccountMetadata) string {
	suffix := meta.AccountAlias
	if suffix == "" {
		suffix = meta.AccountID
	}
	if suffix = sanitize(suffix); suffix == "" {
		suffix = "unknown"
	}
	return fmt.Sprintf("run-%s-%s", start.UTC().Format("20060102-150405"), suffix)
}

// sanitize keeps directory names portable: lowercase alphanumerics and
// hyphens only.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '_' || r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
