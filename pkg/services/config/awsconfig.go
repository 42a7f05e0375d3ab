package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Registry lists the credential profiles available on this machine.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// NewRegistry loads an AWS shared config file. Pass an empty path to use
// the default location (~/.aws/config, or AWS_CONFIG_FILE).
func NewRegistry(path string) (Registry, error) {
	if path == "" {
		path = defaultSharedConfigPath()
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

// GetProfiles returns profile names with the "profile " section prefix
// stripped, the way the SDK refers to them.
func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		name := section.Name()
		if name == ini.DefaultSection || len(section.Keys()) == 0 {
			continue
		}
		name = strings.TrimPrefix(name, "profile ")
		profiles = append(profiles, name)
	}
	return profiles, nil
}

func defaultSharedConfigPath() string {
	if path := os.Getenv("AWS_CONFIG_FILE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws", "config")
}
