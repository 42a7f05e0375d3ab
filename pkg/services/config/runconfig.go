package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

type runConfigFile struct {
	Profile           string   `mapstructure:"profile"`
	Regions           []string `mapstructure:"regions"`
	MaxWorkers        int      `mapstructure:"max_workers"`
	MaxPages          int      `mapstructure:"max_pages"`
	MaxFollowUps      int      `mapstructure:"max_follow_ups"`
	MaxAttempts       int      `mapstructure:"max_attempts"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
	CallTimeoutSecs   int      `mapstructure:"call_timeout_seconds"`
	Services          []string `mapstructure:"services"`
	ExcludeServices   []string `mapstructure:"exclude_services"`
}

// LoadRunConfig reads the run configuration. configPath may be empty, in
// which case defaults plus CLOUD_ATLAS_* environment variables apply.
func LoadRunConfig(configPath string) (domain.RunConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("CLOUD_ATLAS")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return domain.RunConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var file runConfigFile
	if err := v.Unmarshal(&file); err != nil {
		return domain.RunConfig{}, fmt.Errorf("failed to parse run config: %w", err)
	}

	cfg := domain.RunConfig{
		Profile:           file.Profile,
		Regions:           file.Regions,
		MaxWorkers:        file.MaxWorkers,
		MaxPages:          file.MaxPages,
		MaxFollowUps:      file.MaxFollowUps,
		MaxAttempts:       file.MaxAttempts,
		RequestsPerSecond: file.RequestsPerSecond,
		CallTimeout:       time.Duration(file.CallTimeoutSecs) * time.Second,
		ServiceAllowlist:  file.Services,
		ServiceDenylist:   file.ExcludeServices,
	}
	ApplyDefaults(&cfg)
	return cfg, nil
}

// ApplyDefaults fills every unset knob with its default value.
func ApplyDefaults(cfg *domain.RunConfig) {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = domain.DefaultMaxWorkers
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = domain.DefaultMaxPages
	}
	if cfg.MaxFollowUps <= 0 {
		cfg.MaxFollowUps = domain.DefaultMaxFollowUps
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = domain.DefaultMaxAttempts
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = domain.DefaultRatePerSecond
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = domain.DefaultCallTimeout
	}
}
