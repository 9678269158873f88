package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/nessus-rider/pkg/ghostwriter"
	"github.com/user/nessus-rider/pkg/translate"
)

type QuotaConfig struct {
	Threshold int           `yaml:"threshold"`
	Cost      int           `yaml:"cost"`
	Cooldown  time.Duration `yaml:"cooldown"`
}

// Config holds the run tunables. Credentials never live here, see Credentials.
type Config struct {
	Model            string        `yaml:"model"`
	SourceLanguage   string        `yaml:"source_language"`
	TranslationsFile string        `yaml:"translations_file"`
	DumpFile         string        `yaml:"dump_file"`
	Quota            QuotaConfig   `yaml:"quota"`
	SubmitDelay      time.Duration `yaml:"submit_delay"`
	MinSeverity      int           `yaml:"min_severity"`
}

func Default() *Config {
	return &Config{
		Model:            translate.DefaultModel,
		SourceLanguage:   "english",
		TranslationsFile: translate.DefaultCacheFile,
		DumpFile:         "file.json",
		Quota: QuotaConfig{
			Threshold: translate.DefaultQuotaThreshold,
			Cost:      translate.DefaultQuotaCost,
			Cooldown:  translate.DefaultCooldown,
		},
		SubmitDelay: ghostwriter.DefaultDelay,
		MinSeverity: 1,
	}
}

// GetConfigPath returns override when set, else ~/.nessus-rider/config.yaml.
func GetConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nessus-rider", "config.yaml"), nil
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Quota.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("quota.threshold must be positive, got %d", c.Quota.Threshold))
	}
	if c.Quota.Cost <= 0 {
		errs = append(errs, fmt.Errorf("quota.cost must be positive, got %d", c.Quota.Cost))
	}
	if c.Quota.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("quota.cooldown must not be negative, got %s", c.Quota.Cooldown))
	}
	if c.SubmitDelay < 0 {
		errs = append(errs, fmt.Errorf("submit_delay must not be negative, got %s", c.SubmitDelay))
	}
	if c.SourceLanguage == "" {
		errs = append(errs, errors.New("source_language must be set"))
	}
	return errors.Join(errs...)
}
