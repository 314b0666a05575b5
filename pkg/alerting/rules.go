package alerting

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	RuleSyncFailure  = "sync_failure"
	RuleSyncDuration = "sync_duration"
)

type Rule struct {
	Name      string  `yaml:"name" json:"name"`
	Type      string  `yaml:"type" json:"type"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Severity  string  `yaml:"severity" json:"severity"`
	Enabled   bool    `yaml:"enabled" json:"enabled"`
}

type RulesConfig struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

func LoadRules(path string) (RulesConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), err
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RulesConfig{}, err
	}

	if len(cfg.Rules) == 0 {
		return RulesConfig{}, errors.New("no alert rules configured")
	}

	return cfg, nil
}

func DefaultRules() RulesConfig {
	return RulesConfig{Rules: []Rule{
		{Name: "Consecutive sync failures", Type: RuleSyncFailure, Threshold: 3, Severity: "high", Enabled: true},
		{Name: "Slow sync", Type: RuleSyncDuration, Threshold: 120000, Severity: "medium", Enabled: true},
	}}
}
