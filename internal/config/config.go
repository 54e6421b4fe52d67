package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sensigrep/sensigrep/internal/rules"
	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by LoadLocal and LoadGlobal when no file exists.
var ErrNoConfig = errors.New("no config file")

// FileConfig is the on-disk YAML configuration shape.
type FileConfig struct {
	Include         *string `yaml:"include"`
	Exclude         *string `yaml:"exclude"`
	MaxBytes        *int64  `yaml:"max_bytes"`
	MaxEntryBytes   *int64  `yaml:"max_entry_bytes"`
	Concurrency     *int    `yaml:"concurrency"`
	MaxDepth        *int    `yaml:"max_depth"`
	Decompiler      *string `yaml:"decompiler"`
	RuleSet         *string `yaml:"rule_set"`
	MatchTimeout    *string `yaml:"match_timeout"`
	NoColor         *bool   `yaml:"no_color"`
	DefaultExcludes *bool   `yaml:"default_excludes"`
	Audit           *bool   `yaml:"audit"`

	// Rules replaces the built-in catalogue when non-empty.
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is one user-defined rule. Each pattern becomes its own
// PatternRule; with several patterns the IDs are suffixed #1, #2, ...
type RuleConfig struct {
	Name      string   `yaml:"name"`
	Enabled   *bool    `yaml:"enabled"`
	Patterns  []string `yaml:"patterns"`
	Validator string   `yaml:"validator"`
	Group     string   `yaml:"group"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LocalNames are searched in order at the scan root.
var LocalNames = []string{".sensigrep.yml", ".sensigrep.yaml", "sensigrep.yml", "sensigrep.yaml"}

// LoadLocal searches for a config file in the given root.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNoConfig
}

// GlobalPath is $XDG_CONFIG_HOME/sensigrep/config.yml, falling back to
// ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "sensigrep", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNoConfig
}

// PatternRules converts the configured rules. It returns nil when the file
// defines none, leaving the choice of catalogue to the caller.
func (fc FileConfig) PatternRules() ([]rules.PatternRule, error) {
	if len(fc.Rules) == 0 {
		return nil, nil
	}
	var out []rules.PatternRule
	for i, rc := range fc.Rules {
		if rc.Name == "" {
			return nil, fmt.Errorf("rules[%d]: missing name", i)
		}
		if len(rc.Patterns) == 0 {
			return nil, fmt.Errorf("rule %q: no patterns", rc.Name)
		}
		kind, err := rules.ParseValidatorKind(rc.Validator)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		enabled := rc.Enabled == nil || *rc.Enabled
		for j, p := range rc.Patterns {
			id := rc.Name
			if len(rc.Patterns) > 1 {
				id = fmt.Sprintf("%s#%d", rc.Name, j+1)
			}
			out = append(out, rules.PatternRule{
				ID:        id,
				Group:     rc.Group,
				Pattern:   p,
				Validator: kind,
				Enabled:   enabled,
			})
		}
	}
	return out, nil
}

// Timeout parses match_timeout; zero when unset or invalid.
func (fc FileConfig) Timeout() time.Duration {
	if fc.MatchTimeout == nil {
		return 0
	}
	d, err := time.ParseDuration(*fc.MatchTimeout)
	if err != nil {
		return 0
	}
	return d
}
