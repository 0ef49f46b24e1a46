// Package config loads YAML configuration: a default file is written on
// first run, and partial files are hydrated with defaults on load.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// FileLoader loads YAML configuration from ~/.kaalsec/config.yaml
// (overridable via KAALSEC_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("KAALSEC_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".kaalsec", "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// DefaultConfig is what a fresh installation starts with.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Core: domain.CoreSettings{
			LegalBanner:  true,
			HistoryLines: 25,
			LogLevel:     "info",
		},
		Backend: domain.BackendSettings{
			Provider:       "ollama",
			Model:          "qwen2.5",
			Endpoint:       "http://localhost:11434",
			AuthEnvVar:     "OPENAI_API_KEY",
			TimeoutSeconds: 60,
		},
		Policy: domain.PolicySettings{
			RedTeamMode:  false,
			AnonymiseIPs: false,
			RulesFile:    filepath.Join(userHomeDir(), ".kaalsec", "policy.yaml"),
		},
		Execution: domain.ExecutionSettings{
			Shell:          "auto",
			TimeoutSeconds: 300,
			ExcerptBytes:   4096,
		},
		Suggestions: domain.SuggestionSettings{
			TTLMinutes:  60,
			KeepBatches: 5,
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Core.HistoryLines == 0 {
		cfg.Core.HistoryLines = 25
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 60
	}
	if cfg.Execution.ExcerptBytes == 0 {
		cfg.Execution.ExcerptBytes = 4096
	}
	if cfg.Suggestions.TTLMinutes == 0 {
		cfg.Suggestions.TTLMinutes = 60
	}
	if cfg.Suggestions.KeepBatches == 0 {
		cfg.Suggestions.KeepBatches = 5
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

// BaseDir is the directory holding config, rules, plugins, the suggestion
// cache and session logs.
func BaseDir() string {
	return filepath.Join(userHomeDir(), ".kaalsec")
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
