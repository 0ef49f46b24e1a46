package domain

import "time"

// Config mirrors ~/.kaalsec/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Core                CoreSettings       `yaml:"core"`
	Backend             BackendSettings    `yaml:"backend"`
	Policy              PolicySettings     `yaml:"policy"`
	Execution           ExecutionSettings  `yaml:"execution"`
	Suggestions         SuggestionSettings `yaml:"suggestions"`
}

// CoreSettings captures top-level toggles.
type CoreSettings struct {
	LegalBanner  bool   `yaml:"legal_banner"`
	HistoryLines int    `yaml:"history_lines"`
	LogLevel     string `yaml:"log_level"`
}

// BackendSettings selects and configures the language-model backend.
type BackendSettings struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	Endpoint       string `yaml:"endpoint"`
	AuthEnvVar     string `yaml:"auth_env_var"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PolicySettings defines policy engine behavior.
type PolicySettings struct {
	RedTeamMode  bool   `yaml:"red_team_mode"`
	AnonymiseIPs bool   `yaml:"anonymise_ips"`
	RulesFile    string `yaml:"rules_file"`
}

// ExecutionSettings controls how confirmed commands run.
type ExecutionSettings struct {
	Shell          string `yaml:"shell"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ExcerptBytes   int    `yaml:"excerpt_bytes"`
}

// SuggestionSettings controls the suggestion cache.
type SuggestionSettings struct {
	TTLMinutes  int `yaml:"ttl_minutes"`
	KeepBatches int `yaml:"keep_batches"`
}

// BackendTimeout returns the configured backend timeout as a duration.
func (c Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// ExecutionTimeout returns the optional execution ceiling; zero means no
// ceiling is imposed.
func (c Config) ExecutionTimeout() time.Duration {
	if c.Execution.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Execution.TimeoutSeconds) * time.Second
}

// SuggestionTTL returns the validity window for suggestion batches.
func (c Config) SuggestionTTL() time.Duration {
	if c.Suggestions.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Suggestions.TTLMinutes) * time.Minute
}
