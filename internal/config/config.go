// Package config provides configuration loading for journallm.
//
// Configuration is layered: hardcoded defaults, then an optional YAML
// file, then JOURNALLM_-prefixed environment variables. Every pipeline
// entry point receives its configuration explicitly; nothing in the
// repository reads process-wide state after startup.
package config

import (
	"fmt"
	"time"

	"github.com/journallm/journallm/internal/logging"
)

// Config holds the complete journallm configuration.
type Config struct {
	Logging   logging.Config  `koanf:"logging"`
	Anthropic AnthropicConfig `koanf:"anthropic"`
	Budget    BudgetConfig    `koanf:"budget"`
	Extract   ExtractConfig   `koanf:"extract"`
	Server    ServerConfig    `koanf:"server"`
	Drive     DriveConfig     `koanf:"drive"`
}

// AnthropicConfig holds settings for the text-generation collaborator.
type AnthropicConfig struct {
	APIKey    Secret `koanf:"api_key"`
	BaseURL   string `koanf:"base_url"`
	Model     string `koanf:"model"`
	MaxTokens int    `koanf:"max_tokens"`
}

// BudgetConfig bounds the canonical document handed to the model.
type BudgetConfig struct {
	// MaxTokens is the admissible document size in budget units. Zero
	// disables enforcement.
	MaxTokens int `koanf:"max_tokens"`
	// Encoding names the tiktoken encoding used for local measurement.
	Encoding string `koanf:"encoding"`
	// UseAPICounts switches measurement to the Anthropic counting
	// endpoint instead of the local tokenizer.
	UseAPICounts bool `koanf:"use_api_counts"`
}

// ExtractConfig bounds archive extraction.
type ExtractConfig struct {
	MaxArchiveBytes   int64 `koanf:"max_archive_bytes"`
	MaxArchiveEntries int   `koanf:"max_archive_entries"`
}

// ServerConfig holds web shell settings.
type ServerConfig struct {
	Host           string   `koanf:"host"`
	Port           int      `koanf:"port"`
	MaxUploadBytes int64    `koanf:"max_upload_bytes"`
	JobTTL         Duration `koanf:"job_ttl"`
}

// DriveConfig holds Google Drive backup-download settings.
type DriveConfig struct {
	FolderID        string `koanf:"folder_id"`
	CredentialsFile string `koanf:"credentials_file"`
	TokenFile       string `koanf:"token_file"`
}

// applyDefaults fills zero values with working defaults.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Anthropic.BaseURL == "" {
		cfg.Anthropic.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Anthropic.MaxTokens == 0 {
		cfg.Anthropic.MaxTokens = 4000
	}
	if cfg.Budget.MaxTokens == 0 {
		cfg.Budget.MaxTokens = 190000
	}
	if cfg.Budget.Encoding == "" {
		cfg.Budget.Encoding = "cl100k_base"
	}
	if cfg.Extract.MaxArchiveBytes == 0 {
		cfg.Extract.MaxArchiveBytes = 500 * 1024 * 1024
	}
	if cfg.Extract.MaxArchiveEntries == 0 {
		cfg.Extract.MaxArchiveEntries = 10000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 100 * 1024 * 1024
	}
	if cfg.Server.JobTTL == 0 {
		cfg.Server.JobTTL = Duration(time.Hour)
	}
	if cfg.Drive.CredentialsFile == "" {
		cfg.Drive.CredentialsFile = "credentials.json"
	}
	if cfg.Drive.TokenFile == "" {
		cfg.Drive.TokenFile = "token.json"
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Budget.MaxTokens < 0 {
		return fmt.Errorf("budget.max_tokens cannot be negative: %d", c.Budget.MaxTokens)
	}
	if c.Extract.MaxArchiveBytes <= 0 {
		return fmt.Errorf("extract.max_archive_bytes must be positive: %d", c.Extract.MaxArchiveBytes)
	}
	if c.Extract.MaxArchiveEntries <= 0 {
		return fmt.Errorf("extract.max_archive_entries must be positive: %d", c.Extract.MaxArchiveEntries)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive: %d", c.Server.MaxUploadBytes)
	}
	return nil
}
