// Package config loads the edura-match configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rawanfarouq/EduRA-sub001/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	JSONLogs  bool            `yaml:"json_logs"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Expertise ExpertiseConfig `yaml:"expertise"`
	Matching  MatchingConfig  `yaml:"matching"`
	Mail      MailConfig      `yaml:"mail"`
	Intake    IntakeConfig    `yaml:"intake"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
	// MaxUploadBytes bounds CV uploads.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" validate:"gt=0"`
}

// StorageConfig holds the database location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" validate:"required"`
}

// LLMConfig holds Gemini settings shared by expertise extraction and the gemini embedder.
type LLMConfig struct {
	APIKey          string  `yaml:"api_key"`
	GenerationModel string  `yaml:"generation_model"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	Temperature     float32 `yaml:"temperature" validate:"gte=0,lte=2"`
}

// EmbeddingConfig selects and sizes the embedding backend.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" validate:"oneof=gemini onnx mock"`
	Dimensions int    `yaml:"dimensions" validate:"min=1"`
	ModelPath  string `yaml:"model_path" validate:"required_if=Provider onnx"`
	MaxTokens  int    `yaml:"max_tokens" validate:"min=1"`
	CacheSize  int    `yaml:"cache_size" validate:"gte=0"`
}

// ExpertiseConfig tunes expertise extraction.
type ExpertiseConfig struct {
	MaxKeywords int `yaml:"max_keywords" validate:"min=1"`
}

// MatchingConfig tunes both flows.
type MatchingConfig struct {
	// TextBudget is the rune budget for text sent to extraction and embedding.
	TextBudget  int                 `yaml:"text_budget" validate:"min=1"`
	Workers     int                 `yaml:"workers" validate:"min=1"`
	CallTimeout time.Duration       `yaml:"call_timeout" validate:"gte=0"`
	RunBudget   time.Duration       `yaml:"run_budget" validate:"gte=0"`
	Push        ranking.Policy      `yaml:"push"`
	Pull        ranking.Policy      `yaml:"pull"`
	Boosts      ranking.BoostConfig `yaml:"boosts"`
}

// MailConfig configures the mail sink. When disabled, messages are only logged.
type MailConfig struct {
	Enabled bool       `yaml:"enabled"`
	SMTP    SMTPConfig `yaml:"smtp"`
	// MinInterval is the minimum spacing between two sends.
	MinInterval time.Duration `yaml:"min_interval" validate:"gte=0"`
	SendTimeout time.Duration `yaml:"send_timeout" validate:"gte=0"`
	Workers     int           `yaml:"workers" validate:"min=1"`
	// LinkBase prefixes course links in notification emails.
	LinkBase string `yaml:"link_base" validate:"omitempty,url"`
}

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port" validate:"omitempty,min=1,max=65535"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from" validate:"omitempty,email"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

// IntakeConfig configures the course posting drop directories.
type IntakeConfig struct {
	Directories  []string      `yaml:"directories"`
	Debounce     time.Duration `yaml:"debounce" validate:"gte=0"`
	SyncExisting bool          `yaml:"sync_existing"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the config file at path, applies defaults and environment overrides, expands
// paths and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return finish(&cfg, filepath.Dir(path))
}

// Default returns the default configuration with environment overrides applied, for running
// without a config file.
func Default() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return finish(&Config{}, wd)
}

func finish(cfg *Config, configDir string) (*Config, error) {
	ApplyDefaults(cfg)
	if err := LoadEnv(cfg, configDir); err != nil {
		return nil, err
	}
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Intake.Directories {
		cfg.Intake.Directories[i] = expandPath(cfg.Intake.Directories[i], configDir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the rules that span sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Embedding.Provider == "gemini" && c.LLM.APIKey == "" {
		return errors.New("invalid config: embedding provider gemini needs llm.api_key (or EDURA_GEMINI_API_KEY)")
	}
	if c.Mail.Enabled && (c.Mail.SMTP.Host == "" || c.Mail.SMTP.From == "") {
		return errors.New("invalid config: mail.enabled needs mail.smtp.host and mail.smtp.from")
	}
	if p := c.Matching.Pull; p.MaxResults > 0 && p.MinResults > p.MaxResults {
		return fmt.Errorf("invalid config: matching.pull.min_results %d exceeds max_results %d", p.MinResults, p.MaxResults)
	}
	return nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. ":memory:" is kept as is.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		path = rest
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
