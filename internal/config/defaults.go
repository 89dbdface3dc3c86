package config

import (
	"time"

	"github.com/rawanfarouq/EduRA-sub001/internal/ranking"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".edura-match/edura.db"
	}
	if cfg.LLM.GenerationModel == "" {
		cfg.LLM.GenerationModel = "gemini-2.5-flash"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-004"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
		if cfg.Embedding.Provider == "onnx" {
			cfg.Embedding.Dimensions = 384
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Expertise.MaxKeywords == 0 {
		cfg.Expertise.MaxKeywords = 20
	}

	m := &cfg.Matching
	if m.TextBudget == 0 {
		m.TextBudget = 8000
	}
	if m.Workers == 0 {
		m.Workers = 8
	}
	if m.CallTimeout == 0 {
		m.CallTimeout = 30 * time.Second
	}
	if m.Push == (ranking.Policy{}) {
		m.Push = ranking.PushPolicy()
	}
	if m.Pull == (ranking.Policy{}) {
		m.Pull = ranking.PullPolicy()
	}
	m.Boosts.ApplyDefaults()

	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = 587
	}
	if cfg.Mail.SMTP.Timeout == 0 {
		cfg.Mail.SMTP.Timeout = 15 * time.Second
	}
	if cfg.Mail.MinInterval == 0 {
		cfg.Mail.MinInterval = 200 * time.Millisecond
	}
	if cfg.Mail.SendTimeout == 0 {
		cfg.Mail.SendTimeout = 20 * time.Second
	}
	if cfg.Mail.Workers == 0 {
		cfg.Mail.Workers = 4
	}
	if cfg.Intake.Debounce == 0 {
		cfg.Intake.Debounce = 400 * time.Millisecond
	}
}
