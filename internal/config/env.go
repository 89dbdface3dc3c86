package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables that override secrets and paths from the config file.
const (
	EnvGeminiAPIKey = "EDURA_GEMINI_API_KEY"
	EnvSMTPUsername = "EDURA_SMTP_USERNAME"
	EnvSMTPPassword = "EDURA_SMTP_PASSWORD"
	EnvDatabasePath = "EDURA_DATABASE_PATH"
)

// LoadEnv reads .env from configDir (variables already set in the process win) and applies
// the overrides to cfg.
func LoadEnv(cfg *Config, configDir string) error {
	envFile := filepath.Join(configDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&cfg.LLM.APIKey, EnvGeminiAPIKey)
	override(&cfg.Mail.SMTP.Username, EnvSMTPUsername)
	override(&cfg.Mail.SMTP.Password, EnvSMTPPassword)
	override(&cfg.Storage.DatabasePath, EnvDatabasePath)
	return nil
}
