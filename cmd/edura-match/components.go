package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/config"
	"github.com/rawanfarouq/EduRA-sub001/internal/dispatch"
	"github.com/rawanfarouq/EduRA-sub001/internal/embedding"
	"github.com/rawanfarouq/EduRA-sub001/internal/expertise"
	"github.com/rawanfarouq/EduRA-sub001/internal/extract"
	"github.com/rawanfarouq/EduRA-sub001/internal/llm"
	"github.com/rawanfarouq/EduRA-sub001/internal/mail"
	"github.com/rawanfarouq/EduRA-sub001/internal/matching"
	"github.com/rawanfarouq/EduRA-sub001/internal/storage"
)

// Components holds the wired collaborators shared by every command.
type Components struct {
	Storage    *storage.SQLiteStorage
	Embedder   *embedding.Cached
	Extractor  *extract.Extractor
	Dispatcher *dispatch.Dispatcher
	Engine     *matching.Engine
}

// Close releases the embedder and the database.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if cfg.Storage.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	comps := &Components{Storage: store}

	var (
		gen       expertise.Generator
		embClient embedding.EmbedClient
	)
	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(ctx, llm.Options{
			APIKey:          cfg.LLM.APIKey,
			GenerationModel: cfg.LLM.GenerationModel,
			EmbeddingModel:  cfg.LLM.EmbeddingModel,
			Temperature:     cfg.LLM.Temperature,
		})
		if err != nil {
			comps.Close()
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		gen, embClient = client, client
	} else {
		logger.Warn("no Gemini API key configured; expertise extraction is disabled and boosts will not fire")
	}

	comps.Embedder, err = embedding.New(embedding.Options{
		Provider:    cfg.Embedding.Provider,
		Dimensions:  cfg.Embedding.Dimensions,
		ModelPath:   cfg.Embedding.ModelPath,
		MaxTokens:   cfg.Embedding.MaxTokens,
		CacheSize:   cfg.Embedding.CacheSize,
		TextBudget:  cfg.Matching.TextBudget,
		CallTimeout: cfg.Matching.CallTimeout,
	}, embClient)
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	logger.Info("embedder initialized",
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dimensions", comps.Embedder.Dimensions()))

	comps.Extractor = extract.NewExtractor(extract.WithLogger(logger))
	exp := expertise.New(gen,
		expertise.WithLogger(logger),
		expertise.WithTextBudget(cfg.Matching.TextBudget),
		expertise.WithMaxKeywords(cfg.Expertise.MaxKeywords))

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		comps.Close()
		return nil, err
	}
	comps.Dispatcher = dispatch.New(store, mailer,
		dispatch.WithLogger(logger),
		dispatch.WithGate(mail.NewGate(cfg.Mail.MinInterval)),
		dispatch.WithLinkBase(cfg.Mail.LinkBase),
		dispatch.WithSendTimeout(cfg.Mail.SendTimeout),
		dispatch.WithWorkers(cfg.Mail.Workers))

	comps.Engine = matching.New(store, comps.Extractor, exp, comps.Embedder, matchingConfig(cfg),
		matching.WithLogger(logger),
		matching.WithDispatcher(comps.Dispatcher))
	return comps, nil
}

func newMailer(cfg *config.Config, logger *zap.Logger) (mail.Mailer, error) {
	if !cfg.Mail.Enabled {
		logger.Info("mail disabled; notification emails are logged only")
		return mail.NewLogMailer(logger), nil
	}
	m, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.Mail.SMTP.Host,
		Port:     cfg.Mail.SMTP.Port,
		Username: cfg.Mail.SMTP.Username,
		Password: cfg.Mail.SMTP.Password,
		From:     cfg.Mail.SMTP.From,
		Timeout:  cfg.Mail.SMTP.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp mailer: %w", err)
	}
	return m, nil
}

func matchingConfig(cfg *config.Config) matching.Config {
	m := cfg.Matching
	return matching.Config{
		Push:        m.Push,
		Pull:        m.Pull,
		Boosts:      m.Boosts,
		Workers:     m.Workers,
		CallTimeout: m.CallTimeout,
		RunBudget:   m.RunBudget,
	}
}
