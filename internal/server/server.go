// Package server provides the HTTP API for edura-match.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/config"
	"github.com/rawanfarouq/EduRA-sub001/internal/jobs"
	"github.com/rawanfarouq/EduRA-sub001/internal/matching"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/internal/storage"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// Engine runs the pull and push flows.
type Engine interface {
	RankTargetsForCandidateText(ctx context.Context, text string, opts ...matching.RunOption) (*matching.PullResult, error)
	RankTargetsForCandidateDocument(ctx context.Context, doc models.Document, opts ...matching.RunOption) (*matching.PullResult, error)
	NotifyCandidatesForNewTarget(ctx context.Context, target models.TargetItem, opts ...matching.RunOption) (*matching.PushResult, error)
}

// Store is the persistence the handlers need.
type Store interface {
	UpsertTarget(ctx context.Context, t *models.TargetItem) error
	GetTarget(ctx context.Context, id string) (*models.TargetItem, error)
	ListNotifications(ctx context.Context, f storage.NotificationFilter) ([]models.NotificationRecord, error)
	UpdateActionStatus(ctx context.Context, id string, to models.ActionStatus) (*models.NotificationRecord, error)
	MarkRead(ctx context.Context, id string) error
	Stats(ctx context.Context) (storage.Stats, error)
}

// Jobs tracks push runs started over HTTP.
type Jobs interface {
	Submit(kind string, fn jobs.Func) (string, error)
	Get(id string) (jobs.Job, error)
	Wait(ctx context.Context, id string) (jobs.Job, error)
	Counts() map[jobs.Status]int
}

// Server is the HTTP server for the edura-match API.
type Server struct {
	engine   Engine
	store    Store
	jobs     Jobs
	config   *config.ServerConfig
	matching *config.MatchingConfig
	logger   *zap.Logger
	validate *validator.Validate
	server   *http.Server
}

// NewServer creates a server with the given dependencies. matchingCfg is only reported by
// the status endpoint and may be nil.
func NewServer(
	engine Engine,
	store Store,
	tracker Jobs,
	cfg *config.ServerConfig,
	matchingCfg *config.MatchingConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:   engine,
		store:    store,
		jobs:     tracker,
		config:   cfg,
		matching: matchingCfg,
		logger:   utils.OrNop(logger),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/match/cv", s.handleMatchCV)

		r.Post("/courses", s.handleCreateCourse)
		r.Post("/courses/{id}/notify", s.handleNotifyCourse)
		r.Get("/jobs/{id}", s.handleGetJob)

		r.Get("/notifications", s.handleListNotifications)
		r.Post("/notifications/{id}/action", s.handleNotificationAction)
		r.Post("/notifications/{id}/read", s.handleNotificationRead)

		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// SubmitPush starts a push run for target as a background job and returns its id.
func (s *Server) SubmitPush(target models.TargetItem, opts ...matching.RunOption) (string, error) {
	return s.jobs.Submit("push", func(ctx context.Context) (any, error) {
		return s.engine.NotifyCandidatesForNewTarget(ctx, target, opts...)
	})
}
