package intake

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// CourseStore persists courses read from postings.
type CourseStore interface {
	UpsertTarget(ctx context.Context, t *models.TargetItem) error
}

// PushFunc starts a push run for target and returns its job id.
type PushFunc func(target models.TargetItem) (string, error)

// Service stores postings and starts their push runs.
type Service struct {
	store  CourseStore
	push   PushFunc
	logger *zap.Logger
}

// NewService returns a Service. push may be nil to only store courses.
func NewService(store CourseStore, push PushFunc, logger *zap.Logger) *Service {
	return &Service{store: store, push: push, logger: utils.OrNop(logger)}
}

// HandleFile stores the posting at path and submits a push run for it. It returns the job
// id, or "" when no run was started.
func (s *Service) HandleFile(ctx context.Context, path string) (string, error) {
	target, posting, err := LoadPosting(path)
	if err != nil {
		return "", err
	}
	if err := s.store.UpsertTarget(ctx, &target); err != nil {
		return "", fmt.Errorf("store course %s: %w", target.ID, err)
	}
	log := s.logger.With(zap.String("course_id", target.ID), zap.String("path", path))
	if s.push == nil || !posting.ShouldNotify() {
		log.Info("course stored")
		return "", nil
	}
	jobID, err := s.push(target)
	if err != nil {
		return "", fmt.Errorf("submit push for course %s: %w", target.ID, err)
	}
	log.Info("course stored, push submitted", zap.String("job_id", jobID))
	return jobID, nil
}

// Watch starts a Watcher over dirs that feeds HandleFile. When syncExisting is set, postings
// already present are handled too.
func (s *Service) Watch(ctx context.Context, dirs []string, syncExisting bool, opts ...WatcherOption) (*Watcher, error) {
	opts = append([]WatcherOption{WithLogger(s.logger)}, opts...)
	w := NewWatcher(dirs, func(path string) {
		if _, err := s.HandleFile(ctx, path); err != nil {
			s.logger.Warn("failed to handle course posting", zap.String("path", path), zap.Error(err))
		}
	}, opts...)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	if syncExisting {
		go w.SyncExisting()
	}
	return w, nil
}
