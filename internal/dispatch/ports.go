package dispatch

import (
	"context"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// Sink persists notification records in one batch and returns the records it newly created.
// Records whose (candidate, target) pair already exists are skipped, not failed.
type Sink interface {
	InsertNotifications(ctx context.Context, records []*models.NotificationRecord) ([]*models.NotificationRecord, error)
}
