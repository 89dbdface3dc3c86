package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// insertChunkRows keeps one statement under SQLite's bound-parameter limit.
const insertChunkRows = 500

var notificationColumns = []string{
	"id", "recipient_id", "candidate_id", "target_id", "kind", "payload",
	"action_status", "is_read", "created_at", "updated_at",
}

// InsertNotifications persists records in one transaction and returns the ones that were
// newly created. A record whose (candidate, target) pair already exists, in the table or
// earlier in the same batch, is skipped. Either every new record is stored or none is.
func (s *SQLiteStorage) InsertNotifications(ctx context.Context, records []*models.NotificationRecord) ([]*models.NotificationRecord, error) {
	if len(records) == 0 {
		return []*models.NotificationRecord{}, nil
	}

	now := s.now()
	byID := make(map[string]*models.NotificationRecord, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.ActionStatus == "" {
			r.ActionStatus = models.ActionNone
		}
		if r.Kind == "" {
			r.Kind = models.KindCourseMatch
		}
		r.IsRead = false
		r.CreatedAt, r.UpdatedAt = now, now
		byID[r.ID] = r
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin notification batch: %w", err)
	}
	defer tx.Rollback()

	created := make(map[string]bool, len(records))
	for start := 0; start < len(records); start += insertChunkRows {
		end := start + insertChunkRows
		if end > len(records) {
			end = len(records)
		}
		ids, err := insertNotificationChunk(ctx, tx, records[start:end])
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			created[id] = true
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit notification batch: %w", err)
	}

	out := make([]*models.NotificationRecord, 0, len(created))
	for _, r := range records {
		if created[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func insertNotificationChunk(ctx context.Context, tx *sql.Tx, chunk []*models.NotificationRecord) ([]string, error) {
	ins := builder.Insert("notifications").Columns(notificationColumns...)
	for _, r := range chunk {
		payload, err := encodePayload(r.Payload)
		if err != nil {
			return nil, err
		}
		ins = ins.Values(r.ID, r.RecipientID, r.CandidateID, r.TargetID, string(r.Kind), payload,
			string(r.ActionStatus), r.IsRead, r.CreatedAt, r.UpdatedAt)
	}
	query, args, err := ins.Suffix("ON CONFLICT(candidate_id, target_id) DO NOTHING RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification insert: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert notifications: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan inserted id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("insert notifications: %w", err)
	}
	return ids, nil
}

// GetNotification returns one notification.
func (s *SQLiteStorage) GetNotification(ctx context.Context, id string) (*models.NotificationRecord, error) {
	return getNotification(ctx, s.db, id)
}

type queryRunner interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func getNotification(ctx context.Context, db queryRunner, id string) (*models.NotificationRecord, error) {
	list, err := queryNotifications(ctx, db, builder.Select(notificationColumns...).From("notifications").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return &list[0], nil
}

// ListNotifications returns notifications matching f, newest first.
func (s *SQLiteStorage) ListNotifications(ctx context.Context, f NotificationFilter) ([]models.NotificationRecord, error) {
	q := builder.Select(notificationColumns...).From("notifications")
	if f.RecipientID != "" {
		q = q.Where(sq.Eq{"recipient_id": f.RecipientID})
	}
	if f.TargetID != "" {
		q = q.Where(sq.Eq{"target_id": f.TargetID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"action_status": string(f.Status)})
	}
	if f.UnreadOnly {
		q = q.Where(sq.Eq{"is_read": 0})
	}
	q = q.OrderBy("created_at DESC", "id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		if f.Limit <= 0 {
			q = q.Limit(uint64(1<<63 - 1))
		}
		q = q.Offset(uint64(f.Offset))
	}
	return queryNotifications(ctx, s.db, q)
}

func queryNotifications(ctx context.Context, db queryRunner, q sq.SelectBuilder) ([]models.NotificationRecord, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification query: %w", err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.NotificationRecord, 0)
	for rows.Next() {
		var (
			n            models.NotificationRecord
			kind, status string
			payload      string
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.CandidateID, &n.TargetID, &kind, &payload,
			&status, &n.IsRead, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = models.NotificationKind(kind)
		n.ActionStatus = models.ActionStatus(status)
		if n.Payload, err = decodePayload(payload); err != nil {
			return nil, fmt.Errorf("notification %s: %w", n.ID, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UpdateActionStatus moves a notification to status `to`. The current status is read and
// the transition checked inside the same transaction, so concurrent updates cannot skip a
// state. An invalid transition returns an error wrapping models.ErrInvalidTransition.
func (s *SQLiteStorage) UpdateActionStatus(ctx context.Context, id string, to models.ActionStatus) (*models.NotificationRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	current, err := getNotification(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTransition(current.ActionStatus, to); err != nil {
		return nil, err
	}

	now := s.now()
	query, args, err := builder.Update("notifications").
		Set("action_status", string(to)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id, "action_status": string(current.ActionStatus)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status update: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update status of notification %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: notification %s changed concurrently", models.ErrInvalidTransition, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	current.ActionStatus = to
	current.UpdatedAt = now
	return current, nil
}

// MarkRead sets the read flag. Marking an already read notification is not an error.
func (s *SQLiteStorage) MarkRead(ctx context.Context, id string) error {
	res, err := builder.Update("notifications").
		Set("is_read", 1).
		Where(sq.Eq{"id": id}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	return requireAffected(res, "notification", id)
}
