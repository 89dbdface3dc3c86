package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

var courseColumns = []string{"id", "title", "description", "category_name", "embedding"}

// UpsertTarget inserts or updates a course. A cached embedding is kept only while the
// title, description and category are unchanged.
func (s *SQLiteStorage) UpsertTarget(ctx context.Context, t *models.TargetItem) error {
	if t.ID == "" {
		return errors.New("course id is required")
	}
	now := s.now()
	query, args, err := builder.Insert("courses").
		Columns(append(courseColumns, "created_at", "updated_at")...).
		Values(t.ID, t.Title, t.Description, t.CategoryName, encodeVector(t.Embedding), now, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			embedding = CASE WHEN courses.title = excluded.title
					AND courses.description = excluded.description
					AND courses.category_name = excluded.category_name
				THEN COALESCE(excluded.embedding, courses.embedding) ELSE excluded.embedding END,
			title = excluded.title,
			description = excluded.description,
			category_name = excluded.category_name,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build course upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert course %s: %w", t.ID, err)
	}
	return nil
}

// SaveTargetEmbedding caches the embedding computed for a course.
func (s *SQLiteStorage) SaveTargetEmbedding(ctx context.Context, id string, embedding []float32) error {
	res, err := builder.Update("courses").
		Set("embedding", encodeVector(embedding)).
		Where(sq.Eq{"id": id}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save embedding for course %s: %w", id, err)
	}
	return requireAffected(res, "course", id)
}

// GetTarget returns one course.
func (s *SQLiteStorage) GetTarget(ctx context.Context, id string) (*models.TargetItem, error) {
	list, err := s.queryTargets(ctx, builder.Select(courseColumns...).From("courses").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return &list[0], nil
}

// ListTargets returns every course in creation order.
func (s *SQLiteStorage) ListTargets(ctx context.Context) ([]models.TargetItem, error) {
	return s.queryTargets(ctx, builder.Select(courseColumns...).From("courses").OrderBy("created_at", "id"))
}

func (s *SQLiteStorage) queryTargets(ctx context.Context, q sq.SelectBuilder) ([]models.TargetItem, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	out := make([]models.TargetItem, 0)
	for rows.Next() {
		var (
			t         models.TargetItem
			embedding []byte
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.CategoryName, &embedding); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		if t.Embedding, err = decodeVector(embedding); err != nil {
			s.logger.Warn("ignoring unreadable cached course embedding", zap.String("course_id", t.ID), zap.Error(err))
			t.Embedding = nil
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
