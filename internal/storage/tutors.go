package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

var tutorColumns = []string{
	"id", "recipient_id", "name", "email", "cv_text", "cv_filename", "cv_media_type",
	"cv_content", "expertise", "embedding",
}

// UpsertCandidate inserts or updates a tutor. Cached expertise and embedding survive the
// update only when the CV text and document are unchanged.
func (s *SQLiteStorage) UpsertCandidate(ctx context.Context, c *models.CandidateProfile) error {
	if c.ID == "" {
		return errors.New("tutor id is required")
	}
	if c.RecipientID == "" {
		c.RecipientID = c.ID
	}
	var filename, mediaType string
	var content []byte
	if c.Document != nil {
		filename, mediaType, content = c.Document.Filename, c.Document.MediaType, c.Document.Content
	}
	exp, err := encodeExpertise(c.Expertise)
	if err != nil {
		return err
	}
	now := s.now()

	query, args, err := builder.Insert("tutors").
		Columns(append(tutorColumns, "created_at", "updated_at")...).
		Values(c.ID, c.RecipientID, c.Name, c.Email, c.Text, filename, mediaType,
			content, exp, encodeVector(c.Embedding), now, now).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			recipient_id = excluded.recipient_id,
			name = excluded.name,
			email = excluded.email,
			expertise = CASE WHEN tutors.cv_text = excluded.cv_text AND tutors.cv_content IS excluded.cv_content
				THEN COALESCE(excluded.expertise, tutors.expertise) ELSE excluded.expertise END,
			embedding = CASE WHEN tutors.cv_text = excluded.cv_text AND tutors.cv_content IS excluded.cv_content
				THEN COALESCE(excluded.embedding, tutors.embedding) ELSE excluded.embedding END,
			cv_text = excluded.cv_text,
			cv_filename = excluded.cv_filename,
			cv_media_type = excluded.cv_media_type,
			cv_content = excluded.cv_content,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build tutor upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tutor %s: %w", c.ID, err)
	}
	return nil
}

// SaveCandidateDerived caches the expertise and embedding computed for a tutor's CV.
func (s *SQLiteStorage) SaveCandidateDerived(ctx context.Context, id string, exp models.Expertise, embedding []float32) error {
	encoded, err := encodeExpertise(exp)
	if err != nil {
		return err
	}
	res, err := builder.Update("tutors").
		Set("expertise", encoded).
		Set("embedding", encodeVector(embedding)).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("save derived for tutor %s: %w", id, err)
	}
	return requireAffected(res, "tutor", id)
}

// GetCandidate returns one tutor.
func (s *SQLiteStorage) GetCandidate(ctx context.Context, id string) (*models.CandidateProfile, error) {
	list, err := s.queryCandidates(ctx, builder.Select(tutorColumns...).From("tutors").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("tutor %s: %w", id, ErrNotFound)
	}
	return &list[0], nil
}

// ListCandidates returns every tutor in creation order.
func (s *SQLiteStorage) ListCandidates(ctx context.Context) ([]models.CandidateProfile, error) {
	return s.queryCandidates(ctx, builder.Select(tutorColumns...).From("tutors").OrderBy("created_at", "id"))
}

func (s *SQLiteStorage) queryCandidates(ctx context.Context, q sq.SelectBuilder) ([]models.CandidateProfile, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query tutors: %w", err)
	}
	defer rows.Close()

	out := make([]models.CandidateProfile, 0)
	for rows.Next() {
		var (
			c                   models.CandidateProfile
			filename, mediaType string
			content, embedding  []byte
			expertise           sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.RecipientID, &c.Name, &c.Email, &c.Text, &filename, &mediaType,
			&content, &expertise, &embedding); err != nil {
			return nil, fmt.Errorf("scan tutor: %w", err)
		}
		if len(content) > 0 {
			c.Document = &models.Document{Content: content, Filename: filename, MediaType: mediaType}
		}
		var expPtr *string
		if expertise.Valid {
			expPtr = &expertise.String
		}
		exp, expErr := decodeExpertise(expPtr)
		emb, embErr := decodeVector(embedding)
		if err := errors.Join(expErr, embErr); err != nil {
			// Unreadable cache: the tutor is re-derived on the next push run.
			s.logger.Warn("ignoring unreadable cached tutor data", zap.String("tutor_id", c.ID), zap.Error(err))
			exp, emb = models.EmptyExpertise(), nil
		}
		c.Expertise, c.Embedding = exp, emb
		out = append(out, c)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
