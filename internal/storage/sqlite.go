package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// builder renders squirrel statements with SQLite's ? placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteStorage is the tutor/course repository and the notification sink.
type SQLiteStorage struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithLogger sets the logger used for unreadable cached rows.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLiteStorage) { s.logger = utils.OrNop(l) }
}

// NewSQLiteStorage opens or creates the database at dbPath and initializes the schema.
// Parent directories are created if needed. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	dsn := dbPath
	if dbPath == ":memory:" {
		// A shared cache keeps every pooled connection on the same in-memory database.
		dsn = fmt.Sprintf("file:mem%d?mode=memory&cache=shared", time.Now().UnixNano())
	} else if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStorage{
		db:     db,
		path:   dbPath,
		now:    func() time.Time { return time.Now().UTC() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tutors (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		cv_text TEXT NOT NULL DEFAULT '',
		cv_filename TEXT NOT NULL DEFAULT '',
		cv_media_type TEXT NOT NULL DEFAULT '',
		cv_content BLOB,
		expertise TEXT,
		embedding BLOB,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category_name TEXT NOT NULL DEFAULT '',
		embedding BLOB,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}',
		action_status TEXT NOT NULL DEFAULT 'none',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (candidate_id, target_id)
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_tutors_created_at ON tutors(created_at);
	CREATE INDEX IF NOT EXISTS idx_courses_created_at ON courses(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Ping checks that the database is reachable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats returns row counts and the on-disk size of the database files.
func (s *SQLiteStorage) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		dst   *int64
		query sq.SelectBuilder
	}{
		{&st.Tutors, builder.Select("COUNT(*)").From("tutors")},
		{&st.Courses, builder.Select("COUNT(*)").From("courses")},
		{&st.Notifications, builder.Select("COUNT(*)").From("notifications")},
		{&st.Unread, builder.Select("COUNT(*)").From("notifications").Where(sq.Eq{"is_read": 0})},
	}
	for _, c := range counts {
		if err := c.query.RunWith(s.db).QueryRowContext(ctx).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("count: %w", err)
		}
	}

	if s.path != ":memory:" {
		n, err := DiskUsageBytes(s.path, s.path+"-wal", s.path+"-shm")
		if err != nil {
			return Stats{}, fmt.Errorf("disk usage: %w", err)
		}
		st.DiskBytes = n
	}
	return st, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
