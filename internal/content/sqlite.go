package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	slug         TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '',
	published_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS lessons (
	id           INTEGER PRIMARY KEY,
	track        TEXT NOT NULL,
	title        TEXT NOT NULL,
	position     INTEGER NOT NULL,
	body         TEXT NOT NULL DEFAULT '',
	duration_sec INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS lessons_track ON lessons (track, position);
`

// SQLiteStore serves content from a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// OpenSQLite opens the database at dsn, creates the schema and seeds it
// when empty.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// An in-memory database lives and dies with a single connection.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.seed(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range SeedPosts() {
		if err := putPost(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, l := range SeedLessons() {
		if err := putLesson(ctx, tx, l); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putPost(ctx context.Context, db execer, p Post) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO posts (slug, title, summary, body, tags, published_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (slug) DO UPDATE SET
		   title = excluded.title,
		   summary = excluded.summary,
		   body = excluded.body,
		   tags = excluded.tags,
		   published_at = excluded.published_at`,
		p.Slug, p.Title, p.Summary, p.Body, strings.Join(p.Tags, ","), toMillis(p.Published),
	)
	if err != nil {
		return fmt.Errorf("put post %q: %w", p.Slug, err)
	}
	return nil
}

func putLesson(ctx context.Context, db execer, l Lesson) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO lessons (id, track, title, position, body, duration_sec)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   track = excluded.track,
		   title = excluded.title,
		   position = excluded.position,
		   body = excluded.body,
		   duration_sec = excluded.duration_sec`,
		l.ID, l.Track, l.Title, l.Order, l.Body, int64(l.Duration/time.Second),
	)
	if err != nil {
		return fmt.Errorf("put lesson %d: %w", l.ID, err)
	}
	return nil
}

// PutPost adds or replaces a post.
func (s *SQLiteStore) PutPost(ctx context.Context, p Post) error {
	return putPost(ctx, s.db, p)
}

// PutLesson adds or replaces a lesson.
func (s *SQLiteStore) PutLesson(ctx context.Context, l Lesson) error {
	return putLesson(ctx, s.db, l)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (Post, error) {
	var (
		p         Post
		tags      string
		published int64
	)
	if err := row.Scan(&p.Slug, &p.Title, &p.Summary, &p.Body, &tags, &published); err != nil {
		return Post{}, err
	}
	if tags != "" {
		p.Tags = strings.Split(tags, ",")
	}
	p.Published = fromMillis(published)
	return p, nil
}

func scanLesson(row scanner) (Lesson, error) {
	var (
		l   Lesson
		sec int64
	)
	if err := row.Scan(&l.ID, &l.Track, &l.Title, &l.Order, &l.Body, &sec); err != nil {
		return Lesson{}, err
	}
	l.Duration = time.Duration(sec) * time.Second
	return l, nil
}

func (s *SQLiteStore) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, title, summary, body, tags, published_at
		 FROM posts ORDER BY published_at DESC, slug`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetPost(ctx context.Context, slug string) (Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT slug, title, summary, body, tags, published_at FROM posts WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post %q: %w", slug, err)
	}
	return p, nil
}

func (s *SQLiteStore) ListLessons(ctx context.Context, track string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, track, title, position, body, duration_sec
		 FROM lessons WHERE track = ? ORDER BY position, id`, track)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var out []Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetLesson(ctx context.Context, id int) (Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, track, title, position, body, duration_sec FROM lessons WHERE id = ?`, id)
	l, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Lesson{}, fmt.Errorf("lesson %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Lesson{}, fmt.Errorf("get lesson %d: %w", id, err)
	}
	return l, nil
}
