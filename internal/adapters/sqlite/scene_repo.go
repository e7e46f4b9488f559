// Package sqlite stores saved scenes in a local SQLite file, for single-user
// installs that run without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL DEFAULT '',
    saved_at   TEXT NOT NULL,
    record     TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_scenes_saved_at ON scenes (saved_at DESC);
`

// Open opens (creating if needed) the database file at path.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// SceneRepo implements ports.SceneRepository.
type SceneRepo struct {
	db *sql.DB
}

func NewSceneRepo(db *sql.DB) *SceneRepo {
	return &SceneRepo{db: db}
}

// Init creates the schema.
func (r *SceneRepo) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *SceneRepo) Save(ctx context.Context, scene *domain.StoredScene) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO scenes (id, title, saved_at, record)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            title = excluded.title,
            saved_at = excluded.saved_at,
            record = excluded.record,
            updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
    `, scene.ID, scene.Title, formatTime(scene.SavedAt), string(scene.Record))
	if err != nil {
		return fmt.Errorf("upsert scene: %w", err)
	}
	return nil
}

func (r *SceneRepo) Get(ctx context.Context, id string) (*domain.StoredScene, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, title, saved_at, record
        FROM scenes
        WHERE id = ?
    `, id)

	s, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSceneNotFound
	}
	return s, err
}

func (r *SceneRepo) List(ctx context.Context, offset, limit int) ([]domain.StoredScene, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, title, saved_at, record
        FROM scenes
        ORDER BY saved_at DESC, id
        LIMIT ? OFFSET ?
    `, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var scenes []domain.StoredScene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, 0, err
		}
		scenes = append(scenes, *s)
	}
	return scenes, total, rows.Err()
}

func (r *SceneRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScene(row scanner) (*domain.StoredScene, error) {
	var (
		s       domain.StoredScene
		savedAt string
		record  string
	)
	if err := row.Scan(&s.ID, &s.Title, &savedAt, &record); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("scene %s: saved_at: %w", s.ID, err)
	}
	s.SavedAt = t
	s.Record = []byte(record)
	return &s, nil
}

// formatTime uses a fixed-width layout so saved_at sorts as text.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
