package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/scenedraw/internal/core/domain"
)

// SceneRepo implements ports.SceneRepository on a jsonb table.
type SceneRepo struct {
	db *DB
}

func NewSceneRepo(db *DB) *SceneRepo {
	return &SceneRepo{db: db}
}

func (r *SceneRepo) Save(ctx context.Context, scene *domain.StoredScene) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO scenes (id, title, saved_at, record)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			saved_at = EXCLUDED.saved_at,
			record = EXCLUDED.record,
			updated_at = NOW()
	`, scene.ID, scene.Title, scene.SavedAt, string(scene.Record))
	if err != nil {
		return fmt.Errorf("upsert scene: %w", err)
	}
	return nil
}

func (r *SceneRepo) Get(ctx context.Context, id string) (*domain.StoredScene, error) {
	s := &domain.StoredScene{}
	var record string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, title, saved_at, record::text
		FROM scenes WHERE id = $1
	`, id).Scan(&s.ID, &s.Title, &s.SavedAt, &record)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSceneNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Record = []byte(record)
	return s, nil
}

func (r *SceneRepo) List(ctx context.Context, offset, limit int) ([]domain.StoredScene, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM scenes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, saved_at, record::text
		FROM scenes
		ORDER BY saved_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var scenes []domain.StoredScene
	for rows.Next() {
		var s domain.StoredScene
		var record string
		if err := rows.Scan(&s.ID, &s.Title, &s.SavedAt, &record); err != nil {
			return nil, 0, err
		}
		s.Record = []byte(record)
		scenes = append(scenes, s)
	}
	return scenes, total, rows.Err()
}

func (r *SceneRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
