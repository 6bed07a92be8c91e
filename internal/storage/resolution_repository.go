package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/devboom/devboom/internal/model"
)

// ResolutionRepository persists the icon resolution audit log.
type ResolutionRepository interface {
	Create(ctx context.Context, res *model.IconResolution) error
	CountByTool(ctx context.Context, toolID string) (int64, error)
	CountBySource(ctx context.Context, source string) (int64, error)
	Recent(ctx context.Context, limit int) ([]model.IconResolution, error)
}

type sqliteResolutionRepository struct {
	db *sqlx.DB
}

// NewResolutionRepository creates a SQLite-backed ResolutionRepository.
func NewResolutionRepository(db *sqlx.DB) ResolutionRepository {
	return &sqliteResolutionRepository{db: db}
}

func (r *sqliteResolutionRepository) Create(ctx context.Context, res *model.IconResolution) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO icon_resolutions (tool_id, source, mime, size_bytes, success, duration_ms)
		VALUES (:tool_id, :source, :mime, :size_bytes, :success, :duration_ms)
	`, res)
	if err != nil {
		return fmt.Errorf("creating resolution record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	res.ID = id
	return nil
}

func (r *sqliteResolutionRepository) CountByTool(ctx context.Context, toolID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM icon_resolutions WHERE tool_id = ?", toolID)
	return count, err
}

func (r *sqliteResolutionRepository) CountBySource(ctx context.Context, source string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM icon_resolutions WHERE source = ?", source)
	return count, err
}

func (r *sqliteResolutionRepository) Recent(ctx context.Context, limit int) ([]model.IconResolution, error) {
	var rows []model.IconResolution
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM icon_resolutions ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent resolutions: %w", err)
	}
	return rows, nil
}
