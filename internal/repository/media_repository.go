package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/abogida/abogida-api/internal/models"
)

// MediaRepository persists attachment rows linked to daily updates.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository creates a new instance of MediaRepository.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Insert stores a media asset row. Called in phase two of a post, after the
// object upload succeeded.
func (r *MediaRepository) Insert(ctx context.Context, asset *models.MediaAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO media_assets (id, school_id, update_id, uploaded_by, file_name, file_path, file_type, file_size, created_at) VALUES (:id, :school_id, :update_id, :uploaded_by, :file_name, :file_path, :file_type, :file_size, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, asset); err != nil {
		return fmt.Errorf("insert media asset: %w", err)
	}
	return nil
}

// ListByUpdateIDs returns every asset attached to the given updates, scoped to
// one school. One query serves a whole feed page.
func (r *MediaRepository) ListByUpdateIDs(ctx context.Context, schoolID string, updateIDs []string) ([]models.MediaAsset, error) {
	if len(updateIDs) == 0 {
		return []models.MediaAsset{}, nil
	}
	const query = `SELECT id, school_id, update_id, uploaded_by, file_name, file_path, file_type, file_size, created_at FROM media_assets WHERE school_id = $1 AND update_id = ANY($2) ORDER BY created_at ASC`
	assets := make([]models.MediaAsset, 0)
	if err := r.db.SelectContext(ctx, &assets, query, schoolID, pq.Array(updateIDs)); err != nil {
		return nil, fmt.Errorf("list media assets by update ids: %w", err)
	}
	return assets, nil
}

// FindByPath returns the asset stored at an object path.
func (r *MediaRepository) FindByPath(ctx context.Context, path string) (*models.MediaAsset, error) {
	const query = `SELECT id, school_id, update_id, uploaded_by, file_name, file_path, file_type, file_size, created_at FROM media_assets WHERE file_path = $1 LIMIT 1`
	var asset models.MediaAsset
	if err := r.db.GetContext(ctx, &asset, query, path); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find media asset by path: %w", err)
	}
	return &asset, nil
}
