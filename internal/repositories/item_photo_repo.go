package repositories

import (
	"context"

	"homestock/internal/models"

	"github.com/google/uuid"
)

type ItemPhotoRepository interface {
	Create(ctx context.Context, photo *models.ItemPhoto) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.ItemPhoto, error)
	ListByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]*models.ItemPhoto, error)
	ListKeysByLocationIDs(ctx context.Context, ownerID uuid.UUID, locationIDs []uuid.UUID) ([]string, error)
	ListKeysByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]string, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type itemPhotoRepo struct {
	db Database
}

func NewItemPhotoRepo(db Database) ItemPhotoRepository {
	return &itemPhotoRepo{db: db}
}

func (r *itemPhotoRepo) Create(ctx context.Context, photo *models.ItemPhoto) error {
	query := `
		INSERT INTO item_photos (id, owner_id, item_id, object_key, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, photo.ID, photo.OwnerID, photo.ItemID, photo.ObjectKey,
		photo.ContentType, photo.SizeBytes)
	return err
}

func (r *itemPhotoRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.ItemPhoto, error) {
	photo := &models.ItemPhoto{}
	query := `
		SELECT id, owner_id, item_id, object_key, content_type, size_bytes, created_at
		FROM item_photos
		WHERE owner_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, ownerID, id).Scan(&photo.ID, &photo.OwnerID, &photo.ItemID,
		&photo.ObjectKey, &photo.ContentType, &photo.SizeBytes, &photo.CreatedAt)
	if err != nil {
		return nil, err
	}
	return photo, nil
}

func (r *itemPhotoRepo) ListByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]*models.ItemPhoto, error) {
	query := `
		SELECT id, owner_id, item_id, object_key, content_type, size_bytes, created_at
		FROM item_photos
		WHERE owner_id = $1 AND item_id = $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*models.ItemPhoto
	for rows.Next() {
		photo := &models.ItemPhoto{}
		if err := rows.Scan(&photo.ID, &photo.OwnerID, &photo.ItemID, &photo.ObjectKey,
			&photo.ContentType, &photo.SizeBytes, &photo.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

// ListKeysByLocationIDs collects the object keys of every photo attached to
// items inside the given locations, so a forced subtree delete can clean
// the bucket after the rows are gone.
func (r *itemPhotoRepo) ListKeysByLocationIDs(ctx context.Context, ownerID uuid.UUID, locationIDs []uuid.UUID) ([]string, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT p.object_key
		FROM item_photos p
		JOIN items i ON i.owner_id = p.owner_id AND i.id = p.item_id
		WHERE p.owner_id = $1 AND i.location_id = ANY($2)
	`
	return r.collectKeys(ctx, query, ownerID, locationIDs)
}

func (r *itemPhotoRepo) ListKeysByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]string, error) {
	query := `SELECT object_key FROM item_photos WHERE owner_id = $1 AND item_id = $2`
	return r.collectKeys(ctx, query, ownerID, itemID)
}

func (r *itemPhotoRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM item_photos WHERE owner_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, ownerID, id)
	return err
}

func (r *itemPhotoRepo) collectKeys(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
