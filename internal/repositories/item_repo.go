package repositories

import (
	"context"
	"fmt"
	"strings"

	"homestock/internal/models"

	"github.com/google/uuid"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	UpdateLocation(ctx context.Context, ownerID, id, locationID uuid.UUID) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByLocation(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.Item, error)
	Search(ctx context.Context, ownerID uuid.UUID, filter *models.ItemSearchFilter) (*models.ItemSearchResult, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, int, error)
	RootBreakdown(ctx context.Context, ownerID uuid.UUID) ([]*models.RootBreakdown, error)
	RecentlyUpdated(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Item, error)
}

type itemRepo struct {
	db Database
}

func NewItemRepo(db Database) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, owner_id, location_id, name, description, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.OwnerID, item.LocationID, item.Name, item.Description, item.Quantity)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Item, error) {
	item := &models.Item{}
	query := `
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, ownerID, id).Scan(&item.ID, &item.OwnerID, &item.LocationID,
		&item.Name, &item.Description, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, quantity = $3, updated_at = NOW()
		WHERE owner_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, item.Name, item.Description, item.Quantity, item.OwnerID, item.ID)
	return err
}

func (r *itemRepo) UpdateLocation(ctx context.Context, ownerID, id, locationID uuid.UUID) error {
	query := `
		UPDATE items
		SET location_id = $1, updated_at = NOW()
		WHERE owner_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, locationID, ownerID, id)
	return err
}

// Delete removes the item and its photo rows together.
func (r *itemRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin item delete: %w", err)
	}

	photoQuery := `DELETE FROM item_photos WHERE owner_id = $1 AND item_id = $2`
	if _, err := tx.Exec(ctx, photoQuery, ownerID, id); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("delete item photos: %w", err)
	}
	itemQuery := `DELETE FROM items WHERE owner_id = $1 AND id = $2`
	if _, err := tx.Exec(ctx, itemQuery, ownerID, id); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("delete item: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *itemRepo) ListByLocation(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	query := `
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = $1 AND location_id = $2
		ORDER BY name ASC, id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, ownerID, locationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.LocationID, &item.Name,
			&item.Description, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Search filters by the expanded subtree scope and a case-insensitive name
// substring, ordered by name then id for stable pagination. The holding
// location's path is joined in live; items never cache paths themselves.
func (r *itemRepo) Search(ctx context.Context, ownerID uuid.UUID, filter *models.ItemSearchFilter) (*models.ItemSearchResult, error) {
	if filter == nil {
		filter = &models.ItemSearchFilter{}
	}

	where := ` WHERE i.owner_id = $1`
	args := []interface{}{ownerID}
	argIdx := 1

	if len(filter.LocationIDs) > 0 {
		argIdx++
		where += fmt.Sprintf(" AND i.location_id = ANY($%d)", argIdx)
		args = append(args, filter.LocationIDs)
	}
	if filter.Query != "" {
		argIdx++
		where += fmt.Sprintf(" AND i.name ILIKE $%d", argIdx)
		args = append(args, "%"+escapeLike(filter.Query)+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM items i` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := `
		SELECT i.id, i.owner_id, i.location_id, i.name, i.description, i.quantity, i.created_at, i.updated_at, l.path_names
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id` + where + fmt.Sprintf(`
		ORDER BY i.name ASC, i.id ASC
		LIMIT $%d OFFSET $%d`, argIdx+1, argIdx+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []*models.ItemSearchHit
	for rows.Next() {
		hit := &models.ItemSearchHit{}
		if err := rows.Scan(&hit.ID, &hit.OwnerID, &hit.LocationID, &hit.Name,
			&hit.Description, &hit.Quantity, &hit.CreatedAt, &hit.UpdatedAt, &hit.LocationPath); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.ItemSearchResult{
		Items:   hits,
		Total:   total,
		HasMore: filter.Offset+filter.Limit < total,
	}, nil
}

func (r *itemRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, int, error) {
	var count, quantity int
	query := `SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM items WHERE owner_id = $1`
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&count, &quantity)
	return count, quantity, err
}

func (r *itemRepo) RootBreakdown(ctx context.Context, ownerID uuid.UUID) ([]*models.RootBreakdown, error) {
	query := `
		SELECT l.path_ids[1], l.path_names[1], COUNT(i.id), COALESCE(SUM(i.quantity), 0)
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id
		WHERE i.owner_id = $1
		GROUP BY l.path_ids[1], l.path_names[1]
		ORDER BY COUNT(i.id) DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []*models.RootBreakdown
	for rows.Next() {
		entry := &models.RootBreakdown{}
		if err := rows.Scan(&entry.RootID, &entry.RootName, &entry.ItemCount, &entry.TotalQuantity); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, entry)
	}
	return breakdown, rows.Err()
}

func (r *itemRepo) RecentlyUpdated(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Item, error) {
	query := `
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.LocationID, &item.Name,
			&item.Description, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// escapeLike neutralizes LIKE wildcards in user input so a literal % or _
// in an item name stays literal.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
