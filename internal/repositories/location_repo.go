package repositories

import (
	"context"
	"errors"
	"fmt"

	"homestock/internal/models"
	"homestock/internal/pathtree"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// descendantDepthCap bounds the recursive subtree expansion. The tree is
// acyclic by construction, the cap only guards pathological data.
const descendantDepthCap = 128

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Location, error)
	GetManyByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*models.Location, error)
	GetChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*models.Location, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Location, error)
	DescendantIDs(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error)
	UpdateBatch(ctx context.Context, locations []*models.Location) error
	CountUsage(ctx context.Context, ownerID, id uuid.UUID) (*models.LocationUsage, error)
	DeleteSubtree(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	OwnerIDs(ctx context.Context) ([]uuid.UUID, error)
}

type locationRepo struct {
	db Database
}

func NewLocationRepo(db Database) LocationRepository {
	return &locationRepo{db: db}
}

const locationColumns = `id, owner_id, parent_id, name, path_names, path_ids, depth, created_at, updated_at`

func scanLocation(row pgx.Row) (*models.Location, error) {
	location := &models.Location{}
	err := row.Scan(&location.ID, &location.OwnerID, &location.ParentID, &location.Name,
		&location.PathNames, &location.PathIDs, &location.Depth, &location.CreatedAt, &location.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	// Compute the cached path from the parent's current row. A parent that
	// vanished between validation and insert degrades the node to a
	// top-level path instead of failing; the tree audit reports such rows.
	var parent *models.Location
	if location.ParentID != nil {
		p, err := r.GetByID(ctx, location.OwnerID, *location.ParentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		parent = p
	}
	location.PathNames, location.PathIDs, location.Depth = pathtree.ChildPath(parent, location.ID, location.Name)

	query := `
		INSERT INTO locations (id, owner_id, parent_id, name, path_names, path_ids, depth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, location.ID, location.OwnerID, location.ParentID, location.Name,
		location.PathNames, location.PathIDs, location.Depth)
	return err
}

func (r *locationRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE owner_id = $1 AND id = $2
	`
	return scanLocation(r.db.QueryRow(ctx, query, ownerID, id))
}

func (r *locationRepo) GetManyByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*models.Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE owner_id = $1 AND id = ANY($2)
	`
	rows, err := r.db.Query(ctx, query, ownerID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows)
}

func (r *locationRepo) GetChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*models.Location, error) {
	var rows pgx.Rows
	var err error
	if parentID == nil {
		query := `
			SELECT ` + locationColumns + `
			FROM locations
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY name ASC
		`
		rows, err = r.db.Query(ctx, query, ownerID)
	} else {
		query := `
			SELECT ` + locationColumns + `
			FROM locations
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY name ASC
		`
		rows, err = r.db.Query(ctx, query, ownerID, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows)
}

func (r *locationRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE owner_id = $1
		ORDER BY depth ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows)
}

// DescendantIDs returns every location reachable by following parent links
// down from id, excluding id itself.
func (r *locationRepo) DescendantIDs(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id, 1 AS rel_depth FROM locations WHERE owner_id = $1 AND parent_id = $2
			UNION ALL
			SELECT l.id, s.rel_depth + 1 FROM locations l
			JOIN subtree s ON l.parent_id = s.id
			WHERE l.owner_id = $1 AND s.rel_depth < $3
		)
		SELECT id FROM subtree
	`
	rows, err := r.db.Query(ctx, query, ownerID, id, descendantDepthCap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var descID uuid.UUID
		if err := rows.Scan(&descID); err != nil {
			return nil, err
		}
		ids = append(ids, descID)
	}
	return ids, rows.Err()
}

// UpdateBatch writes the cached path fields of every given row in a single
// transaction, so readers never observe a half-propagated subtree.
func (r *locationRepo) UpdateBatch(ctx context.Context, locations []*models.Location) error {
	if len(locations) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin path update: %w", err)
	}

	query := `
		UPDATE locations
		SET parent_id = $1, name = $2, path_names = $3, path_ids = $4, depth = $5, updated_at = NOW()
		WHERE owner_id = $6 AND id = $7
	`
	for _, loc := range locations {
		if _, err := tx.Exec(ctx, query, loc.ParentID, loc.Name, loc.PathNames, loc.PathIDs, loc.Depth, loc.OwnerID, loc.ID); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("update location %s: %w", loc.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *locationRepo) CountUsage(ctx context.Context, ownerID, id uuid.UUID) (*models.LocationUsage, error) {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM locations WHERE owner_id = $1 AND id = $2
			UNION ALL
			SELECT l.id FROM locations l JOIN subtree s ON l.parent_id = s.id WHERE l.owner_id = $1
		)
		SELECT
			(SELECT COUNT(*) FROM locations WHERE owner_id = $1 AND parent_id = $2),
			(SELECT COUNT(*) FROM items WHERE owner_id = $1 AND location_id = $2),
			(SELECT COUNT(*) FROM items WHERE owner_id = $1 AND location_id IN (SELECT id FROM subtree))
	`
	usage := &models.LocationUsage{}
	err := r.db.QueryRow(ctx, query, ownerID, id).Scan(&usage.ChildCount, &usage.ItemCount, &usage.SubtreeItemCount)
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// DeleteSubtree removes the given locations together with their items and
// photo rows in one transaction. Callers pass the full subtree id set,
// root included.
func (r *locationRepo) DeleteSubtree(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin subtree delete: %w", err)
	}

	photoQuery := `
		DELETE FROM item_photos
		WHERE owner_id = $1 AND item_id IN (SELECT id FROM items WHERE owner_id = $1 AND location_id = ANY($2))
	`
	if _, err := tx.Exec(ctx, photoQuery, ownerID, ids); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("delete subtree photos: %w", err)
	}
	itemQuery := `DELETE FROM items WHERE owner_id = $1 AND location_id = ANY($2)`
	if _, err := tx.Exec(ctx, itemQuery, ownerID, ids); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("delete subtree items: %w", err)
	}
	locationQuery := `DELETE FROM locations WHERE owner_id = $1 AND id = ANY($2)`
	if _, err := tx.Exec(ctx, locationQuery, ownerID, ids); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("delete subtree locations: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *locationRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM locations WHERE owner_id = $1`
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&count)
	return count, err
}

func (r *locationRepo) OwnerIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT owner_id FROM locations`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var ownerID uuid.UUID
		if err := rows.Scan(&ownerID); err != nil {
			return nil, err
		}
		owners = append(owners, ownerID)
	}
	return owners, rows.Err()
}

func collectLocations(rows pgx.Rows) ([]*models.Location, error) {
	var locations []*models.Location
	for rows.Next() {
		location := &models.Location{}
		if err := rows.Scan(&location.ID, &location.OwnerID, &location.ParentID, &location.Name,
			&location.PathNames, &location.PathIDs, &location.Depth, &location.CreatedAt, &location.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}
