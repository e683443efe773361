package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homestock/internal/models"

	"github.com/google/uuid"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Activity, error)
}

type activityRepo struct {
	db Database
}

func NewActivityRepo(db Database) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now()
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	var detailBytes []byte
	if activity.Detail != nil {
		var err error
		detailBytes, err = json.Marshal(activity.Detail)
		if err != nil {
			return fmt.Errorf("failed to marshal detail: %w", err)
		}
	}

	query := `
		INSERT INTO activity_logs (id, owner_id, entity_type, entity_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, activity.ID, activity.OwnerID, activity.EntityType,
		activity.EntityID, activity.Action, detailBytes, activity.CreatedAt)
	return err
}

func (r *activityRepo) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Activity, error) {
	query := `
		SELECT id, owner_id, entity_type, entity_id, action, detail, created_at
		FROM activity_logs
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		activity := &models.Activity{}
		var detailBytes []byte
		if err := rows.Scan(&activity.ID, &activity.OwnerID, &activity.EntityType,
			&activity.EntityID, &activity.Action, &detailBytes, &activity.CreatedAt); err != nil {
			return nil, err
		}
		if len(detailBytes) > 0 {
			if err := json.Unmarshal(detailBytes, &activity.Detail); err != nil {
				return nil, fmt.Errorf("failed to unmarshal detail: %w", err)
			}
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
