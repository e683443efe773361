package services

import (
	"context"
	"fmt"

	"homestock/internal/common"
	"homestock/internal/models"
	"homestock/internal/repositories"

	"github.com/google/uuid"
)

type ActivityService interface {
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Activity, error)
}

type activityService struct {
	activityRepo repositories.ActivityRepository
}

func NewActivityService(activityRepo repositories.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

// List pages the owner's activity feed newest-first.
func (s *activityService) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*models.Activity, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	activities, err := s.activityRepo.List(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return activities, nil
}
