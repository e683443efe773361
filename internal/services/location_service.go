package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homestock/internal/caching"
	"homestock/internal/common"
	"homestock/internal/models"
	"homestock/internal/pathtree"
	"homestock/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cacheTTL bounds how stale a cached read may get if an invalidation is
// ever missed.
const cacheTTL = 15 * time.Minute

type LocationService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name string, parentID *uuid.UUID) (*models.Location, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Location, error)
	Children(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*models.Location, error)
	Tree(ctx context.Context, ownerID uuid.UUID) ([]*models.TreeNode, error)
	Rename(ctx context.Context, ownerID, id uuid.UUID, newName string) (*models.Location, error)
	Move(ctx context.Context, ownerID, id uuid.UUID, newParentID *uuid.UUID) (*models.Location, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID, force bool) error
}

type locationService struct {
	locationRepo repositories.LocationRepository
	photoRepo    repositories.ItemPhotoRepository
	activityRepo repositories.ActivityRepository
	minioService MinioService
	cacheService caching.CacheService
	bucket       string
	logger       zerolog.Logger
}

func NewLocationService(
	locationRepo repositories.LocationRepository,
	photoRepo repositories.ItemPhotoRepository,
	activityRepo repositories.ActivityRepository,
	minioService MinioService,
	cacheService caching.CacheService,
	bucket string,
	logger zerolog.Logger,
) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		photoRepo:    photoRepo,
		activityRepo: activityRepo,
		minioService: minioService,
		cacheService: cacheService,
		bucket:       bucket,
		logger:       logger,
	}
}

func validateLocationName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.RuneLength(1, 200).Error("name must be between 1 and 200 characters"),
	)
}

func (s *locationService) Create(ctx context.Context, ownerID uuid.UUID, name string, parentID *uuid.UUID) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if err := validateLocationName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	if parentID != nil {
		if _, err := s.locationRepo.GetByID(ctx, ownerID, *parentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("parent location %s: %w", *parentID, common.ErrNotFound)
			}
			return nil, fmt.Errorf("load parent location: %w", err)
		}
	}

	location := &models.Location{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		ParentID: parentID,
		Name:     name,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}

	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, models.EntityLocation, location.ID, models.ActionCreate,
		models.JSONB{"name": location.Name, "depth": location.Depth})
	return location, nil
}

func (s *locationService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Location, error) {
	if cached, err := s.cacheService.GetLocation(ctx, ownerID, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("location_id", id.String()).Msg("location cache read failed")
	}

	location, err := s.locationRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load location: %w", err)
	}

	if cacheErr := s.cacheService.SetLocation(ctx, ownerID, location, cacheTTL); cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Str("location_id", id.String()).Msg("location cache write failed")
	}
	return location, nil
}

func (s *locationService) Children(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*models.Location, error) {
	if parentID != nil {
		if _, err := s.locationRepo.GetByID(ctx, ownerID, *parentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("location %s: %w", *parentID, common.ErrNotFound)
			}
			return nil, fmt.Errorf("load location: %w", err)
		}
	}
	children, err := s.locationRepo.GetChildren(ctx, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

func (s *locationService) Tree(ctx context.Context, ownerID uuid.UUID) ([]*models.TreeNode, error) {
	if cached, err := s.cacheService.GetTree(ctx, ownerID); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID.String()).Msg("tree cache read failed")
	}

	locations, err := s.locationRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	nodes := make([]*models.TreeNode, 0, len(locations))
	for _, location := range locations {
		nodes = append(nodes, &models.TreeNode{
			ID:       location.ID,
			ParentID: location.ParentID,
			Name:     location.Name,
			Depth:    location.Depth,
		})
	}

	if cacheErr := s.cacheService.SetTree(ctx, ownerID, nodes, cacheTTL); cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Str("owner_id", ownerID.String()).Msg("tree cache write failed")
	}
	return nodes, nil
}

// Rename replaces the trailing path element on the node and the matching
// prefix on every descendant. Descendants are selected by id, so an
// equally-named sibling subtree is never touched.
func (s *locationService) Rename(ctx context.Context, ownerID, id uuid.UUID, newName string) (*models.Location, error) {
	newName = strings.TrimSpace(newName)
	if err := validateLocationName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	node, err := s.locationRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load location: %w", err)
	}

	oldName := node.Name
	descendants, err := s.loadDescendants(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	changed := pathtree.Rename(node, newName, descendants)
	if err := s.locationRepo.UpdateBatch(ctx, changed); err != nil {
		return nil, fmt.Errorf("rename location: %w", err)
	}

	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, models.EntityLocation, id, models.ActionRename,
		models.JSONB{"from": oldName, "to": newName, "descendants": len(changed) - 1})
	return node, nil
}

// Move validates in a fixed order (destination, node, self-cycle,
// descendant-cycle; first failure wins) and then rebases the whole subtree
// onto the destination path in one batch.
func (s *locationService) Move(ctx context.Context, ownerID, id uuid.UUID, newParentID *uuid.UUID) (*models.Location, error) {
	var dest *models.Location
	if newParentID != nil {
		var err error
		dest, err = s.locationRepo.GetByID(ctx, ownerID, *newParentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("destination location %s: %w", *newParentID, common.ErrNotFound)
			}
			return nil, fmt.Errorf("load destination: %w", err)
		}
	}

	node, err := s.locationRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load location: %w", err)
	}

	if newParentID != nil && *newParentID == id {
		return nil, fmt.Errorf("cannot move a location under itself: %w", common.ErrCycle)
	}

	descendantIDs, err := s.locationRepo.DescendantIDs(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("resolve descendants: %w", err)
	}
	if newParentID != nil {
		for _, descendantID := range descendantIDs {
			if descendantID == *newParentID {
				return nil, fmt.Errorf("cannot move a location under its own descendant: %w", common.ErrCycle)
			}
		}
	}

	descendants, err := s.locationRepo.GetManyByIDs(ctx, ownerID, descendantIDs)
	if err != nil {
		return nil, fmt.Errorf("load descendants: %w", err)
	}

	changed := pathtree.Rebase(node, dest, descendants)
	if err := s.locationRepo.UpdateBatch(ctx, changed); err != nil {
		return nil, fmt.Errorf("move location: %w", err)
	}

	detail := models.JSONB{"name": node.Name, "depth": node.Depth}
	if newParentID != nil {
		detail["new_parent_id"] = newParentID.String()
	} else {
		detail["new_parent_id"] = nil
	}
	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, models.EntityLocation, id, models.ActionMove, detail)
	return node, nil
}

// Delete refuses to remove a non-empty location unless force is set, in
// which case the entire subtree (locations, items, photo rows and objects)
// goes in one pass.
func (s *locationService) Delete(ctx context.Context, ownerID, id uuid.UUID, force bool) error {
	node, err := s.locationRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("location %s: %w", id, common.ErrNotFound)
		}
		return fmt.Errorf("load location: %w", err)
	}

	usage, err := s.locationRepo.CountUsage(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("count location usage: %w", err)
	}
	if !force && (usage.ChildCount > 0 || usage.ItemCount > 0) {
		return &common.DeleteConflictError{
			ChildCount:       usage.ChildCount,
			ItemCount:        usage.ItemCount,
			SubtreeItemCount: usage.SubtreeItemCount,
		}
	}

	descendantIDs, err := s.locationRepo.DescendantIDs(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("resolve descendants: %w", err)
	}
	subtreeIDs := append([]uuid.UUID{id}, descendantIDs...)

	// Collect photo object keys before the rows vanish.
	objectKeys, err := s.photoRepo.ListKeysByLocationIDs(ctx, ownerID, subtreeIDs)
	if err != nil {
		return fmt.Errorf("list photo keys: %w", err)
	}

	if err := s.locationRepo.DeleteSubtree(ctx, ownerID, subtreeIDs); err != nil {
		return fmt.Errorf("delete subtree: %w", err)
	}

	for _, objectKey := range objectKeys {
		if removeErr := s.minioService.DeleteImage(ctx, s.bucket, objectKey); removeErr != nil {
			s.logger.Warn().Err(removeErr).Str("object_key", objectKey).Msg("failed to remove photo object")
		}
	}

	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, models.EntityLocation, id, models.ActionDelete,
		models.JSONB{"name": node.Name, "forced": force, "subtree_locations": len(subtreeIDs), "subtree_items": usage.SubtreeItemCount})
	return nil
}

func (s *locationService) loadDescendants(ctx context.Context, ownerID, id uuid.UUID) ([]*models.Location, error) {
	descendantIDs, err := s.locationRepo.DescendantIDs(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("resolve descendants: %w", err)
	}
	descendants, err := s.locationRepo.GetManyByIDs(ctx, ownerID, descendantIDs)
	if err != nil {
		return nil, fmt.Errorf("load descendants: %w", err)
	}
	return descendants, nil
}

func (s *locationService) invalidateOwner(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cacheService.InvalidateOwnerCache(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID.String()).Msg("cache invalidation failed")
	}
}

func (s *locationService) recordActivity(ctx context.Context, ownerID uuid.UUID, entityType string, entityID uuid.UUID, action string, detail models.JSONB) {
	activity := &models.Activity{
		OwnerID:    ownerID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Detail:     detail,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn().Err(err).Str("entity_id", entityID.String()).Str("action", action).Msg("failed to record activity")
	}
}
