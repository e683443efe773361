package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"homestock/internal/caching"
	"homestock/internal/common"
	"homestock/internal/models"
	"homestock/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type ItemService interface {
	Create(ctx context.Context, ownerID, locationID uuid.UUID, name string, description *string, quantity *int) (*models.Item, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, name string, description *string, quantity *int) (*models.Item, error)
	Move(ctx context.Context, ownerID, id, locationID uuid.UUID) (*models.Item, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByLocation(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.Item, error)
	Search(ctx context.Context, ownerID uuid.UUID, query string, locationID *uuid.UUID, limit, offset int) (*models.ItemSearchResult, error)
}

type itemService struct {
	itemRepo     repositories.ItemRepository
	locationRepo repositories.LocationRepository
	photoRepo    repositories.ItemPhotoRepository
	activityRepo repositories.ActivityRepository
	minioService MinioService
	cacheService caching.CacheService
	bucket       string
	logger       zerolog.Logger
}

func NewItemService(
	itemRepo repositories.ItemRepository,
	locationRepo repositories.LocationRepository,
	photoRepo repositories.ItemPhotoRepository,
	activityRepo repositories.ActivityRepository,
	minioService MinioService,
	cacheService caching.CacheService,
	bucket string,
	logger zerolog.Logger,
) ItemService {
	return &itemService{
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		photoRepo:    photoRepo,
		activityRepo: activityRepo,
		minioService: minioService,
		cacheService: cacheService,
		bucket:       bucket,
		logger:       logger,
	}
}

func validateItemFields(name string, description *string, quantity int) error {
	if err := validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.RuneLength(1, 200).Error("name must be between 1 and 200 characters"),
	); err != nil {
		return err
	}
	if err := validation.Validate(common.SafeString(description),
		validation.RuneLength(0, 2000).Error("description must be at most 2000 characters"),
	); err != nil {
		return err
	}
	// Required rejects the zero value, which Min alone lets through.
	return validation.Validate(quantity,
		validation.Required.Error("quantity must be at least 1"),
		validation.Min(1).Error("quantity must be at least 1"),
	)
}

func (s *itemService) Create(ctx context.Context, ownerID, locationID uuid.UUID, name string, description *string, quantity *int) (*models.Item, error) {
	name = strings.TrimSpace(name)
	qty := 1
	if quantity != nil {
		qty = *quantity
	}
	if err := validateItemFields(name, description, qty); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	if _, err := s.locationRepo.GetByID(ctx, ownerID, locationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %s: %w", locationID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load location: %w", err)
	}

	item := &models.Item{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		LocationID:  locationID,
		Name:        name,
		Description: description,
		Quantity:    qty,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, item.ID, models.ActionCreate,
		models.JSONB{"name": item.Name, "quantity": item.Quantity, "location_id": locationID.String()})
	return item, nil
}

func (s *itemService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Item, error) {
	if cached, err := s.cacheService.GetItem(ctx, ownerID, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("item_id", id.String()).Msg("item cache read failed")
	}

	item, err := s.itemRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}

	if cacheErr := s.cacheService.SetItem(ctx, ownerID, item, cacheTTL); cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Str("item_id", id.String()).Msg("item cache write failed")
	}
	return item, nil
}

func (s *itemService) Update(ctx context.Context, ownerID, id uuid.UUID, name string, description *string, quantity *int) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}

	name = strings.TrimSpace(name)
	qty := item.Quantity
	if quantity != nil {
		qty = *quantity
	}
	if err := validateItemFields(name, description, qty); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	item.Name = name
	item.Description = description
	item.Quantity = qty
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, id, models.ActionUpdate,
		models.JSONB{"name": item.Name, "quantity": item.Quantity})
	return item, nil
}

func (s *itemService) Move(ctx context.Context, ownerID, id, locationID uuid.UUID) (*models.Item, error) {
	if _, err := s.locationRepo.GetByID(ctx, ownerID, locationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("destination location %s: %w", locationID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load destination: %w", err)
	}

	item, err := s.itemRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}

	if err := s.itemRepo.UpdateLocation(ctx, ownerID, id, locationID); err != nil {
		return nil, fmt.Errorf("move item: %w", err)
	}

	from := item.LocationID
	item.LocationID = locationID
	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, id, models.ActionMove,
		models.JSONB{"name": item.Name, "from_location_id": from.String(), "to_location_id": locationID.String()})
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item %s: %w", id, common.ErrNotFound)
		}
		return fmt.Errorf("load item: %w", err)
	}

	objectKeys, err := s.photoRepo.ListKeysByItem(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("list photo keys: %w", err)
	}

	if err := s.itemRepo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	for _, objectKey := range objectKeys {
		if removeErr := s.minioService.DeleteImage(ctx, s.bucket, objectKey); removeErr != nil {
			s.logger.Warn().Err(removeErr).Str("object_key", objectKey).Msg("failed to remove photo object")
		}
	}

	s.invalidateOwner(ctx, ownerID)
	s.recordActivity(ctx, ownerID, id, models.ActionDelete, models.JSONB{"name": item.Name})
	return nil
}

func (s *itemService) ListByLocation(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	if _, err := s.locationRepo.GetByID(ctx, ownerID, locationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %s: %w", locationID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load location: %w", err)
	}

	limit, offset = common.ValidatePaginationParams(limit, offset)
	items, err := s.itemRepo.ListByLocation(ctx, ownerID, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Search runs the subtree-scoped paginated name search. A scope id that
// resolves to nothing (deleted or foreign) yields an empty page rather than
// an error.
func (s *itemService) Search(ctx context.Context, ownerID uuid.UUID, query string, locationID *uuid.UUID, limit, offset int) (*models.ItemSearchResult, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	filter := &models.ItemSearchFilter{
		Query:  strings.TrimSpace(query),
		Limit:  limit,
		Offset: offset,
	}

	if locationID != nil {
		if _, err := s.locationRepo.GetByID(ctx, ownerID, *locationID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &models.ItemSearchResult{Items: []*models.ItemSearchHit{}, Total: 0, HasMore: false}, nil
			}
			return nil, fmt.Errorf("load scope location: %w", err)
		}
		descendantIDs, err := s.locationRepo.DescendantIDs(ctx, ownerID, *locationID)
		if err != nil {
			return nil, fmt.Errorf("resolve scope: %w", err)
		}
		filter.LocationIDs = append([]uuid.UUID{*locationID}, descendantIDs...)
	}

	result, err := s.itemRepo.Search(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return result, nil
}

func (s *itemService) invalidateOwner(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cacheService.InvalidateOwnerCache(ctx, ownerID); err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID.String()).Msg("cache invalidation failed")
	}
}

func (s *itemService) recordActivity(ctx context.Context, ownerID, itemID uuid.UUID, action string, detail models.JSONB) {
	activity := &models.Activity{
		OwnerID:    ownerID,
		EntityType: models.EntityItem,
		EntityID:   itemID,
		Action:     action,
		Detail:     detail,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID.String()).Str("action", action).Msg("failed to record activity")
	}
}
