package services

import (
	"context"
	"fmt"

	"homestock/internal/caching"
	"homestock/internal/models"
	"homestock/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// recentItemCount is how many recently touched items the dashboard shows.
const recentItemCount = 5

type StatsService interface {
	OwnerStats(ctx context.Context, ownerID uuid.UUID) (*models.OwnerStats, error)
}

type statsService struct {
	locationRepo repositories.LocationRepository
	itemRepo     repositories.ItemRepository
	cacheService caching.CacheService
	logger       zerolog.Logger
}

func NewStatsService(locationRepo repositories.LocationRepository, itemRepo repositories.ItemRepository,
	cacheService caching.CacheService, logger zerolog.Logger) StatsService {
	return &statsService{
		locationRepo: locationRepo,
		itemRepo:     itemRepo,
		cacheService: cacheService,
		logger:       logger.With().Str("component", "stats_service").Logger(),
	}
}

// OwnerStats assembles the dashboard aggregate, served from cache until the
// next mutation invalidates it.
func (s *statsService) OwnerStats(ctx context.Context, ownerID uuid.UUID) (*models.OwnerStats, error) {
	cached, err := s.cacheService.GetOwnerStats(ctx, ownerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID.String()).Msg("stats cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	locationCount, err := s.locationRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count locations: %w", err)
	}
	itemCount, totalQuantity, err := s.itemRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	breakdown, err := s.itemRepo.RootBreakdown(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("root breakdown: %w", err)
	}
	recent, err := s.itemRepo.RecentlyUpdated(ctx, ownerID, recentItemCount)
	if err != nil {
		return nil, fmt.Errorf("recent items: %w", err)
	}

	stats := &models.OwnerStats{
		LocationCount: locationCount,
		ItemCount:     itemCount,
		TotalQuantity: totalQuantity,
		RootBreakdown: breakdown,
		RecentItems:   recent,
	}

	if cacheErr := s.cacheService.SetOwnerStats(ctx, ownerID, stats, cacheTTL); cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Str("owner_id", ownerID.String()).Msg("stats cache write failed")
	}
	return stats, nil
}
