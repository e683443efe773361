package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"homestock/internal/common"
	"homestock/internal/models"
	"homestock/internal/repositories"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	// maxPhotoSize caps uploads at 8 MiB.
	maxPhotoSize = 8 << 20
	// photoURLTTL is how long a presigned download link stays valid.
	photoURLTTL = 15 * time.Minute
	// sniffLen is how many leading bytes http.DetectContentType needs.
	sniffLen = 512
)

// allowedPhotoTypes are the content types accepted for item photos,
// determined by sniffing the upload rather than trusting the client.
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type PhotoService interface {
	Upload(ctx context.Context, ownerID, itemID uuid.UUID, filename string, reader io.Reader, size int64) (*models.ItemPhoto, error)
	ListByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]*models.ItemPhoto, error)
	PresignedURL(ctx context.Context, ownerID, photoID uuid.UUID) (string, error)
	Delete(ctx context.Context, ownerID, photoID uuid.UUID) error
}

type photoService struct {
	photoRepo    repositories.ItemPhotoRepository
	itemRepo     repositories.ItemRepository
	activityRepo repositories.ActivityRepository
	minioService MinioService
	bucket       string
	logger       zerolog.Logger
}

func NewPhotoService(photoRepo repositories.ItemPhotoRepository, itemRepo repositories.ItemRepository,
	activityRepo repositories.ActivityRepository, minioService MinioService, bucket string, logger zerolog.Logger) PhotoService {
	return &photoService{
		photoRepo:    photoRepo,
		itemRepo:     itemRepo,
		activityRepo: activityRepo,
		minioService: minioService,
		bucket:       bucket,
		logger:       logger.With().Str("component", "photo_service").Logger(),
	}
}

// Upload stores one photo for an item. The first bytes of the stream are
// sniffed to reject anything that is not a jpeg, png or webp, whatever the
// request claimed.
func (s *photoService) Upload(ctx context.Context, ownerID, itemID uuid.UUID, filename string, reader io.Reader, size int64) (*models.ItemPhoto, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty upload", common.ErrValidation)
	}
	if size > maxPhotoSize {
		return nil, fmt.Errorf("%w: photo exceeds %d bytes", common.ErrValidation, maxPhotoSize)
	}

	if _, err := s.itemRepo.GetByID(ctx, ownerID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", itemID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !allowedPhotoTypes[contentType] {
		return nil, fmt.Errorf("%w: unsupported photo type %s", common.ErrValidation, contentType)
	}

	// Object keys are namespaced per owner and item; the photo id keeps
	// re-uploads of the same filename from clobbering each other.
	photoID := uuid.New()
	objectKey := fmt.Sprintf("%s/%s/%s%s", ownerID, itemID, photoID, strings.ToLower(filepath.Ext(filename)))

	body := io.MultiReader(bytes.NewReader(head), reader)
	if err := s.minioService.UploadImage(ctx, s.bucket, objectKey, body, size, contentType); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	photo := &models.ItemPhoto{
		ID:          photoID,
		OwnerID:     ownerID,
		ItemID:      itemID,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   size,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		// The row is the source of truth; drop the orphaned object.
		if rmErr := s.minioService.DeleteImage(ctx, s.bucket, objectKey); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("object_key", objectKey).Msg("failed to remove orphaned photo object")
		}
		return nil, fmt.Errorf("save photo: %w", err)
	}

	s.recordActivity(ctx, ownerID, itemID, models.JSONB{"photo_added": photo.ID.String()})
	return photo, nil
}

func (s *photoService) ListByItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]*models.ItemPhoto, error) {
	if _, err := s.itemRepo.GetByID(ctx, ownerID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", itemID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}
	photos, err := s.photoRepo.ListByItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// PresignedURL returns a short-lived download link for a photo without
// proxying the bytes through the API.
func (s *photoService) PresignedURL(ctx context.Context, ownerID, photoID uuid.UUID) (string, error) {
	photo, err := s.photoRepo.GetByID(ctx, ownerID, photoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("photo %s: %w", photoID, common.ErrNotFound)
		}
		return "", fmt.Errorf("load photo: %w", err)
	}

	url, err := s.minioService.GetPresignedURL(s.bucket, photo.ObjectKey, photoURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign photo: %w", err)
	}
	return url, nil
}

func (s *photoService) Delete(ctx context.Context, ownerID, photoID uuid.UUID) error {
	photo, err := s.photoRepo.GetByID(ctx, ownerID, photoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("photo %s: %w", photoID, common.ErrNotFound)
		}
		return fmt.Errorf("load photo: %w", err)
	}

	if err := s.photoRepo.Delete(ctx, ownerID, photoID); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if err := s.minioService.DeleteImage(ctx, s.bucket, photo.ObjectKey); err != nil {
		s.logger.Warn().Err(err).Str("object_key", photo.ObjectKey).Msg("failed to delete photo object")
	}

	s.recordActivity(ctx, ownerID, photo.ItemID, models.JSONB{"photo_removed": photo.ID.String()})
	return nil
}

func (s *photoService) recordActivity(ctx context.Context, ownerID, itemID uuid.UUID, detail models.JSONB) {
	activity := &models.Activity{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		EntityType: models.EntityItem,
		EntityID:   itemID,
		Action:     models.ActionUpdate,
		Detail:     detail,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID.String()).Msg("failed to record photo activity")
	}
}
