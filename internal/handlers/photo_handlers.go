package handlers

import (
	"net/http"

	"homestock/internal/common"
	"homestock/internal/services"

	"github.com/labstack/echo/v4"
)

// PhotoHandlers handles item photo uploads and downloads.
type PhotoHandlers struct {
	photoService services.PhotoService
}

func NewPhotoHandlers(photoService services.PhotoService) *PhotoHandlers {
	return &PhotoHandlers{photoService: photoService}
}

// UploadPhoto handles POST /items/:id/photos
func (h *PhotoHandlers) UploadPhoto(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item ID")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "Photo file is required")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to open uploaded file")
	}
	defer src.Close()

	photo, err := h.photoService.Upload(ctx, ownerID, itemID, file.Filename, src, file.Size)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusCreated, photo)
}

// ListPhotos handles GET /items/:id/photos
func (h *PhotoHandlers) ListPhotos(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "item ID")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	photos, err := h.photoService.ListByItem(ctx, ownerID, itemID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"photos": photos,
	})
}

// GetPhotoURL handles GET /photos/:id/url
func (h *PhotoHandlers) GetPhotoURL(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	photoID, err := common.ValidateUUID(c.Param("id"), "photo ID")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	url, err := h.photoService.PresignedURL(ctx, ownerID, photoID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": url,
	})
}

// DeletePhoto handles DELETE /photos/:id
func (h *PhotoHandlers) DeletePhoto(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	photoID, err := common.ValidateUUID(c.Param("id"), "photo ID")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.photoService.Delete(ctx, ownerID, photoID); err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Photo deleted",
	})
}
