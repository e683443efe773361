package handlers

import (
	"net/http"

	"homestock/internal/common"
	"homestock/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LocationHandlers handles HTTP requests for the location tree.
type LocationHandlers struct {
	locationService services.LocationService
}

func NewLocationHandlers(locationService services.LocationService) *LocationHandlers {
	return &LocationHandlers{locationService: locationService}
}

// CreateLocationRequest represents the location creation payload
type CreateLocationRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// RenameLocationRequest carries the new name for a location.
type RenameLocationRequest struct {
	Name string `json:"name"`
}

// MoveLocationRequest carries the new parent; null means top level.
type MoveLocationRequest struct {
	NewParentID *string `json:"new_parent_id"`
}

// parseOptionalUUID turns an optional string field into a *uuid.UUID.
// Absent or empty means nil.
func parseOptionalUUID(raw *string, fieldName string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(*raw, fieldName)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreateLocation handles POST /locations
func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	parentID, err := parseOptionalUUID(req.ParentID, "parent_id")
	if err != nil {
		return common.SendValidationError(c, "parent_id", err.Error())
	}

	location, err := h.locationService.Create(ctx, ownerID, req.Name, parentID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusCreated, location)
}

// GetTree handles GET /locations/tree
func (h *LocationHandlers) GetTree(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	nodes, err := h.locationService.Tree(ctx, ownerID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"tree": nodes})
}

// GetLocation handles GET /locations/:id
func (h *LocationHandlers) GetLocation(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	location, err := h.locationService.Get(ctx, ownerID, locationID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, location)
}

// GetChildren handles GET /locations/:id/children
func (h *LocationHandlers) GetChildren(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	children, err := h.locationService.Children(ctx, ownerID, &locationID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"children": children})
}

// ListRoots handles GET /locations
func (h *LocationHandlers) ListRoots(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	roots, err := h.locationService.Children(ctx, ownerID, nil)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"locations": roots})
}

// RenameLocation handles PUT /locations/:id/rename
func (h *LocationHandlers) RenameLocation(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req RenameLocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	location, err := h.locationService.Rename(ctx, ownerID, locationID, req.Name)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, location)
}

// MoveLocation handles PUT /locations/:id/move
func (h *LocationHandlers) MoveLocation(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req MoveLocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	newParentID, err := parseOptionalUUID(req.NewParentID, "new_parent_id")
	if err != nil {
		return common.SendValidationError(c, "new_parent_id", err.Error())
	}

	location, err := h.locationService.Move(ctx, ownerID, locationID, newParentID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, location)
}

// DeleteLocation handles DELETE /locations/:id?force=
func (h *LocationHandlers) DeleteLocation(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	force := c.QueryParam("force") == "true"
	if err := h.locationService.Delete(ctx, ownerID, locationID, force); err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Location deleted"})
}
