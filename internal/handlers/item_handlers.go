package handlers

import (
	"net/http"
	"strconv"

	"homestock/internal/common"
	"homestock/internal/services"

	"github.com/labstack/echo/v4"
)

// ItemHandlers handles HTTP requests for items.
type ItemHandlers struct {
	itemService services.ItemService
}

func NewItemHandlers(itemService services.ItemService) *ItemHandlers {
	return &ItemHandlers{itemService: itemService}
}

// CreateItemRequest represents the item creation payload
type CreateItemRequest struct {
	LocationID  string  `json:"location_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity"`
}

// UpdateItemRequest represents the item update payload. A nil quantity
// keeps the stored value; a nil description clears it.
type UpdateItemRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity"`
}

// MoveItemRequest carries the destination location.
type MoveItemRequest struct {
	LocationID string `json:"location_id"`
}

// parsePagination reads limit/offset query params, leaving the service to
// clamp them.
func parsePagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

// CreateItem handles POST /items
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	locationID, err := common.ValidateUUID(req.LocationID, "location_id")
	if err != nil {
		return common.SendValidationError(c, "location_id", err.Error())
	}

	item, err := h.itemService.Create(ctx, ownerID, locationID, req.Name, req.Description, req.Quantity)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusCreated, item)
}

// GetItem handles GET /items/:id
func (h *ItemHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	item, err := h.itemService.Get(ctx, ownerID, itemID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

// SearchItems handles GET /items/search?q=&location_id=&limit=&offset=
func (h *ItemHandlers) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	scopeID, err := parseOptionalUUID(stringPtrOrNil(c.QueryParam("location_id")), "location_id")
	if err != nil {
		return common.SendValidationError(c, "location_id", err.Error())
	}

	limit, offset := parsePagination(c)
	result, err := h.itemService.Search(ctx, ownerID, c.QueryParam("q"), scopeID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// ListItemsByLocation handles GET /locations/:id/items
func (h *ItemHandlers) ListItemsByLocation(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	limit, offset := parsePagination(c)
	items, err := h.itemService.ListByLocation(ctx, ownerID, locationID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// UpdateItem handles PUT /items/:id
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := h.itemService.Update(ctx, ownerID, itemID, req.Name, req.Description, req.Quantity)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

// MoveItem handles PUT /items/:id/move
func (h *ItemHandlers) MoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req MoveItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	locationID, err := common.ValidateUUID(req.LocationID, "location_id")
	if err != nil {
		return common.SendValidationError(c, "location_id", err.Error())
	}

	item, err := h.itemService.Move(ctx, ownerID, itemID, locationID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /items/:id
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.itemService.Delete(ctx, ownerID, itemID); err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Item deleted"})
}

// stringPtrOrNil maps an empty query value to nil.
func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
