package handlers

import (
	"net/http"

	"homestock/internal/common"
	"homestock/internal/services"

	"github.com/labstack/echo/v4"
)

// ActivityHandlers serves the per-owner activity feed.
type ActivityHandlers struct {
	activityService services.ActivityService
}

func NewActivityHandlers(activityService services.ActivityService) *ActivityHandlers {
	return &ActivityHandlers{activityService: activityService}
}

// ListActivity handles GET /activity
func (h *ActivityHandlers) ListActivity(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := parsePagination(c)

	activities, err := h.activityService.List(ctx, ownerID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"activity": activities,
	})
}
