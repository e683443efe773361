package handlers

import (
	"net/http"

	"homestock/internal/common"
	"homestock/internal/services"

	"github.com/labstack/echo/v4"
)

// StatsHandlers serves the owner dashboard aggregate.
type StatsHandlers struct {
	statsService services.StatsService
}

func NewStatsHandlers(statsService services.StatsService) *StatsHandlers {
	return &StatsHandlers{statsService: statsService}
}

// GetStats handles GET /stats
func (h *StatsHandlers) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.statsService.OwnerStats(ctx, ownerID)
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusOK, stats)
}
