package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Sentinel errors returned by services. Repositories wrap store-level causes
// around them; handlers translate them into the error envelope.
var (
	ErrNotFound     = errors.New("not found")
	ErrCycle        = errors.New("cycle rejected")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmailTaken   = errors.New("email already registered")
	ErrRateLimited  = errors.New("rate limited")
)

// DeleteConflictError reports why a location cannot be deleted without
// force, carrying the counts the caller needs to confirm a cascade.
type DeleteConflictError struct {
	ChildCount       int
	ItemCount        int
	SubtreeItemCount int
}

func (e *DeleteConflictError) Error() string {
	return fmt.Sprintf("location has %d children and %d items", e.ChildCount, e.ItemCount)
}

// Is lets errors.Is(err, ErrConflict) match a DeleteConflictError.
func (e *DeleteConflictError) Is(target error) bool {
	return target == ErrConflict
}

// RespondError maps a service error onto the standard error envelope.
func RespondError(c echo.Context, err error) error {
	var conflict *DeleteConflictError
	switch {
	case errors.As(err, &conflict):
		details := map[string]string{
			"child_count":        strconv.Itoa(conflict.ChildCount),
			"item_count":         strconv.Itoa(conflict.ItemCount),
			"subtree_item_count": strconv.Itoa(conflict.SubtreeItemCount),
		}
		return c.JSON(http.StatusConflict, CreateErrorResponse("conflict", "Location is not empty", details))
	case errors.Is(err, ErrCycle):
		return c.JSON(http.StatusConflict, CreateErrorResponse("cycle_rejected", err.Error(), nil))
	case errors.Is(err, ErrEmailTaken):
		return c.JSON(http.StatusConflict, CreateErrorResponse("conflict", err.Error(), nil))
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("not_found", err.Error(), nil))
	case errors.Is(err, ErrValidation):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("validation_failed", err.Error(), nil))
	case errors.Is(err, ErrUnauthorized):
		return SendUnauthorizedError(c)
	case errors.Is(err, ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, CreateErrorResponse("rate_limited", "Too many attempts, try again later", nil))
	default:
		return SendServerError(c, "Operation could not be completed")
	}
}
