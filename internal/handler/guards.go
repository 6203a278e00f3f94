package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/guardpost/security-patrol/internal/repository"
)

// GuardHandler exposes the guard directory used by the manager UI to
// populate reporter filters.  Route-level middleware restricts it to
// admin and superadmin callers.
type GuardHandler struct {
	Users *repository.UserRepo
}

func NewGuardHandler(u *repository.UserRepo) *GuardHandler { return &GuardHandler{Users: u} }

// List returns all active guard accounts as {id, name} pairs.
func (h *GuardHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guards, err := h.Users.ListGuards(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": guards})
}
