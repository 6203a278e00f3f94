package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/guardpost/security-patrol/internal/model"
	"github.com/guardpost/security-patrol/internal/repository"
)

// DashboardHandler serves the role-branched landing stats.
type DashboardHandler struct {
	Incidents  *repository.IncidentRepo
	Attendance *repository.AttendanceRepo
	Users      *repository.UserRepo
}

func NewDashboardHandler(i *repository.IncidentRepo, a *repository.AttendanceRepo, u *repository.UserRepo) *DashboardHandler {
	return &DashboardHandler{Incidents: i, Attendance: a, Users: u}
}

type managerDashboard struct {
	TotalReports    int64                    `json:"total_reports"`
	PendingReports  int64                    `json:"pending_reports"`
	TotalGuards     int64                    `json:"total_guards"`
	RecentIncidents []repository.IncidentRow `json:"recent_incidents"`
}

type guardDashboard struct {
	MyReports       int64                    `json:"my_reports"`
	MyPending       int64                    `json:"my_pending"`
	TodayAttendance *model.AttendanceRecord  `json:"today_attendance"`
	RecentIncidents []repository.IncidentRow `json:"recent_incidents"`
}

// Stats returns manager-wide counters for admins and a personal summary
// for guards.  The five most recent reports are included either way,
// scoped to the guard's own reports on the guard branch.
func (h *DashboardHandler) Stats(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if actor.Role.CanManageIncidents() {
		return h.managerStats(ctx, c)
	}
	return h.guardStats(ctx, c, actor.ID)
}

func (h *DashboardHandler) managerStats(ctx context.Context, c echo.Context) error {
	total, err := h.Incidents.Count(ctx, 0, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	pending, err := h.Incidents.Count(ctx, 0, model.StatusPending)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	guards, err := h.Users.CountGuards(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	recent, err := h.Incidents.Recent(ctx, 0, 5)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, managerDashboard{
		TotalReports:    total,
		PendingReports:  pending,
		TotalGuards:     guards,
		RecentIncidents: recent,
	})
}

func (h *DashboardHandler) guardStats(ctx context.Context, c echo.Context, userID uint64) error {
	mine, err := h.Incidents.Count(ctx, userID, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	pending, err := h.Incidents.Count(ctx, userID, model.StatusPending)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	recent, err := h.Incidents.Recent(ctx, userID, 5)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := guardDashboard{MyReports: mine, MyPending: pending, RecentIncidents: recent}
	// No check-in today renders as null rather than an error.
	today, err := h.Attendance.TodayByUser(ctx, userID)
	switch {
	case err == nil:
		out.TodayAttendance = &today
	case errors.Is(err, repository.ErrAttendanceNotFound):
		// leave nil
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, out)
}
