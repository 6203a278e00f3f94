package router

import (
	"github.com/labstack/echo/v4"

	"github.com/guardpost/security-patrol/internal/handler"
	"github.com/guardpost/security-patrol/internal/middleware"
	"github.com/guardpost/security-patrol/internal/model"
)

// RegisterAttendance registers the guard check-in/check-out endpoints
// under /v1.  The role middleware rejects managers up front; the policy
// layer inside the handlers enforces the same rule again on every
// operation, so the route gate is not the only line of defense.
// Extra middleware (the Redis response cache) runs after JWTAuth so the
// cache key can include the authenticated user.
func RegisterAttendance(e *echo.Echo, h *handler.AttendanceHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGuard),
	}, extra...)
	g := e.Group("/v1/attendance", mw...)
	g.GET("", h.List)
	g.POST("", h.CheckIn)
	g.PATCH("/:id", h.CheckOut)
}

// RegisterIncidents registers the incident report endpoints and the
// role-branched dashboard.  All roles may list, file and view reports;
// per-record visibility and the two update surfaces are decided by the
// policy layer, not here.
func RegisterIncidents(e *echo.Echo, h *handler.IncidentHandler, d *handler.DashboardHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}, extra...)
	g := e.Group("/v1", mw...)
	g.GET("/incident-reports", h.List)
	g.POST("/incident-reports", h.Create)
	g.GET("/incident-reports/:id", h.Show)
	g.PATCH("/incident-reports/:id", h.Update)
	g.GET("/dashboard", d.Stats)
}

// RegisterManager registers admin/superadmin-only endpoints, currently
// just the guard directory backing the reporter filter dropdown.
func RegisterManager(e *echo.Echo, h *handler.GuardHandler, jwtSecret string) {
	g := e.Group(
		"/v1/guards",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireManager(),
	)
	g.GET("", h.List)
}
