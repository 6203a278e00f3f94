package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/guardpost/security-patrol/internal/model"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds one of the specified roles.  It assumes
// JWTAuth already stored the role in the context under "role".  Requests
// with a missing or disallowed role are aborted with 403 Forbidden.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := c.Get("role").(string)
            if !ok {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            role, ok := model.ParseRole(raw)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// RequireManager is shorthand for the admin/superadmin gate used on
// manager-only routes such as the guard directory.
func RequireManager() echo.MiddlewareFunc {
    return RequireRole(model.RoleAdmin, model.RoleSuperadmin)
}
