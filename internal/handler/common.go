package handler // handler defines http handlers

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/guardpost/security-patrol/internal/model"
    "github.com/guardpost/security-patrol/internal/policy"
)

// defaultPageSize is the fixed page size for every listing endpoint.
const defaultPageSize = 10

// getActor extracts the authenticated actor from the echo context.  The
// JWT middleware stores user_id as uint64 and role as a string; anything
// else means the request slipped past authentication.
func getActor(c echo.Context) (policy.Actor, error) {
    uid, ok := c.Get("user_id").(uint64)
    if !ok || uid == 0 {
        return policy.Actor{}, errors.New("invalid user_id in context")
    }
    raw, _ := c.Get("role").(string)
    role, ok := model.ParseRole(raw)
    if !ok {
        return policy.Actor{}, errors.New("invalid role in context")
    }
    return policy.Actor{ID: uid, Role: role}, nil
}

// pageParam parses the ?page query parameter, defaulting to 1.
func pageParam(c echo.Context) int {
    if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
        return n
    }
    return 1
}

// idParam parses the :id path parameter.
func idParam(c echo.Context) (uint64, error) {
    return strconv.ParseUint(c.Param("id"), 10, 64)
}

// page is the envelope returned by every listing endpoint.  Total allows
// clients to render stable page navigation while round-tripping filters
// through the query string.
type page struct {
    Data     any   `json:"data"`
    Total    int64 `json:"total"`
    Page     int   `json:"page"`
    PageSize int   `json:"page_size"`
}
