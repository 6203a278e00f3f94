package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/guardpost/security-patrol/internal/policy"
	"github.com/guardpost/security-patrol/internal/repository"
)

// AttendanceHandler serves the guard check-in/check-out endpoints.  Every
// operation is policy-gated up front: attendance is guard-only in the
// absolute sense, so managers get 403 before any data is touched.
type AttendanceHandler struct {
	Records *repository.AttendanceRepo
}

func NewAttendanceHandler(r *repository.AttendanceRepo) *AttendanceHandler {
	return &AttendanceHandler{Records: r}
}

type checkInReq struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	LocationName string   `json:"location_name"`
}

// validate returns field-level messages; an empty map means the body is
// acceptable.  Coordinates are required and range-checked before any
// mutation happens.
func (r checkInReq) validate() map[string]string {
	fields := map[string]string{}
	if r.Latitude == nil {
		fields["latitude"] = "latitude is required"
	} else if *r.Latitude < -90 || *r.Latitude > 90 {
		fields["latitude"] = "latitude must be between -90 and 90"
	}
	if r.Longitude == nil {
		fields["longitude"] = "longitude is required"
	} else if *r.Longitude < -180 || *r.Longitude > 180 {
		fields["longitude"] = "longitude must be between -180 and 180"
	}
	return fields
}

// List returns the guard's own attendance records, newest check-in
// first, ten per page.
func (h *AttendanceHandler) List(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if d := policy.Authorize(actor, policy.AttendanceList, nil); !d.Allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := pageParam(c)
	records, total, err := h.Records.ListByUser(ctx, actor.ID, p, defaultPageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, page{Data: records, Total: total, Page: p, PageSize: defaultPageSize})
}

// CheckIn creates a new open shift for the calling guard.  The check-in
// timestamp is set server-side; no dedup check runs against existing
// open records, so a guard can hold several open shifts at once.
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if d := policy.Authorize(actor, policy.AttendanceCreate, nil); !d.Allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fields := req.validate(); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	var locationName *string
	if name := strings.TrimSpace(req.LocationName); name != "" {
		locationName = &name
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Records.Create(ctx, actor.ID, *req.Latitude, *req.Longitude, locationName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
	return c.JSON(http.StatusCreated, rec)
}

// CheckOut closes the guard's own shift.  The write is an unconditional
// overwrite: a second check-out on the same record succeeds and simply
// refreshes the timestamp.
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if d := policy.Authorize(actor, policy.AttendanceUpdate, &rec); !d.Allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	updated, err := h.Records.Close(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-out failed"})
	}
	return c.JSON(http.StatusOK, updated)
}
