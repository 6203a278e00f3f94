package handler

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/guardpost/security-patrol/internal/model"
	"github.com/guardpost/security-patrol/internal/policy"
	"github.com/guardpost/security-patrol/internal/queue"
	"github.com/guardpost/security-patrol/internal/repository"
	queue_publisher "github.com/guardpost/security-patrol/internal/service"
	"github.com/guardpost/security-patrol/internal/storage"
)

// IncidentHandler serves the incident report endpoints.  Authorization
// runs through the policy package with an explicit actor on every call;
// the two disjoint update surfaces (content vs. review) are enforced
// there, so unauthorized fields never reach the repository.
type IncidentHandler struct {
	Reports     *repository.IncidentRepo
	Users       *repository.UserRepo
	Attachments *storage.AttachmentStore
}

func NewIncidentHandler(reports *repository.IncidentRepo, users *repository.UserRepo, attachments *storage.AttachmentStore) *IncidentHandler {
	if reports == nil || users == nil || attachments == nil {
		panic("nil dependency passed to NewIncidentHandler")
	}
	return &IncidentHandler{Reports: reports, Users: users, Attachments: attachments}
}

// incidentTimeLayouts are the accepted formats for incident_time values.
var incidentTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04"}

func parseIncidentTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range incidentTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ----- listing -----

type incidentListResp struct {
	page
	Filters   echo.Map             `json:"filters"`
	Guards    []repository.GuardRef `json:"guards,omitempty"`
	CanManage bool                 `json:"can_manage"`
}

// List returns one page of incident reports.  Non-managers are forced
// onto their own reports regardless of any user_id filter they supply;
// managers may combine search, reporter, date-range and status filters.
// All filters round-trip through the query string so page navigation
// stays stable.
func (h *IncidentHandler) List(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if d := policy.Authorize(actor, policy.IncidentList, nil); !d.Allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	fields := map[string]string{}
	f := repository.IncidentFilter{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     pageParam(c),
		PageSize: defaultPageSize,
	}

	var requestedUser uint64
	if raw := c.QueryParam("user_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fields["user_id"] = "user_id must be an integer"
		} else {
			requestedUser = n
		}
	}
	f.UserID = policy.ScopeIncidentList(actor, requestedUser)

	start, end := c.QueryParam("start_date"), c.QueryParam("end_date")
	for name, raw := range map[string]string{"start_date": start, "end_date": end} {
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			fields[name] = name + " must be formatted YYYY-MM-DD"
		}
	}
	// The range only applies when both bounds are present and valid.
	if len(fields) == 0 && start != "" && end != "" {
		f.StartDate, f.EndDate = start, end
	}

	if raw := c.QueryParam("status"); raw != "" {
		status, ok := model.ParseIncidentStatus(raw)
		if !ok {
			fields["status"] = "status must be pending, under_review or resolved"
		} else {
			f.Status = string(status)
		}
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Reports.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := incidentListResp{
		page: page{Data: rows, Total: total, Page: f.Page, PageSize: f.PageSize},
		Filters: echo.Map{
			"search":     f.Search,
			"user_id":    requestedUser,
			"start_date": f.StartDate,
			"end_date":   f.EndDate,
			"status":     f.Status,
		},
		CanManage: actor.Role.CanManageIncidents(),
	}
	// Managers also get the guard directory for the reporter dropdown.
	if resp.CanManage {
		if guards, err := h.Users.ListGuards(ctx); err == nil {
			resp.Guards = guards
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ----- create -----

// Create files a new incident report from a multipart form.  Attachments
// are validated as a batch and written to the file store before the row
// is inserted; if the insert then fails the stored files stay orphaned.
// The reporter is always the authenticated actor.
func (h *IncidentHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if d := policy.Authorize(actor, policy.IncidentCreate, nil); !d.Allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	fields := map[string]string{}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		fields["title"] = "incident title is required"
	} else if len(title) > 255 {
		fields["title"] = "title must be at most 255 characters"
	}
	description := strings.TrimSpace(c.FormValue("description"))
	if description == "" {
		fields["description"] = "incident description is required"
	}

	lat, err := strconv.ParseFloat(c.FormValue("latitude"), 64)
	if err != nil {
		fields["latitude"] = "location latitude is required"
	} else if lat < -90 || lat > 90 {
		fields["latitude"] = "latitude must be between -90 and 90"
	}
	lon, err := strconv.ParseFloat(c.FormValue("longitude"), 64)
	if err != nil {
		fields["longitude"] = "location longitude is required"
	} else if lon < -180 || lon > 180 {
		fields["longitude"] = "longitude must be between -180 and 180"
	}

	incidentTime, ok := parseIncidentTime(c.FormValue("incident_time"))
	if !ok {
		fields["incident_time"] = "incident time is required"
	}

	var uploads []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		uploads = form.File["attachments"]
		for _, fh := range uploads {
			if err := storage.ValidateUpload(fh); err != nil {
				fields["attachments"] = err.Error()
				break
			}
		}
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	attachments, err := h.Attachments.SaveAll(uploads)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storing attachments failed"})
	}

	rep := model.IncidentReport{
		UserID:       actor.ID,
		Title:        title,
		Description:  description,
		Latitude:     lat,
		Longitude:    lon,
		IncidentTime: incidentTime,
		Attachments:  attachments,
	}
	if name := strings.TrimSpace(c.FormValue("location_name")); name != "" {
		rep.LocationName = &name
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Reports.Create(ctx, &rep)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}

	h.publishReported(ctx, actor, created)
	return c.JSON(http.StatusCreated, created)
}

// ----- show -----

type incidentDetailResp struct {
	model.IncidentReport
	UserName  string `json:"user_name,omitempty"`
	CanManage bool   `json:"can_manage"`
}

// Show returns a single report to its reporter or any manager.
func (h *IncidentHandler) Show(c echo.Context) error {
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

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if d := policy.Authorize(actor, policy.IncidentView, &rep); !d.Allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	resp := incidentDetailResp{IncidentReport: rep, CanManage: actor.Role.CanManageIncidents()}
	if reporter, err := h.Users.GetByID(ctx, rep.UserID); err == nil {
		resp.UserName = reporter.Name
	}
	return c.JSON(http.StatusOK, resp)
}

// ----- update -----

type incidentUpdateReq struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	IncidentTime *string `json:"incident_time"`
	Status       *string `json:"status"`
	AdminNotes   *string `json:"admin_notes"`
}

// Update patches a report along one of the two write surfaces.  Managers
// write {status, admin_notes}; the reporting guard writes {title,
// description, incident_time} while the report is still pending.  Fields
// outside the caller's surface are dropped by the policy filter, never
// applied.  Every other actor/state combination gets 403.
func (h *IncidentHandler) Update(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req incidentUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	fields := map[string]string{}
	patch := policy.IncidentPatch{
		Title:       req.Title,
		Description: req.Description,
		AdminNotes:  req.AdminNotes,
	}
	if req.IncidentTime != nil {
		t, ok := parseIncidentTime(*req.IncidentTime)
		if !ok {
			fields["incident_time"] = "incident time must be a valid date"
		}
		patch.IncidentTime = &t
	}
	if req.Status != nil {
		status, ok := model.ParseIncidentStatus(*req.Status)
		if !ok {
			fields["status"] = "status must be pending, under_review or resolved"
		}
		patch.Status = &status
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	filtered, d := policy.FilterIncidentPatch(actor, &rep, patch)
	if !d.Allowed {
		log.Printf("incident update denied: report=%d actor=%d: %s", rep.ID, actor.ID, d.Reason)
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if filtered.IsEmpty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no updatable fields"})
	}

	if actor.Role.CanManageIncidents() {
		updated, err := h.Reports.UpdateReview(ctx, id, filtered.Status, filtered.AdminNotes)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		if filtered.Status != nil && *filtered.Status != rep.Status {
			h.publishStatusChanged(ctx, actor, rep, *filtered.Status)
		}
		return c.JSON(http.StatusOK, updated)
	}

	// Owner path: all three content fields are required, matching the
	// create-time validation rules.
	if filtered.Title == nil || strings.TrimSpace(*filtered.Title) == "" {
		fields["title"] = "incident title is required"
	}
	if filtered.Description == nil || strings.TrimSpace(*filtered.Description) == "" {
		fields["description"] = "incident description is required"
	}
	if filtered.IncidentTime == nil {
		fields["incident_time"] = "incident time is required"
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	updated, err := h.Reports.UpdateContent(ctx, id,
		strings.TrimSpace(*filtered.Title), strings.TrimSpace(*filtered.Description), *filtered.IncidentTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// ----- event publishing -----

func (h *IncidentHandler) publishReported(ctx context.Context, actor policy.Actor, rep model.IncidentReport) {
	ev := queue.IncidentReportedEvent{
		ReportID:     rep.ID,
		UserID:       rep.UserID,
		Title:        rep.Title,
		Latitude:     rep.Latitude,
		Longitude:    rep.Longitude,
		IncidentTime: rep.IncidentTime.UTC().Format(time.RFC3339),
		ReportedAt:   time.Now().UTC().Format(time.RFC3339),
		Attachments:  len(rep.Attachments),
	}
	if rep.LocationName != nil {
		ev.LocationName = *rep.LocationName
	}
	if reporter, err := h.Users.GetByID(ctx, actor.ID); err == nil {
		ev.ReporterName = reporter.Name
	}
	// Best effort; a down broker must not fail the request.
	_ = queue_publisher.PublishIncidentReported(ctx, ev)
}

func (h *IncidentHandler) publishStatusChanged(ctx context.Context, actor policy.Actor, prev model.IncidentReport, to model.IncidentStatus) {
	_ = queue_publisher.PublishIncidentStatusChanged(ctx, queue.IncidentStatusChangedEvent{
		ReportID:   prev.ID,
		UserID:     prev.UserID,
		ManagerID:  actor.ID,
		FromStatus: string(prev.Status),
		ToStatus:   string(to),
		ChangedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
