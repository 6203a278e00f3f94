package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/guardpost/security-patrol/internal/model"
)

// IncidentFilter defines filters and pagination for listing incident
// reports.  All filters are optional and AND-combined.  UserID zero means
// no reporter filter; handlers must force it to the actor's own ID for
// non-managers before calling List, so the scope override happens before
// any SQL is built.
type IncidentFilter struct {
	Search    string // case-insensitive substring on title/description/location_name
	UserID    uint64 // exact reporter match; 0 = all reporters
	StartDate string // YYYY-MM-DD; applied only together with EndDate
	EndDate   string // YYYY-MM-DD; range is inclusive through 23:59:59
	Status    string // exact status match; empty = all statuses
	Page      int
	PageSize  int
}

// IncidentRow is one listing row: the report plus the reporter's display
// name joined in for manager views.
type IncidentRow struct {
	model.IncidentReport
	UserName string `json:"user_name"`
}

// buildIncidentWhere composes the WHERE clause for an incident listing.
// Filters are appended in a fixed order: search, reporter, date range,
// status.  The date range only applies when both bounds are present and
// spans start 00:00:00 through end 23:59:59 inclusive.  Returns the
// condition string (without the WHERE keyword) and its bind args.
func buildIncidentWhere(f IncidentFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, "(LOWER(r.title) LIKE ? OR LOWER(r.description) LIKE ? OR LOWER(r.location_name) LIKE ?)")
		args = append(args, needle, needle, needle)
	}
	if f.UserID != 0 {
		where = append(where, "r.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.StartDate != "" && f.EndDate != "" {
		where = append(where, "r.incident_time BETWEEN ? AND ?")
		args = append(args, f.StartDate+" 00:00:00", f.EndDate+" 23:59:59")
	}
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, f.Status)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

const prefixedIncidentCols = "r.id, r.user_id, r.title, r.description, r.latitude, r.longitude, r.location_name, r.incident_time, r.attachments, r.status, r.admin_notes, r.created_at, r.updated_at"

// List returns one page of reports matching the filter, ordered by
// incident time descending, along with the total match count so callers
// can render stable page navigation across filter-preserving round trips.
func (r *IncidentRepo) List(ctx context.Context, f IncidentFilter) ([]IncidentRow, int64, error) {
	cond, args := buildIncidentWhere(f)

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM incident_reports r
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.PageSize
	offset := (f.Page - 1) * f.PageSize

	dataSQL := `SELECT ` + prefixedIncidentCols + `, u.name
		FROM incident_reports r
		JOIN users u ON u.id = r.user_id
		WHERE ` + cond + `
		ORDER BY r.incident_time DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectIncidentRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func collectIncidentRows(rows *sql.Rows) ([]IncidentRow, error) {
	out := make([]IncidentRow, 0)
	for rows.Next() {
		var row IncidentRow
		var locName, adminNotes sql.NullString
		var attachments []byte
		var status string
		if err := rows.Scan(&row.ID, &row.UserID, &row.Title, &row.Description,
			&row.Latitude, &row.Longitude, &locName, &row.IncidentTime,
			&attachments, &status, &adminNotes, &row.CreatedAt, &row.UpdatedAt,
			&row.UserName); err != nil {
			return nil, err
		}
		row.Status = model.IncidentStatus(status)
		if locName.Valid {
			n := locName.String
			row.LocationName = &n
		}
		if adminNotes.Valid {
			n := adminNotes.String
			row.AdminNotes = &n
		}
		row.Attachments = []model.Attachment{}
		if len(attachments) > 0 {
			if err := json.Unmarshal(attachments, &row.Attachments); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
