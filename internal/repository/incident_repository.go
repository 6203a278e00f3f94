package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/guardpost/security-patrol/internal/model"
)

// IncidentRepo provides CRUD operations for incident reports.  Content
// writes and review writes are split into separate methods mirroring the
// two authorization paths: UpdateContent for the reporting guard while
// the report is pending, UpdateReview for managers.  Which caller may use
// which is the policy layer's decision, not enforced here.  Reports are
// never deleted.
type IncidentRepo struct {
	db *sql.DB
}

// NewIncidentRepo returns a new IncidentRepo bound to the given database.
func NewIncidentRepo(db *sql.DB) *IncidentRepo { return &IncidentRepo{db: db} }

const incidentCols = "id, user_id, title, description, latitude, longitude, location_name, incident_time, attachments, status, admin_notes, created_at, updated_at"

func scanIncident(row interface{ Scan(...any) error }) (model.IncidentReport, error) {
	var rep model.IncidentReport
	var locName, adminNotes sql.NullString
	var attachments []byte
	var status string
	err := row.Scan(&rep.ID, &rep.UserID, &rep.Title, &rep.Description,
		&rep.Latitude, &rep.Longitude, &locName, &rep.IncidentTime,
		&attachments, &status, &adminNotes, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return rep, err
	}
	rep.Status = model.IncidentStatus(status)
	if locName.Valid {
		n := locName.String
		rep.LocationName = &n
	}
	if adminNotes.Valid {
		n := adminNotes.String
		rep.AdminNotes = &n
	}
	rep.Attachments = []model.Attachment{}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &rep.Attachments); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// Create inserts a new report with status pending and returns the row as
// persisted.  The reporter ID must already be the authenticated actor;
// this method trusts its caller on that.
func (r *IncidentRepo) Create(ctx context.Context, rep *model.IncidentReport) (model.IncidentReport, error) {
	var attachments any
	if len(rep.Attachments) > 0 {
		b, err := json.Marshal(rep.Attachments)
		if err != nil {
			return model.IncidentReport{}, err
		}
		attachments = b
	}
	const q = `INSERT INTO incident_reports
	           (user_id, title, description, latitude, longitude, location_name, incident_time, attachments)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rep.UserID, rep.Title, rep.Description,
		rep.Latitude, rep.Longitude, rep.LocationName, rep.IncidentTime.UTC(), attachments)
	if err != nil {
		return model.IncidentReport{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.IncidentReport{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a single report.  ErrReportNotFound is returned when
// no row matches.
func (r *IncidentRepo) GetByID(ctx context.Context, id uint64) (model.IncidentReport, error) {
	const q = "SELECT " + incidentCols + " FROM incident_reports WHERE id = ?"
	rep, err := scanIncident(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return rep, ErrReportNotFound
	}
	return rep, err
}

// UpdateContent rewrites the factual fields of a report.  All three are
// required on the owner edit path, so they are written together.
func (r *IncidentRepo) UpdateContent(ctx context.Context, id uint64, title, description string, incidentTime time.Time) (model.IncidentReport, error) {
	_, err := r.db.ExecContext(ctx,
		"UPDATE incident_reports SET title = ?, description = ?, incident_time = ? WHERE id = ?",
		title, description, incidentTime.UTC(), id)
	if err != nil {
		return model.IncidentReport{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateReview writes status and/or admin notes.  Nil fields are left
// untouched.  There is no transition-order check: a manager may move a
// report between any two statuses, resolved back to pending included.
func (r *IncidentRepo) UpdateReview(ctx context.Context, id uint64, status *model.IncidentStatus, adminNotes *string) (model.IncidentReport, error) {
	set := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*status))
	}
	if adminNotes != nil {
		set = append(set, "admin_notes = ?")
		args = append(args, *adminNotes)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE incident_reports SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return model.IncidentReport{}, err
	}
	return r.GetByID(ctx, id)
}

// Count returns the total number of reports, optionally narrowed to one
// status and/or one reporter.  Zero values mean no filter.
func (r *IncidentRepo) Count(ctx context.Context, userID uint64, status model.IncidentStatus) (int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if userID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, userID)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, string(status))
	}
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM incident_reports WHERE "+strings.Join(where, " AND "), args...).Scan(&n)
	return n, err
}

// Recent returns the latest reports by incident time, optionally limited
// to one reporter (userID 0 means all reporters).  Used by the dashboard.
func (r *IncidentRepo) Recent(ctx context.Context, userID uint64, limit int) ([]IncidentRow, error) {
	cond := "1=1"
	args := []any{}
	if userID != 0 {
		cond = "r.user_id = ?"
		args = append(args, userID)
	}
	args = append(args, limit)
	q := `SELECT ` + prefixedIncidentCols + `, u.name
	      FROM incident_reports r
	      JOIN users u ON u.id = r.user_id
	      WHERE ` + cond + `
	      ORDER BY r.incident_time DESC
	      LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncidentRows(rows)
}
