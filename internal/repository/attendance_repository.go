package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/guardpost/security-patrol/internal/model"
)

// AttendanceRepo provides CRUD operations for guard shift records.  All
// timestamps are stored in UTC.  Records are created on check-in, closed
// by an unconditional overwrite of check_out_time on check-out and never
// deleted by the application.  Nothing enforces a single open record per
// guard; several open shifts are structurally possible and tolerated.
type AttendanceRepo struct {
	db *sql.DB
}

// NewAttendanceRepo returns a new AttendanceRepo bound to the given database.
func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{db: db} }

const attendanceCols = "id, user_id, latitude, longitude, location_name, check_in_time, check_out_time, created_at, updated_at"

func scanAttendance(row interface{ Scan(...any) error }) (model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	var locName sql.NullString
	var checkOut sql.NullTime
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Latitude, &rec.Longitude,
		&locName, &rec.CheckInTime, &checkOut, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return rec, err
	}
	if locName.Valid {
		n := locName.String
		rec.LocationName = &n
	}
	if checkOut.Valid {
		t := checkOut.Time
		rec.CheckOutTime = &t
	}
	return rec, nil
}

// Create inserts a check-in row for the given guard and returns the full
// record as persisted.  CheckInTime is set here, server-side; the caller
// supplies only the validated coordinates and optional location name.
func (r *AttendanceRepo) Create(ctx context.Context, userID uint64, lat, lon float64, locationName *string) (model.AttendanceRecord, error) {
	const q = `INSERT INTO attendance_records (user_id, latitude, longitude, location_name, check_in_time)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, userID, lat, lon, locationName, time.Now().UTC())
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a single record.  ErrAttendanceNotFound is returned
// when no row matches.
func (r *AttendanceRepo) GetByID(ctx context.Context, id uint64) (model.AttendanceRecord, error) {
	const q = "SELECT " + attendanceCols + " FROM attendance_records WHERE id = ?"
	rec, err := scanAttendance(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrAttendanceNotFound
	}
	return rec, err
}

// Close stamps check_out_time on the record and returns the updated row.
// The write is unconditional: closing an already closed shift simply
// refreshes the timestamp.  Ownership is the policy layer's concern and
// must be checked before calling this.
func (r *AttendanceRepo) Close(ctx context.Context, id uint64) (model.AttendanceRecord, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE attendance_records SET check_out_time = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// overwrite with an identical timestamp; distinguish via lookup.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.AttendanceRecord{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// ListByUser returns one page of the guard's own records ordered by
// check-in time descending, along with the total row count for paging.
func (r *AttendanceRepo) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]model.AttendanceRecord, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance_records WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = "SELECT " + attendanceCols + ` FROM attendance_records
	           WHERE user_id = ?
	           ORDER BY check_in_time DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.AttendanceRecord, 0, pageSize)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// TodayByUser returns the guard's earliest record checked in today (UTC),
// or ErrAttendanceNotFound when the guard has not checked in yet.  Used
// by the guard dashboard.
func (r *AttendanceRepo) TodayByUser(ctx context.Context, userID uint64) (model.AttendanceRecord, error) {
	const q = "SELECT " + attendanceCols + ` FROM attendance_records
	           WHERE user_id = ? AND DATE(check_in_time) = DATE(UTC_TIMESTAMP())
	           ORDER BY check_in_time ASC
	           LIMIT 1`
	rec, err := scanAttendance(r.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrAttendanceNotFound
	}
	return rec, err
}
