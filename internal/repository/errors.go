// Package repository implements MySQL persistence for users, sessions,
// attendance records and incident reports.  Lookups translate
// sql.ErrNoRows into per-entity sentinels so handlers can map them to
// 404 without parsing driver errors.
package repository

import "errors"

// ErrAttendanceNotFound is returned when an attendance record lookup
// matches no row.
var ErrAttendanceNotFound = errors.New("attendance record not found")

// ErrReportNotFound is returned when an incident report lookup matches
// no row.
var ErrReportNotFound = errors.New("incident report not found")
