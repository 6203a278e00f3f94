package model

import "time"

// AttendanceRecord represents one guard shift in the `attendance_records`
// table.  A record is created on check-in with CheckOutTime nil and closed
// by the owning guard setting CheckOutTime.  Closing is an idempotent
// overwrite: checking out twice simply refreshes the timestamp.  Nothing
// prevents a guard from holding several open records at once; callers must
// tolerate that.  Records are never deleted by the application.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owning guard; immutable after creation.
//  Latitude     – check-in latitude, in [-90, 90].
//  Longitude    – check-in longitude, in [-180, 180].
//  LocationName – optional human readable location name.
//  CheckInTime  – set server-side at creation.
//  CheckOutTime – nil while the shift is open.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type AttendanceRecord struct {
    ID           uint64     `json:"id"`             // attendance_records.id
    UserID       uint64     `json:"user_id"`        // attendance_records.user_id
    Latitude     float64    `json:"latitude"`       // attendance_records.latitude
    Longitude    float64    `json:"longitude"`      // attendance_records.longitude
    LocationName *string    `json:"location_name"`  // attendance_records.location_name (nullable)
    CheckInTime  time.Time  `json:"check_in_time"`  // attendance_records.check_in_time
    CheckOutTime *time.Time `json:"check_out_time"` // attendance_records.check_out_time (nullable)
    CreatedAt    time.Time  `json:"created_at"`     // attendance_records.created_at
    UpdatedAt    time.Time  `json:"updated_at"`     // attendance_records.updated_at
}
