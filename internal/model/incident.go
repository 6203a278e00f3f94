package model

import (
    "strings"
    "time"
)

// IncidentStatus enumerates the review states of an incident report.
// pending is the initial state and the only state in which the reporting
// guard may still edit the report content.  Managers may move a report to
// any status from any status; there is no forward-only ordering, so a
// resolved report can be reopened.
type IncidentStatus string

const (
    StatusPending     IncidentStatus = "pending"
    StatusUnderReview IncidentStatus = "under_review"
    StatusResolved    IncidentStatus = "resolved"
)

// ParseIncidentStatus validates a raw status string.
func ParseIncidentStatus(raw string) (IncidentStatus, bool) {
    switch IncidentStatus(strings.ToLower(strings.TrimSpace(raw))) {
    case StatusPending:
        return StatusPending, true
    case StatusUnderReview:
        return StatusUnderReview, true
    case StatusResolved:
        return StatusResolved, true
    }
    return "", false
}

// Attachment is one uploaded file on an incident report.  The list is
// persisted as a JSON array in the incident_reports.attachments column.
//
// Fields:
//  Name – original filename as uploaded by the client.
//  Path – storage-relative path of the stored file.
//  Type – mime type of the file.
type Attachment struct {
    Name string `json:"name"`
    Path string `json:"path"`
    Type string `json:"type"`
}

// IncidentReport represents a row in the `incident_reports` table.
// Content fields (Title, Description, IncidentTime) belong to the
// reporting guard and are editable only while Status is pending; Status
// and AdminNotes belong to managers.  Reports are never deleted.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – reporting guard; immutable, always set server-side.
//  Title        – brief title of the incident.
//  Description  – detailed description of the incident.
//  Latitude     – incident latitude, in [-90, 90].
//  Longitude    – incident longitude, in [-180, 180].
//  LocationName – optional human readable location name.
//  IncidentTime – when the incident occurred (user-supplied, may differ
//                 from CreatedAt).
//  Attachments  – ordered list of uploaded files, possibly empty.
//  Status       – review state, default pending.
//  AdminNotes   – optional notes written only by managers.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type IncidentReport struct {
    ID           uint64         `json:"id"`            // incident_reports.id
    UserID       uint64         `json:"user_id"`       // incident_reports.user_id
    Title        string         `json:"title"`         // incident_reports.title
    Description  string         `json:"description"`   // incident_reports.description
    Latitude     float64        `json:"latitude"`      // incident_reports.latitude
    Longitude    float64        `json:"longitude"`     // incident_reports.longitude
    LocationName *string        `json:"location_name"` // incident_reports.location_name (nullable)
    IncidentTime time.Time      `json:"incident_time"` // incident_reports.incident_time
    Attachments  []Attachment   `json:"attachments"`   // incident_reports.attachments (JSON, nullable)
    Status       IncidentStatus `json:"status"`        // incident_reports.status
    AdminNotes   *string        `json:"admin_notes"`   // incident_reports.admin_notes (nullable)
    CreatedAt    time.Time      `json:"created_at"`    // incident_reports.created_at
    UpdatedAt    time.Time      `json:"updated_at"`    // incident_reports.updated_at
}
