// Package queue defines message payloads exchanged over the message broker.
package queue

// IncidentReportedEvent is published when a new incident report is filed.
// It carries enough information for downstream consumers to notify
// managers or feed analytics without querying the primary database.
type IncidentReportedEvent struct {
    ReportID     uint64  `json:"report_id"`
    UserID       uint64  `json:"user_id"`
    ReporterName string  `json:"reporter_name"`
    Title        string  `json:"title"`
    LocationName string  `json:"location_name,omitempty"`
    Latitude     float64 `json:"latitude"`
    Longitude    float64 `json:"longitude"`
    IncidentTime string  `json:"incident_time"`
    ReportedAt   string  `json:"reported_at"`
    Attachments  int     `json:"attachments"`
}

// IncidentStatusChangedEvent is published when a manager moves a report
// to a different status.
type IncidentStatusChangedEvent struct {
    ReportID   uint64 `json:"report_id"`
    UserID     uint64 `json:"user_id"`
    ManagerID  uint64 `json:"manager_id"`
    FromStatus string `json:"from_status"`
    ToStatus   string `json:"to_status"`
    ChangedAt  string `json:"changed_at"`
}
