package policy

import (
    "time"

    "github.com/guardpost/security-patrol/internal/model"
)

// IncidentPatch carries the fields a client submitted on an incident
// update.  Nil means the field was not supplied.  Which fields survive
// depends on who is patching; see FilterIncidentPatch.
type IncidentPatch struct {
    Title        *string
    Description  *string
    IncidentTime *time.Time
    Status       *model.IncidentStatus
    AdminNotes   *string
}

// IsEmpty reports whether no field survived filtering.
func (p IncidentPatch) IsEmpty() bool {
    return p.Title == nil && p.Description == nil && p.IncidentTime == nil &&
        p.Status == nil && p.AdminNotes == nil
}

// FilterIncidentPatch applies the two disjoint write surfaces of an
// incident update and returns the allow-listed patch:
//
//   - Manager path: only {status, admin_notes} survive.  Submitted
//     content fields are dropped silently, never rejected.
//   - Owner path (report still pending): only {title, description,
//     incident_time} survive.  A submitted status is dropped, so a guard
//     cannot self-resolve a report.
//
// Any other actor/state combination is denied.  Filtering happens here at
// the policy layer so unauthorized fields never reach storage.
func FilterIncidentPatch(actor Actor, report *model.IncidentReport, in IncidentPatch) (IncidentPatch, Decision) {
    if d := Authorize(actor, IncidentUpdate, report); !d.Allowed {
        return IncidentPatch{}, d
    }
    if actor.Role.CanManageIncidents() {
        return IncidentPatch{Status: in.Status, AdminNotes: in.AdminNotes}, Allow
    }
    // Owner-while-pending path: Authorize already verified ownership and
    // the pending state.
    return IncidentPatch{
        Title:        in.Title,
        Description:  in.Description,
        IncidentTime: in.IncidentTime,
    }, Allow
}
