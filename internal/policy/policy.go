// Package policy implements the authorization rules for attendance records
// and incident reports.  Every handler passes an explicit Actor into the
// policy; there is no ambient current-user lookup.  Rules are evaluated in
// order and the first match wins.  Unauthorized fields on updates are
// dropped here, before they ever reach the repository layer.
package policy

import (
    "github.com/guardpost/security-patrol/internal/model"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
    ID   uint64
    Role model.Role
}

// Operation names a single guarded action on a resource type.
type Operation string

const (
    AttendanceList   Operation = "attendance.list"
    AttendanceCreate Operation = "attendance.create"
    AttendanceUpdate Operation = "attendance.update"
    IncidentList     Operation = "incident.list"
    IncidentView     Operation = "incident.view"
    IncidentCreate   Operation = "incident.create"
    IncidentUpdate   Operation = "incident.update"
)

// Decision is the outcome of an authorization check.  Reason is for
// logging only; handlers return a generic forbidden body to the client.
type Decision struct {
    Allowed bool
    Reason  string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with an internal reason.
func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Authorize decides whether the actor may perform op on the given
// resource.  The resource is nil for list and create operations, a
// *model.AttendanceRecord for attendance updates and a
// *model.IncidentReport for incident view/update.
//
// Attendance is guard-only in the absolute sense: managers are denied
// every attendance operation regardless of the record, not merely scoped
// away from other users' rows.
func Authorize(actor Actor, op Operation, resource any) Decision {
    switch op {
    case AttendanceList, AttendanceCreate:
        if !actor.Role.IsGuard() {
            return Deny("attendance is restricted to guards")
        }
        return Allow

    case AttendanceUpdate:
        if !actor.Role.IsGuard() {
            return Deny("attendance is restricted to guards")
        }
        rec, ok := resource.(*model.AttendanceRecord)
        if !ok || rec == nil {
            return Deny("attendance update requires a record")
        }
        if rec.UserID != actor.ID {
            return Deny("guards may only close their own shift")
        }
        return Allow

    case IncidentList:
        // Everyone may list; non-managers are scoped to their own
        // reports at the query layer (see repository.IncidentFilter).
        return Allow

    case IncidentView:
        rep, ok := resource.(*model.IncidentReport)
        if !ok || rep == nil {
            return Deny("incident view requires a report")
        }
        if actor.Role.CanManageIncidents() || rep.UserID == actor.ID {
            return Allow
        }
        return Deny("report belongs to another user")

    case IncidentCreate:
        // Any authenticated user may file a report.  The reporter is
        // always the actor; handlers must never take it from the client.
        return Allow

    case IncidentUpdate:
        rep, ok := resource.(*model.IncidentReport)
        if !ok || rep == nil {
            return Deny("incident update requires a report")
        }
        if actor.Role.CanManageIncidents() {
            return Allow
        }
        if rep.UserID == actor.ID && rep.Status == model.StatusPending {
            return Allow
        }
        if rep.UserID == actor.ID {
            return Deny("report is no longer pending")
        }
        return Deny("report belongs to another user")
    }
    return Deny("unknown operation")
}

// ScopeIncidentList resolves the reporter filter for an incident listing.
// Managers keep whatever reporter they asked for (zero meaning all);
// everyone else is forced onto their own reports, overriding any
// caller-supplied user_id.
func ScopeIncidentList(actor Actor, requestedUserID uint64) uint64 {
    if actor.Role.CanManageIncidents() {
        return requestedUserID
    }
    return actor.ID
}
