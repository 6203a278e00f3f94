package policy_test

import (
    "testing"
    "time"

    "github.com/guardpost/security-patrol/internal/model"
    "github.com/guardpost/security-patrol/internal/policy"
)

func guard(id uint64) policy.Actor {
    return policy.Actor{ID: id, Role: model.RoleGuard}
}

func admin(id uint64) policy.Actor {
    return policy.Actor{ID: id, Role: model.RoleAdmin}
}

func superadmin(id uint64) policy.Actor {
    return policy.Actor{ID: id, Role: model.RoleSuperadmin}
}

func report(owner uint64, status model.IncidentStatus) *model.IncidentReport {
    return &model.IncidentReport{ID: 7, UserID: owner, Status: status}
}

func TestAttendanceGuardOnly(t *testing.T) {
    // Managers have no attendance access at all, independent of data.
    for _, actor := range []policy.Actor{admin(1), superadmin(1)} {
        for _, op := range []policy.Operation{policy.AttendanceList, policy.AttendanceCreate} {
            if d := policy.Authorize(actor, op, nil); d.Allowed {
                t.Errorf("%s: expected deny for role %s", op, actor.Role)
            }
        }
        rec := &model.AttendanceRecord{ID: 3, UserID: 1}
        if d := policy.Authorize(actor, policy.AttendanceUpdate, rec); d.Allowed {
            t.Errorf("attendance.update: expected deny for role %s", actor.Role)
        }
    }
    if d := policy.Authorize(guard(1), policy.AttendanceList, nil); !d.Allowed {
        t.Error("attendance.list: expected allow for guard")
    }
    if d := policy.Authorize(guard(1), policy.AttendanceCreate, nil); !d.Allowed {
        t.Error("attendance.create: expected allow for guard")
    }
}

func TestAttendanceUpdateOwnershipOnly(t *testing.T) {
    rec := &model.AttendanceRecord{ID: 3, UserID: 42}
    if d := policy.Authorize(guard(42), policy.AttendanceUpdate, rec); !d.Allowed {
        t.Error("expected owner to close own shift")
    }
    // Denied regardless of the record's check-out state.
    now := time.Now()
    rec.CheckOutTime = &now
    if d := policy.Authorize(guard(42), policy.AttendanceUpdate, rec); !d.Allowed {
        t.Error("expected repeated check-out to stay allowed for owner")
    }
    if d := policy.Authorize(guard(99), policy.AttendanceUpdate, rec); d.Allowed {
        t.Error("expected non-owner guard to be denied")
    }
    if d := policy.Authorize(guard(42), policy.AttendanceUpdate, nil); d.Allowed {
        t.Error("expected deny when no record is supplied")
    }
}

func TestIncidentView(t *testing.T) {
    rep := report(42, model.StatusPending)
    cases := []struct {
        name  string
        actor policy.Actor
        want  bool
    }{
        {"owner", guard(42), true},
        {"other guard", guard(99), false},
        {"admin", admin(1), true},
        {"superadmin", superadmin(1), true},
    }
    for _, tc := range cases {
        if d := policy.Authorize(tc.actor, policy.IncidentView, rep); d.Allowed != tc.want {
            t.Errorf("%s: got allowed=%v want %v", tc.name, d.Allowed, tc.want)
        }
    }
}

func TestIncidentCreateAnyAuthenticated(t *testing.T) {
    for _, actor := range []policy.Actor{guard(1), admin(2), superadmin(3)} {
        if d := policy.Authorize(actor, policy.IncidentCreate, nil); !d.Allowed {
            t.Errorf("expected create allowed for role %s", actor.Role)
        }
    }
}

func TestIncidentUpdatePaths(t *testing.T) {
    cases := []struct {
        name   string
        actor  policy.Actor
        status model.IncidentStatus
        want   bool
    }{
        {"manager on pending", admin(1), model.StatusPending, true},
        {"manager on resolved", admin(1), model.StatusResolved, true},
        {"owner on pending", guard(42), model.StatusPending, true},
        {"owner on under_review", guard(42), model.StatusUnderReview, false},
        {"owner on resolved", guard(42), model.StatusResolved, false},
        {"stranger on pending", guard(99), model.StatusPending, false},
    }
    for _, tc := range cases {
        d := policy.Authorize(tc.actor, policy.IncidentUpdate, report(42, tc.status))
        if d.Allowed != tc.want {
            t.Errorf("%s: got allowed=%v want %v (%s)", tc.name, d.Allowed, tc.want, d.Reason)
        }
    }
}

func TestScopeIncidentList(t *testing.T) {
    // A guard asking for another reporter's rows is forced back onto
    // their own; a manager's requested filter passes through.
    if got := policy.ScopeIncidentList(guard(7), 42); got != 7 {
        t.Errorf("guard scope: got %d want 7", got)
    }
    if got := policy.ScopeIncidentList(guard(7), 0); got != 7 {
        t.Errorf("guard scope without filter: got %d want 7", got)
    }
    if got := policy.ScopeIncidentList(admin(1), 42); got != 42 {
        t.Errorf("admin scope: got %d want 42", got)
    }
    if got := policy.ScopeIncidentList(superadmin(1), 0); got != 0 {
        t.Errorf("superadmin scope: got %d want 0 (all)", got)
    }
}

func TestFilterIncidentPatchManagerPath(t *testing.T) {
    title := "rewritten"
    status := model.StatusResolved
    notes := "closed after review"
    when := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
    in := policy.IncidentPatch{
        Title:        &title,
        IncidentTime: &when,
        Status:       &status,
        AdminNotes:   &notes,
    }
    out, d := policy.FilterIncidentPatch(admin(1), report(42, model.StatusUnderReview), in)
    if !d.Allowed {
        t.Fatalf("expected manager update allowed: %s", d.Reason)
    }
    if out.Title != nil || out.Description != nil || out.IncidentTime != nil {
        t.Error("manager patch must not carry content fields")
    }
    if out.Status == nil || *out.Status != model.StatusResolved {
        t.Error("manager patch lost status")
    }
    if out.AdminNotes == nil || *out.AdminNotes != notes {
        t.Error("manager patch lost admin notes")
    }
}

func TestFilterIncidentPatchOwnerPath(t *testing.T) {
    title := "updated title"
    status := model.StatusResolved
    in := policy.IncidentPatch{Title: &title, Status: &status}

    // Owner of a pending report: status is dropped, content kept.
    out, d := policy.FilterIncidentPatch(guard(42), report(42, model.StatusPending), in)
    if !d.Allowed {
        t.Fatalf("expected owner update allowed: %s", d.Reason)
    }
    if out.Status != nil || out.AdminNotes != nil {
        t.Error("owner patch must not carry status or admin notes")
    }
    if out.Title == nil || *out.Title != title {
        t.Error("owner patch lost title")
    }

    // Same owner once the report left pending: denied outright.
    if _, d := policy.FilterIncidentPatch(guard(42), report(42, model.StatusUnderReview), in); d.Allowed {
        t.Error("expected owner update denied once report left pending")
    }

    // Non-owner non-manager: denied.
    if _, d := policy.FilterIncidentPatch(guard(99), report(42, model.StatusPending), in); d.Allowed {
        t.Error("expected stranger update denied")
    }
}
