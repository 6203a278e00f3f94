package repository

import (
	"reflect"
	"testing"
)

func TestBuildIncidentWhereEmptyFilter(t *testing.T) {
	cond, args := buildIncidentWhere(IncidentFilter{})
	if cond != "1=1" {
		t.Errorf("empty filter: got cond %q", cond)
	}
	if len(args) != 0 {
		t.Errorf("empty filter: got %d args", len(args))
	}
}

func TestBuildIncidentWhereSearch(t *testing.T) {
	cond, args := buildIncidentWhere(IncidentFilter{Search: "Broken Gate"})
	want := "(LOWER(r.title) LIKE ? OR LOWER(r.description) LIKE ? OR LOWER(r.location_name) LIKE ?)"
	if cond != want {
		t.Errorf("got cond %q", cond)
	}
	// Case-insensitive: the needle is lower-cased once, bound three times.
	if !reflect.DeepEqual(args, []any{"%broken gate%", "%broken gate%", "%broken gate%"}) {
		t.Errorf("got args %v", args)
	}
}

func TestBuildIncidentWhereDateRangeNeedsBothBounds(t *testing.T) {
	// Only one bound present: the range must not be applied.
	for _, f := range []IncidentFilter{
		{StartDate: "2024-01-10"},
		{EndDate: "2024-01-20"},
	} {
		cond, args := buildIncidentWhere(f)
		if cond != "1=1" || len(args) != 0 {
			t.Errorf("one-sided range applied: cond=%q args=%v", cond, args)
		}
	}

	cond, args := buildIncidentWhere(IncidentFilter{StartDate: "2024-01-10", EndDate: "2024-01-20"})
	if cond != "r.incident_time BETWEEN ? AND ?" {
		t.Errorf("got cond %q", cond)
	}
	// Inclusive through end of day: 2024-01-15 10:00 falls inside,
	// anything after 2024-01-20 23:59:59 falls outside.
	if !reflect.DeepEqual(args, []any{"2024-01-10 00:00:00", "2024-01-20 23:59:59"}) {
		t.Errorf("got args %v", args)
	}
}

func TestBuildIncidentWhereAllFiltersComposed(t *testing.T) {
	f := IncidentFilter{
		Search:    "gate",
		UserID:    42,
		StartDate: "2024-01-10",
		EndDate:   "2024-01-20",
		Status:    "pending",
	}
	cond, args := buildIncidentWhere(f)
	want := "(LOWER(r.title) LIKE ? OR LOWER(r.description) LIKE ? OR LOWER(r.location_name) LIKE ?)" +
		" AND r.user_id = ? AND r.incident_time BETWEEN ? AND ? AND r.status = ?"
	if cond != want {
		t.Errorf("got cond %q", cond)
	}
	wantArgs := []any{"%gate%", "%gate%", "%gate%", uint64(42), "2024-01-10 00:00:00", "2024-01-20 23:59:59", "pending"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("got args %v", args)
	}
}

func TestBuildIncidentWhereUserScope(t *testing.T) {
	// Once the handler forces UserID to the actor's own ID, every data
	// and count query carries the reporter condition.
	cond, args := buildIncidentWhere(IncidentFilter{UserID: 7})
	if cond != "r.user_id = ?" {
		t.Errorf("got cond %q", cond)
	}
	if !reflect.DeepEqual(args, []any{uint64(7)}) {
		t.Errorf("got args %v", args)
	}
}
