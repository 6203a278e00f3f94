package handler

import "testing"

func f64(v float64) *float64 { return &v }

func TestCheckInValidation(t *testing.T) {
	cases := []struct {
		name string
		req  checkInReq
		bad  []string
	}{
		{"valid", checkInReq{Latitude: f64(52.52), Longitude: f64(13.405)}, nil},
		{"missing both", checkInReq{}, []string{"latitude", "longitude"}},
		{"latitude out of range", checkInReq{Latitude: f64(91), Longitude: f64(0)}, []string{"latitude"}},
		{"longitude out of range", checkInReq{Latitude: f64(0), Longitude: f64(-181)}, []string{"longitude"}},
		{"boundary ok", checkInReq{Latitude: f64(-90), Longitude: f64(180)}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := tc.req.validate()
			if len(fields) != len(tc.bad) {
				t.Fatalf("got %d field errors %v, want %d", len(fields), fields, len(tc.bad))
			}
			for _, k := range tc.bad {
				if _, ok := fields[k]; !ok {
					t.Errorf("expected error for field %q, got %v", k, fields)
				}
			}
		})
	}
}

func TestParseIncidentTime(t *testing.T) {
	for _, raw := range []string{
		"2025-03-14T21:30:00Z",
		"2025-03-14 21:30:00",
		"2025-03-14T21:30",
	} {
		got, ok := parseIncidentTime(raw)
		if !ok {
			t.Errorf("parseIncidentTime(%q) rejected", raw)
			continue
		}
		if got.Year() != 2025 || got.Hour() != 21 || got.Minute() != 30 {
			t.Errorf("parseIncidentTime(%q) = %v", raw, got)
		}
	}
	if _, ok := parseIncidentTime("14/03/2025"); ok {
		t.Error("expected slash-formatted date to be rejected")
	}
}
