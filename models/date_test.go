package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDaysUntil(t *testing.T) {
	cases := []struct {
		name string
		from Date
		to   Date
		want int
	}{
		{"same day", MakeDate(2024, time.September, 1), MakeDate(2024, time.September, 1), 0},
		{"one week ahead", MakeDate(2024, time.September, 1), MakeDate(2024, time.September, 8), 7},
		{"in the past", MakeDate(2024, time.September, 8), MakeDate(2024, time.September, 1), -7},
		{"across month boundary", MakeDate(2024, time.August, 30), MakeDate(2024, time.September, 2), 3},
		{"across year boundary", MakeDate(2024, time.December, 30), MakeDate(2025, time.January, 2), 3},
		{"across leap day", MakeDate(2024, time.February, 28), MakeDate(2024, time.March, 1), 2},
	}

	for _, tc := range cases {
		if got := tc.from.DaysUntil(tc.to); got != tc.want {
			t.Errorf("%s: DaysUntil = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestNewDateNormalizesTimeOfDay(t *testing.T) {
	late := time.Date(2024, time.September, 1, 23, 58, 0, 0, time.UTC)
	early := time.Date(2024, time.September, 1, 0, 1, 0, 0, time.UTC)

	// Both instants map to some calendar date in the institution zone and
	// differences count whole days only.
	a, b := NewDate(late), NewDate(early)
	if got := a.DaysUntil(b); got > 1 || got < -1 {
		t.Fatalf("normalized dates should be at most one calendar day apart, got %d", got)
	}
	if hh, mm, ss := a.Clock(); hh != 0 || mm != 0 || ss != 0 {
		t.Fatalf("expected midnight, got %02d:%02d:%02d", hh, mm, ss)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := MakeDate(2024, time.September, 8)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"2024-09-08"` {
		t.Fatalf("expected bare ISO date, got %s", data)
	}

	var parsed Date
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !parsed.Equal(d) {
		t.Fatalf("round trip changed the date: %s != %s", parsed, d)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"08/09/2024", "2024-13-01", "not a date", "2024-09-08T10:00:00Z"} {
		if _, err := ParseDate(raw); err == nil {
			t.Errorf("ParseDate(%q) should have failed", raw)
		}
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan([]byte("2024-09-08")); err != nil {
		t.Fatalf("scan from bytes failed: %v", err)
	}
	if d.String() != "2024-09-08" {
		t.Fatalf("unexpected date after scan: %s", d)
	}

	if err := d.Scan(time.Date(2024, time.September, 9, 12, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan from time failed: %v", err)
	}
	if d.IsZero() {
		t.Fatal("expected non-zero date after scanning a time")
	}

	if err := d.Scan(42); err == nil {
		t.Fatal("scanning an int should fail")
	}
}
