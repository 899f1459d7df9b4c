package db

import (
	"testing"
	"time"
)

func TestOpenMemoryMigrates(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	tables := []string{
		"catches", "buyers", "canneries", "prices", "messages",
		"sales", "agent_profiles", "coaching_events", "peer_lessons",
	}
	for _, table := range tables {
		var name string
		err := d.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing: %v", table, err)
		}
	}
}

func TestParseTimeAcceptsBothLayouts(t *testing.T) {
	want := time.Date(2025, 6, 12, 5, 30, 0, 0, time.UTC)

	for _, raw := range []string{"2025-06-12 05:30:00", "2025-06-12T05:30:00Z"} {
		got, err := ParseTime(raw)
		if err != nil {
			t.Fatalf("ParseTime(%q): %v", raw, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, want %v", raw, got, want)
		}
	}

	if _, err := ParseTime("not a timestamp"); err == nil {
		t.Error("ParseTime should reject malformed input")
	}
}

func TestDatetimeColumnRoundTrip(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	want := time.Date(2025, 6, 12, 5, 30, 0, 0, time.UTC)
	_, err = d.Exec(
		`INSERT INTO catches (id, fish_type, pounds, caught_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		"c1", "Halibut", 450.0, want.Format(time.DateTime), want.Format(time.DateTime))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// The driver does not hand back the layout that was bound, so the
	// raw value must go through ParseTime.
	var raw string
	if err := d.QueryRow(`SELECT caught_at FROM catches WHERE id = 'c1'`).Scan(&raw); err != nil {
		t.Fatalf("select: %v", err)
	}
	got, err := ParseTime(raw)
	if err != nil {
		t.Fatalf("ParseTime(%q): %v", raw, err)
	}
	if !got.Equal(want) {
		t.Errorf("caught_at round trip = %v, want %v", got, want)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
