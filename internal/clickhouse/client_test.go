package clickhouse

import (
	"strings"
	"testing"
	"time"

	"github.com/Varun5711/modesta/internal/events"
)

func TestRowFromEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("PKT", 5*3600))
	e := events.New(events.LoginFailed, "u1", "a@b.co", events.Meta{IP: "10.0.0.1"}, at).WithReason("bad_password")

	row := RowFromEvent(e)

	if row.EventType != "login.failed" || row.Reason != "bad_password" {
		t.Errorf("unexpected row %+v", row)
	}
	if row.IPAddress != "10.0.0.1" || row.UserID != "u1" {
		t.Errorf("unexpected row %+v", row)
	}
	if row.OccurredAt.Location() != time.UTC || !row.OccurredAt.Equal(at) {
		t.Errorf("occurred_at = %v", row.OccurredAt)
	}
}

func TestCreateAuthEventsTable(t *testing.T) {
	ddl := createAuthEventsTable("analytics")

	if !strings.Contains(ddl, "analytics.auth_events") {
		t.Error("table should be qualified with the database")
	}
	if !strings.Contains(ddl, "IF NOT EXISTS") {
		t.Error("schema creation must be idempotent")
	}
}
