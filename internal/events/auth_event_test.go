package events

import (
	"context"
	"strconv"
	"testing"
	"time"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestNew_EnrichesUserAgent(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e := New(LoginSucceeded, "u1", "a@x.com", Meta{IP: "10.0.0.1", UserAgent: chromeUA}, now)

	if e.ID == "" {
		t.Error("expected event id")
	}
	if e.Browser != "Chrome" {
		t.Errorf("browser = %q, want Chrome", e.Browser)
	}
	if e.DeviceType != "desktop" {
		t.Errorf("device = %q, want desktop", e.DeviceType)
	}
}

func TestValues_RoundTripThroughStrings(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e := New(LoginFailed, "", "a@x.com", Meta{IP: "10.0.0.1"}, now).WithReason("bad_password")

	values := e.Values()
	if _, ok := values["user_id"]; ok {
		t.Error("empty fields should be omitted")
	}

	// Redis hands fields back as strings.
	stringly := make(map[string]interface{}, len(values))
	for k, v := range values {
		switch v := v.(type) {
		case int64:
			stringly[k] = strconv.FormatInt(v, 10)
		default:
			stringly[k] = v
		}
	}

	got, err := FromValues(stringly)
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	if got.Type != LoginFailed || got.Reason != "bad_password" || !got.Timestamp.Equal(now) {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestFromValues_Invalid(t *testing.T) {
	if _, err := FromValues(map[string]interface{}{"type": "x"}); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := FromValues(map[string]interface{}{"event_id": "1", "type": "x", "timestamp": "soon"}); err == nil {
		t.Error("expected error for bad timestamp")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), &AuthEvent{Type: UserRegistered})
	_ = r.Publish(context.Background(), &AuthEvent{Type: EmailDeliveryFailed})

	types := r.Types()
	if len(types) != 2 || types[0] != UserRegistered || types[1] != EmailDeliveryFailed {
		t.Errorf("unexpected types %v", types)
	}
}
