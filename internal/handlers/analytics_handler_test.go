package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Varun5711/modesta/internal/cache"
	"github.com/Varun5711/modesta/internal/clickhouse"
	"github.com/Varun5711/modesta/internal/logger"
)

type stubReader struct {
	since time.Time
	err   error
	calls int
}

func (s *stubReader) CountEventsByType(_ context.Context, since time.Time) ([]clickhouse.EventCount, error) {
	s.since = since
	s.calls++
	return []clickhouse.EventCount{{EventType: "login.succeeded", Count: 3}}, s.err
}

func (s *stubReader) EmailDeliveryFailures(_ context.Context, since time.Time) ([]clickhouse.DeliveryFailure, error) {
	s.since = since
	if s.err != nil {
		return nil, s.err
	}
	return []clickhouse.DeliveryFailure{{Failures: 2, Users: 1}, {Failures: 3, Users: 3}}, nil
}

func (s *stubReader) LoginDeviceStats(_ context.Context, since time.Time) ([]clickhouse.DeviceStats, error) {
	s.since = since
	return nil, s.err
}

func newAnalyticsHandler(reader AnalyticsReader, now time.Time) *AnalyticsHandler {
	h := NewAnalyticsHandler(reader)
	h.now = func() time.Time { return now }
	h.log = logger.New("test").SetOutput(io.Discard)
	return h
}

func TestAnalytics_DaysParameter(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		query string
		want  time.Time
	}{
		{"", now.AddDate(0, 0, -7)},
		{"?days=1", now.AddDate(0, 0, -1)},
		{"?days=-3", now.AddDate(0, 0, -7)},
		{"?days=abc", now.AddDate(0, 0, -7)},
		{"?days=365", now.AddDate(0, 0, -90)},
	}

	for _, tt := range tests {
		reader := &stubReader{}
		h := newAnalyticsHandler(reader, now)

		rec := httptest.NewRecorder()
		h.GetEventCounts(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/events"+tt.query, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tt.query, rec.Code)
		}
		if !reader.since.Equal(tt.want) {
			t.Errorf("%q: since = %v, want %v", tt.query, reader.since, tt.want)
		}
	}
}

func TestAnalytics_EmailFailuresTotal(t *testing.T) {
	h := newAnalyticsHandler(&stubReader{}, time.Now())

	rec := httptest.NewRecorder()
	h.GetEmailFailures(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/email-failures", nil))

	var body struct {
		Total uint64 `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 5 {
		t.Errorf("total = %d, want 5", body.Total)
	}
}

func TestAnalytics_EmptyAndError(t *testing.T) {
	h := newAnalyticsHandler(&stubReader{}, time.Now())
	rec := httptest.NewRecorder()
	h.GetDeviceStats(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/devices", nil))

	var body map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&body)
	if devices, ok := body["devices"].([]interface{}); !ok || len(devices) != 0 {
		t.Errorf("devices should be an empty list, got %v", body["devices"])
	}

	h = newAnalyticsHandler(&stubReader{err: errors.New("clickhouse down")}, time.Now())
	rec = httptest.NewRecorder()
	h.GetEmailFailures(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/email-failures", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAnalytics_CachesPerWindow(t *testing.T) {
	reader := &stubReader{}
	h := newAnalyticsHandler(reader, time.Now()).WithCache(cache.NewMultiTierCache(16, nil, time.Minute, "analytics:"))

	for _, query := range []string{"?days=7", "", "?days=30"} {
		rec := httptest.NewRecorder()
		h.GetEventCounts(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/events"+query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", query, rec.Code)
		}

		var body struct {
			Events []clickhouse.EventCount `json:"events"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Events) != 1 {
			t.Fatalf("%q: body %s", query, rec.Body.String())
		}
	}

	if reader.calls != 2 {
		t.Errorf("reader called %d times, want 2 (7 days cached, 30 days fresh)", reader.calls)
	}
}
