package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Varun5711/modesta/internal/cache"
	"github.com/Varun5711/modesta/internal/clickhouse"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/Varun5711/modesta/internal/response"
)

// AnalyticsReader is implemented by clickhouse.Client.
type AnalyticsReader interface {
	CountEventsByType(ctx context.Context, since time.Time) ([]clickhouse.EventCount, error)
	EmailDeliveryFailures(ctx context.Context, since time.Time) ([]clickhouse.DeliveryFailure, error)
	LoginDeviceStats(ctx context.Context, since time.Time) ([]clickhouse.DeviceStats, error)
}

// AnalyticsHandler serves the admin view of the auth event pipeline.
type AnalyticsHandler struct {
	reader AnalyticsReader
	cache  *cache.Cache
	now    func() time.Time
	log    *logger.Logger
}

func NewAnalyticsHandler(reader AnalyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{
		reader: reader,
		now:    time.Now,
		log:    logger.New("analytics-handler"),
	}
}

const (
	defaultDays = 7
	maxDays     = 90
)

// WithCache serves repeated queries for the same window from c.
func (h *AnalyticsHandler) WithCache(c *cache.Cache) *AnalyticsHandler {
	h.cache = c
	return h
}

func (h *AnalyticsHandler) window(r *http.Request) (int, time.Time) {
	days := defaultDays
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		if d, err := strconv.Atoi(daysParam); err == nil && d > 0 {
			days = d
		}
	}
	if days > maxDays {
		days = maxDays
	}
	return days, h.now().UTC().AddDate(0, 0, -days)
}

func cached[T any](h *AnalyticsHandler, ctx context.Context, key string, load func() (T, error)) (T, error) {
	if h.cache != nil {
		var v T
		if found, err := h.cache.GetJSON(ctx, key, &v); err == nil && found {
			return v, nil
		}
	}

	v, err := load()
	if err == nil && h.cache != nil {
		if err := h.cache.SetJSON(ctx, key, v); err != nil {
			h.log.Warn("Failed to cache %s: %v", key, err)
		}
	}
	return v, err
}

func (h *AnalyticsHandler) GetEventCounts(w http.ResponseWriter, r *http.Request) {
	days, since := h.window(r)
	counts, err := cached(h, r.Context(), fmt.Sprintf("events:%d", days), func() ([]clickhouse.EventCount, error) {
		return h.reader.CountEventsByType(r.Context(), since)
	})
	if err != nil {
		h.log.Error("Failed to get event counts: %v", err)
		response.Message(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  nonNilSlice(counts),
	})
}

func (h *AnalyticsHandler) GetEmailFailures(w http.ResponseWriter, r *http.Request) {
	days, since := h.window(r)
	failures, err := cached(h, r.Context(), fmt.Sprintf("email-failures:%d", days), func() ([]clickhouse.DeliveryFailure, error) {
		return h.reader.EmailDeliveryFailures(r.Context(), since)
	})
	if err != nil {
		h.log.Error("Failed to get email delivery failures: %v", err)
		response.Message(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var total uint64
	for _, f := range failures {
		total += f.Failures
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"total":   total,
		"days":    nonNilSlice(failures),
	})
}

func (h *AnalyticsHandler) GetDeviceStats(w http.ResponseWriter, r *http.Request) {
	days, since := h.window(r)
	stats, err := cached(h, r.Context(), fmt.Sprintf("devices:%d", days), func() ([]clickhouse.DeviceStats, error) {
		return h.reader.LoginDeviceStats(r.Context(), since)
	})
	if err != nil {
		h.log.Error("Failed to get device stats: %v", err)
		response.Message(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"devices": nonNilSlice(stats),
	})
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
