package clickhouse

import (
	"context"
	"fmt"
	"time"
)

type EventCount struct {
	EventType string `json:"eventType"`
	Count     uint64 `json:"count"`
}

type DeliveryFailure struct {
	Day      time.Time `json:"day"`
	Failures uint64    `json:"failures"`
	Users    uint64    `json:"users"`
}

type DeviceStats struct {
	DeviceType string  `json:"deviceType"`
	Browser    string  `json:"browser"`
	OS         string  `json:"os"`
	Logins     uint64  `json:"logins"`
	Percentage float64 `json:"percentage"`
}

// CountEventsByType returns the number of events of each type since the
// given time.
func (c *Client) CountEventsByType(ctx context.Context, since time.Time) ([]EventCount, error) {
	query := fmt.Sprintf(`
		SELECT event_type, count() AS total
		FROM %s.auth_events
		WHERE occurred_at >= ?
		GROUP BY event_type
		ORDER BY total DESC
	`, c.database)

	rows, err := c.conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts: %w", err)
	}
	defer rows.Close()

	var counts []EventCount
	for rows.Next() {
		var ec EventCount
		if err := rows.Scan(&ec.EventType, &ec.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts = append(counts, ec)
	}

	return counts, rows.Err()
}

// EmailDeliveryFailures reports failed verification emails per day.
func (c *Client) EmailDeliveryFailures(ctx context.Context, since time.Time) ([]DeliveryFailure, error) {
	query := fmt.Sprintf(`
		SELECT
			toStartOfDay(occurred_at) AS day,
			count() AS failures,
			uniqExact(user_id) AS users
		FROM %s.auth_events
		WHERE event_type = 'email.delivery_failed'
			AND occurred_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`, c.database)

	rows, err := c.conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery failures: %w", err)
	}
	defer rows.Close()

	var failures []DeliveryFailure
	for rows.Next() {
		var f DeliveryFailure
		if err := rows.Scan(&f.Day, &f.Failures, &f.Users); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		failures = append(failures, f)
	}

	return failures, rows.Err()
}

func (c *Client) LoginDeviceStats(ctx context.Context, since time.Time) ([]DeviceStats, error) {
	query := fmt.Sprintf(`
		SELECT
			device_type,
			browser,
			os,
			count() AS logins,
			(logins * 100.0 / (SELECT count() FROM %[1]s.auth_events
				WHERE event_type = 'login.succeeded' AND occurred_at >= ?)) AS percentage
		FROM %[1]s.auth_events
		WHERE event_type = 'login.succeeded'
			AND occurred_at >= ?
		GROUP BY device_type, browser, os
		ORDER BY logins DESC
		LIMIT 50
	`, c.database)

	rows, err := c.conn.Query(ctx, query, since, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query device stats: %w", err)
	}
	defer rows.Close()

	var stats []DeviceStats
	for rows.Next() {
		var s DeviceStats
		if err := rows.Scan(&s.DeviceType, &s.Browser, &s.OS, &s.Logins, &s.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
