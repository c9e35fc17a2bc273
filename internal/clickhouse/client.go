package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/Varun5711/modesta/internal/config"
	"github.com/Varun5711/modesta/internal/events"
)

type Client struct {
	conn     driver.Conn
	database string
}

func NewClient(ctx context.Context, cfg config.ClickHouseConfig) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     cfg.MaxConns,
		MaxIdleConns:     cfg.MaxConns / 2,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return &Client{conn: conn, database: cfg.Database}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// EnsureSchema creates the auth_events table when it does not exist yet.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if err := c.conn.Exec(ctx, createAuthEventsTable(c.database)); err != nil {
		return fmt.Errorf("failed to create auth_events table: %w", err)
	}
	return nil
}

func createAuthEventsTable(database string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.auth_events (
		event_id    String,
		event_type  LowCardinality(String),
		user_id     String,
		email       String,
		ip_address  String,
		user_agent  String,
		browser     LowCardinality(String),
		os          LowCardinality(String),
		device_type LowCardinality(String),
		reason      LowCardinality(String),
		occurred_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(occurred_at)
	ORDER BY (event_type, occurred_at)`, database)
}

// AuthEventRow is one row of the auth_events table.
type AuthEventRow struct {
	EventID    string
	EventType  string
	UserID     string
	Email      string
	IPAddress  string
	UserAgent  string
	Browser    string
	OS         string
	DeviceType string
	Reason     string
	OccurredAt time.Time
}

func RowFromEvent(e *events.AuthEvent) AuthEventRow {
	return AuthEventRow{
		EventID:    e.ID,
		EventType:  string(e.Type),
		UserID:     e.UserID,
		Email:      e.Email,
		IPAddress:  e.IP,
		UserAgent:  e.UserAgent,
		Browser:    e.Browser,
		OS:         e.OS,
		DeviceType: e.DeviceType,
		Reason:     e.Reason,
		OccurredAt: e.Timestamp.UTC(),
	}
}

func (c *Client) InsertAuthEvents(ctx context.Context, rows []AuthEventRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf(`INSERT INTO %s.auth_events (
		event_id, event_type, user_id, email,
		ip_address, user_agent, browser, os, device_type,
		reason, occurred_at
	)`, c.database))
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range rows {
		err := batch.Append(
			row.EventID,
			row.EventType,
			row.UserID,
			row.Email,
			row.IPAddress,
			row.UserAgent,
			row.Browser,
			row.OS,
			row.DeviceType,
			row.Reason,
			row.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}
