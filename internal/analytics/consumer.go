package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Varun5711/modesta/internal/clickhouse"
	"github.com/Varun5711/modesta/internal/events"
	"github.com/Varun5711/modesta/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Sink stores decoded auth events. clickhouse.Client implements it.
type Sink interface {
	InsertAuthEvents(ctx context.Context, rows []clickhouse.AuthEventRow) error
}

type Config struct {
	Stream       string
	Group        string
	Consumer     string
	BatchSize    int
	PollInterval time.Duration
	BlockTime    time.Duration
}

// StreamClient is the slice of the Redis API the consumer needs.
// *redis.Client implements it.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Consumer moves auth events from the Redis stream into the sink using a
// consumer group. Messages are acknowledged only after the sink accepted
// them; undecodable messages are acknowledged and dropped.
//
// Entries this consumer was handed but never acknowledged are read back
// from its pending list first: on start, and after any failed batch.
type Consumer struct {
	client StreamClient
	sink   Sink
	cfg    Config
	log    *logger.Logger
	replay bool
}

func NewConsumer(client StreamClient, sink Sink, cfg Config) *Consumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Consumer{
		client: client,
		sink:   sink,
		cfg:    cfg,
		log:    logger.New("analytics-consumer"),
		replay: true,
	}
}

// EnsureGroup creates the consumer group, and the stream with it.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Run processes batches until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		n, err := c.ProcessBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("Failed to process batch: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.PollInterval):
			}
			continue
		}
		if n > 0 {
			c.log.Debug("Stored %d auth events", n)
		}
	}
}

// ProcessBatch reads one batch and returns how many events were stored.
// Pending entries go before new ones.
func (c *Consumer) ProcessBatch(ctx context.Context) (int, error) {
	if c.replay {
		// History reads never block.
		streams, err := c.read(ctx, "0", -1)
		if err != nil && !errors.Is(err, redis.Nil) {
			return 0, err
		}
		if countMessages(streams) > 0 {
			return c.store(ctx, streams)
		}
		c.replay = false
	}

	streams, err := c.read(ctx, ">", c.cfg.BlockTime)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return c.store(ctx, streams)
}

func (c *Consumer) read(ctx context.Context, start string, block time.Duration) ([]redis.XStream, error) {
	return c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, start},
		Count:    int64(c.cfg.BatchSize),
		Block:    block,
	}).Result()
}

func (c *Consumer) store(ctx context.Context, streams []redis.XStream) (int, error) {
	stored := 0
	for _, stream := range streams {
		rows, ids, dropped := Decode(stream.Messages)
		for _, id := range dropped {
			c.log.Warn("Dropping malformed auth event %s", id)
		}

		if len(rows) > 0 {
			if err := c.sink.InsertAuthEvents(ctx, rows); err != nil {
				c.replay = true
				return stored, err
			}
			stored += len(rows)
		}

		ack := append(ids, dropped...)
		if len(ack) > 0 {
			if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, ack...).Err(); err != nil {
				c.replay = true
				c.log.Error("Failed to acknowledge messages: %v", err)
			}
		}
	}

	return stored, nil
}

func countMessages(streams []redis.XStream) int {
	n := 0
	for _, s := range streams {
		n += len(s.Messages)
	}
	return n
}

// Decode converts stream messages into rows. ids lists the messages behind
// rows; dropped lists those that could not be decoded.
func Decode(messages []redis.XMessage) (rows []clickhouse.AuthEventRow, ids []string, dropped []string) {
	for _, msg := range messages {
		e, err := events.FromValues(msg.Values)
		if err != nil {
			dropped = append(dropped, msg.ID)
			continue
		}
		rows = append(rows, clickhouse.RowFromEvent(e))
		ids = append(ids, msg.ID)
	}
	return rows, ids, dropped
}
