package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

type Publisher interface {
	Publish(ctx context.Context, event *AuthEvent) error
}

type Producer struct {
	client     *redis.Client
	streamName string
	maxLen     int64
}

func NewProducer(client *redis.Client, streamName string) *Producer {
	return &Producer{
		client:     client,
		streamName: streamName,
		maxLen:     100000,
	}
}

func (p *Producer) Publish(ctx context.Context, event *AuthEvent) error {
	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamName,
		MaxLen: p.maxLen,
		Approx: true,
		Values: event.Values(),
	})

	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish auth event: %w", err)
	}

	return nil
}

func (p *Producer) StreamLength(ctx context.Context) (int64, error) {
	result := p.client.XLen(ctx, p.streamName)
	return result.Val(), result.Err()
}

// Nop drops events. Used when Redis is unavailable.
type Nop struct{}

func (Nop) Publish(context.Context, *AuthEvent) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []*AuthEvent
}

func (r *Recorder) Publish(_ context.Context, event *AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []*AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*AuthEvent(nil), r.events...)
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]Type, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
