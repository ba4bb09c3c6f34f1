package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amadorcf/YourBank-account-service/shared/utils"
	"github.com/redis/go-redis/v9"
)

type PublisherConfig struct {
	// Source names the emitting service in every envelope.
	Source string
	// MaxLen caps each stream at roughly this many entries; 0 leaves streams untrimmed.
	MaxLen int64
}

// Publisher appends event envelopes to Redis streams. Each entry carries the JSON
// envelope under "event" and the bare event type under "type", so consumers can
// filter without decoding.
type Publisher struct {
	client *redis.Client
	source string
	maxLen int64
	now    func() time.Time
}

func NewPublisher(client *redis.Client, config PublisherConfig) *Publisher {
	return &Publisher{
		client: client,
		source: config.Source,
		maxLen: config.MaxLen,
		now:    time.Now,
	}
}

func (p *Publisher) envelope(eventType string, data any) Event {
	return Event{
		ID:        utils.GenerateID("evt"),
		Type:      eventType,
		Source:    p.source,
		Timestamp: p.now().UTC(),
		Data:      data,
	}
}

// Publish wraps data in an envelope of eventType and appends it to stream.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	event := p.envelope(eventType, data)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"event": payload,
			"type":  eventType,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event %s to %s: %w", eventType, event.ID, stream, err)
	}
	return nil
}
