package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amadorcf/YourBank-account-service/shared/logger"
	"github.com/redis/go-redis/v9"
)

// errMalformedMessage marks entries that can never be handled; they are acknowledged
// and dropped instead of being redelivered forever.
var errMalformedMessage = errors.New("malformed stream message")

type Handler func(ctx context.Context, event Event) error

type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	claimMinIdle  time.Duration
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	// ClaimMinIdle is how long a delivered but unacknowledged entry waits before it
	// is claimed again and retried.
	ClaimMinIdle time.Duration
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.ClaimMinIdle == 0 {
		config.ClaimMinIdle = 30 * time.Second
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		claimMinIdle:  config.ClaimMinIdle,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	if err := s.ensureGroup(ctx); err != nil {
		return err
	}

	logger.Info("subscriber started", logger.Fields{
		"stream":   s.stream,
		"group":    s.group,
		"consumer": s.consumer,
	})

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscriber stopping", logger.Fields{"stream": s.stream})
			return ctx.Err()
		default:
			if err := s.reclaimPending(ctx); err != nil {
				logger.Error("subscriber reclaim failed", err, logger.Fields{"stream": s.stream})
			}
			if err := s.readMessages(ctx); err != nil {
				logger.Error("subscriber read failed", err, logger.Fields{"stream": s.stream})
				time.Sleep(time.Second)
			}
		}
	}
}

// ensureGroup creates the consumer group, and the stream with it, unless it exists.
func (s *Subscriber) ensureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

func (s *Subscriber) readMessages(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return nil // No messages
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		s.handleMessages(ctx, stream.Messages)
	}
	return nil
}

// reclaimPending takes over entries whose handling failed at least claimMinIdle ago.
// ">" reads only ever return new entries, so this is the only redelivery path.
func (s *Subscriber) reclaimPending(ctx context.Context) error {
	messages, _, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   s.stream,
		Group:    s.group,
		Consumer: s.consumer,
		MinIdle:  s.claimMinIdle,
		Start:    "0-0",
		Count:    s.batchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to reclaim pending messages: %w", err)
	}
	s.handleMessages(ctx, messages)
	return nil
}

// handleMessages acknowledges every entry handled successfully. Failed entries stay
// pending until reclaimPending retries them; malformed ones are acknowledged and dropped.
func (s *Subscriber) handleMessages(ctx context.Context, messages []redis.XMessage) {
	for _, message := range messages {
		if err := s.processMessage(ctx, message); err != nil {
			logger.Error("subscriber failed to process message", err, logger.Fields{"messageId": message.ID})
			if !errors.Is(err, errMalformedMessage) {
				continue
			}
		}

		if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
			logger.Error("subscriber failed to ack message", err, logger.Fields{"messageId": message.ID})
		}
	}
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("%w: no event field", errMalformedMessage)
	}

	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedMessage, err)
	}

	return s.handler(ctx, event)
}

// DecodeData re-decodes the loosely typed payload of an event into out.
func DecodeData(event Event, out any) error {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event data: %w", event.Type, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s event data: %w", event.Type, err)
	}
	return nil
}
