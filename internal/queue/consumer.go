package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const maxBackoff = 30 * time.Second

// Consumer reads EventsQueue and logs every event.
type Consumer struct {
	URL    string
	Logger zerolog.Logger
}

func NewConsumer(url string, logger zerolog.Logger) *Consumer {
	return &Consumer{URL: url, Logger: logger.With().Str("component", "event-consumer").Logger()}
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures back off exponentially up to 30s; a dropped connection is
// re-established after a short pause.  Malformed messages are rejected
// without requeue so they cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := dial(c.URL, DefaultDialTimeout)
		if err != nil {
			c.Logger.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(EventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Body); err != nil {
				c.Logger.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	entry := c.Logger.Info().Str("type", ev.Type).Str("occurred_at", ev.OccurredAt)
	if ev.UserID != 0 {
		entry = entry.Uint64("user_id", ev.UserID)
	}
	if ev.ClientID != 0 {
		entry = entry.Uint64("client_id", ev.ClientID)
	}
	if ev.CounselorID != 0 {
		entry = entry.Uint64("counselor_id", ev.CounselorID)
	}
	if ev.RecordID != 0 {
		entry = entry.Uint64("record_id", ev.RecordID).Str("record_date", ev.RecordDate)
	}
	if ev.Role != "" {
		entry = entry.Str("role", ev.Role)
	}
	entry.Msg("domain event")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
