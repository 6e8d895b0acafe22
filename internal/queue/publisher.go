package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// DefaultDialTimeout bounds the TCP connect and the AMQP handshake.
const DefaultDialTimeout = 3 * time.Second

// Publisher sends events to EventsQueue.  A disabled Publisher accepts and
// drops every event, which keeps local development free of a broker.
type Publisher struct {
	URL         string
	Enabled     bool
	DialTimeout time.Duration
}

func NewPublisher(url string, enabled bool) *Publisher {
	return &Publisher{URL: url, Enabled: enabled, DialTimeout: DefaultDialTimeout}
}

// dial connects like amqp.Dial but gives up on an unresponsive broker after
// timeout instead of the library's 30s default.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return amqp.DialConfig(url, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(timeout),
	})
}

// Publish dials the broker, declares the queue and sends ev as a persistent
// message.  Errors are logged and returned; callers are free to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if p == nil || !p.Enabled {
		return nil
	}
	logger := zerolog.Ctx(ctx).With().Str("event", ev.Type).Logger()

	pub, err := encodeEvent(ev)
	if err != nil {
		logger.Error().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}

	conn, err := dial(p.URL, p.DialTimeout)
	if err != nil {
		logger.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
		logger.Error().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	if err := ch.PublishWithContext(ctx,
		"",          // default exchange
		EventsQueue, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		pub,
	); err != nil {
		logger.Error().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

func encodeEvent(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
