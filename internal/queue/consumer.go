package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
	"github.com/vladimiradmaev/nutrition-bot/internal/domain"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

// Sink accepts inbound messages for processing
type Sink interface {
	Submit(ctx context.Context, msg domain.InboundMessage) error
}

// Consumer feeds queued inbound messages into a Sink
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	sink  Sink
}

// NewConsumer declares the exchange and the durable inbound queue bound to every channel
func NewConsumer(cfg config.RabbitMQConfig, sink Sink) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	closeAll := func() {
		_ = ch.Close()
		_ = conn.Close()
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "inbound.#", cfg.Exchange, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("bind inbound.#: %w", err)
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		closeAll()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{conn: conn, ch: ch, queue: q.Name, sink: sink}, nil
}

// Run consumes until ctx is cancelled or the channel closes
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			settle(d, deliver(ctx, c.sink, d.Body))
		}
	}
}

type outcome int

const (
	ack outcome = iota
	drop
	retry
)

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(d acknowledger, o outcome) {
	switch o {
	case ack:
		_ = d.Ack(false)
	case drop:
		_ = d.Nack(false, false)
	case retry:
		_ = d.Nack(false, true)
	}
}

// deliver hands one body to sink. Undecodable bodies are dropped,
// a sink that refuses the message gets it again later.
func deliver(ctx context.Context, sink Sink, body []byte) outcome {
	evt, err := DecodeEnvelope(body)
	if err != nil {
		logger.Error("Dropping queued message", "error", err)
		return drop
	}

	msg := evt.Message()
	if err := sink.Submit(ctx, msg); err != nil {
		logger.WithPhone(ctx, msg.Phone).Warn("Queued message not accepted, requeueing", "message_id", msg.ID, "error", err)
		return retry
	}
	return ack
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
