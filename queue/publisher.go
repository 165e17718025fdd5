package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishBuffer  = 256
	dialTimeout    = 2 * time.Second
	publishTimeout = 5 * time.Second
)

// ErrPublishBufferFull - буфер событий заполнен, событие отброшено.
var ErrPublishBufferFull = errors.New("rabbitmq: event buffer full")

// Publisher отправляет EntityEvent в очередь registry.events.
// Publish только кладёт событие в буфер, в брокер его отправляет Run.
// Publisher с пустым URL ничего не делает.
type Publisher struct {
	url    string
	logger *slog.Logger
	events chan EntityEvent

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{url: url, logger: logger, events: make(chan EntityEvent, publishBuffer)}
}

func (p *Publisher) connection() (*amqp.Connection, error) {
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	p.conn = conn
	return conn, nil
}

// Publish never blocks the caller: when the buffer is full the event is
// dropped with a warning and ErrPublishBufferFull is returned.
func (p *Publisher) Publish(ctx context.Context, event EntityEvent) error {
	if p == nil || p.url == "" {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	select {
	case p.events <- event:
		return nil
	default:
		p.warn("event buffer full, dropping entity event", event, ErrPublishBufferFull)
		return ErrPublishBufferFull
	}
}

// Run отправляет накопленные события в брокер до отмены ctx.
// Ошибки отправки логируются, событие при этом теряется.
func (p *Publisher) Run(ctx context.Context) {
	if p == nil || p.url == "" {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.events:
			sendCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := p.publish(sendCtx, event); err != nil {
				p.warn("failed to publish entity event", event, err)
			}
			cancel()
		}
	}
}

func (p *Publisher) warn(msg string, event EntityEvent, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(msg,
		slog.String("entity", event.Entity),
		slog.String("action", event.Action),
		slog.Int("id", event.ID),
		slog.Any("error", err),
	)
}

func (p *Publisher) publish(ctx context.Context, event EntityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable, чтобы сообщения переживали перезапуск брокера.
	if _, err := ch.QueueDeclare(EventsQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", EventsQueueName, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
