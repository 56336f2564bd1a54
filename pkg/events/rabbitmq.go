package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (channel, io.Closer, error)

// RabbitPublisher publishes JSON events to a durable queue on the default
// exchange. The connection is opened lazily and re-established after a failed
// publish, so callers should retry (the publication worker does).
type RabbitPublisher struct {
	url    string
	queue  string
	logger *zap.Logger
	dial   dialFunc
	now    func() time.Time

	mu   sync.Mutex
	ch   channel
	conn io.Closer
}

// NewRabbitPublisher builds a publisher for queue on the broker at url.
func NewRabbitPublisher(url, queue string, logger *zap.Logger) *RabbitPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queue == "" {
		queue = TypeAllotmentCommitted
	}
	return &RabbitPublisher{
		url:    url,
		queue:  queue,
		logger: logger,
		dial:   dialAMQP,
		now:    time.Now,
	}
}

func dialAMQP(url string) (channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	return ch, conn, nil
}

// PublishAllotmentCommitted implements Publisher.
func (p *RabbitPublisher) PublishAllotmentCommitted(ctx context.Context, event AllotmentCommitted) error {
	return p.publish(ctx, TypeAllotmentCommitted, event)
}

// PublishAllotmentDeleted implements Publisher.
func (p *RabbitPublisher) PublishAllotmentDeleted(ctx context.Context, event AllotmentDeleted) error {
	return p.publish(ctx, TypeAllotmentDeleted, event)
}

func (p *RabbitPublisher) publish(ctx context.Context, messageType string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", messageType, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         messageType,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.String("queue", p.queue), zap.String("type", messageType), zap.Error(err))
		p.reset()
		return fmt.Errorf("publish %s: %w", messageType, err)
	}
	p.logger.Debug("rabbitmq event published", zap.String("queue", p.queue), zap.String("type", messageType), zap.String("message_id", msg.MessageId))
	return nil
}

func (p *RabbitPublisher) ensureChannel() error {
	if p.ch != nil {
		return nil
	}
	ch, conn, err := p.dial(p.url)
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if conn != nil {
			_ = conn.Close()
		}
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}
	p.ch, p.conn = ch, conn
	return nil
}

func (p *RabbitPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
