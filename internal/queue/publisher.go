package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Exchange and routing key for email notifications.  The exchange is
// direct and durable; the message id on every publish equals the outbox
// row id so the consumer can deduplicate redeliveries.
const (
	NotificationExchange = "seathive.notifications"
	EmailRoutingKey      = "identity.email"
)

// Publisher is the reliable-publish sink the outbox dispatcher writes to.
// A failed or cancelled publish is retriable; the dispatcher owns the
// retry budget.
type Publisher interface {
	Publish(ctx context.Context, messageID string, body []byte) error
}

// AMQPPublisher publishes to a RabbitMQ direct exchange.  The connection
// is opened lazily and re-opened after broker failures; messages are
// persistent so they survive broker restarts.
type AMQPPublisher struct {
	url    string
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher returns a publisher for the given broker URL.  No
// connection is attempted until the first Publish.
func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// channel returns a live channel, dialing and declaring the exchange when
// needed.  Callers hold p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn, p.ch = nil, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		NotificationExchange, // name
		"direct",             // kind
		true,                 // durable
		false,                // autoDelete
		false,                // internal
		false,                // noWait
		nil,                  // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// Publish sends one message to the notification exchange with the email
// routing key.  The error is returned to the caller so a dispatcher can
// count it against the row's retry budget; the connection is dropped so
// the next attempt redials.
func (p *AMQPPublisher) Publish(ctx context.Context, messageID string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.logger.Warn("broker unavailable", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		NotificationExchange, // exchange
		EmailRoutingKey,      // routing key
		false,                // mandatory
		false,                // immediate
		pub,
	); err != nil {
		p.logger.Warn("publish failed", zap.String("message_id", messageID), zap.Error(err))
		_ = p.ch.Close()
		p.ch = nil
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close tears down the channel and connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
