package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"matha-service/internal/domain"
)

// Routing keys on the topic exchange.
const (
	RoutingQuizCompleted  = "quiz.completed"
	RoutingUserRegistered = "user.registered"
)

const publishTimeout = 5 * time.Second

// Event is the envelope for every published message.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends domain events to a durable topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	now      func() time.Time
}

// Dial connects and declares the exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange, now: time.Now}, nil
}

func (p *Publisher) PublishQuizCompleted(ctx context.Context, result domain.QuizResult) error {
	return p.publish(ctx, RoutingQuizCompleted, result)
}

func (p *Publisher) PublishUserRegistered(ctx context.Context, user domain.User) error {
	return p.publish(ctx, RoutingUserRegistered, user)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	now := p.now().UTC()
	body, err := json.Marshal(Event{Type: routingKey, OccurredAt: now, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = p.channel.PublishWithContext(pubCtx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
