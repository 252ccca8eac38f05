package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher fans out notification events to the push delivery pipeline.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close() error
}

// PushMessage is the payload consumed by the push sender.
type PushMessage struct {
	NotificationID int64             `json:"notification_id"`
	MemberID       int64             `json:"member_id"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Category       string            `json:"category"`
	Data           map[string]string `json:"data,omitempty"`
	Tokens         []PushTarget      `json:"tokens"`
}

type PushTarget struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func RoutingKey(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		category = "general"
	}
	return "notification." + category
}

// AMQPPublisher publishes JSON messages to a durable topic exchange.
type AMQPPublisher struct {
	exchange string
	conn     *amqp091.Connection
	channel  *amqp091.Channel

	mu       sync.Mutex
	declared bool
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewAMQPPublisher(amqpURL string, exchange string) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{exchange: exchange, conn: conn, channel: channel}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared {
		err := p.channel.ExchangeDeclare(
			p.exchange, // name
			"topic",    // type
			true,       // durable
			false,      // auto-deleted
			false,      // internal
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			return err
		}
		p.declared = true
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         jsonBody,
		})
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher only logs; it is used when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, routingKey string, body any) error {
	if p.Logger != nil {
		p.Logger.Debug("notification not published (no broker)", "routing_key", routingKey, "body", body)
	}
	return nil
}

func (p LogPublisher) Close() error {
	return nil
}
