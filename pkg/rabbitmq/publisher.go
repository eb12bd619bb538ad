package rabbitmq

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/dto"
	"context"
	"encoding/json"
	"errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"sync"
)

const defaultNotificationExchange = "notification_exchange"

// RoutingKey maps a notification type onto the key the mailer binds to.
func RoutingKey(t constant.MessageType) string {
	return "notification." + string(t)
}

// Publisher sends notification events for the external mailer. The channel is opened
// lazily and reopened after the broker closes it.
type Publisher struct {
	conn     *amqp.Connection
	cfg      *config.RabbitMQ
	exchange string

	mu       sync.Mutex
	ch       *amqp.Channel
	declared bool
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) *Publisher {
	exchange := cfg.ExchangeName
	if exchange == "" {
		exchange = defaultNotificationExchange
	}
	return &Publisher{
		conn:     conn,
		cfg:      cfg,
		exchange: exchange,
	}
}

func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.conn == nil {
		return nil, errors.New("rabbitmq connection is not available")
	}
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	if !p.declared {
		err = ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil)
		if err != nil {
			zerolog.Ctx(ctx).Error().Str("exchange", p.exchange).Msg("failed to declare exchange")
			_ = ch.Close()
			return nil, err
		}
		p.declared = true
	}
	p.ch = ch
	return ch, nil
}

func (p *Publisher) Notify(ctx context.Context, notification dto.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	routingKey := RoutingKey(notification.Type)
	err = ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Str("routing_key", routingKey).Str("user_id", notification.UserID).Msg("notification published")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		return nil
	}
	return p.ch.Close()
}
