package config

import (
	"context"
	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"time"
)

// connectOptions turns the configured retry budget into backoff options. A zero budget
// still allows one attempt.
func connectOptions(cfg *RabbitMQ) []backoff.RetryOption {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = cfg.ConnectMaxInterval
	if bo.MaxInterval <= 0 {
		bo.MaxInterval = 10 * time.Second
	}
	tries := cfg.ConnectRetries
	if tries == 0 {
		tries = 1
	}
	return []backoff.RetryOption{backoff.WithBackOff(bo), backoff.WithMaxTries(tries)}
}

// NewRabbitMQConn dials the broker, retrying within the configured budget. The caller owns
// the connection and closes it.
func NewRabbitMQConn(ctx context.Context, cfg *RabbitMQ) (*amqp.Connection, error) {
	logger := zerolog.Ctx(ctx).With().Str("host", cfg.Host).Int("port", cfg.Port).Logger()

	operation := func() (*amqp.Connection, error) {
		conn, err := amqp.Dial(cfg.URL())
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to rabbitmq, retrying")
			return nil, err
		}
		return conn, nil
	}

	conn, err := backoff.Retry(ctx, operation, connectOptions(cfg)...)
	if err != nil {
		logger.Error().Err(err).Uint("tries", cfg.ConnectRetries).Msg("giving up on rabbitmq")
		return nil, err
	}

	logger.Info().Msg("connected to rabbitmq")
	return conn, nil
}
