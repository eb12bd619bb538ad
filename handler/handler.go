package handler

import (
	"clutch-review/dto"
	"clutch-review/service"
	"context"
	"encoding/json"
	"errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type ServiceDependencies struct {
	UploadService service.Service
}

func UploadHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var event dto.UploadEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal upload event")
		return errors.Join(service.ErrNonRetryable, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", event.UserID).
		Str("video_id", event.VideoID).
		Msg("received upload event")

	err := deps.UploadService.Process(ctx, event)
	if err != nil {
		return err
	}

	return nil
}

// IsNonRetryable tells the consumer to dead-letter a message without retrying it.
func IsNonRetryable(err error) bool {
	return errors.Is(err, service.ErrNonRetryable)
}
