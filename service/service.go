package service

import (
	"clutch-review/constant"
	"clutch-review/dto"
	"clutch-review/repository"
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
)

var ErrNonRetryable = errors.New("non-retryable error")

// Service turns upload results coming off the message queue into video state changes.
type Service interface {
	Process(ctx context.Context, event dto.UploadEvent) error
}

type service struct {
	repo   repository.Repository
	videos VideoService
}

func (s service) Process(ctx context.Context, event dto.UploadEvent) (err error) {
	zerolog.Ctx(ctx).Info().Str("video_id", event.VideoID).Str("status", string(event.Status)).Msg("processing upload event")
	if event.UserID == "" || event.VideoID == "" {
		return fmt.Errorf("%w: upload event without user or video id", ErrNonRetryable)
	}

	video, err := s.repo.FindVideo(ctx, event.UserID, event.VideoID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to find video")
		if errors.Is(err, repository.ErrNotFound) {
			return errors.Join(ErrNonRetryable, err)
		}
		return err
	}

	if video.Status != constant.VideoStatusRecording {
		zerolog.Ctx(ctx).Info().Str("video_id", event.VideoID).Str("status", string(video.Status)).Msg("video is not recording")
		return nil
	}

	switch event.Status {
	case constant.VideoStatusCompleted:
		_, err = s.videos.CompleteVideo(ctx, event.UserID, event.VideoID, event.Shots, event.URL, event.ObjectKey)
		if errors.Is(err, ErrInvalidShots) {
			return errors.Join(ErrNonRetryable, err)
		}
	case constant.VideoStatusError:
		_, err = s.videos.FailVideo(ctx, event.UserID, event.VideoID, event.Error)
	default:
		return fmt.Errorf("%w: unknown upload status %q", ErrNonRetryable, event.Status)
	}
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("video_id", event.VideoID).Msg("upload event processed")
	return nil
}

func NewService(repo repository.Repository, videos VideoService) Service {
	return &service{
		repo:   repo,
		videos: videos,
	}
}
