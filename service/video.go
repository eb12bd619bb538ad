package service

import (
	"clutch-review/constant"
	"clutch-review/entities"
	"clutch-review/repository"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type VideoService interface {
	StartRecording(ctx context.Context, userID string) (*entities.Video, error)
	CompleteVideo(ctx context.Context, userID, videoID string, shots int, url, objectKey string) (*entities.Video, error)
	FailVideo(ctx context.Context, userID, videoID, message string) (*entities.Video, error)
	GetStats(ctx context.Context, userID string) (*entities.UserStats, error)
	RecordViolation(ctx context.Context, userID string, kind constant.ViolationKind) error
}

type videoService struct {
	deps Deps
}

func NewVideoService(deps Deps) VideoService {
	return &videoService{
		deps: deps.withDefaults(),
	}
}

func (s *videoService) StartRecording(ctx context.Context, userID string) (*entities.Video, error) {
	if _, err := s.deps.Repo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}

	video := &entities.Video{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    constant.VideoStatusRecording,
		CreatedAt: s.deps.Now(),
	}
	if err := s.deps.Repo.CreateVideo(ctx, video); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("failed to create video")
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", userID).Str("video_id", video.ID).Msg("recording started")
	return video, nil
}

// CompleteVideo stores the result of a finished session, refreshes the owner's stats and
// queues the video for peer review, all in one transaction. Repeating it for a completed
// video changes nothing unless the video is unreviewed and missing from its queue.
func (s *videoService) CompleteVideo(ctx context.Context, userID, videoID string, shots int, url, objectKey string) (*entities.Video, error) {
	if shots < 0 || shots > constant.ShotsPerSession {
		return nil, ErrInvalidShots
	}

	var video *entities.Video
	err := s.deps.Repo.Transaction(ctx, func(repo repository.Repository) error {
		user, err := repo.FindUserByID(ctx, userID)
		if err != nil {
			return err
		}
		video, err = repo.FindVideo(ctx, userID, videoID)
		if err != nil {
			return err
		}

		now := s.deps.Now()
		if video.Status == constant.VideoStatusCompleted {
			resolved, err := reviewResolved(ctx, repo, video)
			if err != nil || resolved {
				return err
			}
			_, err = enqueue(ctx, repo, now, userID, videoID, user.Country, video.URL)
			return err
		}

		video.Status = constant.VideoStatusCompleted
		video.Shots = shots
		video.URL = url
		video.ObjectKey = objectKey
		video.CompletedAt = &now
		video.ErrorType = ""
		video.ErrorMessage = ""
		if err := repo.SaveVideo(ctx, video); err != nil {
			return err
		}

		videos, err := repo.ListVideosByUser(ctx, userID)
		if err != nil {
			return err
		}
		user.Stats = CalculateUserStats(videos, now)
		if err := repo.SaveUser(ctx, user); err != nil {
			return err
		}

		if _, err := enqueue(ctx, repo, now, userID, videoID, user.Country, video.URL); err != nil {
			return fmt.Errorf("enqueue review: %w", err)
		}
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", userID).Str("video_id", videoID).Msg("failed to complete video")
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", userID).Str("video_id", videoID).Int("shots", video.Shots).Msg("video completed")
	return video, nil
}

// reviewResolved reports whether a reviewer already verified or rejected the video.
func reviewResolved(ctx context.Context, repo repository.Repository, video *entities.Video) (bool, error) {
	if video.Verified {
		return true, nil
	}
	_, err := repo.FindFailedReview(ctx, video.ID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	}
	return false, err
}

func (s *videoService) FailVideo(ctx context.Context, userID, videoID, message string) (*entities.Video, error) {
	video, err := s.deps.Repo.FindVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if video.Status == constant.VideoStatusCompleted {
		return nil, ErrVideoCompleted
	}

	video.Status = constant.VideoStatusError
	video.ErrorType = ClassifyUploadError(message)
	video.ErrorMessage = message
	if err := s.deps.Repo.SaveVideo(ctx, video); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoID).Msg("failed to mark video as failed")
		return nil, err
	}

	zerolog.Ctx(ctx).Warn().Str("video_id", videoID).Str("error_type", string(video.ErrorType)).Msg("video upload failed")
	return video, nil
}

func (s *videoService) GetStats(ctx context.Context, userID string) (*entities.UserStats, error) {
	if _, err := s.deps.Repo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	videos, err := s.deps.Repo.ListVideosByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := CalculateUserStats(videos, s.deps.Now())
	return &stats, nil
}

func (s *videoService) RecordViolation(ctx context.Context, userID string, kind constant.ViolationKind) error {
	if err := s.deps.Repo.IncrementViolation(ctx, userID, kind); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("failed to record violation")
		return err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", userID).Str("kind", string(kind)).Msg("violation recorded")
	return nil
}
