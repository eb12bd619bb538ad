package service

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/dto"
	"clutch-review/entities"
	"clutch-review/repository"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"strings"
	"time"
)

const releaseAttempts = 3

type ReviewService interface {
	Enqueue(ctx context.Context, userID, videoID, country, url string) (*entities.PendingReview, error)
	// FindCandidate returns nil without error when nothing is reviewable.
	FindCandidate(ctx context.Context, country, reviewerID string) (*entities.PendingReview, error)
	Claim(ctx context.Context, country, videoID, userID, reviewerID string) (*entities.PendingReview, error)
	ClaimNext(ctx context.Context, country, reviewerID string) (*entities.PendingReview, error)
	Release(ctx context.Context, country, videoID, userID string) error
	CompleteReviewSuccess(ctx context.Context, recordingUserID, videoID, country, reviewerID string) error
	CompleteReviewFailed(ctx context.Context, failure dto.ReviewFailure) error
	ListPending(ctx context.Context, country string) ([]*entities.PendingReview, error)
	ListFailedReviews(ctx context.Context, country string) ([]*entities.FailedReview, error)
}

type reviewService struct {
	deps Deps
	cfg  config.Review
}

func NewReviewService(deps Deps, cfg config.Review) ReviewService {
	return &reviewService{
		deps: deps.withDefaults(),
		cfg:  cfg,
	}
}

// QueueKey resolves the queue a country code maps to.
func QueueKey(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return constant.NoCountry
	}
	return country
}

func truncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) <= constant.MaxFailureReasonLength {
		return reason
	}
	return string(runes[:constant.MaxFailureReasonLength])
}

func (s *reviewService) Enqueue(ctx context.Context, userID, videoID, country, url string) (*entities.PendingReview, error) {
	return enqueue(ctx, s.deps.Repo, s.deps.Now(), userID, videoID, country, url)
}

// enqueue adds the video to its country queue through repo, which may be bound to a
// caller's transaction. An entry that already exists is returned as is.
func enqueue(ctx context.Context, repo repository.Repository, now time.Time, userID, videoID, country, url string) (*entities.PendingReview, error) {
	country = QueueKey(country)
	existing, err := repo.FindPendingReview(ctx, country, videoID, userID)
	if err == nil {
		zerolog.Ctx(ctx).Warn().Str("video_id", videoID).Str("user_id", userID).Str("country", country).Msg("video already queued for review")
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	entry := &entities.PendingReview{
		ID:      uuid.New().String(),
		Country: country,
		VideoID: videoID,
		UserID:  userID,
		URL:     url,
		AddedAt: now,
	}
	if err := repo.CreatePendingReview(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoID).Msg("failed to enqueue video for review")
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("video_id", videoID).Str("country", country).Msg("video queued for review")
	return entry, nil
}

func (s *reviewService) reviewable(entry *entities.PendingReview, reviewerID string) bool {
	return entry.UserID != reviewerID && !entry.ClaimActive(s.deps.Now(), s.cfg.ClaimTTL)
}

func (s *reviewService) FindCandidate(ctx context.Context, country, reviewerID string) (*entities.PendingReview, error) {
	entries, err := s.deps.Repo.ListPendingReviews(ctx, QueueKey(country))
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if s.reviewable(entry, reviewerID) {
			return entry, nil
		}
	}
	return nil, nil
}

func (s *reviewService) claim(ctx context.Context, entry *entities.PendingReview, reviewerID string) (bool, error) {
	now := s.deps.Now()
	entry.BeingReviewedCurrently = true
	entry.ClaimedBy = reviewerID
	entry.BeingReviewedCurrentlyDate = &now
	return s.deps.Repo.CompareAndSwapClaim(ctx, entry)
}

func (s *reviewService) Claim(ctx context.Context, country, videoID, userID, reviewerID string) (*entities.PendingReview, error) {
	entry, err := s.deps.Repo.FindPendingReview(ctx, QueueKey(country), videoID, userID)
	if err != nil {
		return nil, err
	}
	if entry.UserID == reviewerID {
		return nil, ErrOwnVideo
	}
	if entry.ClaimActive(s.deps.Now(), s.cfg.ClaimTTL) {
		return nil, ErrAlreadyClaimed
	}

	ok, err := s.claim(ctx, entry, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		zerolog.Ctx(ctx).Info().Str("video_id", videoID).Str("reviewer_id", reviewerID).Msg("lost claim race")
		return nil, ErrAlreadyClaimed
	}

	zerolog.Ctx(ctx).Info().Str("video_id", videoID).Str("reviewer_id", reviewerID).Msg("review claimed")
	return entry, nil
}

func (s *reviewService) ClaimNext(ctx context.Context, country, reviewerID string) (*entities.PendingReview, error) {
	entries, err := s.deps.Repo.ListPendingReviews(ctx, QueueKey(country))
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !s.reviewable(entry, reviewerID) {
			continue
		}
		ok, err := s.claim(ctx, entry, reviewerID)
		if err != nil {
			return nil, err
		}
		if ok {
			zerolog.Ctx(ctx).Info().Str("video_id", entry.VideoID).Str("reviewer_id", reviewerID).Msg("review claimed")
			return entry, nil
		}
	}
	return nil, nil
}

func (s *reviewService) Release(ctx context.Context, country, videoID, userID string) error {
	country = QueueKey(country)
	for attempt := 0; attempt < releaseAttempts; attempt++ {
		entry, err := s.deps.Repo.FindPendingReview(ctx, country, videoID, userID)
		if err != nil {
			return err
		}
		if !entry.BeingReviewedCurrently {
			return nil
		}

		entry.BeingReviewedCurrently = false
		entry.ClaimedBy = ""
		entry.BeingReviewedCurrentlyDate = nil
		ok, err := s.deps.Repo.CompareAndSwapClaim(ctx, entry)
		if err != nil {
			return err
		}
		if ok {
			zerolog.Ctx(ctx).Info().Str("video_id", videoID).Msg("review released")
			return nil
		}
	}
	return fmt.Errorf("release %s: %w", videoID, ErrAlreadyClaimed)
}

// checkResolver rejects a verdict on an entry another reviewer is still holding.
func (s *reviewService) checkResolver(entry *entities.PendingReview, reviewerID string) error {
	if entry.ClaimedBy != reviewerID && entry.ClaimActive(s.deps.Now(), s.cfg.ClaimTTL) {
		return ErrAlreadyClaimed
	}
	return nil
}

func (s *reviewService) CompleteReviewSuccess(ctx context.Context, recordingUserID, videoID, country, reviewerID string) error {
	if recordingUserID == reviewerID {
		return ErrOwnVideo
	}
	country = QueueKey(country)
	err := s.deps.Repo.Transaction(ctx, func(repo repository.Repository) error {
		entry, err := repo.FindPendingReview(ctx, country, videoID, recordingUserID)
		switch {
		case err == nil:
			if err := s.checkResolver(entry, reviewerID); err != nil {
				return err
			}
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if err := repo.MarkVideoVerified(ctx, recordingUserID, videoID); err != nil {
			return fmt.Errorf("mark video verified: %w", err)
		}

		removed, err := repo.DeletePendingReview(ctx, country, videoID, recordingUserID)
		if err != nil {
			return fmt.Errorf("remove pending review: %w", err)
		}
		if removed == 0 {
			zerolog.Ctx(ctx).Warn().Str("video_id", videoID).Str("country", country).Msg("no pending review entry to remove")
		}

		if err := repo.MarkReviewerActive(ctx, reviewerID); err != nil {
			return fmt.Errorf("mark reviewer: %w", err)
		}
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoID).Msg("failed to complete successful review")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("video_id", videoID).Str("reviewer_id", reviewerID).Msg("review completed: verified")
	return nil
}

func (s *reviewService) CompleteReviewFailed(ctx context.Context, failure dto.ReviewFailure) error {
	if failure.RecordingUserID == failure.ReviewerID {
		return ErrOwnVideo
	}
	country := QueueKey(failure.Country)
	err := s.deps.Repo.Transaction(ctx, func(repo repository.Repository) error {
		user, err := repo.FindUserByID(ctx, failure.RecordingUserID)
		if err != nil {
			return fmt.Errorf("load recording user: %w", err)
		}

		url := ""
		entry, err := repo.FindPendingReview(ctx, country, failure.VideoID, failure.RecordingUserID)
		switch {
		case err == nil:
			if err := s.checkResolver(entry, failure.ReviewerID); err != nil {
				return err
			}
			url = entry.URL
		case errors.Is(err, repository.ErrNotFound):
			zerolog.Ctx(ctx).Warn().Str("video_id", failure.VideoID).Str("country", country).Msg("no pending review entry to remove")
		default:
			return err
		}
		if url == "" {
			if video, err := repo.FindVideo(ctx, failure.RecordingUserID, failure.VideoID); err == nil {
				url = video.URL
			}
		}

		if _, err := repo.DeletePendingReview(ctx, country, failure.VideoID, failure.RecordingUserID); err != nil {
			return fmt.Errorf("remove pending review: %w", err)
		}

		record := &entities.FailedReview{
			VideoID:               failure.VideoID,
			UserID:                failure.RecordingUserID,
			UserName:              user.FullName(),
			Country:               country,
			URL:                   url,
			ReviewerID:            failure.ReviewerID,
			Reason:                truncateReason(failure.Reason),
			ReportedShots:         failure.ReportedShots,
			ReviewerSelectedShots: failure.ReviewerSelectedShots,
			ReviewedAt:            s.deps.Now(),
		}
		if err := repo.SaveFailedReview(ctx, record); err != nil {
			return fmt.Errorf("save failed review: %w", err)
		}

		if err := repo.MarkReviewerActive(ctx, failure.ReviewerID); err != nil {
			return fmt.Errorf("mark reviewer: %w", err)
		}
		return nil
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", failure.VideoID).Msg("failed to complete failed review")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("video_id", failure.VideoID).Str("reviewer_id", failure.ReviewerID).Msg("review completed: failed")
	return nil
}

func (s *reviewService) ListPending(ctx context.Context, country string) ([]*entities.PendingReview, error) {
	return s.deps.Repo.ListPendingReviews(ctx, QueueKey(country))
}

func (s *reviewService) ListFailedReviews(ctx context.Context, country string) ([]*entities.FailedReview, error) {
	return s.deps.Repo.ListFailedReviews(ctx, QueueKey(country))
}
