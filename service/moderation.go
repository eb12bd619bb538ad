package service

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/dto"
	"clutch-review/entities"
	"clutch-review/repository"
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"time"
)

type Decision struct {
	UserID           string                   `json:"userId"`
	Email            string                   `json:"email"`
	IncorrectReviews int                      `json:"incorrectReviews"`
	IncorrectUploads int                      `json:"incorrectUploads"`
	Total            int                      `json:"total"`
	ActiveWarning    bool                     `json:"activeWarning"`
	State            constant.ModerationState `json:"state"`
	ShouldWarn       bool                     `json:"shouldWarn"`
	ShouldSuspend    bool                     `json:"shouldSuspend"`
}

type ModerationReport struct {
	Mode      constant.ModerationMode `json:"mode"`
	Scanned   int                     `json:"scanned"`
	Decisions []Decision              `json:"decisions"`
	Warned    []string                `json:"warned"`
	Suspended []string                `json:"suspended"`
	Reset     []string                `json:"reset"`
	Failed    map[string]string       `json:"failed"`
}

// Evaluate places a user in the clean → warned → suspended progression. A warning counts
// as active for policy.WarningWindow after LastWarningDate; stored counters never decay here.
func Evaluate(policy config.Moderation, user *entities.User, now time.Time) Decision {
	d := Decision{
		UserID:           user.ID,
		Email:            user.Email,
		IncorrectReviews: user.IncorrectReviews,
		IncorrectUploads: user.IncorrectUploads,
		Total:            user.TotalViolations(),
		ActiveWarning:    warningActive(policy, user, now),
	}

	switch {
	case user.Suspended:
		d.State = constant.ModerationStateSuspended
		return d
	case user.LastWarningDate != nil:
		d.State = constant.ModerationStateWarned
	default:
		d.State = constant.ModerationStateClean
	}

	d.ShouldWarn = d.Total >= policy.WarningThreshold && !d.ActiveWarning
	d.ShouldSuspend = d.Total >= policy.SuspensionThreshold && d.ActiveWarning
	return d
}

func warningActive(policy config.Moderation, user *entities.User, now time.Time) bool {
	if user.LastWarningDate == nil {
		return false
	}
	return now.Sub(*user.LastWarningDate) <= policy.WarningWindow
}

type ModerationService interface {
	Run(ctx context.Context, mode constant.ModerationMode) (*ModerationReport, error)
}

type moderationService struct {
	deps   Deps
	policy config.Moderation
}

func NewModerationService(deps Deps, policy config.Moderation) ModerationService {
	return &moderationService{
		deps:   deps.withDefaults(),
		policy: policy,
	}
}

func (s *moderationService) Run(ctx context.Context, mode constant.ModerationMode) (*ModerationReport, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	users, err := s.deps.Repo.ListUsersForModeration(ctx)
	if err != nil {
		return nil, err
	}

	report := &ModerationReport{
		Mode:    mode,
		Scanned: len(users),
		Failed:  make(map[string]string),
	}
	now := s.deps.Now()
	for _, user := range users {
		if s.policy.ResetCountersOnExpiry && user.LastWarningDate != nil && !warningActive(s.policy, user, now) {
			if err := s.resetCounters(ctx, user, mode); err != nil {
				report.Failed[user.ID] = err.Error()
				continue
			}
			report.Reset = append(report.Reset, user.ID)
		}

		decision := Evaluate(s.policy, user, now)
		report.Decisions = append(report.Decisions, decision)

		switch {
		case mode == constant.ModerationModeWarn && decision.ShouldWarn:
			if err := s.warn(ctx, user, now); err != nil {
				report.Failed[user.ID] = err.Error()
				continue
			}
			report.Warned = append(report.Warned, user.ID)
		case mode == constant.ModerationModeSuspend && decision.ShouldSuspend:
			reason := fmt.Sprintf("Exceeded violation limit: %d incorrect reviews and %d incorrect uploads", user.IncorrectReviews, user.IncorrectUploads)
			if err := suspendAccount(ctx, s.deps, user, reason, constant.MessageTypeSuspension); err != nil {
				report.Failed[user.ID] = err.Error()
				continue
			}
			report.Suspended = append(report.Suspended, user.ID)
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("mode", string(mode)).
		Int("scanned", report.Scanned).
		Int("warned", len(report.Warned)).
		Int("suspended", len(report.Suspended)).
		Int("failed", len(report.Failed)).
		Msg("moderation run finished")
	return report, nil
}

// resetCounters clears an expired warning together with the counters it covered.
// Check mode only applies it to the in-memory copy.
func (s *moderationService) resetCounters(ctx context.Context, user *entities.User, mode constant.ModerationMode) error {
	user.IncorrectReviews = 0
	user.IncorrectUploads = 0
	user.LastWarningDate = nil
	if mode == constant.ModerationModeCheck {
		return nil
	}
	if err := s.deps.Repo.SaveUser(ctx, user); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("failed to reset violation counters")
		return err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("warning expired, violation counters reset")
	return nil
}

func (s *moderationService) warn(ctx context.Context, user *entities.User, now time.Time) error {
	body := fmt.Sprintf(
		"We found %d incorrect reviews and %d incorrect uploads on your account. Reaching %d violations while this warning is active will suspend your account.",
		user.IncorrectReviews, user.IncorrectUploads, s.policy.SuspensionThreshold,
	)

	err := s.deps.Repo.Transaction(ctx, func(repo repository.Repository) error {
		if err := repo.CreateMessage(ctx, newMessage(user.ID, constant.MessageTypeWarning, "Warning: violations on your account", body, s.deps)); err != nil {
			return err
		}
		user.LastWarningDate = &now
		return repo.SaveUser(ctx, user)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("failed to warn user")
		return err
	}

	notify(ctx, s.deps, dto.Notification{
		Type:       constant.MessageTypeWarning,
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.FullName(),
		Reason:     body,
		Violations: user.TotalViolations(),
		CreatedAt:  now,
	})

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Int("violations", user.TotalViolations()).Msg("user warned")
	return nil
}
