package service

import (
	"clutch-review/constant"
	"clutch-review/dto"
	"clutch-review/entities"
	"clutch-review/repository"
	"context"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultDisableReason = "Account disabled by an administrator"

type AccountService interface {
	DisableUser(ctx context.Context, userID, reason string) (*entities.User, error)
}

type accountService struct {
	deps Deps
}

func NewAccountService(deps Deps) AccountService {
	return &accountService{deps: deps.withDefaults()}
}

func (s *accountService) DisableUser(ctx context.Context, userID, reason string) (*entities.User, error) {
	if reason == "" {
		reason = defaultDisableReason
	}
	user, err := s.deps.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := suspendAccount(ctx, s.deps, user, reason, constant.MessageTypeDisabled); err != nil {
		return nil, err
	}
	return user, nil
}

func newMessage(userID string, msgType constant.MessageType, title, body string, deps Deps) *entities.Message {
	return &entities.Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      msgType,
		Title:     title,
		Body:      body,
		CreatedAt: deps.Now(),
	}
}

// suspendAccount disables the account, leaves the user a message, adds the ban entry and
// notifies the mailer. Ban and notification failures are logged only.
func suspendAccount(ctx context.Context, deps Deps, user *entities.User, reason string, msgType constant.MessageType) error {
	now := deps.Now()
	title := "Your account has been suspended"
	if msgType == constant.MessageTypeDisabled {
		title = "Your account has been disabled"
	}

	err := deps.Repo.Transaction(ctx, func(repo repository.Repository) error {
		user.Suspended = true
		user.Disabled = true
		user.SuspendedAt = &now
		user.SuspensionReason = reason
		if err := repo.SaveUser(ctx, user); err != nil {
			return err
		}
		return repo.CreateMessage(ctx, newMessage(user.ID, msgType, title, reason, deps))
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("failed to suspend user")
		return err
	}

	if err := deps.Bans.Ban(ctx, user.ID, reason); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("failed to add ban entry")
	}
	notify(ctx, deps, dto.Notification{
		Type:       msgType,
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.FullName(),
		Reason:     reason,
		Violations: user.TotalViolations(),
		CreatedAt:  now,
	})

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Str("type", string(msgType)).Msg("account suspended")
	return nil
}

func notify(ctx context.Context, deps Deps, notification dto.Notification) {
	if notification.Email == "" {
		zerolog.Ctx(ctx).Warn().Str("user_id", notification.UserID).Msg("user has no email, skipping notification")
		return
	}
	if err := deps.Notifier.Notify(ctx, notification); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", notification.UserID).Str("type", string(notification.Type)).Msg("failed to publish notification")
	}
}
