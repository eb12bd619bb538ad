package service

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/entities"
	"clutch-review/repository"
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"time"
)

type InactiveUser struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Videos       int       `json:"videos"`
}

type DeletionReport struct {
	DryRun   bool              `json:"dryRun"`
	Inactive []InactiveUser    `json:"inactive"`
	Deleted  []string          `json:"deleted"`
	Failed   map[string]string `json:"failed"`
}

type DeletionService interface {
	// VerifyDefaultAdmin fails with ErrDefaultAdminMissing when group ownership has nowhere to go.
	VerifyDefaultAdmin(ctx context.Context) error
	FindInactive(ctx context.Context) ([]InactiveUser, error)
	Run(ctx context.Context, dryRun bool) (*DeletionReport, error)
	DeleteUser(ctx context.Context, userID string) error
}

type deletionService struct {
	deps Deps
	cfg  config.Deletion
}

func NewDeletionService(deps Deps, cfg config.Deletion) DeletionService {
	return &deletionService{
		deps: deps.withDefaults(),
		cfg:  cfg,
	}
}

func (s *deletionService) VerifyDefaultAdmin(ctx context.Context) error {
	if s.cfg.DefaultAdminID == "" {
		return fmt.Errorf("%w: deletion.default_admin_id is not set", ErrDefaultAdminMissing)
	}
	_, err := s.deps.Repo.FindUserByID(ctx, s.cfg.DefaultAdminID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrDefaultAdminMissing, s.cfg.DefaultAdminID)
	}
	return err
}

// lastActivity is the later of account creation and the newest completed video.
func lastActivity(user *entities.User, videos []*entities.Video) time.Time {
	last := user.CreatedAt
	for _, v := range videos {
		if v.Status != constant.VideoStatusCompleted || v.CompletedAt == nil {
			continue
		}
		if v.CompletedAt.After(last) {
			last = *v.CompletedAt
		}
	}
	return last
}

func (s *deletionService) FindInactive(ctx context.Context) ([]InactiveUser, error) {
	users, err := s.deps.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.deps.Now()
	var inactive []InactiveUser
	for _, user := range users {
		if user.ID == s.cfg.DefaultAdminID {
			continue
		}
		videos, err := s.deps.Repo.ListVideosByUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		last := lastActivity(user, videos)
		if now.Sub(last) <= s.cfg.InactivityPeriod {
			continue
		}
		inactive = append(inactive, InactiveUser{
			UserID:       user.ID,
			Email:        user.Email,
			Name:         user.FullName(),
			CreatedAt:    user.CreatedAt,
			LastActivity: last,
			Videos:       len(videos),
		})
	}
	return inactive, nil
}

func (s *deletionService) Run(ctx context.Context, dryRun bool) (*DeletionReport, error) {
	if err := s.VerifyDefaultAdmin(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("cannot delete users without a default admin")
		return nil, err
	}

	inactive, err := s.FindInactive(ctx)
	if err != nil {
		return nil, err
	}

	report := &DeletionReport{
		DryRun:   dryRun,
		Inactive: inactive,
		Failed:   make(map[string]string),
	}
	if dryRun {
		zerolog.Ctx(ctx).Info().Int("inactive", len(inactive)).Msg("dry run, nothing deleted")
		return report, nil
	}

	for _, u := range inactive {
		if err := s.DeleteUser(ctx, u.UserID); err != nil {
			report.Failed[u.UserID] = err.Error()
			continue
		}
		report.Deleted = append(report.Deleted, u.UserID)
	}

	zerolog.Ctx(ctx).Info().
		Int("inactive", len(inactive)).
		Int("deleted", len(report.Deleted)).
		Int("failed", len(report.Failed)).
		Msg("inactive user deletion finished")
	return report, nil
}

// DeleteUser removes the user and everything that points at them. Each step tolerates
// data that is already gone so a crashed run can simply be repeated.
func (s *deletionService) DeleteUser(ctx context.Context, userID string) error {
	logger := zerolog.Ctx(ctx).With().Str("user_id", userID).Logger()
	if userID == s.cfg.DefaultAdminID {
		return ErrProtectedAccount
	}
	if err := s.VerifyDefaultAdmin(ctx); err != nil {
		logger.Error().Err(err).Msg("skipping user deletion")
		return err
	}

	videos, err := s.deps.Repo.ListVideosByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, v := range videos {
		if v.ObjectKey == "" {
			continue
		}
		if err := s.deps.Objects.RemoveObject(ctx, v.ObjectKey); err != nil {
			logger.Error().Err(err).Str("object_key", v.ObjectKey).Msg("failed to delete video object")
			return fmt.Errorf("remove video object %s: %w", v.ObjectKey, err)
		}
	}
	orphans, err := s.deps.Objects.RemovePrefix(ctx, constant.UserVideoPrefix(userID))
	if err != nil {
		logger.Error().Err(err).Msg("failed to clear upload folder")
		return fmt.Errorf("remove upload folder: %w", err)
	}

	err = s.deps.Repo.Transaction(ctx, func(repo repository.Repository) error {
		groups, err := repo.ListGroupsByMember(ctx, userID)
		if err != nil {
			return err
		}
		for _, group := range groups {
			group.RemoveMember(userID)
			if group.AdminID == userID {
				if err := s.transferGroup(ctx, repo, group); err != nil {
					return err
				}
				logger.Info().Str("group", group.Name).Str("admin_id", s.cfg.DefaultAdminID).Msg("group admin transferred")
			}
			if err := repo.SaveGroup(ctx, group); err != nil {
				return fmt.Errorf("update group %s: %w", group.Name, err)
			}
		}

		if _, err := repo.DeleteMessagesByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if _, err := repo.DeletePendingReviewsByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete pending reviews: %w", err)
		}
		if _, err := repo.DeleteFailedReviewsByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete failed reviews: %w", err)
		}
		if _, err := repo.DeleteVideosByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete videos: %w", err)
		}
		return repo.DeleteUser(ctx, userID)
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to delete user")
		return err
	}

	if err := s.deps.Bans.Unban(ctx, userID); err != nil {
		logger.Error().Err(err).Msg("failed to clear ban entry")
	}

	logger.Info().Int("videos", len(videos)).Int("orphan_objects", orphans).Msg("user deleted")
	return nil
}

func (s *deletionService) transferGroup(ctx context.Context, repo repository.Repository, group *entities.Group) error {
	admin, err := repo.FindUserByID(ctx, s.cfg.DefaultAdminID)
	if err != nil {
		return fmt.Errorf("load default admin: %w", err)
	}

	group.AdminID = admin.ID
	if !group.HasMember(admin.ID) {
		group.Members = append(group.Members, admin.ID)
	}
	for _, name := range admin.Groups {
		if name == group.Name {
			return nil
		}
	}
	admin.Groups = append(admin.Groups, group.Name)
	return repo.SaveUser(ctx, admin)
}
