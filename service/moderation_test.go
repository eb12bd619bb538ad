package service

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/dto"
	"clutch-review/entities"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ago(d time.Duration) *time.Time {
	t := baseTime.Add(-d)
	return &t
}

func TestEvaluate(t *testing.T) {
	policy := config.DefaultModeration()
	day := 24 * time.Hour

	tests := []struct {
		name        string
		user        entities.User
		wantState   constant.ModerationState
		wantWarn    bool
		wantSuspend bool
	}{
		{
			name:      "below warning threshold",
			user:      entities.User{IncorrectReviews: 1},
			wantState: constant.ModerationStateClean,
		},
		{
			name:      "two violations without warning",
			user:      entities.User{IncorrectReviews: 1, IncorrectUploads: 1},
			wantState: constant.ModerationStateClean,
			wantWarn:  true,
		},
		{
			name:      "two violations with active warning",
			user:      entities.User{IncorrectUploads: 2, LastWarningDate: ago(day)},
			wantState: constant.ModerationStateWarned,
		},
		{
			name:        "three violations with active warning",
			user:        entities.User{IncorrectReviews: 2, IncorrectUploads: 1, LastWarningDate: ago(10 * day)},
			wantState:   constant.ModerationStateWarned,
			wantSuspend: true,
		},
		{
			name:      "three violations with expired warning",
			user:      entities.User{IncorrectReviews: 3, LastWarningDate: ago(31 * day)},
			wantState: constant.ModerationStateWarned,
			wantWarn:  true,
		},
		{
			name:      "three violations without warning",
			user:      entities.User{IncorrectUploads: 3},
			wantState: constant.ModerationStateClean,
			wantWarn:  true,
		},
		{
			name:      "already suspended",
			user:      entities.User{IncorrectUploads: 5, Suspended: true, LastWarningDate: ago(day)},
			wantState: constant.ModerationStateSuspended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(policy, &tt.user, baseTime)
			assert.Equal(t, tt.wantState, d.State)
			assert.Equal(t, tt.wantWarn, d.ShouldWarn)
			assert.Equal(t, tt.wantSuspend, d.ShouldSuspend)
		})
	}
}

func TestModeration_InvalidMode(t *testing.T) {
	deps, _, _ := newTestDeps()
	svc := NewModerationService(deps, config.DefaultModeration())

	_, err := svc.Run(context.Background(), constant.ModerationMode("purge"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestModeration_CheckChangesNothing(t *testing.T) {
	deps, repo, _ := newTestDeps()
	seedUser(t, repo, &entities.User{ID: "u1", Email: "u1@example.com", IncorrectReviews: 1, IncorrectUploads: 1})
	notifier := new(MockNotifier)
	deps.Notifier = notifier
	svc := NewModerationService(deps, config.DefaultModeration())

	report, err := svc.Run(context.Background(), constant.ModerationModeCheck)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scanned)
	require.Len(t, report.Decisions, 1)
	assert.True(t, report.Decisions[0].ShouldWarn)
	assert.Empty(t, report.Warned)
	user, err := repo.FindUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, user.LastWarningDate)
	notifier.AssertNotCalled(t, "Notify", mock.Anything)
}

func TestModeration_WarnThenSuspend(t *testing.T) {
	ctx := context.Background()
	deps, repo, clk := newTestDeps()
	seedUser(t, repo, &entities.User{ID: "u1", Email: "u1@example.com", IncorrectReviews: 1, IncorrectUploads: 1})
	seedUser(t, repo, &entities.User{ID: "clean", Email: "clean@example.com"})
	notifier := new(MockNotifier)
	bans := new(MockBanList)
	deps.Notifier = notifier
	deps.Bans = bans
	svc := NewModerationService(deps, config.DefaultModeration())

	notifier.On("Notify", mock.MatchedBy(func(n dto.Notification) bool {
		return n.Type == constant.MessageTypeWarning && n.UserID == "u1" && n.Violations == 2
	})).Return(nil).Once()

	report, err := svc.Run(ctx, constant.ModerationModeWarn)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, report.Warned)

	user, err := repo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, user.LastWarningDate)
	assert.Equal(t, baseTime, *user.LastWarningDate)
	assert.False(t, user.Suspended)
	messages, err := repo.ListMessages(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, constant.MessageTypeWarning, messages[0].Type)

	// a second warn run leaves the active warning alone
	report, err = svc.Run(ctx, constant.ModerationModeWarn)
	require.NoError(t, err)
	assert.Empty(t, report.Warned)

	require.NoError(t, repo.IncrementViolation(ctx, "u1", constant.ViolationUpload))
	clk.Advance(5 * 24 * time.Hour)

	bans.On("Ban", "u1", mock.AnythingOfType("string")).Return(nil).Once()
	notifier.On("Notify", mock.MatchedBy(func(n dto.Notification) bool {
		return n.Type == constant.MessageTypeSuspension && n.UserID == "u1"
	})).Return(nil).Once()

	report, err = svc.Run(ctx, constant.ModerationModeSuspend)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, report.Suspended)

	user, err = repo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Suspended)
	assert.True(t, user.Disabled)
	require.NotNil(t, user.SuspendedAt)
	assert.Contains(t, user.SuspensionReason, "1 incorrect reviews and 2 incorrect uploads")

	notifier.AssertExpectations(t)
	bans.AssertExpectations(t)
}

func TestModeration_SuspendSkipsExpiredWarning(t *testing.T) {
	ctx := context.Background()
	deps, repo, _ := newTestDeps()
	seedUser(t, repo, &entities.User{ID: "u1", IncorrectReviews: 3, LastWarningDate: ago(31 * 24 * time.Hour)})
	svc := NewModerationService(deps, config.DefaultModeration())

	report, err := svc.Run(ctx, constant.ModerationModeSuspend)
	require.NoError(t, err)

	assert.Empty(t, report.Suspended)
	user, err := repo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, user.Suspended)
	assert.Equal(t, 3, user.IncorrectReviews)
}

func TestModeration_ResetCountersOnExpiry(t *testing.T) {
	ctx := context.Background()
	deps, repo, _ := newTestDeps()
	seedUser(t, repo, &entities.User{ID: "u1", IncorrectReviews: 3, LastWarningDate: ago(31 * 24 * time.Hour)})
	policy := config.DefaultModeration()
	policy.ResetCountersOnExpiry = true
	svc := NewModerationService(deps, policy)

	report, err := svc.Run(ctx, constant.ModerationModeWarn)
	require.NoError(t, err)

	assert.Equal(t, []string{"u1"}, report.Reset)
	assert.Empty(t, report.Warned)
	user, err := repo.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, user.TotalViolations())
	assert.Nil(t, user.LastWarningDate)
}

func TestModeration_NotificationFailureDoesNotFailWarning(t *testing.T) {
	ctx := context.Background()
	deps, repo, _ := newTestDeps()
	seedUser(t, repo, &entities.User{ID: "u1", Email: "u1@example.com", IncorrectUploads: 2})
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything).Return(errors.New("broker down"))
	deps.Notifier = notifier
	svc := NewModerationService(deps, config.DefaultModeration())

	report, err := svc.Run(ctx, constant.ModerationModeWarn)
	require.NoError(t, err)

	assert.Equal(t, []string{"u1"}, report.Warned)
	assert.Empty(t, report.Failed)
}
