package service

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/entities"
	"clutch-review/repository"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const year = 365 * 24 * time.Hour

func deletionConfig() config.Deletion {
	return config.Deletion{DefaultAdminID: "admin", InactivityPeriod: year}
}

// seedDeletionData creates an admin, an active user and a stale user who owns a group,
// has a queued video, a failed review and a message.
func seedDeletionData(t *testing.T, repo *repository.MemoryRepository) {
	t.Helper()
	ctx := context.Background()
	seedUser(t, repo, &entities.User{ID: "admin", CreatedAt: baseTime.Add(-3 * year)})
	seedUser(t, repo, &entities.User{ID: "active", CreatedAt: baseTime.Add(-2 * year)})
	seedUser(t, repo, &entities.User{ID: "stale", Email: "stale@example.com", CreatedAt: baseTime.Add(-2 * year), Groups: pq.StringArray{"hoopers"}})

	recent := baseTime.Add(-24 * time.Hour)
	old := baseTime.Add(-400 * 24 * time.Hour)
	require.NoError(t, repo.CreateVideo(ctx, &entities.Video{ID: "va", UserID: "active", Status: constant.VideoStatusCompleted, CreatedAt: recent, CompletedAt: &recent}))
	require.NoError(t, repo.CreateVideo(ctx, &entities.Video{ID: "vs", UserID: "stale", ObjectKey: "videos/stale/vs.mp4", Status: constant.VideoStatusCompleted, CreatedAt: old, CompletedAt: &old}))
	require.NoError(t, repo.CreatePendingReview(ctx, &entities.PendingReview{ID: "p1", Country: "US", VideoID: "vs", UserID: "stale"}))
	require.NoError(t, repo.SaveFailedReview(ctx, &entities.FailedReview{VideoID: "vs", UserID: "stale", Country: "US"}))
	require.NoError(t, repo.CreateMessage(ctx, &entities.Message{ID: "m1", UserID: "stale"}))
	require.NoError(t, repo.SaveGroup(ctx, &entities.Group{Name: "hoopers", AdminID: "stale", Members: pq.StringArray{"stale", "active"}}))
}

func TestDeletion_FindInactive(t *testing.T) {
	deps, repo, _ := newTestDeps()
	seedDeletionData(t, repo)
	svc := NewDeletionService(deps, deletionConfig())

	inactive, err := svc.FindInactive(context.Background())
	require.NoError(t, err)

	require.Len(t, inactive, 1)
	assert.Equal(t, "stale", inactive[0].UserID)
	assert.Equal(t, 1, inactive[0].Videos)
}

func TestDeletion_DryRunDeletesNothing(t *testing.T) {
	ctx := context.Background()
	deps, repo, _ := newTestDeps()
	seedDeletionData(t, repo)
	svc := NewDeletionService(deps, deletionConfig())

	report, err := svc.Run(ctx, true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Len(t, report.Inactive, 1)
	assert.Empty(t, report.Deleted)
	_, err = repo.FindUserByID(ctx, "stale")
	assert.NoError(t, err)
}

func TestDeletion_MissingDefaultAdminAbortsRun(t *testing.T) {
	deps, repo, _ := newTestDeps()
	seedDeletionData(t, repo)
	cfg := deletionConfig()
	cfg.DefaultAdminID = "nobody"
	svc := NewDeletionService(deps, cfg)

	_, err := svc.Run(context.Background(), false)
	assert.ErrorIs(t, err, ErrDefaultAdminMissing)

	cfg.DefaultAdminID = ""
	svc = NewDeletionService(deps, cfg)
	_, err = svc.Run(context.Background(), true)
	assert.ErrorIs(t, err, ErrDefaultAdminMissing)
}

func TestDeletion_RunCascades(t *testing.T) {
	ctx := context.Background()
	deps, repo, _ := newTestDeps()
	seedDeletionData(t, repo)
	objects := new(MockObjectStore)
	bans := new(MockBanList)
	deps.Objects = objects
	deps.Bans = bans
	objects.On("RemoveObject", "videos/stale/vs.mp4").Return(nil).Once()
	objects.On("RemovePrefix", "videos/stale/").Return(0, nil).Once()
	bans.On("Unban", "stale").Return(nil).Once()
	svc := NewDeletionService(deps, deletionConfig())

	report, err := svc.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, report.Deleted)
	assert.Empty(t, report.Failed)

	_, err = repo.FindUserByID(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	videos, err := repo.ListVideosByUser(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, videos)
	pending, err := repo.ListPendingReviews(ctx, "US")
	require.NoError(t, err)
	assert.Empty(t, pending)
	_, err = repo.FindFailedReview(ctx, "vs")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	messages, err := repo.ListMessages(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, messages)

	group, err := repo.FindGroup(ctx, "hoopers")
	require.NoError(t, err)
	assert.Equal(t, "admin", group.AdminID)
	assert.ElementsMatch(t, []string{"active", "admin"}, []string(group.Members))
	admin, err := repo.FindUserByID(ctx, "admin")
	require.NoError(t, err)
	assert.Contains(t, []string(admin.Groups), "hoopers")

	_, err = repo.FindUserByID(ctx, "active")
	assert.NoError(t, err)

	objects.AssertExpectations(t)
	bans.AssertExpectations(t)
}

func TestDeletion_StorageFailureKeepsUser(t *testing.T) {
	ctx := context.Background()
	deps, repo, _ := newTestDeps()
	seedDeletionData(t, repo)
	objects := new(MockObjectStore)
	deps.Objects = objects
	objects.On("RemoveObject", "videos/stale/vs.mp4").Return(errors.New("minio unavailable"))
	svc := NewDeletionService(deps, deletionConfig())

	report, err := svc.Run(ctx, false)
	require.NoError(t, err)

	assert.Empty(t, report.Deleted)
	assert.Contains(t, report.Failed["stale"], "minio unavailable")
	_, err = repo.FindUserByID(ctx, "stale")
	assert.NoError(t, err)
}

func TestDeletion_DefaultAdminIsProtected(t *testing.T) {
	deps, repo, _ := newTestDeps()
	seedDeletionData(t, repo)
	svc := NewDeletionService(deps, deletionConfig())

	err := svc.DeleteUser(context.Background(), "admin")
	assert.ErrorIs(t, err, ErrProtectedAccount)
}
