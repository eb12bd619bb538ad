package service

import (
	"clutch-review/dto"
	"clutch-review/entities"
	"clutch-review/repository"
	"context"
	"errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, notification dto.Notification) error {
	args := m.Called(notification)
	return args.Error(0)
}

type MockBanList struct {
	mock.Mock
}

func (m *MockBanList) Ban(ctx context.Context, userID, reason string) error {
	args := m.Called(userID, reason)
	return args.Error(0)
}

func (m *MockBanList) Unban(ctx context.Context, userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockBanList) IsBanned(ctx context.Context, userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) RemoveObject(ctx context.Context, objectKey string) error {
	args := m.Called(objectKey)
	return args.Error(0)
}

func (m *MockObjectStore) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(prefix)
	return args.Int(0), args.Error(1)
}

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestDeps() (Deps, *repository.MemoryRepository, *clock) {
	repo := repository.NewMemoryRepo()
	clk := &clock{now: baseTime}
	return Deps{Repo: repo, Now: clk.Now}, repo, clk
}

func seedUser(t *testing.T, repo repository.Repository, user *entities.User) *entities.User {
	t.Helper()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = baseTime
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// flakyQueueRepo fails the next *failures pending review inserts, inside transactions too.
type flakyQueueRepo struct {
	repository.Repository
	failures *int
}

func (r *flakyQueueRepo) Transaction(ctx context.Context, callback func(repo repository.Repository) error) error {
	return r.Repository.Transaction(ctx, func(tx repository.Repository) error {
		return callback(&flakyQueueRepo{Repository: tx, failures: r.failures})
	})
}

func (r *flakyQueueRepo) CreatePendingReview(ctx context.Context, entry *entities.PendingReview) error {
	if *r.failures > 0 {
		*r.failures--
		return errors.New("connection reset")
	}
	return r.Repository.CreatePendingReview(ctx, entry)
}
