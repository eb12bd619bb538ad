package repository

import (
	"clutch-review/entities"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepositoryContract runs the behavior both repositories must agree on. Ids are random
// so it can run against a shared database.
func testRepositoryContract(t *testing.T, repo Repository) {
	ctx := context.Background()
	suffix := uuid.New().String()[:8]
	id := func(name string) string { return name + "-" + suffix }

	t.Run("claim compare and swap", func(t *testing.T) {
		entry := &entities.PendingReview{
			ID:      id("entry"),
			Country: "US",
			VideoID: id("video"),
			UserID:  id("owner"),
			AddedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, repo.CreatePendingReview(ctx, entry))
		t.Cleanup(func() { _, _ = repo.DeletePendingReviewsByUser(ctx, entry.UserID) })

		first, err := repo.FindPendingReview(ctx, "US", entry.VideoID, entry.UserID)
		require.NoError(t, err)
		second, err := repo.FindPendingReview(ctx, "US", entry.VideoID, entry.UserID)
		require.NoError(t, err)

		now := time.Now().UTC().Truncate(time.Second)
		first.BeingReviewedCurrently, first.ClaimedBy, first.BeingReviewedCurrentlyDate = true, "a", &now
		second.BeingReviewedCurrently, second.ClaimedBy, second.BeingReviewedCurrentlyDate = true, "b", &now

		ok, err := repo.CompareAndSwapClaim(ctx, first)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(1), first.Version)

		ok, err = repo.CompareAndSwapClaim(ctx, second)
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := repo.FindPendingReview(ctx, "US", entry.VideoID, entry.UserID)
		require.NoError(t, err)
		assert.Equal(t, "a", stored.ClaimedBy)
		assert.True(t, stored.BeingReviewedCurrently)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("groups by member or admin", func(t *testing.T) {
		user := id("member")
		groups := []*entities.Group{
			{Name: id("a-member"), AdminID: id("x"), Members: pq.StringArray{user, id("y")}},
			{Name: id("b-admin"), AdminID: user, Members: pq.StringArray{id("y")}},
			{Name: id("c-other"), AdminID: id("z"), Members: pq.StringArray{id("y")}},
		}
		for _, g := range groups {
			require.NoError(t, repo.SaveGroup(ctx, g))
		}

		found, err := repo.ListGroupsByMember(ctx, user)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, groups[0].Name, found[0].Name)
		assert.Equal(t, groups[1].Name, found[1].Name)
		assert.Equal(t, []string{user, id("y")}, []string(found[0].Members))
	})

	t.Run("failed review upsert", func(t *testing.T) {
		review := &entities.FailedReview{
			VideoID:    id("failed"),
			UserID:     id("owner"),
			Country:    "US",
			ReviewerID: id("reviewer"),
			Reason:     "first",
			ReviewedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, repo.SaveFailedReview(ctx, review))
		t.Cleanup(func() { _, _ = repo.DeleteFailedReviewsByUser(ctx, review.UserID) })

		review.Reason = "second"
		require.NoError(t, repo.SaveFailedReview(ctx, review))

		stored, err := repo.FindFailedReview(ctx, review.VideoID)
		require.NoError(t, err)
		assert.Equal(t, "second", stored.Reason)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		boom := errors.New("boom")
		userID := id("rolled-back")
		err := repo.Transaction(ctx, func(tx Repository) error {
			require.NoError(t, tx.CreateUser(ctx, &entities.User{ID: userID, CreatedAt: time.Now().UTC()}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = repo.FindUserByID(ctx, userID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
