package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingReview_ClaimActive(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	claimedAt := now.Add(-10 * time.Minute)

	tests := []struct {
		name  string
		entry PendingReview
		ttl   time.Duration
		want  bool
	}{
		{"unclaimed", PendingReview{}, time.Hour, false},
		{"claimed without expiry", PendingReview{BeingReviewedCurrently: true, BeingReviewedCurrentlyDate: &claimedAt}, 0, true},
		{"claimed within ttl", PendingReview{BeingReviewedCurrently: true, BeingReviewedCurrentlyDate: &claimedAt}, 15 * time.Minute, true},
		{"claim expired", PendingReview{BeingReviewedCurrently: true, BeingReviewedCurrentlyDate: &claimedAt}, 5 * time.Minute, false},
		{"claimed without date", PendingReview{BeingReviewedCurrently: true}, 5 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.ClaimActive(now, tt.ttl))
		})
	}
}

func TestUser_FullNameAndViolations(t *testing.T) {
	assert.Equal(t, "Jo Park", (&User{FirstName: "Jo", LastName: "Park"}).FullName())
	assert.Equal(t, "jo@example.com", (&User{Email: "jo@example.com"}).FullName())
	assert.Equal(t, 3, (&User{IncorrectReviews: 1, IncorrectUploads: 2}).TotalViolations())
}

func TestGroup_Members(t *testing.T) {
	g := &Group{Members: []string{"a", "b", "a"}}
	assert.True(t, g.HasMember("a"))
	g.RemoveMember("a")
	assert.False(t, g.HasMember("a"))
	assert.Equal(t, []string{"b"}, []string(g.Members))
}
