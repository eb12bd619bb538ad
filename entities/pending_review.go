package entities

import "time"

// PendingReview is one video waiting for a peer reviewer in a country queue.
// Version is bumped on every claim change and guards the claim compare-and-swap.
type PendingReview struct {
	ID                         string     `json:"id" gorm:"type:varchar(64);primary_key"`
	Country                    string     `json:"country" gorm:"type:varchar(16);not null;index:idx_pending_reviews_country"`
	VideoID                    string     `json:"video_id" gorm:"type:varchar(64);not null;index:idx_pending_reviews_video"`
	UserID                     string     `json:"user_id" gorm:"type:varchar(128);not null;index:idx_pending_reviews_user"`
	URL                        string     `json:"url" gorm:"type:text"`
	AddedAt                    time.Time  `json:"added_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	BeingReviewedCurrently     bool       `json:"being_reviewed_currently" gorm:"not null;default:false"`
	ClaimedBy                  string     `json:"claimed_by,omitempty" gorm:"type:varchar(128)"`
	BeingReviewedCurrentlyDate *time.Time `json:"being_reviewed_currently_date" gorm:"type:timestamptz"`
	Version                    int64      `json:"version" gorm:"not null;default:0"`
}

func (PendingReview) TableName() string {
	return "pending_reviews"
}

// ClaimActive reports whether a reviewer holds the entry at now. A ttl of zero never expires claims.
func (p *PendingReview) ClaimActive(now time.Time, ttl time.Duration) bool {
	if !p.BeingReviewedCurrently {
		return false
	}
	if ttl <= 0 || p.BeingReviewedCurrentlyDate == nil {
		return true
	}
	return now.Sub(*p.BeingReviewedCurrentlyDate) < ttl
}
