package entities

import "time"

type FailedReview struct {
	VideoID               string    `json:"video_id" gorm:"type:varchar(64);primary_key"`
	UserID                string    `json:"user_id" gorm:"type:varchar(128);not null;index:idx_failed_reviews_user"`
	UserName              string    `json:"user_name" gorm:"type:varchar(255)"`
	Country               string    `json:"country" gorm:"type:varchar(16);not null;index:idx_failed_reviews_country"`
	URL                   string    `json:"url" gorm:"type:text"`
	ReviewerID            string    `json:"reviewer_id" gorm:"type:varchar(128);not null"`
	Reason                string    `json:"reason" gorm:"type:varchar(200)"`
	ReportedShots         *int      `json:"reported_shots" gorm:"type:integer"`
	ReviewerSelectedShots *int      `json:"reviewer_selected_shots" gorm:"type:integer"`
	ReviewedAt            time.Time `json:"reviewed_at" gorm:"type:timestamptz;not null"`
}

func (FailedReview) TableName() string {
	return "failed_reviews"
}
