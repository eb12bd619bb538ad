package entities

import (
	"clutch-review/constant"
	"time"
)

type Video struct {
	ID           string                   `json:"id" gorm:"type:varchar(64);primary_key"`
	UserID       string                   `json:"user_id" gorm:"type:varchar(128);not null;index:idx_videos_user_id"`
	URL          string                   `json:"url" gorm:"type:text"`
	ObjectKey    string                   `json:"object_key" gorm:"type:varchar(500)"`
	Status       constant.VideoStatus     `json:"status" gorm:"type:varchar(20);not null;default:'recording'"`
	Shots        int                      `json:"shots" gorm:"not null;default:0"`
	ErrorType    constant.UploadErrorType `json:"error_type,omitempty" gorm:"type:varchar(32)"`
	ErrorMessage string                   `json:"error_message,omitempty" gorm:"type:text"`
	Verified     bool                     `json:"verified" gorm:"not null;default:false"`
	Downloaded   bool                     `json:"downloaded" gorm:"not null;default:false"`
	CreatedAt    time.Time                `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	CompletedAt  *time.Time               `json:"completed_at" gorm:"type:timestamptz"`
}

func (Video) TableName() string {
	return "videos"
}
