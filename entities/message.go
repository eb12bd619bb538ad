package entities

import (
	"clutch-review/constant"
	"time"
)

type Message struct {
	ID        string               `json:"id" gorm:"type:varchar(64);primary_key"`
	UserID    string               `json:"user_id" gorm:"type:varchar(128);not null;index:idx_messages_user_id"`
	Type      constant.MessageType `json:"type" gorm:"type:varchar(20);not null"`
	Title     string               `json:"title" gorm:"type:varchar(255)"`
	Body      string               `json:"body" gorm:"type:text"`
	Read      bool                 `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time            `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Message) TableName() string {
	return "messages"
}
