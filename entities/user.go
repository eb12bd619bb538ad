package entities

import (
	"github.com/lib/pq"
	"strings"
	"time"
)

type User struct {
	ID               string         `json:"id" gorm:"type:varchar(128);primary_key"`
	FirstName        string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName         string         `json:"last_name" gorm:"type:varchar(100)"`
	Email            string         `json:"email" gorm:"type:varchar(255);index:idx_users_email"`
	Country          string         `json:"country" gorm:"type:varchar(16)"`
	Groups           pq.StringArray `json:"groups" gorm:"type:text[]"`
	IncorrectReviews int            `json:"incorrect_reviews" gorm:"not null;default:0"`
	IncorrectUploads int            `json:"incorrect_uploads" gorm:"not null;default:0"`
	LastWarningDate  *time.Time     `json:"last_warning_date" gorm:"type:timestamptz"`
	Suspended        bool           `json:"suspended" gorm:"not null;default:false;index:idx_users_suspended"`
	SuspendedAt      *time.Time     `json:"suspended_at" gorm:"type:timestamptz"`
	SuspensionReason string         `json:"suspension_reason" gorm:"type:text"`
	Disabled         bool           `json:"disabled" gorm:"not null;default:false"`
	HasReviewed      bool           `json:"has_reviewed" gorm:"not null;default:false"`
	Stats            UserStats      `json:"stats" gorm:"serializer:json;type:jsonb"`
	CreatedAt        time.Time      `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins the name fields, falling back to the email when both are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) TotalViolations() int {
	return u.IncorrectReviews + u.IncorrectUploads
}

type ShotStats struct {
	Percentage  int       `json:"percentage"`
	MadeShots   float64   `json:"made_shots"`
	TotalShots  int       `json:"total_shots"`
	LastUpdated time.Time `json:"last_updated"`
}

// UserStats is derived from the user's videos and rewritten wholesale on every completion.
type UserStats struct {
	Last100Shots ShotStats `json:"last_100_shots"`
	AllTime      ShotStats `json:"all_time"`
	SessionCount int       `json:"session_count"`
}
