package dto

import (
	"clutch-review/constant"
	"time"
)

// UploadEvent is published by the mobile upload pipeline when a recording finishes uploading.
type UploadEvent struct {
	UserID    string               `json:"userId"`
	VideoID   string               `json:"videoId"`
	Status    constant.VideoStatus `json:"status"`
	Shots     int                  `json:"shots"`
	URL       string               `json:"url"`
	ObjectKey string               `json:"objectKey"`
	Error     string               `json:"error,omitempty"`
}

type Notification struct {
	Type       constant.MessageType `json:"type"`
	UserID     string               `json:"userId"`
	Email      string               `json:"email"`
	Name       string               `json:"name"`
	Reason     string               `json:"reason,omitempty"`
	Violations int                  `json:"violations"`
	CreatedAt  time.Time            `json:"createdAt"`
}

type CompleteVideoRequest struct {
	Shots     *int   `json:"shots" binding:"required,min=0,max=10"`
	URL       string `json:"url" binding:"required"`
	ObjectKey string `json:"objectKey"`
}

type FailVideoRequest struct {
	Error string `json:"error" binding:"required"`
}

type ViolationRequest struct {
	Kind constant.ViolationKind `json:"kind" binding:"required,violation_kind"`
}

type ClaimRequest struct {
	UserID     string `json:"userId" binding:"required"`
	ReviewerID string `json:"reviewerId" binding:"required"`
}

type ClaimNextRequest struct {
	ReviewerID string `json:"reviewerId" binding:"required"`
}

type ReleaseRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type ReviewSuccessRequest struct {
	UserID     string `json:"userId" binding:"required"`
	ReviewerID string `json:"reviewerId" binding:"required"`
}

type ReviewFailureRequest struct {
	UserID                string `json:"userId" binding:"required"`
	ReviewerID            string `json:"reviewerId" binding:"required"`
	Reason                string `json:"reason" binding:"required"`
	ReportedShots         *int   `json:"reportedShots" binding:"omitempty,min=0,max=10"`
	ReviewerSelectedShots *int   `json:"reviewerSelectedShots" binding:"omitempty,min=0,max=10"`
}

// ReviewFailure carries everything the resolver needs to record a failed review.
type ReviewFailure struct {
	RecordingUserID       string
	VideoID               string
	Country               string
	ReviewerID            string
	Reason                string
	ReportedShots         *int
	ReviewerSelectedShots *int
}

type ErrorResponse struct {
	Error string `json:"error"`
}
