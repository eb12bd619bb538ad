package service

import (
	"clutch-review/constant"
	"errors"
	"strings"
)

var (
	ErrAlreadyClaimed      = errors.New("review entry is already being reviewed")
	ErrOwnVideo            = errors.New("reviewers cannot review their own video")
	ErrInvalidShots        = errors.New("shots must be between 0 and 10")
	ErrVideoCompleted      = errors.New("video is already completed")
	ErrInvalidMode         = errors.New("moderation mode must be check, warn or suspend")
	ErrDefaultAdminMissing = errors.New("default admin account does not exist")
	ErrProtectedAccount    = errors.New("the default admin account cannot be deleted")
)

var uploadErrorRules = []struct {
	errType  constant.UploadErrorType
	patterns []string
}{
	{constant.UploadErrorUserInterruption, []string{"interrupt", "cancel", "aborted", "app closed", "backgrounded"}},
	{constant.UploadErrorCompression, []string{"compress", "transcod", "encod"}},
	{constant.UploadErrorPermission, []string{"permission", "unauthorized", "unauthenticated", "denied", "forbidden"}},
	{constant.UploadErrorStorage, []string{"storage", "quota", "no space", "disk full", "bucket"}},
	{constant.UploadErrorNetwork, []string{"network", "timeout", "timed out", "connection", "offline", "unreachable"}},
	{constant.UploadErrorUpload, []string{"upload"}},
}

// ClassifyUploadError maps a raw client error message onto an upload error type by
// case-insensitive substring search. Rules are checked in order.
func ClassifyUploadError(message string) constant.UploadErrorType {
	msg := strings.ToLower(message)
	if strings.TrimSpace(msg) == "" {
		return constant.UploadErrorUnknown
	}
	for _, rule := range uploadErrorRules {
		for _, p := range rule.patterns {
			if strings.Contains(msg, p) {
				return rule.errType
			}
		}
	}
	return constant.UploadErrorUnknown
}
