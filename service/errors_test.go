package service

import (
	"clutch-review/constant"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestClassifyUploadError(t *testing.T) {
	tests := []struct {
		message string
		want    constant.UploadErrorType
	}{
		{"", constant.UploadErrorUnknown},
		{"   ", constant.UploadErrorUnknown},
		{"Upload cancelled by user", constant.UploadErrorUserInterruption},
		{"App closed during recording", constant.UploadErrorUserInterruption},
		{"Video compression failed", constant.UploadErrorCompression},
		{"storage/unauthorized: User does not have permission", constant.UploadErrorPermission},
		{"storage/quota-exceeded", constant.UploadErrorStorage},
		{"Network request failed", constant.UploadErrorNetwork},
		{"request timed out", constant.UploadErrorNetwork},
		{"upload failed with status 500", constant.UploadErrorUpload},
		{"something odd happened", constant.UploadErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUploadError(tt.message))
		})
	}
}
