package constant

type VideoStatus string

const (
	VideoStatusRecording VideoStatus = "recording"
	VideoStatusCompleted VideoStatus = "completed"
	VideoStatusError     VideoStatus = "error"
)

// ShotsPerSession is the fixed number of attempts in one recorded session.
const ShotsPerSession = 10

// NoCountry is the queue key used for users without a country code.
const NoCountry = "no_country"

const MaxFailureReasonLength = 200

// UserVideoPrefix is the storage folder holding one user's uploads.
func UserVideoPrefix(userID string) string {
	return "videos/" + userID + "/"
}

type UploadErrorType string

const (
	UploadErrorUserInterruption UploadErrorType = "USER_INTERRUPTION"
	UploadErrorStorage          UploadErrorType = "STORAGE_ERROR"
	UploadErrorPermission       UploadErrorType = "PERMISSION_ERROR"
	UploadErrorNetwork          UploadErrorType = "NETWORK_ERROR"
	UploadErrorUpload           UploadErrorType = "UPLOAD_ERROR"
	UploadErrorCompression      UploadErrorType = "COMPRESSION_ERROR"
	UploadErrorUnknown          UploadErrorType = "UNKNOWN_ERROR"
)

type ViolationKind string

const (
	ViolationUpload ViolationKind = "upload"
	ViolationReview ViolationKind = "review"
)

type ModerationMode string

const (
	ModerationModeCheck   ModerationMode = "check"
	ModerationModeWarn    ModerationMode = "warn"
	ModerationModeSuspend ModerationMode = "suspend"
)

func (m ModerationMode) Valid() bool {
	switch m {
	case ModerationModeCheck, ModerationModeWarn, ModerationModeSuspend:
		return true
	}
	return false
}

type ModerationState string

const (
	ModerationStateClean     ModerationState = "clean"
	ModerationStateWarned    ModerationState = "warned"
	ModerationStateSuspended ModerationState = "suspended"
)

type MessageType string

const (
	MessageTypeWarning    MessageType = "warning"
	MessageTypeSuspension MessageType = "suspension"
	MessageTypeDisabled   MessageType = "disabled"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
