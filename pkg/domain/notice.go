package domain

import "time"

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeValidationRejection NoticeKind = "validation_rejection"
	NoticePersistenceFailure  NoticeKind = "persistence_failure"
	NoticeLoadCorruption      NoticeKind = "load_corruption"
	NoticeDesyncWarning       NoticeKind = "dom_desync_warning"
	NoticeInfo                NoticeKind = "info"
)

// NoticeLevel is the severity used by the host to style a toast.
type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelSuccess NoticeLevel = "success"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice is a transient message surfaced to the user (toast-style).
// Failures are converted to notices at operation boundaries and never crash the editor.
type Notice struct {
	Kind    NoticeKind  `json:"kind"`
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Time    time.Time   `json:"time"`
}

// NewNotice creates a notice stamped with the current time.
func NewNotice(kind NoticeKind, level NoticeLevel, message string) Notice {
	return Notice{Kind: kind, Level: level, Message: message, Time: time.Now().UTC()}
}
