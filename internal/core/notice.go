package core

import (
	"time"

	"github.com/google/uuid"
)

// NoticeKind classifies a transient user-visible message.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient toast-style message.
type Notice struct {
	ID      string
	Message string
	Kind    NoticeKind
	At      time.Time
}

// NewNotice creates a notice stamped with a fresh id.
func NewNotice(kind NoticeKind, message string) Notice {
	return Notice{
		ID:      uuid.NewString(),
		Message: message,
		Kind:    kind,
		At:      time.Now(),
	}
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }
