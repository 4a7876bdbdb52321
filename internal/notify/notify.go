// Package notify carries user-visible notifications out of the core without
// binding it to any particular presentation surface.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notifier receives user-visible notifications. Collaborator failures are
// converted to notifications at the point of invocation and never propagate
// as panics or unhandled errors.
type Notifier interface {
	Notify(level Level, title, message string)
}

// LogNotifier writes notifications to the structured log. It is the default
// sink for headless entrypoints.
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, title, message string) {
	event := log.Info()
	switch level {
	case LevelWarn:
		event = log.Warn()
	case LevelError:
		event = log.Error()
	}
	event.Str("title", title).Msg(message)
}

// Notification is one recorded notification.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Notify(level Level, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, Notification{Level: level, Title: title, Message: message})
}

// Notifications returns a copy of everything recorded so far.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}
