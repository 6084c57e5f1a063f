package assistant

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notifier receives transient notices raised by a session, such as spelling
// corrections and location outcomes. Implementations must be safe for
// concurrent use: location notices arrive from a background goroutine.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(message string, severity Severity)

// Notify calls f.
func (f NotifierFunc) Notify(message string, severity Severity) {
	f(message, severity)
}

type discardNotifier struct{}

func (discardNotifier) Notify(string, Severity) {}

// Notification is a recorded notice.
type Notification struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

// NotificationLog is a Notifier that keeps every notice in arrival order.
type NotificationLog struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries []Notification
}

// NewNotificationLog returns an empty log timestamped by clock. A nil clock
// uses real time.
func NewNotificationLog(clock clockwork.Clock) *NotificationLog {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &NotificationLog{clock: clock}
}

// Notify appends a notice.
func (l *NotificationLog) Notify(message string, severity Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Notification{Message: message, Severity: severity, At: l.clock.Now().UTC()})
}

// Entries returns a copy of all notices.
func (l *NotificationLog) Entries() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notification(nil), l.entries...)
}

// Count returns how many notices of the given severity were recorded.
func (l *NotificationLog) Count(severity Severity) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Severity == severity {
			n++
		}
	}
	return n
}
