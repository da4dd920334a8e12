// Package notification delivers user-facing outcome messages (toasts) to the app shell.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a single user-facing message.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink is a fire-and-forget notification target.
type Sink interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// Feed is a Sink that logs every notification and buffers the most recent ones
// until the app shell drains them.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	logger   *slog.Logger
}

// NewFeed creates a Feed that keeps at most capacity undrained notifications.
func NewFeed(capacity int, logger *slog.Logger) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{
		capacity: capacity,
		logger:   logger,
	}
}

// Notify records a notification, dropping the oldest when the buffer is full.
func (f *Feed) Notify(ctx context.Context, message string, severity Severity) {
	n := Notification{
		ID:        uuid.Must(uuid.NewV7()),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}

	f.mu.Lock()
	if len(f.items) == f.capacity {
		f.items = f.items[1:]
	}
	f.items = append(f.items, n)
	f.mu.Unlock()

	if f.logger != nil {
		f.logger.InfoContext(ctx, "notification",
			slog.String("severity", string(severity)),
			slog.String("message", message),
		)
	}
}

// Drain returns and clears the buffered notifications, oldest first.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.items
	f.items = nil
	return items
}

// Recent returns a copy of the buffered notifications without clearing them.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]Notification, len(f.items))
	copy(items, f.items)
	return items
}

// Count returns how many buffered notifications have the given severity.
func (f *Feed) Count(severity Severity) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, n := range f.items {
		if n.Severity == severity {
			count++
		}
	}
	return count
}
