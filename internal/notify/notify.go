package notify

import (
	"context"
	"sync"
	"time"
)

// Variant distinguishes regular toasts from error toasts.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a short user-facing message with a title and description.
type Notification struct {
	Variant     Variant   `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// Success builds a default toast.
func Success(title, description string) Notification {
	return Notification{Variant: VariantDefault, Title: title, Description: description}
}

// Failure builds a destructive toast.
func Failure(title, description string) Notification {
	return Notification{Variant: VariantDestructive, Title: title, Description: description}
}

// Notifier receives notifications. Implementations must not block for long.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Notification) {}

// Fanout forwards each notification to every notifier in order.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, target := range f {
		target.Notify(ctx, n)
	}
}

// Feed keeps the most recent notifications in memory.
type Feed struct {
	mu    sync.RWMutex
	size  int
	items []Notification
	now   func() time.Time
}

// NewFeed creates a feed retaining at most size notifications.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size, now: time.Now}
}

// Notify records n, dropping the oldest entry when full.
func (f *Feed) Notify(_ context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = f.now().UTC()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.size {
		f.items = f.items[len(f.items)-f.size:]
	}
}

// Recent returns up to limit notifications, newest first.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if limit <= 0 || limit > len(f.items) {
		limit = len(f.items)
	}
	out := make([]Notification, 0, limit)
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.items[i])
	}
	return out
}

// Last returns the most recent notification.
func (f *Feed) Last() (Notification, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.items) == 0 {
		return Notification{}, false
	}
	return f.items[len(f.items)-1], true
}
