// Package notify is the presentation surface for advisory, user-facing messages.
// Notifications never affect control flow: implementations must not block and
// callers ignore whatever happens inside them.
package notify

import (
	"context"
	"log"
	"net/http"
	"sync"
)

// Kind is the notification severity.
type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

// Category is the presentation bucket of a failed call.
type Category string

const (
	CategoryAuth     Category = "authentication required"
	CategoryDenied   Category = "access denied"
	CategoryNotFound Category = "not found"
	CategoryServer   Category = "server error"
	CategoryGeneric  Category = "error"
)

// Categorize buckets an HTTP status for presentation.
func Categorize(status int) Category {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryAuth
	case status == http.StatusForbidden:
		return CategoryDenied
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status >= http.StatusInternalServerError:
		return CategoryServer
	default:
		return CategoryGeneric
	}
}

// Title is the headline shown for a category.
func (c Category) Title() string {
	switch c {
	case CategoryAuth:
		return "Authentication required"
	case CategoryDenied:
		return "Access denied"
	case CategoryNotFound:
		return "Not found"
	case CategoryServer:
		return "Server error"
	default:
		return ""
	}
}

// Notification is one advisory message.
type Notification struct {
	Kind     Kind
	Category Category
	Title    string
	Message  string
}

// Notifier delivers notifications to whatever surface exists.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Nop drops every notification. Use it where no presentation surface exists.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

// Logger writes notifications as log lines.
type Logger struct {
	Log *log.Logger
}

func (l Logger) Notify(_ context.Context, n Notification) {
	logger := l.Log
	if logger == nil {
		logger = log.Default()
	}
	if n.Title != "" {
		logger.Printf("[%s] %s: %s", n.Kind, n.Title, n.Message)
		return
	}
	logger.Printf("[%s] %s", n.Kind, n.Message)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.seen = append(r.seen, n)
	r.mu.Unlock()
}

// All returns the recorded notifications in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.seen...)
}

// Safe calls n.Notify and swallows a panic from it, reporting the panic to
// logger (log.Default when nil). A nil notifier is a no-op.
func Safe(ctx context.Context, logger *log.Logger, n Notifier, note Notification) {
	if n == nil {
		return
	}
	if logger == nil {
		logger = log.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("notify: notifier panicked: %v", r)
		}
	}()
	n.Notify(ctx, note)
}
