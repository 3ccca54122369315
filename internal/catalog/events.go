package catalog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"smartreads/internal/models"
)

type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionRestored Action = "restored"
)

// Event describes one catalog mutation. Orphaned is set when deleting an
// author, category or publisher left books pointing at it.
type Event struct {
	Kind     models.Kind `json:"kind"`
	Action   Action      `json:"action"`
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Orphaned []int64     `json:"orphaned,omitempty"`
	At       time.Time   `json:"at"`
}

func (e Event) Title() string {
	switch e.Action {
	case ActionCreated:
		return "New " + strings.ToLower(kindLabel(e.Kind)) + " added"
	case ActionUpdated:
		return kindLabel(e.Kind) + " updated"
	case ActionDeleted:
		return kindLabel(e.Kind) + " removed"
	}
	return "Catalog restored"
}

func (e Event) Description() string {
	switch e.Action {
	case ActionCreated:
		return e.Name + " was added to the library"
	case ActionUpdated:
		return e.Name + "'s information was updated"
	case ActionDeleted:
		if len(e.Orphaned) > 0 {
			return fmt.Sprintf("%s was removed, %d book(s) still reference it", e.Name, len(e.Orphaned))
		}
		return e.Name + " was removed"
	}
	return e.Name
}

// Icon is the font-awesome class used by the activity feed.
func (e Event) Icon() string {
	switch e.Action {
	case ActionCreated:
		return "fas fa-plus"
	case ActionUpdated:
		return "fas fa-edit"
	case ActionDeleted:
		return "fas fa-trash"
	}
	return "fas fa-book"
}

func kindLabel(k models.Kind) string {
	switch k {
	case models.KindBook:
		return "Book"
	case models.KindAuthor:
		return "Author"
	case models.KindCategory:
		return "Category"
	case models.KindPublisher:
		return "Publisher"
	}
	return string(k)
}

// ActivityLog keeps the most recent events, newest first.
type ActivityLog struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

func NewActivityLog(size int) *ActivityLog {
	if size <= 0 {
		size = 10
	}
	return &ActivityLog{events: make([]Event, size)}
}

func (l *ActivityLog) Record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[l.next] = e
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
}

func (l *ActivityLog) Recent() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	if l.full {
		n = len(l.events)
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.events)) % len(l.events)
		out = append(out, l.events[idx])
	}
	return out
}
