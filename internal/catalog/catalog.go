// Package catalog holds the in-memory library catalog: books and the
// authors, categories and publishers they reference.
//
// Relationship counts and reference names are never stored. They are
// derived from the book list whenever a view is built, so they cannot
// drift from the data.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"smartreads/internal/ids"
	"smartreads/internal/models"
)

var (
	ErrNotFound = errors.New("catalog entry not found")
	ErrInvalid  = errors.New("invalid catalog entry")
)

type Catalog struct {
	mu         sync.RWMutex
	books      []models.Book
	authors    []models.Author
	categories []models.Category
	publishers []models.Publisher

	seq *ids.Sequence
	now func() time.Time

	subMu       sync.RWMutex
	subscribers []func(Event)
}

type Option func(*Catalog)

func WithSequence(seq *ids.Sequence) Option {
	return func(c *Catalog) { c.seq = seq }
}

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// New returns an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		books:      []models.Book{},
		authors:    []models.Author{},
		categories: []models.Category{},
		publishers: []models.Publisher{},
		seq:        ids.NewSequence(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewWithFixtures returns a catalog holding the demo data set.
func NewWithFixtures(opts ...Option) *Catalog {
	c := New(opts...)
	c.load(Fixtures())
	return c
}

// Subscribe registers fn for every successful mutation. fn runs on the
// mutating goroutine after the catalog lock is released.
func (c *Catalog) Subscribe(fn func(Event)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Catalog) publish(events ...Event) {
	c.subMu.RLock()
	subs := append([]func(Event){}, c.subscribers...)
	c.subMu.RUnlock()

	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}

func (c *Catalog) event(kind models.Kind, action Action, id int64, name string) Event {
	return Event{Kind: kind, Action: action, ID: id, Name: name, At: c.now().UTC()}
}

type Stats struct {
	Books      int
	Authors    int
	Categories int
	Publishers int
}

func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Books:      len(c.books),
		Authors:    len(c.authors),
		Categories: len(c.categories),
		Publishers: len(c.publishers),
	}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	return nil
}

func notFound(kind models.Kind, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}
