package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"smartreads/internal/models"
)

const SnapshotVersion = 1

const snapshotSchemaURL = "https://smartreads.local/schema/snapshot.schema.json"

//go:embed schema/snapshot.schema.json
var snapshotSchemaJSON []byte

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the export format of the whole catalog.
type Snapshot struct {
	Version    int                `json:"version"`
	TakenAt    time.Time          `json:"takenAt"`
	Books      []models.Book      `json:"books"`
	Authors    []models.Author    `json:"authors"`
	Categories []models.Category  `json:"categories"`
	Publishers []models.Publisher `json:"publishers"`
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func snapshotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(snapshotSchemaURL, bytes.NewReader(snapshotSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load snapshot schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(snapshotSchemaURL)
	})
	return schema, schemaErr
}

func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Version:    SnapshotVersion,
		TakenAt:    c.now().UTC(),
		Books:      make([]models.Book, 0, len(c.books)),
		Authors:    append([]models.Author{}, c.authors...),
		Categories: append([]models.Category{}, c.categories...),
		Publishers: append([]models.Publisher{}, c.publishers...),
	}
	for _, b := range c.books {
		s.Books = append(s.Books, cloneBook(b))
	}
	return s
}

func (c *Catalog) MarshalSnapshot() ([]byte, error) {
	return json.MarshalIndent(c.Snapshot(), "", "  ")
}

// DecodeSnapshot checks data against the snapshot schema and for duplicate
// ids before decoding it.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	sch, err := snapshotSchema()
	if err != nil {
		return Snapshot{}, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := sch.Validate(doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := s.checkUnique(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func (s Snapshot) checkUnique() error {
	check := func(kind models.Kind, ids []int64) error {
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: duplicate %s id %d", ErrInvalidSnapshot, kind, id)
			}
			seen[id] = struct{}{}
		}
		return nil
	}

	var books, authors, categories, publishers []int64
	for _, b := range s.Books {
		books = append(books, b.ID)
	}
	for _, a := range s.Authors {
		authors = append(authors, a.ID)
	}
	for _, x := range s.Categories {
		categories = append(categories, x.ID)
	}
	for _, x := range s.Publishers {
		publishers = append(publishers, x.ID)
	}
	return errors.Join(
		check(models.KindBook, books),
		check(models.KindAuthor, authors),
		check(models.KindCategory, categories),
		check(models.KindPublisher, publishers),
	)
}

// Restore validates data and replaces the whole catalog with it.
func (c *Catalog) Restore(data []byte) error {
	s, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	c.load(s)
	c.publish(c.event("", ActionRestored, 0, fmt.Sprintf("%d books", len(s.Books))))
	return nil
}

func (c *Catalog) load(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.books = make([]models.Book, 0, len(s.Books))
	for _, b := range s.Books {
		b = cloneBook(b)
		if b.Authors == nil {
			b.Authors = []models.Ref{}
		}
		if b.Categories == nil {
			b.Categories = []models.Ref{}
		}
		if b.Publishers == nil {
			b.Publishers = []models.Ref{}
		}
		c.books = append(c.books, b)
		c.seq.Observe(b.ID)
	}
	c.authors = append([]models.Author{}, s.Authors...)
	c.categories = append([]models.Category{}, s.Categories...)
	c.publishers = append([]models.Publisher{}, s.Publishers...)
	for _, a := range c.authors {
		c.seq.Observe(a.ID)
	}
	for _, x := range c.categories {
		c.seq.Observe(x.ID)
	}
	for _, x := range c.publishers {
		c.seq.Observe(x.ID)
	}
}
