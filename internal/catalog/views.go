package catalog

import (
	"slices"

	"smartreads/internal/models"
)

// Reference selectors, one per relationship of a book.
func authorRefs(b models.Book) []models.Ref    { return b.Authors }
func categoryRefs(b models.Book) []models.Ref  { return b.Categories }
func publisherRefs(b models.Book) []models.Ref { return b.Publishers }

func hasRef(refs []models.Ref, id int64) bool {
	return slices.ContainsFunc(refs, func(r models.Ref) bool { return r.ID == id })
}

// countBooks is the derived booksCount. Callers hold c.mu.
func (c *Catalog) countBooks(id int64, refs func(models.Book) []models.Ref) int {
	n := 0
	for _, b := range c.books {
		if hasRef(refs(b), id) {
			n++
		}
	}
	return n
}

func (c *Catalog) referencing(id int64, refs func(models.Book) []models.Ref) []int64 {
	var out []int64
	for _, b := range c.books {
		if hasRef(refs(b), id) {
			out = append(out, b.ID)
		}
	}
	return out
}

func (c *Catalog) findAuthor(id int64) (models.Author, bool) {
	idx := slices.IndexFunc(c.authors, func(a models.Author) bool { return a.ID == id })
	if idx < 0 {
		return models.Author{}, false
	}
	return c.authors[idx], true
}

func (c *Catalog) findCategory(id int64) (models.Category, bool) {
	idx := slices.IndexFunc(c.categories, func(x models.Category) bool { return x.ID == id })
	if idx < 0 {
		return models.Category{}, false
	}
	return c.categories[idx], true
}

func (c *Catalog) findPublisher(id int64) (models.Publisher, bool) {
	idx := slices.IndexFunc(c.publishers, func(x models.Publisher) bool { return x.ID == id })
	if idx < 0 {
		return models.Publisher{}, false
	}
	return c.publishers[idx], true
}

// bookView resolves each reference to the target's current name. A
// reference whose target is gone keeps its stored name and is marked
// dangling.
func (c *Catalog) bookView(b models.Book) models.BookView {
	v := models.BookView{Book: cloneBook(b)}
	for _, r := range b.Authors {
		a, ok := c.findAuthor(r.ID)
		v.AuthorRefs = append(v.AuthorRefs, resolve(r, a.Name, ok))
	}
	for _, r := range b.Categories {
		x, ok := c.findCategory(r.ID)
		v.CategoryRefs = append(v.CategoryRefs, resolve(r, x.Name, ok))
	}
	for _, r := range b.Publishers {
		x, ok := c.findPublisher(r.ID)
		v.PublisherRefs = append(v.PublisherRefs, resolve(r, x.Name, ok))
	}
	return v
}

func resolve(r models.Ref, current string, ok bool) models.ResolvedRef {
	if !ok {
		return models.ResolvedRef{ID: r.ID, Name: r.Name, Dangling: true}
	}
	return models.ResolvedRef{ID: r.ID, Name: current}
}
