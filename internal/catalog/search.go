package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"smartreads/internal/models"
)

// fold normalises s for case-insensitive comparison. A Caser keeps state,
// so one is built per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

type matcher struct {
	needle string
}

func newMatcher(query string) matcher {
	return matcher{needle: fold(query)}
}

func (m matcher) match(fields ...string) bool {
	if m.needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(fold(f), m.needle) {
			return true
		}
	}
	return false
}

// SearchBooks matches the query against name, ISBN and author names. An
// empty query returns every book.
func (c *Catalog) SearchBooks(query string) []models.BookView {
	m := newMatcher(query)
	var out []models.BookView
	for _, b := range c.Books() {
		fields := []string{b.Name, b.ISBN}
		for _, a := range b.AuthorRefs {
			fields = append(fields, a.Name)
		}
		if m.match(fields...) {
			out = append(out, b)
		}
	}
	return nonNil(out)
}

// SearchAuthors matches the query against name and description.
func (c *Catalog) SearchAuthors(query string) []models.AuthorView {
	m := newMatcher(query)
	var out []models.AuthorView
	for _, a := range c.Authors() {
		if m.match(a.Name, a.Description) {
			out = append(out, a)
		}
	}
	return nonNil(out)
}

func (c *Catalog) SearchCategories(query string) []models.CategoryView {
	m := newMatcher(query)
	var out []models.CategoryView
	for _, x := range c.Categories() {
		if m.match(x.Name) {
			out = append(out, x)
		}
	}
	return nonNil(out)
}

func (c *Catalog) SearchPublishers(query string) []models.PublisherView {
	m := newMatcher(query)
	var out []models.PublisherView
	for _, x := range c.Publishers() {
		if m.match(x.Name) {
			out = append(out, x)
		}
	}
	return nonNil(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
