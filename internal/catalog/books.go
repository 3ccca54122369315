package catalog

import (
	"slices"

	"smartreads/internal/models"
)

type BookInput struct {
	ISBN        string
	Name        string
	SerialName  string
	Description string
	AuthorID    int64
	CategoryID  int64
	PublisherID int64
}

// BookFields are the scalar fields an edit may change. References are
// fixed once the book exists.
type BookFields struct {
	ISBN        string
	Name        string
	SerialName  string
	Description string
}

func (f BookFields) validate() error {
	for _, check := range []struct{ field, value string }{
		{"isbn", f.ISBN},
		{"name", f.Name},
		{"serial name", f.SerialName},
		{"description", f.Description},
	} {
		if err := required(check.field, check.value); err != nil {
			return err
		}
	}
	return nil
}

// AddBook stores a book referencing one existing author, category and
// publisher. Their derived book counts go up by one as a consequence.
func (c *Catalog) AddBook(in BookInput) (models.Book, error) {
	fields := BookFields{ISBN: in.ISBN, Name: in.Name, SerialName: in.SerialName, Description: in.Description}
	if err := fields.validate(); err != nil {
		return models.Book{}, err
	}

	c.mu.Lock()
	author, ok := c.findAuthor(in.AuthorID)
	if !ok {
		c.mu.Unlock()
		return models.Book{}, notFound(models.KindAuthor, in.AuthorID)
	}
	category, ok := c.findCategory(in.CategoryID)
	if !ok {
		c.mu.Unlock()
		return models.Book{}, notFound(models.KindCategory, in.CategoryID)
	}
	publisher, ok := c.findPublisher(in.PublisherID)
	if !ok {
		c.mu.Unlock()
		return models.Book{}, notFound(models.KindPublisher, in.PublisherID)
	}

	book := models.Book{
		ID:          c.seq.Next(),
		ISBN:        in.ISBN,
		Name:        in.Name,
		SerialName:  in.SerialName,
		Description: in.Description,
		Authors:     []models.Ref{{ID: author.ID, Name: author.Name}},
		Categories:  []models.Ref{{ID: category.ID, Name: category.Name}},
		Publishers:  []models.Ref{{ID: publisher.ID, Name: publisher.Name}},
	}
	c.books = append(c.books, book)
	c.mu.Unlock()

	c.publish(c.event(models.KindBook, ActionCreated, book.ID, book.Name))
	return cloneBook(book), nil
}

func (c *Catalog) UpdateBook(id int64, fields BookFields) (models.Book, error) {
	if err := fields.validate(); err != nil {
		return models.Book{}, err
	}

	c.mu.Lock()
	idx := c.bookIndex(id)
	if idx < 0 {
		c.mu.Unlock()
		return models.Book{}, notFound(models.KindBook, id)
	}
	b := &c.books[idx]
	b.ISBN, b.Name, b.SerialName, b.Description = fields.ISBN, fields.Name, fields.SerialName, fields.Description
	book := cloneBook(*b)
	c.mu.Unlock()

	c.publish(c.event(models.KindBook, ActionUpdated, book.ID, book.Name))
	return book, nil
}

// DeleteBook removes the book, which lowers the derived counts of every
// entity it referenced.
func (c *Catalog) DeleteBook(id int64) (models.Book, error) {
	c.mu.Lock()
	idx := c.bookIndex(id)
	if idx < 0 {
		c.mu.Unlock()
		return models.Book{}, notFound(models.KindBook, id)
	}
	book := c.books[idx]
	c.books = slices.Delete(c.books, idx, idx+1)
	c.mu.Unlock()

	c.publish(c.event(models.KindBook, ActionDeleted, book.ID, book.Name))
	return book, nil
}

func (c *Catalog) Book(id int64) (models.BookView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.bookIndex(id)
	if idx < 0 {
		return models.BookView{}, notFound(models.KindBook, id)
	}
	return c.bookView(c.books[idx]), nil
}

// Books lists every book in insertion order with references resolved.
func (c *Catalog) Books() []models.BookView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.BookView, 0, len(c.books))
	for _, b := range c.books {
		out = append(out, c.bookView(b))
	}
	return out
}

func (c *Catalog) bookIndex(id int64) int {
	return slices.IndexFunc(c.books, func(b models.Book) bool { return b.ID == id })
}

func cloneBook(b models.Book) models.Book {
	b.Authors = slices.Clone(b.Authors)
	b.Categories = slices.Clone(b.Categories)
	b.Publishers = slices.Clone(b.Publishers)
	return b
}
