package catalog

import (
	"slices"

	"smartreads/internal/models"
)

// DeleteResult reports books left with a dangling reference after an
// author, category or publisher was removed. Deletes never cascade.
type DeleteResult struct {
	Name     string
	Orphaned []int64
}

func (c *Catalog) AddAuthor(name, description string) (models.Author, error) {
	if err := required("name", name); err != nil {
		return models.Author{}, err
	}
	if err := required("description", description); err != nil {
		return models.Author{}, err
	}

	c.mu.Lock()
	author := models.Author{ID: c.seq.Next(), Name: name, Description: description}
	c.authors = append(c.authors, author)
	c.mu.Unlock()

	c.publish(c.event(models.KindAuthor, ActionCreated, author.ID, author.Name))
	return author, nil
}

func (c *Catalog) UpdateAuthor(id int64, name, description string) (models.Author, error) {
	if err := required("name", name); err != nil {
		return models.Author{}, err
	}
	if err := required("description", description); err != nil {
		return models.Author{}, err
	}

	c.mu.Lock()
	idx := slices.IndexFunc(c.authors, func(a models.Author) bool { return a.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return models.Author{}, notFound(models.KindAuthor, id)
	}
	c.authors[idx].Name, c.authors[idx].Description = name, description
	author := c.authors[idx]
	c.mu.Unlock()

	c.publish(c.event(models.KindAuthor, ActionUpdated, author.ID, author.Name))
	return author, nil
}

func (c *Catalog) DeleteAuthor(id int64) (DeleteResult, error) {
	c.mu.Lock()
	idx := slices.IndexFunc(c.authors, func(a models.Author) bool { return a.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return DeleteResult{}, notFound(models.KindAuthor, id)
	}
	res := DeleteResult{Name: c.authors[idx].Name, Orphaned: c.referencing(id, authorRefs)}
	c.authors = slices.Delete(c.authors, idx, idx+1)
	c.mu.Unlock()

	c.publishDelete(models.KindAuthor, id, res)
	return res, nil
}

func (c *Catalog) Author(id int64) (models.AuthorView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.findAuthor(id)
	if !ok {
		return models.AuthorView{}, notFound(models.KindAuthor, id)
	}
	return models.AuthorView{Author: a, BooksCount: c.countBooks(id, authorRefs)}, nil
}

func (c *Catalog) Authors() []models.AuthorView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.AuthorView, 0, len(c.authors))
	for _, a := range c.authors {
		out = append(out, models.AuthorView{Author: a, BooksCount: c.countBooks(a.ID, authorRefs)})
	}
	return out
}

func (c *Catalog) AddCategory(name string) (models.Category, error) {
	if err := required("name", name); err != nil {
		return models.Category{}, err
	}

	c.mu.Lock()
	category := models.Category{ID: c.seq.Next(), Name: name}
	c.categories = append(c.categories, category)
	c.mu.Unlock()

	c.publish(c.event(models.KindCategory, ActionCreated, category.ID, category.Name))
	return category, nil
}

func (c *Catalog) UpdateCategory(id int64, name string) (models.Category, error) {
	if err := required("name", name); err != nil {
		return models.Category{}, err
	}

	c.mu.Lock()
	idx := slices.IndexFunc(c.categories, func(x models.Category) bool { return x.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return models.Category{}, notFound(models.KindCategory, id)
	}
	c.categories[idx].Name = name
	category := c.categories[idx]
	c.mu.Unlock()

	c.publish(c.event(models.KindCategory, ActionUpdated, category.ID, category.Name))
	return category, nil
}

func (c *Catalog) DeleteCategory(id int64) (DeleteResult, error) {
	c.mu.Lock()
	idx := slices.IndexFunc(c.categories, func(x models.Category) bool { return x.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return DeleteResult{}, notFound(models.KindCategory, id)
	}
	res := DeleteResult{Name: c.categories[idx].Name, Orphaned: c.referencing(id, categoryRefs)}
	c.categories = slices.Delete(c.categories, idx, idx+1)
	c.mu.Unlock()

	c.publishDelete(models.KindCategory, id, res)
	return res, nil
}

func (c *Catalog) Category(id int64) (models.CategoryView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	x, ok := c.findCategory(id)
	if !ok {
		return models.CategoryView{}, notFound(models.KindCategory, id)
	}
	return models.CategoryView{Category: x, BooksCount: c.countBooks(id, categoryRefs)}, nil
}

func (c *Catalog) Categories() []models.CategoryView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CategoryView, 0, len(c.categories))
	for _, x := range c.categories {
		out = append(out, models.CategoryView{Category: x, BooksCount: c.countBooks(x.ID, categoryRefs)})
	}
	return out
}

func (c *Catalog) AddPublisher(name string) (models.Publisher, error) {
	if err := required("name", name); err != nil {
		return models.Publisher{}, err
	}

	c.mu.Lock()
	publisher := models.Publisher{ID: c.seq.Next(), Name: name}
	c.publishers = append(c.publishers, publisher)
	c.mu.Unlock()

	c.publish(c.event(models.KindPublisher, ActionCreated, publisher.ID, publisher.Name))
	return publisher, nil
}

func (c *Catalog) UpdatePublisher(id int64, name string) (models.Publisher, error) {
	if err := required("name", name); err != nil {
		return models.Publisher{}, err
	}

	c.mu.Lock()
	idx := slices.IndexFunc(c.publishers, func(x models.Publisher) bool { return x.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return models.Publisher{}, notFound(models.KindPublisher, id)
	}
	c.publishers[idx].Name = name
	publisher := c.publishers[idx]
	c.mu.Unlock()

	c.publish(c.event(models.KindPublisher, ActionUpdated, publisher.ID, publisher.Name))
	return publisher, nil
}

func (c *Catalog) DeletePublisher(id int64) (DeleteResult, error) {
	c.mu.Lock()
	idx := slices.IndexFunc(c.publishers, func(x models.Publisher) bool { return x.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return DeleteResult{}, notFound(models.KindPublisher, id)
	}
	res := DeleteResult{Name: c.publishers[idx].Name, Orphaned: c.referencing(id, publisherRefs)}
	c.publishers = slices.Delete(c.publishers, idx, idx+1)
	c.mu.Unlock()

	c.publishDelete(models.KindPublisher, id, res)
	return res, nil
}

func (c *Catalog) Publisher(id int64) (models.PublisherView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	x, ok := c.findPublisher(id)
	if !ok {
		return models.PublisherView{}, notFound(models.KindPublisher, id)
	}
	return models.PublisherView{Publisher: x, BooksCount: c.countBooks(id, publisherRefs)}, nil
}

func (c *Catalog) Publishers() []models.PublisherView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.PublisherView, 0, len(c.publishers))
	for _, x := range c.publishers {
		out = append(out, models.PublisherView{Publisher: x, BooksCount: c.countBooks(x.ID, publisherRefs)})
	}
	return out
}

func (c *Catalog) publishDelete(kind models.Kind, id int64, res DeleteResult) {
	e := c.event(kind, ActionDeleted, id, res.Name)
	e.Orphaned = res.Orphaned
	c.publish(e)
}
