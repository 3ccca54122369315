package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartreads/internal/catalog"
	"smartreads/internal/middleware"
	"smartreads/internal/view"
)

const (
	msgFieldsRequired = "Please fill in all required fields."
	msgUnknownRef     = "Please choose an existing author, category and publisher."
)

// entityKind binds one catalog list to the generic form routes.
type entityKind struct {
	section   view.Section
	label     string
	form      string
	nameLabel string

	values func(id int64) (view.FormValues, error)
	create func(v view.FormValues) error
	update func(id int64, v view.FormValues) error
	remove func(id int64) (catalog.DeleteResult, error)
}

func (h HandlerSet) kinds() []entityKind {
	cat := h.catalog
	section := func(name string) view.Section {
		s, _ := view.SectionByName(name)
		return s
	}

	return []entityKind{
		{
			section: section("books"),
			label:   "Book",
			form:    "book",
			values: func(id int64) (view.FormValues, error) {
				b, err := cat.Book(id)
				return view.FormValues{ISBN: b.ISBN, Name: b.Name, SerialName: b.SerialName, Description: b.Description}, err
			},
			create: func(v view.FormValues) error {
				_, err := cat.AddBook(catalog.BookInput{
					ISBN: v.ISBN, Name: v.Name, SerialName: v.SerialName, Description: v.Description,
					AuthorID: v.AuthorID, CategoryID: v.CategoryID, PublisherID: v.PublisherID,
				})
				return err
			},
			update: func(id int64, v view.FormValues) error {
				_, err := cat.UpdateBook(id, catalog.BookFields{ISBN: v.ISBN, Name: v.Name, SerialName: v.SerialName, Description: v.Description})
				return err
			},
			remove: func(id int64) (catalog.DeleteResult, error) {
				b, err := cat.DeleteBook(id)
				return catalog.DeleteResult{Name: b.Name}, err
			},
		},
		{
			section: section("authors"),
			label:   "Author",
			form:    "author",
			values: func(id int64) (view.FormValues, error) {
				a, err := cat.Author(id)
				return view.FormValues{Name: a.Name, Description: a.Description}, err
			},
			create: func(v view.FormValues) error {
				_, err := cat.AddAuthor(v.Name, v.Description)
				return err
			},
			update: func(id int64, v view.FormValues) error {
				_, err := cat.UpdateAuthor(id, v.Name, v.Description)
				return err
			},
			remove: cat.DeleteAuthor,
		},
		{
			section:   section("categories"),
			label:     "Category",
			form:      "name",
			nameLabel: "Category Name",
			values: func(id int64) (view.FormValues, error) {
				x, err := cat.Category(id)
				return view.FormValues{Name: x.Name}, err
			},
			create: func(v view.FormValues) error {
				_, err := cat.AddCategory(v.Name)
				return err
			},
			update: func(id int64, v view.FormValues) error {
				_, err := cat.UpdateCategory(id, v.Name)
				return err
			},
			remove: cat.DeleteCategory,
		},
		{
			section:   section("publishers"),
			label:     "Publisher",
			form:      "name",
			nameLabel: "Publisher Name",
			values: func(id int64) (view.FormValues, error) {
				x, err := cat.Publisher(id)
				return view.FormValues{Name: x.Name}, err
			},
			create: func(v view.FormValues) error {
				_, err := cat.AddPublisher(v.Name)
				return err
			},
			update: func(id int64, v view.FormValues) error {
				_, err := cat.UpdatePublisher(id, v.Name)
				return err
			},
			remove: cat.DeletePublisher,
		},
	}
}

func (k entityKind) modal(id int64, values view.FormValues) *view.Modal {
	m := &view.Modal{
		Form:      k.form,
		Cancel:    k.section.Path,
		NameLabel: k.nameLabel,
		Values:    values,
	}
	if id == 0 {
		m.Title = "Add New " + k.label
		m.Action = k.section.Path
		m.Submit = "Add " + k.label
		m.New = true
		return m
	}
	m.Title = "Edit " + k.label
	m.Action = fmt.Sprintf("%s/%d", k.section.Path, id)
	m.Submit = "Update " + k.label
	return m
}

func (h HandlerSet) renderModal(c *gin.Context, status int, k entityKind, modal *view.Modal, toast *view.Toast) {
	p := h.listPage(c, k.section)
	p.Modal = modal
	if toast != nil {
		p.Toast = toast
	}
	c.HTML(status, k.section.Page, p)
}

func (h HandlerSet) NewForm(k entityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderModal(c, http.StatusOK, k, k.modal(0, view.FormValues{}), nil)
	}
}

func (h HandlerSet) EditForm(k entityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		values, err := k.values(id)
		if !h.found(c, err) {
			return
		}
		h.renderModal(c, http.StatusOK, k, k.modal(id, values), nil)
	}
}

func (h HandlerSet) Create(k entityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		values := formValues(c)
		if err := k.create(values); err != nil {
			h.rejectForm(c, k, 0, values, err)
			return
		}
		redirectWithToast(c, k.section.Path, k.label+" added successfully!", view.ToastSuccess)
	}
}

func (h HandlerSet) Update(k entityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		values := formValues(c)
		err := k.update(id, values)
		if errors.Is(err, catalog.ErrNotFound) {
			middleware.AbortWithError(c, http.StatusNotFound, "not_found")
			return
		}
		if err != nil {
			h.rejectForm(c, k, id, values, err)
			return
		}
		redirectWithToast(c, k.section.Path, k.label+" updated successfully!", view.ToastSuccess)
	}
}

func (h HandlerSet) Delete(k entityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		res, err := k.remove(id)
		if !h.found(c, err) {
			return
		}
		if len(res.Orphaned) > 0 {
			h.log.Warn().
				Str("kind", strings.ToLower(k.label)).
				Int64("id", id).
				Ints64("orphaned_books", res.Orphaned).
				Msg("deleted entity is still referenced")
		}
		redirectWithToast(c, k.section.Path, k.label+" deleted successfully!", view.ToastSuccess)
	}
}

// rejectForm re-renders the modal with the submitted values.
func (h HandlerSet) rejectForm(c *gin.Context, k entityKind, id int64, values view.FormValues, err error) {
	msg := msgFieldsRequired
	switch {
	case errors.Is(err, catalog.ErrInvalid):
	case errors.Is(err, catalog.ErrNotFound):
		msg = msgUnknownRef
	default:
		_ = c.Error(err)
		middleware.AbortWithError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}
	h.renderModal(c, http.StatusUnprocessableEntity, k, k.modal(id, values), &view.Toast{Message: msg, Kind: view.ToastError})
}

func (h HandlerSet) found(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, catalog.ErrNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "not_found")
	default:
		_ = c.Error(err)
		middleware.AbortWithError(c, http.StatusInternalServerError, "internal_server_error")
	}
	return false
}

func formValues(c *gin.Context) view.FormValues {
	return view.FormValues{
		ISBN:        strings.TrimSpace(c.PostForm("isbn")),
		Name:        strings.TrimSpace(c.PostForm("name")),
		SerialName:  strings.TrimSpace(c.PostForm("serialName")),
		Description: strings.TrimSpace(c.PostForm("description")),
		AuthorID:    formID(c, "authorId"),
		CategoryID:  formID(c, "categoryId"),
		PublisherID: formID(c, "publisherId"),
	}
}
