package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"smartreads/internal/catalog"
	"smartreads/internal/middleware"
	"smartreads/internal/view"
)

func (h HandlerSet) Dashboard(c *gin.Context) {
	section, _ := view.SectionByName("dashboard")
	p := h.page(c, section)
	p.Stats = h.catalog.Stats()
	p.Activity = h.activity.Recent()
	c.HTML(http.StatusOK, section.Page, p)
}

// List renders a section table. ?q= filters the rows and ?fragment=rows
// returns only the table body for live search.
func (h HandlerSet) List(section view.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := h.listPage(c, section)
		if c.Query("fragment") == "rows" {
			c.HTML(http.StatusOK, section.Rows, p)
			return
		}
		c.HTML(http.StatusOK, section.Page, p)
	}
}

func (h HandlerSet) listPage(c *gin.Context, section view.Section) view.Page {
	p := h.page(c, section)
	q := strings.TrimSpace(c.Query("q"))
	p.Query = q

	switch section.Name {
	case "books":
		p.Books = h.catalog.SearchBooks(q)
		// The add form offers every entity as a choice.
		p.Authors = h.catalog.Authors()
		p.Categories = h.catalog.Categories()
		p.Publishers = h.catalog.Publishers()
	case "authors":
		p.Authors = h.catalog.SearchAuthors(q)
	case "categories":
		p.Categories = h.catalog.SearchCategories(q)
	case "publishers":
		p.Publishers = h.catalog.SearchPublishers(q)
	}
	return p
}

func (h HandlerSet) BookDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	book, err := h.catalog.Book(id)
	if errors.Is(err, catalog.ErrNotFound) {
		middleware.AbortWithError(c, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		middleware.AbortWithError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	section, _ := view.SectionByName("books")
	p := h.listPage(c, section)
	p.Modal = &view.Modal{Title: "Book Details", Form: "book_details", Cancel: section.Path, Book: &book}
	c.HTML(http.StatusOK, section.Page, p)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.AbortWithError(c, http.StatusNotFound, "not_found")
		return 0, false
	}
	return id, true
}

func formID(c *gin.Context, field string) int64 {
	id, _ := strconv.ParseInt(c.PostForm(field), 10, 64)
	return id
}
