// Package view renders the admin UI from embedded html/template files.
// Every render regenerates the whole page or fragment from catalog data.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"smartreads/internal/catalog"
	"smartreads/internal/models"
	"smartreads/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names handed to gin's HTML renderer.
const (
	PageAuth       = "auth.html"
	PageDashboard  = "dashboard.html"
	PageBooks      = "books.html"
	PageAuthors    = "authors.html"
	PageCategories = "categories.html"
	PagePublishers = "publishers.html"
)

type Section struct {
	Name  string
	Label string
	Path  string
	Icon  string
	Page  string
	Rows  string
}

var Sections = []Section{
	{Name: "dashboard", Label: "Dashboard", Path: "/", Icon: "fa-tachometer-alt", Page: PageDashboard},
	{Name: "books", Label: "Books", Path: "/books", Icon: "fa-book", Page: PageBooks, Rows: "book_rows"},
	{Name: "authors", Label: "Authors", Path: "/authors", Icon: "fa-user-edit", Page: PageAuthors, Rows: "author_rows"},
	{Name: "categories", Label: "Categories", Path: "/categories", Icon: "fa-tags", Page: PageCategories, Rows: "category_rows"},
	{Name: "publishers", Label: "Publishers", Path: "/publishers", Icon: "fa-building", Page: PagePublishers, Rows: "publisher_rows"},
}

func SectionByName(name string) (Section, bool) {
	for _, s := range Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

type Toast struct {
	Message string
	Kind    ToastKind
}

// Page is the data of every signed-in page.
type Page struct {
	Title    string
	Section  string
	Sections []Section
	Session  models.Session
	IsAdmin  bool
	Toast    *Toast
	Query    string

	Stats    catalog.Stats
	Activity []catalog.Event

	Books      []models.BookView
	Authors    []models.AuthorView
	Categories []models.CategoryView
	Publishers []models.PublisherView

	Modal *Modal
}

// FormValues echoes a submitted form back into the modal.
type FormValues struct {
	ISBN        string
	Name        string
	SerialName  string
	Description string
	AuthorID    int64
	CategoryID  int64
	PublisherID int64
}

type Modal struct {
	Title     string
	Form      string
	Action    string
	Submit    string
	Cancel    string
	NameLabel string
	New       bool
	Values    FormValues
	Book      *models.BookView
}

type SignInForm struct {
	Email    string
	Password string
	Role     models.UserRole
}

type SignUpForm struct {
	FirstName string
	LastName  string
	Email     string
	Role      models.UserRole
}

type AuthPage struct {
	Title     string
	Tab       string
	Toast     *Toast
	SignIn    SignInForm
	SignUp    SignUpForm
	Demo      []service.DemoAccount
	Providers []string
}

// SocialProviders are the buttons shown on the auth page.
var SocialProviders = []string{"google", "github"}

func NewAuthPage(tab string) AuthPage {
	if tab != "signup" {
		tab = "signin"
	}
	return AuthPage{
		Title: "Sign In",
		Tab:   tab,
		Demo: []service.DemoAccount{
			service.DemoAccounts[models.UserRoleAdmin],
			service.DemoAccounts[models.UserRoleUser],
		},
		Providers: SocialProviders,
	}
}

// Templates parses the embedded template set.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("smartreads").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"since": func(t time.Time) string { return Since(t, time.Now()) },
		"title": func(s string) string { return cases.Title(language.English).String(s) },
	}
}

// Since renders a coarse relative time such as "2 hours ago".
func Since(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/(24*time.Hour)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
