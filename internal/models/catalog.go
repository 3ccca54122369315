package models

// Kind names one of the four catalog entity lists.
type Kind string

const (
	KindBook      Kind = "book"
	KindAuthor    Kind = "author"
	KindCategory  Kind = "category"
	KindPublisher Kind = "publisher"
)

// Ref points from a book at an author, category or publisher. Name is the
// target's name when the reference was made; it is only shown once the
// target is gone.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Book struct {
	ID          int64  `json:"id"`
	ISBN        string `json:"isbn"`
	Name        string `json:"name"`
	SerialName  string `json:"serialName"`
	Description string `json:"description"`
	Authors     []Ref  `json:"authors"`
	Categories  []Ref  `json:"categories"`
	Publishers  []Ref  `json:"publishers"`
}

type Author struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Publisher struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ResolvedRef is a Ref after lookup against the live catalog.
type ResolvedRef struct {
	ID       int64
	Name     string
	Dangling bool
}

// BookView is a book with its references resolved to current names.
type BookView struct {
	Book
	AuthorRefs    []ResolvedRef
	CategoryRefs  []ResolvedRef
	PublisherRefs []ResolvedRef
}

// AuthorView, CategoryView and PublisherView carry the derived book count.
type AuthorView struct {
	Author
	BooksCount int
}

type CategoryView struct {
	Category
	BooksCount int
}

type PublisherView struct {
	Publisher
	BooksCount int
}
