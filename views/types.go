package views

import "github.com/a-h/templ"

// SiteConfig holds site-wide settings passed to every template.
type SiteConfig struct {
	Name string
	URL  string
}

// PageData carries a rendered public page into the layout.
type PageData struct {
	Site SiteConfig
	// Title is the document title after overrides were applied.
	Title string
	// Head holds the SEO meta tags; nil when the page has none.
	Head templ.Component
	// Style is the breadcrumb stylesheet.
	Style   templ.Component
	Heading string
	Body    templ.Component
	Items   []ListItem
	Empty   string
	Query   string
}

// ListItem is one entry of an archive, search or shop listing.
type ListItem struct {
	Title   string
	URL     string
	Summary string
}

// Option is a <select> choice.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// AdminEntityRow is one line of the content list.
type AdminEntityRow struct {
	ID       int64
	Type     string
	Title    string
	Status   string
	URL      string
	SEOTitle string
	SEODesc  string
	// Editable rows carry the quick-edit form.
	Editable bool
}

// AdminEntitiesData is the content list page.
type AdminEntitiesData struct {
	Rows       []AdminEntityRow
	Types      []Option
	ActiveType string
	Message    string
	CSRF       string
}

// AdminEntityForm is the content editor with its SEO meta box.
type AdminEntityForm struct {
	ID          int64
	Type        string
	Title       string
	Slug        string
	Status      string
	Body        string
	ParentID    int64
	ThumbnailID int64
	ImageURL    string
	SEOTitle    string
	SEODesc     string
	// HasSEO is false for types without overrides; the meta box is hidden.
	HasSEO bool
}

// AdminEntityData is the content editor page.
type AdminEntityData struct {
	Entity     AdminEntityForm
	Types      []Option
	Statuses   []Option
	Parents    []Option
	Categories []Option
	Message    string
	CSRF       string
}

// AdminTermRow is one line of the product category list.
type AdminTermRow struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	Count       int
	// SEOTitle and SEODesc are display values; "—" when empty.
	SEOTitle string
	SEODesc  string
}

// AdminTermsData is the product category list page.
type AdminTermsData struct {
	Taxonomy string
	Rows     []AdminTermRow
	Message  string
	CSRF     string
}

// AdminTermData is the term editor page.
type AdminTermData struct {
	ID          int64
	Taxonomy    string
	Name        string
	Slug        string
	Description string
	ImageURL    string
	SEOTitle    string
	SEODesc     string
	Message     string
	CSRF        string
}
