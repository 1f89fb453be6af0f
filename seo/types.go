// Package seo resolves editor overrides into the title, meta description and
// Open Graph tags of a rendered page. It also builds breadcrumbs and decides
// attachment redirects.
//
// The package only talks to the publishing host through the Host and
// MetaStore interfaces, so it holds no state of its own.
package seo

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by hosts when an entity or term does not exist.
var ErrNotFound = errors.New("seo: not found")

// EntityKind distinguishes content entities from taxonomy terms.
type EntityKind int

const (
	KindContent EntityKind = iota + 1
	KindTerm
)

func (k EntityKind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindTerm:
		return "term"
	}
	return "unknown"
}

// Ref identifies an entity. Type is the post type for content entities and
// the taxonomy for terms.
type Ref struct {
	Kind EntityKind
	ID   int64
	Type string
}

// ContentRef returns a reference to a content entity.
func ContentRef(id int64, postType string) Ref {
	return Ref{Kind: KindContent, ID: id, Type: postType}
}

// TermRef returns a reference to a taxonomy term.
func TermRef(id int64, taxonomy string) Ref {
	return Ref{Kind: KindTerm, ID: id, Type: taxonomy}
}

// Well-known post types and taxonomies of the host.
const (
	TypePost       = "post"
	TypePage       = "page"
	TypeProduct    = "product"
	TypeAttachment = "attachment"

	TaxonomyCategory        = "category"
	TaxonomyTag             = "post_tag"
	TaxonomyProductCategory = "product_cat"
)

// View is the kind of page being rendered.
type View int

const (
	ViewNone View = iota
	ViewSingular
	ViewTaxonomy
	ViewShop
	ViewAttachment
	ViewSearch
	ViewNotFound
	ViewArchive
	ViewHome
)

func (v View) String() string {
	switch v {
	case ViewSingular:
		return "singular"
	case ViewTaxonomy:
		return "taxonomy"
	case ViewShop:
		return "shop"
	case ViewAttachment:
		return "attachment"
	case ViewSearch:
		return "search"
	case ViewNotFound:
		return "404"
	case ViewArchive:
		return "archive"
	case ViewHome:
		return "home"
	}
	return "none"
}

// RenderContext describes the page that is about to be rendered.
type RenderContext struct {
	View View
	// EntityID is the queried entity or term, zero when the view has none.
	EntityID int64
	// Type is the post type for singular and attachment views and the
	// taxonomy for taxonomy views.
	Type string
	// Query is the search phrase of a search view.
	Query string
	// Title is the host's title for views without an entity.
	Title string
	// FrontPage is set when the site front page is rendered.
	FrontPage bool
}

// Entity is the host's view of a content entity. Content is rendered HTML.
type Entity struct {
	ID          int64
	Type        string
	Slug        string
	Title       string
	Content     string
	Status      string
	ParentID    int64
	ThumbnailID int64
	Modified    time.Time
}

// Term is the host's view of a taxonomy term.
type Term struct {
	ID          int64
	Taxonomy    string
	Slug        string
	Name        string
	Description string
	ParentID    int64
	Count       int
}

// Host is the read-only side of the publishing platform.
type Host interface {
	Entity(ctx context.Context, id int64) (Entity, error)
	Term(ctx context.Context, id int64) (Term, error)
	Permalink(ctx context.Context, id int64) (string, error)
	TermLink(ctx context.Context, id int64) (string, error)
	AttachmentURL(ctx context.Context, id int64) (string, error)
	// EntityTerms lists the terms of taxonomy assigned to an entity in the
	// host's order.
	EntityTerms(ctx context.Context, id int64, taxonomy string) ([]Term, error)
	HomeURL(path string) string
}

// MetaStore is the host's per-entity key/value store. Reads of a missing key
// return an empty string and no error.
type MetaStore interface {
	PostMeta(ctx context.Context, id int64, key string) (string, error)
	SetPostMeta(ctx context.Context, id int64, key, value string) error
	DeletePostMeta(ctx context.Context, id int64, key string) error
	TermMeta(ctx context.Context, id int64, key string) (string, error)
	SetTermMeta(ctx context.Context, id int64, key, value string) error
	DeleteTermMeta(ctx context.Context, id int64, key string) error
}

// OverrideRecord holds the stored overrides of one entity. Empty means absent.
type OverrideRecord struct {
	Title       string
	Description string
}

// OverrideInput is editor input for a save. A nil field was not submitted.
type OverrideInput struct {
	Title       *string
	Description *string
}

// OGTypeWebsite is the only og:type emitted.
const OGTypeWebsite = "website"

// Record is the effective SEO metadata of a rendered page.
type Record struct {
	EffectiveTitle  string
	OverrideTitle   string
	MetaDescription string
	OGTitle         string
	OGDescription   string
	CanonicalURL    string
	OGType          string
	OGImage         string
}

// HasOverrideTitle reports whether an editor supplied the title.
func (r Record) HasOverrideTitle() bool {
	return r.OverrideTitle != ""
}
