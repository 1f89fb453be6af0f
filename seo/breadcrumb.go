package seo

import (
	"context"
	"strings"
)

// Breadcrumb labels.
const (
	HomeLabel         = "Home"
	SearchLabelPrefix = "Search results for: "
	NotFoundLabel     = "404 Not Found"

	// BreadcrumbShortcode is the shortcode that expands to the fragment.
	BreadcrumbShortcode = "basicseo-breadcrumb"
)

// Crumb is one breadcrumb entry. Crumbs without Href render as plain text.
type Crumb struct {
	Label string
	Href  string
}

// BreadcrumbBuilder builds the ancestry trail of a render context.
type BreadcrumbBuilder struct {
	content *Introspector
}

// NewBreadcrumbBuilder returns a BreadcrumbBuilder.
func NewBreadcrumbBuilder(content *Introspector) *BreadcrumbBuilder {
	return &BreadcrumbBuilder{content: content}
}

// Crumbs returns the trail for rc, Home first. The front page has no trail.
func (b *BreadcrumbBuilder) Crumbs(ctx context.Context, rc RenderContext) []Crumb {
	if rc.FrontPage {
		return nil
	}
	crumbs := []Crumb{{Label: HomeLabel, Href: b.content.HomeURL("/")}}

	switch {
	case rc.View == ViewSingular && rc.Type == TypePage:
		ref := ContentRef(rc.EntityID, rc.Type)
		for _, a := range b.content.Ancestors(ctx, ref) {
			crumbs = append(crumbs, b.link(ctx, a))
		}
		crumbs = appendText(crumbs, b.content.DefaultTitle(ctx, ref))
	case rc.View == ViewSingular && rc.Type == TypePost:
		ref := ContentRef(rc.EntityID, rc.Type)
		if cat, ok := b.content.CategoryOf(ctx, ref); ok {
			crumbs = append(crumbs, b.link(ctx, TermRef(cat.ID, cat.Taxonomy)))
		}
		crumbs = appendText(crumbs, b.content.DefaultTitle(ctx, ref))
	case rc.View == ViewTaxonomy:
		crumbs = appendText(crumbs, b.content.TaxonomyName(ctx, TermRef(rc.EntityID, rc.Type)))
	case rc.View == ViewSearch:
		crumbs = append(crumbs, Crumb{Label: SearchLabelPrefix + rc.Query})
	case rc.View == ViewNotFound:
		crumbs = append(crumbs, Crumb{Label: NotFoundLabel})
	default:
		title := rc.Title
		if title == "" && rc.EntityID > 0 {
			title = b.content.DefaultTitle(ctx, ContentRef(rc.EntityID, rc.Type))
		}
		crumbs = appendText(crumbs, title)
	}
	return crumbs
}

// HTML renders the trail as <div class="breadcrumbs">, separated by &raquo;.
// It returns "" on the front page.
func (b *BreadcrumbBuilder) HTML(ctx context.Context, rc RenderContext) string {
	return RenderCrumbs(b.Crumbs(ctx, rc))
}

// RenderCrumbs renders crumbs as the breadcrumb fragment.
func RenderCrumbs(crumbs []Crumb) string {
	if len(crumbs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<div class="breadcrumbs">`)
	for i, c := range crumbs {
		if i > 0 {
			sb.WriteString(" &raquo; ")
		}
		if c.Href != "" {
			sb.WriteString(`<a href="`)
			sb.WriteString(EscapeURL(c.Href))
			sb.WriteString(`">`)
			sb.WriteString(EscapeAttr(c.Label))
			sb.WriteString(`</a>`)
			continue
		}
		sb.WriteString(EscapeAttr(c.Label))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func (b *BreadcrumbBuilder) link(ctx context.Context, ref Ref) Crumb {
	c := Crumb{Label: b.content.DefaultTitle(ctx, ref)}
	if href, ok := b.content.Permalink(ctx, ref); ok {
		c.Href = href
	}
	return c
}

func appendText(crumbs []Crumb, label string) []Crumb {
	if label == "" {
		return crumbs
	}
	return append(crumbs, Crumb{Label: label})
}
