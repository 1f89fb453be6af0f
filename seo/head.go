package seo

import (
	"context"
	_ "embed"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// BreadcrumbCSS styles the breadcrumb fragment.
//
//go:embed breadcrumbs.css
var BreadcrumbCSS string

// Head returns the meta tags of rec as a component.
func Head(rec Record) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, HeadHTML(rec))
		return err
	})
}

// HeadHTML renders the meta tags of rec, one per line:
// name=title and name=description only for overrides, then the Open Graph
// title, description, url and type, then og:image when there is one.
func HeadHTML(rec Record) string {
	var b strings.Builder
	if rec.OverrideTitle != "" {
		metaTag(&b, "name", "title", EscapeAttr(rec.OverrideTitle))
	}
	if rec.MetaDescription != "" {
		metaTag(&b, "name", "description", EscapeAttr(rec.MetaDescription))
	}
	metaTag(&b, "property", "og:title", EscapeAttr(rec.OGTitle))
	metaTag(&b, "property", "og:description", EscapeAttr(rec.OGDescription))
	metaTag(&b, "property", "og:url", EscapeURL(rec.CanonicalURL))
	ogType := rec.OGType
	if ogType == "" {
		ogType = OGTypeWebsite
	}
	metaTag(&b, "property", "og:type", EscapeAttr(ogType))
	if rec.OGImage != "" {
		metaTag(&b, "property", "og:image", EscapeURL(rec.OGImage))
	}
	return b.String()
}

// BreadcrumbStyle returns the breadcrumb <style> block for the head.
func BreadcrumbStyle() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<style>\n"+BreadcrumbCSS+"</style>\n")
		return err
	})
}

func metaTag(b *strings.Builder, attr, key, content string) {
	b.WriteString(`<meta `)
	b.WriteString(attr)
	b.WriteString(`="`)
	b.WriteString(key)
	b.WriteString(`" content="`)
	b.WriteString(content)
	b.WriteString("\">\n")
}

// EscapeAttr escapes s for a double-quoted HTML attribute.
func EscapeAttr(s string) string {
	return templ.EscapeString(s)
}

// EscapeURL sanitizes a URL and escapes it for an attribute. Disallowed
// schemes such as javascript: yield "".
func EscapeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, " ", "%20")
	u := templ.URL(s)
	if u == templ.FailedSanitizationURL {
		return ""
	}
	return templ.EscapeString(string(u))
}
