package sitemap

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// Kind labels what a sitemap response served.
type Kind string

const (
	KindIndex    Kind = "index"
	KindPostType Kind = "post_type"
	KindTaxonomy Kind = "taxonomy"
	KindRedirect Kind = "redirect"
	KindInvalid  Kind = "invalid"
)

// URL scheme. Every document is served under .xml; the .html alias always
// serves the human-readable page.
const (
	IndexBase   = "/sitemap"
	IndexPath   = IndexBase + ExtXML
	ExtXML      = ".xml"
	ExtHTML     = ".html"
	postTypePfx = "/sitemap-post-type-"
	taxonomyPfx = "/sitemap-taxonomy-"
)

// Reasons given on 404 pages.
const (
	ReasonUnknownPostType = "The requested post type does not exist."
	ReasonUnknownTaxonomy = "The requested taxonomy does not exist."
	ReasonInvalidURL      = "Invalid sitemap URL format."
)

// Content types of sitemap bodies.
const (
	ContentTypeHTML = "text/html; charset=UTF-8"
	ContentTypeXML  = "application/xml; charset=utf-8"
)

var (
	postTypePattern = regexp.MustCompile(`sitemap-post-type-([^.]+)\.(xml|html)$`)
	taxonomyPattern = regexp.MustCompile(`sitemap-taxonomy-([^.]+)\.(xml|html)$`)
)

// SectionPath returns the path of a section document.
func SectionPath(kind Kind, name, ext string) string {
	if kind == KindTaxonomy {
		return taxonomyPfx + name + ext
	}
	return postTypePfx + name + ext
}

// Response is the outcome of dispatching a path. Unhandled responses leave
// the request to the host.
type Response struct {
	Handled     bool
	Status      int
	Location    string
	ContentType string
	Body        templ.Component
	Kind        Kind
}

// Dispatcher maps request paths to sitemap responses.
type Dispatcher struct {
	gen *Generator
	log *zap.Logger
}

// NewDispatcher returns a Dispatcher rendering with gen.
func NewDispatcher(gen *Generator) *Dispatcher {
	return &Dispatcher{gen: gen, log: gen.log}
}

// Dispatch decides the response for a request path. The query string is
// not part of path.
//
// Paths without "sitemap" are not handled. A trailing slash redirects
// permanently to the trimmed path. The index and section patterns render
// their documents; unknown post types or taxonomies and any other path
// containing ".xml" get a 404 page. Remaining paths fall through.
func (d *Dispatcher) Dispatch(ctx context.Context, path string) Response {
	if !strings.Contains(path, "sitemap") {
		return Response{}
	}
	if strings.HasSuffix(path, "/") {
		return Response{
			Handled:  true,
			Status:   http.StatusMovedPermanently,
			Location: strings.TrimRight(path, "/"),
			Kind:     KindRedirect,
		}
	}

	switch path {
	case IndexPath:
		return d.index(ctx, d.gen.format)
	case IndexBase + ExtHTML:
		return d.index(ctx, FormatHTML)
	}

	if m := postTypePattern.FindStringSubmatch(path); m != nil {
		if !d.gen.src.PostTypeExists(ctx, m[1]) {
			return d.notFound(KindPostType, ReasonUnknownPostType)
		}
		f := d.formatFor(m[2])
		sec := d.gen.PostTypeSection(ctx, m[1], d.linkExt(f))
		return d.section(sec, f)
	}
	if m := taxonomyPattern.FindStringSubmatch(path); m != nil {
		if !d.gen.src.TaxonomyExists(ctx, m[1]) {
			return d.notFound(KindTaxonomy, ReasonUnknownTaxonomy)
		}
		f := d.formatFor(m[2])
		sec := d.gen.TaxonomySection(ctx, m[1], d.linkExt(f))
		return d.section(sec, f)
	}

	if strings.Contains(path, ExtXML) {
		d.log.Debug("invalid sitemap path", zap.String("path", path))
		return d.notFound(KindInvalid, ReasonInvalidURL)
	}
	return Response{}
}

func (d *Dispatcher) index(ctx context.Context, f Format) Response {
	idx := d.gen.Index(ctx, d.linkExt(f))
	if f == FormatXML {
		return ok(KindIndex, ContentTypeXML, indexXML(idx))
	}
	return ok(KindIndex, ContentTypeHTML, indexHTML(idx))
}

func (d *Dispatcher) section(sec Section, f Format) Response {
	if f == FormatXML {
		return ok(sec.Kind, ContentTypeXML, sectionXML(sec))
	}
	return ok(sec.Kind, ContentTypeHTML, sectionHTML(sec))
}

func (d *Dispatcher) notFound(kind Kind, reason string) Response {
	return Response{
		Handled:     true,
		Status:      http.StatusNotFound,
		ContentType: ContentTypeHTML,
		Body:        notFoundHTML(reason, d.gen.src.HomeURL(IndexPath)),
		Kind:        kind,
	}
}

// formatFor returns the body format for a requested extension.
func (d *Dispatcher) formatFor(ext string) Format {
	if ext == "html" {
		return FormatHTML
	}
	return d.gen.format
}

// linkExt returns the extension used for links inside a document: HTML
// pages link to each other under .html when .xml serves XML.
func (d *Dispatcher) linkExt(rendered Format) string {
	if rendered == FormatHTML && d.gen.format == FormatXML {
		return ExtHTML
	}
	return ExtXML
}

func ok(kind Kind, contentType string, body templ.Component) Response {
	return Response{
		Handled:     true,
		Status:      http.StatusOK,
		ContentType: contentType,
		Body:        body,
		Kind:        kind,
	}
}
