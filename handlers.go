package basicseo

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/basicseo/seo"
	"github.com/eringen/basicseo/sitemap"
	"github.com/eringen/basicseo/views"
)

const (
	recentLimit  = 10
	summaryWords = 30
)

// breadcrumbTag is the shortcode as written in entry bodies.
var breadcrumbTag = "[" + seo.BreadcrumbShortcode + "]"

func (a *App) handleHome(c echo.Context) error {
	if c.QueryParams().Has("s") {
		return a.renderSearch(c, c.QueryParam("s"))
	}
	ctx := c.Request().Context()
	rc, err := a.Host.Route(ctx, "/")
	if err != nil {
		return err
	}
	if rc.View == seo.ViewSingular {
		return a.renderEntry(c, rc)
	}

	entries, err := a.Store.ListEntries(ctx, seo.TypePost, StatusPublish)
	if err != nil {
		return err
	}
	if len(entries) > recentLimit {
		entries = entries[:recentLimit]
	}
	return a.renderPage(c, rc, http.StatusOK, a.Views.Page, views.PageData{
		Items: a.listItems(ctx, entries),
		Empty: "Nothing published yet.",
	})
}

// handleContent routes every other public path through the host router.
func (a *App) handleContent(c echo.Context) error {
	ctx := c.Request().Context()
	rc, err := a.Host.Route(ctx, c.Request().URL.Path)
	if err != nil {
		return err
	}

	switch rc.View {
	case seo.ViewAttachment:
		if r, ok := a.Attachments.Canonicalize(ctx, rc); ok {
			return c.Redirect(r.Status, r.Location)
		}
	case seo.ViewSingular, seo.ViewShop:
		return a.renderEntry(c, rc)
	case seo.ViewTaxonomy:
		return a.renderTerm(c, rc)
	}
	return a.renderNotFound(c)
}

// renderEntry renders a single entry. The shop page additionally lists the
// published products.
func (a *App) renderEntry(c echo.Context, rc seo.RenderContext) error {
	ctx := c.Request().Context()
	e, err := a.Host.Entity(ctx, rc.EntityID)
	if errors.Is(err, seo.ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}

	p := views.PageData{
		Heading: e.Title,
		Body:    templ.Raw(a.expandShortcodes(ctx, rc, e.Content)),
	}
	if rc.View == seo.ViewShop {
		products, err := a.Store.ListEntries(ctx, seo.TypeProduct, StatusPublish)
		if err != nil {
			return err
		}
		p.Items = a.listItems(ctx, products)
		p.Empty = "No products found."
	}
	return a.renderPage(c, rc, http.StatusOK, a.Views.Page, p)
}

func (a *App) renderTerm(c echo.Context, rc seo.RenderContext) error {
	ctx := c.Request().Context()
	t, err := a.Store.GetTerm(ctx, rc.EntityID)
	if errors.Is(err, seo.ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	entries, err := a.Store.TermEntries(ctx, t.ID)
	if err != nil {
		return err
	}

	p := views.PageData{
		Heading: t.Name,
		Items:   a.listItems(ctx, entries),
		Empty:   "Nothing found in this category.",
	}
	if desc := seo.StripTags(t.Description); desc != "" {
		p.Body = templ.Raw("<p>" + templ.EscapeString(desc) + "</p>")
	}
	return a.renderPage(c, rc, http.StatusOK, a.Views.Page, p)
}

func (a *App) renderSearch(c echo.Context, q string) error {
	ctx := c.Request().Context()
	rc := seo.RenderContext{View: seo.ViewSearch, Query: q}

	var types []string
	for _, pt := range a.Config.PostTypes {
		if pt.Public && pt.Name != seo.TypeAttachment {
			types = append(types, pt.Name)
		}
	}
	entries, err := a.Store.SearchEntries(ctx, q, types)
	if err != nil {
		return err
	}
	return a.renderPage(c, rc, http.StatusOK, a.Views.Page, views.PageData{
		Heading: seo.SearchLabelPrefix + q,
		Items:   a.listItems(ctx, entries),
		Empty:   "Nothing matched your search.",
		Query:   q,
	})
}

func (a *App) renderNotFound(c echo.Context) error {
	return a.renderPage(c, seo.RenderContext{View: seo.ViewNotFound}, http.StatusNotFound, a.Views.NotFound, views.PageData{})
}

// renderPage fills the site-wide fields of p, applies the document title
// filter and attaches the SEO head block when the view has one.
func (a *App) renderPage(c echo.Context, rc seo.RenderContext, status int, view func(views.PageData) templ.Component, p views.PageData) error {
	ctx := c.Request().Context()
	p.Site = views.SiteConfig{Name: a.Config.Name, URL: a.Config.URL}
	p.Style = seo.BreadcrumbStyle()

	title := a.Config.Name
	if p.Heading != "" {
		title = p.Heading + " – " + a.Config.Name
	}
	p.Title = a.Resolver.DocumentTitle(ctx, rc, title)

	if rec, ok := a.Resolver.Resolve(ctx, rc); ok {
		p.Head = seo.Head(rec)
		a.Metrics.headEmissions.WithLabelValues(rc.View.String()).Inc()
	}
	return RenderStatus(c, status, view(p))
}

// expandShortcodes replaces the breadcrumb shortcode in a rendered body.
func (a *App) expandShortcodes(ctx context.Context, rc seo.RenderContext, body string) string {
	if !strings.Contains(body, breadcrumbTag) {
		return body
	}
	trail := a.Breadcrumbs.HTML(ctx, rc)
	body = strings.ReplaceAll(body, "<p>"+breadcrumbTag+"</p>", trail)
	return strings.ReplaceAll(body, breadcrumbTag, trail)
}

func (a *App) listItems(ctx context.Context, entries []Entry) []views.ListItem {
	items := make([]views.ListItem, 0, len(entries))
	for _, e := range entries {
		link, err := a.Host.Permalink(ctx, e.ID)
		if err != nil {
			a.Log.Debug("skip unlinkable entry", zap.Int64("id", e.ID), zap.Error(err))
			continue
		}
		items = append(items, views.ListItem{
			Title:   e.Title,
			URL:     link,
			Summary: seo.TrimWords(seo.StripTags(a.Host.RenderBody(e.Body)), summaryWords, "..."),
		})
	}
	return items
}

// handleRobots serves robots.txt from the static directory when present and
// a generated one pointing at the sitemap index otherwise.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	body := "User-agent: *\nDisallow: /admin/\n\nSitemap: " + a.Host.HomeURL(sitemap.IndexPath) + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		if rerr := a.renderNotFound(c); rerr != nil {
			a.Log.Error("render not found", zap.Error(rerr))
		}
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
