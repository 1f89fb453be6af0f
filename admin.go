package basicseo

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/basicseo/seo"
	"github.com/eringen/basicseo/views"
)

// emptyColumn is shown in list columns without a value.
const emptyColumn = "—"

// Admin messages, passed through the msg query parameter.
const (
	msgSaved       = "saved"
	msgDeleted     = "deleted"
	msgSEOFailed   = "SEO settings could not be saved."
	msgSlugMissing = "Slug is required. Add a title or slug."
)

func adminRedirect(c echo.Context, path, msg string) error {
	if msg != "" {
		path += "?msg=" + url.QueryEscape(msg)
	}
	return c.Redirect(http.StatusSeeOther, path)
}

func entityPath(id int64) string {
	return "/admin/entity/" + strconv.FormatInt(id, 10) + "/"
}

func termPath(id int64) string {
	return "/admin/term/" + strconv.FormatInt(id, 10) + "/"
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	ctx := c.Request().Context()
	active := c.QueryParam("type")
	entries, err := a.Store.ListEntries(ctx, active, "")
	if err != nil {
		return err
	}

	data := views.AdminEntitiesData{
		ActiveType: active,
		Message:    c.QueryParam("msg"),
		CSRF:       CsrfToken(c),
		Types:      []views.Option{{Value: "", Label: "All types", Selected: active == ""}},
	}
	for _, pt := range a.Config.PostTypes {
		data.Types = append(data.Types, views.Option{Value: pt.Name, Label: pt.Label, Selected: pt.Name == active})
	}
	for _, e := range entries {
		if active == "" && e.Type == seo.TypeAttachment {
			continue
		}
		data.Rows = append(data.Rows, a.entityRow(ctx, e))
	}
	return Render(c, a.Views.AdminEntities(data))
}

// entityRow builds a list row with the stored overrides as column values.
func (a *App) entityRow(ctx context.Context, e Entry) views.AdminEntityRow {
	row := views.AdminEntityRow{
		ID:     e.ID,
		Type:   e.Type,
		Title:  e.Title,
		Status: e.Status,
	}
	if e.Status == StatusPublish {
		if link, err := a.Host.Permalink(ctx, e.ID); err == nil {
			row.URL = link
		}
	}
	if a.supportsOverrides(e.Type) {
		ov := a.Overrides.GetPostOverride(ctx, e.ID)
		row.SEOTitle = ov.Title
		row.SEODesc = ov.Description
		row.Editable = true
	}
	return row
}

func (a *App) supportsOverrides(postType string) bool {
	return slices.Contains(a.Config.SupportedPostTypes, postType)
}

// entryTaxonomy is the taxonomy offered in the editor of postType.
func entryTaxonomy(postType string) string {
	switch postType {
	case seo.TypePost:
		return seo.TaxonomyCategory
	case seo.TypeProduct:
		return seo.TaxonomyProductCategory
	}
	return ""
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Log.Info("failed admin login", zap.String("ip", c.RealIP()))
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminNewEntity(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	postType := c.QueryParam("type")
	if pt, ok := a.Config.postType(postType); !ok || pt.Name == seo.TypeAttachment {
		postType = seo.TypePost
	}
	e := Entry{Type: postType, Status: StatusDraft}
	return a.renderEntityForm(c, e, c.QueryParam("msg"))
}

func (a *App) handleAdminEntity(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	e, err := a.Store.GetEntry(c.Request().Context(), parseID(c.Param("id")))
	if errors.Is(err, seo.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return a.renderEntityForm(c, e, c.QueryParam("msg"))
}

func (a *App) renderEntityForm(c echo.Context, e Entry, msg string) error {
	ctx := c.Request().Context()
	form := views.AdminEntityForm{
		ID:          e.ID,
		Type:        e.Type,
		Title:       e.Title,
		Slug:        e.Slug,
		Status:      e.Status,
		Body:        e.Body,
		ParentID:    e.ParentID,
		ThumbnailID: e.ThumbnailID,
		HasSEO:      a.supportsOverrides(e.Type),
	}
	if form.HasSEO && e.ID > 0 {
		ov := a.Overrides.GetPostOverride(ctx, e.ID)
		form.SEOTitle = ov.Title
		form.SEODesc = ov.Description
	}
	if e.ThumbnailID > 0 {
		if u, err := a.Host.AttachmentURL(ctx, e.ThumbnailID); err == nil {
			form.ImageURL = u
		}
	}

	data := views.AdminEntityData{
		Entity:  form,
		Message: msg,
		CSRF:    CsrfToken(c),
	}
	for _, pt := range a.Config.PostTypes {
		if pt.Name == seo.TypeAttachment && e.Type != seo.TypeAttachment {
			continue
		}
		data.Types = append(data.Types, views.Option{Value: pt.Name, Label: pt.Label, Selected: pt.Name == e.Type})
	}
	for _, s := range []string{StatusDraft, StatusPublish} {
		data.Statuses = append(data.Statuses, views.Option{Value: s, Label: s, Selected: s == e.Status})
	}
	if e.Type == seo.TypeAttachment {
		data.Statuses = []views.Option{{Value: StatusInherit, Label: StatusInherit, Selected: true}}
	}

	data.Parents = []views.Option{{Value: "0", Label: "(no parent)", Selected: e.ParentID == 0}}
	if pt, ok := a.Config.postType(e.Type); ok && (pt.Hierarchical || e.Type == seo.TypeAttachment) {
		parentType := e.Type
		if e.Type == seo.TypeAttachment {
			parentType = ""
		}
		candidates, err := a.Store.ListEntries(ctx, parentType, "")
		if err != nil {
			return err
		}
		for _, p := range candidates {
			if p.ID == e.ID || p.Type == seo.TypeAttachment {
				continue
			}
			data.Parents = append(data.Parents, views.Option{Value: strconv.FormatInt(p.ID, 10), Label: p.Title, Selected: p.ID == e.ParentID})
		}
	}

	if tax := entryTaxonomy(e.Type); tax != "" {
		terms, err := a.Store.ListTerms(ctx, tax, false, 0)
		if err != nil {
			return err
		}
		var assigned []seo.Term
		if e.ID > 0 {
			if assigned, err = a.Store.EntryTerms(ctx, e.ID, tax); err != nil {
				return err
			}
		}
		for _, t := range terms {
			selected := slices.ContainsFunc(assigned, func(x seo.Term) bool { return x.ID == t.ID })
			data.Categories = append(data.Categories, views.Option{Value: strconv.FormatInt(t.ID, 10), Label: t.Name, Selected: selected})
		}
	}
	return Render(c, a.Views.AdminEntity(data))
}

// handleAdminSave creates or updates an entry from the editor form, then
// applies the SEO meta box.
func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	form, err := c.FormParams()
	if err != nil {
		return err
	}

	var e Entry
	if id := parseID(form.Get("id")); id > 0 {
		if e, err = a.Store.GetEntry(ctx, id); err != nil {
			if errors.Is(err, seo.ErrNotFound) {
				return echo.ErrNotFound
			}
			return err
		}
	} else {
		e.Type = form.Get("type")
	}
	if t := form.Get("type"); t != "" && e.Type != seo.TypeAttachment {
		e.Type = t
	}
	pt, ok := a.Config.postType(e.Type)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown post type")
	}
	if e.Type == seo.TypeAttachment && e.File == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "attachments are created by uploading a file")
	}

	e.Title = strings.TrimSpace(form.Get("title"))
	e.Slug = Slugify(form.Get("slug"))
	if e.Slug == "" {
		e.Slug = Slugify(e.Title)
	}
	if e.Slug == "" {
		back := "/admin/entity/new/"
		if e.ID > 0 {
			back = entityPath(e.ID)
		}
		return adminRedirect(c, back, msgSlugMissing)
	}
	if e.Type == seo.TypeAttachment {
		e.Status = StatusInherit
	} else if s := form.Get("status"); s == StatusPublish || s == StatusDraft {
		e.Status = s
	} else if e.Status == "" {
		e.Status = StatusDraft
	}
	e.ParentID = 0
	if pt.Hierarchical || e.Type == seo.TypeAttachment {
		if parent := parseID(form.Get("parent_id")); parent != e.ID {
			e.ParentID = parent
		}
	}
	e.Body = form.Get("body")

	if err := a.Store.SaveEntry(ctx, &e); err != nil {
		return err
	}
	if tax := entryTaxonomy(e.Type); tax != "" {
		var ids []int64
		for _, v := range form["terms"] {
			if id := parseID(v); id > 0 {
				ids = append(ids, id)
			}
		}
		if err := a.Store.SetEntryTerms(ctx, e.ID, tax, ids); err != nil {
			return err
		}
	}

	msg := msgSaved
	if a.bindPostOverrides(c, form, e) == resultError {
		msg = msgSEOFailed
	}
	return adminRedirect(c, entityPath(e.ID), msg)
}

// Override save results, used as the metric label.
const (
	resultOK      = "ok"
	resultError   = "error"
	resultSkipped = "skipped"
	resultDenied  = "denied"
)

// bindPostOverrides stores the SEO fields of a content form. Autosaves and
// types without overrides are skipped; a store failure is logged and
// reported as resultError.
func (a *App) bindPostOverrides(c echo.Context, form url.Values, e Entry) string {
	result := resultOK
	switch {
	case form.Get("autosave") == "1", !a.supportsOverrides(e.Type):
		result = resultSkipped
	default:
		in := seo.OverrideInput{
			Title:       formPtr(form, "custom_title"),
			Description: formPtr(form, "meta_desc"),
		}
		if err := a.Overrides.PutPostOverride(c.Request().Context(), e.ID, in); err != nil {
			a.Log.Error("save post overrides", zap.Int64("id", e.ID), zap.Error(err))
			result = resultError
		}
	}
	a.Metrics.overrideSaves.WithLabelValues(seo.KindContent.String(), result).Inc()
	return result
}

// handleAdminEntitySEO saves only the SEO fields of an entry. It serves the
// quick-edit rows of the content list (_inline_edit=1) and background
// autosaves, which never write.
func (a *App) handleAdminEntitySEO(c echo.Context) error {
	if !IsAdmin(c) {
		a.Metrics.overrideSaves.WithLabelValues(seo.KindContent.String(), resultDenied).Inc()
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	e, err := a.Store.GetEntry(ctx, parseID(c.Param("id")))
	if errors.Is(err, seo.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	form, err := c.FormParams()
	if err != nil {
		return err
	}

	result := a.bindPostOverrides(c, form, e)
	if form.Get("autosave") == "1" {
		return c.NoContent(http.StatusNoContent)
	}
	msg := msgSaved
	if result == resultError {
		msg = msgSEOFailed
	}
	if form.Get("_inline_edit") == "1" {
		return adminRedirect(c, "/admin/", msg)
	}
	return adminRedirect(c, entityPath(e.ID), msg)
}

// handleAdminDelete removes an entry together with its overrides. An
// attachment's file is removed from the uploads directory.
func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	e, err := a.Store.GetEntry(ctx, parseID(c.Param("id")))
	if errors.Is(err, seo.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := a.Store.DeleteEntry(ctx, e.ID); err != nil {
		return err
	}
	if e.Type == seo.TypeAttachment && e.File != "" {
		path := filepath.Join(a.Config.StaticDir, uploadsSubdir, filepath.Base(e.File))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.Log.Warn("remove attachment file", zap.String("path", path), zap.Error(err))
		}
	}
	return adminRedirect(c, "/admin/", msgDeleted)
}

func (a *App) handleAdminTerms(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	terms, err := a.Store.ListTerms(ctx, seo.TaxonomyProductCategory, false, 0)
	if err != nil {
		return err
	}
	data := views.AdminTermsData{
		Taxonomy: seo.TaxonomyProductCategory,
		Message:  c.QueryParam("msg"),
		CSRF:     CsrfToken(c),
	}
	for _, t := range terms {
		ov := a.Overrides.GetTermOverride(ctx, t.ID)
		data.Rows = append(data.Rows, views.AdminTermRow{
			ID:          t.ID,
			Name:        t.Name,
			Slug:        t.Slug,
			Description: seo.StripTags(t.Description),
			Count:       t.Count,
			SEOTitle:    orDash(ov.Title),
			SEODesc:     orDash(seo.TrimWords(ov.Description, 10, "...")),
		})
	}
	return Render(c, a.Views.AdminTerms(data))
}

func orDash(s string) string {
	if s == "" {
		return emptyColumn
	}
	return s
}

func (a *App) handleAdminTerm(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	t, err := a.Store.GetTerm(ctx, parseID(c.Param("id")))
	if errors.Is(err, seo.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	ov := a.Overrides.GetTermOverride(ctx, t.ID)
	data := views.AdminTermData{
		ID:          t.ID,
		Taxonomy:    t.Taxonomy,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		SEOTitle:    ov.Title,
		SEODesc:     ov.Description,
		Message:     c.QueryParam("msg"),
		CSRF:        CsrfToken(c),
	}
	if thumb, err := a.Store.TermMeta(ctx, t.ID, seo.TermThumbnailKey); err == nil && thumb != "" {
		if u, err := a.Host.AttachmentURL(ctx, parseID(thumb)); err == nil {
			data.ImageURL = u
		}
	}
	return Render(c, a.Views.AdminTerm(data))
}

// handleAdminTermSEO saves the SEO fields of a product category.
func (a *App) handleAdminTermSEO(c echo.Context) error {
	kind := seo.KindTerm.String()
	if !IsAdmin(c) {
		a.Metrics.overrideSaves.WithLabelValues(kind, resultDenied).Inc()
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	t, err := a.Store.GetTerm(ctx, parseID(c.Param("id")))
	if errors.Is(err, seo.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	if t.Taxonomy != seo.TaxonomyProductCategory {
		a.Metrics.overrideSaves.WithLabelValues(kind, resultSkipped).Inc()
		return adminRedirect(c, termPath(t.ID), "")
	}
	form, err := c.FormParams()
	if err != nil {
		return err
	}

	msg, result := msgSaved, resultOK
	in := seo.OverrideInput{
		Title:       formPtr(form, "custom_title"),
		Description: formPtr(form, "meta_desc"),
	}
	if err := a.Overrides.PutTermOverride(ctx, t.ID, in); err != nil {
		a.Log.Error("save term overrides", zap.Int64("id", t.ID), zap.Error(err))
		msg, result = msgSEOFailed, resultError
	}
	a.Metrics.overrideSaves.WithLabelValues(kind, result).Inc()
	return adminRedirect(c, termPath(t.ID), msg)
}
