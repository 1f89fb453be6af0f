package basicseo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/basicseo/seo"
)

// adminClient carries cookies between requests and sends the CSRF token
// with every unsafe request.
type adminClient struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newAdminClient(t *testing.T, a *App) *adminClient {
	t.Helper()
	c := &adminClient{t: t, app: a, cookies: map[string]*http.Cookie{}}
	rec := c.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, c.csrf(), "csrf cookie")
	return c
}

// loggedInClient returns a client with an authenticated session.
func loggedInClient(t *testing.T, a *App) *adminClient {
	t.Helper()
	c := newAdminClient(t, a)
	rec := c.post("/admin/login/", url.Values{"password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return c
}

func (c *adminClient) csrf() string {
	if k, ok := c.cookies["_csrf"]; ok {
		return k.Value
	}
	return ""
}

func (c *adminClient) do(req *http.Request) *httptest.ResponseRecorder {
	for _, k := range c.cookies {
		req.AddCookie(k)
	}
	if req.Method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", c.csrf())
	}
	rec := serve(c.app, req)
	for _, k := range rec.Result().Cookies() {
		if k.MaxAge < 0 {
			delete(c.cookies, k.Name)
			continue
		}
		c.cookies[k.Name] = k
	}
	return rec
}

func (c *adminClient) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *adminClient) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *adminClient) upload(target string, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("image", filename)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAdminLoginAndLogout(t *testing.T) {
	a := newTestApp(t)
	c := newAdminClient(t, a)

	rec := c.get("/admin/")
	assert.Contains(t, rec.Body.String(), `name="password"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = c.post("/admin/login/", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid password.")

	rec = c.post("/admin/login/", url.Values{"password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/", rec.Header().Get("Location"))

	rec = c.get("/admin/")
	assert.Contains(t, rec.Body.String(), "<h1>Content</h1>")

	rec = c.post("/admin/logout/", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = c.get("/admin/")
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestAdminLoginRateLimited(t *testing.T) {
	a := newTestApp(t, func(c *SiteConfig) { c.LoginAttempts = 2 })
	c := newAdminClient(t, a)

	for i := 0; i < 2; i++ {
		rec := c.post("/admin/login/", url.Values{"password": {"wrong"}})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := c.post("/admin/login/", url.Values{"password": {"secret"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdminRejectsMissingCSRFToken(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader("password=secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(a, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEntitySEORequiresLogin(t *testing.T) {
	a := newTestApp(t)
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "hello", Title: "Hello"})
	c := newAdminClient(t, a)

	rec := c.post(entityPath(post.ID)+"seo/", url.Values{"custom_title": {"Hijacked"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, a.Overrides.GetPostOverride(context.Background(), post.ID).Title)
}

func TestEntitySEOAutosaveDoesNotWrite(t *testing.T) {
	a := newTestApp(t)
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "hello", Title: "Hello"})
	c := loggedInClient(t, a)

	rec := c.post(entityPath(post.ID)+"seo/", url.Values{"autosave": {"1"}, "custom_title": {"Draft title"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, a.Overrides.GetPostOverride(context.Background(), post.ID).Title)
}

func TestEntitySEOInlineEdit(t *testing.T) {
	a := newTestApp(t)
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "hello", Title: "Hello"})
	c := loggedInClient(t, a)

	rec := c.post(entityPath(post.ID)+"seo/", url.Values{
		"_inline_edit": {"1"},
		"custom_title": {"  Quick <b>title</b> "},
		"meta_desc":    {"Line one\nLine two"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/?msg=saved", rec.Header().Get("Location"))

	ov := a.Overrides.GetPostOverride(context.Background(), post.ID)
	assert.Equal(t, "Quick title", ov.Title)
	assert.Equal(t, "Line one\nLine two", ov.Description)

	rec = c.get("/admin/")
	assert.Contains(t, rec.Body.String(), `<td class="column-custom_title">Quick title</td>`)
}

func TestEntitySEOEmptyFieldClearsOverride(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "hello", Title: "Hello"})
	require.NoError(t, a.Overrides.PutPostOverride(ctx, post.ID, seo.OverrideInput{Title: ptr("Old"), Description: ptr("Old desc")}))
	c := loggedInClient(t, a)

	rec := c.post(entityPath(post.ID)+"seo/", url.Values{"custom_title": {""}, "meta_desc": {"New desc"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, entityPath(post.ID)+"?msg=saved", rec.Header().Get("Location"))

	ov := a.Overrides.GetPostOverride(ctx, post.ID)
	assert.Empty(t, ov.Title)
	assert.Equal(t, "New desc", ov.Description)
}

func TestAdminSaveCreatesEntry(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	news := seedTerm(t, a, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "news", Name: "News"})
	c := loggedInClient(t, a)

	rec := c.post("/admin/entity/", url.Values{
		"type":         {seo.TypePost},
		"title":        {"Hello World"},
		"status":       {StatusPublish},
		"body":         {"Some text."},
		"terms":        {itoa(news.ID)},
		"custom_title": {"Custom"},
		"meta_desc":    {""},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	e, err := a.Store.EntryBySlug(ctx, seo.TypePost, "hello-world", 0)
	require.NoError(t, err)
	assert.Equal(t, entityPath(e.ID)+"?msg=saved", rec.Header().Get("Location"))
	assert.Equal(t, StatusPublish, e.Status)
	assert.Equal(t, "Custom", a.Overrides.GetPostOverride(ctx, e.ID).Title)

	terms, err := a.Store.EntryTerms(ctx, e.ID, seo.TaxonomyCategory)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, news.ID, terms[0].ID)

	rec = c.get(entityPath(e.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SEO Settings")
	assert.Contains(t, rec.Body.String(), `value="Custom"`)
}

func TestAdminSaveAutosaveKeepsOverrides(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "hello", Title: "Hello"})
	require.NoError(t, a.Overrides.PutPostOverride(ctx, post.ID, seo.OverrideInput{Title: ptr("Keep me")}))
	c := loggedInClient(t, a)

	rec := c.post("/admin/entity/", url.Values{
		"id":       {itoa(post.ID)},
		"title":    {"Hello again"},
		"slug":     {"hello"},
		"autosave": {"1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Keep me", a.Overrides.GetPostOverride(ctx, post.ID).Title)

	e, err := a.Store.GetEntry(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", e.Title)
}

func TestAdminSaveRejectsBadInput(t *testing.T) {
	a := newTestApp(t)
	c := loggedInClient(t, a)

	rec := c.post("/admin/entity/", url.Values{"type": {"bogus"}, "title": {"X"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.post("/admin/entity/", url.Values{"type": {seo.TypeAttachment}, "title": {"X"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.post("/admin/entity/", url.Values{"type": {seo.TypePost}, "title": {"!!!"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/admin/entity/new/?msg=")
}

func TestAdminEditorHidesSEOForUnsupportedTypes(t *testing.T) {
	a := newTestApp(t, func(c *SiteConfig) { c.SupportedPostTypes = []string{seo.TypePage} })
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "hello", Title: "Hello"})
	c := loggedInClient(t, a)

	rec := c.get(entityPath(post.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "SEO Settings")

	rec = c.post(entityPath(post.ID)+"seo/", url.Values{"custom_title": {"Nope"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, a.Overrides.GetPostOverride(context.Background(), post.ID).Title)
}

func TestAdminDeleteEntry(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "hello", Title: "Hello"})
	require.NoError(t, a.Overrides.PutPostOverride(ctx, post.ID, seo.OverrideInput{Title: ptr("Gone")}))
	c := loggedInClient(t, a)

	rec := c.post(entityPath(post.ID), url.Values{"_method": {http.MethodDelete}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/?msg=deleted", rec.Header().Get("Location"))

	_, err := a.Store.GetEntry(ctx, post.ID)
	assert.ErrorIs(t, err, seo.ErrNotFound)
	assert.Empty(t, a.Overrides.GetPostOverride(ctx, post.ID).Title)
}

func TestAdminTermsList(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	plain := seedTerm(t, a, seo.Term{Taxonomy: seo.TaxonomyProductCategory, Slug: "plain", Name: "Plain"})
	tuned := seedTerm(t, a, seo.Term{Taxonomy: seo.TaxonomyProductCategory, Slug: "tuned", Name: "Tuned"})
	seedTerm(t, a, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "news", Name: "News"})
	require.NoError(t, a.Overrides.PutTermOverride(ctx, tuned.ID, seo.OverrideInput{
		Title:       ptr("Tuned Title"),
		Description: ptr("one two three four five six seven eight nine ten eleven twelve"),
	}))
	c := loggedInClient(t, a)

	rec := c.get("/admin/terms/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)

	row := doc.Find("#term-" + itoa(plain.ID))
	assert.Equal(t, emptyColumn, row.Find(".column-seo_title").Text())
	assert.Equal(t, emptyColumn, row.Find(".column-seo_desc").Text())

	row = doc.Find("#term-" + itoa(tuned.ID))
	assert.Equal(t, "Tuned Title", row.Find(".column-seo_title").Text())
	assert.Equal(t, "one two three four five six seven eight nine ten...", row.Find(".column-seo_desc").Text())
	assert.NotContains(t, rec.Body.String(), "News")
}

func TestAdminTermSEOSave(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	gadgets := seedTerm(t, a, seo.Term{Taxonomy: seo.TaxonomyProductCategory, Slug: "gadgets", Name: "Gadgets"})
	news := seedTerm(t, a, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "news", Name: "News"})
	require.NoError(t, a.Overrides.PutTermOverride(ctx, gadgets.ID, seo.OverrideInput{Description: ptr("Kept")}))
	c := loggedInClient(t, a)

	rec := c.post(termPath(gadgets.ID)+"seo/", url.Values{"custom_title": {"Gadget Deals"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, termPath(gadgets.ID)+"?msg=saved", rec.Header().Get("Location"))
	ov := a.Overrides.GetTermOverride(ctx, gadgets.ID)
	assert.Equal(t, "Gadget Deals", ov.Title)
	assert.Equal(t, "Kept", ov.Description, "fields missing from the form are left alone")

	rec = c.post(termPath(news.ID)+"seo/", url.Values{"custom_title": {"Ignored"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, a.Overrides.GetTermOverride(ctx, news.ID).Title)
}

func TestMediaUploadSetsFeaturedImage(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	post := seedEntry(t, a, Entry{Type: seo.TypePost, Slug: "gallery", Title: "Gallery"})
	c := loggedInClient(t, a)

	rec := c.upload("/admin/media/upload/", map[string]string{
		"parent_id": itoa(post.ID),
		"featured":  "1",
	}, "Big Photo.png", pngBytes(t, 1600, 800))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, entityPath(post.ID)+"?msg=saved", rec.Header().Get("Location"))

	parent, err := a.Store.GetEntry(ctx, post.ID)
	require.NoError(t, err)
	require.NotZero(t, parent.ThumbnailID)
	att, err := a.Store.GetEntry(ctx, parent.ThumbnailID)
	require.NoError(t, err)
	assert.Equal(t, seo.TypeAttachment, att.Type)
	assert.Equal(t, StatusInherit, att.Status)
	assert.Equal(t, post.ID, att.ParentID)
	assert.Equal(t, "big-photo.jpg", att.File)

	f, err := os.Open(filepath.Join(a.Config.StaticDir, uploadsSubdir, att.File))
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, maxImageWidth, cfg.Width)
	assert.Equal(t, 600, cfg.Height)

	page := get(a, "/gallery/")
	doc := parseDoc(t, page)
	img, ok := metaProperty(doc, "og:image")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/public/uploads/big-photo.jpg", img)
}

func TestMediaUploadTermThumbnail(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	gadgets := seedTerm(t, a, seo.Term{Taxonomy: seo.TaxonomyProductCategory, Slug: "gadgets", Name: "Gadgets"})
	c := loggedInClient(t, a)

	rec := c.upload("/admin/media/upload/", map[string]string{"term_id": itoa(gadgets.ID)}, "thumb.png", pngBytes(t, 10, 10))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	thumb, err := a.Store.TermMeta(ctx, gadgets.ID, seo.TermThumbnailKey)
	require.NoError(t, err)
	require.NotEmpty(t, thumb)

	page := get(a, "/product-category/gadgets/")
	doc := parseDoc(t, page)
	img, _ := metaProperty(doc, "og:image")
	assert.Equal(t, "https://example.com/public/uploads/thumb.jpg", img)
}

func TestMediaUploadRejectsNonImage(t *testing.T) {
	a := newTestApp(t)
	c := loggedInClient(t, a)

	rec := c.upload("/admin/media/upload/", nil, "notes.txt", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
