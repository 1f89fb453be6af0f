package basicseo

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/basicseo/sitemap"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// RenderSitemap writes a dispatcher response: a redirect, or the body with
// its own content type and status.
func RenderSitemap(c echo.Context, resp sitemap.Response) error {
	if resp.Location != "" {
		return c.Redirect(resp.Status, resp.Location)
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, resp.ContentType)
	if resp.Status == http.StatusOK {
		h.Set("Cache-Control", "public, max-age=3600")
	} else {
		h.Set("Cache-Control", "no-store")
	}
	c.Response().WriteHeader(resp.Status)
	if c.Request().Method == http.MethodHead || resp.Body == nil {
		return nil
	}
	return resp.Body.Render(c.Request().Context(), c.Response().Writer)
}
