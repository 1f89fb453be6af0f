package sitemap

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/basicseo/seo"
)

const heading = "<h1>XML Sitemap</h1>"

func indexHTML(idx Index) templ.Component {
	return htmlComponent(func(b *strings.Builder) {
		b.WriteString(heading)
		b.WriteString("\n")
		if idx.NoPostTypes {
			b.WriteString("<p>" + MsgNoPostTypes + "</p>\n")
		}
		for _, l := range idx.PostTypes {
			anchor(b, l.URL, seo.EscapeAttr(l.URL))
			b.WriteString("<br>\n")
		}
		if idx.NoTaxonomies {
			b.WriteString("<p>" + MsgNoTaxonomies + "</p>\n")
		}
		for _, l := range idx.Taxonomies {
			anchor(b, l.URL, seo.EscapeAttr(l.URL))
			b.WriteString("<br>\n")
		}
	})
}

func sectionHTML(sec Section) templ.Component {
	return htmlComponent(func(b *strings.Builder) {
		b.WriteString(heading)
		b.WriteString("\n<table>\n<tr><th>URL</th><th>Last Modified</th></tr>\n")
		if sec.Empty != "" {
			b.WriteString(`<tr><td colspan="2">`)
			b.WriteString(seo.EscapeAttr(sec.Empty))
			b.WriteString("</td></tr>\n")
		}
		for _, r := range sec.Rows {
			b.WriteString("<tr><td>")
			anchor(b, r.Loc, seo.EscapeAttr(r.Loc))
			b.WriteString("</td><td>")
			b.WriteString(FormatTime(r.LastMod))
			b.WriteString("</td></tr>\n")
		}
		b.WriteString("</table>\n<p>")
		anchor(b, sec.IndexURL, "&laquo; Back to main sitemap")
		b.WriteString("</p>\n")
	})
}

func notFoundHTML(reason, indexURL string) templ.Component {
	return htmlComponent(func(b *strings.Builder) {
		b.WriteString("<h1>Error 404: Sitemap not found</h1>\n<p>")
		b.WriteString(seo.EscapeAttr(reason))
		b.WriteString("</p>\n<p>")
		anchor(b, indexURL, "Back to main sitemap")
		b.WriteString("</p>\n")
	})
}

// anchor writes a link; text must already be escaped.
func anchor(b *strings.Builder, href, text string) {
	b.WriteString(`<a href="`)
	b.WriteString(seo.EscapeURL(href))
	b.WriteString(`">`)
	b.WriteString(text)
	b.WriteString("</a>")
}

func htmlComponent(build func(*strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		build(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
