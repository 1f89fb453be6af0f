package views

import "github.com/a-h/templ"

// Page is the public layout. The SEO head block is written right after the
// charset so it lands early in <head>.
func Page(p PageData) templ.Component {
	return render(func(b *builder) {
		b.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		b.component(p.Head)
		b.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`, "\n<title>")
		b.text(p.Title)
		b.raw("</title>\n")
		b.component(p.Style)
		b.raw(`<link rel="stylesheet" href="/public/basicseo/site.css">`, "\n</head>\n<body>\n")
		header(b, p)
		b.raw("<main>\n")
		if p.Heading != "" {
			b.raw("<h1>")
			b.text(p.Heading)
			b.raw("</h1>\n")
		}
		if p.Body != nil {
			b.raw(`<article class="content">`)
			b.component(p.Body)
			b.raw("</article>\n")
		}
		if len(p.Items) > 0 {
			b.raw("<ul class=\"entries\">\n")
			for _, it := range p.Items {
				b.raw("<li><a")
				b.href(it.URL)
				b.raw(">")
				b.text(it.Title)
				b.raw("</a>")
				if it.Summary != "" {
					b.raw("<p>")
					b.text(it.Summary)
					b.raw("</p>")
				}
				b.raw("</li>\n")
			}
			b.raw("</ul>\n")
		} else if p.Empty != "" {
			b.raw(`<p class="empty">`)
			b.text(p.Empty)
			b.raw("</p>\n")
		}
		b.raw("</main>\n")
		footer(b)
		b.raw("</body>\n</html>\n")
	})
}

// NotFound renders the 404 page.
func NotFound(p PageData) templ.Component {
	if p.Title == "" {
		p.Title = "Page not found"
	}
	p.Heading = "Page not found"
	p.Empty = "The page you were looking for does not exist."
	p.Items = nil
	p.Body = nil
	return Page(p)
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return render(func(b *builder) {
		b.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>Server error</title>\n</head>\n<body>\n")
		b.raw("<h1>Something went wrong</h1>\n<p><a href=\"/\">Back to the home page</a></p>\n</body>\n</html>\n")
	})
}

func header(b *builder, p PageData) {
	b.raw("<header><a class=\"brand\" href=\"/\">")
	b.text(p.Site.Name)
	b.raw("</a>")
	b.raw(`<form class="search" action="/" method="get"><input type="search" name="s"`)
	b.attr("value", p.Query)
	b.raw(` placeholder="Search"></form></header>`, "\n")
}

func footer(b *builder) {
	b.raw("<footer><a href=\"/sitemap.xml\">Sitemap</a></footer>\n")
}
