package views

import "github.com/a-h/templ"

func adminShell(b *builder, title string, body func()) {
	b.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.text(title)
	b.raw(" – Admin</title>\n<link rel=\"stylesheet\" href=\"/public/basicseo/admin.css\">\n</head>\n<body class=\"admin\">\n")
	b.raw(`<nav><a href="/admin/">Content</a> <a href="/admin/terms/">Product categories</a> <a href="/sitemap.xml">Sitemap</a></nav>`, "\n")
	body()
	b.raw("</body>\n</html>\n")
}

func message(b *builder, msg string) {
	if msg == "" {
		return
	}
	b.raw(`<p class="notice">`)
	b.text(msg)
	b.raw("</p>\n")
}

func csrfField(b *builder, token string) {
	b.hidden("_csrf", token)
}

// AdminLogin renders the login form.
func AdminLogin(showError bool, csrf string) templ.Component {
	return render(func(b *builder) {
		adminShell(b, "Log in", func() {
			b.raw("<h1>Log in</h1>\n")
			if showError {
				b.raw("<p class=\"error\">Invalid password.</p>\n")
			}
			b.raw(`<form method="post" action="/admin/login/">`)
			csrfField(b, csrf)
			b.raw(`<label for="password">Password</label><input type="password" id="password" name="password" autofocus>`)
			b.raw(`<button type="submit">Log in</button></form>`, "\n")
		})
	})
}

// AdminEntities renders the content list with the Title Tag and Meta
// Description columns and a quick-edit form per row.
func AdminEntities(d AdminEntitiesData) templ.Component {
	return render(func(b *builder) {
		adminShell(b, "Content", func() {
			b.raw("<h1>Content</h1>\n")
			message(b, d.Message)
			b.raw(`<form method="get" action="/admin/" class="filter">`)
			b.selectBox("type", d.Types)
			b.raw(`<button type="submit">Filter</button></form>`, "\n")
			b.raw(`<p><a href="/admin/entity/new/">Add new</a></p>`, "\n")
			b.raw("<table class=\"entities\">\n<tr><th>Title</th><th>Type</th><th>Status</th><th>Title Tag</th><th>Meta Description</th><th></th></tr>\n")
			for _, r := range d.Rows {
				adminEntityRow(b, r, d.CSRF)
			}
			b.raw("</table>\n")
			b.raw(`<form method="post" action="/admin/logout/">`)
			csrfField(b, d.CSRF)
			b.raw(`<button type="submit">Log out</button></form>`, "\n")
		})
	})
}

func adminEntityRow(b *builder, r AdminEntityRow, csrf string) {
	id := itoa(r.ID)
	b.raw(`<tr id="entity-`, id, `">`)
	b.raw(`<td class="column-title"><a`)
	b.href("/admin/entity/" + id + "/")
	b.raw(">")
	b.text(r.Title)
	b.raw("</a></td><td>")
	b.text(r.Type)
	b.raw("</td><td>")
	b.text(r.Status)
	b.raw(`</td><td class="column-custom_title">`)
	b.text(r.SEOTitle)
	b.raw(`</td><td class="column-meta_desc">`)
	b.text(r.SEODesc)
	b.raw("</td><td>")
	if r.URL != "" {
		b.raw("<a")
		b.href(r.URL)
		b.raw(">View</a>")
	}
	b.raw("</td></tr>\n")
	if !r.Editable {
		return
	}
	b.raw(`<tr class="inline-edit" id="edit-`, id, `"><td colspan="6"><form method="post"`)
	b.attr("action", "/admin/entity/"+id+"/seo/")
	b.raw(">")
	csrfField(b, csrf)
	b.hidden("_inline_edit", "1")
	b.raw(`<label><span class="title">Title Tag</span><input type="text" name="custom_title"`)
	b.attr("value", r.SEOTitle)
	b.raw(`></label><label><span class="title">Meta Description</span><textarea name="meta_desc" rows="3">`)
	b.text(r.SEODesc)
	b.raw(`</textarea></label><button type="submit">Quick edit</button></form></td></tr>`, "\n")
}

// AdminEntity renders the content editor with the SEO Settings meta box and
// the media upload form.
func AdminEntity(d AdminEntityData) templ.Component {
	e := d.Entity
	return render(func(b *builder) {
		title := "New entry"
		if e.ID > 0 {
			title = "Edit " + e.Title
		}
		adminShell(b, title, func() {
			b.raw("<h1>")
			b.text(title)
			b.raw("</h1>\n")
			message(b, d.Message)

			b.raw(`<form method="post" action="/admin/entity/" class="editor">`)
			csrfField(b, d.CSRF)
			b.hidden("id", itoa(e.ID))
			b.raw(`<label for="type">Type</label>`)
			b.selectBox("type", d.Types)
			b.raw(`<label for="title">Title</label><input type="text" id="title" name="title"`)
			b.attr("value", e.Title)
			b.raw(`><label for="slug">Slug</label><input type="text" id="slug" name="slug"`)
			b.attr("value", e.Slug)
			b.raw(`><label for="status">Status</label>`)
			b.selectBox("status", d.Statuses)
			b.raw(`<label for="parent_id">Parent</label>`)
			b.selectBox("parent_id", d.Parents)
			if len(d.Categories) > 0 {
				b.raw(`<fieldset><legend>Categories</legend>`)
				for _, c := range d.Categories {
					b.raw(`<label><input type="checkbox" name="terms"`)
					b.attr("value", c.Value)
					if c.Selected {
						b.raw(" checked")
					}
					b.raw(">")
					b.text(c.Label)
					b.raw("</label>")
				}
				b.raw("</fieldset>")
			}
			b.raw(`<label for="body">Body (markdown)</label><textarea id="body" name="body" rows="16">`)
			b.text(e.Body)
			b.raw("</textarea>\n")
			if e.HasSEO {
				seoMetaBox(b, e.SEOTitle, e.SEODesc)
			}
			b.raw(`<button type="submit">Save</button></form>`, "\n")

			if e.ID > 0 {
				if e.ImageURL != "" {
					b.raw(`<p class="featured"><img alt=""`)
					b.attr("src", e.ImageURL)
					b.raw("></p>\n")
				}
				if e.Type != "attachment" {
					b.raw(`<form method="post" action="/admin/media/upload/" enctype="multipart/form-data" class="upload">`)
					csrfField(b, d.CSRF)
					b.hidden("parent_id", itoa(e.ID))
					b.raw(`<label for="image">Attach image</label><input type="file" id="image" name="image" accept="image/*">`)
					b.raw(`<label><input type="checkbox" name="featured" value="1"> Set as featured image</label>`)
					b.raw(`<button type="submit">Upload</button></form>`, "\n")
				}

				b.raw(`<form method="post" class="delete"`)
				b.attr("action", "/admin/entity/"+itoa(e.ID)+"/")
				b.raw(">")
				csrfField(b, d.CSRF)
				b.hidden("_method", "DELETE")
				b.raw(`<button type="submit">Delete</button></form>`, "\n")
			}
		})
	})
}

func seoMetaBox(b *builder, title, desc string) {
	b.raw(`<fieldset class="seo"><legend>SEO Settings</legend>`)
	b.raw(`<p><label for="custom_title"><strong>Title Tag:</strong></label><br><input type="text" id="custom_title" name="custom_title"`)
	b.attr("value", title)
	b.raw(`><small>This will replace the default title in search results and browser tab.</small></p>`)
	b.raw(`<p><label for="meta_desc"><strong>Meta Description:</strong></label><br><textarea id="meta_desc" name="meta_desc" rows="4">`)
	b.text(desc)
	b.raw(`</textarea><small>Description for search engine results.</small></p></fieldset>`, "\n")
}

// AdminTerms renders the product category list with its SEO columns.
func AdminTerms(d AdminTermsData) templ.Component {
	return render(func(b *builder) {
		adminShell(b, "Product categories", func() {
			b.raw("<h1>Product categories</h1>\n")
			message(b, d.Message)
			b.raw("<table class=\"terms\">\n<tr><th>Name</th><th>Title Tag</th><th>Meta Description</th><th>Description</th><th>Slug</th><th>Count</th></tr>\n")
			for _, r := range d.Rows {
				id := itoa(r.ID)
				b.raw(`<tr id="term-`, id, `"><td class="column-name"><a`)
				b.href("/admin/term/" + id + "/")
				b.raw(">")
				b.text(r.Name)
				b.raw(`</a></td><td class="column-seo_title">`)
				b.text(r.SEOTitle)
				b.raw(`</td><td class="column-seo_desc">`)
				b.text(r.SEODesc)
				b.raw("</td><td>")
				b.text(r.Description)
				b.raw("</td><td>")
				b.text(r.Slug)
				b.raw("</td><td>")
				b.raw(itoa(int64(r.Count)))
				b.raw("</td></tr>\n")
			}
			b.raw("</table>\n")
		})
	})
}

// AdminTerm renders the term editor with its SEO fields and thumbnail upload.
func AdminTerm(d AdminTermData) templ.Component {
	return render(func(b *builder) {
		adminShell(b, d.Name, func() {
			b.raw("<h1>")
			b.text(d.Name)
			b.raw("</h1>\n")
			message(b, d.Message)
			b.raw(`<form method="post" class="editor"`)
			b.attr("action", "/admin/term/"+itoa(d.ID)+"/seo/")
			b.raw(">")
			csrfField(b, d.CSRF)
			b.raw(`<table class="form-table">`)
			b.raw(`<tr class="form-field"><th scope="row"><label for="custom_title">Title Tag</label></th><td><input type="text" name="custom_title" id="custom_title"`)
			b.attr("value", d.SEOTitle)
			b.raw(`><p class="description">Custom title for search results and browser tab.</p></td></tr>`)
			b.raw(`<tr class="form-field"><th scope="row"><label for="meta_desc">Meta Description</label></th><td><textarea name="meta_desc" id="meta_desc">`)
			b.text(d.SEODesc)
			b.raw(`</textarea><p class="description">Description for search engine results.</p></td></tr></table>`)
			b.raw(`<button type="submit">Save</button></form>`, "\n")

			if d.ImageURL != "" {
				b.raw(`<p class="featured"><img alt=""`)
				b.attr("src", d.ImageURL)
				b.raw("></p>\n")
			}
			b.raw(`<form method="post" action="/admin/media/upload/" enctype="multipart/form-data" class="upload">`)
			csrfField(b, d.CSRF)
			b.hidden("term_id", itoa(d.ID))
			b.raw(`<label for="image">Thumbnail</label><input type="file" id="image" name="image" accept="image/*">`)
			b.raw(`<button type="submit">Upload</button></form>`, "\n")
		})
	})
}
