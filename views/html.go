package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// builder accumulates markup for a component.
type builder struct {
	strings.Builder
	ctx context.Context
	err error
}

func (b *builder) raw(s ...string) {
	for _, v := range s {
		b.WriteString(v)
	}
}

func (b *builder) text(s string) {
	b.WriteString(templ.EscapeString(s))
}

func (b *builder) attr(name, value string) {
	b.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (b *builder) href(u string) {
	safe := templ.URL(u)
	if safe == templ.FailedSanitizationURL {
		safe = "#"
	}
	b.attr("href", string(safe))
}

func (b *builder) component(c templ.Component) {
	if c == nil || b.err != nil {
		return
	}
	b.err = c.Render(b.ctx, &b.Builder)
}

func (b *builder) hidden(name, value string) {
	b.raw(`<input type="hidden"`)
	b.attr("name", name)
	b.attr("value", value)
	b.raw(">")
}

func (b *builder) selectBox(name string, opts []Option) {
	b.raw("<select")
	b.attr("name", name)
	b.attr("id", name)
	b.raw(">")
	for _, o := range opts {
		b.raw("<option")
		b.attr("value", o.Value)
		if o.Selected {
			b.raw(" selected")
		}
		b.raw(">")
		b.text(o.Label)
		b.raw("</option>")
	}
	b.raw("</select>")
}

func render(fn func(b *builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &builder{ctx: ctx}
		fn(b)
		if b.err != nil {
			return b.err
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
