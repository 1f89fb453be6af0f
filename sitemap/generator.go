package sitemap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/basicseo/seo"
)

// TimeFormat is the W3C datetime layout with a numeric offset.
const TimeFormat = "2006-01-02T15:04:05-07:00"

// Messages shown in place of missing sections or rows.
const (
	MsgNoPostTypes  = "No public post types found."
	MsgNoTaxonomies = "No public taxonomies found."
	MsgNoContent    = "No published content found."
	MsgNoTerms      = "No terms found or an error occurred."
)

// Format selects the body of sitemap documents served under .xml URLs.
type Format string

const (
	// FormatHTML serves human-readable HTML pages.
	FormatHTML Format = "html"
	// FormatXML serves sitemaps.org documents.
	FormatXML Format = "xml"
)

// ParseFormat validates a format name. The empty string means FormatHTML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatXML:
		return f, nil
	}
	return "", fmt.Errorf("sitemap: unknown format %q", s)
}

// TermTimestamps selects the last-modified value of taxonomy rows.
type TermTimestamps string

const (
	// TermTimesGenerated stamps every term with the generation time.
	TermTimesGenerated TermTimestamps = "generated"
	// TermTimesMembers uses the latest modification among the term's members.
	TermTimesMembers TermTimestamps = "members"
)

// ParseTermTimestamps validates a timestamp mode. The empty string means
// TermTimesGenerated.
func ParseTermTimestamps(s string) (TermTimestamps, error) {
	switch m := TermTimestamps(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return TermTimesGenerated, nil
	case TermTimesGenerated, TermTimesMembers:
		return m, nil
	}
	return "", fmt.Errorf("sitemap: unknown term timestamp mode %q", s)
}

// SectionLink is one entry of the index.
type SectionLink struct {
	Name string
	URL  string
}

// Index is the root listing of non-empty sections.
type Index struct {
	PostTypes  []SectionLink
	Taxonomies []SectionLink
	// NoPostTypes and NoTaxonomies report an empty public registry.
	NoPostTypes  bool
	NoTaxonomies bool
}

// Row is one URL of a section.
type Row struct {
	Loc     string
	LastMod time.Time
}

// Section is the enumeration of one post type or taxonomy.
type Section struct {
	Kind Kind
	Name string
	Rows []Row
	// Empty replaces the rows when the query returned nothing.
	Empty    string
	IndexURL string
}

// Generator builds sitemap documents from a Source.
type Generator struct {
	src       Source
	format    Format
	termTimes TermTimestamps
	now       func() time.Time
	log       *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithFormat sets the format of documents served under .xml URLs.
func WithFormat(f Format) Option {
	return func(g *Generator) {
		if f != "" {
			g.format = f
		}
	}
}

// WithTermTimestamps sets how taxonomy rows are stamped.
func WithTermTimestamps(m TermTimestamps) Option {
	return func(g *Generator) {
		if m != "" {
			g.termTimes = m
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the logger for host errors.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGenerator returns a Generator over src.
func NewGenerator(src Source, opts ...Option) *Generator {
	g := &Generator{
		src:       src,
		format:    FormatHTML,
		termTimes: TermTimesGenerated,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Format returns the configured document format.
func (g *Generator) Format() Format {
	return g.format
}

// Index lists the public post types (attachments excluded) with at least one
// published entity and the public taxonomies with at least one non-empty
// term. Section URLs end in ext.
func (g *Generator) Index(ctx context.Context, ext string) Index {
	var idx Index

	types, err := g.src.PublicPostTypes(ctx)
	if err != nil {
		g.log.Warn("listing post types", zap.Error(err))
	}
	types = without(types, seo.TypeAttachment)
	idx.NoPostTypes = len(types) == 0
	for _, t := range types {
		n, err := g.src.CountPublished(ctx, t)
		if err != nil {
			g.log.Warn("counting published entities", zap.String("post_type", t), zap.Error(err))
			continue
		}
		if n > 0 {
			idx.PostTypes = append(idx.PostTypes, SectionLink{Name: t, URL: g.src.HomeURL(SectionPath(KindPostType, t, ext))})
		}
	}

	taxes, err := g.src.PublicTaxonomies(ctx)
	if err != nil {
		g.log.Warn("listing taxonomies", zap.Error(err))
	}
	idx.NoTaxonomies = len(taxes) == 0
	for _, tax := range taxes {
		terms, err := g.src.Terms(ctx, tax, 1)
		if err != nil {
			g.log.Warn("probing taxonomy terms", zap.String("taxonomy", tax), zap.Error(err))
			continue
		}
		if len(terms) > 0 {
			idx.Taxonomies = append(idx.Taxonomies, SectionLink{Name: tax, URL: g.src.HomeURL(SectionPath(KindTaxonomy, tax, ext))})
		}
	}
	return idx
}

// PostTypeSection lists every published entity of postType with a
// resolvable permalink, most recently modified first.
func (g *Generator) PostTypeSection(ctx context.Context, postType, ext string) Section {
	sec := Section{Kind: KindPostType, Name: postType, IndexURL: g.src.HomeURL(IndexBase + ext)}
	entities, err := g.src.Published(ctx, postType)
	if err != nil {
		g.log.Warn("listing published entities", zap.String("post_type", postType), zap.Error(err))
	}
	if len(entities) == 0 {
		sec.Empty = MsgNoContent
		return sec
	}
	for _, e := range entities {
		link, err := g.src.Permalink(ctx, e.ID)
		if err != nil || link == "" {
			g.log.Debug("skipping entity without permalink", zap.Int64("id", e.ID), zap.Error(err))
			continue
		}
		sec.Rows = append(sec.Rows, Row{Loc: link, LastMod: e.Modified})
	}
	return sec
}

// TaxonomySection lists the non-empty terms of taxonomy with a resolvable
// link. A failing term query renders as MsgNoTerms.
func (g *Generator) TaxonomySection(ctx context.Context, taxonomy, ext string) Section {
	sec := Section{Kind: KindTaxonomy, Name: taxonomy, IndexURL: g.src.HomeURL(IndexBase + ext)}
	terms, err := g.src.Terms(ctx, taxonomy, 0)
	if err != nil {
		g.log.Warn("listing terms", zap.String("taxonomy", taxonomy), zap.Error(err))
	}
	if err != nil || len(terms) == 0 {
		sec.Empty = MsgNoTerms
		return sec
	}
	generated := g.now()
	for _, t := range terms {
		link, err := g.src.TermLink(ctx, t.ID)
		if err != nil || link == "" {
			g.log.Debug("skipping term without link", zap.Int64("id", t.ID), zap.Error(err))
			continue
		}
		sec.Rows = append(sec.Rows, Row{Loc: link, LastMod: g.termTime(ctx, t, generated)})
	}
	return sec
}

func (g *Generator) termTime(ctx context.Context, t seo.Term, generated time.Time) time.Time {
	if g.termTimes != TermTimesMembers {
		return generated
	}
	mod, err := g.src.TermLastModified(ctx, t.ID)
	if err != nil || mod.IsZero() {
		return generated
	}
	return mod
}

// FormatTime formats t with TimeFormat. The zero time formats as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeFormat)
}

func without(list []string, drop string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}
