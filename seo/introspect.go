package seo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// TieBreak picks one category when an article belongs to several.
type TieBreak string

const (
	// TieBreakFirst keeps the host's order.
	TieBreakFirst TieBreak = "first"
	// TieBreakLowestID picks the oldest term.
	TieBreakLowestID TieBreak = "lowest-id"
	// TieBreakAlphabetic picks the first term by name.
	TieBreakAlphabetic TieBreak = "alphabetic"
	// TieBreakDeepest picks the most specific term of a hierarchy.
	TieBreakDeepest TieBreak = "deepest"
)

// ParseTieBreak validates a tie-break name. The empty string means TieBreakFirst.
func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(strings.ToLower(strings.TrimSpace(s))); tb {
	case "":
		return TieBreakFirst, nil
	case TieBreakFirst, TieBreakLowestID, TieBreakAlphabetic, TieBreakDeepest:
		return tb, nil
	}
	return "", fmt.Errorf("seo: unknown category tie-break %q", s)
}

// maxDepth bounds ancestor walks over corrupt parent chains.
const maxDepth = 64

// Introspector answers content questions about entities on top of a Host.
type Introspector struct {
	host     Host
	meta     MetaStore
	tieBreak TieBreak
	log      *zap.Logger
}

// IntrospectorOption configures an Introspector.
type IntrospectorOption func(*Introspector)

// WithTieBreak sets the category tie-break used by CategoryOf.
func WithTieBreak(tb TieBreak) IntrospectorOption {
	return func(in *Introspector) {
		in.tieBreak = tb
	}
}

// WithLogger sets the logger for host errors.
func WithLogger(log *zap.Logger) IntrospectorOption {
	return func(in *Introspector) {
		if log != nil {
			in.log = log
		}
	}
}

// NewIntrospector returns an Introspector. meta is consulted for term thumbnails.
func NewIntrospector(host Host, meta MetaStore, opts ...IntrospectorOption) *Introspector {
	in := &Introspector{
		host:     host,
		meta:     meta,
		tieBreak: TieBreakFirst,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// HomeURL returns the site URL for path.
func (in *Introspector) HomeURL(path string) string {
	return in.host.HomeURL(path)
}

// DefaultTitle returns the host's title of ref, or "" when unavailable.
func (in *Introspector) DefaultTitle(ctx context.Context, ref Ref) string {
	if ref.Kind == KindTerm {
		t, err := in.host.Term(ctx, ref.ID)
		if err != nil {
			in.logErr("term", ref, err)
			return ""
		}
		return t.Name
	}
	e, err := in.host.Entity(ctx, ref.ID)
	if err != nil {
		in.logErr("entity", ref, err)
		return ""
	}
	return e.Title
}

// BodySnippet returns the first maxWords words of the entity body as plain
// text, followed by "..." when the body was longer.
func (in *Introspector) BodySnippet(ctx context.Context, ref Ref, maxWords int) string {
	if ref.Kind != KindContent {
		return ""
	}
	e, err := in.host.Entity(ctx, ref.ID)
	if err != nil {
		in.logErr("entity", ref, err)
		return ""
	}
	return TrimWords(e.Content, maxWords, SnippetMore)
}

// Permalink returns the canonical URL of ref.
func (in *Introspector) Permalink(ctx context.Context, ref Ref) (string, bool) {
	var (
		link string
		err  error
	)
	if ref.Kind == KindTerm {
		link, err = in.host.TermLink(ctx, ref.ID)
	} else {
		link, err = in.host.Permalink(ctx, ref.ID)
	}
	if err != nil {
		in.logErr("permalink", ref, err)
		return "", false
	}
	return link, link != ""
}

// FeaturedImage returns the image URL of ref. Terms store the attachment id
// in their thumbnail_id meta.
func (in *Introspector) FeaturedImage(ctx context.Context, ref Ref) (string, bool) {
	var attachmentID int64
	if ref.Kind == KindTerm {
		raw, err := in.meta.TermMeta(ctx, ref.ID, TermThumbnailKey)
		if err != nil {
			in.logErr("term thumbnail", ref, err)
			return "", false
		}
		if raw == "" {
			return "", false
		}
		attachmentID, err = strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return "", false
		}
	} else {
		e, err := in.host.Entity(ctx, ref.ID)
		if err != nil {
			in.logErr("entity", ref, err)
			return "", false
		}
		attachmentID = e.ThumbnailID
	}
	if attachmentID <= 0 {
		return "", false
	}
	u, err := in.host.AttachmentURL(ctx, attachmentID)
	if err != nil {
		in.logErr("attachment url", ContentRef(attachmentID, TypeAttachment), err)
		return "", false
	}
	return u, u != ""
}

// TaxonomyName returns the name of a term.
func (in *Introspector) TaxonomyName(ctx context.Context, ref Ref) string {
	if ref.Kind != KindTerm {
		return ""
	}
	return in.DefaultTitle(ctx, ref)
}

// TaxonomyDescriptionPlain returns a term description without HTML tags.
func (in *Introspector) TaxonomyDescriptionPlain(ctx context.Context, ref Ref) string {
	if ref.Kind != KindTerm {
		return ""
	}
	t, err := in.host.Term(ctx, ref.ID)
	if err != nil {
		in.logErr("term", ref, err)
		return ""
	}
	return strings.TrimSpace(StripTags(t.Description))
}

// Parent returns the parent entity of a content entity.
func (in *Introspector) Parent(ctx context.Context, ref Ref) (Ref, bool) {
	if ref.Kind != KindContent {
		return Ref{}, false
	}
	e, err := in.host.Entity(ctx, ref.ID)
	if err != nil {
		in.logErr("entity", ref, err)
		return Ref{}, false
	}
	if e.ParentID <= 0 {
		return Ref{}, false
	}
	p, err := in.host.Entity(ctx, e.ParentID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			in.logErr("parent", ref, err)
		}
		return ContentRef(e.ParentID, ""), true
	}
	return ContentRef(p.ID, p.Type), true
}

// Ancestors returns the ancestors of ref, root first.
func (in *Introspector) Ancestors(ctx context.Context, ref Ref) []Ref {
	var chain []Ref
	seen := map[int64]bool{ref.ID: true}
	cur := ref
	for i := 0; i < maxDepth; i++ {
		parentID, typ, ok := in.parentOf(ctx, cur)
		if !ok || seen[parentID] {
			break
		}
		seen[parentID] = true
		cur = Ref{Kind: ref.Kind, ID: parentID, Type: typ}
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (in *Introspector) parentOf(ctx context.Context, ref Ref) (int64, string, bool) {
	if ref.Kind == KindTerm {
		t, err := in.host.Term(ctx, ref.ID)
		if err != nil || t.ParentID <= 0 {
			return 0, "", false
		}
		return t.ParentID, t.Taxonomy, true
	}
	e, err := in.host.Entity(ctx, ref.ID)
	if err != nil || e.ParentID <= 0 {
		return 0, "", false
	}
	p, err := in.host.Entity(ctx, e.ParentID)
	if err != nil {
		return 0, "", false
	}
	return p.ID, p.Type, true
}

// CategoryOf returns the category of an article, chosen by the configured
// tie-break when the article has several.
func (in *Introspector) CategoryOf(ctx context.Context, article Ref) (Term, bool) {
	if article.Kind != KindContent {
		return Term{}, false
	}
	terms, err := in.host.EntityTerms(ctx, article.ID, TaxonomyCategory)
	if err != nil {
		in.logErr("entity terms", article, err)
		return Term{}, false
	}
	if len(terms) == 0 {
		return Term{}, false
	}
	switch in.tieBreak {
	case TieBreakLowestID:
		sort.SliceStable(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	case TieBreakAlphabetic:
		sort.SliceStable(terms, func(i, j int) bool {
			return strings.ToLower(terms[i].Name) < strings.ToLower(terms[j].Name)
		})
	case TieBreakDeepest:
		depth := make(map[int64]int, len(terms))
		for _, t := range terms {
			depth[t.ID] = len(in.Ancestors(ctx, TermRef(t.ID, t.Taxonomy)))
		}
		sort.SliceStable(terms, func(i, j int) bool { return depth[terms[i].ID] > depth[terms[j].ID] })
	}
	return terms[0], true
}

func (in *Introspector) logErr(what string, ref Ref, err error) {
	if errors.Is(err, ErrNotFound) {
		in.log.Debug("host lookup missed", zap.String("what", what), zap.Stringer("kind", ref.Kind), zap.Int64("id", ref.ID))
		return
	}
	in.log.Warn("host lookup failed", zap.String("what", what), zap.Stringer("kind", ref.Kind), zap.Int64("id", ref.ID), zap.Error(err))
}
