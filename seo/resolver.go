package seo

import (
	"context"

	"go.uber.org/zap"
)

// UntitledTitle stands in when neither an override nor the host has a title.
const UntitledTitle = "(no title)"

// ResolverConfig selects which views get SEO metadata.
type ResolverConfig struct {
	// ShopPageID is the content entity behind the shop index. Zero disables it.
	ShopPageID int64
	// PostTypes are the post types whose singular views are resolved.
	PostTypes []string
	// Taxonomies are the taxonomies whose term archives are resolved.
	Taxonomies []string
}

// DefaultResolverConfig returns the supported articles, pages, products and
// product categories.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		PostTypes:  []string{TypePost, TypePage, TypeProduct},
		Taxonomies: []string{TaxonomyProductCategory},
	}
}

// Resolver computes the effective SEO record of a render context. It keeps
// no state between calls.
type Resolver struct {
	overrides  *OverrideStore
	content    *Introspector
	shopPageID int64
	postTypes  map[string]bool
	taxonomies map[string]bool
	log        *zap.Logger
}

// NewResolver returns a Resolver.
func NewResolver(overrides *OverrideStore, content *Introspector, cfg ResolverConfig, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		overrides:  overrides,
		content:    content,
		shopPageID: cfg.ShopPageID,
		postTypes:  make(map[string]bool, len(cfg.PostTypes)),
		taxonomies: make(map[string]bool, len(cfg.Taxonomies)),
		log:        log,
	}
	for _, t := range cfg.PostTypes {
		r.postTypes[t] = true
	}
	for _, t := range cfg.Taxonomies {
		r.taxonomies[t] = true
	}
	return r
}

// Target returns the entity whose metadata describes rc. The shop ref
// carries the post type the host reported in rc, which may be empty.
func (r *Resolver) Target(rc RenderContext) (Ref, bool) {
	switch rc.View {
	case ViewShop:
		if r.shopPageID > 0 {
			return ContentRef(r.shopPageID, rc.Type), true
		}
	case ViewSingular:
		if rc.EntityID > 0 && r.postTypes[rc.Type] {
			return ContentRef(rc.EntityID, rc.Type), true
		}
	case ViewTaxonomy:
		if rc.EntityID > 0 && r.taxonomies[rc.Type] {
			return TermRef(rc.EntityID, rc.Type), true
		}
	}
	return Ref{}, false
}

// Resolve returns the SEO record for rc, or false when the view carries no
// SEO block (archives, home, search, 404 and unsupported types).
func (r *Resolver) Resolve(ctx context.Context, rc RenderContext) (Record, bool) {
	ref, ok := r.Target(rc)
	if !ok {
		return Record{}, false
	}
	ov := r.overrides.Get(ctx, ref)

	rec := Record{
		OverrideTitle:   ov.Title,
		MetaDescription: ov.Description,
		OGType:          OGTypeWebsite,
	}
	rec.EffectiveTitle = firstNonEmpty(ov.Title, r.content.DefaultTitle(ctx, ref), rc.Title, UntitledTitle)
	rec.OGTitle = rec.EffectiveTitle

	if ov.Description != "" {
		rec.OGDescription = ov.Description
	} else if ref.Kind == KindTerm {
		rec.OGDescription = r.content.TaxonomyDescriptionPlain(ctx, ref)
	} else {
		rec.OGDescription = r.content.BodySnippet(ctx, ref, SnippetWords)
	}

	if link, ok := r.content.Permalink(ctx, ref); ok {
		rec.CanonicalURL = link
	}
	if img, ok := r.content.FeaturedImage(ctx, ref); ok {
		rec.OGImage = img
	}
	return rec, true
}

// DocumentTitle is the title filter: it returns the override title of rc
// when one is stored and current otherwise.
func (r *Resolver) DocumentTitle(ctx context.Context, rc RenderContext, current string) string {
	ref, ok := r.Target(rc)
	if !ok {
		return current
	}
	if t := r.overrides.Get(ctx, ref).Title; t != "" {
		return t
	}
	return current
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
