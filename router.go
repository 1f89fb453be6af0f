package basicseo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/eringen/basicseo/seo"
)

// Route maps a public request path to a render context. Unknown paths and
// unpublished entries yield ViewNotFound; only store failures are errors.
func (h *Host) Route(ctx context.Context, path string) (seo.RenderContext, error) {
	segs := FilterEmpty(strings.Split(path, "/"))
	if len(segs) == 0 {
		return h.front(ctx)
	}

	if len(segs) == 2 {
		for _, tx := range h.cfg.Taxonomies {
			base := tx.Base
			if base == "" {
				base = tx.Name
			}
			if segs[0] != base {
				continue
			}
			t, err := h.store.TermBySlug(ctx, tx.Name, segs[1])
			if err != nil {
				return missing(err)
			}
			return seo.RenderContext{View: seo.ViewTaxonomy, EntityID: t.ID, Type: tx.Name, Title: t.Name}, nil
		}
		for _, pt := range h.cfg.PostTypes {
			if pt.Base == "" || segs[0] != pt.Base {
				continue
			}
			if pt.Name == seo.TypeAttachment {
				return h.attachment(ctx, segs[1])
			}
			e, err := h.store.EntryBySlug(ctx, pt.Name, segs[1], 0)
			if err != nil {
				return missing(err)
			}
			return h.singular(e), nil
		}
	}

	for _, pt := range h.cfg.PostTypes {
		if pt.Base != "" {
			continue
		}
		if !pt.Hierarchical {
			if len(segs) != 1 {
				continue
			}
			e, err := h.store.EntryBySlug(ctx, pt.Name, segs[0], 0)
			if errors.Is(err, seo.ErrNotFound) {
				continue
			}
			if err != nil {
				return seo.RenderContext{}, err
			}
			return h.singular(e), nil
		}
		var parent int64
		var e Entry
		var err error
		for _, s := range segs {
			e, err = h.store.EntryBySlug(ctx, pt.Name, s, parent)
			if err != nil {
				break
			}
			parent = e.ID
		}
		if errors.Is(err, seo.ErrNotFound) {
			continue
		}
		if err != nil {
			return seo.RenderContext{}, err
		}
		return h.singular(e), nil
	}
	return seo.RenderContext{View: seo.ViewNotFound}, nil
}

func (h *Host) front(ctx context.Context) (seo.RenderContext, error) {
	if h.cfg.FrontPageID > 0 {
		e, err := h.store.GetEntry(ctx, h.cfg.FrontPageID)
		if err == nil && e.Status == StatusPublish {
			return seo.RenderContext{View: seo.ViewSingular, EntityID: e.ID, Type: e.Type, Title: e.Title, FrontPage: true}, nil
		}
		if err != nil && !errors.Is(err, seo.ErrNotFound) {
			return seo.RenderContext{}, err
		}
	}
	return seo.RenderContext{View: seo.ViewHome, FrontPage: true}, nil
}

func (h *Host) singular(e Entry) seo.RenderContext {
	if e.Status != StatusPublish {
		return seo.RenderContext{View: seo.ViewNotFound}
	}
	rc := seo.RenderContext{View: seo.ViewSingular, EntityID: e.ID, Type: e.Type, Title: e.Title}
	switch {
	case h.cfg.ShopPageID > 0 && e.ID == h.cfg.ShopPageID:
		rc.View = seo.ViewShop
	case h.cfg.FrontPageID > 0 && e.ID == h.cfg.FrontPageID:
		rc.FrontPage = true
	}
	return rc
}

func (h *Host) attachment(ctx context.Context, raw string) (seo.RenderContext, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return seo.RenderContext{View: seo.ViewNotFound}, nil
	}
	e, err := h.store.GetEntry(ctx, id)
	if err != nil {
		return missing(err)
	}
	if e.Type != seo.TypeAttachment {
		return seo.RenderContext{View: seo.ViewNotFound}, nil
	}
	return seo.RenderContext{View: seo.ViewAttachment, EntityID: e.ID, Type: e.Type, Title: e.Title}, nil
}

func missing(err error) (seo.RenderContext, error) {
	if errors.Is(err, seo.ErrNotFound) {
		return seo.RenderContext{View: seo.ViewNotFound}, nil
	}
	return seo.RenderContext{}, err
}
