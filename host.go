package basicseo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/eringen/basicseo/seo"
	"github.com/eringen/basicseo/sitemap"
)

// uploadsSubdir is where attachment files live under the static directory.
const uploadsSubdir = "uploads"

// Host exposes the store to the SEO and sitemap packages: bodies are
// rendered from markdown and permalinks follow the registered types.
type Host struct {
	store *Store
	cfg   *SiteConfig
	md    goldmark.Markdown
	log   *zap.Logger
}

var (
	_ seo.Host       = (*Host)(nil)
	_ sitemap.Source = (*Host)(nil)
)

// NewHost returns a Host over store.
func NewHost(store *Store, cfg *SiteConfig, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		store: store,
		cfg:   cfg,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:   log,
	}
}

// RenderBody converts a markdown body to HTML.
func (h *Host) RenderBody(body string) string {
	if body == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(body), &buf); err != nil {
		h.log.Warn("render markdown", zap.Error(err))
		return ""
	}
	return buf.String()
}

func (h *Host) toEntity(e Entry) seo.Entity {
	return seo.Entity{
		ID:          e.ID,
		Type:        e.Type,
		Slug:        e.Slug,
		Title:       e.Title,
		Content:     h.RenderBody(e.Body),
		Status:      e.Status,
		ParentID:    e.ParentID,
		ThumbnailID: e.ThumbnailID,
		Modified:    e.Modified,
	}
}

// Entity returns an entry with its body rendered to HTML.
func (h *Host) Entity(ctx context.Context, id int64) (seo.Entity, error) {
	e, err := h.store.GetEntry(ctx, id)
	if err != nil {
		return seo.Entity{}, err
	}
	return h.toEntity(e), nil
}

// Term returns a term.
func (h *Host) Term(ctx context.Context, id int64) (seo.Term, error) {
	return h.store.GetTerm(ctx, id)
}

// Permalink returns the public URL of an entry. Hierarchical types nest
// under their ancestors' slugs; attachments are addressed by id.
func (h *Host) Permalink(ctx context.Context, id int64) (string, error) {
	e, err := h.store.GetEntry(ctx, id)
	if err != nil {
		return "", err
	}
	if h.cfg.FrontPageID > 0 && e.ID == h.cfg.FrontPageID {
		return h.HomeURL("/"), nil
	}
	pt, ok := h.cfg.postType(e.Type)
	if !ok {
		return "", fmt.Errorf("permalink %d: unregistered post type %q", id, e.Type)
	}
	if e.Type == seo.TypeAttachment {
		return h.HomeURL(BuildPath(pt.Base, strconv.FormatInt(e.ID, 10))), nil
	}
	if e.Slug == "" {
		return "", fmt.Errorf("permalink %d: empty slug", id)
	}
	segments := []string{e.Slug}
	if pt.Hierarchical {
		seen := map[int64]bool{e.ID: true}
		for parent := e.ParentID; parent > 0 && !seen[parent]; {
			seen[parent] = true
			p, err := h.store.GetEntry(ctx, parent)
			if err != nil {
				if errors.Is(err, seo.ErrNotFound) {
					break
				}
				return "", err
			}
			segments = append([]string{p.Slug}, segments...)
			parent = p.ParentID
		}
	}
	if pt.Base != "" {
		segments = append([]string{pt.Base}, segments...)
	}
	return h.HomeURL(BuildPath(segments...)), nil
}

// TermLink returns the archive URL of a term.
func (h *Host) TermLink(ctx context.Context, id int64) (string, error) {
	t, err := h.store.GetTerm(ctx, id)
	if err != nil {
		return "", err
	}
	tx, ok := h.cfg.taxonomy(t.Taxonomy)
	if !ok {
		return "", fmt.Errorf("term link %d: unregistered taxonomy %q", id, t.Taxonomy)
	}
	base := tx.Base
	if base == "" {
		base = tx.Name
	}
	return h.HomeURL(BuildPath(base, t.Slug)), nil
}

// AttachmentURL returns the file URL of an attachment.
func (h *Host) AttachmentURL(ctx context.Context, id int64) (string, error) {
	e, err := h.store.GetEntry(ctx, id)
	if err != nil {
		return "", err
	}
	if e.Type != seo.TypeAttachment || e.File == "" {
		return "", fmt.Errorf("attachment %d: %w", id, seo.ErrNotFound)
	}
	return h.HomeURL("/public/" + uploadsSubdir + "/" + e.File), nil
}

// EntityTerms returns the terms of an entry within taxonomy.
func (h *Host) EntityTerms(ctx context.Context, id int64, taxonomy string) ([]seo.Term, error) {
	return h.store.EntryTerms(ctx, id, taxonomy)
}

// HomeURL returns the absolute URL of path on this site.
func (h *Host) HomeURL(path string) string {
	return h.cfg.URL + "/" + strings.TrimLeft(path, "/")
}

// PublicPostTypes returns the names of public post types.
func (h *Host) PublicPostTypes(context.Context) ([]string, error) {
	var out []string
	for _, pt := range h.cfg.PostTypes {
		if pt.Public {
			out = append(out, pt.Name)
		}
	}
	return out, nil
}

// PublicTaxonomies returns the names of public taxonomies.
func (h *Host) PublicTaxonomies(context.Context) ([]string, error) {
	var out []string
	for _, tx := range h.cfg.Taxonomies {
		if tx.Public {
			out = append(out, tx.Name)
		}
	}
	return out, nil
}

// PostTypeExists reports whether name is registered.
func (h *Host) PostTypeExists(_ context.Context, name string) bool {
	_, ok := h.cfg.postType(name)
	return ok
}

// TaxonomyExists reports whether name is registered.
func (h *Host) TaxonomyExists(_ context.Context, name string) bool {
	_, ok := h.cfg.taxonomy(name)
	return ok
}

// CountPublished returns the number of published entries of postType.
func (h *Host) CountPublished(ctx context.Context, postType string) (int, error) {
	return h.store.CountEntries(ctx, postType, StatusPublish)
}

// Published returns the published entries of postType, newest first. Bodies
// are not rendered.
func (h *Host) Published(ctx context.Context, postType string) ([]seo.Entity, error) {
	entries, err := h.store.ListEntries(ctx, postType, StatusPublish)
	if err != nil {
		return nil, err
	}
	out := make([]seo.Entity, len(entries))
	for i, e := range entries {
		out[i] = seo.Entity{ID: e.ID, Type: e.Type, Slug: e.Slug, Title: e.Title, Status: e.Status, ParentID: e.ParentID, Modified: e.Modified}
	}
	return out, nil
}

// Terms returns the non-empty terms of taxonomy.
func (h *Host) Terms(ctx context.Context, taxonomy string, limit int) ([]seo.Term, error) {
	return h.store.ListTerms(ctx, taxonomy, true, limit)
}

// TermLastModified returns the latest modification among a term's members.
func (h *Host) TermLastModified(ctx context.Context, termID int64) (time.Time, error) {
	return h.store.TermMembersModified(ctx, termID)
}
