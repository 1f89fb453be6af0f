// Package sitemap renders the sitemap index and its per-type and
// per-taxonomy sections, and maps sitemap request paths to responses.
package sitemap

import (
	"context"
	"time"

	"github.com/eringen/basicseo/seo"
)

// Source is the read-only view of the host that sitemaps are built from.
type Source interface {
	PublicPostTypes(ctx context.Context) ([]string, error)
	PublicTaxonomies(ctx context.Context) ([]string, error)
	PostTypeExists(ctx context.Context, name string) bool
	TaxonomyExists(ctx context.Context, name string) bool

	// CountPublished returns the number of published entities of postType.
	CountPublished(ctx context.Context, postType string) (int, error)
	// Published returns every published entity of postType, most recently
	// modified first.
	Published(ctx context.Context, postType string) ([]seo.Entity, error)
	// Terms returns the terms of taxonomy with at least one published
	// member. limit <= 0 means no limit.
	Terms(ctx context.Context, taxonomy string, limit int) ([]seo.Term, error)
	// TermLastModified returns the latest modification time among the
	// published members of a term.
	TermLastModified(ctx context.Context, termID int64) (time.Time, error)

	Permalink(ctx context.Context, id int64) (string, error)
	TermLink(ctx context.Context, id int64) (string, error)
	HomeURL(path string) string
}
