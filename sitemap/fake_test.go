package sitemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/basicseo/seo"
)

type fakeSource struct {
	postTypes  []string
	taxonomies []string
	entities   map[string][]seo.Entity
	terms      map[string][]seo.Term
	termErr    map[string]error
	termMod    map[int64]time.Time
	noLink     map[int64]bool
	noTermLink map[int64]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		entities:   map[string][]seo.Entity{},
		terms:      map[string][]seo.Term{},
		termErr:    map[string]error{},
		termMod:    map[int64]time.Time{},
		noLink:     map[int64]bool{},
		noTermLink: map[int64]bool{},
	}
}

var errQuery = errors.New("query failed")

func (s *fakeSource) PublicPostTypes(context.Context) ([]string, error) { return s.postTypes, nil }

func (s *fakeSource) PublicTaxonomies(context.Context) ([]string, error) { return s.taxonomies, nil }

func (s *fakeSource) PostTypeExists(_ context.Context, name string) bool {
	return slices.Contains(s.postTypes, name)
}

func (s *fakeSource) TaxonomyExists(_ context.Context, name string) bool {
	return slices.Contains(s.taxonomies, name)
}

func (s *fakeSource) CountPublished(_ context.Context, postType string) (int, error) {
	return len(s.entities[postType]), nil
}

func (s *fakeSource) Published(_ context.Context, postType string) ([]seo.Entity, error) {
	return s.entities[postType], nil
}

func (s *fakeSource) Terms(_ context.Context, taxonomy string, limit int) ([]seo.Term, error) {
	if err := s.termErr[taxonomy]; err != nil {
		return nil, err
	}
	terms := s.terms[taxonomy]
	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	return terms, nil
}

func (s *fakeSource) TermLastModified(_ context.Context, id int64) (time.Time, error) {
	return s.termMod[id], nil
}

func (s *fakeSource) Permalink(_ context.Context, id int64) (string, error) {
	if s.noLink[id] {
		return "", seo.ErrNotFound
	}
	return fmt.Sprintf("https://example.com/p/%d/", id), nil
}

func (s *fakeSource) TermLink(_ context.Context, id int64) (string, error) {
	if s.noTermLink[id] {
		return "", errQuery
	}
	return fmt.Sprintf("https://example.com/t/%d/", id), nil
}

func (s *fakeSource) HomeURL(path string) string {
	return "https://example.com" + path
}

func render(t *testing.T, r Response) string {
	t.Helper()
	require.NotNil(t, r.Body)
	var buf bytes.Buffer
	require.NoError(t, r.Body.Render(context.Background(), &buf))
	return buf.String()
}
