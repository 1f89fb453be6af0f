package seo

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type fakeHost struct {
	entities  map[int64]Entity
	terms     map[int64]Term
	links     map[int64]string
	termLinks map[int64]string
	images    map[int64]string
	relations map[int64][]int64
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		entities:  map[int64]Entity{},
		terms:     map[int64]Term{},
		links:     map[int64]string{},
		termLinks: map[int64]string{},
		images:    map[int64]string{},
		relations: map[int64][]int64{},
	}
}

func (h *fakeHost) addEntity(e Entity) {
	h.entities[e.ID] = e
	h.links[e.ID] = fmt.Sprintf("https://example.com/%s/", e.Slug)
}

func (h *fakeHost) addTerm(t Term) {
	h.terms[t.ID] = t
	h.termLinks[t.ID] = fmt.Sprintf("https://example.com/%s/%s/", t.Taxonomy, t.Slug)
}

func (h *fakeHost) Entity(_ context.Context, id int64) (Entity, error) {
	e, ok := h.entities[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return e, nil
}

func (h *fakeHost) Term(_ context.Context, id int64) (Term, error) {
	t, ok := h.terms[id]
	if !ok {
		return Term{}, ErrNotFound
	}
	return t, nil
}

func (h *fakeHost) Permalink(_ context.Context, id int64) (string, error) {
	l, ok := h.links[id]
	if !ok {
		return "", ErrNotFound
	}
	return l, nil
}

func (h *fakeHost) TermLink(_ context.Context, id int64) (string, error) {
	l, ok := h.termLinks[id]
	if !ok {
		return "", ErrNotFound
	}
	return l, nil
}

func (h *fakeHost) AttachmentURL(_ context.Context, id int64) (string, error) {
	u, ok := h.images[id]
	if !ok {
		return "", ErrNotFound
	}
	return u, nil
}

func (h *fakeHost) EntityTerms(_ context.Context, id int64, taxonomy string) ([]Term, error) {
	var out []Term
	for _, tid := range h.relations[id] {
		if t, ok := h.terms[tid]; ok && t.Taxonomy == taxonomy {
			out = append(out, t)
		}
	}
	return out, nil
}

func (h *fakeHost) HomeURL(path string) string {
	return "https://example.com/" + strings.TrimPrefix(path, "/")
}

type metaKey struct {
	id  int64
	key string
}

type fakeMeta struct {
	post    map[metaKey]string
	term    map[metaKey]string
	failGet bool
	failSet bool
	calls   []string
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{post: map[metaKey]string{}, term: map[metaKey]string{}}
}

var errBoom = errors.New("boom")

func (m *fakeMeta) PostMeta(_ context.Context, id int64, key string) (string, error) {
	if m.failGet {
		return "", errBoom
	}
	return m.post[metaKey{id, key}], nil
}

func (m *fakeMeta) SetPostMeta(_ context.Context, id int64, key, value string) error {
	m.calls = append(m.calls, "set "+key)
	if m.failSet {
		return errBoom
	}
	m.post[metaKey{id, key}] = value
	return nil
}

func (m *fakeMeta) DeletePostMeta(_ context.Context, id int64, key string) error {
	m.calls = append(m.calls, "delete "+key)
	delete(m.post, metaKey{id, key})
	return nil
}

func (m *fakeMeta) TermMeta(_ context.Context, id int64, key string) (string, error) {
	if m.failGet {
		return "", errBoom
	}
	return m.term[metaKey{id, key}], nil
}

func (m *fakeMeta) SetTermMeta(_ context.Context, id int64, key, value string) error {
	m.calls = append(m.calls, "set "+key)
	if m.failSet {
		return errBoom
	}
	m.term[metaKey{id, key}] = value
	return nil
}

func (m *fakeMeta) DeleteTermMeta(_ context.Context, id int64, key string) error {
	m.calls = append(m.calls, "delete "+key)
	delete(m.term, metaKey{id, key})
	return nil
}

func strPtr(s string) *string { return &s }

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%d", i+1)
	}
	return strings.Join(w, " ")
}
