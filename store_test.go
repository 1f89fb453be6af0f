package basicseo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/basicseo/seo"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustSaveEntry(t *testing.T, s *Store, e Entry) Entry {
	t.Helper()
	if err := s.SaveEntry(context.Background(), &e); err != nil {
		t.Fatalf("SaveEntry(%q) failed: %v", e.Slug, err)
	}
	return e
}

func mustSaveTerm(t *testing.T, s *Store, term seo.Term) seo.Term {
	t.Helper()
	if err := s.SaveTerm(context.Background(), &term); err != nil {
		t.Fatalf("SaveTerm(%q) failed: %v", term.Slug, err)
	}
	return term
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetEntry(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	e := mustSaveEntry(t, s, Entry{
		Type:     seo.TypePost,
		Slug:     "hello",
		Title:    "Hello",
		Body:     "# Hello\n\nWorld.",
		Status:   StatusPublish,
		Modified: modified,
	})
	if e.ID == 0 {
		t.Fatal("expected an id after insert")
	}

	got, err := s.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got.Title != "Hello" || got.Body != e.Body || got.Type != seo.TypePost {
		t.Errorf("GetEntry = %+v, want %+v", got, e)
	}
	if !got.Modified.Equal(modified) {
		t.Errorf("Modified = %v, want %v", got.Modified, modified)
	}
}

func TestSaveEntryUpdateTouchesModified(t *testing.T) {
	s := setupTestStore(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return now }

	e := mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "about", Title: "About", Modified: now.AddDate(-1, 0, 0)})
	e.Title = "About us"
	e = mustSaveEntry(t, s, e)

	got, err := s.GetEntry(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got.Title != "About us" {
		t.Errorf("Title = %q, want %q", got.Title, "About us")
	}
	if !got.Modified.Equal(now) {
		t.Errorf("Modified = %v, want %v", got.Modified, now)
	}
}

func TestSaveEntryMissingUpdate(t *testing.T) {
	s := setupTestStore(t)
	err := s.SaveEntry(context.Background(), &Entry{ID: 99, Type: seo.TypePost, Slug: "x"})
	if !errors.Is(err, seo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetEntry(context.Background(), 42); !errors.Is(err, seo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryBySlugUsesParent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	about := mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "about", Title: "About"})
	team := mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "team", Title: "Team", ParentID: about.ID})
	mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "team", Title: "Root team"})

	got, err := s.EntryBySlug(ctx, seo.TypePage, "team", about.ID)
	if err != nil {
		t.Fatalf("EntryBySlug failed: %v", err)
	}
	if got.ID != team.ID {
		t.Errorf("EntryBySlug returned %d, want %d", got.ID, team.ID)
	}
	if _, err := s.EntryBySlug(ctx, seo.TypePost, "team", 0); !errors.Is(err, seo.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other type, got %v", err)
	}
}

func TestListAndCountEntries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "old", Title: "Old", Modified: base})
	mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "new", Title: "New", Modified: base.AddDate(0, 1, 0)})
	mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "draft", Title: "Draft", Status: StatusDraft, Modified: base})
	mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "page", Title: "Page", Modified: base})

	posts, err := s.ListEntries(ctx, seo.TypePost, StatusPublish)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(posts) != 2 || posts[0].Slug != "new" || posts[1].Slug != "old" {
		t.Fatalf("ListEntries = %+v, want new then old", posts)
	}

	all, err := s.ListEntries(ctx, "", "")
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 entries, got %d", len(all))
	}

	n, err := s.CountEntries(ctx, seo.TypePost, StatusPublish)
	if err != nil {
		t.Fatalf("CountEntries failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountEntries = %d, want 2", n)
	}
}

func TestSearchEntries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "widgets", Title: "Widgets", Body: "All about gadgets"})
	mustSaveEntry(t, s, Entry{Type: seo.TypeProduct, Slug: "gizmo", Title: "Gizmo", Body: "A 100% gadget"})
	mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "hidden", Title: "Gadget draft", Status: StatusDraft})

	got, err := s.SearchEntries(ctx, "GADGET", []string{seo.TypePost, seo.TypeProduct})
	if err != nil {
		t.Fatalf("SearchEntries failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 published matches, got %d", len(got))
	}

	got, err = s.SearchEntries(ctx, "100%", []string{seo.TypePost, seo.TypeProduct})
	if err != nil {
		t.Fatalf("SearchEntries failed: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "gizmo" {
		t.Errorf("expected literal %% match on gizmo, got %+v", got)
	}
}

func TestDeleteEntryCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	parent := mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "a", Title: "A"})
	mid := mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "b", Title: "B", ParentID: parent.ID})
	child := mustSaveEntry(t, s, Entry{Type: seo.TypePage, Slug: "c", Title: "C", ParentID: mid.ID})
	img := mustSaveEntry(t, s, Entry{Type: seo.TypeAttachment, Slug: "img", File: "img.jpg", Status: StatusInherit, ParentID: mid.ID})
	if err := s.SetThumbnail(ctx, parent.ID, img.ID); err != nil {
		t.Fatalf("SetThumbnail failed: %v", err)
	}
	cat := mustSaveTerm(t, s, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "news", Name: "News"})
	if err := s.SetEntryTerms(ctx, mid.ID, seo.TaxonomyCategory, []int64{cat.ID}); err != nil {
		t.Fatalf("SetEntryTerms failed: %v", err)
	}
	if err := s.SetPostMeta(ctx, mid.ID, seo.PostTitleKey, "Custom"); err != nil {
		t.Fatalf("SetPostMeta failed: %v", err)
	}

	if err := s.DeleteEntry(ctx, mid.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if _, err := s.GetEntry(ctx, mid.ID); !errors.Is(err, seo.ErrNotFound) {
		t.Errorf("expected deleted entry to be gone, got %v", err)
	}
	got, _ := s.GetEntry(ctx, child.ID)
	if got.ParentID != parent.ID {
		t.Errorf("child ParentID = %d, want %d", got.ParentID, parent.ID)
	}
	if v, _ := s.PostMeta(ctx, mid.ID, seo.PostTitleKey); v != "" {
		t.Errorf("expected meta to be deleted, got %q", v)
	}
	term, _ := s.GetTerm(ctx, cat.ID)
	if term.Count != 0 {
		t.Errorf("term Count = %d, want 0", term.Count)
	}

	if err := s.DeleteEntry(ctx, img.ID); err != nil {
		t.Fatalf("DeleteEntry(attachment) failed: %v", err)
	}
	got, _ = s.GetEntry(ctx, parent.ID)
	if got.ThumbnailID != 0 {
		t.Errorf("ThumbnailID = %d, want 0 after attachment delete", got.ThumbnailID)
	}
}

func TestDeleteNonexistentEntry(t *testing.T) {
	s := setupTestStore(t)
	if err := s.DeleteEntry(context.Background(), 7); !errors.Is(err, seo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTermsAndRelationships(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	zebra := mustSaveTerm(t, s, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "zebra", Name: "Zebra"})
	apple := mustSaveTerm(t, s, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "apple", Name: "Apple"})
	empty := mustSaveTerm(t, s, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "empty", Name: "Empty"})
	tag := mustSaveTerm(t, s, seo.Term{Taxonomy: seo.TaxonomyTag, Slug: "go", Name: "Go"})

	post := mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "p", Title: "P"})
	draft := mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "d", Title: "D", Status: StatusDraft})
	if err := s.SetEntryTerms(ctx, post.ID, seo.TaxonomyCategory, []int64{zebra.ID, apple.ID}); err != nil {
		t.Fatalf("SetEntryTerms failed: %v", err)
	}
	if err := s.SetEntryTerms(ctx, post.ID, seo.TaxonomyTag, []int64{tag.ID}); err != nil {
		t.Fatalf("SetEntryTerms failed: %v", err)
	}
	if err := s.SetEntryTerms(ctx, draft.ID, seo.TaxonomyCategory, []int64{empty.ID}); err != nil {
		t.Fatalf("SetEntryTerms failed: %v", err)
	}

	cats, err := s.EntryTerms(ctx, post.ID, seo.TaxonomyCategory)
	if err != nil {
		t.Fatalf("EntryTerms failed: %v", err)
	}
	if len(cats) != 2 || cats[0].ID != zebra.ID || cats[1].ID != apple.ID {
		t.Fatalf("EntryTerms = %+v, want zebra then apple", cats)
	}

	nonEmpty, err := s.ListTerms(ctx, seo.TaxonomyCategory, true, 0)
	if err != nil {
		t.Fatalf("ListTerms failed: %v", err)
	}
	if len(nonEmpty) != 2 {
		t.Errorf("expected 2 non-empty categories (drafts do not count), got %d", len(nonEmpty))
	}
	limited, err := s.ListTerms(ctx, seo.TaxonomyCategory, true, 1)
	if err != nil {
		t.Fatalf("ListTerms failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit 1 to return one term, got %d", len(limited))
	}
	all, _ := s.ListTerms(ctx, seo.TaxonomyCategory, false, 0)
	if len(all) != 3 {
		t.Errorf("expected 3 categories, got %d", len(all))
	}

	// Replacing categories keeps the tag.
	if err := s.SetEntryTerms(ctx, post.ID, seo.TaxonomyCategory, []int64{apple.ID}); err != nil {
		t.Fatalf("SetEntryTerms failed: %v", err)
	}
	tags, _ := s.EntryTerms(ctx, post.ID, seo.TaxonomyTag)
	if len(tags) != 1 {
		t.Errorf("expected tag to survive category update, got %d", len(tags))
	}

	got, err := s.TermBySlug(ctx, seo.TaxonomyCategory, "apple")
	if err != nil {
		t.Fatalf("TermBySlug failed: %v", err)
	}
	if got.ID != apple.ID || got.Count != 1 {
		t.Errorf("TermBySlug = %+v", got)
	}
}

func TestTermMembersModified(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	cat := mustSaveTerm(t, s, seo.Term{Taxonomy: seo.TaxonomyCategory, Slug: "news", Name: "News"})
	a := mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "a", Title: "A", Modified: base})
	b := mustSaveEntry(t, s, Entry{Type: seo.TypePost, Slug: "b", Title: "B", Modified: base.Add(48 * time.Hour)})
	for _, e := range []Entry{a, b} {
		if err := s.SetEntryTerms(ctx, e.ID, seo.TaxonomyCategory, []int64{cat.ID}); err != nil {
			t.Fatalf("SetEntryTerms failed: %v", err)
		}
	}

	got, err := s.TermMembersModified(ctx, cat.ID)
	if err != nil {
		t.Fatalf("TermMembersModified failed: %v", err)
	}
	if !got.Equal(base.Add(48 * time.Hour)) {
		t.Errorf("TermMembersModified = %v, want %v", got, base.Add(48*time.Hour))
	}
}

func TestMetaCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if v, err := s.PostMeta(ctx, 1, "k"); err != nil || v != "" {
		t.Fatalf("missing key = %q, %v; want empty, nil", v, err)
	}
	if err := s.SetPostMeta(ctx, 1, "k", "one"); err != nil {
		t.Fatalf("SetPostMeta failed: %v", err)
	}
	if err := s.SetPostMeta(ctx, 1, "k", "two"); err != nil {
		t.Fatalf("SetPostMeta upsert failed: %v", err)
	}
	if v, _ := s.PostMeta(ctx, 1, "k"); v != "two" {
		t.Errorf("PostMeta = %q, want %q", v, "two")
	}
	if err := s.DeletePostMeta(ctx, 1, "k"); err != nil {
		t.Fatalf("DeletePostMeta failed: %v", err)
	}
	if v, _ := s.PostMeta(ctx, 1, "k"); v != "" {
		t.Errorf("PostMeta after delete = %q", v)
	}

	if err := s.SetTermMeta(ctx, 3, seo.TermThumbnailKey, "9"); err != nil {
		t.Fatalf("SetTermMeta failed: %v", err)
	}
	if v, _ := s.TermMeta(ctx, 3, seo.TermThumbnailKey); v != "9" {
		t.Errorf("TermMeta = %q, want 9", v)
	}
	if v, _ := s.PostMeta(ctx, 3, seo.TermThumbnailKey); v != "" {
		t.Errorf("term meta must not leak into post meta, got %q", v)
	}
	if err := s.DeleteTermMeta(ctx, 3, seo.TermThumbnailKey); err != nil {
		t.Fatalf("DeleteTermMeta failed: %v", err)
	}
}

func TestDeleteTermRemovesMeta(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	term := mustSaveTerm(t, s, seo.Term{Taxonomy: seo.TaxonomyProductCategory, Slug: "shoes", Name: "Shoes"})
	if err := s.SetTermMeta(ctx, term.ID, seo.TermTitleKey, "Shoes on sale"); err != nil {
		t.Fatalf("SetTermMeta failed: %v", err)
	}
	if err := s.DeleteTerm(ctx, term.ID); err != nil {
		t.Fatalf("DeleteTerm failed: %v", err)
	}
	if v, _ := s.TermMeta(ctx, term.ID, seo.TermTitleKey); v != "" {
		t.Errorf("expected term meta to be deleted, got %q", v)
	}
	if _, err := s.GetTerm(ctx, term.ID); !errors.Is(err, seo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
