package basicseo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/basicseo/seo"
)

// Fixtures is a YAML content bundle. Entries and terms refer to each other
// by key; parents must be listed before their children.
type Fixtures struct {
	Terms   []TermFixture  `yaml:"terms"`
	Entries []EntryFixture `yaml:"entries"`
}

// TermFixture describes one taxonomy term.
type TermFixture struct {
	Key         string      `yaml:"key"`
	Taxonomy    string      `yaml:"taxonomy"`
	Name        string      `yaml:"name"`
	Slug        string      `yaml:"slug"`
	Description string      `yaml:"description"`
	Parent      string      `yaml:"parent"`
	Thumbnail   string      `yaml:"thumbnail"` // entry key of an attachment
	SEO         *SEOFixture `yaml:"seo"`
}

// EntryFixture describes one content entry.
type EntryFixture struct {
	Key       string      `yaml:"key"`
	Type      string      `yaml:"type"`
	Title     string      `yaml:"title"`
	Slug      string      `yaml:"slug"`
	Status    string      `yaml:"status"`
	Parent    string      `yaml:"parent"`
	Body      string      `yaml:"body"`
	File      string      `yaml:"file"`
	Thumbnail string      `yaml:"thumbnail"`
	Terms     []string    `yaml:"terms"`
	Modified  time.Time   `yaml:"modified"`
	SEO       *SEOFixture `yaml:"seo"`
}

// SEOFixture holds overrides to store with an entry or term.
type SEOFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// ImportResult maps fixture keys to the ids they were stored under.
type ImportResult struct {
	Entries map[string]int64
	Terms   map[string]int64
}

// ImportFixtures reads a YAML bundle from r and writes it to store.
// Overrides go through the override store, so they are sanitised the same
// way editor input is.
func ImportFixtures(ctx context.Context, store *Store, r io.Reader, log *zap.Logger) (ImportResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := ImportResult{Entries: map[string]int64{}, Terms: map[string]int64{}}

	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return res, fmt.Errorf("import: parse fixtures: %w", err)
	}
	overrides := seo.NewOverrideStore(store, log)

	for i, f := range fx.Terms {
		t := seo.Term{
			Taxonomy:    f.Taxonomy,
			Name:        f.Name,
			Slug:        f.Slug,
			Description: f.Description,
		}
		if t.Slug == "" {
			t.Slug = Slugify(f.Name)
		}
		if t.Taxonomy == "" || t.Slug == "" {
			return res, fmt.Errorf("import: term %d (%q): taxonomy and name are required", i, f.Key)
		}
		if f.Parent != "" {
			id, ok := res.Terms[f.Parent]
			if !ok {
				return res, fmt.Errorf("import: term %q: unknown parent %q", f.Key, f.Parent)
			}
			t.ParentID = id
		}
		if err := store.SaveTerm(ctx, &t); err != nil {
			return res, fmt.Errorf("import: save term %q: %w", f.Key, err)
		}
		if f.Key != "" {
			res.Terms[f.Key] = t.ID
		}
		if f.SEO != nil {
			in := seo.OverrideInput{Title: &f.SEO.Title, Description: &f.SEO.Description}
			if err := overrides.PutTermOverride(ctx, t.ID, in); err != nil {
				return res, fmt.Errorf("import: term %q overrides: %w", f.Key, err)
			}
		}
	}

	for i, f := range fx.Entries {
		e := Entry{
			Type:     f.Type,
			Title:    f.Title,
			Slug:     f.Slug,
			Status:   f.Status,
			Body:     f.Body,
			File:     f.File,
			Modified: f.Modified,
		}
		if e.Type == "" {
			e.Type = seo.TypePost
		}
		if e.Slug == "" {
			e.Slug = Slugify(f.Title)
		}
		switch {
		case e.Type == seo.TypeAttachment:
			e.Status = StatusInherit
		case e.Status == "":
			e.Status = StatusPublish
		}
		if e.Slug == "" {
			return res, fmt.Errorf("import: entry %d (%q): title or slug is required", i, f.Key)
		}
		if f.Parent != "" {
			id, ok := res.Entries[f.Parent]
			if !ok {
				return res, fmt.Errorf("import: entry %q: unknown parent %q", f.Key, f.Parent)
			}
			e.ParentID = id
		}
		if err := store.SaveEntry(ctx, &e); err != nil {
			return res, fmt.Errorf("import: save entry %q: %w", f.Key, err)
		}
		if f.Key != "" {
			res.Entries[f.Key] = e.ID
		}

		byTaxonomy := map[string][]int64{}
		var order []string
		for _, key := range f.Terms {
			id, ok := res.Terms[key]
			if !ok {
				return res, fmt.Errorf("import: entry %q: unknown term %q", f.Key, key)
			}
			tax := termTaxonomy(fx.Terms, key)
			if _, seen := byTaxonomy[tax]; !seen {
				order = append(order, tax)
			}
			byTaxonomy[tax] = append(byTaxonomy[tax], id)
		}
		for _, tax := range order {
			if err := store.SetEntryTerms(ctx, e.ID, tax, byTaxonomy[tax]); err != nil {
				return res, fmt.Errorf("import: entry %q terms: %w", f.Key, err)
			}
		}

		if f.SEO != nil {
			in := seo.OverrideInput{Title: &f.SEO.Title, Description: &f.SEO.Description}
			if err := overrides.PutPostOverride(ctx, e.ID, in); err != nil {
				return res, fmt.Errorf("import: entry %q overrides: %w", f.Key, err)
			}
		}
	}

	// Thumbnails may point at attachments listed later.
	for _, f := range fx.Entries {
		if f.Thumbnail == "" {
			continue
		}
		thumb, ok := res.Entries[f.Thumbnail]
		if !ok {
			return res, fmt.Errorf("import: entry %q: unknown thumbnail %q", f.Key, f.Thumbnail)
		}
		if err := store.SetThumbnail(ctx, res.Entries[f.Key], thumb); err != nil {
			return res, fmt.Errorf("import: entry %q thumbnail: %w", f.Key, err)
		}
	}
	for _, f := range fx.Terms {
		if f.Thumbnail == "" {
			continue
		}
		thumb, ok := res.Entries[f.Thumbnail]
		if !ok {
			return res, fmt.Errorf("import: term %q: unknown thumbnail %q", f.Key, f.Thumbnail)
		}
		if err := store.SetTermMeta(ctx, res.Terms[f.Key], seo.TermThumbnailKey, fmt.Sprint(thumb)); err != nil {
			return res, fmt.Errorf("import: term %q thumbnail: %w", f.Key, err)
		}
	}

	log.Info("imported fixtures", zap.Int("terms", len(res.Terms)), zap.Int("entries", len(res.Entries)))
	return res, nil
}

func termTaxonomy(terms []TermFixture, key string) string {
	for _, t := range terms {
		if t.Key == key {
			return t.Taxonomy
		}
	}
	return ""
}
