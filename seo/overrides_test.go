package seo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutPostOverrideDeletesBeforeSet(t *testing.T) {
	meta := newFakeMeta()
	s := NewOverrideStore(meta, nil)
	ctx := context.Background()

	require.NoError(t, s.PutPostOverride(ctx, 42, OverrideInput{
		Title:       strPtr("Best Widgets 2024"),
		Description: strPtr("All the widgets."),
	}))

	assert.Equal(t, []string{
		"delete " + PostTitleKey,
		"delete " + PostDescKey,
		"set " + PostTitleKey,
		"set " + PostDescKey,
	}, meta.calls)
	assert.Equal(t, OverrideRecord{Title: "Best Widgets 2024", Description: "All the widgets."}, s.GetPostOverride(ctx, 42))
}

func TestPutPostOverrideEmptyTitleClears(t *testing.T) {
	meta := newFakeMeta()
	s := NewOverrideStore(meta, nil)
	ctx := context.Background()

	require.NoError(t, s.PutPostOverride(ctx, 7, OverrideInput{Title: strPtr("Old"), Description: strPtr("Old desc")}))
	require.NoError(t, s.PutPostOverride(ctx, 7, OverrideInput{Title: strPtr(""), Description: strPtr("New desc")}))

	got := s.GetPostOverride(ctx, 7)
	assert.Empty(t, got.Title)
	assert.Equal(t, "New desc", got.Description)
	_, stored := meta.post[metaKey{7, PostTitleKey}]
	assert.False(t, stored, "cleared title must not stay in the store")
}

func TestPutPostOverrideMissingFieldsAreRemoved(t *testing.T) {
	meta := newFakeMeta()
	s := NewOverrideStore(meta, nil)
	ctx := context.Background()

	require.NoError(t, s.PutPostOverride(ctx, 3, OverrideInput{Title: strPtr("T"), Description: strPtr("D")}))
	require.NoError(t, s.PutPostOverride(ctx, 3, OverrideInput{}))

	assert.Equal(t, OverrideRecord{}, s.GetPostOverride(ctx, 3))
}

func TestPutPostOverrideStoresPlainText(t *testing.T) {
	meta := newFakeMeta()
	s := NewOverrideStore(meta, nil)
	ctx := context.Background()

	require.NoError(t, s.PutPostOverride(ctx, 1, OverrideInput{
		Title:       strPtr("  <b>Bold</b>   title  "),
		Description: strPtr("line one<script>x()</script>\r\nline   two"),
	}))

	got := s.GetPostOverride(ctx, 1)
	assert.Equal(t, "Bold title", got.Title)
	assert.Equal(t, "line one\nline two", got.Description)
}

func TestPutTermOverrideUpserts(t *testing.T) {
	meta := newFakeMeta()
	s := NewOverrideStore(meta, nil)
	ctx := context.Background()

	require.NoError(t, s.PutTermOverride(ctx, 5, OverrideInput{Title: strPtr("Shoes"), Description: strPtr("All shoes")}))
	require.NoError(t, s.PutTermOverride(ctx, 5, OverrideInput{Title: strPtr("Running shoes")}))

	assert.Equal(t, OverrideRecord{Title: "Running shoes", Description: "All shoes"}, s.GetTermOverride(ctx, 5))
	for _, c := range meta.calls {
		assert.NotContains(t, c, "delete", "term saves never delete")
	}
}

func TestPutTermOverrideEmptyClears(t *testing.T) {
	meta := newFakeMeta()
	s := NewOverrideStore(meta, nil)
	ctx := context.Background()

	require.NoError(t, s.PutTermOverride(ctx, 5, OverrideInput{Title: strPtr("Shoes")}))
	require.NoError(t, s.PutTermOverride(ctx, 5, OverrideInput{Title: strPtr("")}))

	assert.Empty(t, s.GetTermOverride(ctx, 5).Title)
}

func TestGetOverrideHostErrorReadsAsAbsent(t *testing.T) {
	meta := newFakeMeta()
	meta.post[metaKey{1, PostTitleKey}] = "Stored"
	meta.failGet = true
	s := NewOverrideStore(meta, nil)

	assert.Equal(t, OverrideRecord{}, s.GetPostOverride(context.Background(), 1))
	assert.Equal(t, OverrideRecord{}, s.GetTermOverride(context.Background(), 1))
}

func TestPutOverrideReportsHostError(t *testing.T) {
	meta := newFakeMeta()
	meta.failSet = true
	s := NewOverrideStore(meta, nil)

	err := s.PutPostOverride(context.Background(), 1, OverrideInput{Title: strPtr("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}
