package seo

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Meta keys. They are versioned so stored overrides survive upgrades.
const (
	PostTitleKey = "basicseotorvald_v1_post_title"
	PostDescKey  = "basicseotorvald_v1_post_desc"
	TermTitleKey = "basicseotorvald_v1_term_title"
	TermDescKey  = "basicseotorvald_v1_term_desc"

	// TermThumbnailKey holds the attachment id of a term's image.
	TermThumbnailKey = "thumbnail_id"
)

// OverrideStore reads and writes title/description overrides through the
// host's meta store. Reads never fail; a host error reads as "no override".
type OverrideStore struct {
	meta MetaStore
	log  *zap.Logger
}

// NewOverrideStore returns an OverrideStore over meta.
func NewOverrideStore(meta MetaStore, log *zap.Logger) *OverrideStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &OverrideStore{meta: meta, log: log}
}

// GetPostOverride returns the overrides of a content entity.
func (s *OverrideStore) GetPostOverride(ctx context.Context, id int64) OverrideRecord {
	return OverrideRecord{
		Title:       s.read(ctx, KindContent, id, PostTitleKey),
		Description: s.read(ctx, KindContent, id, PostDescKey),
	}
}

// GetTermOverride returns the overrides of a taxonomy term.
func (s *OverrideStore) GetTermOverride(ctx context.Context, id int64) OverrideRecord {
	return OverrideRecord{
		Title:       s.read(ctx, KindTerm, id, TermTitleKey),
		Description: s.read(ctx, KindTerm, id, TermDescKey),
	}
}

// Get returns the overrides of ref.
func (s *OverrideStore) Get(ctx context.Context, ref Ref) OverrideRecord {
	if ref.Kind == KindTerm {
		return s.GetTermOverride(ctx, ref.ID)
	}
	return s.GetPostOverride(ctx, ref.ID)
}

// PutPostOverride replaces the overrides of a content entity. Both slots are
// deleted first and only non-empty submitted values are written back, so a
// field cleared in the editor is removed from the store.
//
// The delete and the writes are separate host calls; a concurrent reader may
// observe the cleared state.
func (s *OverrideStore) PutPostOverride(ctx context.Context, id int64, in OverrideInput) error {
	var errs []error
	for _, key := range []string{PostTitleKey, PostDescKey} {
		if err := s.meta.DeletePostMeta(ctx, id, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if in.Title != nil {
		if v := SanitizeText(*in.Title); v != "" {
			if err := s.meta.SetPostMeta(ctx, id, PostTitleKey, v); err != nil {
				errs = append(errs, fmt.Errorf("set %s: %w", PostTitleKey, err))
			}
		}
	}
	if in.Description != nil {
		if v := SanitizeTextarea(*in.Description); v != "" {
			if err := s.meta.SetPostMeta(ctx, id, PostDescKey, v); err != nil {
				errs = append(errs, fmt.Errorf("set %s: %w", PostDescKey, err))
			}
		}
	}
	return errors.Join(errs...)
}

// PutTermOverride upserts the overrides of a term. Submitted fields are
// written (an empty value clears the override); nil fields are left alone.
func (s *OverrideStore) PutTermOverride(ctx context.Context, id int64, in OverrideInput) error {
	var errs []error
	if in.Title != nil {
		if err := s.meta.SetTermMeta(ctx, id, TermTitleKey, SanitizeText(*in.Title)); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", TermTitleKey, err))
		}
	}
	if in.Description != nil {
		if err := s.meta.SetTermMeta(ctx, id, TermDescKey, SanitizeTextarea(*in.Description)); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", TermDescKey, err))
		}
	}
	return errors.Join(errs...)
}

func (s *OverrideStore) read(ctx context.Context, kind EntityKind, id int64, key string) string {
	var (
		v   string
		err error
	)
	if kind == KindTerm {
		v, err = s.meta.TermMeta(ctx, id, key)
	} else {
		v, err = s.meta.PostMeta(ctx, id, key)
	}
	if err != nil {
		s.log.Warn("read override",
			zap.Stringer("kind", kind),
			zap.Int64("id", id),
			zap.String("key", key),
			zap.Error(err))
		return ""
	}
	return v
}
