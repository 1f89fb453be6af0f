package seo

import (
	"context"
	"net/http"
)

// Redirect is an HTTP redirect decided by the package.
type Redirect struct {
	Status   int
	Location string
}

// AttachmentCanonicalizer sends attachment pages to the content they belong to.
type AttachmentCanonicalizer struct {
	content *Introspector
}

// NewAttachmentCanonicalizer returns an AttachmentCanonicalizer.
func NewAttachmentCanonicalizer(content *Introspector) *AttachmentCanonicalizer {
	return &AttachmentCanonicalizer{content: content}
}

// Canonicalize returns a permanent redirect for attachment views: to the
// parent's permalink when the attachment has a parent, to the site root
// otherwise. Other views return false.
func (a *AttachmentCanonicalizer) Canonicalize(ctx context.Context, rc RenderContext) (Redirect, bool) {
	if rc.View != ViewAttachment {
		return Redirect{}, false
	}
	if parent, ok := a.content.Parent(ctx, ContentRef(rc.EntityID, TypeAttachment)); ok {
		if link, ok := a.content.Permalink(ctx, parent); ok {
			return Redirect{Status: http.StatusMovedPermanently, Location: link}, true
		}
	}
	return Redirect{Status: http.StatusMovedPermanently, Location: a.content.HomeURL("/")}, true
}
