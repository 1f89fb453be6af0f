package seo

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Snippet defaults used for og:description fallbacks.
const (
	SnippetWords = 55
	SnippetMore  = "..."
)

// strictPolicy strips every tag. Policies are safe for concurrent use.
var strictPolicy = bluemonday.StrictPolicy()

// StripTags removes HTML tags and returns unescaped plain text.
func StripTags(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(strictPolicy.Sanitize(raw))
}

// TrimWords strips tags from text and keeps at most n words. more is
// appended only when words were dropped.
func TrimWords(text string, n int, more string) string {
	words := strings.Fields(StripTags(text))
	if n >= 0 && len(words) > n {
		return strings.Join(words[:n], " ") + more
	}
	return strings.Join(words, " ")
}

// SanitizeText turns single-line editor input into plain text: tags are
// stripped and whitespace runs collapse to one space.
func SanitizeText(s string) string {
	return strings.Join(strings.Fields(StripTags(s)), " ")
}

// SanitizeTextarea is SanitizeText for multi-line input; line breaks survive.
func SanitizeTextarea(s string) string {
	lines := strings.Split(strings.ReplaceAll(StripTags(s), "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
