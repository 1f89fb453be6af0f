package basicseo

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildPath joins escaped path segments into a rooted path with a trailing
// slash.
func BuildPath(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			escaped = append(escaped, url.PathEscape(s))
		}
	}
	p := path.Join(append([]string{"/"}, escaped...)...)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseID parses a positive id; anything else is 0.
func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// formPtr returns the submitted value of a form field, or nil when the
// field was not part of the submission.
func formPtr(form url.Values, key string) *string {
	vals, ok := form[key]
	if !ok {
		return nil
	}
	v := ""
	if len(vals) > 0 {
		v = vals[0]
	}
	return &v
}
