package payload

import (
	"net/url"
	"strings"
)

// DefaultImageSize replaces the CDN size placeholder in templated URLs.
const DefaultImageSize = "1024x768"

// imageURLKeys are tried in order when an image reference is an object.
var imageURLKeys = []string{"url", "src", "href", "link", "tmpl"}

var sizePlaceholders = []string{"{size}", "%7Bsize%7D", "%7bsize%7d"}

// ImageURLs extracts usable absolute image URLs from a list of references.
// Each reference is either a URL string or an object carrying the URL under
// one of the known field names. Protocol-relative URLs are coerced to https
// and size placeholders are substituted with DefaultImageSize. Entries that
// yield no absolute http(s) URL are dropped.
func ImageURLs(refs []any) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		var raw string
		if s, ok := ref.(string); ok {
			raw = s
		} else if m, ok := asMap(ref); ok {
			for _, k := range imageURLKeys {
				if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
					raw = s
					break
				}
			}
		}
		if u, ok := NormalizeImageURL(raw); ok {
			out = append(out, u)
		}
	}
	return out
}

// NormalizeImageURL applies the canonical URL rules to a single reference.
func NormalizeImageURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}
	for _, p := range sizePlaceholders {
		s = strings.ReplaceAll(s, p, DefaultImageSize)
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return s, true
}
