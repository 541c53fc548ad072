package matching

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Image reference extractors for the content forms the retailer uses:
// raw HTML pages, markdown blog posts, and calendar entry bodies.

var (
	htmlImgSrcPattern  = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
	htmlBackgroundURL  = regexp.MustCompile(`background(?:-image)?\s*:\s*url\(['"]?([^'")]+)['"]?\)`)
	markdownImgPattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
)

// HTMLRefs extracts image references from HTML content: img src
// attributes and CSS background-image urls.
func HTMLRefs(content string) []string {
	var refs []string
	for _, m := range htmlImgSrcPattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, m[1])
	}
	for _, m := range htmlBackgroundURL.FindAllStringSubmatch(content, -1) {
		refs = append(refs, m[1])
	}
	return dedupeRefs(refs)
}

// MarkdownRefs extracts image references from markdown image syntax,
// plus any inline HTML the markdown carries.
func MarkdownRefs(content string) []string {
	var refs []string
	for _, m := range markdownImgPattern.FindAllStringSubmatch(content, -1) {
		refs = append(refs, m[1])
	}
	refs = append(refs, HTMLRefs(content)...)
	return dedupeRefs(refs)
}

// CalendarRefs extracts image references from calendar entry bodies.
// Entries carry either structured JSON with explicit URL fields or
// free text mixing plain URLs with HTML snippets.
func CalendarRefs(content string) []string {
	refs := HTMLRefs(content)

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var payload any
		if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
			refs = append(refs, jsonImageRefs(payload)...)
			return dedupeRefs(refs)
		}
	}

	for _, field := range strings.Fields(content) {
		if strings.HasPrefix(field, "http") && IsImageName(field) {
			refs = append(refs, field)
		}
	}
	return dedupeRefs(refs)
}

// jsonImageRefs walks a decoded JSON value and collects every string
// field that names an image.
func jsonImageRefs(v any) []string {
	var refs []string
	switch val := v.(type) {
	case string:
		if IsImageName(val) {
			refs = append(refs, val)
		}
	case []any:
		for _, item := range val {
			refs = append(refs, jsonImageRefs(item)...)
		}
	case map[string]any:
		for _, item := range val {
			refs = append(refs, jsonImageRefs(item)...)
		}
	}
	return refs
}

func dedupeRefs(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := refs[:0]
	for _, r := range refs {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
