// Package matching implements filename normalization and the layered
// strategies used to decide whether a content reference points at a
// stored image asset.
package matching

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// uuidPrefixPattern matches a canonical 8-4-4-4-12 hex UUID followed by
// a dash and the original filename. Truncated or malformed UUIDs do not
// match and the name is kept as-is.
var uuidPrefixPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}-(.+)$`)

// normalizeStrip keeps lowercase latin letters, digits, and Hangul.
var normalizeStrip = regexp.MustCompile(`[^a-z0-9\x{AC00}-\x{D7A3}]`)

// knownExtensions are the image extensions removed during
// normalization and accepted by the walker.
var knownExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

// IsImageName reports whether the filename carries a recognized image
// extension.
func IsImageName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// StripUUIDPrefix removes a leading canonical-UUID-dash prefix from a
// filename. Names without an exact UUID prefix are returned unchanged.
func StripUUIDPrefix(name string) string {
	if m := uuidPrefixPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// stripExtension removes a single trailing known image extension.
func stripExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// NormalizeName reduces a filename to a canonical comparison form:
// UUID prefix stripped, extension removed, lowercased, and everything
// except latin letters, digits, and Hangul removed. The result is
// stable under repeated application.
func NormalizeName(name string) string {
	name = StripUUIDPrefix(name)
	name = stripExtension(name)
	name = strings.ToLower(name)
	return normalizeStrip.ReplaceAllString(name, "")
}

// Basename returns the final path segment of a reference or storage
// path, URL-decoded when possible.
func Basename(ref string) string {
	ref = strings.TrimSuffix(ref, "/")
	base := path.Base(ref)
	if decoded, err := url.PathUnescape(base); err == nil {
		base = decoded
	}
	return base
}

// campaignMonthPattern captures the YYYY-MM segment of a
// campaigns/<month>/ path.
var campaignMonthPattern = regexp.MustCompile(`(?:^|/)campaigns/(\d{4}-\d{2})(?:/|$)`)

// CampaignMonth extracts the YYYY-MM campaign segment from a path or
// URL, or returns "" when the path is not campaign-dated.
func CampaignMonth(p string) string {
	if m := campaignMonthPattern.FindStringSubmatch(p); m != nil {
		return m[1]
	}
	return ""
}
