package matching

import (
	"net/url"
	"strings"
)

// Strategy decides whether a content reference points at a stored
// asset. Strategies are evaluated in order by a Chain; the first match
// wins and later, fuzzier strategies never run.
type Strategy interface {
	Name() string
	Matches(ref, storagePath, fileName string) bool
}

// Chain evaluates strategies in order.
type Chain []Strategy

// Match returns the name of the first matching strategy, or "" when no
// strategy matches.
func (c Chain) Match(ref, storagePath, fileName string) string {
	for _, s := range c {
		if s.Matches(ref, storagePath, fileName) {
			return s.Name()
		}
	}
	return ""
}

// DefaultChain is the layered matcher: exact path first, then the
// basename and normalized-name layers. The full path is unambiguous,
// so only it runs unscoped; both name-based layers are gated by the
// campaign month so same-named banners from different months never
// cross-match.
func DefaultChain() Chain {
	return Chain{
		ExactPath{},
		MonthScoped{Inner: ExactBasename{}},
		MonthScoped{Inner: NormalizedName{}},
	}
}

// ExactPath matches when the reference contains the full
// bucket-relative storage path, after URL decoding.
type ExactPath struct{}

func (ExactPath) Name() string { return "exact_path" }

func (ExactPath) Matches(ref, storagePath, _ string) bool {
	if storagePath == "" {
		return false
	}
	if strings.Contains(ref, storagePath) {
		return true
	}
	if decoded, err := url.PathUnescape(ref); err == nil && strings.Contains(decoded, storagePath) {
		return true
	}
	return false
}

// ExactBasename matches when the final path segments are identical.
type ExactBasename struct{}

func (ExactBasename) Name() string { return "exact_basename" }

func (ExactBasename) Matches(ref, _, fileName string) bool {
	if fileName == "" {
		return false
	}
	return Basename(ref) == fileName
}

// NormalizedName matches when the normalized forms of the reference
// basename and the stored filename are equal; handles re-uploads that
// gained a UUID prefix or lost punctuation.
type NormalizedName struct{}

func (NormalizedName) Name() string { return "normalized_name" }

func (NormalizedName) Matches(ref, _, fileName string) bool {
	norm := NormalizeName(fileName)
	if norm == "" {
		return false
	}
	return NormalizeName(Basename(ref)) == norm
}

// MonthScoped gates a fuzzy strategy for campaign-dated assets: when
// the storage path carries a campaigns/YYYY-MM segment, the reference
// must carry the same month. Undated assets pass through unscoped, so
// identically named banners from different campaign months never
// cross-match.
type MonthScoped struct {
	Inner Strategy
}

func (m MonthScoped) Name() string { return m.Inner.Name() }

func (m MonthScoped) Matches(ref, storagePath, fileName string) bool {
	if month := CampaignMonth(storagePath); month != "" {
		if CampaignMonth(ref) != month {
			return false
		}
	}
	return m.Inner.Matches(ref, storagePath, fileName)
}
