// Package dedupe removes near-duplicates within a category and exact
// URL duplicates across categories.
package dedupe

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/avelichko/lookback/internal/model"
)

const (
	shingleSize      = 3
	jaccardThreshold = 0.70
)

// CategoryPriority is the fixed cross-source trust order: categories
// with verified native engagement first, passive discovery last. When
// the same URL shows up in several categories, the highest-priority
// instance wins regardless of score.
var CategoryPriority = []model.Source{
	model.SourceReddit,
	model.SourceX,
	model.SourceHackerNews,
	model.SourceNews,
	model.SourceDiscussion,
	model.SourceWeb,
	model.SourceVideo,
}

// WithinSource drops near-duplicates inside one category's batch. For
// every pair whose title+snippet shingle similarity reaches the
// threshold, the lower-scored member goes. Quadratic; batches are tens
// of items.
func WithinSource(items []model.Item) []model.Item {
	if len(items) <= 1 {
		return items
	}

	shingled := make([]map[string]struct{}, len(items))
	for i, item := range items {
		shingled[i] = Shingles(item.Title + " " + item.Snippet)
	}

	drop := make(map[int]bool)
	for i := 0; i < len(items); i++ {
		if drop[i] {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if drop[j] {
				continue
			}
			if Jaccard(shingled[i], shingled[j]) >= jaccardThreshold {
				if items[i].Score >= items[j].Score {
					drop[j] = true
				} else {
					drop[i] = true
				}
			}
		}
	}

	result := make([]model.Item, 0, len(items))
	for i, item := range items {
		if !drop[i] {
			result = append(result, item)
		}
	}
	return result
}

// AcrossSources removes cross-category URL duplicates from the report's
// item lists. First pass lets each category claim normalized URLs in
// priority order (a hackernews item claims its discussion page too);
// second pass keeps only items whose URL the category owns.
func AcrossSources(byCategory map[model.Source][]model.Item) map[model.Source][]model.Item {
	owner := make(map[string]model.Source)

	for _, src := range CategoryPriority {
		for _, item := range byCategory[src] {
			claim(owner, item.URL, src)
			if item.DiscussionURL != "" {
				claim(owner, item.DiscussionURL, src)
			}
		}
	}

	result := make(map[model.Source][]model.Item, len(byCategory))
	for _, src := range CategoryPriority {
		items := byCategory[src]
		kept := make([]model.Item, 0, len(items))
		for _, item := range items {
			if owner[NormalizeURL(item.URL)] == src {
				kept = append(kept, item)
			}
		}
		result[src] = kept
	}
	return result
}

func claim(owner map[string]model.Source, rawURL string, src model.Source) {
	key := NormalizeURL(rawURL)
	if _, taken := owner[key]; !taken {
		owner[key] = src
	}
}

// NormalizeURL reduces a URL to host+path for comparison: scheme,
// leading www., trailing slash, and query string are stripped.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	path := strings.TrimSuffix(parsed.Path, "/")
	return strings.ToLower(host + path)
}

// Shingles builds the character n-gram set of normalized text.
func Shingles(text string) map[string]struct{} {
	text = normalizeText(text)
	set := make(map[string]struct{})
	runes := []rune(text)
	if len(runes) < shingleSize {
		if text != "" {
			set[text] = struct{}{}
		}
		return set
	}
	for i := 0; i+shingleSize <= len(runes); i++ {
		set[string(runes[i:i+shingleSize])] = struct{}{}
	}
	return set
}

// Jaccard computes |A∩B| / |A∪B|.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for s := range small {
		if _, ok := large[s]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// normalizeText lowercases and collapses everything that is not a letter
// or digit into single spaces.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
