// Package score ranks canonical items with source-aware weight profiles.
// Scoring is deterministic: the only time input is the "now" supplied at
// construction.
package score

import (
	"math"
	"sort"
	"time"

	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/model"
)

// Profile is the weight blend for one source category. Weights apply to
// 0-100 subscores; BaseAdjust is a fixed post-blend adjustment.
type Profile struct {
	Relevance  float64
	Recency    float64
	Engagement float64
	BaseAdjust int
}

// UsesEngagement reports whether the profile weights an engagement
// subscore at all.
func (p Profile) UsesEngagement() bool { return p.Engagement > 0 }

// profiles maps every category onto its weight blend. Social categories
// with native metrics weight engagement heavily; news leans on recency;
// web leans on relevance and carries a penalty for lacking engagement
// data entirely; video uses a content-richness proxy.
var profiles = map[model.Source]Profile{
	model.SourceReddit:     {Relevance: 0.40, Recency: 0.25, Engagement: 0.35},
	model.SourceX:          {Relevance: 0.40, Recency: 0.25, Engagement: 0.35},
	model.SourceHackerNews: {Relevance: 0.40, Recency: 0.25, Engagement: 0.35},
	model.SourceNews:       {Relevance: 0.45, Recency: 0.55},
	model.SourceWeb:        {Relevance: 0.55, Recency: 0.45, BaseAdjust: -10},
	model.SourceVideo:      {Relevance: 0.45, Recency: 0.25, Engagement: 0.30},
	model.SourceDiscussion: {Relevance: 0.50, Recency: 0.50},
}

const (
	defaultEngagement = 20 // sparse data ranks low, never zero

	verifiedEngagementBonus  = 8
	unverifiedEngagementDrop = 15
	dateConfidenceHighBonus  = 5
	dateConfidenceMediumDrop = 5
	dateConfidenceLowDrop    = 20
	extraSnippetsBonus       = 3
	schemaDataBonus          = 5
	topCommentsBonus         = 4
)

// Scorer computes subscores and the final 0-100 score for item batches.
type Scorer struct {
	now    time.Time
	window dates.Window
}

// NewScorer creates a scorer fixed to the given now and window.
func NewScorer(now time.Time, w dates.Window) *Scorer {
	return &Scorer{now: now.UTC(), window: w}
}

// ScoreBatch scores one category's batch in place and returns it sorted
// by score descending. Engagement is min-max normalized within this
// batch only, never across categories.
func (s *Scorer) ScoreBatch(src model.Source, items []model.Item) []model.Item {
	if len(items) == 0 {
		return items
	}

	profile, ok := profiles[src]
	if !ok {
		profile = profiles[model.SourceWeb]
	}

	var engScores []*float64
	if profile.UsesEngagement() {
		raw := make([]*float64, len(items))
		for i := range items {
			raw[i] = engagementRaw(src, &items[i])
		}
		engScores = NormalizeTo100(raw)
	}

	for i := range items {
		item := &items[i]

		rel := int(math.Round(item.Relevance * 100))
		rec := dates.RecencyScore(item.Date, s.now, s.window.Days())

		eng := 0
		if profile.UsesEngagement() {
			if engScores[i] != nil {
				eng = int(math.Round(*engScores[i]))
			} else {
				eng = defaultEngagement
			}
		}

		item.Subs = model.SubScores{Relevance: rel, Recency: rec, Engagement: eng}

		overall := profile.Relevance*float64(rel) +
			profile.Recency*float64(rec) +
			profile.Engagement*float64(eng)

		total := int(math.Round(overall)) + profile.BaseAdjust
		total += s.adjustments(src, item, profile)

		item.Score = clamp(total, 0, 100)
	}

	SortItems(items)
	return items
}

func (s *Scorer) adjustments(src model.Source, item *model.Item, profile Profile) int {
	adj := 0

	if profile.UsesEngagement() {
		if item.EngagementVerified {
			adj += verifiedEngagementBonus
		} else {
			adj -= unverifiedEngagementDrop
		}
	}

	switch item.DateConfidence {
	case model.ConfidenceHigh:
		adj += dateConfidenceHighBonus
	case model.ConfidenceMedium:
		adj -= dateConfidenceMediumDrop
	default:
		adj -= dateConfidenceLowDrop
	}

	// Structured enrichment rewards.
	switch src {
	case model.SourceReddit:
		if len(item.TopComments) > 0 {
			adj += topCommentsBonus
		}
	case model.SourceWeb:
		if item.HasSchemaData {
			adj += schemaDataBonus
		}
		if len(item.ExtraSnippets) > 0 {
			adj += extraSnippetsBonus
		}
	case model.SourceNews, model.SourceDiscussion:
		if len(item.ExtraSnippets) > 0 {
			adj += extraSnippetsBonus
		}
	}

	return adj
}

// engagementRaw compresses raw metrics with log1p and combines them with
// the per-category sub-weights. Returns nil when the item has no usable
// engagement data. Video is the exception: its proxy also feeds on
// snippet depth and duration, so it can score without any metrics.
func engagementRaw(src model.Source, item *model.Item) *float64 {
	e := item.Engagement

	var raw float64
	switch src {
	case model.SourceReddit:
		if e.Empty() || (e.Score == nil && e.NumComments == nil) {
			return nil
		}
		ratio := 0.5
		if e.UpvoteRatio != nil {
			ratio = *e.UpvoteRatio
		}
		raw = 0.45*log1p(e.Score) + 0.30*(ratio*10) + 0.25*log1p(e.NumComments)

	case model.SourceX:
		if e.Empty() || (e.Likes == nil && e.Reposts == nil) {
			return nil
		}
		raw = 0.30*log1p(e.Reposts) + 0.25*log1p(e.Likes) + 0.20*log1p(e.Views) +
			0.10*log1p(e.Replies) + 0.10*log1p(e.Quotes) + 0.05*log1p(e.Bookmarks)

	case model.SourceHackerNews:
		if e.Empty() || (e.Points == nil && e.NumComments == nil) {
			return nil
		}
		raw = 0.60*log1p(e.Points) + 0.40*log1p(e.NumComments)

	case model.SourceVideo:
		// Content-richness proxy: most video results carry no view
		// count, so snippet depth and duration stand in.
		var views *int
		if e != nil {
			views = e.Views
		}
		snippetLen := len(item.Snippet)
		durationSecs := durationSeconds(item.Duration)
		if views == nil && snippetLen == 0 && durationSecs == 0 {
			return nil
		}
		raw = 0.50*log1p(views) + 0.30*math.Log1p(float64(snippetLen)) +
			0.20*math.Log1p(float64(durationSecs))

	default:
		return nil
	}

	return &raw
}

func log1p(v *int) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return math.Log1p(float64(*v))
}

// durationSeconds parses "MM:SS" or "HH:MM:SS" video durations.
func durationSeconds(d string) int {
	if d == "" {
		return 0
	}
	parts := [3]int{}
	n := 0
	current := 0
	for _, r := range d {
		switch {
		case r >= '0' && r <= '9':
			current = current*10 + int(r-'0')
		case r == ':' && n < 2:
			parts[n] = current
			current = 0
			n++
		default:
			return 0
		}
	}
	parts[n] = current
	switch n {
	case 0:
		return parts[0]
	case 1:
		return parts[0]*60 + parts[1]
	default:
		return parts[0]*3600 + parts[1]*60 + parts[2]
	}
}

// NormalizeTo100 min-max scales the non-nil values onto [0,100] within
// the batch. A flat batch maps to 50; nil entries stay nil.
func NormalizeTo100(values []*float64) []*float64 {
	var min, max float64
	found := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !found || *v < min {
			min = *v
		}
		if !found || *v > max {
			max = *v
		}
		found = true
	}
	if !found {
		return values
	}

	out := make([]*float64, len(values))
	span := max - min
	for i, v := range values {
		if v == nil {
			continue
		}
		var scaled float64
		if span == 0 {
			scaled = 50
		} else {
			scaled = (*v - min) / span * 100
		}
		out[i] = &scaled
	}
	return out
}

// SortItems orders by score descending, then date descending, then title
// for a stable, deterministic order.
func SortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		di, dj := itemDateKey(items[i]), itemDateKey(items[j])
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return items[i].Title < items[j].Title
	})
}

func itemDateKey(item model.Item) time.Time {
	if item.Date == nil {
		return time.Time{}
	}
	return *item.Date
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
