// Package normalize converts provider-shaped raw batches into canonical
// items and applies the hard window filter. One case per source category;
// every case produces the identical record type.
package normalize

import (
	"time"

	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/model"
	"github.com/avelichko/lookback/internal/source"
)

// Batch normalizes one raw batch and applies the window filter.
func Batch(batch *source.RawBatch, w dates.Window) []model.Item {
	if batch == nil {
		return nil
	}
	items := make([]model.Item, 0, len(batch.Items))
	for _, raw := range batch.Items {
		items = append(items, Item(batch.Source, raw, w))
	}
	return FilterWindow(items, w)
}

// Item maps one raw provider record onto the canonical item type.
func Item(src model.Source, raw source.RawItem, w dates.Window) model.Item {
	var date *time.Time
	if t, ok := dates.Parse(raw.Date); ok {
		date = &t
	}

	conf := dates.Confidence(date, raw.NativeDate, w)

	rel := raw.Relevance
	if rel <= 0 {
		rel = 0.5
	}

	return model.Item{
		Source:         src,
		ID:             raw.ID,
		Title:          raw.Title,
		URL:            raw.URL,
		Snippet:        raw.Snippet,
		ExtraSnippets:  raw.ExtraSnippets,
		Date:           date,
		DateConfidence: conf,

		Engagement:         raw.Engagement,
		EngagementVerified: raw.EngagementVerified,

		Relevance:   rel,
		WhyRelevant: raw.WhyRelevant,

		Subreddit:     raw.Subreddit,
		Author:        raw.Author,
		AuthorHandle:  raw.AuthorHandle,
		DiscussionURL: raw.DiscussionURL,
		SourceName:    raw.SourceName,
		SourceDomain:  raw.SourceDomain,
		Creator:       raw.Creator,
		Duration:      raw.Duration,
		ThumbnailURL:  raw.ThumbnailURL,
		ForumName:     raw.ForumName,
		HasSchemaData: raw.HasSchemaData,
	}
}

// FilterWindow drops items whose resolved date falls outside the window.
// Undated items pass; they already carry the none-confidence penalty.
// Providers filter by window themselves, this is the safety net.
func FilterWindow(items []model.Item, w dates.Window) []model.Item {
	result := items[:0]
	for _, item := range items {
		if item.Date != nil && !w.Contains(*item.Date) {
			continue
		}
		result = append(result, item)
	}
	return result
}
