package source

import (
	"context"
	"strings"

	"github.com/avelichko/lookback/internal/model"
)

var videoDepthCount = map[Depth]int{
	DepthQuick:   10,
	DepthDefault: 15,
	DepthDeep:    25,
}

// VideoAdapter searches video content through Brave. Videos carry no
// authoritative engagement numbers; view counts, when present, feed the
// content-richness proxy in the scorer.
type VideoAdapter struct {
	client *BraveClient
}

func NewVideoAdapter(client *BraveClient) *VideoAdapter {
	return &VideoAdapter{client: client}
}

func (a *VideoAdapter) Name() model.Source { return model.SourceVideo }

func (a *VideoAdapter) Search(ctx context.Context, q Query) (*RawBatch, error) {
	count := videoDepthCount[q.Depth]
	if count == 0 {
		count = videoDepthCount[DepthDefault]
	}

	resp, err := a.client.VideoSearch(ctx, a.Name(), q.Topic,
		freshnessRange(q.Window.FromString(), q.Window.ToString()), count)
	if err != nil {
		return nil, err
	}

	return &RawBatch{Source: a.Name(), Items: parseVideoResults(resp.Results)}, nil
}

func parseVideoResults(results []braveVideoResult) []RawItem {
	items := make([]RawItem, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" {
			continue
		}
		creator := r.Video.Creator
		if creator == "" {
			creator = r.Video.Publisher
		}
		item := RawItem{
			ID:           itemID("V", len(items)),
			Title:        truncate(strings.TrimSpace(r.Title), 200),
			URL:          r.URL,
			Snippet:      strings.TrimSpace(r.Description),
			Date:         r.PageAge,
			Relevance:    PositionRelevance(i, total),
			WhyRelevant:  truncate(strings.TrimSpace(r.Description), 150),
			Creator:      creator,
			Duration:     r.Video.Duration,
			ThumbnailURL: r.Thumbnail.Src,
			SourceDomain: r.MetaURL.Hostname,
		}
		if r.Video.Views != nil {
			views := *r.Video.Views
			item.Engagement = &model.Engagement{Views: &views}
		}
		items = append(items, item)
	}
	return items
}
