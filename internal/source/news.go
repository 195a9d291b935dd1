package source

import (
	"context"
	"strings"

	"github.com/avelichko/lookback/internal/model"
)

var newsDepthCount = map[Depth]int{
	DepthQuick:   10,
	DepthDefault: 20,
	DepthDeep:    30,
}

// NewsAdapter searches recent news coverage through Brave.
type NewsAdapter struct {
	client *BraveClient
}

func NewNewsAdapter(client *BraveClient) *NewsAdapter {
	return &NewsAdapter{client: client}
}

func (a *NewsAdapter) Name() model.Source { return model.SourceNews }

func (a *NewsAdapter) Search(ctx context.Context, q Query) (*RawBatch, error) {
	count := newsDepthCount[q.Depth]
	if count == 0 {
		count = newsDepthCount[DepthDefault]
	}

	resp, err := a.client.NewsSearch(ctx, a.Name(), q.Topic,
		freshnessRange(q.Window.FromString(), q.Window.ToString()), count)
	if err != nil {
		return nil, err
	}

	return &RawBatch{Source: a.Name(), Items: parseNewsResults(resp.Results)}, nil
}

func parseNewsResults(results []braveNewsResult) []RawItem {
	items := make([]RawItem, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" {
			continue
		}
		date := r.PageAge
		if date == "" {
			date = r.Age
		}
		name := r.Source
		if name == "" {
			name = r.MetaURL.Hostname
		}
		items = append(items, RawItem{
			ID:            itemID("N", len(items)),
			Title:         truncate(strings.TrimSpace(r.Title), 200),
			URL:           r.URL,
			Snippet:       strings.TrimSpace(r.Description),
			ExtraSnippets: r.ExtraSnippets,
			Date:          date,
			Relevance:     PositionRelevance(i, total),
			WhyRelevant:   truncate(strings.TrimSpace(r.Description), 150),
			SourceName:    name,
			SourceDomain:  r.MetaURL.Hostname,
		})
	}
	return items
}
