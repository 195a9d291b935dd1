package source

import (
	"context"
	"strings"

	"github.com/avelichko/lookback/internal/model"
)

var webDepthPages = map[Depth]int{
	DepthQuick:   1,
	DepthDefault: 2,
	DepthDeep:    3,
}

// WebAdapter searches the general web through Brave. Besides ranked
// results it surfaces the discussion cluster, FAQ entries, infobox data,
// and the summarizer key used for the secondary summary fetch.
type WebAdapter struct {
	client *BraveClient
}

func NewWebAdapter(client *BraveClient) *WebAdapter {
	return &WebAdapter{client: client}
}

func (a *WebAdapter) Name() model.Source { return model.SourceWeb }

func (a *WebAdapter) Search(ctx context.Context, q Query) (*RawBatch, error) {
	freshness := freshnessRange(q.Window.FromString(), q.Window.ToString())
	pages := webDepthPages[q.Depth]
	if pages == 0 {
		pages = webDepthPages[DepthDefault]
	}

	var (
		results     []braveWebResult
		discussions []braveWebResult
		artifacts   Artifacts
	)

	for page := 0; page < pages; page++ {
		resp, err := a.client.WebSearch(ctx, a.Name(), webSearchParams{
			q:             q.Topic,
			freshness:     freshness,
			count:         20,
			offset:        page,
			extraSnippets: true,
			summary:       page == 0,
		})
		if err != nil {
			if page == 0 {
				return nil, err
			}
			break
		}

		results = append(results, resp.Web.Results...)
		if page == 0 {
			discussions = resp.Discussions.Results
			artifacts.SummarizerKey = resp.Summarizer.Key
			for _, f := range resp.FAQ.Results {
				artifacts.FAQs = append(artifacts.FAQs, model.FAQ{Question: f.Question, Answer: f.Answer})
			}
			for _, box := range resp.Infobox.Results {
				desc := box.LongDesc
				if desc == "" {
					desc = box.Description
				}
				if desc != "" {
					artifacts.Infobox = strings.TrimSpace(box.Title + ": " + desc)
					break
				}
			}
		}
		if !resp.Query.MoreResultsAvailable {
			break
		}
	}

	artifacts.Discussions = parseDiscussionResults(discussions)

	return &RawBatch{
		Source:    a.Name(),
		Items:     parseWebResults(results),
		Artifacts: &artifacts,
	}, nil
}

func parseWebResults(results []braveWebResult) []RawItem {
	items := make([]RawItem, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" {
			continue
		}
		items = append(items, RawItem{
			ID:            itemID("W", len(items)),
			Title:         truncate(strings.TrimSpace(r.Title), 200),
			URL:           r.URL,
			Snippet:       strings.TrimSpace(r.Description),
			ExtraSnippets: r.ExtraSnippets,
			Date:          r.PageAge,
			Relevance:     PositionRelevance(i, total),
			WhyRelevant:   truncate(strings.TrimSpace(r.Description), 150),
			SourceDomain:  r.MetaURL.Hostname,
			SourceName:    r.Profile.Name,
			HasSchemaData: len(r.Schemas) > 0 || len(r.DeepResults) > 0,
		})
	}
	return items
}

func parseDiscussionResults(results []braveWebResult) []RawItem {
	items := make([]RawItem, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" {
			continue
		}
		items = append(items, RawItem{
			ID:            itemID("D", len(items)),
			Title:         truncate(strings.TrimSpace(r.Title), 200),
			URL:           r.URL,
			Snippet:       strings.TrimSpace(r.Description),
			ExtraSnippets: r.ExtraSnippets,
			Date:          r.PageAge,
			Relevance:     PositionRelevance(i, total),
			WhyRelevant:   truncate(strings.TrimSpace(r.Description), 150),
			ForumName:     forumName(r),
		})
	}
	return items
}

func forumName(r braveWebResult) string {
	if r.Profile.Name != "" {
		return r.Profile.Name
	}
	return r.MetaURL.Hostname
}
