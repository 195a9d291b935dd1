package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/avelichko/lookback/internal/model"
)

var redditDepthPages = map[Depth]int{
	DepthQuick:   1,
	DepthDefault: 2,
	DepthDeep:    3,
}

var (
	redditThreadRe    = regexp.MustCompile(`reddit\.com/r/[^/]+/comments/`)
	redditSubredditRe = regexp.MustCompile(`reddit\.com/r/([^/]+)`)
)

// RedditAdapter discovers reddit threads through Brave web search scoped
// with site:reddit.com. Engagement stays unset here; the enricher fills
// it from each thread's own JSON endpoint.
type RedditAdapter struct {
	client *BraveClient
}

func NewRedditAdapter(client *BraveClient) *RedditAdapter {
	return &RedditAdapter{client: client}
}

func (a *RedditAdapter) Name() model.Source { return model.SourceReddit }

func (a *RedditAdapter) Search(ctx context.Context, q Query) (*RawBatch, error) {
	freshness := freshnessRange(q.Window.FromString(), q.Window.ToString())
	pages := redditDepthPages[q.Depth]
	if pages == 0 {
		pages = redditDepthPages[DepthDefault]
	}

	var results []braveWebResult
	for page := 0; page < pages; page++ {
		resp, err := a.client.WebSearch(ctx, a.Name(), webSearchParams{
			q:             q.Topic + " site:reddit.com",
			freshness:     freshness,
			count:         20,
			offset:        page,
			extraSnippets: true,
		})
		if err != nil {
			if page == 0 {
				return nil, err
			}
			break
		}
		results = append(results, resp.Web.Results...)
		if !resp.Query.MoreResultsAvailable {
			break
		}
	}

	// Broaden the query once when the topic is too narrow for reddit.
	if len(results) < 5 {
		if core := simplifyTopic(q.Topic); core != q.Topic {
			resp, err := a.client.WebSearch(ctx, a.Name(), webSearchParams{
				q:             core + " site:reddit.com",
				freshness:     freshness,
				count:         20,
				extraSnippets: true,
			})
			if err == nil {
				seen := make(map[string]bool, len(results))
				for _, r := range results {
					seen[r.URL] = true
				}
				for _, r := range resp.Web.Results {
					if !seen[r.URL] {
						results = append(results, r)
					}
				}
			}
		}
	}

	return &RawBatch{Source: a.Name(), Items: parseRedditResults(results)}, nil
}

func parseRedditResults(results []braveWebResult) []RawItem {
	items := make([]RawItem, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" || !strings.Contains(r.URL, "reddit.com") {
			continue
		}
		// Thread pages only, not subreddit or user listings.
		if !redditThreadRe.MatchString(r.URL) {
			continue
		}

		title := strings.TrimSpace(r.Title)
		// Brave renders reddit titles as "Title : subreddit".
		if idx := strings.Index(title, " : "); idx > 0 {
			title = strings.TrimSpace(title[:idx])
		}

		items = append(items, RawItem{
			ID:          itemID("R", len(items)),
			Title:       truncate(title, 200),
			URL:         r.URL,
			Snippet:     strings.TrimSpace(r.Description),
			Date:        r.PageAge,
			Relevance:   PositionRelevance(i, total),
			WhyRelevant: truncate(strings.TrimSpace(r.Description), 150),
			Subreddit:   subredditFromURL(r.URL),
		})
	}
	return items
}

func subredditFromURL(u string) string {
	if m := redditSubredditRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return "unknown"
}

var topicStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "for": true, "to": true,
	"in": true, "on": true, "with": true, "and": true, "or": true,
	"is": true, "are": true, "best": true, "top": true, "how": true,
}

// simplifyTopic reduces a topic to its 2-3 core terms for broader matching.
func simplifyTopic(topic string) string {
	var core []string
	for _, w := range strings.Fields(topic) {
		if !topicStopWords[strings.ToLower(w)] {
			core = append(core, w)
		}
	}
	if len(core) >= 2 {
		if len(core) > 3 {
			core = core[:3]
		}
		return strings.Join(core, " ")
	}
	return topic
}

func itemID(prefix string, n int) string {
	return fmt.Sprintf("%s%d", prefix, n+1)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
