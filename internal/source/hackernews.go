package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

const hnSearchURL = "https://hn.algolia.com/api/v1/search"

var hnDepthCount = map[Depth]int{
	DepthQuick:   15,
	DepthDefault: 30,
	DepthDeep:    60,
}

// HackerNewsAdapter searches Hacker News stories through the Algolia
// API. No authentication required; points and comment counts come from
// the API itself, so items are engagement-verified at birth.
type HackerNewsAdapter struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewHackerNewsAdapter(timeout time.Duration, userAgent string) *HackerNewsAdapter {
	return &HackerNewsAdapter{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    hnSearchURL,
		userAgent:  userAgent,
	}
}

func (a *HackerNewsAdapter) Name() model.Source { return model.SourceHackerNews }

type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	CreatedAtI  int64  `json:"created_at_i"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
}

func (a *HackerNewsAdapter) Search(ctx context.Context, q Query) (*RawBatch, error) {
	count := hnDepthCount[q.Depth]
	if count == 0 {
		count = hnDepthCount[DepthDefault]
	}

	fromTS := q.Window.From.Unix()
	toTS := q.Window.To.Unix() + 86400 // include the full end day

	vals := url.Values{}
	vals.Set("query", q.Topic)
	vals.Set("tags", "story")
	vals.Set("numericFilters", fmt.Sprintf("created_at_i>%d,created_at_i<%d", fromTS, toTS))
	vals.Set("hitsPerPage", strconv.Itoa(count))

	var resp hnResponse
	err := retryTransient(ctx, func() error {
		return a.getOnce(ctx, vals, &resp)
	})
	if err != nil {
		return nil, err
	}

	return &RawBatch{Source: a.Name(), Items: parseHNHits(resp.Hits)}, nil
}

func (a *HackerNewsAdapter) getOnce(ctx context.Context, vals url.Values, out *hnResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+vals.Encode(), nil)
	if err != nil {
		return &ProviderError{Source: a.Name(), Code: "BAD_REQUEST", Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Source: a.Name(), Code: "NETWORK", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &ProviderError{
			Source:  a.Name(),
			Status:  resp.StatusCode,
			Code:    "API_ERROR",
			Message: fmt.Sprintf("Algolia API error %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Source: a.Name(), Code: "BAD_RESPONSE", Message: err.Error(), Err: err}
	}
	return nil
}

func parseHNHits(hits []hnHit) []RawItem {
	items := make([]RawItem, 0, len(hits))
	total := len(hits)
	for i, hit := range hits {
		storyURL := "https://news.ycombinator.com/item?id=" + hit.ObjectID
		u := hit.URL
		if u == "" {
			u = storyURL
		}

		var date string
		if hit.CreatedAtI > 0 {
			date = time.Unix(hit.CreatedAtI, 0).UTC().Format("2006-01-02")
		}

		points := hit.Points
		comments := hit.NumComments
		items = append(items, RawItem{
			ID:         itemID("HN", len(items)),
			Title:      truncate(hit.Title, 200),
			URL:        u,
			Date:       date,
			NativeDate: hit.CreatedAtI > 0,
			Relevance:  PositionRelevance(i, total),
			WhyRelevant: fmt.Sprintf("Hacker News story with %d points and %d comments",
				points, comments),
			Author:        hit.Author,
			DiscussionURL: storyURL,
			Engagement: &model.Engagement{
				Points:      &points,
				NumComments: &comments,
			},
			EngagementVerified: true,
		})
	}
	return items
}
