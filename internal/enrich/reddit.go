// Package enrich upgrades reddit discovery results with verified
// engagement data fetched from each thread's own JSON endpoint. Reddit is
// the only category whose discovery provider returns lightweight results
// without authoritative popularity numbers.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/avelichko/lookback/internal/model"
	"github.com/avelichko/lookback/internal/worker"
)

// Error is a per-item enrichment failure. The item keeps its estimate
// and stays engagement-unverified; the run continues.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("enrich %s: %v", e.URL, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Enricher fetches reddit thread JSON with per-host rate limiting and
// optional robots.txt compliance.
type Enricher struct {
	httpClient  *http.Client
	limiter     *worker.Limiter
	robots      *robotsChecker
	userAgent   string
	maxComments int
}

// New creates an enricher from config.
func New(cfg model.EnrichConfig, httpCfg model.HTTPConfig) *Enricher {
	e := &Enricher{
		httpClient:  &http.Client{Timeout: httpCfg.Timeout},
		limiter:     worker.NewLimiter(cfg.RequestsPerSecond, 2),
		userAgent:   httpCfg.UserAgent,
		maxComments: cfg.MaxTopComments,
	}
	if cfg.RespectRobots {
		e.robots = newRobotsChecker(httpCfg.UserAgent, httpCfg.Timeout)
	}
	return e
}

// redditThread mirrors the two-listing shape of <thread-url>.json:
// listing 0 holds the post, listing 1 the comment tree.
type redditThing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string         `json:"kind"`
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	Title       string  `json:"title"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Author      string  `json:"author"`
	Body        string  `json:"body"`
	Permalink   string  `json:"permalink"`
}

// Enrich fetches verified engagement for one item and mutates its
// engagement fields in place. Failures leave the item untouched apart
// from EngagementVerified staying false.
func (e *Enricher) Enrich(ctx context.Context, item *model.Item) error {
	if item.Source != model.SourceReddit {
		return nil
	}

	jsonURL := threadJSONURL(item.URL)

	if e.robots != nil && !e.robots.allowed(ctx, jsonURL) {
		return &Error{URL: item.URL, Err: fmt.Errorf("disallowed by robots.txt")}
	}
	if err := e.limiter.Wait(ctx, jsonURL); err != nil {
		return &Error{URL: item.URL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return &Error{URL: item.URL, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return &Error{URL: item.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Error{URL: item.URL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var listings []redditThing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return &Error{URL: item.URL, Err: fmt.Errorf("decode thread: %w", err)}
	}

	return e.apply(item, listings)
}

func (e *Enricher) apply(item *model.Item, listings []redditThing) error {
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return &Error{URL: item.URL, Err: fmt.Errorf("empty thread listing")}
	}

	post := listings[0].Data.Children[0].Data

	score := post.Score
	ratio := post.UpvoteRatio
	comments := post.NumComments
	item.Engagement = &model.Engagement{
		Score:       &score,
		UpvoteRatio: &ratio,
		NumComments: &comments,
	}
	item.EngagementVerified = true

	// The thread's own timestamp beats anything inferred at discovery.
	if post.CreatedUTC > 0 {
		created := time.Unix(int64(post.CreatedUTC), 0).UTC()
		item.Date = &created
		item.DateConfidence = model.ConfidenceHigh
	}

	item.TopComments = topComments(listings, item.URL, e.maxComments)
	return nil
}

// topComments extracts the highest-scored top-level comments.
func topComments(listings []redditThing, threadURL string, max int) []model.Comment {
	if len(listings) < 2 || max <= 0 {
		return nil
	}

	var comments []model.Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		body := strings.TrimSpace(child.Data.Body)
		if body == "" || child.Data.Author == "[deleted]" {
			continue
		}
		if len(body) > 200 {
			body = body[:200]
		}
		commentURL := threadURL
		if child.Data.Permalink != "" {
			commentURL = "https://www.reddit.com" + child.Data.Permalink
		}
		comments = append(comments, model.Comment{
			Score:   child.Data.Score,
			Author:  child.Data.Author,
			Excerpt: body,
			URL:     commentURL,
		})
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Score > comments[j].Score
	})
	if len(comments) > max {
		comments = comments[:max]
	}
	return comments
}

// threadJSONURL converts a thread page URL to its JSON endpoint.
func threadJSONURL(threadURL string) string {
	u, err := url.Parse(threadURL)
	if err != nil {
		return strings.TrimSuffix(threadURL, "/") + ".json"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/") + ".json"
	return u.String()
}
