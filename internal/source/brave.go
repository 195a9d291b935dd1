package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

const (
	braveWebSearchURL   = "https://api.search.brave.com/res/v1/web/search"
	braveNewsSearchURL  = "https://api.search.brave.com/res/v1/news/search"
	braveVideoSearchURL = "https://api.search.brave.com/res/v1/videos/search"
	braveSummarizerURL  = "https://api.search.brave.com/res/v1/summarizer/search"
)

// BraveClient talks to the Brave Search API. It handles authentication,
// rate-limit retries, and error mapping for all endpoints; four adapters
// share one instance.
type BraveClient struct {
	apiKey     string
	searchLang string
	country    string
	httpClient *http.Client
	userAgent  string
}

// NewBraveClient creates a Brave API client.
func NewBraveClient(cfg model.BraveConfig, timeout time.Duration, userAgent string) *BraveClient {
	return &BraveClient{
		apiKey:     cfg.APIKey,
		searchLang: cfg.SearchLang,
		country:    cfg.Country,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// braveWebResponse covers the web endpoint, including the discussion
// cluster and the enrichment blocks (FAQ, infobox, summarizer key).
type braveWebResponse struct {
	Query struct {
		MoreResultsAvailable bool `json:"more_results_available"`
	} `json:"query"`
	Web struct {
		Results []braveWebResult `json:"results"`
	} `json:"web"`
	Discussions struct {
		Results []braveWebResult `json:"results"`
	} `json:"discussions"`
	FAQ struct {
		Results []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		} `json:"results"`
	} `json:"faq"`
	Infobox struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			LongDesc    string `json:"long_desc"`
		} `json:"results"`
	} `json:"infobox"`
	Summarizer struct {
		Key string `json:"key"`
	} `json:"summarizer"`
}

type braveWebResult struct {
	Title         string            `json:"title"`
	URL           string            `json:"url"`
	Description   string            `json:"description"`
	PageAge       string            `json:"page_age"`
	ExtraSnippets []string          `json:"extra_snippets"`
	Schemas       []json.RawMessage `json:"schemas"`
	DeepResults   json.RawMessage   `json:"deep_results"`
	Profile       struct {
		Name string `json:"name"`
	} `json:"profile"`
	MetaURL struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url"`
}

type braveNewsResponse struct {
	Results []braveNewsResult `json:"results"`
}

type braveNewsResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Description   string   `json:"description"`
	PageAge       string   `json:"page_age"`
	Age           string   `json:"age"`
	ExtraSnippets []string `json:"extra_snippets"`
	Source        string   `json:"source"`
	MetaURL       struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url"`
}

type braveVideoResponse struct {
	Results []braveVideoResult `json:"results"`
}

type braveVideoResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PageAge     string `json:"page_age"`
	Video       struct {
		Duration  string `json:"duration"`
		Views     *int   `json:"views"`
		Creator   string `json:"creator"`
		Publisher string `json:"publisher"`
	} `json:"video"`
	Thumbnail struct {
		Src string `json:"src"`
	} `json:"thumbnail"`
	MetaURL struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url"`
}

type braveSummaryResponse struct {
	Summary []struct {
		Data string `json:"data"`
	} `json:"summary"`
	Followups []string `json:"followups"`
}

type webSearchParams struct {
	q             string
	freshness     string
	count         int
	offset        int
	extraSnippets bool
	summary       bool
}

// WebSearch runs one page of Brave web search.
func (c *BraveClient) WebSearch(ctx context.Context, src model.Source, p webSearchParams) (*braveWebResponse, error) {
	vals := url.Values{}
	vals.Set("q", p.q)
	if p.freshness != "" {
		vals.Set("freshness", p.freshness)
	}
	vals.Set("count", strconv.Itoa(p.count))
	vals.Set("offset", strconv.Itoa(p.offset))
	if p.extraSnippets {
		vals.Set("extra_snippets", "true")
	}
	if p.summary {
		vals.Set("summary", "true")
	}
	c.addLocale(vals)

	var out braveWebResponse
	if err := c.get(ctx, src, braveWebSearchURL, vals, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewsSearch runs one page of Brave news search.
func (c *BraveClient) NewsSearch(ctx context.Context, src model.Source, topic, freshness string, count int) (*braveNewsResponse, error) {
	vals := url.Values{}
	vals.Set("q", topic)
	vals.Set("freshness", freshness)
	vals.Set("count", strconv.Itoa(count))
	vals.Set("extra_snippets", "true")
	c.addLocale(vals)

	var out braveNewsResponse
	if err := c.get(ctx, src, braveNewsSearchURL, vals, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VideoSearch runs one page of Brave video search.
func (c *BraveClient) VideoSearch(ctx context.Context, src model.Source, topic, freshness string, count int) (*braveVideoResponse, error) {
	vals := url.Values{}
	vals.Set("q", topic)
	vals.Set("freshness", freshness)
	vals.Set("count", strconv.Itoa(count))
	c.addLocale(vals)

	var out braveVideoResponse
	if err := c.get(ctx, src, braveVideoSearchURL, vals, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize exchanges a summarizer key from a web search for summary
// text and suggested followup questions.
func (c *BraveClient) Summarize(ctx context.Context, key string) (string, []string, error) {
	vals := url.Values{}
	vals.Set("key", key)
	vals.Set("entity_info", "false")

	var out braveSummaryResponse
	if err := c.get(ctx, model.SourceWeb, braveSummarizerURL, vals, &out); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	for _, part := range out.Summary {
		b.WriteString(part.Data)
	}
	return strings.TrimSpace(b.String()), out.Followups, nil
}

func (c *BraveClient) addLocale(vals url.Values) {
	if c.searchLang != "" {
		vals.Set("search_lang", c.searchLang)
	}
	if c.country != "" {
		vals.Set("country", c.country)
	}
}

// get performs an authenticated GET with transient-error retry.
func (c *BraveClient) get(ctx context.Context, src model.Source, endpoint string, vals url.Values, out any) error {
	return retryTransient(ctx, func() error {
		return c.getOnce(ctx, src, endpoint, vals, out)
	})
}

func (c *BraveClient) getOnce(ctx context.Context, src model.Source, endpoint string, vals url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+vals.Encode(), nil)
	if err != nil {
		return &ProviderError{Source: src, Code: "BAD_REQUEST", Message: err.Error(), Err: err}
	}
	req.Header.Set("X-Subscription-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Source: src, Code: "NETWORK", Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return braveStatusError(src, resp, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Source: src, Code: "BAD_RESPONSE", Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	return nil
}

func braveStatusError(src model.Source, resp *http.Response, body string) *ProviderError {
	perr := &ProviderError{Source: src, Status: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		perr.Code = "RATE_LIMIT_EXCEEDED"
		perr.Message = "rate limited"
		if reset := resp.Header.Get("Retry-After"); reset != "" {
			if secs, err := strconv.Atoi(reset); err == nil && secs > 0 {
				perr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
	case http.StatusUnauthorized:
		perr.Code = "SUBSCRIPTION_TOKEN_INVALID"
		perr.Message = "invalid Brave API key"
	case http.StatusForbidden:
		perr.Code = "PLAN_INSUFFICIENT"
		perr.Message = "Brave plan does not include this feature"
	case http.StatusUnprocessableEntity:
		perr.Code = "INVALID_PARAMS"
		perr.Message = "invalid request parameters: " + body
	default:
		perr.Code = "API_ERROR"
		perr.Message = fmt.Sprintf("Brave API error %d", resp.StatusCode)
	}
	return perr
}

// https://api.search.brave.com freshness accepts an explicit date range.
func freshnessRange(from, to string) string {
	return from + "to" + to
}
