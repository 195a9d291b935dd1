package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/model"
)

const hnFixture = `{
  "hits": [
    {
      "objectID": "41001234",
      "title": "Show HN: A fast search aggregator",
      "url": "https://example.com/project",
      "author": "pg",
      "created_at_i": 1756200000,
      "points": 342,
      "num_comments": 128
    },
    {
      "objectID": "41005678",
      "title": "Ask HN: Favorite debugging war story?",
      "url": "",
      "author": "dang",
      "created_at_i": 1756100000,
      "points": 89,
      "num_comments": 210
    }
  ]
}`

func TestHackerNewsSearch(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"query":          r.URL.Query().Get("query"),
			"tags":           r.URL.Query().Get("tags"),
			"numericFilters": r.URL.Query().Get("numericFilters"),
			"hitsPerPage":    r.URL.Query().Get("hitsPerPage"),
		}
		fmt.Fprint(w, hnFixture)
	}))
	defer server.Close()

	adapter := NewHackerNewsAdapter(5*time.Second, "test-agent")
	adapter.baseURL = server.URL

	w := dates.Window{
		From: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
	batch, err := adapter.Search(context.Background(), Query{Topic: "search aggregator", Window: w, Depth: DepthDefault})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotQuery["query"] != "search aggregator" || gotQuery["tags"] != "story" {
		t.Errorf("request params = %v", gotQuery)
	}
	if gotQuery["hitsPerPage"] != "30" {
		t.Errorf("hitsPerPage = %s, want 30 for default depth", gotQuery["hitsPerPage"])
	}
	wantFilter := fmt.Sprintf("created_at_i>%d,created_at_i<%d", w.From.Unix(), w.To.Unix()+86400)
	if gotQuery["numericFilters"] != wantFilter {
		t.Errorf("numericFilters = %s, want %s", gotQuery["numericFilters"], wantFilter)
	}

	if batch.Source != model.SourceHackerNews {
		t.Errorf("batch source = %s", batch.Source)
	}
	if len(batch.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(batch.Items))
	}

	first := batch.Items[0]
	if first.URL != "https://example.com/project" {
		t.Errorf("first URL = %s", first.URL)
	}
	if first.DiscussionURL != "https://news.ycombinator.com/item?id=41001234" {
		t.Errorf("first discussion URL = %s", first.DiscussionURL)
	}
	if !first.NativeDate {
		t.Error("timestamped hit should be native-dated")
	}
	if !first.EngagementVerified || first.Engagement == nil || *first.Engagement.Points != 342 {
		t.Errorf("engagement not carried over: %+v", first.Engagement)
	}

	// Self posts fall back to the story page itself.
	second := batch.Items[1]
	if second.URL != "https://news.ycombinator.com/item?id=41005678" {
		t.Errorf("self post URL = %s", second.URL)
	}
}

func TestHackerNewsServerError(t *testing.T) {
	fails := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fails++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	orig := sleepFunc
	sleepFunc = func(ctx context.Context, d time.Duration) error { return nil }
	defer func() { sleepFunc = orig }()

	adapter := NewHackerNewsAdapter(5*time.Second, "test-agent")
	adapter.baseURL = server.URL

	_, err := adapter.Search(context.Background(), Query{Topic: "x", Depth: DepthQuick})
	if err == nil {
		t.Fatal("expected error from failing server")
	}
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %T, want *ProviderError", err)
	}
	if perr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", perr.Status)
	}
	if fails != maxTransientRetries+1 {
		t.Errorf("server hit %d times, want %d", fails, maxTransientRetries+1)
	}
}
