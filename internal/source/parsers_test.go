package source

import (
	"encoding/json"
	"testing"
)

func TestParseWebResults(t *testing.T) {
	raw := `{
  "web": {
    "results": [
      {
        "title": "Understanding Go memory model",
        "url": "https://example.com/go-memory",
        "description": "A walkthrough of the happens-before rules.",
        "page_age": "2026-08-20T10:00:00",
        "extra_snippets": ["snippet one", "snippet two"],
        "schemas": [{"@type": "Article"}],
        "profile": {"name": "Example Blog"},
        "meta_url": {"hostname": "example.com"}
      },
      {"title": "no url, dropped", "url": ""}
    ]
  }
}`
	var resp braveWebResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	items := parseWebResults(resp.Web.Results)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (empty URL dropped)", len(items))
	}

	item := items[0]
	if item.ID != "W1" {
		t.Errorf("ID = %s", item.ID)
	}
	if item.Date != "2026-08-20T10:00:00" {
		t.Errorf("date = %s", item.Date)
	}
	if !item.HasSchemaData {
		t.Error("schemas present but HasSchemaData false")
	}
	if len(item.ExtraSnippets) != 2 {
		t.Errorf("extra snippets = %d", len(item.ExtraSnippets))
	}
	if item.SourceName != "Example Blog" || item.SourceDomain != "example.com" {
		t.Errorf("source attribution = %q / %q", item.SourceName, item.SourceDomain)
	}
}

func TestParseNewsResultsFallbacks(t *testing.T) {
	results := []braveNewsResult{
		{Title: "story", URL: "https://news.example.com/a", Age: "2026-08-18", Source: "Example News"},
		{Title: "other", URL: "https://news.example.com/b", PageAge: "2026-08-19"},
	}
	results[1].MetaURL.Hostname = "news.example.com"

	items := parseNewsResults(results)
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}

	if items[0].Date != "2026-08-18" {
		t.Errorf("age fallback: date = %s", items[0].Date)
	}
	if items[0].SourceName != "Example News" {
		t.Errorf("source name = %s", items[0].SourceName)
	}
	if items[1].Date != "2026-08-19" {
		t.Errorf("page_age preferred: date = %s", items[1].Date)
	}
	if items[1].SourceName != "news.example.com" {
		t.Errorf("hostname fallback: source name = %s", items[1].SourceName)
	}
}

func TestParseVideoResults(t *testing.T) {
	views := 120000
	results := []braveVideoResult{{
		Title:       "Go profiling walkthrough",
		URL:         "https://video.example.com/watch?v=1",
		Description: "pprof from scratch",
		PageAge:     "2026-08-10",
	}}
	results[0].Video.Duration = "18:30"
	results[0].Video.Views = &views
	results[0].Video.Publisher = "ExampleTube"
	results[0].Thumbnail.Src = "https://video.example.com/thumb/1.jpg"

	items := parseVideoResults(results)
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}

	item := items[0]
	if item.Duration != "18:30" || item.ThumbnailURL == "" {
		t.Errorf("video metadata lost: %+v", item)
	}
	if item.Creator != "ExampleTube" {
		t.Errorf("publisher fallback: creator = %s", item.Creator)
	}
	if item.Engagement == nil || item.Engagement.Views == nil || *item.Engagement.Views != 120000 {
		t.Errorf("views not mapped: %+v", item.Engagement)
	}
}

func TestParseRedditResults(t *testing.T) {
	results := []braveWebResult{
		{
			Title:       "Why is my goroutine leaking? : golang",
			URL:         "https://www.reddit.com/r/golang/comments/abc123/why_is_my_goroutine_leaking/",
			Description: "I have a worker pool that never shuts down...",
			PageAge:     "2026-08-12",
		},
		{
			Title: "r/golang subreddit index",
			URL:   "https://www.reddit.com/r/golang/",
		},
		{
			Title: "off-site result",
			URL:   "https://example.com/golang",
		},
	}

	items := parseRedditResults(results)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (only thread pages kept)", len(items))
	}

	item := items[0]
	if item.Title != "Why is my goroutine leaking?" {
		t.Errorf("subreddit suffix not stripped: %q", item.Title)
	}
	if item.Subreddit != "golang" {
		t.Errorf("subreddit = %q", item.Subreddit)
	}
}

func TestSimplifyTopic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"best tools for kubernetes monitoring", "tools kubernetes monitoring"},
		{"how to use sqlite in go", "use sqlite go"},
		{"zig", "zig"},
		{"the a an", "the a an"},
	}
	for _, tt := range tests {
		if got := simplifyTopic(tt.in); got != tt.want {
			t.Errorf("simplifyTopic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseXPosts(t *testing.T) {
	content := "Here are the posts:\n```json\n" + `[
  {
    "text": "Shipped a new release of our search library",
    "url": "https://x.com/dev/status/1",
    "author_handle": "@dev",
    "date": "2026-08-25",
    "likes": 340,
    "reposts": 52,
    "relevance": 0.9,
    "why_relevant": "release announcement"
  },
  {
    "text": "thoughts on ranking",
    "url": "https://x.com/other/status/2",
    "author_handle": "@other",
    "date": "2026-08-20"
  },
  {
    "text": "no url, dropped",
    "url": ""
  }
]` + "\n```\nHope this helps."

	items, err := parseXPosts(content)
	if err != nil {
		t.Fatalf("parseXPosts: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	first := items[0]
	if first.AuthorHandle != "@dev" || first.Date != "2026-08-25" {
		t.Errorf("metadata lost: %+v", first)
	}
	if !first.NativeDate {
		t.Error("dated post should be native-dated")
	}
	if first.Relevance != 0.9 {
		t.Errorf("declared relevance ignored: %v", first.Relevance)
	}
	if !first.EngagementVerified || first.Engagement == nil || *first.Engagement.Likes != 340 {
		t.Errorf("engagement lost: %+v", first.Engagement)
	}

	second := items[1]
	if second.EngagementVerified {
		t.Error("post without likes/reposts must stay unverified")
	}
	if second.Engagement != nil {
		t.Errorf("empty engagement should be nil, got %+v", second.Engagement)
	}
}

func TestParseXPostsNoArray(t *testing.T) {
	if _, err := parseXPosts("I could not find any posts."); err == nil {
		t.Error("expected error when no JSON array present")
	}
}
