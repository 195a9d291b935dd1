package model

import "time"

// Source identifies which category an item was discovered through.
type Source string

const (
	SourceReddit     Source = "reddit"
	SourceX          Source = "x"
	SourceHackerNews Source = "hackernews"
	SourceNews       Source = "news"
	SourceWeb        Source = "web"
	SourceVideo      Source = "video"
	SourceDiscussion Source = "discussion"
)

// AllSources returns every known source category in a fixed order.
func AllSources() []Source {
	return []Source{
		SourceReddit, SourceX, SourceHackerNews,
		SourceNews, SourceWeb, SourceVideo, SourceDiscussion,
	}
}

// DateConfidence expresses how much trust an item's resolved date deserves.
type DateConfidence string

const (
	ConfidenceHigh   DateConfidence = "high"   // provider-guaranteed timestamp
	ConfidenceMedium DateConfidence = "medium" // inferred from page age or free text
	ConfidenceLow    DateConfidence = "low"    // resolved but outside expectations
	ConfidenceNone   DateConfidence = "none"   // no resolvable date
)

// Engagement carries raw popularity metrics. Field names vary by category;
// unused fields stay nil.
type Engagement struct {
	// Reddit
	Score       *int     `json:"score,omitempty"`
	NumComments *int     `json:"num_comments,omitempty"`
	UpvoteRatio *float64 `json:"upvote_ratio,omitempty"`

	// X
	Likes     *int `json:"likes,omitempty"`
	Reposts   *int `json:"reposts,omitempty"`
	Replies   *int `json:"replies,omitempty"`
	Quotes    *int `json:"quotes,omitempty"`
	Views     *int `json:"views,omitempty"`
	Bookmarks *int `json:"bookmarks,omitempty"`

	// Hacker News
	Points *int `json:"points,omitempty"`
}

// Empty reports whether no metric at all is populated.
func (e *Engagement) Empty() bool {
	if e == nil {
		return true
	}
	return e.Score == nil && e.NumComments == nil && e.UpvoteRatio == nil &&
		e.Likes == nil && e.Reposts == nil && e.Replies == nil &&
		e.Quotes == nil && e.Views == nil && e.Bookmarks == nil &&
		e.Points == nil
}

// Comment is a top reddit comment captured during enrichment.
type Comment struct {
	Score   int    `json:"score"`
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url,omitempty"`
}

// SubScores are the per-dimension components behind the final score,
// each on a 0-100 scale.
type SubScores struct {
	Relevance  int `json:"relevance"`
	Recency    int `json:"recency"`
	Engagement int `json:"engagement"`
}

// Item is the canonical record for one discovered piece of content,
// regardless of originating source. Created once by the normalizer,
// mutated once by the enricher (engagement) and once by the scorer.
type Item struct {
	Source         Source         `json:"source"`
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	Snippet        string         `json:"snippet,omitempty"`
	ExtraSnippets  []string       `json:"extra_snippets,omitempty"`
	Date           *time.Time     `json:"date,omitempty"`
	DateConfidence DateConfidence `json:"date_confidence"`

	Engagement         *Engagement `json:"engagement,omitempty"`
	EngagementVerified bool        `json:"engagement_verified"`

	Relevance   float64 `json:"relevance"`
	WhyRelevant string  `json:"why_relevant,omitempty"`

	Subs  SubScores `json:"subs"`
	Score int       `json:"score"`

	// Category-specific extras.
	Subreddit     string    `json:"subreddit,omitempty"`
	TopComments   []Comment `json:"top_comments,omitempty"`
	AuthorHandle  string    `json:"author_handle,omitempty"`
	Author        string    `json:"author,omitempty"`
	DiscussionURL string    `json:"discussion_url,omitempty"` // hackernews story page
	SourceName    string    `json:"source_name,omitempty"`
	SourceDomain  string    `json:"source_domain,omitempty"`
	Creator       string    `json:"creator,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	ForumName     string    `json:"forum_name,omitempty"`
	HasSchemaData bool      `json:"has_schema_data,omitempty"`
}
