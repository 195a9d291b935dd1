package model

import "time"

// Report is the complete result of one research run. Once cached it is
// treated as immutable until TTL expiry.
type Report struct {
	Topic       string    `json:"topic"`
	From        string    `json:"from"` // YYYY-MM-DD, inclusive
	To          string    `json:"to"`   // YYYY-MM-DD, inclusive
	Depth       string    `json:"depth"`
	GeneratedAt time.Time `json:"generated_at"`

	Reddit      []Item `json:"reddit"`
	X           []Item `json:"x"`
	HackerNews  []Item `json:"hackernews"`
	News        []Item `json:"news"`
	Web         []Item `json:"web"`
	Videos      []Item `json:"videos"`
	Discussions []Item `json:"discussions"`

	// Optional run-level artifacts from the web provider.
	Summary          string   `json:"summary,omitempty"`
	SummaryFollowups []string `json:"summary_followups,omitempty"`
	Infobox          string   `json:"infobox,omitempty"`
	FAQs             []FAQ    `json:"faqs,omitempty"`

	Errors map[Source]string `json:"errors,omitempty"`

	Quality DataQuality `json:"data_quality"`

	FromCache bool          `json:"from_cache"`
	CacheAge  time.Duration `json:"cache_age,omitempty"`
}

// FAQ is a question/answer pair surfaced by the web provider.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Items returns the surviving items for the given category.
func (r *Report) Items(s Source) []Item {
	switch s {
	case SourceReddit:
		return r.Reddit
	case SourceX:
		return r.X
	case SourceHackerNews:
		return r.HackerNews
	case SourceNews:
		return r.News
	case SourceWeb:
		return r.Web
	case SourceVideo:
		return r.Videos
	case SourceDiscussion:
		return r.Discussions
	}
	return nil
}

// SetItems replaces the item list for the given category.
func (r *Report) SetItems(s Source, items []Item) {
	switch s {
	case SourceReddit:
		r.Reddit = items
	case SourceX:
		r.X = items
	case SourceHackerNews:
		r.HackerNews = items
	case SourceNews:
		r.News = items
	case SourceWeb:
		r.Web = items
	case SourceVideo:
		r.Videos = items
	case SourceDiscussion:
		r.Discussions = items
	}
}

// AllItems returns every item in the report across categories.
func (r *Report) AllItems() []Item {
	var all []Item
	for _, s := range AllSources() {
		all = append(all, r.Items(s)...)
	}
	return all
}

// TotalItems counts items across all categories.
func (r *Report) TotalItems() int {
	n := 0
	for _, s := range AllSources() {
		n += len(r.Items(s))
	}
	return n
}

// DataQuality describes how trustworthy the report's data is.
type DataQuality struct {
	TotalItems                int      `json:"total_items"`
	VerifiedDatesCount        int      `json:"verified_dates_count"`
	VerifiedDatesPercent      float64  `json:"verified_dates_percent"`
	VerifiedEngagementCount   int      `json:"verified_engagement_count"`
	VerifiedEngagementPercent float64  `json:"verified_engagement_percent"`
	AvgRecencyDays            float64  `json:"avg_recency_days"`
	SourcesAvailable          []string `json:"sources_available"`
	SourcesFailed             []string `json:"sources_failed"`
	HasSummary                bool     `json:"has_summary"`
	HasInfobox                bool     `json:"has_infobox"`
	FAQCount                  int      `json:"faq_count"`
}
