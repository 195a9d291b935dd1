// Package source defines the provider adapter contract and one concrete
// adapter per search provider. Adapters return provider-shaped raw
// batches; the normalize package turns those into canonical items.
package source

import (
	"context"

	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/model"
)

// Depth selects how much data each provider is asked for.
type Depth string

const (
	DepthQuick   Depth = "quick"
	DepthDefault Depth = "default"
	DepthDeep    Depth = "deep"
)

// Query is one search request against a provider.
type Query struct {
	Topic  string
	Window dates.Window
	Depth  Depth
}

// RawItem is one provider result before normalization. Fields are filled
// as far as the provider supplies them; the normalizer owns defaults and
// confidence assignment.
type RawItem struct {
	ID            string
	Title         string
	URL           string
	Snippet       string
	ExtraSnippets []string

	Date       string // provider date, unparsed
	NativeDate bool   // true when the provider guarantees the timestamp

	Relevance   float64
	WhyRelevant string

	Engagement         *model.Engagement
	EngagementVerified bool

	Subreddit     string
	Author        string
	AuthorHandle  string
	DiscussionURL string
	SourceName    string
	SourceDomain  string
	Creator       string
	Duration      string
	ThumbnailURL  string
	ForumName     string
	HasSchemaData bool
}

// Artifacts are run-level extras some providers return alongside results.
type Artifacts struct {
	Discussions   []RawItem
	FAQs          []model.FAQ
	Infobox       string
	SummarizerKey string
}

// RawBatch is the full raw result of one adapter call.
type RawBatch struct {
	Source    model.Source
	Items     []RawItem
	Artifacts *Artifacts
}

// Adapter is the capability every search provider implements.
type Adapter interface {
	Name() model.Source
	Search(ctx context.Context, q Query) (*RawBatch, error)
}

// PositionRelevance derives a relevance signal from result position when
// the provider declares none: position 0 scores 1.0, decaying toward 0.2.
func PositionRelevance(pos, total int) float64 {
	if total <= 0 {
		return 0.2
	}
	rel := 1.0 - (float64(pos)/float64(total))*0.8
	if rel < 0.2 {
		return 0.2
	}
	return rel
}
