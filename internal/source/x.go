package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avelichko/lookback/internal/model"
)

var xDepthCount = map[Depth]int{
	DepthQuick:   8,
	DepthDefault: 15,
	DepthDeep:    25,
}

// XAdapter searches X through the xAI API, which is OpenAI-compatible.
// The model runs a live post search and reports results as JSON with
// native engagement counts, so returned items are engagement-verified.
type XAdapter struct {
	client *openai.Client
	model  string
}

func NewXAdapter(cfg model.XAIConfig) *XAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &XAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (a *XAdapter) Name() model.Source { return model.SourceX }

const xSystemPrompt = `You are a research assistant with live X search access.
Find real posts about the given topic from the given date range.
Respond with ONLY a JSON array. Each element:
{"text": "...", "url": "https://x.com/...", "author_handle": "@...",
 "date": "YYYY-MM-DD", "likes": 0, "reposts": 0, "replies": 0,
 "quotes": 0, "views": 0, "bookmarks": 0,
 "relevance": 0.0, "why_relevant": "..."}
Omit engagement fields you cannot verify. relevance is 0.0-1.0.`

// xPost mirrors the JSON shape the model is instructed to produce.
type xPost struct {
	Text         string   `json:"text"`
	URL          string   `json:"url"`
	AuthorHandle string   `json:"author_handle"`
	Date         string   `json:"date"`
	Likes        *int     `json:"likes"`
	Reposts      *int     `json:"reposts"`
	Replies      *int     `json:"replies"`
	Quotes       *int     `json:"quotes"`
	Views        *int     `json:"views"`
	Bookmarks    *int     `json:"bookmarks"`
	Relevance    *float64 `json:"relevance"`
	WhyRelevant  string   `json:"why_relevant"`
}

func (a *XAdapter) Search(ctx context.Context, q Query) (*RawBatch, error) {
	count := xDepthCount[q.Depth]
	if count == 0 {
		count = xDepthCount[DepthDefault]
	}

	user := fmt.Sprintf("Topic: %s\nDate range: %s to %s\nReturn up to %d posts.",
		q.Topic, q.Window.FromString(), q.Window.ToString(), count)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: xSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return nil, &ProviderError{
			Source:  a.Name(),
			Status:  openaiStatus(err),
			Code:    "XAI_ERROR",
			Message: err.Error(),
			Err:     err,
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Source: a.Name(), Code: "EMPTY_RESPONSE", Message: "no completion choices"}
	}

	items, err := parseXPosts(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &ProviderError{Source: a.Name(), Code: "BAD_RESPONSE", Message: err.Error(), Err: err}
	}
	return &RawBatch{Source: a.Name(), Items: items}, nil
}

func openaiStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	return 0
}

// parseXPosts extracts the JSON array from the model response, tolerating
// surrounding prose or a markdown fence.
func parseXPosts(content string) ([]RawItem, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var posts []xPost
	if err := json.Unmarshal([]byte(content[start:end+1]), &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	items := make([]RawItem, 0, len(posts))
	total := len(posts)
	for i, p := range posts {
		if p.URL == "" {
			continue
		}

		rel := PositionRelevance(i, total)
		if p.Relevance != nil && *p.Relevance > 0 && *p.Relevance <= 1 {
			rel = *p.Relevance
		}

		eng := &model.Engagement{
			Likes:     p.Likes,
			Reposts:   p.Reposts,
			Replies:   p.Replies,
			Quotes:    p.Quotes,
			Views:     p.Views,
			Bookmarks: p.Bookmarks,
		}
		verified := p.Likes != nil || p.Reposts != nil
		if eng.Empty() {
			eng = nil
		}

		items = append(items, RawItem{
			ID:                 itemID("X", len(items)),
			Title:              truncate(strings.TrimSpace(p.Text), 200),
			URL:                p.URL,
			Snippet:            strings.TrimSpace(p.Text),
			Date:               p.Date,
			NativeDate:         p.Date != "",
			Relevance:          rel,
			WhyRelevant:        truncate(p.WhyRelevant, 150),
			AuthorHandle:       p.AuthorHandle,
			Engagement:         eng,
			EngagementVerified: verified,
		})
	}
	return items, nil
}
