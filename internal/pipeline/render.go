package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

// categoryHeadings maps source categories onto their report headings.
var categoryHeadings = map[model.Source]string{
	model.SourceReddit:     "Reddit",
	model.SourceX:          "X",
	model.SourceHackerNews: "Hacker News",
	model.SourceNews:       "News",
	model.SourceWeb:        "Web",
	model.SourceVideo:      "Videos",
	model.SourceDiscussion: "Discussions",
}

// Renderer writes reports as JSON or Markdown.
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer. Verbose mode adds subscore detail to
// the Markdown output.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// JSON writes the report as indented JSON.
func (r *Renderer) JSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// Markdown writes the report as a readable Markdown document: header,
// summary block, per-category ranked lists, FAQ, failures, and the data
// quality footer.
func (r *Renderer) Markdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Topic)
	fmt.Fprintf(&b, "Window %s to %s, depth %s, %d items.", report.From, report.To, report.Depth, report.TotalItems())
	if report.FromCache {
		fmt.Fprintf(&b, " Cached %s ago.", report.CacheAge.Round(time.Second))
	}
	b.WriteString("\n")

	if report.Summary != "" {
		fmt.Fprintf(&b, "\n## Summary\n\n%s\n", report.Summary)
		for _, q := range report.SummaryFollowups {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	if report.Infobox != "" {
		fmt.Fprintf(&b, "\n> %s\n", report.Infobox)
	}

	for _, src := range model.AllSources() {
		items := report.Items(src)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", categoryHeadings[src])
		for _, item := range items {
			r.writeItem(&b, item)
		}
	}

	if len(report.FAQs) > 0 {
		b.WriteString("\n## FAQ\n")
		for _, faq := range report.FAQs {
			fmt.Fprintf(&b, "\n**%s**\n\n%s\n", faq.Question, faq.Answer)
		}
	}

	if len(report.Errors) > 0 {
		b.WriteString("\n## Source failures\n\n")
		for _, src := range SortedErrorSources(report.Errors) {
			fmt.Fprintf(&b, "- %s: %s\n", src, report.Errors[src])
		}
	}

	r.writeQuality(&b, report.Quality)

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) writeItem(b *strings.Builder, item model.Item) {
	fmt.Fprintf(b, "- **[%d]** [%s](%s)", item.Score, item.Title, item.URL)

	var meta []string
	if item.Date != nil {
		meta = append(meta, item.Date.Format("2006-01-02"))
	}
	if item.Subreddit != "" {
		meta = append(meta, "r/"+item.Subreddit)
	}
	if item.AuthorHandle != "" {
		meta = append(meta, "@"+item.AuthorHandle)
	}
	if item.SourceName != "" {
		meta = append(meta, item.SourceName)
	} else if item.SourceDomain != "" {
		meta = append(meta, item.SourceDomain)
	}
	if item.ForumName != "" {
		meta = append(meta, item.ForumName)
	}
	if item.Duration != "" {
		meta = append(meta, item.Duration)
	}
	if e := engagementLine(item); e != "" {
		meta = append(meta, e)
	}
	if len(meta) > 0 {
		fmt.Fprintf(b, " — %s", strings.Join(meta, ", "))
	}
	b.WriteString("\n")

	if item.Snippet != "" {
		fmt.Fprintf(b, "  %s\n", item.Snippet)
	}
	for _, comment := range item.TopComments {
		fmt.Fprintf(b, "  > [%d] %s: %s\n", comment.Score, comment.Author, comment.Excerpt)
	}
	if r.verbose {
		fmt.Fprintf(b, "  relevance %d, recency %d, engagement %d, date confidence %s\n",
			item.Subs.Relevance, item.Subs.Recency, item.Subs.Engagement, item.DateConfidence)
	}
}

func (r *Renderer) writeQuality(b *strings.Builder, q model.DataQuality) {
	b.WriteString("\n## Data quality\n\n")
	fmt.Fprintf(b, "- %d items, %.1f%% verified dates, %.1f%% verified engagement\n",
		q.TotalItems, q.VerifiedDatesPercent, q.VerifiedEngagementPercent)
	fmt.Fprintf(b, "- average age %.1f days\n", q.AvgRecencyDays)
	if len(q.SourcesAvailable) > 0 {
		fmt.Fprintf(b, "- sources: %s\n", strings.Join(q.SourcesAvailable, ", "))
	}
	if len(q.SourcesFailed) > 0 {
		fmt.Fprintf(b, "- failed: %s\n", strings.Join(q.SourcesFailed, ", "))
	}
}

// engagementLine compacts whichever metrics the item carries into one
// human-readable fragment.
func engagementLine(item model.Item) string {
	e := item.Engagement
	if e.Empty() {
		return ""
	}

	var parts []string
	add := func(v *int, label string) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%d %s", *v, label))
		}
	}

	switch item.Source {
	case model.SourceReddit:
		add(e.Score, "points")
		add(e.NumComments, "comments")
	case model.SourceX:
		add(e.Likes, "likes")
		add(e.Reposts, "reposts")
		add(e.Views, "views")
	case model.SourceHackerNews:
		add(e.Points, "points")
		add(e.NumComments, "comments")
	case model.SourceVideo:
		add(e.Views, "views")
	}

	line := strings.Join(parts, ", ")
	if line != "" && !item.EngagementVerified {
		line += " (unverified)"
	}
	return line
}
