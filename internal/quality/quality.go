// Package quality computes the transparency metrics attached to every
// report: how many items carry verified dates and engagement, how fresh
// the set is, and which sources delivered versus failed.
package quality

import (
	"math"
	"time"

	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/model"
)

// Assess computes DataQuality over the report's post-dedup item set.
// now feeds the recency average; it must be the same now the scorer used.
func Assess(report *model.Report, now time.Time) model.DataQuality {
	all := report.AllItems()
	q := model.DataQuality{
		TotalItems: len(all),
		HasSummary: report.Summary != "",
		HasInfobox: report.Infobox != "",
		FAQCount:   len(report.FAQs),
	}

	for _, src := range model.AllSources() {
		name := string(src)
		if len(report.Items(src)) > 0 {
			q.SourcesAvailable = append(q.SourcesAvailable, name)
		} else if report.Errors[src] != "" {
			q.SourcesFailed = append(q.SourcesFailed, name)
		}
	}

	if len(all) == 0 {
		return q
	}

	var ageSum, aged int
	for _, item := range all {
		if item.DateConfidence == model.ConfidenceHigh {
			q.VerifiedDatesCount++
		}
		if item.EngagementVerified {
			q.VerifiedEngagementCount++
		}
		if item.Date != nil {
			ageSum += dates.AgeDays(*item.Date, now)
			aged++
		}
	}

	total := float64(len(all))
	q.VerifiedDatesPercent = round1(float64(q.VerifiedDatesCount) / total * 100)
	q.VerifiedEngagementPercent = round1(float64(q.VerifiedEngagementCount) / total * 100)

	if aged > 0 {
		q.AvgRecencyDays = round1(float64(ageSum) / float64(aged))
	} else {
		// Nothing dated: assume the worst case, the window edge.
		q.AvgRecencyDays = float64(windowDays(report))
	}

	return q
}

func windowDays(report *model.Report) int {
	from, okFrom := dates.Parse(report.From)
	to, okTo := dates.Parse(report.To)
	if !okFrom || !okTo {
		return 30
	}
	return dates.Window{From: from, To: to}.Days()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
