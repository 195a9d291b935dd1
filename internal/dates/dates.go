// Package dates holds the window math shared by the pipeline: parsing
// provider date strings, assigning confidence, and the recency curve.
package dates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

// Window is the inclusive date range a run covers.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow builds a window covering the last n days ending at now.
func NewWindow(now time.Time, days int) Window {
	to := now.UTC().Truncate(24 * time.Hour)
	return Window{From: to.AddDate(0, 0, -days), To: to}
}

// Days returns the window length in days, never below 1.
func (w Window) Days() int {
	d := int(w.To.Sub(w.From).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

// Contains reports whether t falls inside the window. The end day is
// inclusive for dates that carry no time component.
func (w Window) Contains(t time.Time) bool {
	day := t.UTC().Truncate(24 * time.Hour)
	return !day.Before(w.From) && !day.After(w.To)
}

// FromString and ToString render the bounds as YYYY-MM-DD.
func (w Window) FromString() string { return w.From.Format("2006-01-02") }
func (w Window) ToString() string   { return w.To.Format("2006-01-02") }

var dayPrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// Parse resolves a provider date string to UTC time. It accepts plain
// dates, common ISO 8601 shapes, and Unix timestamps (reddit created_utc
// arrives as a float string).
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if ts, err := strconv.ParseFloat(s, 64); err == nil && ts > 1e8 {
		return time.Unix(int64(ts), 0).UTC(), true
	}

	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	// Some providers append free text after the date.
	if m := dayPrefix.FindString(s); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// Confidence classifies how much trust a resolved date deserves.
// native marks a provider-guaranteed timestamp; an inferred date inside
// the window rates medium, outside it low.
func Confidence(t *time.Time, native bool, w Window) model.DateConfidence {
	if t == nil {
		return model.ConfidenceNone
	}
	if native {
		return model.ConfidenceHigh
	}
	if w.Contains(*t) {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

// AgeDays returns how many whole days before now the date falls.
func AgeDays(t time.Time, now time.Time) int {
	d := now.UTC().Truncate(24*time.Hour).Sub(t.UTC().Truncate(24 * time.Hour))
	return int(d.Hours() / 24)
}

// RecencyScore maps an item age onto 0-100 with a strong freshness bias.
// The curve is tiered and monotonically decreasing: content from the last
// few days scores in the 90s, week-old content in the 70s-80s, and the
// tail decays linearly to 0 at the window edge. Ages are scaled so the
// same relative position in any window length lands on the same tier.
// Pure function of (date, now, windowDays); nil dates score 0.
func RecencyScore(t *time.Time, now time.Time, windowDays int) int {
	if t == nil {
		return 0
	}
	if windowDays < 1 {
		windowDays = 1
	}

	age := AgeDays(*t, now)
	if age < 0 {
		return 100 // future-dated, treat as today
	}

	// Scale to a 30-day-equivalent age so the tiers below apply to any
	// window length.
	scaled := float64(age) * 30.0 / float64(windowDays)
	if scaled >= 30 {
		return 0
	}

	switch {
	case scaled <= 1:
		return 100 - int(scaled*2)
	case scaled <= 3:
		return 96 - int((scaled-2)*2)
	case scaled <= 7:
		return 90 - int((scaled-4)*3.5)
	case scaled <= 14:
		return 74 - int((scaled-8)*3.4)
	default:
		return int(math.Max(0, 49-(scaled-15)*(39.0/15.0)))
	}
}
