package dates

import (
	"testing"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	w := NewWindow(now, 30)

	if got := w.ToString(); got != "2026-08-31" {
		t.Errorf("ToString() = %q, want 2026-08-31", got)
	}
	if got := w.FromString(); got != "2026-08-01" {
		t.Errorf("FromString() = %q, want 2026-08-01", got)
	}
	if got := w.Days(); got != 30 {
		t.Errorf("Days() = %d, want 30", got)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{From: date("2026-08-01"), To: date("2026-08-31")}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"start day", date("2026-08-01"), true},
		{"end day inclusive", date("2026-08-31"), true},
		{"end day with time", time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC), true},
		{"middle", date("2026-08-15"), true},
		{"day before", date("2026-07-31"), false},
		{"day after", date("2026-09-01"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain date", "2026-08-15", "2026-08-15", true},
		{"iso no zone", "2026-08-15T10:30:00", "2026-08-15", true},
		{"iso zulu", "2026-08-15T10:30:00Z", "2026-08-15", true},
		{"rfc3339 offset", "2026-08-15T10:30:00+02:00", "2026-08-15", true},
		{"unix float", "1755252600.0", "2025-08-15", true},
		{"unix int", "1755252600", "2025-08-15", true},
		{"date with trailing text", "2026-08-15 some text", "2026-08-15", true},
		{"whitespace", "  2026-08-15  ", "2026-08-15", true},
		{"empty", "", "", false},
		{"garbage", "3 weeks ago", "", false},
		{"small number", "42", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	w := Window{From: date("2026-08-01"), To: date("2026-08-31")}
	inside := date("2026-08-15")
	outside := date("2026-06-01")

	tests := []struct {
		name   string
		t      *time.Time
		native bool
		want   model.DateConfidence
	}{
		{"nil date", nil, false, model.ConfidenceNone},
		{"native", &inside, true, model.ConfidenceHigh},
		{"native outside window", &outside, true, model.ConfidenceHigh},
		{"inferred inside window", &inside, false, model.ConfidenceMedium},
		{"inferred outside window", &outside, false, model.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.t, tt.native, w); got != tt.want {
				t.Errorf("Confidence() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecencyScoreBounds(t *testing.T) {
	now := date("2026-08-31")

	if got := RecencyScore(nil, now, 30); got != 0 {
		t.Errorf("nil date = %d, want 0", got)
	}

	today := now
	if got := RecencyScore(&today, now, 30); got != 100 {
		t.Errorf("today = %d, want 100", got)
	}

	future := now.AddDate(0, 0, 2)
	if got := RecencyScore(&future, now, 30); got != 100 {
		t.Errorf("future date = %d, want 100", got)
	}

	old := now.AddDate(0, 0, -45)
	if got := RecencyScore(&old, now, 30); got != 0 {
		t.Errorf("beyond window = %d, want 0", got)
	}
}

func TestRecencyScoreMonotone(t *testing.T) {
	now := date("2026-08-31")

	prev := 101
	for age := 0; age <= 35; age++ {
		d := now.AddDate(0, 0, -age)
		got := RecencyScore(&d, now, 30)
		if got < 0 || got > 100 {
			t.Fatalf("age %d: score %d out of range", age, got)
		}
		if got > prev {
			t.Fatalf("age %d: score %d rose above previous %d", age, got, prev)
		}
		prev = got
	}
}

func TestRecencyScoreScalesToWindow(t *testing.T) {
	now := date("2026-08-31")

	// The same relative position should score the same for any window:
	// 3 days into a 30-day window matches about 0.7 days into a 7-day one.
	d30 := now.AddDate(0, 0, -15)
	d7 := now.AddDate(0, 0, -3) // wrong relative position, should differ

	mid30 := RecencyScore(&d30, now, 30)
	early7 := RecencyScore(&d7, now, 7)
	if early7 <= mid30 {
		t.Errorf("relative positions ignored: 3/7 days = %d, 15/30 days = %d", early7, mid30)
	}

	// Identical relative positions score close together.
	half7 := now.AddDate(0, 0, -3)
	got7 := RecencyScore(&half7, now, 7)
	half14 := now.AddDate(0, 0, -6)
	got14 := RecencyScore(&half14, now, 14)
	if diff := got7 - got14; diff < -6 || diff > 6 {
		t.Errorf("half-window scores diverge: 7-day %d vs 14-day %d", got7, got14)
	}
}

func TestAgeDays(t *testing.T) {
	now := date("2026-08-31")
	tests := []struct {
		t    time.Time
		want int
	}{
		{date("2026-08-31"), 0},
		{date("2026-08-30"), 1},
		{time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC), 1},
		{date("2026-08-01"), 30},
	}
	for _, tt := range tests {
		if got := AgeDays(tt.t, now); got != tt.want {
			t.Errorf("AgeDays(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}
