package cache

import (
	"testing"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

func TestFingerprintDeterministic(t *testing.T) {
	sources := []model.Source{model.SourceReddit, model.SourceHackerNews}

	a := Fingerprint("go generics", "2026-08-01", "2026-08-31", sources, "default")
	b := Fingerprint("go generics", "2026-08-01", "2026-08-31", sources, "default")
	if a != b {
		t.Errorf("same request produced different fingerprints:\n%s\n%s", a, b)
	}
}

func TestFingerprintNormalizesTopic(t *testing.T) {
	sources := []model.Source{model.SourceWeb}

	a := Fingerprint("Go  Generics ", "2026-08-01", "2026-08-31", sources, "default")
	b := Fingerprint("go generics", "2026-08-01", "2026-08-31", sources, "default")
	if a != b {
		t.Errorf("whitespace/case variants should share a fingerprint")
	}
}

func TestFingerprintSourceOrderIrrelevant(t *testing.T) {
	a := Fingerprint("topic", "2026-08-01", "2026-08-31",
		[]model.Source{model.SourceReddit, model.SourceWeb}, "default")
	b := Fingerprint("topic", "2026-08-01", "2026-08-31",
		[]model.Source{model.SourceWeb, model.SourceReddit}, "default")
	if a != b {
		t.Errorf("source order should not change the fingerprint")
	}
}

func TestFingerprintVariesByInput(t *testing.T) {
	sources := []model.Source{model.SourceWeb}
	base := Fingerprint("topic", "2026-08-01", "2026-08-31", sources, "default")

	variants := []string{
		Fingerprint("other topic", "2026-08-01", "2026-08-31", sources, "default"),
		Fingerprint("topic", "2026-07-01", "2026-08-31", sources, "default"),
		Fingerprint("topic", "2026-08-01", "2026-08-30", sources, "default"),
		Fingerprint("topic", "2026-08-01", "2026-08-31", sources, "deep"),
		Fingerprint("topic", "2026-08-01", "2026-08-31", []model.Source{model.SourceReddit}, "default"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base fingerprint", i)
		}
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := Fingerprint("topic", "2026-08-01", "2026-08-31", nil, "default")
	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found := c.Get(key)
	if !found {
		t.Fatal("Get missed after Set")
	}
	if string(got) != "payload" {
		t.Errorf("Get = %q, want payload", got)
	}

	if _, found := c.Get("lookback:v1:missing"); found {
		t.Error("Get hit on unknown key")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entry served")
	}
	// The expired file is removed on read.
	if _, found := c.Get("k"); found {
		t.Error("expired entry served twice")
	}
}

func TestLayeredCachePromotion(t *testing.T) {
	dir := t.TempDir()

	// Write through one instance, read through a fresh one: only the
	// disk layer persists.
	first := NewLayeredCache(time.Hour, dir, time.Hour)
	if err := first.Set("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second := NewLayeredCache(time.Hour, dir, time.Hour)
	got, found := second.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("disk layer miss: %q %v", got, found)
	}

	// Now cached in memory too.
	if _, found := second.memory.Get("k"); !found {
		t.Error("disk hit was not promoted to memory")
	}
}

func TestReportStoreRoundTrip(t *testing.T) {
	store := NewReportStore(t.TempDir(), time.Hour)
	stored := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return stored }

	report := &model.Report{
		Topic: "go generics",
		From:  "2026-08-01",
		To:    "2026-08-31",
		Web:   []model.Item{{Source: model.SourceWeb, ID: "W1", Title: "post", URL: "https://example.com", Score: 70}},
	}

	key := Fingerprint(report.Topic, report.From, report.To, []model.Source{model.SourceWeb}, "default")
	if err := store.Put(key, report); err != nil {
		t.Fatalf("Put: %v", err)
	}

	store.now = func() time.Time { return stored.Add(30 * time.Minute) }
	got, age, found := store.Get(key)
	if !found {
		t.Fatal("Get missed after Put")
	}
	if got.Topic != "go generics" || len(got.Web) != 1 || got.Web[0].Score != 70 {
		t.Errorf("report did not round-trip: %+v", got)
	}
	if age != 30*time.Minute {
		t.Errorf("age = %v, want 30m", age)
	}
}

func TestReportStoreMiss(t *testing.T) {
	store := NewReportStore(t.TempDir(), time.Hour)
	if _, _, found := store.Get("lookback:v1:nope"); found {
		t.Error("hit on unknown fingerprint")
	}
}
