package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

// ReportStore wraps the layered byte cache with report marshalling and
// age tracking.
type ReportStore struct {
	cache Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewReportStore creates a report store backed by memory over disk.
func NewReportStore(dir string, ttl time.Duration) *ReportStore {
	return &ReportStore{
		cache: NewLayeredCache(ttl, dir, ttl),
		ttl:   ttl,
		now:   time.Now,
	}
}

type storedReport struct {
	StoredAt time.Time     `json:"stored_at"`
	Report   *model.Report `json:"report"`
}

// Get returns a cached report and its age, or a miss. Malformed entries
// count as misses.
func (s *ReportStore) Get(fingerprint string) (*model.Report, time.Duration, bool) {
	data, found := s.cache.Get(fingerprint)
	if !found {
		return nil, 0, false
	}

	var entry storedReport
	if err := json.Unmarshal(data, &entry); err != nil || entry.Report == nil {
		_ = s.cache.Delete(fingerprint)
		return nil, 0, false
	}

	return entry.Report, s.now().UTC().Sub(entry.StoredAt), true
}

// Put stores a report under the fingerprint for the fixed TTL.
func (s *ReportStore) Put(fingerprint string, report *model.Report) error {
	data, err := json.Marshal(storedReport{
		StoredAt: s.now().UTC(),
		Report:   report,
	})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return s.cache.Set(fingerprint, data, s.ttl)
}
