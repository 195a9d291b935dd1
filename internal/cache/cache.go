// Package cache stores whole reports keyed by request fingerprint, with
// a fixed TTL. A memory layer fronts a JSON disk layer; concurrent
// identical requests may both miss and recompute, and the last write
// wins, which is safe because recomputation is deterministic for the
// same fingerprint inside the same window.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

// Cache is the byte-level store interface shared by the layers.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Fingerprint deterministically identifies one research request: the
// normalized topic, the window bounds, the enabled source set, and the
// depth setting.
func Fingerprint(topic, from, to string, sources []model.Source, depth string) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	sort.Strings(names)

	key := strings.Join([]string{
		normalizeTopic(topic),
		from,
		to,
		strings.Join(names, ","),
		depth,
	}, "|")

	hash := sha256.Sum256([]byte(key))
	return "lookback:v1:" + hex.EncodeToString(hash[:])
}

// normalizeTopic lowercases and collapses whitespace so trivially
// different spellings of the same request share a fingerprint.
func normalizeTopic(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}
