package slack

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chessops/dashboard/pkg/models"
)

// dedupEntry holds the time a fingerprint was last notified, for TTL
// expiration.
type dedupEntry struct {
	notifiedAt time.Time
}

// DedupCache is a thread-safe fingerprint cache with TTL expiration.
// Expired entries are cleaned up lazily on Seen() — no background goroutine.
//
// It suppresses repeat notifications for the same recurring anomaly: a
// stuck camera produces the same corner_drift on every frame, and one
// Slack message per TTL window is enough.
type DedupCache struct {
	mu      sync.RWMutex
	entries map[string]*dedupEntry
	ttl     time.Duration
}

// NewDedupCache creates a new cache with the given TTL.
func NewDedupCache(ttl time.Duration) *DedupCache {
	return &DedupCache{
		entries: make(map[string]*dedupEntry),
		ttl:     ttl,
	}
}

// Seen reports whether the fingerprint was notified within the TTL window.
func (c *DedupCache) Seen(fingerprint string) bool {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	if !ok {
		return false
	}

	if time.Since(entry.notifiedAt) > c.ttl {
		// Expired — clean up lazily.
		// Re-check under write lock: a concurrent Mark() may have replaced
		// the entry with a fresh one between RUnlock and Lock.
		c.mu.Lock()
		if current, ok := c.entries[fingerprint]; ok && time.Since(current.notifiedAt) > c.ttl {
			delete(c.entries, fingerprint)
		}
		c.mu.Unlock()
		return false
	}

	return true
}

// Mark records the fingerprint with the current timestamp.
func (c *DedupCache) Mark(fingerprint string) {
	c.mu.Lock()
	c.entries[fingerprint] = &dedupEntry{notifiedAt: time.Now()}
	c.mu.Unlock()
}

// Fingerprint identifies a recurring anomaly: type, severity, and the
// affected cells. The frame ID is deliberately excluded so the same
// condition on successive frames collapses to one notification.
func Fingerprint(a models.Anomaly) string {
	cells := make([]string, len(a.AffectedCells))
	copy(cells, a.AffectedCells)
	sort.Strings(cells)
	return a.Type + "|" + string(a.Severity) + "|" + strings.Join(cells, ",")
}
