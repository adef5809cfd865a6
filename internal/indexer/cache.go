package indexer

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/traceview/traceview-backend/internal/models"
)

// SnapshotCache holds at most one in-memory snapshot and collapses
// concurrent rebuild requests into a single in-flight build. A persisted
// snapshot with a matching schema version is served immediately while a
// background rebuild replaces it; background failures are swallowed and the
// stale snapshot stays authoritative.
//
// Lifecycle: empty at start, populated on first Get, replaced (never merged)
// on every successful rebuild. Tests construct a fresh instance instead of
// sharing process-wide state.
type SnapshotCache struct {
	builder  SnapshotBuilder
	cacheDir string
	log      *logrus.Logger

	mu      sync.RWMutex
	current *models.IndexSnapshot
	subs    []chan *models.IndexSnapshot

	group singleflight.Group
}

// SnapshotBuilder abstracts the index builder so tests can substitute their
// own.
type SnapshotBuilder interface {
	Build() (*models.IndexSnapshot, BuildStats, error)
}

// NewSnapshotCache creates an empty cache over builder, reviving persisted
// snapshots from cacheDir.
func NewSnapshotCache(builder SnapshotBuilder, cacheDir string, log *logrus.Logger) *SnapshotCache {
	return &SnapshotCache{builder: builder, cacheDir: cacheDir, log: log}
}

// Get returns the current snapshot. An in-memory snapshot is returned with
// no I/O; otherwise callers share one flight that either revives the
// persisted snapshot (kicking off an unawaited refresh) or builds
// synchronously.
func (c *SnapshotCache) Get() (*models.IndexSnapshot, error) {
	if snap := c.loaded(); snap != nil {
		return snap, nil
	}

	v, err, _ := c.group.Do("snapshot", func() (any, error) {
		if snap := c.loaded(); snap != nil {
			return snap, nil
		}
		if snap, ok := LoadSnapshot(c.cacheDir); ok {
			c.replace(snap)
			go c.refreshInBackground()
			return snap, nil
		}
		snap, _, err := c.builder.Build()
		if err != nil {
			return nil, err
		}
		c.replace(snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.IndexSnapshot), nil
}

// Refresh forces a rebuild, sharing one flight across concurrent callers.
func (c *SnapshotCache) Refresh() (*models.IndexSnapshot, error) {
	v, err, _ := c.group.Do("rebuild", func() (any, error) {
		snap, _, err := c.builder.Build()
		if err != nil {
			return nil, err
		}
		c.replace(snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.IndexSnapshot), nil
}

// Subscribe returns a channel receiving each snapshot installed by a
// successful rebuild, plus a cancel function. Slow receivers miss updates
// rather than blocking a build.
func (c *SnapshotCache) Subscribe() (<-chan *models.IndexSnapshot, func()) {
	ch := make(chan *models.IndexSnapshot, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub == ch {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}

func (c *SnapshotCache) loaded() *models.IndexSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *SnapshotCache) replace(snap *models.IndexSnapshot) {
	c.mu.Lock()
	c.current = snap
	subs := make([]chan *models.IndexSnapshot, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *SnapshotCache) refreshInBackground() {
	if _, err := c.Refresh(); err != nil {
		c.log.WithError(err).Warn("background snapshot refresh failed; keeping stale snapshot")
	}
}
