// Package indexer builds the aggregated index snapshot over the transcript
// corpus, reusing per-file results from the persisted manifest whenever a
// file's (mtime, size) fingerprint is unchanged.
package indexer

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/traceview/traceview-backend/internal/models"
	"github.com/traceview/traceview-backend/internal/scanner"
	"github.com/traceview/traceview-backend/internal/storage"
	"github.com/traceview/traceview-backend/internal/summarize"
)

// BuildStats reports how much work a build pass actually did.
type BuildStats struct {
	Files   int // transcript files discovered and statted
	Reused  int // files served from the manifest without re-reading
	Scanned int // files re-summarized this pass
}

// Builder orchestrates discovery, the manifest store and the per-file
// summarizer into one snapshot. Files are processed one at a time; there is
// no interleaving within a build pass.
type Builder struct {
	sourceDir string
	cacheDir  string
	log       *logrus.Logger
}

// NewBuilder creates a builder over sourceDir persisting into cacheDir.
func NewBuilder(sourceDir, cacheDir string, log *logrus.Logger) *Builder {
	return &Builder{sourceDir: sourceDir, cacheDir: cacheDir, log: log}
}

// Build performs one full pass: re-scan the directory, reuse or re-summarize
// each file, prune manifest entries for vanished files, aggregate, and
// persist manifest and snapshot atomically.
func (b *Builder) Build() (*models.IndexSnapshot, BuildStats, error) {
	started := time.Now()
	var stats BuildStats

	if err := storage.EnsureDir(b.cacheDir); err != nil {
		return nil, stats, err
	}

	manifest := loadManifest(b.cacheDir, b.sourceDir)
	files := scanner.Discover(b.sourceDir)

	snap := &models.IndexSnapshot{
		Version:     models.SnapshotVersion,
		BuildID:     uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		SourceDir:   b.sourceDir,
		CacheDir:    b.cacheDir,
		Tools:       make(map[string]int),
		Daily:       make(map[string]models.DailyAgg),
		Sessions:    make([]models.SessionSummary, 0, len(files)),
	}

	// Rebuilt from scratch each pass; entries for files that no longer exist
	// simply never make it in.
	entries := make(map[string]models.ManifestEntry, len(files))

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			// File vanished between discovery and stat.
			continue
		}
		stats.Files++

		entry, ok := manifest.Entries[path]
		if ok && entry.MTimeNS == info.ModTime().UnixNano() && entry.Size == info.Size() {
			stats.Reused++
		} else {
			result, err := summarize.File(path)
			if err != nil {
				b.log.WithError(err).WithField("path", path).Warn("skipping unreadable transcript")
				continue
			}
			stats.Scanned++
			entry = models.ManifestEntry{
				Path:      path,
				MTimeNS:   info.ModTime().UnixNano(),
				Size:      info.Size(),
				SessionID: result.Summary.ID,
				Summary:   result.Summary,
				Tools:     result.Tools,
				DayKey:    result.DayKey,
			}
		}
		entries[path] = entry
		b.aggregate(snap, entry)
	}

	manifest.Entries = entries
	if err := saveManifest(b.cacheDir, manifest); err != nil {
		return nil, stats, err
	}
	if err := saveSnapshot(b.cacheDir, snap); err != nil {
		return nil, stats, err
	}

	b.log.WithFields(logrus.Fields{
		"files":   stats.Files,
		"reused":  stats.Reused,
		"scanned": stats.Scanned,
		"elapsed": time.Since(started).Round(time.Millisecond).String(),
	}).Info("index build complete")

	return snap, stats, nil
}

func (b *Builder) aggregate(snap *models.IndexSnapshot, entry models.ManifestEntry) {
	s := entry.Summary
	snap.Sessions = append(snap.Sessions, s)

	snap.Totals.Files++
	snap.Totals.Sessions++
	snap.Totals.Messages += s.MessageCount
	snap.Totals.ToolCalls += s.ToolCallCount
	snap.Totals.Errors += s.ErrorCount

	for name, n := range entry.Tools {
		snap.Tools[name] += n
	}

	day := snap.Daily[entry.DayKey]
	day.Sessions++
	day.Messages += s.MessageCount
	day.ToolCalls += s.ToolCallCount
	day.Errors += s.ErrorCount
	snap.Daily[entry.DayKey] = day
}
