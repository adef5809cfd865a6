package timeline

import (
	"path/filepath"
	"strings"

	"github.com/traceview/traceview-backend/internal/models"
	"github.com/traceview/traceview-backend/internal/storage"
)

const sessionCacheDir = "sessions"

// cacheEntry is the persisted per-session timeline, valid only while the
// recorded fingerprint matches the live file.
type cacheEntry struct {
	Version   int                            `json:"version"`
	SessionID string                         `json:"session_id"`
	Path      string                         `json:"path"`
	MTimeNS   int64                          `json:"mtime_ns"`
	Size      int64                          `json:"size"`
	Response  models.SessionTimelineResponse `json:"response"`
}

func cachePath(cacheDir, sessionID string) string {
	// Session ids come from file stems or log metadata; neutralize path
	// separators before using one as a file name.
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(sessionID)
	return filepath.Join(cacheDir, sessionCacheDir, name+".json")
}

// loadCached returns the cached response when the fingerprint still matches.
func loadCached(cacheDir, sessionID, path string, mtimeNS, size int64) (*models.SessionTimelineResponse, bool) {
	var entry cacheEntry
	if err := storage.ReadJSON(cachePath(cacheDir, sessionID), &entry); err != nil {
		return nil, false
	}
	if entry.Version != models.TimelineVersion || entry.Path != path ||
		entry.MTimeNS != mtimeNS || entry.Size != size {
		return nil, false
	}
	return &entry.Response, true
}

func saveCached(cacheDir, sessionID, path string, mtimeNS, size int64, resp *models.SessionTimelineResponse) error {
	if err := storage.EnsureDir(filepath.Join(cacheDir, sessionCacheDir)); err != nil {
		return err
	}
	entry := cacheEntry{
		Version:   models.TimelineVersion,
		SessionID: sessionID,
		Path:      path,
		MTimeNS:   mtimeNS,
		Size:      size,
		Response:  *resp,
	}
	return storage.WriteJSON(cachePath(cacheDir, sessionID), entry)
}
