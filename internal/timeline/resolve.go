package timeline

import (
	"github.com/traceview/traceview-backend/internal/models"
	"github.com/traceview/traceview-backend/internal/scanner"
	"github.com/traceview/traceview-backend/internal/summarize"
)

// resolve locates the session's summary (and through it, its file) within
// the snapshot. An exact filename-stem match wins; otherwise each file's
// first line is checked for a session_meta record with the requested id,
// which the writer always emits first.
func resolve(snap *models.IndexSnapshot, sessionID string) (models.SessionSummary, bool) {
	for _, s := range snap.Sessions {
		if summarize.Stem(s.Path) == sessionID {
			return s, true
		}
	}
	for _, s := range snap.Sessions {
		if firstLineSessionID(s.Path) == sessionID {
			return s, true
		}
	}
	return models.SessionSummary{}, false
}

func firstLineSessionID(path string) string {
	var id string
	_ = scanner.EachLine(path, func(line []byte) bool {
		if rec, ok := scanner.Decode(line); ok && rec.Kind == scanner.KindSessionMeta {
			id = rec.Meta.ID
		}
		return false
	})
	return id
}
