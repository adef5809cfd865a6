package timeline

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/traceview/traceview-backend/internal/indexer"
	"github.com/traceview/traceview-backend/internal/models"
)

// Service answers timeline queries, using the snapshot to locate a session's
// file and the per-session cache to skip re-extraction of unchanged files.
type Service struct {
	cacheDir  string
	snapshots *indexer.SnapshotCache
	log       *logrus.Logger
}

// NewService creates a timeline service persisting under cacheDir.
func NewService(cacheDir string, snapshots *indexer.SnapshotCache, log *logrus.Logger) *Service {
	return &Service{cacheDir: cacheDir, snapshots: snapshots, log: log}
}

// Timeline returns the session's reconstructed timeline. An id that resolves
// to no file yields a well-formed synthetic error response, never an error.
func (s *Service) Timeline(sessionID string) (*models.SessionTimelineResponse, error) {
	snap, err := s.snapshots.Get()
	if err != nil {
		return nil, err
	}

	summary, ok := resolve(snap, sessionID)
	if !ok {
		return notFound(sessionID), nil
	}

	info, err := os.Stat(summary.Path)
	if err != nil {
		// The file vanished since the snapshot was built.
		return notFound(sessionID), nil
	}
	mtimeNS, size := info.ModTime().UnixNano(), info.Size()

	if cached, ok := loadCached(s.cacheDir, sessionID, summary.Path, mtimeNS, size); ok {
		return cached, nil
	}

	events, truncated, err := Extract(summary.Path)
	if err != nil {
		return nil, fmt.Errorf("extract timeline for %s: %w", sessionID, err)
	}

	resp := &models.SessionTimelineResponse{
		Summary:   summary,
		Truncated: truncated,
		Events:    events,
	}
	if err := saveCached(s.cacheDir, sessionID, summary.Path, mtimeNS, size, resp); err != nil {
		s.log.WithError(err).WithField("session", sessionID).Warn("failed to persist timeline cache")
	}
	return resp, nil
}

func notFound(sessionID string) *models.SessionTimelineResponse {
	return &models.SessionTimelineResponse{
		Summary: models.SessionSummary{
			ID:         sessionID,
			ErrorCount: 1,
		},
		Events: []models.TimelineEvent{{
			Kind: models.EventError,
			Text: fmt.Sprintf("no transcript found for session %q", sessionID),
		}},
	}
}
