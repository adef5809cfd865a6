package services

import (
	"github.com/sirupsen/logrus"

	"github.com/traceview/traceview-backend/internal/config"
	"github.com/traceview/traceview-backend/internal/indexer"
	"github.com/traceview/traceview-backend/internal/timeline"
)

// Services bundles the long-lived components handed to the HTTP handlers.
type Services struct {
	Config    *config.Config
	Snapshots *indexer.SnapshotCache
	Timelines *timeline.Service
	Log       *logrus.Logger
}

// New wires the index builder, snapshot cache and timeline service from the
// loaded configuration.
func New(cfg *config.Config, log *logrus.Logger) *Services {
	builder := indexer.NewBuilder(cfg.Logs.Dir, cfg.Cache.Dir, log)
	snapshots := indexer.NewSnapshotCache(builder, cfg.Cache.Dir, log)
	return &Services{
		Config:    cfg,
		Snapshots: snapshots,
		Timelines: timeline.NewService(cfg.Cache.Dir, snapshots, log),
		Log:       log,
	}
}
