// Command reindex runs one forced build pass and prints the resulting
// totals. Useful for warming the cache or from cron.
package main

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/traceview/traceview-backend/internal/config"
	"github.com/traceview/traceview-backend/internal/indexer"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	builder := indexer.NewBuilder(cfg.Logs.Dir, cfg.Cache.Dir, log)
	snap, stats, err := builder.Build()
	if err != nil {
		log.WithError(err).Fatal("index build failed")
	}

	out := map[string]any{
		"build_id":     snap.BuildID,
		"generated_at": snap.GeneratedAt,
		"totals":       snap.Totals,
		"reused":       stats.Reused,
		"scanned":      stats.Scanned,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.WithError(err).Fatal("failed to encode result")
	}
}
