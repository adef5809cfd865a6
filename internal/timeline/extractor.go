// Package timeline reconstructs a session's ordered, capped event timeline
// from its transcript file, with a per-session persisted cache keyed by the
// file's (mtime, size) fingerprint.
package timeline

import (
	"github.com/traceview/traceview-backend/internal/models"
	"github.com/traceview/traceview-backend/internal/scanner"
	"github.com/traceview/traceview-backend/internal/summarize"
)

// Extract streams path and emits display events in file order, stopping at
// models.MaxTimelineEvents. The returned flag reports whether more
// qualifying events would have followed the cap.
func Extract(path string) ([]models.TimelineEvent, bool, error) {
	events := make([]models.TimelineEvent, 0, 256)
	truncated := false
	// call-id -> tool name, built during this pass only.
	calls := make(map[string]string)

	err := scanner.EachLine(path, func(line []byte) bool {
		rec, ok := scanner.Decode(line)
		if !ok {
			return true
		}

		ev, ok := eventFor(rec, calls)
		if !ok {
			return true
		}
		if len(events) == models.MaxTimelineEvents {
			truncated = true
			return false
		}
		events = append(events, ev)
		return true
	})
	if err != nil {
		return nil, false, err
	}
	return events, truncated, nil
}

func eventFor(rec scanner.Record, calls map[string]string) (models.TimelineEvent, bool) {
	ev := models.TimelineEvent{Timestamp: rec.Timestamp}

	switch rec.Kind {
	case scanner.KindTurnAborted:
		ev.Kind = models.EventError
		ev.Text = "turn aborted"
	case scanner.KindMessage:
		switch rec.Role {
		case "user":
			ev.Kind = models.EventUser
		case "assistant":
			ev.Kind = models.EventAssistant
		default:
			ev.Kind = models.EventOther
		}
		ev.Text = rec.Text
	case scanner.KindToolCall:
		ev.Kind = models.EventToolCall
		ev.Tool = rec.Tool
		if ev.Tool == "" {
			ev.Tool = summarize.ToolNameUnknown
		}
		ev.Text = rec.Text
		if rec.CallID != "" {
			calls[rec.CallID] = ev.Tool
		}
	case scanner.KindToolOutput:
		ev.Kind = models.EventToolOutput
		ev.Tool = calls[rec.CallID]
		ev.Text = rec.Text
	default:
		return models.TimelineEvent{}, false
	}
	return ev, true
}
