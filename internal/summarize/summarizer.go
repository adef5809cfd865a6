// Package summarize turns one transcript file into a session summary, a
// tool-usage histogram and a daily bucket key, in a single streaming pass.
package summarize

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/traceview/traceview-backend/internal/models"
	"github.com/traceview/traceview-backend/internal/scanner"
)

// ToolNameUnknown is the histogram bucket for tool calls without a name.
const ToolNameUnknown = "unknown"

// FileResult aggregates everything derived from one transcript file.
type FileResult struct {
	Summary models.SessionSummary
	Tools   map[string]int
	DayKey  string
}

var errorMarkers = []string{"error", "exception", "traceback"}

// File streams path and produces its FileResult. Lines that fail to parse as
// JSON are discarded without aborting the file; the only returned errors are
// I/O failures on the file itself.
func File(path string) (*FileResult, error) {
	summary := models.SessionSummary{
		ID:   Stem(path),
		Path: path,
	}
	tools := make(map[string]int)
	// call-id correlation is scoped to this single pass and never leaks
	// across files.
	calls := make(map[string]string)

	var metaStarted, firstSeen, lastSeen string

	err := scanner.EachLine(path, func(line []byte) bool {
		rec, ok := scanner.Decode(line)
		if !ok {
			return true
		}

		if _, tok := scanner.ParseTime(rec.Timestamp); tok {
			if firstSeen == "" {
				firstSeen = rec.Timestamp
			}
			lastSeen = rec.Timestamp
		}

		switch rec.Kind {
		case scanner.KindSessionMeta:
			applyMeta(&summary, rec.Meta)
			if rec.Meta.Timestamp != "" {
				metaStarted = rec.Meta.Timestamp
			}
		case scanner.KindTurnAborted:
			summary.ErrorCount++
		case scanner.KindMessage:
			if rec.Role == "user" || rec.Role == "assistant" {
				summary.MessageCount++
			}
		case scanner.KindToolCall:
			summary.ToolCallCount++
			name := rec.Tool
			if name == "" {
				name = ToolNameUnknown
			}
			tools[name]++
			if rec.CallID != "" {
				calls[rec.CallID] = name
			}
		case scanner.KindToolOutput:
			if OutputIndicatesError(rec.Text) {
				summary.ErrorCount++
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	summary.StartedAt = metaStarted
	if summary.StartedAt == "" {
		summary.StartedAt = firstSeen
	}
	summary.EndedAt = lastSeen
	summary.DurationSec = durationSec(summary.StartedAt, summary.EndedAt)

	return &FileResult{
		Summary: summary,
		Tools:   tools,
		DayKey:  DayKey(summary.StartedAt),
	}, nil
}

// applyMeta overwrites the summary's identity and context fields. Counters
// are untouched, and a later sparse meta record cannot erase earlier values.
func applyMeta(s *models.SessionSummary, meta scanner.SessionMeta) {
	if meta.ID != "" {
		s.ID = meta.ID
	}
	if meta.CWD != "" {
		s.CWD = meta.CWD
	}
	if meta.Originator != "" {
		s.Originator = meta.Originator
	}
	if meta.CLIVersion != "" {
		s.CLIVersion = meta.CLIVersion
	}
}

// OutputIndicatesError reports whether a tool output looks like a failure:
// either an error/exception/traceback marker anywhere in the text, or a JSON
// object carrying a non-zero numeric exit code under its metadata field.
func OutputIndicatesError(output string) bool {
	if output == "" {
		return false
	}
	lower := strings.ToLower(output)
	for _, marker := range errorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	var structured struct {
		Metadata struct {
			ExitCode *float64 `json:"exit_code"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(output), &structured); err == nil {
		if structured.Metadata.ExitCode != nil && *structured.Metadata.ExitCode != 0 {
			return true
		}
	}
	return false
}

// durationSec computes floor(end-start) in seconds, or nil when either bound
// is missing, unparseable, or the range is negative.
func durationSec(start, end string) *int64 {
	st, ok := scanner.ParseTime(start)
	if !ok {
		return nil
	}
	et, ok := scanner.ParseTime(end)
	if !ok || et.Before(st) {
		return nil
	}
	secs := int64(et.Sub(st).Seconds())
	return &secs
}

// DayKey buckets a started-at timestamp into its calendar date (the first 10
// characters of an RFC 3339 string), or DayKeyUnknown without one.
func DayKey(startedAt string) string {
	if len(startedAt) < 10 {
		return models.DayKeyUnknown
	}
	return startedAt[:10]
}

// Stem returns the file name without its extension, the default session id
// for files lacking a session_meta record.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
