package models

import "time"

// Schema versions for the persisted artifacts. Bumping either one forces a
// full rebuild on the next pass instead of attempting a migration.
const (
	ManifestVersion = 1
	SnapshotVersion = 1
	TimelineVersion = 1
)

// DayKeyUnknown buckets sessions that never produced a parseable timestamp.
const DayKeyUnknown = "unknown"

// SessionSummary is the per-session result of summarizing one transcript
// file. Within a snapshot it is immutable; it only changes when its source
// file is re-summarized.
type SessionSummary struct {
	ID            string `json:"id"`
	Path          string `json:"path"`
	StartedAt     string `json:"started_at,omitempty"`
	EndedAt       string `json:"ended_at,omitempty"`
	DurationSec   *int64 `json:"duration_sec,omitempty"`
	CWD           string `json:"cwd,omitempty"`
	Originator    string `json:"originator,omitempty"`
	CLIVersion    string `json:"cli_version,omitempty"`
	MessageCount  int    `json:"message_count"`
	ToolCallCount int    `json:"tool_call_count"`
	ErrorCount    int    `json:"error_count"`
}

// ManifestEntry caches everything derived from a single transcript file,
// fingerprinted by (mtime, size). It is reusable only while both match the
// live file's stat exactly.
type ManifestEntry struct {
	Path      string         `json:"path"`
	MTimeNS   int64          `json:"mtime_ns"`
	Size      int64          `json:"size"`
	SessionID string         `json:"session_id"`
	Summary   SessionSummary `json:"summary"`
	Tools     map[string]int `json:"tools,omitempty"`
	DayKey    string         `json:"day_key"`
}

// Manifest is the persisted per-file cache enabling incremental rebuilds.
// A manifest whose version or source dir disagrees with the current run is
// treated as empty.
type Manifest struct {
	Version   int                      `json:"version"`
	SourceDir string                   `json:"source_dir"`
	Entries   map[string]ManifestEntry `json:"entries"`
}

// DailyAgg is one calendar-day bucket of cross-session counters.
type DailyAgg struct {
	Sessions  int `json:"sessions"`
	Messages  int `json:"messages"`
	ToolCalls int `json:"tool_calls"`
	Errors    int `json:"errors"`
}

// Totals holds the snapshot-wide aggregate counters.
type Totals struct {
	Files     int `json:"files"`
	Sessions  int `json:"sessions"`
	Messages  int `json:"messages"`
	ToolCalls int `json:"tool_calls"`
	Errors    int `json:"errors"`
}

// IndexSnapshot is the complete computed index as of one build. Sessions are
// listed in discovery order, not sorted by time.
type IndexSnapshot struct {
	Version     int                 `json:"version"`
	BuildID     string              `json:"build_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	SourceDir   string              `json:"source_dir"`
	CacheDir    string              `json:"cache_dir"`
	Totals      Totals              `json:"totals"`
	Tools       map[string]int      `json:"tools"`
	Daily       map[string]DailyAgg `json:"daily"`
	Sessions    []SessionSummary    `json:"sessions"`
}

// Timeline event kinds.
const (
	EventUser       = "user"
	EventAssistant  = "assistant"
	EventToolCall   = "tool_call"
	EventToolOutput = "tool_output"
	EventError      = "error"
	EventOther      = "other"
)

// TimelineEvent is one displayable entry of a session's reconstructed
// timeline.
type TimelineEvent struct {
	Timestamp string `json:"timestamp,omitempty"`
	Kind      string `json:"kind"`
	Tool      string `json:"tool,omitempty"`
	Text      string `json:"text,omitempty"`
}

// MaxTimelineEvents caps a single timeline response.
const MaxTimelineEvents = 5000

// SessionTimelineResponse is the full answer to a timeline query.
type SessionTimelineResponse struct {
	Summary   SessionSummary  `json:"summary"`
	Truncated bool            `json:"truncated"`
	Events    []TimelineEvent `json:"events"`
}
