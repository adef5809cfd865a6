package scanner

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind discriminates the decoded record variants.
type Kind int

const (
	// KindOther covers well-formed records the index does not act on beyond
	// timestamp tracking.
	KindOther Kind = iota
	KindSessionMeta
	KindTurnAborted
	KindMessage
	KindToolCall
	KindToolOutput
)

// SessionMeta carries the identity/context fields of a session_meta record.
type SessionMeta struct {
	ID         string
	Timestamp  string
	CWD        string
	Originator string
	CLIVersion string
}

// Record is the tagged-variant result of decoding one transcript line. Only
// the fields relevant to the Kind are populated; everything else stays at its
// zero value.
type Record struct {
	Kind      Kind
	Timestamp string

	Meta SessionMeta // KindSessionMeta

	Role string // KindMessage
	Text string // message body, call arguments, or call output

	Tool   string // KindToolCall
	CallID string // KindToolCall, KindToolOutput
}

type rawRecord struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type rawMeta struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	CWD        string `json:"cwd"`
	Originator string `json:"originator"`
	CLIVersion string `json:"cli_version"`
}

type rawItem struct {
	Type      string           `json:"type"`
	Role      string           `json:"role"`
	Content   []rawContentPart `json:"content"`
	Name      string           `json:"name"`
	Arguments string           `json:"arguments"`
	Input     string           `json:"input"`
	CallID    string           `json:"call_id"`
	Output    json.RawMessage  `json:"output"`
}

type rawContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Decode parses one raw line into a Record. It returns ok=false for lines
// that are not JSON objects; those are discarded by callers without aborting
// the file. Unrecognized record or payload types decode to KindOther so their
// timestamps still count toward the session's observed bounds.
func Decode(line []byte) (Record, bool) {
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return Record{}, false
	}

	rec := Record{Kind: KindOther, Timestamp: raw.Timestamp}

	switch raw.Type {
	case "session_meta":
		var meta rawMeta
		if err := json.Unmarshal(raw.Payload, &meta); err != nil {
			return rec, true
		}
		rec.Kind = KindSessionMeta
		rec.Meta = SessionMeta{
			ID:         meta.ID,
			Timestamp:  meta.Timestamp,
			CWD:        meta.CWD,
			Originator: meta.Originator,
			CLIVersion: meta.CLIVersion,
		}

	case "event_msg":
		var ev struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw.Payload, &ev); err != nil {
			return rec, true
		}
		if ev.Type == "turn_aborted" {
			rec.Kind = KindTurnAborted
		}

	case "response_item":
		var item rawItem
		if err := json.Unmarshal(raw.Payload, &item); err != nil {
			return rec, true
		}
		decodeItem(&rec, item)
	}

	return rec, true
}

func decodeItem(rec *Record, item rawItem) {
	switch item.Type {
	case "message":
		rec.Kind = KindMessage
		rec.Role = item.Role
		rec.Text = joinContent(item.Content)
	case "function_call":
		rec.Kind = KindToolCall
		rec.Tool = item.Name
		rec.CallID = item.CallID
		rec.Text = item.Arguments
	case "custom_tool_call":
		rec.Kind = KindToolCall
		rec.Tool = item.Name
		rec.CallID = item.CallID
		rec.Text = item.Input
	case "function_call_output", "custom_tool_call_output":
		rec.Kind = KindToolOutput
		rec.CallID = item.CallID
		rec.Text = outputText(item.Output)
	}
}

// joinContent concatenates the recognized textual fragments of a message,
// newline-joined and trimmed. Non-text parts contribute nothing.
func joinContent(parts []rawContentPart) string {
	var texts []string
	for _, p := range parts {
		switch p.Type {
		case "input_text", "output_text", "text":
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// outputText normalizes a call output that may be either a JSON string or a
// structured value. Structured values are kept as their raw JSON text so
// error sniffing can still inspect them.
func outputText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ParseTime reports whether ts is a parseable record timestamp. The logs
// write RFC 3339 with varying fractional precision.
func ParseTime(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
