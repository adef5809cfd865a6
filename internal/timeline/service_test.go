package timeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traceview/traceview-backend/internal/indexer"
	"github.com/traceview/traceview-backend/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	logDir := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	log := quietLogger()
	builder := indexer.NewBuilder(logDir, cacheDir, log)
	snapshots := indexer.NewSnapshotCache(builder, cacheDir, log)
	return NewService(cacheDir, snapshots, log), logDir
}

func writeLog(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

const transcriptLines = `{"timestamp":"2024-03-01T10:00:00Z","type":"session_meta","payload":{"id":"abc","timestamp":"2024-03-01T10:00:00Z","cwd":"/tmp","originator":"cli"}}
{"timestamp":"2024-03-01T10:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"run ls"}]}}
{"timestamp":"2024-03-01T10:00:02Z","type":"response_item","payload":{"type":"function_call","name":"shell","arguments":"{\"cmd\":\"ls\"}","call_id":"call_1"}}
{"timestamp":"2024-03-01T10:00:03Z","type":"response_item","payload":{"type":"function_call_output","call_id":"call_1","output":"total 0"}}
{"timestamp":"2024-03-01T10:00:04Z","type":"response_item","payload":{"type":"message","role":"assistant","content":[{"type":"output_text","text":"done"}]}}
{"timestamp":"2024-03-01T10:00:05Z","type":"event_msg","payload":{"type":"turn_aborted"}}`

func TestTimelineEventOrderAndCorrelation(t *testing.T) {
	svc, logDir := newTestService(t)
	writeLog(t, logDir, "abc.jsonl", transcriptLines)

	resp, err := svc.Timeline("abc")
	require.NoError(t, err)
	assert.False(t, resp.Truncated)
	require.Len(t, resp.Events, 5)

	assert.Equal(t, models.EventUser, resp.Events[0].Kind)
	assert.Equal(t, "run ls", resp.Events[0].Text)

	assert.Equal(t, models.EventToolCall, resp.Events[1].Kind)
	assert.Equal(t, "shell", resp.Events[1].Tool)

	assert.Equal(t, models.EventToolOutput, resp.Events[2].Kind)
	assert.Equal(t, "shell", resp.Events[2].Tool, "output inherits the tool name via call-id correlation")
	assert.Equal(t, "total 0", resp.Events[2].Text)

	assert.Equal(t, models.EventAssistant, resp.Events[3].Kind)
	assert.Equal(t, models.EventError, resp.Events[4].Kind)

	assert.Equal(t, "abc", resp.Summary.ID)
	assert.Equal(t, 1, resp.Summary.ErrorCount)
}

func TestTimelineResolvesByFirstLineMetadata(t *testing.T) {
	svc, logDir := newTestService(t)
	// File stem differs from the session id recorded in its metadata.
	writeLog(t, logDir, "rollout-2024-03-01.jsonl", transcriptLines)

	resp, err := svc.Timeline("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Summary.ID)
	assert.NotEmpty(t, resp.Events)
}

func TestTimelineUnknownSessionIsSynthetic(t *testing.T) {
	svc, logDir := newTestService(t)
	writeLog(t, logDir, "abc.jsonl", transcriptLines)

	resp, err := svc.Timeline("no-such-session")
	require.NoError(t, err, "lookup failures are responses, not errors")
	assert.Equal(t, 1, resp.Summary.ErrorCount)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, models.EventError, resp.Events[0].Kind)
}

func TestTimelineTruncatesAtCap(t *testing.T) {
	svc, logDir := newTestService(t)

	var b strings.Builder
	b.WriteString(`{"timestamp":"2024-03-01T10:00:00Z","type":"session_meta","payload":{"id":"big","timestamp":"2024-03-01T10:00:00Z"}}` + "\n")
	for i := 0; i < models.MaxTimelineEvents+10; i++ {
		fmt.Fprintf(&b, `{"timestamp":"2024-03-01T10:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"m%d"}]}}`+"\n", i)
	}
	writeLog(t, logDir, "big.jsonl", strings.TrimSuffix(b.String(), "\n"))

	resp, err := svc.Timeline("big")
	require.NoError(t, err)
	assert.True(t, resp.Truncated)
	require.Len(t, resp.Events, models.MaxTimelineEvents)
	assert.Equal(t, "m0", resp.Events[0].Text, "events keep original order")
}

func TestTimelineExactCapIsNotTruncated(t *testing.T) {
	svc, logDir := newTestService(t)

	var b strings.Builder
	for i := 0; i < models.MaxTimelineEvents; i++ {
		fmt.Fprintf(&b, `{"timestamp":"2024-03-01T10:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"m%d"}]}}`+"\n", i)
	}
	writeLog(t, logDir, "exact.jsonl", strings.TrimSuffix(b.String(), "\n"))

	resp, err := svc.Timeline("exact")
	require.NoError(t, err)
	assert.False(t, resp.Truncated)
	assert.Len(t, resp.Events, models.MaxTimelineEvents)
}

func TestTimelineCacheInvalidatedByFileChange(t *testing.T) {
	svc, logDir := newTestService(t)
	path := writeLog(t, logDir, "abc.jsonl", transcriptLines)

	first, err := svc.Timeline("abc")
	require.NoError(t, err)

	// Unchanged file: served again, same shape.
	again, err := svc.Timeline("abc")
	require.NoError(t, err)
	assert.Equal(t, first.Events, again.Events)

	// Append one more message; the fingerprint changes and the cached
	// timeline must be rebuilt.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2024-03-01T10:00:06Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"one more"}]}}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rebuilt, err := svc.Timeline("abc")
	require.NoError(t, err)
	assert.Len(t, rebuilt.Events, len(first.Events)+1)
	assert.Equal(t, "one more", rebuilt.Events[len(rebuilt.Events)-1].Text)
}

func TestExtractSkipsMalformedAndInertLines(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "s.jsonl",
		"garbage",
		`{"timestamp":"2024-03-01T10:00:00Z","type":"turn_context","payload":{"model":"o3"}}`,
		`{"timestamp":"2024-03-01T10:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"hi"}]}}`,
	)

	events, truncated, err := Extract(path)
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventUser, events[0].Kind)
}

func TestExtractOtherRole(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "s.jsonl",
		`{"timestamp":"2024-03-01T10:00:00Z","type":"response_item","payload":{"type":"message","role":"system","content":[{"type":"text","text":"be nice"}]}}`,
	)

	events, _, err := Extract(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventOther, events[0].Kind)
	assert.Equal(t, "be nice", events[0].Text)
}
