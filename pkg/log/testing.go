package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// recorder is the buffer shared by a TestLogger and every logger derived
// from it with With.
type recorder struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (r *recorder) write(entry map[string]interface{}) {
	line, err := json.Marshal(entry)
	if err != nil {
		line, _ = json.Marshal(map[string]interface{}{
			"level":   entry["level"],
			"message": entry["message"],
			badKey:    err.Error(),
		})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Write(line)
	r.buf.WriteByte('\n')
}

func (r *recorder) snapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// TestLogger is a Logger that records JSON lines in memory so tests can
// assert on what a trainer or the harness logged.
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	model := linear.NewOLSRegressor(linear.WithLogger(logger))
//	...
//	assert.True(t, logger.ContainsField(log.SamplesKey, float64(3)))
type TestLogger struct {
	rec    *recorder
	level  Level
	fields map[string]interface{}
}

// NewTestLogger creates a TestLogger keeping records at or above level. The
// returned buffer holds the raw output.
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	rec := &recorder{buf: &bytes.Buffer{}}
	return &TestLogger{rec: rec, level: level, fields: map[string]interface{}{}}, rec.buf
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.log(LevelDebug, msg, fields) }

func (t *TestLogger) Info(msg string, fields ...any) { t.log(LevelInfo, msg, fields) }

func (t *TestLogger) Warn(msg string, fields ...any) { t.log(LevelWarn, msg, fields) }

func (t *TestLogger) Error(msg string, fields ...any) { t.log(LevelError, msg, fields) }

func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	collectFields(merged, fields)
	return &TestLogger{rec: t.rec, level: t.level, fields: merged}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

func (t *TestLogger) log(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	entry := make(map[string]interface{}, len(t.fields)+len(fields)/2+2)
	for k, v := range t.fields {
		entry[k] = v
	}
	collectFields(entry, fields)
	entry["level"] = level.String()
	entry["message"] = msg
	t.rec.write(entry)
}

// collectFields mirrors appendFields: a bare error goes under ErrAttrKey
// and a trailing key without a value goes under badKey.
func collectFields(dst map[string]interface{}, fields []any) {
	for i := 0; i < len(fields); {
		if err, ok := fields[i].(error); ok {
			dst[ErrAttrKey] = err.Error()
			i++
			continue
		}
		if i+1 >= len(fields) {
			dst[badKey] = fields[i]
			return
		}
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			dst[key] = err.Error()
		} else {
			dst[key] = fields[i+1]
		}
		i += 2
	}
}

// GetLogEntries decodes the recorded output into one map per record.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(t.rec.snapshot()))
	for dec.More() {
		var entry map[string]interface{}
		if err := dec.Decode(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Messages returns the message of every record in order.
func (t *TestLogger) Messages() []string {
	entries, err := t.GetLogEntries()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if m, ok := e["message"].(string); ok {
			out = append(out, m)
		}
	}
	return out
}

// ContainsMessage reports whether some record's message contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	for _, m := range t.Messages() {
		if strings.Contains(m, message) {
			return true
		}
	}
	return false
}

// ContainsField reports whether some record has key set to value. JSON
// numbers decode as float64, so compare against float64 values.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if v, ok := entry[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Clear drops everything recorded so far.
func (t *TestLogger) Clear() {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.buf.Reset()
}
