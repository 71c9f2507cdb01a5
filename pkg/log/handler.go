package log

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
	badKey            = "!BADKEY"
)

// appendFields adds slog-style alternating key/value fields to a zerolog
// event. A bare error in key position is attached under ErrAttrKey.
// A nil event (level disabled) is returned unchanged.
func appendFields(e *zerolog.Event, fields []any) *zerolog.Event {
	if e == nil {
		return nil
	}
	for i := 0; i < len(fields); {
		if err, ok := fields[i].(error); ok {
			e = appendError(e, ErrAttrKey, err)
			i++
			continue
		}
		if i+1 >= len(fields) {
			e = e.Interface(badKey, fields[i])
			break
		}
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			e = appendError(e, key, v)
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		default:
			e = e.Interface(key, v)
		}
		i += 2
	}
	return e
}

func appendContext(c zerolog.Context, fields []any) zerolog.Context {
	for i := 0; i < len(fields); {
		if err, ok := fields[i].(error); ok {
			c = c.AnErr(ErrAttrKey, err)
			i++
			continue
		}
		if i+1 >= len(fields) {
			c = c.Interface(badKey, fields[i])
			break
		}
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			c = c.AnErr(key, v)
		case zerolog.LogObjectMarshaler:
			c = c.Object(key, v)
		default:
			c = c.Interface(key, v)
		}
		i += 2
	}
	return c
}

func appendError(e *zerolog.Event, key string, err error) *zerolog.Event {
	e = e.AnErr(key, err)
	if st := extractStacktrace(err); st != "" {
		e = e.Str(StacktraceAttrKey, st)
	}
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		e = e.Object(key+"_detail", m)
	}
	return e
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
