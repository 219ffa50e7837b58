package ctxutil

import (
	"context"
	"strings"
)

// MaxIDLength caps caller-supplied request and trace ids.
const MaxIDLength = 128

type traceDataKey struct{}

// TraceData correlates one HTTP request across logs, spans and lifecycle events.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// RequestID is empty outside a traced request.
func RequestID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.RequestID
	}
	return ""
}

// LogFields returns the correlation ids as logger key/value pairs. The slice
// is freshly allocated so callers may append to it.
func LogFields(ctx context.Context) []any {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	fields := make([]any, 0, 4)
	if td.RequestID != "" {
		fields = append(fields, "request_id", td.RequestID)
	}
	if td.TraceID != "" {
		fields = append(fields, "trace_id", td.TraceID)
	}
	return fields
}

// SanitizeID trims raw and returns it when it is a plausible correlation id:
// at most MaxIDLength characters drawn from letters, digits and "-_.:".
// Anything else yields "" so the caller mints a fresh id.
func SanitizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > MaxIDLength {
		return ""
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return ""
		}
	}
	return id
}
