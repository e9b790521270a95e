package clog

import (
	"context"
	"log/slog"
)

// AttributesHandler copies context attributes (see ContextWithSlog) onto
// every record before delegating to the wrapped handler. Wrap the final
// handler with it so middleware-collected attributes reach the log output.
type AttributesHandler struct {
	next slog.Handler
}

var _ slog.Handler = (*AttributesHandler)(nil)

func NewAttributesHandler(next slog.Handler) *AttributesHandler {
	return &AttributesHandler{next: next}
}

func (h *AttributesHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AttributesHandler) Handle(ctx context.Context, record slog.Record) error {
	for k, v := range GetAttributes(ctx) {
		record.AddAttrs(slog.Any(k, v))
	}
	return h.next.Handle(ctx, record)
}

func (h *AttributesHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AttributesHandler{next: h.next.WithAttrs(attrs)}
}

func (h *AttributesHandler) WithGroup(name string) slog.Handler {
	return &AttributesHandler{next: h.next.WithGroup(name)}
}
