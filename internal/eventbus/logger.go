package eventbus

import (
	"context"
	"log/slog"
)

// Logger writes every published event to the activity log.
type Logger struct {
	bus    *Bus
	logger *slog.Logger
}

func NewLogger(bus *Bus, logger *slog.Logger) *Logger {
	return &Logger{bus: bus, logger: logger}
}

// Run consumes events until ctx is canceled.
func (l *Logger) Run(ctx context.Context) {
	id, ch := l.bus.Subscribe(64)
	defer l.bus.Unsubscribe(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			attrs := []any{
				slog.String("event_id", ev.ID),
				slog.String("type", string(ev.Type)),
				slog.String("detail", ev.Detail),
			}
			if ev.AssignmentID != 0 {
				attrs = append(attrs, slog.Int("assignment_id", ev.AssignmentID))
			}
			l.logger.InfoContext(ctx, "activity", attrs...)
		}
	}
}
