package events

import (
	"context"
	"log/slog"
)

// AuditLogger records privilege-change events. It is the only subscriber the
// server registers by default; the log line is the audit trail.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// Register subscribes the audit logger to every privilege-change event type.
func (a *AuditLogger) Register(bus *EventBus) {
	for _, eventType := range []string{
		EventRoleModulesReplaced,
		EventRoleDeleted,
		EventUserRoleChanged,
	} {
		bus.Subscribe(eventType, a.handle)
	}
}

func (a *AuditLogger) handle(ctx context.Context, event Event) error {
	a.logger.InfoContext(ctx, "privilege change",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"occurred_at", event.OccurredAt(),
		"payload", event.Payload())
	return nil
}
