package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/allisson/helpdesk/internal/outbox/domain"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
	userDomain "github.com/allisson/helpdesk/internal/user/domain"
)

// SecurityAuditProcessor writes every event as one structured audit log line.
// Token reuse and mass revocation are logged at WARN so they can be alerted on.
type SecurityAuditProcessor struct {
	logger *slog.Logger
}

// NewSecurityAuditProcessor creates a new SecurityAuditProcessor
func NewSecurityAuditProcessor(logger *slog.Logger) *SecurityAuditProcessor {
	return &SecurityAuditProcessor{
		logger: logger.With(slog.String("component", "security_audit")),
	}
}

// Process logs the event. A payload that is not a JSON object is an error so the
// event is retried and eventually marked failed instead of being silently dropped.
func (p *SecurityAuditProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	var payload map[string]any
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return fmt.Errorf("invalid payload for event %s: %w", event.ID, err)
	}

	attrs := []slog.Attr{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.Time("occurred_at", event.CreatedAt),
	}
	for key, value := range payload {
		attrs = append(attrs, slog.Any(key, value))
	}

	switch event.EventType {
	case sessionDomain.EventReuseDetected:
		p.logger.LogAttrs(ctx, slog.LevelWarn, "refresh token reuse detected", attrs...)
	case sessionDomain.EventRevokedAll:
		p.logger.LogAttrs(ctx, slog.LevelWarn, "all sessions revoked", attrs...)
	case userDomain.EventUserRegistered:
		p.logger.LogAttrs(ctx, slog.LevelInfo, "user registered", attrs...)
	case userDomain.EventPasswordChanged:
		p.logger.LogAttrs(ctx, slog.LevelInfo, "user password changed", attrs...)
	default:
		p.logger.LogAttrs(ctx, slog.LevelWarn, "unknown event type", attrs...)
	}

	return nil
}
