// Package domain defines the transactional outbox event and its delivery states.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent is a security or account event written in the same transaction (or
// right after) the change that produced it, and delivered later by the worker.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarkProcessed records a successful delivery.
func (e *OutboxEvent) MarkProcessed(now time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &now
	e.LastError = nil
}

// MarkAttemptFailed records a failed delivery. The event becomes failed once
// maxRetries attempts have been made; until then it stays pending.
func (e *OutboxEvent) MarkAttemptFailed(cause error, maxRetries int) {
	e.Retries++
	message := cause.Error()
	e.LastError = &message
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}
