package model

import "time"

// EventTypeEmailNotification marks outbox rows whose payload is an
// email-notification event.
const EventTypeEmailNotification = "EmailNotification"

// OutboxMessage is one staged domain event.  Rows are inserted in the same
// transaction as the business change they describe and later forwarded to
// the broker by the dispatcher.
//
// ProcessingAt is a claim sentinel: a non-null value marks the row as owned
// by a dispatcher pass; stale claims are reset after a stuck timeout.
// ProcessedAt is terminal, set either on successful publish or when the row
// is poisoned after exhausting retries (RetryCount >= max with ErrorMessage
// kept for auditing).
type OutboxMessage struct {
	ID           string     `json:"id"`
	EventType    string     `json:"event_type"`
	Payload      []byte     `json:"payload"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessingAt *time.Time `json:"processing_at,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	RetryCount   int        `json:"retry_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}
