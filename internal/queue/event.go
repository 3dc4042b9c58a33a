// Package queue defines message payloads exchanged over the message broker
// and the publisher that delivers them.
package queue

// EmailNotificationEvent is the payload staged in the outbox when a ticket
// is confirmed and later published to the notification exchange.  Field
// names are stable; downstream consumers key on them.
type EmailNotificationEvent struct {
	RecipientEmail string            `json:"recipientEmail"`
	RecipientID    string            `json:"recipientId,omitempty"`
	Subject        string            `json:"subject"`
	TemplateCode   string            `json:"templateCode"`
	Variables      map[string]string `json:"variables"`
}

// TemplateBookingConfirmed is the template code for the confirmation mail.
const TemplateBookingConfirmed = "booking-confirmed"
