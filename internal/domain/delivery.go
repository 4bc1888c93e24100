package domain

import "time"

// Delivery outcomes for the audit trail.
const (
	DeliverySent      = "sent"      // code delivered through the mail channel
	DeliveryFailed    = "failed"    // channel configured but the send failed
	DeliveryDisclosed = "disclosed" // code returned to the caller directly
)

// DeliveryRecord is one entry in the code-delivery audit trail.
// PK: delivery_id (ULID).
type DeliveryRecord struct {
	DeliveryID string    `json:"delivery_id" dynamodbav:"delivery_id"`
	Identity   string    `json:"identity" dynamodbav:"identity"`
	Channel    string    `json:"channel" dynamodbav:"channel"` // "email" | "none"
	Outcome    string    `json:"outcome" dynamodbav:"outcome"`
	Reason     string    `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
