package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent represents a webhook event to be delivered
type WebhookEvent struct {
	ID           string          `json:"id"`
	EventName    string          `json:"event_name"`
	SubscriberID string          `json:"subscriber_id"`
	UserID       string          `json:"user_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Payload      json.RawMessage `json:"payload"`
}

// plan change event names
const (
	WebhookEventPlanChangeCommitted = "plan_change.committed"
	WebhookEventPlanChangeFailed    = "plan_change.failed"
)

// subscription event names
const (
	WebhookEventSubscriptionCreated = "subscription.created"
)
