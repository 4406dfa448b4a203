package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerCreated           EventType = "customer.created"
	EventCustomerUsageUpdated      EventType = "customer.usage_updated"
	EventCustomerDeleted           EventType = "customer.deleted"
	EventCustomerHighUsage         EventType = "customer.high_usage"
	EventCustomerAlertAcknowledged EventType = "customer.alert_acknowledged"
)

// AllCustomerEvents lists every event type emitted by the customer registry.
var AllCustomerEvents = []EventType{
	EventCustomerCreated,
	EventCustomerUsageUpdated,
	EventCustomerDeleted,
	EventCustomerHighUsage,
	EventCustomerAlertAcknowledged,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	CustomerID int64     `json:"customer_id"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType EventType, customerID int64, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// CustomerCreatedPayload payload.
type CustomerCreatedPayload struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	MonthlyUsage float64 `json:"monthly_usage"`
	Alert        *string `json:"alert"`
}

// UsageUpdatedPayload payload.
type UsageUpdatedPayload struct {
	MonthlyUsage float64 `json:"monthly_usage"`
	Alert        *string `json:"alert"`
}

// HighUsagePayload payload.
type HighUsagePayload struct {
	Name         string  `json:"name"`
	MonthlyUsage float64 `json:"monthly_usage"`
	Threshold    float64 `json:"threshold"`
}
