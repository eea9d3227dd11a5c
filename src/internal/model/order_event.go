package model

import "time"

// OpenPoolChannel is the redis pub/sub channel published on every mutation
// of the open pool. Subscribed clients re-query instead of polling.
const OpenPoolChannel = "repair:open-pool"

type Event interface {
	GetId() string
}

type OrderEventPayload struct {
	OrderID    string     `json:"orderId"`
	CustomerID string     `json:"customerId"`
	ProviderID string     `json:"providerId,omitempty"`
	Status     string     `json:"status"`
	TotalPrice float64    `json:"totalPrice"`
	OccurredAt time.Time  `json:"occurredAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type OrderEvent struct {
	ID      string            `json:"id,omitempty"`
	Message OrderEventPayload `json:"message,omitempty"`
}

func (e *OrderEvent) GetId() string {
	return e.ID
}

type QuoteEventPayload struct {
	QuoteID    string    `json:"quoteId"`
	OrderID    string    `json:"orderId"`
	ProviderID string    `json:"providerId"`
	CustomerID string    `json:"customerId"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

type QuoteEvent struct {
	ID      string            `json:"id,omitempty"`
	Message QuoteEventPayload `json:"message,omitempty"`
}

func (e *QuoteEvent) GetId() string {
	return e.ID
}
