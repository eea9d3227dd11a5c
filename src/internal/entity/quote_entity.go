package entity

import "time"

const (
	QuoteStatusPending  = "PENDING"
	QuoteStatusDeclined = "DECLINED"
	QuoteStatusAccepted = "ACCEPTED"
)

// Quote is a provider-proposed price against an open marketplace order.
// Many quotes may coexist per order; accepting one does not touch siblings.
type Quote struct {
	ID         string    `db:"id" json:"id"`
	OrderID    string    `db:"order_id" json:"orderId"`
	ProviderID string    `db:"provider_id" json:"providerId"`
	CustomerID string    `db:"customer_id" json:"customerId"`
	Amount     float64   `db:"amount" json:"amount"`
	Message    string    `db:"message" json:"message"`
	Status     string    `db:"status" json:"status"`
	ChargeID   *string   `db:"charge_id" json:"chargeId,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
