package entity

import (
	"encoding/json"
	"time"
)

const (
	OrderStatusPending            = "PENDING"
	OrderStatusClaimed            = "CLAIMED"
	OrderStatusAccepted           = "ACCEPTED"
	OrderStatusInProgress         = "IN_PROGRESS"
	OrderStatusCompleted          = "COMPLETED"
	OrderStatusCancelled          = "CANCELLED"
	OrderStatusDeclinedByCustomer = "DECLINED_BY_CUSTOMER"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

// RepairOrder is one row in repair_orders. Claim state lives on the order
// itself: provider_id and claim_expires_at are set only while CLAIMED.
type RepairOrder struct {
	ID             string     `db:"id" json:"id"`
	CustomerID     string     `db:"customer_id" json:"customerId"`
	ProviderID     *string    `db:"provider_id" json:"providerId,omitempty"`
	Status         string     `db:"status" json:"status"`
	ClaimExpiresAt *time.Time `db:"claim_expires_at" json:"claimExpiresAt,omitempty"`

	Items      []byte  `db:"items" json:"-"`
	TotalPrice float64 `db:"total_price" json:"totalPrice"`

	Latitude   float64 `db:"latitude" json:"latitude"`
	Longitude  float64 `db:"longitude" json:"longitude"`
	Address    string  `db:"address" json:"address"`
	Categories []byte  `db:"categories" json:"-"`
	MediaRefs  []byte  `db:"media_refs" json:"-"`

	CustomerRating     *int       `db:"customer_rating" json:"customerRating,omitempty"`
	CustomerReview     *string    `db:"customer_review" json:"customerReview,omitempty"`
	CustomerReviewedAt *time.Time `db:"customer_reviewed_at" json:"customerReviewedAt,omitempty"`
	ProviderRating     *int       `db:"provider_rating" json:"providerRating,omitempty"`
	ProviderReview     *string    `db:"provider_review" json:"providerReview,omitempty"`
	ProviderReviewedAt *time.Time `db:"provider_reviewed_at" json:"providerReviewedAt,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type OrderItem struct {
	ServiceID string  `json:"serviceId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// TotalPrice sums unitPrice x quantity over the item list.
func TotalPrice(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func EncodeItems(items []OrderItem) ([]byte, error) {
	if items == nil {
		items = []OrderItem{}
	}
	return json.Marshal(items)
}

func (o *RepairOrder) DecodeItems() ([]OrderItem, error) {
	if len(o.Items) == 0 {
		return []OrderItem{}, nil
	}
	var items []OrderItem
	if err := json.Unmarshal(o.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ClaimExpired reports whether a CLAIMED order is past its deadline.
func (o *RepairOrder) ClaimExpired(now time.Time) bool {
	return o.Status == OrderStatusClaimed && o.ClaimExpiresAt != nil && !now.Before(*o.ClaimExpiresAt)
}

// Terminal reports whether no further status writes are valid.
func (o *RepairOrder) Terminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusDeclinedByCustomer:
		return true
	}
	return false
}

type OrderFilter struct {
	OrderID    *string
	CustomerID *string
	ProviderID *string
}
