package entity

import "time"

const (
	ChargeStatusAwaitingApproval   = "AWAITING_APPROVAL"
	ChargeStatusDeclinedByCustomer = "DECLINED_BY_CUSTOMER"
	ChargeStatusPaid               = "PAID"
)

// CustomCharge is a provider-initiated direct proposal that bypasses the
// open marketplace pool.
type CustomCharge struct {
	ID          string     `db:"id" json:"id"`
	OrderID     string     `db:"order_id" json:"orderId"`
	MechanicID  string     `db:"mechanic_id" json:"mechanicId"`
	Items       []byte     `db:"items" json:"-"`
	TotalPrice  float64    `db:"total_price" json:"totalPrice"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduledAt,omitempty"`
	Status      string     `db:"status" json:"status"`
	ChargeRef   *string    `db:"charge_ref" json:"chargeRef,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}
