package payment

import "context"

// Charge is the processor-side view of a capture. Lookup is by the
// idempotency key the ledger derives from the quote or custom-charge id, so
// a retry after a partial failure can reconcile instead of double-charging.
type Charge struct {
	ChargeID string `json:"chargeId"`
	Status   string `json:"status"`
	Amount   float64
	Currency string
	Captured bool `json:"captured"`
}

type Processor interface {
	CreateCharge(ctx context.Context, amount float64, currency, idempotencyKey string) (*Charge, error)
	GetCharge(ctx context.Context, idempotencyKey string) (*Charge, error)
}
