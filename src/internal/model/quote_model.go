package model

import "time"

const (
	QuoteDecisionAccept  = "ACCEPT"
	QuoteDecisionDecline = "DECLINE"

	ChargeDecisionApprove = "APPROVE"
	ChargeDecisionDeny    = "DENY"
)

type SubmitQuoteRequest struct {
	OrderID    string  `json:"-" validate:"required,max=100"`
	ProviderID string  `json:"-" validate:"required,max=100"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Message    string  `json:"message" validate:"max=500"`
}

type DecideQuoteRequest struct {
	QuoteID    string `json:"-" validate:"required,max=100"`
	CustomerID string `json:"-" validate:"required,max=100"`
	Decision   string `json:"decision" validate:"required,oneof=ACCEPT DECLINE"`
}

type SubmitChargeRequest struct {
	OrderID     string             `json:"-" validate:"required,max=100"`
	MechanicID  string             `json:"-" validate:"required,max=100"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ScheduledAt *time.Time         `json:"scheduledAt"`
}

type DecideChargeRequest struct {
	ChargeID   string `json:"-" validate:"required,max=100"`
	CustomerID string `json:"-" validate:"required,max=100"`
	Decision   string `json:"decision" validate:"required,oneof=APPROVE DENY"`
}
