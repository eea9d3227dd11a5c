package model

import "time"

type ClaimOrderRequest struct {
	OrderID    string `json:"-" validate:"required,max=100"`
	ProviderID string `json:"-" validate:"required,max=100"`
	TTLSeconds int    `json:"ttlSeconds" validate:"omitempty,min=5,max=3600"`
}

type AcceptClaimRequest struct {
	OrderID    string `json:"-" validate:"required,max=100"`
	ProviderID string `json:"-" validate:"required,max=100"`
}

type ReleaseClaimRequest struct {
	OrderID    string `json:"-" validate:"required,max=100"`
	ProviderID string `json:"-" validate:"required,max=100"`
}

type StartWorkRequest struct {
	OrderID    string `json:"-" validate:"required,max=100"`
	ProviderID string `json:"-" validate:"required,max=100"`
}

type CompleteOrderRequest struct {
	OrderID    string `json:"-" validate:"required,max=100"`
	ProviderID string `json:"-" validate:"required,max=100"`
}

type ClaimResponse struct {
	OrderID        string    `json:"orderId"`
	ProviderID     string    `json:"providerId"`
	Status         string    `json:"status"`
	ClaimExpiresAt time.Time `json:"claimExpiresAt"`
}
