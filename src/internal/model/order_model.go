package model

import "time"

type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required"`
	Longitude float64 `json:"longitude" validate:"required"`
	Address   string  `json:"address" validate:"required,max=500"`
}

type OrderItemRequest struct {
	ServiceID string  `json:"serviceId" validate:"required,max=100"`
	Name      string  `json:"name" validate:"required,max=200"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerID string             `json:"-" validate:"required,max=100"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Location   LocationRequest    `json:"location" validate:"required"`
	Categories []string           `json:"categories" validate:"max=10"`
	MediaRefs  []string           `json:"mediaRefs" validate:"max=20"`
}

type CancelOrderRequest struct {
	OrderID    string `json:"-" validate:"required,max=100"`
	CustomerID string `json:"-" validate:"required,max=100"`
	ByCustomer bool   `json:"byCustomer"`
}

type UpdateItemsRequest struct {
	OrderID    string             `json:"-" validate:"required,max=100"`
	CustomerID string             `json:"-" validate:"required,max=100"`
	Items      []OrderItemRequest `json:"items" validate:"required,dive"`
}

type OrderDetailRequest struct {
	OrderID string `json:"-" validate:"required,max=100"`
	UserID  string `json:"-" validate:"required,max=100"`
}

type ListOrdersRequest struct {
	UserID string `json:"-" validate:"required,max=100"`
}

type OrderResponse struct {
	ID             string             `json:"id"`
	CustomerID     string             `json:"customerId"`
	ProviderID     *string            `json:"providerId,omitempty"`
	Status         string             `json:"status"`
	ClaimExpiresAt *time.Time         `json:"claimExpiresAt,omitempty"`
	Items          []OrderItemRequest `json:"items"`
	TotalPrice     float64            `json:"totalPrice"`
	Location       LocationRequest    `json:"location"`
	Categories     []string           `json:"categories,omitempty"`
	MediaRefs      []string           `json:"mediaRefs,omitempty"`
	CustomerRating *int               `json:"customerRating,omitempty"`
	CustomerReview *string            `json:"customerReview,omitempty"`
	ProviderRating *int               `json:"providerRating,omitempty"`
	ProviderReview *string            `json:"providerReview,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type OrderDetailResponse struct {
	Order   *OrderResponse `json:"order"`
	Quotes  interface{}    `json:"quotes,omitempty"`
	Charges interface{}    `json:"charges,omitempty"`
}

type OpenPoolRequest struct {
	ProviderID string  `json:"-" validate:"required,max=100"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type OpenPoolOrder struct {
	Order      *OrderResponse `json:"order"`
	DistanceKm *float64       `json:"distanceKm,omitempty"`
}
