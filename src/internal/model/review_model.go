package model

type SubmitReviewRequest struct {
	OrderID string `json:"-" validate:"required,max=100"`
	Role    string `json:"-" validate:"required,oneof=customer provider"`
	PartyID string `json:"-" validate:"required,max=100"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Text    string `json:"text" validate:"max=1000"`
}

type CanReviewRequest struct {
	OrderID string `json:"-" validate:"required,max=100"`
	Role    string `json:"-" validate:"required,oneof=customer provider"`
	PartyID string `json:"-" validate:"required,max=100"`
}

type CanReviewResponse struct {
	OrderID   string `json:"orderId"`
	Role      string `json:"role"`
	CanReview bool   `json:"canReview"`
	Reason    string `json:"reason,omitempty"`
}

type ReviewResponse struct {
	OrderID string `json:"orderId"`
	Role    string `json:"role"`
	Rating  int    `json:"rating"`
	Text    string `json:"text,omitempty"`
}
