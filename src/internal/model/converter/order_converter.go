package converter

import (
	"encoding/json"
	"time"

	"repair-service/src/internal/entity"
	"repair-service/src/internal/model"
)

func OrderToResponse(order *entity.RepairOrder) *model.OrderResponse {
	items := []model.OrderItemRequest{}
	if decoded, err := order.DecodeItems(); err == nil {
		for _, item := range decoded {
			items = append(items, model.OrderItemRequest{
				ServiceID: item.ServiceID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
			})
		}
	}

	var categories []string
	if len(order.Categories) > 0 {
		_ = json.Unmarshal(order.Categories, &categories)
	}
	var mediaRefs []string
	if len(order.MediaRefs) > 0 {
		_ = json.Unmarshal(order.MediaRefs, &mediaRefs)
	}

	return &model.OrderResponse{
		ID:             order.ID,
		CustomerID:     order.CustomerID,
		ProviderID:     order.ProviderID,
		Status:         order.Status,
		ClaimExpiresAt: order.ClaimExpiresAt,
		Items:          items,
		TotalPrice:     order.TotalPrice,
		Location: model.LocationRequest{
			Latitude:  order.Latitude,
			Longitude: order.Longitude,
			Address:   order.Address,
		},
		Categories:     categories,
		MediaRefs:      mediaRefs,
		CustomerRating: order.CustomerRating,
		CustomerReview: order.CustomerReview,
		ProviderRating: order.ProviderRating,
		ProviderReview: order.ProviderReview,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func OrdersToResponses(orders []entity.RepairOrder) []*model.OrderResponse {
	responses := make([]*model.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, OrderToResponse(&orders[i]))
	}
	return responses
}

func OrderToEvent(order *entity.RepairOrder) *model.OrderEvent {
	providerID := ""
	if order.ProviderID != nil {
		providerID = *order.ProviderID
	}
	return &model.OrderEvent{
		ID: order.ID,
		Message: model.OrderEventPayload{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			ProviderID: providerID,
			Status:     order.Status,
			TotalPrice: order.TotalPrice,
			OccurredAt: time.Now().UTC(),
			ExpiresAt:  order.ClaimExpiresAt,
		},
	}
}

func QuoteToEvent(quote *entity.Quote) *model.QuoteEvent {
	return &model.QuoteEvent{
		ID: quote.ID,
		Message: model.QuoteEventPayload{
			QuoteID:    quote.ID,
			OrderID:    quote.OrderID,
			ProviderID: quote.ProviderID,
			CustomerID: quote.CustomerID,
			Amount:     quote.Amount,
			Status:     quote.Status,
			OccurredAt: time.Now().UTC(),
		},
	}
}
