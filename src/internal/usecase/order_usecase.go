package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repair-service/src/internal/entity"
	"repair-service/src/internal/gateway/messaging"
	"repair-service/src/internal/model"
	"repair-service/src/internal/model/converter"
	"repair-service/src/internal/repository"
	httpError "repair-service/src/pkg/http-error"
	"repair-service/src/pkg/log"
	"repair-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// OrderUseCase is the customer side of the order lifecycle: create, cancel,
// item edits, detail and history reads.
type OrderUseCase struct {
	Log              log.Log
	Validate         *validator.Validate
	OrderRepository  repository.OrderStore
	QuoteRepository  repository.QuoteStore
	ChargeRepository repository.ChargeStore
	Config           *viper.Viper
	Redis            redis.UniversalClient
	CustomerProducer *messaging.CustomerProducer
}

func NewOrderUseCase(
	logger log.Log,
	validate *validator.Validate,
	orderRepository repository.OrderStore,
	quoteRepository repository.QuoteStore,
	chargeRepository repository.ChargeStore,
	cfg *viper.Viper,
	redisClient redis.UniversalClient,
	customerProducer *messaging.CustomerProducer,
) *OrderUseCase {
	return &OrderUseCase{
		Log:              logger,
		Validate:         validate,
		OrderRepository:  orderRepository,
		QuoteRepository:  quoteRepository,
		ChargeRepository: chargeRepository,
		Config:           cfg,
		Redis:            redisClient,
		CustomerProducer: customerProducer,
	}
}

func itemsFromRequest(requested []model.OrderItemRequest) []entity.OrderItem {
	items := make([]entity.OrderItem, 0, len(requested))
	for _, item := range requested {
		items = append(items, entity.OrderItem{
			ServiceID: item.ServiceID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return items
}

func (c *OrderUseCase) CreateOrder(ctx context.Context, request *model.CreateOrderRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("order-usecase", errObj.Message, "CreateOrder", utils.ConvertString(err))
		return result
	}

	items := itemsFromRequest(request.Items)
	encodedItems, err := entity.EncodeItems(items)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to encode order items"
		result.Error = errObj
		c.Log.Error("order-usecase", errObj.Message, "CreateOrder", utils.ConvertString(err))
		return result
	}

	categories, _ := json.Marshal(request.Categories)
	mediaRefs, _ := json.Marshal(request.MediaRefs)

	now := time.Now().UTC()
	order := &entity.RepairOrder{
		ID:         uuid.NewString(),
		CustomerID: request.CustomerID,
		Status:     entity.OrderStatusPending,
		Items:      encodedItems,
		TotalPrice: entity.TotalPrice(items),
		Latitude:   request.Location.Latitude,
		Longitude:  request.Location.Longitude,
		Address:    request.Location.Address,
		Categories: categories,
		MediaRefs:  mediaRefs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.OrderRepository.CreateOrder(ctx, order); err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to create order"
		result.Error = errObj
		c.Log.Error("order-usecase", fmt.Sprintf("insert failed: %v", err), "CreateOrder", utils.ConvertString(err))
		return result
	}

	notifyPoolChanged(ctx, c.Redis, c.Log, order.ID)
	if sendErr := c.CustomerProducer.SendOrderRequested(converter.OrderToEvent(order)); sendErr != nil {
		c.Log.Error("order-usecase", fmt.Sprintf("failed to publish repair-requested: %v", sendErr), "CreateOrder", order.ID)
	}

	result.Data = converter.OrderToResponse(order)
	return result
}

// CancelOrder is valid only while the order is PENDING, CLAIMED or
// ACCEPTED. byCustomer picks the terminal status recorded.
func (c *OrderUseCase) CancelOrder(ctx context.Context, request *model.CancelOrderRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("order-usecase", errObj.Message, "CancelOrder", utils.ConvertString(err))
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{
		OrderID:    &request.OrderID,
		CustomerID: &request.CustomerID,
	})
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load order"
		result.Error = errObj
		c.Log.Error("order-usecase", fmt.Sprintf("read failed: %v", err), "CancelOrder", request.OrderID)
		return result
	}
	if order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}

	target := entity.OrderStatusCancelled
	if request.ByCustomer {
		target = entity.OrderStatusDeclinedByCustomer
	}

	if !repository.ValidTransition(order.Status, target) {
		result.Error = toHTTPError(repository.ErrInvalidTransition)
		return result
	}

	ok, err := c.OrderRepository.CancelOrder(ctx, request.OrderID, order.Status, target)
	if err != nil {
		result.Error = toHTTPError(err)
		c.Log.Error("order-usecase", fmt.Sprintf("cancel write failed: %v", err), "CancelOrder", request.OrderID)
		return result
	}
	if !ok {
		result.Error = toHTTPError(repository.ErrStaleState)
		return result
	}

	order.Status = target
	order.ProviderID = nil
	order.ClaimExpiresAt = nil

	notifyPoolChanged(ctx, c.Redis, c.Log, order.ID)
	if sendErr := c.CustomerProducer.SendOrderCancelled(converter.OrderToEvent(order)); sendErr != nil {
		c.Log.Error("order-usecase", fmt.Sprintf("failed to publish repair-cancelled: %v", sendErr), "CancelOrder", order.ID)
	}

	result.Data = converter.OrderToResponse(order)
	return result
}

// UpdateItems replaces the item list while the order is still open
// (PENDING or CLAIMED) and recomputes totalPrice in the same write.
func (c *OrderUseCase) UpdateItems(ctx context.Context, request *model.UpdateItemsRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("order-usecase", errObj.Message, "UpdateItems", utils.ConvertString(err))
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{
		OrderID:    &request.OrderID,
		CustomerID: &request.CustomerID,
	})
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load order"
		result.Error = errObj
		c.Log.Error("order-usecase", fmt.Sprintf("read failed: %v", err), "UpdateItems", request.OrderID)
		return result
	}
	if order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}

	items := itemsFromRequest(request.Items)
	encodedItems, err := entity.EncodeItems(items)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to encode order items"
		result.Error = errObj
		return result
	}
	totalPrice := entity.TotalPrice(items)

	ok, err := c.OrderRepository.UpdateItems(ctx, request.OrderID, encodedItems, totalPrice)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to update items"
		result.Error = errObj
		c.Log.Error("order-usecase", fmt.Sprintf("items write failed: %v", err), "UpdateItems", request.OrderID)
		return result
	}
	if !ok {
		// order left the open state between read and write
		result.Error = toHTTPError(repository.ErrStaleState)
		return result
	}

	order.Items = encodedItems
	order.TotalPrice = totalPrice
	result.Data = converter.OrderToResponse(order)
	return result
}

func (c *OrderUseCase) OrderDetail(ctx context.Context, request *model.OrderDetailRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("order-usecase", errObj.Message, "OrderDetail", utils.ConvertString(err))
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load order"
		result.Error = errObj
		c.Log.Error("order-usecase", fmt.Sprintf("read failed: %v", err), "OrderDetail", request.OrderID)
		return result
	}
	if order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}

	isCustomer := order.CustomerID == request.UserID
	isProvider := order.ProviderID != nil && *order.ProviderID == request.UserID
	if !isCustomer && !isProvider {
		result.Error = toHTTPError(repository.ErrNotEligible)
		return result
	}

	detail := &model.OrderDetailResponse{Order: converter.OrderToResponse(order)}
	if quotes, quoteErr := c.QuoteRepository.FindQuotesByOrder(ctx, order.ID); quoteErr == nil {
		detail.Quotes = quotes
	}
	if charges, chargeErr := c.ChargeRepository.FindChargesByOrder(ctx, order.ID); chargeErr == nil {
		detail.Charges = charges
	}

	result.Data = detail
	return result
}

func (c *OrderUseCase) ListMyOrders(ctx context.Context, request *model.ListOrdersRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	orders, err := c.OrderRepository.FindOrdersByCustomer(ctx, request.UserID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to list orders"
		result.Error = errObj
		c.Log.Error("order-usecase", fmt.Sprintf("list failed: %v", err), "ListMyOrders", request.UserID)
		return result
	}

	result.Data = converter.OrdersToResponses(orders)
	return result
}
