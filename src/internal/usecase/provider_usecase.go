package usecase

import (
	"context"
	"fmt"

	"repair-service/src/internal/entity"
	"repair-service/src/internal/gateway/messaging"
	"repair-service/src/internal/model"
	"repair-service/src/internal/model/converter"
	"repair-service/src/internal/repository"
	httpError "repair-service/src/pkg/http-error"
	"repair-service/src/pkg/log"
	"repair-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"googlemaps.github.io/maps"
)

// ProviderUseCase covers the provider-side operations that are not claim
// arbitration: observing the open pool and advancing an assigned order.
type ProviderUseCase struct {
	Log              log.Log
	Validate         *validator.Validate
	OrderRepository  repository.OrderStore
	Config           *viper.Viper
	Redis            redis.UniversalClient
	Maps             *maps.Client
	ProviderProducer *messaging.ProviderProducer
}

func NewProviderUseCase(
	logger log.Log,
	validate *validator.Validate,
	orderRepository repository.OrderStore,
	cfg *viper.Viper,
	redisClient redis.UniversalClient,
	mapsClient *maps.Client,
	providerProducer *messaging.ProviderProducer,
) *ProviderUseCase {
	return &ProviderUseCase{
		Log:              logger,
		Validate:         validate,
		OrderRepository:  orderRepository,
		Config:           cfg,
		Redis:            redisClient,
		Maps:             mapsClient,
		ProviderProducer: providerProducer,
	}
}

// OpenPool lists PENDING orders. When the provider reports a location and a
// maps client is configured, each entry is annotated with driving distance.
func (c *ProviderUseCase) OpenPool(ctx context.Context, request *model.OpenPoolRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("provider-usecase", errObj.Message, "OpenPool", utils.ConvertString(err))
		return result
	}

	orders, err := c.OrderRepository.FindOpenOrders(ctx)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to list open pool"
		result.Error = errObj
		c.Log.Error("provider-usecase", fmt.Sprintf("pool read failed: %v", err), "OpenPool", request.ProviderID)
		return result
	}

	pool := make([]model.OpenPoolOrder, 0, len(orders))
	for i := range orders {
		pool = append(pool, model.OpenPoolOrder{Order: converter.OrderToResponse(&orders[i])})
	}

	if c.Maps != nil && (request.Latitude != 0 || request.Longitude != 0) && len(orders) > 0 {
		c.annotateDistances(ctx, request, orders, pool)
	}

	result.Data = pool
	return result
}

func (c *ProviderUseCase) annotateDistances(ctx context.Context, request *model.OpenPoolRequest, orders []entity.RepairOrder, pool []model.OpenPoolOrder) {
	destinations := make([]string, 0, len(orders))
	for i := range orders {
		destinations = append(destinations, fmt.Sprintf("%f,%f", orders[i].Latitude, orders[i].Longitude))
	}

	matrix, err := c.Maps.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", request.Latitude, request.Longitude)},
		Destinations: destinations,
	})
	if err != nil || len(matrix.Rows) == 0 {
		c.Log.Error("provider-usecase", fmt.Sprintf("distance matrix failed: %v", err), "OpenPool", request.ProviderID)
		return
	}

	for i, element := range matrix.Rows[0].Elements {
		if i >= len(pool) || element.Status != "OK" {
			continue
		}
		km := float64(element.Distance.Meters) / 1000.0
		pool[i].DistanceKm = &km
	}
}

// StartWork advances ACCEPTED -> IN_PROGRESS for the assigned provider.
func (c *ProviderUseCase) StartWork(ctx context.Context, request *model.StartWorkRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("provider-usecase", errObj.Message, "StartWork", utils.ConvertString(err))
		return result
	}

	return c.advance(ctx, request.OrderID, request.ProviderID,
		entity.OrderStatusAccepted, entity.OrderStatusInProgress, "StartWork")
}

// CompleteOrder advances IN_PROGRESS -> COMPLETED; this opens the review
// window for both parties.
func (c *ProviderUseCase) CompleteOrder(ctx context.Context, request *model.CompleteOrderRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("provider-usecase", errObj.Message, "CompleteOrder", utils.ConvertString(err))
		return result
	}

	result = c.advance(ctx, request.OrderID, request.ProviderID,
		entity.OrderStatusInProgress, entity.OrderStatusCompleted, "CompleteOrder")
	if result.Error != nil {
		return result
	}

	if c.Redis != nil {
		key := fmt.Sprintf(activeOrderKey, request.ProviderID)
		if err := c.Redis.Del(ctx, key).Err(); err != nil {
			c.Log.Error("provider-usecase", fmt.Sprintf("failed to drop active-order cache: %v", err), "CompleteOrder", request.OrderID)
		}
	}

	if response, ok := result.Data.(*model.OrderResponse); ok && response != nil {
		order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
		if err == nil && order != nil {
			if sendErr := c.ProviderProducer.SendOrderCompleted(converter.OrderToEvent(order)); sendErr != nil {
				c.Log.Error("provider-usecase", fmt.Sprintf("failed to publish order-completed: %v", sendErr), "CompleteOrder", request.OrderID)
			}
		}
	}

	return result
}

func (c *ProviderUseCase) ListAssigned(ctx context.Context, request *model.ListOrdersRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	orders, err := c.OrderRepository.FindOrdersByProvider(ctx, request.UserID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to list assigned orders"
		result.Error = errObj
		c.Log.Error("provider-usecase", fmt.Sprintf("list failed: %v", err), "ListAssigned", request.UserID)
		return result
	}

	result.Data = converter.OrdersToResponses(orders)
	return result
}

func (c *ProviderUseCase) advance(ctx context.Context, orderID, providerID, from, to, scope string) utils.Result {
	var result utils.Result

	ok, err := c.OrderRepository.UpdateStatusForProvider(ctx, orderID, providerID, from, to)
	if err != nil {
		result.Error = toHTTPError(err)
		c.Log.Error("provider-usecase", fmt.Sprintf("status write failed: %v", err), scope, orderID)
		return result
	}
	if !ok {
		order, findErr := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &orderID})
		if findErr == nil && order == nil {
			result.Error = toHTTPError(repository.ErrOrderNotFound)
			return result
		}
		if order != nil && (order.ProviderID == nil || *order.ProviderID != providerID) {
			result.Error = toHTTPError(repository.ErrNotEligible)
			return result
		}
		result.Error = toHTTPError(repository.ErrStaleState)
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &orderID})
	if err != nil || order == nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "status updated but order could not be re-read"
		result.Error = errObj
		return result
	}

	result.Data = converter.OrderToResponse(order)
	return result
}
