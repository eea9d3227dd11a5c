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
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// TypeClaimExpiry is the asynq task enqueued when a claim is granted. The
// handler runs the same guarded release as the sweeper, so processing it
// late or twice is harmless.
const TypeClaimExpiry = "order:claim-expiry"

const activeOrderKey = "PROVIDER:ACTIVE-ORDER:%s"

type ClaimExpiryPayload struct {
	OrderID    string `json:"orderId"`
	ProviderID string `json:"providerId"`
}

// TaskEnqueuer is the slice of asynq.Client the arbitrator needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ClaimUseCase struct {
	Log              log.Log
	Validate         *validator.Validate
	OrderRepository  repository.OrderStore
	Config           *viper.Viper
	Redis            redis.UniversalClient
	AsynqClient      TaskEnqueuer
	ProviderProducer *messaging.ProviderProducer
}

func NewClaimUseCase(
	logger log.Log,
	validate *validator.Validate,
	orderRepository repository.OrderStore,
	cfg *viper.Viper,
	redisClient redis.UniversalClient,
	asynqClient TaskEnqueuer,
	providerProducer *messaging.ProviderProducer,
) *ClaimUseCase {
	return &ClaimUseCase{
		Log:              logger,
		Validate:         validate,
		OrderRepository:  orderRepository,
		Config:           cfg,
		Redis:            redisClient,
		AsynqClient:      asynqClient,
		ProviderProducer: providerProducer,
	}
}

func (c *ClaimUseCase) claimTTL(requested int) time.Duration {
	if requested > 0 {
		return time.Duration(requested) * time.Second
	}
	seconds := c.Config.GetInt("claim.ttl_seconds")
	if seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}

// TryClaim grants a time-boxed exclusive claim on a PENDING order. The
// PENDING precondition travels inside the conditional write, so of any
// number of concurrent claimants exactly one wins; the rest get
// ALREADY_CLAIMED and re-query the pool.
func (c *ClaimUseCase) TryClaim(ctx context.Context, request *model.ClaimOrderRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("claim-usecase", errObj.Message, "TryClaim", utils.ConvertString(err))
		return result
	}

	ttl := c.claimTTL(request.TTLSeconds)
	expiresAt := time.Now().Add(ttl)

	ok, err := c.OrderRepository.ClaimOrder(ctx, request.OrderID, request.ProviderID, expiresAt)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to claim order"
		result.Error = errObj
		c.Log.Error("claim-usecase", fmt.Sprintf("claim write failed: %v", err), "TryClaim", request.OrderID)
		return result
	}

	if !ok {
		order, findErr := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
		if findErr == nil && order == nil {
			result.Error = toHTTPError(repository.ErrOrderNotFound)
			return result
		}
		result.Error = toHTTPError(repository.ErrAlreadyClaimed)
		c.Log.Info("claim-usecase", "lost claim race", "TryClaim", request.OrderID)
		return result
	}

	c.scheduleExpiry(request.OrderID, request.ProviderID, ttl)
	notifyPoolChanged(ctx, c.Redis, c.Log, request.OrderID)

	if order, findErr := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID}); findErr == nil && order != nil {
		if sendErr := c.ProviderProducer.SendOrderClaimed(converter.OrderToEvent(order)); sendErr != nil {
			c.Log.Error("claim-usecase", fmt.Sprintf("failed to publish order-claimed: %v", sendErr), "TryClaim", request.OrderID)
		}
	}

	result.Data = &model.ClaimResponse{
		OrderID:        request.OrderID,
		ProviderID:     request.ProviderID,
		Status:         entity.OrderStatusClaimed,
		ClaimExpiresAt: expiresAt,
	}
	return result
}

// AcceptClaim turns a live claim into an assignment. Expiry is a wall-clock
// comparison evaluated inside the conditional write: once the deadline has
// passed acceptance fails, whether or not a sweep has already released the
// order.
func (c *ClaimUseCase) AcceptClaim(ctx context.Context, request *model.AcceptClaimRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("claim-usecase", errObj.Message, "AcceptClaim", utils.ConvertString(err))
		return result
	}

	now := time.Now()
	ok, err := c.OrderRepository.AcceptClaim(ctx, request.OrderID, request.ProviderID, now)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to accept claim"
		result.Error = errObj
		c.Log.Error("claim-usecase", fmt.Sprintf("accept write failed: %v", err), "AcceptClaim", request.OrderID)
		return result
	}

	if !ok {
		result.Error = toHTTPError(c.classifyAcceptFailure(ctx, request, now))
		return result
	}

	order, findErr := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
	if findErr != nil || order == nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "order accepted but could not be re-read"
		result.Error = errObj
		c.Log.Error("claim-usecase", errObj.Message, "AcceptClaim", request.OrderID)
		return result
	}

	c.cacheActiveOrder(ctx, order, request.ProviderID)

	if sendErr := c.ProviderProducer.SendOrderAccepted(converter.OrderToEvent(order)); sendErr != nil {
		c.Log.Error("claim-usecase", fmt.Sprintf("failed to publish order-accepted: %v", sendErr), "AcceptClaim", request.OrderID)
	}

	result.Data = converter.OrderToResponse(order)
	return result
}

// ReleaseClaim is the voluntary early release back to the open pool.
func (c *ClaimUseCase) ReleaseClaim(ctx context.Context, request *model.ReleaseClaimRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("claim-usecase", errObj.Message, "ReleaseClaim", utils.ConvertString(err))
		return result
	}

	ok, err := c.OrderRepository.ReleaseClaim(ctx, request.OrderID, request.ProviderID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to release claim"
		result.Error = errObj
		c.Log.Error("claim-usecase", fmt.Sprintf("release write failed: %v", err), "ReleaseClaim", request.OrderID)
		return result
	}

	if !ok {
		order, findErr := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
		if findErr == nil && order == nil {
			result.Error = toHTTPError(repository.ErrOrderNotFound)
			return result
		}
		result.Error = toHTTPError(repository.ErrStaleState)
		return result
	}

	notifyPoolChanged(ctx, c.Redis, c.Log, request.OrderID)

	if order, findErr := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID}); findErr == nil && order != nil {
		if sendErr := c.ProviderProducer.SendOrderReleased(converter.OrderToEvent(order)); sendErr != nil {
			c.Log.Error("claim-usecase", fmt.Sprintf("failed to publish order-released: %v", sendErr), "ReleaseClaim", request.OrderID)
		}
		result.Data = converter.OrderToResponse(order)
	}
	return result
}

// HandleClaimExpiry is the asynq handler for the per-claim expiry task. It
// is one of two redundant reclaim paths (the sweeper is the other); the
// deadline-guarded conditional write makes duplicate execution a no-op.
func (c *ClaimUseCase) HandleClaimExpiry(ctx context.Context, task *asynq.Task) error {
	var payload ClaimExpiryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		c.Log.Error("claim-usecase", fmt.Sprintf("invalid expiry payload: %v", err), "HandleClaimExpiry", "")
		return nil
	}

	released, err := c.OrderRepository.ReleaseExpiredClaim(ctx, payload.OrderID, payload.ProviderID, time.Now())
	if err != nil {
		c.Log.Error("claim-usecase", fmt.Sprintf("expiry release failed: %v", err), "HandleClaimExpiry", payload.OrderID)
		return err
	}

	if released {
		c.Log.Info("claim-usecase", "expired claim released", "HandleClaimExpiry", payload.OrderID)
		notifyPoolChanged(ctx, c.Redis, c.Log, payload.OrderID)
	}
	return nil
}

func (c *ClaimUseCase) classifyAcceptFailure(ctx context.Context, request *model.AcceptClaimRequest, now time.Time) error {
	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
	if err != nil || order == nil {
		return repository.ErrOrderNotFound
	}
	if order.Status == entity.OrderStatusClaimed &&
		order.ProviderID != nil && *order.ProviderID == request.ProviderID &&
		order.ClaimExpired(now) {
		return repository.ErrClaimExpired
	}
	return repository.ErrStaleState
}

func (c *ClaimUseCase) scheduleExpiry(orderID, providerID string, ttl time.Duration) {
	if c.AsynqClient == nil {
		return
	}

	payload, err := json.Marshal(ClaimExpiryPayload{OrderID: orderID, ProviderID: providerID})
	if err != nil {
		c.Log.Error("claim-usecase", fmt.Sprintf("failed to marshal expiry payload: %v", err), "scheduleExpiry", orderID)
		return
	}

	// small grace on top of the TTL so the accept-time deadline check stays
	// authoritative under clock skew
	task := asynq.NewTask(TypeClaimExpiry, payload)
	if _, err := c.AsynqClient.Enqueue(task, asynq.ProcessIn(ttl+2*time.Second)); err != nil {
		c.Log.Error("claim-usecase", fmt.Sprintf("failed to enqueue expiry task: %v", err), "scheduleExpiry", orderID)
	}
}

func (c *ClaimUseCase) cacheActiveOrder(ctx context.Context, order *entity.RepairOrder, providerID string) {
	if c.Redis == nil {
		return
	}
	marshaled, err := json.Marshal(order)
	if err != nil {
		return
	}
	key := fmt.Sprintf(activeOrderKey, providerID)
	if err := c.Redis.Set(ctx, key, marshaled, 2*time.Hour).Err(); err != nil {
		c.Log.Error("claim-usecase", fmt.Sprintf("failed to cache active order: %v", err), "cacheActiveOrder", order.ID)
	}
}
