package usecase

import (
	"context"
	"fmt"
	"time"

	"repair-service/src/internal/entity"
	"repair-service/src/internal/model"
	"repair-service/src/internal/repository"
	httpError "repair-service/src/pkg/http-error"
	"repair-service/src/pkg/log"
	"repair-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// ReviewUseCase gates post-completion reviews: each side of a COMPLETED
// order may rate the other exactly once.
type ReviewUseCase struct {
	Log             log.Log
	Validate        *validator.Validate
	OrderRepository repository.OrderStore
}

func NewReviewUseCase(logger log.Log, validate *validator.Validate, orderRepository repository.OrderStore) *ReviewUseCase {
	return &ReviewUseCase{
		Log:             logger,
		Validate:        validate,
		OrderRepository: orderRepository,
	}
}

// SubmitReview checks eligibility against the current row, then relies on the
// guarded UPDATE to enforce it again; only one of two racing submissions for
// the same side can land.
func (c *ReviewUseCase) SubmitReview(ctx context.Context, request *model.SubmitReviewRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("review-usecase", errObj.Message, "SubmitReview", utils.ConvertString(err))
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load order"
		result.Error = errObj
		c.Log.Error("review-usecase", fmt.Sprintf("read failed: %v", err), "SubmitReview", request.OrderID)
		return result
	}
	if order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}

	if reviewErr := reviewEligibility(order, request.Role, request.PartyID); reviewErr != nil {
		result.Error = toHTTPError(reviewErr)
		return result
	}

	ok, err := c.OrderRepository.SetRating(ctx, order.ID, request.Role, request.PartyID,
		request.Rating, request.Text, time.Now().UTC())
	if err != nil {
		result.Error = toHTTPError(err)
		c.Log.Error("review-usecase", fmt.Sprintf("rating write failed: %v", err), "SubmitReview", order.ID)
		return result
	}
	if !ok {
		// lost the race; re-read to tell a duplicate review from a state change
		fresh, readErr := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &order.ID})
		if readErr == nil && fresh != nil {
			if reviewErr := reviewEligibility(fresh, request.Role, request.PartyID); reviewErr != nil {
				result.Error = toHTTPError(reviewErr)
				return result
			}
		}
		result.Error = toHTTPError(repository.ErrStaleState)
		return result
	}

	result.Data = &model.ReviewResponse{
		OrderID: order.ID,
		Role:    request.Role,
		Rating:  request.Rating,
		Text:    request.Text,
	}
	return result
}

// CanReview answers the eligibility question without writing anything, so a
// client can decide whether to show the review form. An ineligible party
// gets the blocking reason rather than an error.
func (c *ReviewUseCase) CanReview(ctx context.Context, request *model.CanReviewRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("review-usecase", errObj.Message, "CanReview", utils.ConvertString(err))
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load order"
		result.Error = errObj
		c.Log.Error("review-usecase", fmt.Sprintf("read failed: %v", err), "CanReview", request.OrderID)
		return result
	}
	if order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}

	response := &model.CanReviewResponse{
		OrderID: order.ID,
		Role:    request.Role,
	}
	if reviewErr := reviewEligibility(order, request.Role, request.PartyID); reviewErr != nil {
		response.Reason = toHTTPError(reviewErr).ResponseCode
	} else {
		response.CanReview = true
	}
	result.Data = response
	return result
}

func reviewEligibility(order *entity.RepairOrder, role, partyID string) error {
	if order.Status != entity.OrderStatusCompleted {
		return repository.ErrNotEligible
	}
	switch role {
	case entity.RoleCustomer:
		if order.CustomerID != partyID {
			return repository.ErrNotEligible
		}
		if order.CustomerRating != nil {
			return repository.ErrAlreadyReviewed
		}
	case entity.RoleProvider:
		if order.ProviderID == nil || *order.ProviderID != partyID {
			return repository.ErrNotEligible
		}
		if order.ProviderRating != nil {
			return repository.ErrAlreadyReviewed
		}
	default:
		return repository.ErrNotEligible
	}
	return nil
}
