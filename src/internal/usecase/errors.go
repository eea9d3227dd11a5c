package usecase

import (
	"context"
	"errors"

	"repair-service/src/internal/model"
	"repair-service/src/internal/repository"
	httpError "repair-service/src/pkg/http-error"
	"repair-service/src/pkg/log"

	"github.com/redis/go-redis/v9"
)

// toHTTPError maps repository sentinels onto the typed error objects the
// delivery layer serializes. Contention errors become 409s the caller is
// expected to retry after a re-read; precondition errors are surfaced to the
// end user as-is.
func toHTTPError(err error) *httpError.CommonError {
	var errObj *httpError.CommonError

	switch {
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrQuoteNotFound),
		errors.Is(err, repository.ErrChargeNotFound):
		errObj = httpError.NewNotFound()
	case errors.Is(err, repository.ErrStaleState):
		errObj = httpError.NewConflict()
		errObj.ResponseCode = "STALE_STATE"
	case errors.Is(err, repository.ErrAlreadyClaimed):
		errObj = httpError.NewConflict()
		errObj.ResponseCode = "ALREADY_CLAIMED"
	case errors.Is(err, repository.ErrClaimExpired):
		errObj = httpError.NewConflict()
		errObj.ResponseCode = "CLAIM_EXPIRED"
	case errors.Is(err, repository.ErrAlreadyReviewed):
		errObj = httpError.NewConflict()
		errObj.ResponseCode = "ALREADY_REVIEWED"
	case errors.Is(err, repository.ErrQuoteAlreadyAccepted):
		errObj = httpError.NewConflict()
		errObj.ResponseCode = "QUOTE_ALREADY_ACCEPTED"
	case errors.Is(err, repository.ErrInvalidTransition):
		errObj = httpError.NewUnprocessableEntity()
		errObj.ResponseCode = "INVALID_TRANSITION"
	case errors.Is(err, repository.ErrNotEligible):
		errObj = httpError.NewForbidden()
		errObj.ResponseCode = "NOT_ELIGIBLE"
	default:
		errObj = httpError.NewInternalServerError()
	}

	errObj.Message = err.Error()
	return errObj
}

// notifyPoolChanged publishes the order id on the open-pool channel so
// subscribed provider clients re-query. Delivery is best effort; the write
// path never depends on it.
func notifyPoolChanged(ctx context.Context, rdb redis.UniversalClient, logger log.Log, orderID string) {
	if rdb == nil {
		return
	}
	if err := rdb.Publish(ctx, model.OpenPoolChannel, orderID).Err(); err != nil {
		logger.Error("open-pool", "failed to publish pool change", "notifyPoolChanged", err.Error())
	}
}
