package usecase

import (
	"context"
	"fmt"
	"time"

	"repair-service/src/internal/entity"
	"repair-service/src/internal/gateway/messaging"
	"repair-service/src/internal/gateway/payment"
	"repair-service/src/internal/model"
	"repair-service/src/internal/model/converter"
	"repair-service/src/internal/repository"
	httpError "repair-service/src/pkg/http-error"
	"repair-service/src/pkg/log"
	"repair-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// LedgerUseCase records quotes and custom charges and bridges customer
// decisions to the external payment processor. The capture call and the
// local status write form one logical unit: the processor is called first
// with an idempotency key derived from the document id, so a retry after a
// partial failure reconciles instead of double-charging.
type LedgerUseCase struct {
	Log              log.Log
	Validate         *validator.Validate
	OrderRepository  repository.OrderStore
	QuoteRepository  repository.QuoteStore
	ChargeRepository repository.ChargeStore
	Processor        payment.Processor
	Config           *viper.Viper
	CustomerProducer *messaging.CustomerProducer
}

func NewLedgerUseCase(
	logger log.Log,
	validate *validator.Validate,
	orderRepository repository.OrderStore,
	quoteRepository repository.QuoteStore,
	chargeRepository repository.ChargeStore,
	processor payment.Processor,
	cfg *viper.Viper,
	customerProducer *messaging.CustomerProducer,
) *LedgerUseCase {
	return &LedgerUseCase{
		Log:              logger,
		Validate:         validate,
		OrderRepository:  orderRepository,
		QuoteRepository:  quoteRepository,
		ChargeRepository: chargeRepository,
		Processor:        processor,
		Config:           cfg,
		CustomerProducer: customerProducer,
	}
}

func QuoteIdempotencyKey(quoteID string) string {
	return "quote:" + quoteID
}

func ChargeIdempotencyKey(chargeID string) string {
	return "charge:" + chargeID
}

func (c *LedgerUseCase) currency() string {
	currency := c.Config.GetString("payment.currency")
	if currency == "" {
		currency = "IDR"
	}
	return currency
}

// SubmitQuote is allowed while the order is still in the open market
// (PENDING or CLAIMED). Many quotes may coexist for one order.
func (c *LedgerUseCase) SubmitQuote(ctx context.Context, request *model.SubmitQuoteRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "SubmitQuote", utils.ConvertString(err))
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load order"
		result.Error = errObj
		c.Log.Error("ledger-usecase", fmt.Sprintf("read failed: %v", err), "SubmitQuote", request.OrderID)
		return result
	}
	if order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}

	if order.Status != entity.OrderStatusPending && order.Status != entity.OrderStatusClaimed {
		result.Error = toHTTPError(repository.ErrInvalidTransition)
		return result
	}

	now := time.Now().UTC()
	quote := &entity.Quote{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		ProviderID: request.ProviderID,
		CustomerID: order.CustomerID,
		Amount:     request.Amount,
		Message:    request.Message,
		Status:     entity.QuoteStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.QuoteRepository.CreateQuote(ctx, quote); err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to create quote"
		result.Error = errObj
		c.Log.Error("ledger-usecase", fmt.Sprintf("insert failed: %v", err), "SubmitQuote", order.ID)
		return result
	}

	result.Data = quote
	return result
}

// DecideQuote records the customer decision. Decline is terminal for that
// quote only. Accept initiates the external capture before the local write:
// a processor failure leaves the quote PENDING and surfaces the cause. A
// provider may have at most one accepted quote per order, so accepting a
// second quote from the same provider is refused.
func (c *LedgerUseCase) DecideQuote(ctx context.Context, request *model.DecideQuoteRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "DecideQuote", utils.ConvertString(err))
		return result
	}

	quote, err := c.QuoteRepository.FindQuoteByID(ctx, request.QuoteID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load quote"
		result.Error = errObj
		c.Log.Error("ledger-usecase", fmt.Sprintf("read failed: %v", err), "DecideQuote", request.QuoteID)
		return result
	}
	if quote == nil {
		result.Error = toHTTPError(repository.ErrQuoteNotFound)
		return result
	}

	if quote.CustomerID != request.CustomerID {
		result.Error = toHTTPError(repository.ErrNotEligible)
		return result
	}
	if quote.Status != entity.QuoteStatusPending {
		result.Error = toHTTPError(repository.ErrInvalidTransition)
		return result
	}

	if request.Decision == model.QuoteDecisionDecline {
		ok, err := c.QuoteRepository.UpdateQuoteStatus(ctx, quote.ID, entity.QuoteStatusPending, entity.QuoteStatusDeclined, nil)
		if err != nil {
			errObj := httpError.NewInternalServerError()
			errObj.Message = "failed to decline quote"
			result.Error = errObj
			c.Log.Error("ledger-usecase", fmt.Sprintf("decline write failed: %v", err), "DecideQuote", quote.ID)
			return result
		}
		if !ok {
			result.Error = toHTTPError(repository.ErrStaleState)
			return result
		}
		quote.Status = entity.QuoteStatusDeclined
		c.publishQuoteDecided(quote)
		result.Data = quote
		return result
	}

	// a provider holds at most one accepted quote per order; rejecting here
	// keeps the processor out of the picture for a doomed accept
	taken, err := c.QuoteRepository.HasAcceptedQuote(ctx, quote.OrderID, quote.ProviderID, quote.ID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to check accepted quotes"
		result.Error = errObj
		c.Log.Error("ledger-usecase", fmt.Sprintf("sibling check failed: %v", err), "DecideQuote", quote.ID)
		return result
	}
	if taken {
		result.Error = toHTTPError(repository.ErrQuoteAlreadyAccepted)
		return result
	}

	charge, err := c.Processor.CreateCharge(ctx, quote.Amount, c.currency(), QuoteIdempotencyKey(quote.ID))
	if err != nil {
		errObj := httpError.NewBadGateway()
		errObj.ResponseCode = "PAYMENT_FAILED"
		errObj.Message = fmt.Sprintf("payment capture failed: %v", err)
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "DecideQuote", quote.ID)
		return result
	}

	ok, err := c.QuoteRepository.UpdateQuoteStatus(ctx, quote.ID, entity.QuoteStatusPending, entity.QuoteStatusAccepted, &charge.ChargeID)
	if err != nil || !ok {
		if err == nil {
			// the guarded write also refuses an accept when a sibling won a
			// concurrent race; tell that apart from a plain lost write
			if taken, checkErr := c.QuoteRepository.HasAcceptedQuote(ctx, quote.OrderID, quote.ProviderID, quote.ID); checkErr == nil && taken {
				result.Error = toHTTPError(repository.ErrQuoteAlreadyAccepted)
				c.Log.Error("ledger-usecase", repository.ErrQuoteAlreadyAccepted.Error(), "DecideQuote", quote.ID)
				return result
			}
		}
		// capture succeeded but the local write did not land; the charge is
		// recoverable through ReconcileQuote by its idempotency key
		errObj := httpError.NewConflict()
		errObj.ResponseCode = "RECONCILE_REQUIRED"
		errObj.Message = "charge captured but quote status write failed; retry to reconcile"
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "DecideQuote", quote.ID)
		return result
	}

	quote.Status = entity.QuoteStatusAccepted
	quote.ChargeID = &charge.ChargeID
	c.publishQuoteDecided(quote)
	result.Data = quote
	return result
}

// ReconcileQuote is the recovery path after a capture succeeded but the
// local status write failed. It re-queries the processor by the quote's
// idempotency key and completes the pending write if the charge exists.
func (c *LedgerUseCase) ReconcileQuote(ctx context.Context, quoteID string) utils.Result {
	var result utils.Result

	quote, err := c.QuoteRepository.FindQuoteByID(ctx, quoteID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load quote"
		result.Error = errObj
		return result
	}
	if quote == nil {
		result.Error = toHTTPError(repository.ErrQuoteNotFound)
		return result
	}
	if quote.Status != entity.QuoteStatusPending {
		result.Data = quote
		return result
	}

	charge, err := c.Processor.GetCharge(ctx, QuoteIdempotencyKey(quote.ID))
	if err != nil {
		errObj := httpError.NewBadGateway()
		errObj.ResponseCode = "PAYMENT_FAILED"
		errObj.Message = fmt.Sprintf("charge lookup failed: %v", err)
		result.Error = errObj
		return result
	}
	if charge == nil || !charge.Captured {
		// nothing was captured; the quote is simply still pending
		result.Data = quote
		return result
	}

	ok, err := c.QuoteRepository.UpdateQuoteStatus(ctx, quote.ID, entity.QuoteStatusPending, entity.QuoteStatusAccepted, &charge.ChargeID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to finalize reconciled quote"
		result.Error = errObj
		return result
	}
	if ok {
		quote.Status = entity.QuoteStatusAccepted
		quote.ChargeID = &charge.ChargeID
		c.publishQuoteDecided(quote)
	}
	result.Data = quote
	return result
}

// SubmitCustomCharge is a provider-initiated direct proposal that bypasses
// the open marketplace pool.
func (c *LedgerUseCase) SubmitCustomCharge(ctx context.Context, request *model.SubmitChargeRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "SubmitCustomCharge", utils.ConvertString(err))
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &request.OrderID})
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load order"
		result.Error = errObj
		return result
	}
	if order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}
	if order.Terminal() {
		result.Error = toHTTPError(repository.ErrInvalidTransition)
		return result
	}

	items := itemsFromRequest(request.Items)
	encodedItems, err := entity.EncodeItems(items)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to encode charge items"
		result.Error = errObj
		return result
	}

	now := time.Now().UTC()
	charge := &entity.CustomCharge{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		MechanicID:  request.MechanicID,
		Items:       encodedItems,
		TotalPrice:  entity.TotalPrice(items),
		ScheduledAt: request.ScheduledAt,
		Status:      entity.ChargeStatusAwaitingApproval,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.ChargeRepository.CreateCharge(ctx, charge); err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to create custom charge"
		result.Error = errObj
		c.Log.Error("ledger-usecase", fmt.Sprintf("insert failed: %v", err), "SubmitCustomCharge", order.ID)
		return result
	}

	result.Data = charge
	return result
}

// DecideCustomCharge: Approve requires a successful external capture before
// the transition to PAID; Deny is terminal.
func (c *LedgerUseCase) DecideCustomCharge(ctx context.Context, request *model.DecideChargeRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "DecideCustomCharge", utils.ConvertString(err))
		return result
	}

	charge, err := c.ChargeRepository.FindChargeByID(ctx, request.ChargeID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load custom charge"
		result.Error = errObj
		return result
	}
	if charge == nil {
		result.Error = toHTTPError(repository.ErrChargeNotFound)
		return result
	}

	order, err := c.OrderRepository.FindOneOrder(ctx, entity.OrderFilter{OrderID: &charge.OrderID})
	if err != nil || order == nil {
		result.Error = toHTTPError(repository.ErrOrderNotFound)
		return result
	}
	if order.CustomerID != request.CustomerID {
		result.Error = toHTTPError(repository.ErrNotEligible)
		return result
	}
	if charge.Status != entity.ChargeStatusAwaitingApproval {
		result.Error = toHTTPError(repository.ErrInvalidTransition)
		return result
	}

	if request.Decision == model.ChargeDecisionDeny {
		ok, err := c.ChargeRepository.UpdateChargeStatus(ctx, charge.ID,
			entity.ChargeStatusAwaitingApproval, entity.ChargeStatusDeclinedByCustomer, nil)
		if err != nil {
			errObj := httpError.NewInternalServerError()
			errObj.Message = "failed to deny custom charge"
			result.Error = errObj
			return result
		}
		if !ok {
			result.Error = toHTTPError(repository.ErrStaleState)
			return result
		}
		charge.Status = entity.ChargeStatusDeclinedByCustomer
		result.Data = charge
		return result
	}

	captured, err := c.Processor.CreateCharge(ctx, charge.TotalPrice, c.currency(), ChargeIdempotencyKey(charge.ID))
	if err != nil {
		errObj := httpError.NewBadGateway()
		errObj.ResponseCode = "PAYMENT_FAILED"
		errObj.Message = fmt.Sprintf("payment capture failed: %v", err)
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "DecideCustomCharge", charge.ID)
		return result
	}

	ok, err := c.ChargeRepository.UpdateChargeStatus(ctx, charge.ID,
		entity.ChargeStatusAwaitingApproval, entity.ChargeStatusPaid, &captured.ChargeID)
	if err != nil || !ok {
		errObj := httpError.NewConflict()
		errObj.ResponseCode = "RECONCILE_REQUIRED"
		errObj.Message = "charge captured but status write failed; retry to reconcile"
		result.Error = errObj
		c.Log.Error("ledger-usecase", errObj.Message, "DecideCustomCharge", charge.ID)
		return result
	}

	charge.Status = entity.ChargeStatusPaid
	charge.ChargeRef = &captured.ChargeID
	result.Data = charge
	return result
}

// ReconcileCustomCharge mirrors ReconcileQuote for custom charges.
func (c *LedgerUseCase) ReconcileCustomCharge(ctx context.Context, chargeID string) utils.Result {
	var result utils.Result

	charge, err := c.ChargeRepository.FindChargeByID(ctx, chargeID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to load custom charge"
		result.Error = errObj
		return result
	}
	if charge == nil {
		result.Error = toHTTPError(repository.ErrChargeNotFound)
		return result
	}
	if charge.Status != entity.ChargeStatusAwaitingApproval {
		result.Data = charge
		return result
	}

	captured, err := c.Processor.GetCharge(ctx, ChargeIdempotencyKey(charge.ID))
	if err != nil {
		errObj := httpError.NewBadGateway()
		errObj.ResponseCode = "PAYMENT_FAILED"
		errObj.Message = fmt.Sprintf("charge lookup failed: %v", err)
		result.Error = errObj
		return result
	}
	if captured == nil || !captured.Captured {
		result.Data = charge
		return result
	}

	ok, err := c.ChargeRepository.UpdateChargeStatus(ctx, charge.ID,
		entity.ChargeStatusAwaitingApproval, entity.ChargeStatusPaid, &captured.ChargeID)
	if err != nil {
		errObj := httpError.NewInternalServerError()
		errObj.Message = "failed to finalize reconciled charge"
		result.Error = errObj
		return result
	}
	if ok {
		charge.Status = entity.ChargeStatusPaid
		charge.ChargeRef = &captured.ChargeID
	}
	result.Data = charge
	return result
}

func (c *LedgerUseCase) publishQuoteDecided(quote *entity.Quote) {
	if c.CustomerProducer == nil {
		return
	}
	if err := c.CustomerProducer.SendQuoteDecided(converter.QuoteToEvent(quote)); err != nil {
		c.Log.Error("ledger-usecase", fmt.Sprintf("failed to publish quote-decided: %v", err), "publishQuoteDecided", quote.ID)
	}
}
