package usecase

import (
	"context"
	"testing"
	"time"

	"repair-service/src/internal/entity"
	"repair-service/src/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuote(store *mockQuoteStore, orderID, customerID string) *entity.Quote {
	quote := &entity.Quote{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		ProviderID: "provider-1",
		CustomerID: customerID,
		Amount:     250000,
		Status:     entity.QuoteStatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	_ = store.CreateQuote(context.Background(), quote)
	return quote
}

func seedCustomCharge(store *mockChargeStore, orderID string) *entity.CustomCharge {
	items, _ := entity.EncodeItems([]entity.OrderItem{
		{ServiceID: "svc-9", Name: "Oil change", UnitPrice: 90000, Quantity: 1},
	})
	charge := &entity.CustomCharge{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		MechanicID: "provider-1",
		Items:      items,
		TotalPrice: 90000,
		Status:     entity.ChargeStatusAwaitingApproval,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	_ = store.CreateCharge(context.Background(), charge)
	return charge
}

func TestSubmitQuote(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), newMockProcessor())
	order := seedOrder(orders, entity.OrderStatusPending)

	result := uc.SubmitQuote(context.Background(), &model.SubmitQuoteRequest{
		OrderID:    order.ID,
		ProviderID: "provider-1",
		Amount:     250000,
		Message:    "Can start tomorrow",
	})

	require.Nil(t, result.Error)
	quote := result.Data.(*entity.Quote)
	assert.Equal(t, entity.QuoteStatusPending, quote.Status)
	assert.Equal(t, order.CustomerID, quote.CustomerID)
}

func TestSubmitQuoteOrderNotOpen(t *testing.T) {
	orders := newMockOrderStore()
	uc := newLedgerUseCaseForTest(orders, newMockQuoteStore(), newMockChargeStore(), newMockProcessor())
	order := seedOrder(orders, entity.OrderStatusInProgress, func(o *entity.RepairOrder) {
		provider := "provider-1"
		o.ProviderID = &provider
	})

	result := uc.SubmitQuote(context.Background(), &model.SubmitQuoteRequest{
		OrderID:    order.ID,
		ProviderID: "provider-2",
		Amount:     100000,
	})

	require.NotNil(t, result.Error)
	assert.Equal(t, "INVALID_TRANSITION", responseCode(t, result.Error))
}

func TestDecideQuoteAccept(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	quote := seedQuote(quotes, order.ID, order.CustomerID)

	result := uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    quote.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})

	require.Nil(t, result.Error)
	decided := result.Data.(*entity.Quote)
	assert.Equal(t, entity.QuoteStatusAccepted, decided.Status)
	require.NotNil(t, decided.ChargeID)
	assert.Equal(t, 1, processor.createCalls)

	stored, _ := quotes.FindQuoteByID(context.Background(), quote.ID)
	assert.Equal(t, entity.QuoteStatusAccepted, stored.Status)
	require.NotNil(t, stored.ChargeID)
	assert.Equal(t, *decided.ChargeID, *stored.ChargeID)
}

func TestDecideQuoteSecondAcceptSameProviderRejected(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	first := seedQuote(quotes, order.ID, order.CustomerID)
	second := seedQuote(quotes, order.ID, order.CustomerID)

	result := uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    first.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})
	require.Nil(t, result.Error)

	result = uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    second.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})
	require.NotNil(t, result.Error)
	assert.Equal(t, "QUOTE_ALREADY_ACCEPTED", responseCode(t, result.Error))

	// the second quote is untouched and only one charge was ever captured
	stored, _ := quotes.FindQuoteByID(context.Background(), second.ID)
	assert.Equal(t, entity.QuoteStatusPending, stored.Status)
	assert.Nil(t, stored.ChargeID)
	assert.Equal(t, 1, processor.createCalls)
}

func TestDecideQuoteAcceptOtherProviderStillAllowed(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	first := seedQuote(quotes, order.ID, order.CustomerID)

	rival := &entity.Quote{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		ProviderID: "provider-2",
		CustomerID: order.CustomerID,
		Amount:     180000,
		Status:     entity.QuoteStatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, quotes.CreateQuote(context.Background(), rival))

	result := uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    first.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})
	require.Nil(t, result.Error)

	result = uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    rival.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})
	require.Nil(t, result.Error)
	decided := result.Data.(*entity.Quote)
	assert.Equal(t, entity.QuoteStatusAccepted, decided.Status)
}

func TestDecideQuoteDecline(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	quote := seedQuote(quotes, order.ID, order.CustomerID)

	result := uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    quote.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionDecline,
	})

	require.Nil(t, result.Error)
	assert.Equal(t, 0, processor.createCalls)

	// decline is terminal for that quote
	again := uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    quote.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})
	require.NotNil(t, again.Error)
	assert.Equal(t, "INVALID_TRANSITION", responseCode(t, again.Error))
}

func TestDecideQuoteWrongCustomer(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), newMockProcessor())
	order := seedOrder(orders, entity.OrderStatusPending)
	quote := seedQuote(quotes, order.ID, order.CustomerID)

	result := uc.DecideQuote(context.Background(), &model.DecideQuoteRequest{
		QuoteID:    quote.ID,
		CustomerID: "someone-else",
		Decision:   model.QuoteDecisionAccept,
	})

	require.NotNil(t, result.Error)
	assert.Equal(t, "NOT_ELIGIBLE", responseCode(t, result.Error))
}

func TestDecideQuoteProcessorFailureThenRetry(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	processor := newMockProcessor()
	processor.failCreates = true
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	quote := seedQuote(quotes, order.ID, order.CustomerID)
	ctx := context.Background()

	failed := uc.DecideQuote(ctx, &model.DecideQuoteRequest{
		QuoteID:    quote.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})
	require.NotNil(t, failed.Error)
	assert.Equal(t, "PAYMENT_FAILED", responseCode(t, failed.Error))

	// the quote stays PENDING, so the same decision can simply be retried
	stored, _ := quotes.FindQuoteByID(ctx, quote.ID)
	assert.Equal(t, entity.QuoteStatusPending, stored.Status)

	processor.failCreates = false
	retried := uc.DecideQuote(ctx, &model.DecideQuoteRequest{
		QuoteID:    quote.ID,
		CustomerID: order.CustomerID,
		Decision:   model.QuoteDecisionAccept,
	})
	require.Nil(t, retried.Error)
	assert.Equal(t, entity.QuoteStatusAccepted, retried.Data.(*entity.Quote).Status)
}

func TestReconcileQuoteHealsLostWrite(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	quote := seedQuote(quotes, order.ID, order.CustomerID)

	// the capture landed at the processor but the local write never did
	seeded := processor.seedCharge(QuoteIdempotencyKey(quote.ID), quote.Amount)

	result := uc.ReconcileQuote(context.Background(), quote.ID)
	require.Nil(t, result.Error)

	healed := result.Data.(*entity.Quote)
	assert.Equal(t, entity.QuoteStatusAccepted, healed.Status)
	require.NotNil(t, healed.ChargeID)
	assert.Equal(t, seeded.ChargeID, *healed.ChargeID)
}

func TestReconcileQuoteNothingCaptured(t *testing.T) {
	orders := newMockOrderStore()
	quotes := newMockQuoteStore()
	uc := newLedgerUseCaseForTest(orders, quotes, newMockChargeStore(), newMockProcessor())
	order := seedOrder(orders, entity.OrderStatusPending)
	quote := seedQuote(quotes, order.ID, order.CustomerID)

	result := uc.ReconcileQuote(context.Background(), quote.ID)
	require.Nil(t, result.Error)
	assert.Equal(t, entity.QuoteStatusPending, result.Data.(*entity.Quote).Status)
}

func TestSubmitCustomCharge(t *testing.T) {
	orders := newMockOrderStore()
	charges := newMockChargeStore()
	uc := newLedgerUseCaseForTest(orders, newMockQuoteStore(), charges, newMockProcessor())
	order := seedOrder(orders, entity.OrderStatusPending)

	result := uc.SubmitCustomCharge(context.Background(), &model.SubmitChargeRequest{
		OrderID:    order.ID,
		MechanicID: "provider-1",
		Items: []model.OrderItemRequest{
			{ServiceID: "svc-9", Name: "Oil change", UnitPrice: 90000, Quantity: 2},
		},
	})

	require.Nil(t, result.Error)
	charge := result.Data.(*entity.CustomCharge)
	assert.Equal(t, entity.ChargeStatusAwaitingApproval, charge.Status)
	assert.Equal(t, float64(180000), charge.TotalPrice)
}

func TestSubmitCustomChargeTerminalOrder(t *testing.T) {
	orders := newMockOrderStore()
	uc := newLedgerUseCaseForTest(orders, newMockQuoteStore(), newMockChargeStore(), newMockProcessor())
	order := seedOrder(orders, entity.OrderStatusCancelled)

	result := uc.SubmitCustomCharge(context.Background(), &model.SubmitChargeRequest{
		OrderID:    order.ID,
		MechanicID: "provider-1",
		Items: []model.OrderItemRequest{
			{ServiceID: "svc-9", Name: "Oil change", UnitPrice: 90000, Quantity: 1},
		},
	})

	require.NotNil(t, result.Error)
	assert.Equal(t, "INVALID_TRANSITION", responseCode(t, result.Error))
}

func TestDecideCustomChargeApprove(t *testing.T) {
	orders := newMockOrderStore()
	charges := newMockChargeStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, newMockQuoteStore(), charges, processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	charge := seedCustomCharge(charges, order.ID)

	result := uc.DecideCustomCharge(context.Background(), &model.DecideChargeRequest{
		ChargeID:   charge.ID,
		CustomerID: order.CustomerID,
		Decision:   model.ChargeDecisionApprove,
	})

	require.Nil(t, result.Error)
	paid := result.Data.(*entity.CustomCharge)
	assert.Equal(t, entity.ChargeStatusPaid, paid.Status)
	require.NotNil(t, paid.ChargeRef)
	assert.Equal(t, 1, processor.createCalls)
}

func TestDecideCustomChargeDeny(t *testing.T) {
	orders := newMockOrderStore()
	charges := newMockChargeStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, newMockQuoteStore(), charges, processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	charge := seedCustomCharge(charges, order.ID)
	ctx := context.Background()

	result := uc.DecideCustomCharge(ctx, &model.DecideChargeRequest{
		ChargeID:   charge.ID,
		CustomerID: order.CustomerID,
		Decision:   model.ChargeDecisionDeny,
	})

	require.Nil(t, result.Error)
	assert.Equal(t, entity.ChargeStatusDeclinedByCustomer, result.Data.(*entity.CustomCharge).Status)
	assert.Equal(t, 0, processor.createCalls)

	again := uc.DecideCustomCharge(ctx, &model.DecideChargeRequest{
		ChargeID:   charge.ID,
		CustomerID: order.CustomerID,
		Decision:   model.ChargeDecisionApprove,
	})
	require.NotNil(t, again.Error)
	assert.Equal(t, "INVALID_TRANSITION", responseCode(t, again.Error))
}

func TestDecideCustomChargeWrongCustomer(t *testing.T) {
	orders := newMockOrderStore()
	charges := newMockChargeStore()
	uc := newLedgerUseCaseForTest(orders, newMockQuoteStore(), charges, newMockProcessor())
	order := seedOrder(orders, entity.OrderStatusPending)
	charge := seedCustomCharge(charges, order.ID)

	result := uc.DecideCustomCharge(context.Background(), &model.DecideChargeRequest{
		ChargeID:   charge.ID,
		CustomerID: "someone-else",
		Decision:   model.ChargeDecisionApprove,
	})

	require.NotNil(t, result.Error)
	assert.Equal(t, "NOT_ELIGIBLE", responseCode(t, result.Error))
}

func TestReconcileCustomChargeHealsLostWrite(t *testing.T) {
	orders := newMockOrderStore()
	charges := newMockChargeStore()
	processor := newMockProcessor()
	uc := newLedgerUseCaseForTest(orders, newMockQuoteStore(), charges, processor)
	order := seedOrder(orders, entity.OrderStatusPending)
	charge := seedCustomCharge(charges, order.ID)

	seeded := processor.seedCharge(ChargeIdempotencyKey(charge.ID), charge.TotalPrice)

	result := uc.ReconcileCustomCharge(context.Background(), charge.ID)
	require.Nil(t, result.Error)

	healed := result.Data.(*entity.CustomCharge)
	assert.Equal(t, entity.ChargeStatusPaid, healed.Status)
	require.NotNil(t, healed.ChargeRef)
	assert.Equal(t, seeded.ChargeID, *healed.ChargeRef)
}
