package http

import (
	"repair-service/src/internal/delivery/http/middleware"
	"repair-service/src/internal/entity"
	"repair-service/src/internal/model"
	"repair-service/src/internal/usecase"
	"repair-service/src/pkg/log"
	"repair-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type CustomerController struct {
	Log    log.Log
	Order  *usecase.OrderUseCase
	Ledger *usecase.LedgerUseCase
	Review *usecase.ReviewUseCase
}

func NewCustomerController(order *usecase.OrderUseCase, ledger *usecase.LedgerUseCase, review *usecase.ReviewUseCase, logger log.Log) *CustomerController {
	return &CustomerController{
		Log:    logger,
		Order:  order,
		Ledger: ledger,
		Review: review,
	}
}

func (c *CustomerController) CreateOrder(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.CreateOrderRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("CustomerController.CreateOrder", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.CustomerID = auth.UserID

	result := c.Order.CreateOrder(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Create Order", fiber.StatusCreated, ctx)
}

func (c *CustomerController) CancelOrder(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.CancelOrderRequest)
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(request); err != nil {
			c.Log.Error("CustomerController.CancelOrder", "Failed to parse request body", "error", err.Error())
			return utils.ResponseError(err, ctx)
		}
	}
	request.OrderID = ctx.Params("orderId")
	request.CustomerID = auth.UserID

	result := c.Order.CancelOrder(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Cancel Order", fiber.StatusOK, ctx)
}

func (c *CustomerController) UpdateItems(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.UpdateItemsRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("CustomerController.UpdateItems", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.OrderID = ctx.Params("orderId")
	request.CustomerID = auth.UserID

	result := c.Order.UpdateItems(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Update Items", fiber.StatusOK, ctx)
}

func (c *CustomerController) OrderDetail(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.OrderDetailRequest{
		OrderID: ctx.Params("orderId"),
		UserID:  auth.UserID,
	}

	result := c.Order.OrderDetail(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Order Detail", fiber.StatusOK, ctx)
}

func (c *CustomerController) ListOrders(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	result := c.Order.ListMyOrders(ctx.Context(), &model.ListOrdersRequest{UserID: auth.UserID})
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "List Orders", fiber.StatusOK, ctx)
}

func (c *CustomerController) DecideQuote(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.DecideQuoteRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("CustomerController.DecideQuote", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.QuoteID = ctx.Params("quoteId")
	request.CustomerID = auth.UserID

	result := c.Ledger.DecideQuote(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Decide Quote", fiber.StatusOK, ctx)
}

func (c *CustomerController) ReconcileQuote(ctx *fiber.Ctx) error {
	result := c.Ledger.ReconcileQuote(ctx.Context(), ctx.Params("quoteId"))
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Reconcile Quote", fiber.StatusOK, ctx)
}

func (c *CustomerController) DecideCharge(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.DecideChargeRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("CustomerController.DecideCharge", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.ChargeID = ctx.Params("chargeId")
	request.CustomerID = auth.UserID

	result := c.Ledger.DecideCustomCharge(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Decide Charge", fiber.StatusOK, ctx)
}

func (c *CustomerController) ReconcileCharge(ctx *fiber.Ctx) error {
	result := c.Ledger.ReconcileCustomCharge(ctx.Context(), ctx.Params("chargeId"))
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Reconcile Charge", fiber.StatusOK, ctx)
}

func (c *CustomerController) SubmitReview(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.SubmitReviewRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("CustomerController.SubmitReview", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.OrderID = ctx.Params("orderId")
	request.Role = entity.RoleCustomer
	request.PartyID = auth.UserID

	result := c.Review.SubmitReview(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Submit Review", fiber.StatusCreated, ctx)
}

func (c *CustomerController) CanReview(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.CanReviewRequest{
		OrderID: ctx.Params("orderId"),
		Role:    entity.RoleCustomer,
		PartyID: auth.UserID,
	}

	result := c.Review.CanReview(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Review Eligibility", fiber.StatusOK, ctx)
}
