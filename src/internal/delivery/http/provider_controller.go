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

type ProviderController struct {
	Log      log.Log
	Claim    *usecase.ClaimUseCase
	Provider *usecase.ProviderUseCase
	Ledger   *usecase.LedgerUseCase
	Review   *usecase.ReviewUseCase
}

func NewProviderController(claim *usecase.ClaimUseCase, provider *usecase.ProviderUseCase, ledger *usecase.LedgerUseCase, review *usecase.ReviewUseCase, logger log.Log) *ProviderController {
	return &ProviderController{
		Log:      logger,
		Claim:    claim,
		Provider: provider,
		Ledger:   ledger,
		Review:   review,
	}
}

func (c *ProviderController) OpenPool(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.OpenPoolRequest{
		ProviderID: auth.UserID,
		Latitude:   ctx.QueryFloat("latitude"),
		Longitude:  ctx.QueryFloat("longitude"),
	}

	result := c.Provider.OpenPool(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Open Pool", fiber.StatusOK, ctx)
}

func (c *ProviderController) TryClaim(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.ClaimOrderRequest)
	// body is optional; a bare claim uses the configured TTL
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(request); err != nil {
			c.Log.Error("ProviderController.TryClaim", "Failed to parse request body", "error", err.Error())
			return utils.ResponseError(err, ctx)
		}
	}
	request.OrderID = ctx.Params("orderId")
	request.ProviderID = auth.UserID

	result := c.Claim.TryClaim(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Claim Order", fiber.StatusOK, ctx)
}

func (c *ProviderController) AcceptClaim(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.AcceptClaimRequest{
		OrderID:    ctx.Params("orderId"),
		ProviderID: auth.UserID,
	}

	result := c.Claim.AcceptClaim(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Accept Claim", fiber.StatusOK, ctx)
}

func (c *ProviderController) ReleaseClaim(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.ReleaseClaimRequest{
		OrderID:    ctx.Params("orderId"),
		ProviderID: auth.UserID,
	}

	result := c.Claim.ReleaseClaim(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Release Claim", fiber.StatusOK, ctx)
}

func (c *ProviderController) StartWork(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.StartWorkRequest{
		OrderID:    ctx.Params("orderId"),
		ProviderID: auth.UserID,
	}

	result := c.Provider.StartWork(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Start Work", fiber.StatusOK, ctx)
}

func (c *ProviderController) CompleteOrder(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.CompleteOrderRequest{
		OrderID:    ctx.Params("orderId"),
		ProviderID: auth.UserID,
	}

	result := c.Provider.CompleteOrder(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Complete Order", fiber.StatusOK, ctx)
}

func (c *ProviderController) ListAssigned(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	result := c.Provider.ListAssigned(ctx.Context(), &model.ListOrdersRequest{UserID: auth.UserID})
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "List Assigned", fiber.StatusOK, ctx)
}

func (c *ProviderController) SubmitQuote(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.SubmitQuoteRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("ProviderController.SubmitQuote", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.OrderID = ctx.Params("orderId")
	request.ProviderID = auth.UserID

	result := c.Ledger.SubmitQuote(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Submit Quote", fiber.StatusCreated, ctx)
}

func (c *ProviderController) SubmitCharge(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.SubmitChargeRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("ProviderController.SubmitCharge", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.OrderID = ctx.Params("orderId")
	request.MechanicID = auth.UserID

	result := c.Ledger.SubmitCustomCharge(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Submit Charge", fiber.StatusCreated, ctx)
}

func (c *ProviderController) SubmitReview(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := new(model.SubmitReviewRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("ProviderController.SubmitReview", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.OrderID = ctx.Params("orderId")
	request.Role = entity.RoleProvider
	request.PartyID = auth.UserID

	result := c.Review.SubmitReview(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Submit Review", fiber.StatusCreated, ctx)
}

func (c *ProviderController) CanReview(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)
	request := &model.CanReviewRequest{
		OrderID: ctx.Params("orderId"),
		Role:    entity.RoleProvider,
		PartyID: auth.UserID,
	}

	result := c.Review.CanReview(ctx.Context(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Review Eligibility", fiber.StatusOK, ctx)
}
