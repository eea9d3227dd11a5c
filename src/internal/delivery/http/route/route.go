package route

import (
	"repair-service/src/internal/delivery/http"
	"repair-service/src/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App                *fiber.App
	CustomerController *http.CustomerController
	ProviderController *http.ProviderController
	AuthMiddleware     fiber.Handler
}

func (c *RouteConfig) Setup() {
	c.App.Use(middleware.NewLogger())
	c.App.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	c.SetupCustomerRoute()
	c.SetupProviderRoute()
}

func (c *RouteConfig) SetupCustomerRoute() {
	orders := c.App.Group("/orders/v1", c.AuthMiddleware)
	orders.Post("/", c.CustomerController.CreateOrder)
	orders.Get("/", c.CustomerController.ListOrders)
	orders.Get("/:orderId", c.CustomerController.OrderDetail)
	orders.Post("/:orderId/cancel", c.CustomerController.CancelOrder)
	orders.Put("/:orderId/items", c.CustomerController.UpdateItems)
	orders.Get("/:orderId/review", c.CustomerController.CanReview)
	orders.Post("/:orderId/review", c.CustomerController.SubmitReview)

	orders.Post("/quotes/:quoteId/decision", c.CustomerController.DecideQuote)
	orders.Post("/quotes/:quoteId/reconcile", c.CustomerController.ReconcileQuote)
	orders.Post("/charges/:chargeId/decision", c.CustomerController.DecideCharge)
	orders.Post("/charges/:chargeId/reconcile", c.CustomerController.ReconcileCharge)
}

func (c *RouteConfig) SetupProviderRoute() {
	provider := c.App.Group("/provider/v1", c.AuthMiddleware)
	provider.Get("/pool", c.ProviderController.OpenPool)
	provider.Get("/orders", c.ProviderController.ListAssigned)
	provider.Post("/orders/:orderId/claim", c.ProviderController.TryClaim)
	provider.Post("/orders/:orderId/accept", c.ProviderController.AcceptClaim)
	provider.Post("/orders/:orderId/release", c.ProviderController.ReleaseClaim)
	provider.Post("/orders/:orderId/start", c.ProviderController.StartWork)
	provider.Post("/orders/:orderId/complete", c.ProviderController.CompleteOrder)
	provider.Post("/orders/:orderId/quotes", c.ProviderController.SubmitQuote)
	provider.Post("/orders/:orderId/charges", c.ProviderController.SubmitCharge)
	provider.Get("/orders/:orderId/review", c.ProviderController.CanReview)
	provider.Post("/orders/:orderId/review", c.ProviderController.SubmitReview)
}
