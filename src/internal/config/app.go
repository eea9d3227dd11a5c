package config

import (
	"fmt"

	"repair-service/src/internal/delivery/http"
	"repair-service/src/internal/delivery/http/middleware"
	"repair-service/src/internal/delivery/http/route"
	"repair-service/src/internal/gateway/messaging"
	"repair-service/src/internal/gateway/payment"
	"repair-service/src/internal/repository"
	"repair-service/src/internal/sweeper"
	"repair-service/src/internal/usecase"
	"repair-service/src/pkg/databases/mysql"
	httpError "repair-service/src/pkg/http-error"
	kafkaPkgConfluent "repair-service/src/pkg/kafka/confluent"
	"repair-service/src/pkg/log"
	"repair-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"googlemaps.github.io/maps"
)

type BootstrapConfig struct {
	DB          mysql.DBInterface
	App         *fiber.App
	Log         log.Log
	Validate    *validator.Validate
	Config      *viper.Viper
	Producer    kafkaPkgConfluent.Producer
	Redis       redis.UniversalClient
	Geoservice  *GeoService
	AsynqClient *asynq.Client
	Async       *asynq.ServeMux
}

// Bootstrap wires repositories, use cases, controllers and routes, and
// returns the claim sweeper for main to run.
func Bootstrap(config *BootstrapConfig) *sweeper.Sweeper {
	// setup repositories
	orderRepository := repository.NewOrderRepository(config.DB)
	quoteRepository := repository.NewQuoteRepository(config.DB)
	chargeRepository := repository.NewChargeRepository(config.DB)

	customerProducer := messaging.NewCustomerProducer(config.Producer, config.Log)
	providerProducer := messaging.NewProviderProducer(config.Producer, config.Log)
	paymentProcessor := payment.NewHTTPProcessor(config.Config, config.Log)

	var mapsClient *maps.Client
	if config.Geoservice != nil {
		mapsClient = config.Geoservice.Client
	}

	var enqueuer usecase.TaskEnqueuer
	if config.AsynqClient != nil {
		enqueuer = config.AsynqClient
	}

	// setup use cases
	orderUseCase := usecase.NewOrderUseCase(
		config.Log,
		config.Validate,
		orderRepository,
		quoteRepository,
		chargeRepository,
		config.Config,
		config.Redis,
		customerProducer,
	)

	claimUseCase := usecase.NewClaimUseCase(
		config.Log,
		config.Validate,
		orderRepository,
		config.Config,
		config.Redis,
		enqueuer,
		providerProducer,
	)

	providerUseCase := usecase.NewProviderUseCase(
		config.Log,
		config.Validate,
		orderRepository,
		config.Config,
		config.Redis,
		mapsClient,
		providerProducer,
	)

	ledgerUseCase := usecase.NewLedgerUseCase(
		config.Log,
		config.Validate,
		orderRepository,
		quoteRepository,
		chargeRepository,
		paymentProcessor,
		config.Config,
		customerProducer,
	)

	reviewUseCase := usecase.NewReviewUseCase(config.Log, config.Validate, orderRepository)

	// setup controllers
	customerController := http.NewCustomerController(orderUseCase, ledgerUseCase, reviewUseCase, config.Log)
	providerController := http.NewProviderController(claimUseCase, providerUseCase, ledgerUseCase, reviewUseCase, config.Log)

	// setup middleware
	authMiddleware := middleware.VerifyBearer(config.Config, config.Log)

	if config.Async != nil {
		config.Async.HandleFunc(usecase.TypeClaimExpiry, claimUseCase.HandleClaimExpiry)
	}

	routeConfig := route.RouteConfig{
		App:                config.App,
		CustomerController: customerController,
		ProviderController: providerController,
		AuthMiddleware:     authMiddleware,
	}
	routeConfig.Setup()

	return sweeper.NewSweeper(config.Log, orderRepository, config.Redis, config.Config)
}

func NewViper() *viper.Viper {
	config := viper.New()
	config.SetConfigName("config")
	config.SetConfigType("json")
	config.AddConfigPath("./")
	config.AddConfigPath("./../")
	config.AutomaticEnv()
	if err := config.ReadInConfig(); err != nil {
		fmt.Printf("config file not loaded: %v\n", err)
	}
	return config
}

func NewFiber(config *viper.Viper) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      config.GetString("app.name"),
		Prefork:      config.GetBool("web.prefork"),
		ErrorHandler: newErrorHandler(),
	})
	return app
}

func newErrorHandler() fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if commonErr, ok := err.(*httpError.CommonError); ok {
			return utils.ResponseError(commonErr, ctx)
		}
		code := fiber.StatusInternalServerError
		if fiberErr, ok := err.(*fiber.Error); ok {
			code = fiberErr.Code
		}
		return ctx.Status(code).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}

func NewValidator(_ *viper.Viper) *validator.Validate {
	return validator.New()
}
