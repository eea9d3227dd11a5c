package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repair-service/src/internal/config"
	"repair-service/src/pkg/log"

	"github.com/hibiken/asynq"
)

func main() {
	viperConfig := config.NewViper()
	viperConfig.SetDefault("log.level", "DEBUG")
	viperConfig.SetDefault("app.name", "REPAIR_SERVICE")
	viperConfig.SetDefault("web.port", 8080)
	log.InitLogger(viperConfig)
	logger := log.GetLogger()

	config.NewKafkaConfig(viperConfig)
	config.LoadRedisConfig(viperConfig)
	db := config.NewDatabase(viperConfig, logger)
	redisClient := config.NewRedis()
	producer := config.NewKafkaProducer(viperConfig, logger)
	validate := config.NewValidator(viperConfig)
	app := config.NewFiber(viperConfig)

	geoservice, err := config.NewGeoService(viperConfig)
	if err != nil {
		logger.Error("main", fmt.Sprintf("geoservice init failed: %v", err), "main", "")
	}

	asynqClient := config.NewAsynqClient(viperConfig)
	asynqServer := config.NewAsynqServer(viperConfig)
	mux := asynq.NewServeMux()

	claimSweeper := config.Bootstrap(&config.BootstrapConfig{
		DB:          db,
		App:         app,
		Log:         logger,
		Validate:    validate,
		Config:      viperConfig,
		Producer:    producer,
		Redis:       redisClient,
		Geoservice:  geoservice,
		AsynqClient: asynqClient,
		Async:       mux,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go claimSweeper.Run(sweepCtx)

	go func() {
		if err := asynqServer.Run(mux); err != nil {
			logger.Error("main", fmt.Sprintf("asynq server stopped: %v", err), "main", "")
		}
	}()

	go func() {
		webPort := viperConfig.GetInt("web.port")
		if err := app.Listen(fmt.Sprintf(":%d", webPort)); err != nil {
			logger.Error("main", fmt.Sprintf("Failed to start server: %v", err), "main", "")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("main", "Server repair-service is shutting down...", "graceful", "")

	stopSweeper()
	asynqServer.Shutdown()
	if err := asynqClient.Close(); err != nil {
		logger.Error("main", fmt.Sprintf("Error closing task client: %v", err), "graceful", "")
	}

	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Shutdown(); err != nil {
		logger.Error("main", fmt.Sprintf("Error during shutdown: %v", err), "graceful", "")
	}
	if producer != nil {
		producer.Close()
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("main", fmt.Sprintf("Error closing database: %v", err), "graceful", "")
		}
	}

	logger.Info("main", fmt.Sprintf("Server %s stopped", viperConfig.GetString("app.name")), "graceful", "")
}
