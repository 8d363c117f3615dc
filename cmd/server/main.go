package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/database"
	"github.com/drivehub/service-rental/internal/common/health"
	"github.com/drivehub/service-rental/internal/common/kafka"
	"github.com/drivehub/service-rental/internal/common/logger"
	"github.com/drivehub/service-rental/internal/common/middleware"
	"github.com/drivehub/service-rental/internal/config"
	"github.com/drivehub/service-rental/internal/events"
	"github.com/drivehub/service-rental/internal/handler"
	"github.com/drivehub/service-rental/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewNamed(cfg.AppEnv, "rental-service")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	db, err := database.Connect(cfg.DatabaseDSN, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(repository.AllModels()...); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}
	if err := database.EnsureBookingConstraints(db, log); err != nil {
		log.Fatal("failed to install booking constraints", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, log)
	defer producer.Close()

	store := repository.NewGormStore(db, cfg.TxTimeout)

	bookingService := application.NewBookingService(store, producer, log)
	fleetService := application.NewFleetService(store, log)
	paymentService := application.NewPaymentService(store, producer, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paymentConsumer := events.NewPaymentEventConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, paymentService, log)
	defer paymentConsumer.Close()
	go func() {
		if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("payment consumer stopped", zap.Error(err))
		}
	}()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.RecoveryMiddleware(log),
		middleware.CORSMiddleware(),
	)

	health.NewHandler(db, "rental-service").RegisterRoutes(router)

	api := router.Group("/api/v1")
	handler.NewBookingHandler(bookingService, log).RegisterRoutes(api)
	handler.NewFleetHandler(fleetService, log).RegisterRoutes(api)
	handler.NewPaymentHandler(paymentService, log).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("rental service listening", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
