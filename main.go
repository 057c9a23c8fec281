package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/config"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/cache"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/consumer"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/gateway"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/handler"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/middleware"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/database"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/logger"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/obs"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

const serviceName = "parking-service"

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	db := database.NewPostgresDB(cfg.DSN())

	// Repositories
	propertyRepo := repository.NewPropertyRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	washJobRepo := repository.NewWashJobRepository(db)
	auditRepo := repository.NewAuditRepository()

	// Redis availability cache (optional)
	var availabilityCache service.AvailabilityCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Error("failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		availabilityCache = cache.NewAvailabilityCache(rdb, cfg.AvailabilityCacheTTL)
	}

	// RabbitMQ: publish domain events, consume the property catalog (optional)
	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Error("failed to connect RabbitMQ publisher", "error", err)
			os.Exit(1)
		}
		defer mqPublisher.Close()
		publisher = mqPublisher

		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Error("failed to connect RabbitMQ consumer", "error", err)
			os.Exit(1)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume(ctx)
		if err != nil {
			log.Error("failed to start consuming", "error", err)
			os.Exit(1)
		}
		var invalidator consumer.Invalidator
		if availabilityCache != nil {
			invalidator = availabilityCache
		}
		consumer.NewPropertyConsumer(propertyRepo, invalidator, cfg.DefaultCurrency).Start(ctx, msgs)
	} else {
		log.Warn("RABBIT_URL not set: catalog sync and domain events are disabled")
	}

	// Card gateway
	gw, err := gateway.New(gateway.Options{
		Provider:          cfg.PaymentGateway,
		OmisePublicKey:    cfg.OmisePublicKey,
		OmiseSecretKey:    cfg.OmiseSecretKey,
		MidtransServerKey: cfg.MidtransServerKey,
		MidtransEnv:       cfg.MidtransEnv,
	})
	if err != nil {
		log.Error("failed to configure payment gateway", "error", err)
		os.Exit(1)
	}

	// Services
	availabilitySvc := service.NewAvailabilityService(propertyRepo, bookingRepo, availabilityCache)
	bookingSvc := service.NewBookingService(bookingRepo, propertyRepo, paymentRepo, auditRepo, publisher, availabilityCache)
	paymentSvc := service.NewPaymentService(bookingRepo, paymentRepo, auditRepo, gw, publisher, availabilityCache,
		service.PaymentOptions{LegacyCardMerge: cfg.LegacyCardMerge})
	washJobSvc := service.NewWashJobService(washJobRepo, auditRepo, publisher)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(middleware.Principal())

	e.GET("/health", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "service": serviceName})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
	})

	api := e.Group("/api/v1")
	handler.NewPropertyHandler(availabilitySvc).RegisterRoutes(api)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(api)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(api)
	handler.NewWashJobHandler(washJobSvc).RegisterRoutes(api)

	go func() {
		log.Info("Parking Service starting", "port", cfg.ServerPort, "gateway", cfg.PaymentGateway)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
