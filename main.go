package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"medislot/config"
	"medislot/cron"
	"medislot/database"
	appointmentRepo "medislot/database/repository/appointment"
	availabilityRepo "medislot/database/repository/availability"
	doctorRepo "medislot/database/repository/doctor"
	"medislot/handlers"
	"medislot/middleware"
	"medislot/routes"
	"medislot/services/booking"
	"medislot/services/locks"
	"medislot/services/payment"
	"medislot/services/realtime"
	"medislot/services/schedule"
	"medislot/services/tasks"
	"medislot/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// repositories.
	db := database.DB()
	availRepo := availabilityRepo.NewMongoAvailabilityRepo(db)
	apptRepo := appointmentRepo.NewMongoAppointmentRepo(db)
	docRepo, err := doctorRepo.NewCachedDoctorRepo(
		doctorRepo.NewMongoDoctorRepo(db),
		config.AppConfig.DoctorCacheSize,
		config.AppConfig.DoctorCacheTTL,
	)
	if err != nil {
		logger.Fatal("main: failed to build doctor cache", zap.Error(err))
	}

	indexCtx, cancelIndexes := context.WithTimeout(rootCtx, 30*time.Second)
	if err := availRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("main: availability indexes", zap.Error(err))
	}
	if err := apptRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("main: appointment indexes", zap.Error(err))
	}
	cancelIndexes()

	// realtime and soft locks.
	hub := realtime.NewHub(64, logger.Named("realtime"))
	lockManager := locks.NewManager(config.AppConfig.SlotLockTTL, hub)
	defer lockManager.Stop()

	// queue.
	queueClient := cron.NewQueueClient()
	defer queueClient.Close()

	// services.
	scheduleService := &schedule.DefaultScheduleService{
		Repo:    availRepo,
		Doctors: docRepo,
		Logger:  logger.Named("schedule"),
	}

	bookingService := &booking.DefaultBookingService{
		Slots:          availRepo,
		Appointments:   apptRepo,
		Doctors:        docRepo,
		Locks:          lockManager,
		Timeouts:       &tasks.TimeoutScheduler{Client: queueClient},
		PaymentTimeout: config.AppConfig.PaymentTimeout,
		Logger:         logger.Named("booking"),
	}

	var gateway payment.Gateway = payment.NewSandboxGateway()
	if config.AppConfig.StripeKey != "" {
		stripe.Key = config.AppConfig.StripeKey
		gateway = payment.StripeGateway{}
	} else {
		logger.Warn("main: STRIPE_KEY not set, using sandbox payment gateway")
	}
	paymentService := &payment.DefaultPaymentService{
		Bookings: bookingService,
		Gateway:  gateway,
		Dedup:    payment.NewRedisDeduplicator(utils.GetCacheClient()),
		Currency: config.AppConfig.PaymentCurrency,
		Logger:   logger.Named("payment"),
	}

	// background workers.
	worker := cron.InitPaymentTimeoutWorker(rootCtx, bookingService, logger.Named("worker"))
	defer worker.Shutdown()

	if url := config.AppConfig.PaymentEventsAMQPURL; url != "" {
		consumer, err := payment.NewEventConsumer(url,
			config.AppConfig.PaymentEventsExchange,
			config.AppConfig.PaymentEventsQueue,
			logger.Named("payment-events"))
		if err != nil {
			logger.Fatal("main: payment events consumer", zap.Error(err))
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(rootCtx, paymentService.HandleEvent); err != nil {
				logger.Error("main: payment events consumer stopped", zap.Error(err))
			}
		}()
	}

	queueRedis := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueRedis.Close()
	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.GetCacheClient(), queueRedis}, database.MongoClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Availability: &handlers.AvailabilityHandler{Service: scheduleService},
		Booking:      &handlers.BookingHandler{Service: bookingService},
		Payment:      &handlers.PaymentHandler{Service: paymentService},
		Realtime:     &handlers.RealtimeHandler{Hub: hub},
		Health:       &handlers.HealthHandler{},
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
