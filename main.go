package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solace/config"
	"solace/cron"
	"solace/database"
	bookingRepoPkg "solace/database/repository/booking"
	profileRepoPkg "solace/database/repository/profile"
	userRepoPkg "solace/database/repository/user"
	"solace/handlers"
	"solace/realtime"
	"solace/routes"
	"solace/services/booking"
	"solace/services/chat"
	"solace/services/match"
	"solace/services/notification"
	"solace/services/payment"
	"solace/services/safety"
	"solace/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	handlers.RegisterValidators()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	profileRepo := profileRepoPkg.NewMongoProfileRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()

	// alert queue producer.
	alertClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAlertQueueDB,
	})
	defer alertClient.Close()

	// realtime hub.
	hub := realtime.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	// services.
	matchingService := &match.DefaultMatchingService{
		ProfileRepo: profileRepo,
		BookingRepo: bookingRepo,
		CacheClient: utils.GetCacheClient(),
		Logger:      logger,
	}

	bookingService := booking.NewDefaultBookingService(
		bookingRepo, userRepo, profileRepo, logger,
	)

	safetyService := safety.NewDefaultSafetyService(
		bookingRepo, alertClient, logger,
		time.Duration(config.AppConfig.CheckInIntervalMin)*time.Minute,
	)

	chatService := &chat.DefaultChatService{
		Repo:     bookingRepo,
		UserRepo: userRepo,
		Hub:      hub,
		Logger:   logger,
	}

	var provider payment.Provider
	if config.AppConfig.StripeKey != "" {
		provider = payment.NewStripeProvider(config.AppConfig.StripeKey)
	} else {
		logger.Warn("no payment gateway key configured, using mock provider")
		provider = payment.NewMockProvider()
	}
	paymentService := &payment.DefaultService{
		Provider:   provider,
		Repo:       bookingRepo,
		BookingSvc: bookingService,
		Logger:     logger,
		Currency:   "usd",
	}

	// Room membership requires being a party to the booking.
	authorize := func(ctx context.Context, userID, bookingID string) bool {
		b, err := bookingRepo.GetByID(bookingID)
		return err == nil && b != nil && b.IsParticipant(userID)
	}
	gateway := realtime.NewGateway(hub, chatService, safetyService, authorize, logger)

	// alert worker.
	notifier := &notification.Notifier{
		UserRepo:   userRepo,
		Redis:      utils.GetCacheClient(),
		OpsChannel: config.AppConfig.OpsAlertChannel,
		Logger:     logger,
	}
	cron.InitAlertWorker(notifier)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		UserRepo: userRepo,
		Match:    &handlers.MatchHandler{Svc: matchingService},
		Booking: &handlers.BookingHandler{
			Svc:        bookingService,
			PaymentSvc: paymentService,
			Logger:     logger,
		},
		Safety:  &handlers.SafetyHandler{Svc: safetyService},
		Message: &handlers.MessageHandler{Svc: chatService},
		Payment: &handlers.PaymentHandler{Svc: paymentService},
		Admin: &handlers.AdminHandler{
			BookingSvc: bookingService,
			PaymentSvc: paymentService,
			Logger:     logger,
		},
		Gateway: gateway,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
