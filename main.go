package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"consultdesk/config"
	"consultdesk/cron"
	"consultdesk/database"
	availabilityRepo "consultdesk/database/repository/availability"
	couponRepo "consultdesk/database/repository/coupon"
	settingsRepo "consultdesk/database/repository/settings"
	sponsorRepo "consultdesk/database/repository/sponsor"
	transactionRepo "consultdesk/database/repository/transaction"
	"consultdesk/handlers"
	"consultdesk/middleware"
	"consultdesk/models"
	"consultdesk/routes"
	"consultdesk/services/calendar"
	"consultdesk/services/coupon"
	"consultdesk/services/payment"
	"consultdesk/services/tasks"
	"consultdesk/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	txRepo := transactionRepo.NewMongoTransactionRepo()
	cpnRepo := couponRepo.NewMongoCouponRepo()
	spnRepo := sponsorRepo.NewMongoSponsorRepo()
	setRepo := settingsRepo.NewMongoSettingsRepo()
	avlRepo := availabilityRepo.NewMongoAvailabilityRepo()

	// Calendar provider. An incomplete Google configuration is fatal at
	// startup rather than a runtime surprise on the first booking.
	googleProvider, err := calendar.NewGoogleProvider(
		context.Background(),
		config.AppConfig.GoogleClientID,
		config.AppConfig.GoogleClientSecret,
		config.AppConfig.GoogleRefreshToken,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar provider: %v", err)
	}

	// services.
	couponEngine := &coupon.DefaultEngine{
		Repo:   cpnRepo,
		Logger: logger,
	}

	reconciler := tasks.NewAsynqReconciler(
		config.AppConfig.RedisAddr,
		config.AppConfig.RedisPassword,
		config.AppConfig.RedisQueueDB,
	)

	ordersCallback := config.AppConfig.ZarinpalCallbackURLOrders
	if ordersCallback == "" {
		ordersCallback = config.AppConfig.ZarinpalCallbackURL
	}
	donationsCallback := config.AppConfig.ZarinpalCallbackURLDonations
	if donationsCallback == "" {
		donationsCallback = config.AppConfig.ZarinpalCallbackURL
	}

	paymentService := &payment.DefaultPaymentService{
		Repo:       txRepo,
		Sponsors:   spnRepo,
		Settings:   setRepo,
		Coupons:    couponEngine,
		Gateway:    payment.NewZarinpalGateway(),
		Calendar:   googleProvider,
		Reconciler: reconciler,
		Locks:      utils.GetLockClient(),
		Fallback: payment.GatewayConfig{
			MerchantID: config.AppConfig.ZarinpalMerchantID,
			BaseURL:    config.AppConfig.ZarinpalBaseURL,
			CallbackURLs: map[models.TransactionKind]string{
				models.KindBooking:  config.AppConfig.ZarinpalCallbackURL,
				models.KindOrder:    ordersCallback,
				models.KindDonation: donationsCallback,
			},
			Descriptions: map[models.TransactionKind]string{
				models.KindBooking:  config.AppConfig.ZarinpalDescription,
				models.KindOrder:    config.AppConfig.ZarinpalDescriptionOrders,
				models.KindDonation: config.AppConfig.ZarinpalDescriptionDonations,
			},
			CalendarID: config.AppConfig.GoogleCalendarID,
		},
		Logger: logger,
	}

	availabilityService := &calendar.DefaultAvailabilityService{
		Provider:          googleProvider,
		Windows:           avlRepo,
		PrimaryCalendarID: config.AppConfig.GoogleCalendarID,
		Cache:             utils.GetCacheClient(),
		Logger:            logger,
	}

	scheduler := &calendar.Scheduler{
		Repo:       txRepo,
		Provider:   googleProvider,
		Settings:   setRepo,
		CalendarID: config.AppConfig.GoogleCalendarID,
		Logger:     logger,
	}

	// Start the async reconciliation worker.
	cron.InitReconcileWorker(paymentService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Bookings:  handlers.NewBookingHandler(paymentService, availabilityService, scheduler),
		Orders:    handlers.NewOrderHandler(paymentService),
		Donations: handlers.NewDonationHandler(paymentService),
		Coupons:   handlers.NewCouponHandler(couponEngine),
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	database.CloseDB()

	logger.Sugar().Info("main: server stopped gracefully")
}
