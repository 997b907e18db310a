package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	activateSubscriptionHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/activate_subscription"
	cancelBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/cancel_booking"
	confirmBookingPaymentHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/confirm_booking_payment"
	createBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/create_booking"
	createServiceHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/create_service"
	getAvailableSlotsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_booking"
	getCapacityHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_capacity"
	getCustomerBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_customer_bookings"
	getPaymentInfoHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_payment_info"
	getProviderScheduleHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_provider_schedule"
	getServiceHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_service"
	getSubscriptionHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_subscription"
	listProviderServicesHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/list_provider_services"
	markBookingPaidHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/mark_booking_paid"
	markSubscriptionPaymentSentHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/mark_subscription_payment_sent"
	updateBookingStatusHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/config"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	subscriptionRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/subscription"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/events"
	userServiceClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/userservice"
	bookingsService "github.com/m04kA/SMC-MarketplaceService/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-MarketplaceService/internal/service/catalog"
	subscriptionsService "github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions"
	subscriptionModels "github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions/models"
	createBookingUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_booking"
	createServiceUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_service"
	getAvailableSlotsUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceService/pkg/metrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

// publisher общий интерфейс Kafka и no-op публикатора
type publisher interface {
	Publish(ctx context.Context, event events.Event) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-MarketplaceService...")

	// Бизнес-счетчики пишутся всегда, наружу отдаются только при metrics.enabled
	metricsCollector := metrics.New(cfg.Metrics.ServiceName)
	business := metricsCollector.Business(cfg.Metrics.ServiceName)
	stopMetricsCh := make(chan struct{})

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var dbCollector dbmetrics.Collector
	if cfg.Metrics.Enabled {
		dbCollector = metricsCollector
	}
	wrappedDB := dbmetrics.WrapWithDefault(db, dbCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)
	subscriptionRepository := subscriptionRepo.NewRepository(wrappedDB)

	// Интеграции
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	log.Info("UserService client initialized (url=%s, timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)

	var eventPublisher publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		eventPublisher = events.NewKafkaPublisher(events.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: time.Duration(cfg.Kafka.WriteTimeout) * time.Second,
		}, log)
		log.Info("Kafka publisher enabled (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer func() {
		if err := eventPublisher.Close(); err != nil {
			log.Error("Failed to close event publisher: %v", err)
		}
	}()

	fee, err := cfg.Payment.Fee()
	if err != nil {
		log.Fatal("Invalid subscription fee: %v", err)
	}
	collector := subscriptionModels.PaymentCollector{
		UserID:    cfg.Payment.CollectorUserID,
		QRCodeURL: cfg.Payment.QRCodeURL,
		Price:     fee,
		Currency:  cfg.Payment.Currency,
	}

	// Сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, eventPublisher, business, log)
	catalogSvc := catalogService.NewService(serviceRepository, log)
	subscriptionSvc := subscriptionsService.NewService(
		subscriptionRepository,
		serviceRepository,
		userClient,
		collector,
		log,
	)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		serviceRepository,
		txMgr,
		eventPublisher,
		business,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(bookingRepository, serviceRepository, log)
	createServiceUseCase := createServiceUC.NewUseCase(
		serviceRepository,
		subscriptionRepository,
		txMgr,
		business,
		log,
	)

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	markBookingPaid := markBookingPaidHandler.NewHandler(bookingSvc, log)
	confirmBookingPayment := confirmBookingPaymentHandler.NewHandler(bookingSvc, log)
	getProviderSchedule := getProviderScheduleHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	createService := createServiceHandler.NewHandler(createServiceUseCase, log)
	getService := getServiceHandler.NewHandler(catalogSvc, log)
	listProviderServices := listProviderServicesHandler.NewHandler(catalogSvc, log)
	getCapacity := getCapacityHandler.NewHandler(subscriptionSvc, log)
	getSubscription := getSubscriptionHandler.NewHandler(subscriptionSvc, log)
	markSubscriptionPaymentSent := markSubscriptionPaymentSentHandler.NewHandler(subscriptionSvc, log)
	activateSubscription := activateSubscriptionHandler.NewHandler(subscriptionSvc, log)
	getPaymentInfo := getPaymentInfoHandler.NewHandler(subscriptionSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog(log), middleware.Recovery(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Rate limit: Redis (общий для всех инстансов) или token bucket в памяти
	var redisClient *redis.Client
	stopLimiterCh := make(chan struct{})
	if cfg.RateLimit.Enabled {
		var limiter middleware.Limiter
		if cfg.Redis.Enabled {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				log.Warn("Redis is unavailable (addr=%s), limiter will fail open: %v", cfg.Redis.Addr, err)
			}
			cancel()
			limiter = middleware.NewRedisLimiter(
				redisClient,
				cfg.RateLimit.Limit,
				time.Duration(cfg.RateLimit.Window)*time.Second,
				cfg.RateLimit.Prefix,
			)
			log.Info("Redis rate limiter enabled (limit=%d per %ds)", cfg.RateLimit.Limit, cfg.RateLimit.Window)
		} else {
			localLimiter := middleware.NewLocalLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
			idleTTL := time.Duration(cfg.RateLimit.IdleTTL) * time.Second
			go localLimiter.RunJanitor(stopLimiterCh, idleTTL/2, idleTTL)
			limiter = localLimiter
			log.Info("Local rate limiter enabled (rps=%.1f, burst=%d, idle_ttl=%ds)",
				cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		}
		r.Use(middleware.RateLimit(limiter, cfg.RateLimit.TrustProxy, log))
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/services/{serviceId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}", getService.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/services", listProviderServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/payment-info", getPaymentInfo.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/mark-paid", markBookingPaid.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/confirm-payment", confirmBookingPayment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/customers/me/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// --- Провайдер ---
	protected.HandleFunc("/providers/me/bookings", getProviderSchedule.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/me/capacity", getCapacity.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/me/subscription", getSubscription.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/providers/me/subscription/payment-sent", markSubscriptionPaymentSent.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)

	// --- Администратор ---
	protected.HandleFunc("/admin/providers/{providerId}/subscription/activate", activateSubscription.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)
	close(stopLimiterCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
