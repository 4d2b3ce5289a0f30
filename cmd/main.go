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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/RAV-ConfirmationService/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/m04kA/RAV-ConfirmationService/internal/api/handlers/confirm_booking"
	createConfirmationHandler "github.com/m04kA/RAV-ConfirmationService/internal/api/handlers/create_confirmation"
	declineBookingHandler "github.com/m04kA/RAV-ConfirmationService/internal/api/handlers/decline_booking"
	getConfirmationHandler "github.com/m04kA/RAV-ConfirmationService/internal/api/handlers/get_confirmation"
	getOwnerConfirmationsHandler "github.com/m04kA/RAV-ConfirmationService/internal/api/handlers/get_owner_confirmations"
	requestExtensionHandler "github.com/m04kA/RAV-ConfirmationService/internal/api/handlers/request_extension"
	"github.com/m04kA/RAV-ConfirmationService/internal/api/middleware"
	"github.com/m04kA/RAV-ConfirmationService/internal/config"
	cancellationRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/cancellation"
	confirmationRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/confirmation"
	settingsRepo "github.com/m04kA/RAV-ConfirmationService/internal/infra/storage/settings"
	notifyServiceClient "github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
	payoutServiceClient "github.com/m04kA/RAV-ConfirmationService/internal/integrations/payoutservice"
	confirmationsService "github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations"
	settingsService "github.com/m04kA/RAV-ConfirmationService/internal/service/settings"
	cancelBookingUC "github.com/m04kA/RAV-ConfirmationService/internal/usecase/cancel_booking"
	createConfirmationUC "github.com/m04kA/RAV-ConfirmationService/internal/usecase/create_confirmation"
	"github.com/m04kA/RAV-ConfirmationService/internal/worker/sweeper"
	"github.com/m04kA/RAV-ConfirmationService/pkg/dbmetrics"
	"github.com/m04kA/RAV-ConfirmationService/pkg/logger"
	"github.com/m04kA/RAV-ConfirmationService/pkg/metrics"
	"github.com/m04kA/RAV-ConfirmationService/pkg/simpletxmanager"
	"github.com/m04kA/RAV-ConfirmationService/pkg/txmanager"
)

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

	log.Info("Starting RAV-ConfirmationService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

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

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	payoutClient := payoutServiceClient.NewClient(
		cfg.PayoutService.URL,
		time.Duration(cfg.PayoutService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (NotifyService=%s timeout=%ds, PayoutService=%s timeout=%ds)",
		cfg.NotifyService.URL, cfg.NotifyService.Timeout, cfg.PayoutService.URL, cfg.PayoutService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		confirmationRepository *confirmationRepo.Repository
		cancellationRepository *cancellationRepo.Repository
		settingsRepository     *settingsRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		// Инициализируем репозитории с обёрткой метрик
		confirmationRepository = confirmationRepo.NewRepository(wrappedDB)
		cancellationRepository = cancellationRepo.NewRepository(wrappedDB)
		settingsRepository = settingsRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		// Инициализируем репозитории без метрик
		confirmationRepository = confirmationRepo.NewRepository(db)
		cancellationRepository = cancellationRepo.NewRepository(db)
		settingsRepository = settingsRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	settingsSvc := settingsService.NewService(
		settingsRepository,
		time.Duration(cfg.Settings.CacheTTLSeconds)*time.Second,
		log,
	)
	confirmationSvc := confirmationsService.NewService(
		confirmationRepository,
		settingsSvc,
		notifyClient,
		payoutClient,
		log,
	)

	// Инициализируем use cases
	createConfirmationUseCase := createConfirmationUC.NewUseCase(
		confirmationRepository,
		settingsSvc,
		notifyClient,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		confirmationRepository,
		cancellationRepository,
		settingsSvc,
		notifyClient,
		payoutClient,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createConfirmation := createConfirmationHandler.NewHandler(createConfirmationUseCase, log)
	getConfirmation := getConfirmationHandler.NewHandler(confirmationSvc, log)
	getOwnerConfirmations := getOwnerConfirmationsHandler.NewHandler(confirmationSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmationSvc, log)
	declineBooking := declineBookingHandler.NewHandler(confirmationSvc, log)
	requestExtension := requestExtensionHandler.NewHandler(confirmationSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Все маршруты требуют X-User-ID: запись подтверждения видна
	// только владельцу и арендатору бронирования
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Подтверждения ---
	// Создание записи подтверждения (вызывается после авторизации платежа)
	protected.HandleFunc("/confirmations", createConfirmation.Handle).Methods(http.MethodPost)

	// Получение записи подтверждения с обратным отсчётом
	protected.HandleFunc("/confirmations/{confirmationId}", getConfirmation.Handle).Methods(http.MethodGet)

	// Подтверждение бронирования владельцем
	protected.HandleFunc("/confirmations/{confirmationId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)

	// Отклонение бронирования владельцем
	protected.HandleFunc("/confirmations/{confirmationId}/decline", declineBooking.Handle).Methods(http.MethodPost)

	// Продление дедлайна подтверждения
	protected.HandleFunc("/confirmations/{confirmationId}/extensions", requestExtension.Handle).Methods(http.MethodPost)

	// --- Владелец ---
	// Ожидающие подтверждения владельца (отсортированы по дедлайну)
	protected.HandleFunc("/owners/{ownerId}/confirmations/pending", getOwnerConfirmations.Handle).Methods(http.MethodGet)

	// --- Отмена ---
	// Отмена подтверждённого бронирования с расчётом возврата
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// Запускаем фоновый sweep просроченных подтверждений
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	expirySweeper := sweeper.New(
		confirmationSvc,
		metricsCollector,
		time.Duration(cfg.Sweeper.IntervalSeconds)*time.Second,
		cfg.Sweeper.BatchSize,
		log,
	)
	go expirySweeper.Run(sweepCtx)

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновый sweep
	stopSweep()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
