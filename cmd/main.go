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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applyToJobHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/apply_to_job"
	cancelReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/cancel_reservation"
	completeInterviewHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/complete_interview"
	createContractHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/create_contract"
	createReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/create_reservation"
	getApplicationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_application"
	getAvailabilityHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_availability"
	getAvailableSlotsHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_available_slots"
	getNegotiationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_negotiation"
	getReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_reservation"
	getResourceReservationsHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_resource_reservations"
	getScheduleHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_schedule"
	getUserReservationsHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/get_user_reservations"
	postMessageHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/post_message"
	proposeNegotiationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/propose_negotiation"
	rescheduleReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/reschedule_reservation"
	respondNegotiationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/respond_negotiation"
	scheduleInterviewHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/schedule_interview"
	signContractHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/sign_contract"
	submitReviewHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/submit_review"
	transitionReservationHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/transition_reservation"
	updateApplicationStatusHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/update_application_status"
	updateScheduleHandler "github.com/m04kA/SMC-RentalService/internal/api/handlers/update_schedule"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/config"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/lock"
	applicationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/application"
	negotiationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/negotiation"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	reviewRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/review"
	scheduleRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RentalService/internal/integrations/notifier"
	hiringService "github.com/m04kA/SMC-RentalService/internal/service/hiring"
	negotiationsService "github.com/m04kA/SMC-RentalService/internal/service/negotiations"
	reservationsService "github.com/m04kA/SMC-RentalService/internal/service/reservations"
	reviewsService "github.com/m04kA/SMC-RentalService/internal/service/reviews"
	scheduleService "github.com/m04kA/SMC-RentalService/internal/service/schedule"
	createReservationUC "github.com/m04kA/SMC-RentalService/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/m04kA/SMC-RentalService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-RentalService/migrations"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
	"github.com/m04kA/SMC-RentalService/pkg/metrics"
	"github.com/m04kA/SMC-RentalService/pkg/migrator"
	"github.com/m04kA/SMC-RentalService/pkg/txmanager"
)

// Notifier общий интерфейс уведомлений для сервисов
type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification) error
}

// Locker общий интерфейс блокировки машины
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-RentalService...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Booking.TimeZone, err)
	}

	// Инициализируем метрики (если включены)
	// nil коллектор безопасен: все методы metrics.Metrics проверяют получателя
	var metricsCollector *metrics.Metrics
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

	// Применяем миграции
	if cfg.Database.MigrateOnStart {
		if err := migrator.Up(db, migrations.FS, "."); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Migrations applied")
	}

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Блокировка машины на время проверки пересечений
	var locker Locker
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}

		locker = lock.NewRedisLocker(redisClient, cfg.Booking.LockTTL(), cfg.Booking.LockWait(), log)
		log.Info("Redis locker initialized (addr=%s)", cfg.Redis.Addr)
	} else {
		locker = lock.NewLocalLocker(cfg.Booking.LockWait())
		log.Info("In-process locker initialized")
	}

	// Уведомления
	var notify Notifier
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := notifier.NewRabbitNotifier(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbit.Close()

		notify = rabbit
		log.Info("RabbitMQ notifier initialized (exchange=%s)", cfg.RabbitMQ.Exchange)
	} else {
		notify = notifier.NewLogNotifier(log)
		log.Info("Log notifier initialized")
	}

	afterCommit := aftercommit.NewRunner(log, metricsCollector)

	// Инициализируем репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	resourceRepository := resourceRepo.NewRepository(wrappedDB)
	negotiationRepository := negotiationRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	applicationRepository := applicationRepo.NewRepository(wrappedDB)
	jobRepository := applicationRepo.NewJobRepository(wrappedDB)
	reviewRepository := reviewRepo.NewRepository(wrappedDB)
	reviewTargetRepository := reviewRepo.NewTargetRepository(wrappedDB)

	scheduleDefaults := domain.ScheduleDefaults{
		SlotDurationMinutes: cfg.Booking.SlotDurationMinutes,
		OpenTime:            cfg.Booking.OpenTime,
		CloseTime:           cfg.Booking.CloseTime,
	}

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		resourceRepository,
		locker,
		txMgr,
		afterCommit,
		notify,
		metricsCollector,
		log,
	)
	negotiationSvc := negotiationsService.NewService(
		negotiationRepository,
		resourceRepository,
		txMgr,
		afterCommit,
		notify,
		cfg.Negotiation.TTL(),
		cfg.Negotiation.MaxCounterRounds,
		log,
	)
	hiringSvc := hiringService.NewService(
		applicationRepository,
		jobRepository,
		txMgr,
		afterCommit,
		notify,
		cfg.Contract.TTL(),
		cfg.Contract.EnforceExpiry,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		resourceRepository,
		scheduleDefaults,
		log,
	)
	reviewSvc := reviewsService.NewService(
		reviewRepository,
		reviewTargetRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		resourceRepository,
		negotiationRepository,
		locker,
		txMgr,
		afterCommit,
		notify,
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		resourceRepository,
		scheduleRepository,
		scheduleDefaults,
		location,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(reservationSvc, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)

	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	transitionReservation := transitionReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	rescheduleReservation := rescheduleReservationHandler.NewHandler(reservationSvc, log)
	getResourceReservations := getResourceReservationsHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)

	proposeNegotiation := proposeNegotiationHandler.NewHandler(negotiationSvc, log)
	getNegotiation := getNegotiationHandler.NewHandler(negotiationSvc, log)
	respondNegotiation := respondNegotiationHandler.NewHandler(negotiationSvc, log)

	applyToJob := applyToJobHandler.NewHandler(hiringSvc, log)
	getApplication := getApplicationHandler.NewHandler(hiringSvc, log)
	updateApplicationStatus := updateApplicationStatusHandler.NewHandler(hiringSvc, log)
	scheduleInterview := scheduleInterviewHandler.NewHandler(hiringSvc, log)
	completeInterview := completeInterviewHandler.NewHandler(hiringSvc, log)
	createContract := createContractHandler.NewHandler(hiringSvc, log)
	signContract := signContractHandler.NewHandler(hiringSvc, log)
	postMessage := postMessageHandler.NewHandler(hiringSvc, log)

	submitReview := submitReviewHandler.NewHandler(reviewSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты машины на дату
	api.HandleFunc("/resources/{resourceId}/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Занятость машины в диапазоне
	api.HandleFunc("/resources/{resourceId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Действующее расписание слотов
	api.HandleFunc("/resources/{resourceId}/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Машины (для владельцев) ---
	protected.HandleFunc("/resources/{resourceId}/schedule", updateSchedule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/resources/{resourceId}/reservations", getResourceReservations.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/status", transitionReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/reschedule", rescheduleReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Торг по ставке ---
	protected.HandleFunc("/negotiations", proposeNegotiation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/negotiations/{negotiationId}", getNegotiation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/negotiations/{negotiationId}/respond", respondNegotiation.Handle).Methods(http.MethodPost)

	// --- Найм водителей ---
	protected.HandleFunc("/jobs/{jobId}/applications", applyToJob.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/applications/{applicationId}", getApplication.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/applications/{applicationId}/status", updateApplicationStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/applications/{applicationId}/interview", scheduleInterview.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/applications/{applicationId}/interview/complete", completeInterview.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/applications/{applicationId}/contract", createContract.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/applications/{applicationId}/contract/sign", signContract.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/applications/{applicationId}/messages", postMessage.Handle).Methods(http.MethodPost)

	// --- Отзывы ---
	protected.HandleFunc("/reviews", submitReview.Handle).Methods(http.MethodPost)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
