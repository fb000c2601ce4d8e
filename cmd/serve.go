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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	cancelAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_slots"
	getSchedulingPolicyHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_scheduling_policy"
	listLocationAppointmentsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_location_appointments"
	listSchedulingPoliciesHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_scheduling_policies"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/reschedule_appointment"
	transitionAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/transition_appointment"
	updateSchedulingPolicyHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_scheduling_policy"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/migrations"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/postgres/appointment"
	locationRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/postgres/location"
	policyRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/postgres/policy"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/events"
	appointmentsService "github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	"github.com/m04kA/SMC-SchedulingService/internal/service/catalog"
	policyService "github.com/m04kA/SMC-SchedulingService/internal/service/policy"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	rescheduleBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/keylock"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/tracing"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// appointmentStore общий контракт postgres и memory репозиториев записей
type appointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) error
}

// transactionManager общий контракт менеджеров транзакций
type transactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type publisher interface {
	Publish(ctx context.Context, e events.Event) error
	Close() error
}

// backend хранилище, выбранное в конфигурации
type backend struct {
	locations    catalog.LocationRepository
	appointments appointmentStore
	policies     policyService.PolicyRepository
	txManager    transactionManager
	ping         func(ctx context.Context) error
	close        func()
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		migrate    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer log.Close()
			return serve(cmd.Context(), cfg, log, migrate)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "path to config file")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before start")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) error {
	log.Info("Starting SMC-SchedulingService...")

	// Инициализируем трейсинг
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Metrics.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error("Failed to flush traces: %v", err)
		}
	}()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	defer close(stopMetricsCh)

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаем хранилище
	store, err := openBackend(ctx, cfg, log, metricsCollector, stopMetricsCh, migrate)
	if err != nil {
		return err
	}
	defer store.close()

	// Блокировки: in-process или Redis для нескольких экземпляров
	locker, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	// Издатель событий
	var pub publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled {
		pub = events.NewKafkaPublisher(events.SplitBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic, cfg.Kafka.PublishTimeoutDuration())
		log.Info("Kafka publisher enabled (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error("Failed to close event publisher: %v", err)
		}
	}()

	storeTimeout := cfg.Scheduling.StoreTimeoutDuration()

	// Инициализируем сервисы
	resolver := catalog.NewResolver(store.locations)
	policySvc := policyService.NewService(store.policies, resolver, store.txManager, policyService.Defaults{
		GranularityMinutes: cfg.Scheduling.GranularityMinutes,
		MinLeadMinutes:     cfg.Scheduling.MinLeadMinutes,
		AdvanceBookingDays: cfg.Scheduling.AdvanceBookingDays,
		MaxSuggestions:     cfg.Scheduling.MaxSuggestions,
	}, log)
	appointmentSvc := appointmentsService.NewService(
		store.appointments,
		locker,
		store.txManager,
		pub,
		metricsCollector,
		storeTimeout,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.appointments,
		resolver,
		policySvc,
		locker,
		store.txManager,
		pub,
		metricsCollector,
		storeTimeout,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		store.appointments,
		resolver,
		policySvc,
		locker,
		store.txManager,
		pub,
		metricsCollector,
		storeTimeout,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.appointments,
		resolver,
		policySvc,
		storeTimeout,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createBookingUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	listLocationAppointments := listLocationAppointmentsHandler.NewHandler(appointmentSvc, log)
	transitionAppointment := transitionAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	getSchedulingPolicy := getSchedulingPolicyHandler.NewHandler(policySvc, log)
	listSchedulingPolicies := listSchedulingPoliciesHandler.NewHandler(policySvc, log)
	updateSchedulingPolicy := updateSchedulingPolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID(), middleware.Logging(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", healthHandler(store.ping)).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Записи ---
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}/status", transitionAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// --- Локации ---
	api.HandleFunc("/locations/{locationId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/locations/{locationId}/appointments", listLocationAppointments.Handle).Methods(http.MethodGet)

	// --- Политики расписания ---
	api.HandleFunc("/locations/{locationId}/scheduling-policy", getSchedulingPolicy.Handle).Methods(http.MethodGet)
	api.HandleFunc("/locations/{locationId}/scheduling-policy", updateSchedulingPolicy.Handle).Methods(http.MethodPut)
	api.HandleFunc("/locations/{locationId}/scheduling-policies", listSchedulingPolicies.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "http.server"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

// openBackend подключает postgres или in-memory хранилище
func openBackend(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	metricsCollector *metrics.Metrics,
	stopMetricsCh <-chan struct{},
	migrate bool,
) (*backend, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		store := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.Storage.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := store.ApplySeed(seed); err != nil {
				return nil, err
			}
			log.Info("In-memory catalog loaded from %s", cfg.Storage.SeedFile)
		}
		log.Info("Using in-memory storage")

		return &backend{
			locations:    store.Locations(),
			appointments: store.Appointments(),
			policies:     store.Policies(),
			txManager:    store.TxManager(),
			ping:         func(context.Context) error { return nil },
			close:        func() {},
		}, nil
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := migrations.Up(ctx, db, log); err != nil {
			db.Close()
			return nil, err
		}
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	if metricsCollector != nil {
		log.Info("Database metrics collection started")
	}

	return &backend{
		locations:    locationRepo.NewRepository(wrappedDB),
		appointments: appointmentRepo.NewRepository(wrappedDB),
		policies:     policyRepo.NewRepository(wrappedDB),
		txManager:    txmanager.NewTransactionManager(wrappedDB),
		ping:         wrappedDB.PingContext,
		close:        func() { closeDB(db, log) },
	}, nil
}

func closeDB(db *sql.DB, log *logger.Logger) {
	if err := db.Close(); err != nil {
		log.Error("Failed to close database: %v", err)
	}
}

// newLocker создает блокировки по ключам
func newLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (keylock.Locker, func(), error) {
	if !cfg.Redis.Enabled {
		log.Info("Using in-process booking locks")
		return keylock.NewMemoryLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("Using Redis booking locks (addr=%s)", cfg.Redis.Addr)
	locker := keylock.NewRedisLocker(rdb, cfg.Redis.LockTTLDuration(), cfg.Redis.RetryDelayDuration(), cfg.Redis.KeyPrefix)
	return locker, func() {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}, nil
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			handlers.RespondServiceUnavailable(w)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
