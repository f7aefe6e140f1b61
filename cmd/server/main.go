package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/okalab/okalab-backend/internal/cache"
	"github.com/okalab/okalab-backend/internal/config"
	"github.com/okalab/okalab-backend/internal/db"
	"github.com/okalab/okalab-backend/internal/domain/repository"
	httpHandlers "github.com/okalab/okalab-backend/internal/http/handlers"
	"github.com/okalab/okalab-backend/internal/http/middleware"
	httpRouter "github.com/okalab/okalab-backend/internal/http/router"
	"github.com/okalab/okalab-backend/internal/infrastructure/memory"
	"github.com/okalab/okalab-backend/internal/infrastructure/persistence"
	"github.com/okalab/okalab-backend/internal/jobs"
	"github.com/okalab/okalab-backend/internal/logger"
	"github.com/okalab/okalab-backend/internal/service"
	"github.com/okalab/okalab-backend/internal/usecase/enrollment"
	"github.com/okalab/okalab-backend/internal/usecase/ledger"
	"github.com/okalab/okalab-backend/internal/usecase/payment"
	"github.com/okalab/okalab-backend/internal/usecase/seminar"
	"github.com/okalab/okalab-backend/internal/usecase/withdrawal"
	"github.com/okalab/okalab-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	checks := make(map[string]httpHandlers.Pinger)

	// Хранилище.
	var store repository.Store
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Log.Warn("main: данные хранятся в памяти и пропадут после перезапуска")
		store = memory.NewStore()
	default:
		dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
			log.Fatalf("main: ошибка миграций: %v", err)
		}
		store = persistence.NewStore(dbConn)
	}
	checks["storage"] = store

	// Redis общий для кэша счётчиков и лимитера. Без REDIS_URL всё живёт в памяти процесса.
	var (
		redisClient *redis.Client
		counts      cache.CountCache
	)
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("main: ошибка подключения к redis: %v", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Log.WithError(err).Warn("main: ошибка закрытия redis")
			}
		}()
		counts = cache.NewRedisCountCache(redisClient, cfg.CountCacheTTL)
		checks["redis"] = httpHandlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		memCounts := cache.NewMemoryCountCache(cfg.CountCacheTTL)
		defer memCounts.Close()
		counts = memCounts
	}

	limiterStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		log.Fatalf("main: ошибка инициализации лимитера: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Вебсокеты, через них же идут уведомления.
	hub := ws.NewHub(ctx)
	go hub.Run()

	defaults := seminar.Defaults{
		PlatformFeePercent:    cfg.DefaultPlatformFeePercent,
		ProfessorBonusPercent: cfg.DefaultProfessorBonusPercent,
	}
	l := ledger.New()

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Health: httpHandlers.NewHealthHandler(checks),
		WS:     httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Seminar: httpHandlers.NewSeminarHandler(
			seminar.NewCreateSeminarUseCase(store, defaults),
			seminar.NewQuoteUseCase(store, counts),
			seminar.NewCountsUseCase(store, counts),
		),
		Enrollment: httpHandlers.NewEnrollmentHandler(
			enrollment.NewEnrollUseCase(store, counts, hub),
			enrollment.NewCancelEnrollmentUseCase(store, counts, hub),
			enrollment.NewPayabilityUseCase(store),
			enrollment.NewListEnrollmentsUseCase(store),
		),
		Payment: httpHandlers.NewPaymentHandler(
			payment.NewSubmitPaymentUseCase(store, hub),
			payment.NewApprovePaymentUseCase(store, l, counts, hub, cfg.PlatformEmail),
			payment.NewRejectPaymentUseCase(store, hub),
		),
		Wallet:     httpHandlers.NewWalletHandler(ledger.NewService(store, l, hub)),
		Withdrawal: httpHandlers.NewWithdrawalHandler(withdrawal.NewProcessor(store, hub)),
		Settings:   httpHandlers.NewSettingsHandler(seminar.NewSettingsUseCase(store, defaults)),
	}

	// Фоновые задачи.
	scheduler := jobs.NewScheduler()
	if err := scheduler.AddPaymentWindowJob(cfg.PaymentWindowCron, jobs.NewPaymentWindowJob(store, hub)); err != nil {
		log.Fatalf("main: ошибка регистрации задачи: %v", err)
	}
	scheduler.Start()

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager, limiterStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	logger.Log.WithFields(map[string]interface{}{
		"port":    cfg.HTTPPort,
		"storage": cfg.StorageDriver,
		"redis":   redisClient != nil,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}

	// Дожидаемся текущего запуска фоновых задач.
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	logger.Log.Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
