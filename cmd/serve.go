package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/sports-registry/cache"
	"github.com/Dosada05/sports-registry/config"
	"github.com/Dosada05/sports-registry/db"
	"github.com/Dosada05/sports-registry/handlers"
	"github.com/Dosada05/sports-registry/queue"
	"github.com/Dosada05/sports-registry/realtime"
	"github.com/Dosada05/sports-registry/repositories"
	api "github.com/Dosada05/sports-registry/routes"
	"github.com/Dosada05/sports-registry/services"
	"github.com/Dosada05/sports-registry/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), logger, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	return cmd
}

func serve(parent context.Context, logger *slog.Logger, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if migrate {
		applied, err := db.Migrate(ctx, dbConn)
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("migrations applied", slog.Int("count", len(applied)))
	}

	// Redis для кеша отчётов (опционально)
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("report cache disabled", slog.Any("error", err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Info("report cache enabled", slog.String("addr", cfg.RedisAddr), slog.Duration("ttl", cfg.ReportCacheTTL))
	}
	reportCache := cache.NewReportCache(rdb, cfg.ReportCacheTTL)

	// Хранилище фотографий (опционально)
	var uploader storage.FileUploader
	if cfg.S3.Enabled() {
		uploader, err = storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 uploader: %w", err)
		}
		logger.Info("S3 uploader initialized", slog.String("bucket", cfg.S3.BucketName))
	} else {
		logger.Info("photo storage is not configured, uploads disabled")
	}

	// События в RabbitMQ (опционально)
	publisher := queue.NewPublisher(cfg.RabbitMQURL, logger)
	defer func() { _ = publisher.Close() }()

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	orgRepo := repositories.NewPostgresOrganizationRepository(dbConn)
	buildingRepo := repositories.NewPostgresBuildingRepository(dbConn)
	personRepo := repositories.NewPostgresPersonRepository(dbConn)
	experienceRepo := repositories.NewPostgresExperienceRepository(dbConn)
	trainingRepo := repositories.NewPostgresTrainingRepository(dbConn)
	reportRepo := repositories.NewPostgresReportRepository(dbConn)
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)

	// Инициализация сервисов
	notifier := services.NewNotifier(wsHub, publisher, reportCache, logger)
	authService := services.NewAuthService(userRepo)
	sportService := services.NewSportService(dbConn, sportRepo, reportRepo, reportCache, notifier, logger)
	orgService := services.NewOrganizationService(orgRepo, notifier)
	buildingService := services.NewBuildingService(buildingRepo, notifier)
	personService := services.NewPersonService(personRepo, experienceRepo, trainingRepo, sportRepo, reportRepo, uploader, notifier, logger)
	reportService := services.NewReportService(reportRepo, experienceRepo, personRepo, reportCache, logger)
	competitionService := services.NewCompetitionService(competitionRepo, personRepo, notifier)
	dashboardService := services.NewDashboardService(statsRepo)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Sport:        handlers.NewSportHandler(sportService),
		Organization: handlers.NewOrganizationHandler(orgService),
		Building:     handlers.NewBuildingHandler(buildingService),
		Person:       handlers.NewPersonHandler(personService),
		Sportsmen:    handlers.NewSportsmenHandler(reportService),
		Competition:  handlers.NewCompetitionHandler(competitionService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, logger),
		Health:       handlers.NewHealthHandler(dbConn),
	}, cfg.JWTSecretKey, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})

	if cfg.RabbitMQURL != "" {
		g.Go(func() error {
			publisher.Run(gctx)
			return nil
		})

		consumer := queue.NewAuditConsumer(cfg.RabbitMQURL, cfg.AuditLogPath, logger)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("audit consumer: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Ожидание сигнала завершения
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application exited")
	return nil
}
