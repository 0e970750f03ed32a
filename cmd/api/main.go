package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/intake-service/internal/api/http"
	"github.com/spec-kit/intake-service/internal/api/http/handlers"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/cache"
	"github.com/spec-kit/intake-service/internal/config"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/observability"
	"github.com/spec-kit/intake-service/internal/persistence"
	"github.com/spec-kit/intake-service/internal/repository"
	"github.com/spec-kit/intake-service/internal/service"
	"github.com/spec-kit/intake-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	sprintRepo := repository.NewSprintRepository(pool)
	commentRepo := repository.NewRequestCommentRepository(pool)
	historyRepo := repository.NewRequestHistoryRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(func(event events.Event, err error) {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("request_id", event.RequestID),
			zap.Error(err))
	})

	permissionCache := cache.NewPermissionCache(redis.Client, cfg.Redis.PermissionCacheTTL())
	permissionService := service.NewPermissionService(service.PermissionDependencies{
		UserRepo:       userRepo,
		PermissionRepo: permissionRepo,
		Cache:          permissionCache,
		Logger:         logger,
	})

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		RequestRepo: requestRepo,
		ProjectRepo: projectRepo,
		TicketRepo:  ticketRepo,
		ClientRepo:  clientRepo,
		UserRepo:    userRepo,
		CommentRepo: commentRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	clientService := service.NewClientService(clientRepo)
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: projectRepo,
		ClientRepo:  clientRepo,
		UserRepo:    userRepo,
	})
	ticketService := service.NewTicketService(ticketRepo, clientRepo)
	sprintService := service.NewSprintService(sprintRepo, projectRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	gate := auth.NewGate(permissionService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Requests:       handlers.NewRequestsHandler(intakeService),
		Clients:        handlers.NewClientsHandler(clientService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Sprints:        handlers.NewSprintsHandler(sprintService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Permissions:    handlers.NewPermissionsHandler(permissionService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
		Gate:           gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
