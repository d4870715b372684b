package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apihttp "github.com/A-Jhee/GECKO-Bug-Tracker/internal/api/http"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/api/http/handlers"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/auth"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/config"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/events"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/observability"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/persistence"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/repository"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/service"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := postgres.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	membershipRepo := repository.NewProjectMembershipRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	transactor := repository.NewTransactor(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		HistoryRepo:    historyRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		UserRepo:       userRepo,
		ProjectRepo:    projectRepo,
		MembershipRepo: membershipRepo,
		Transactor:     transactor,
		Dispatcher:     dispatcher,
	})
	historyService := service.NewHistoryService(ticketRepo, historyRepo, userRepo)
	projectService := service.NewProjectService(projectRepo, membershipRepo, userRepo)
	reportService := service.NewReportService(ticketRepo, persistence.NewReportCache(redis))
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMW := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})

	apihttp.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, postgres, redis),
		Auth:     handlers.NewAuthHandler(authService),
		Tickets:  handlers.NewTicketsHandler(ticketService, historyService, metrics),
		Projects: handlers.NewProjectsHandler(projectService),
		Reports:  handlers.NewReportsHandler(reportService),
		AuthMW:   authMW,
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
