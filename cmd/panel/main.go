package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/reprimand-panel/reprimand-panel/internal/app"
	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	audithttp "github.com/reprimand-panel/reprimand-panel/internal/audit/http"
	"github.com/reprimand-panel/reprimand-panel/internal/auth"
	"github.com/reprimand-panel/reprimand-panel/internal/charter"
	"github.com/reprimand-panel/reprimand-panel/internal/deadline"
	"github.com/reprimand-panel/reprimand-panel/internal/identity/discord"
	"github.com/reprimand-panel/reprimand-panel/internal/observability"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/cache"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
	"github.com/reprimand-panel/reprimand-panel/internal/rbac"
	"github.com/reprimand-panel/reprimand-panel/internal/reprimand"
	"github.com/reprimand-panel/reprimand-panel/internal/roles"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
	"github.com/reprimand-panel/reprimand-panel/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	guild, err := discord.New(cfg.DiscordBotToken, cfg.DiscordGuildID)
	if err != nil {
		logger.Error("init discord client", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, "panel_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	rbacService := rbac.NewService(rbac.NewRepository(dbpool), metrics)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	jobsClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	deadlineService := deadline.NewService(deadline.NewRepository(dbpool), rbacService, logger, cfg.TerminalPunishment)
	reprimandService := reprimand.NewService(reprimand.ServiceConfig{
		Repo:       reprimand.NewRepository(dbpool),
		Authz:      rbacService,
		Directory:  guild,
		Rules:      deadlineService,
		Dispatcher: jobs.NewDispatcher(jobsClient),
		Logger:     logger,
	})
	rolesService := roles.NewService(roles.NewRepository(dbpool), guild)
	charterService := charter.NewService(charter.NewRepository(dbpool), rbacService)
	auditService := audit.NewService(audit.NewRepository(dbpool))

	var authHandler *auth.Handler
	if cfg.LoginEnabled() {
		oauthConfig := auth.NewOAuthConfig(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURL)
		authService := auth.NewService(oauthConfig, guild, guild, auth.NewRepository(dbpool))
		authHandler = auth.NewHandler(logger, authService, sessionManager, csrfManager, rbacService, cfg.FrontendURL)
	} else {
		logger.Warn("discord oauth client not configured, login disabled")
	}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		ReprimandHandler:   reprimand.NewHandler(logger, reprimandService, rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacService, rbacMiddleware),
		LogicHandler:       deadline.NewHandler(logger, deadlineService, rbacMiddleware),
		RolesHandler:       roles.NewHandler(logger, rolesService, rbacMiddleware),
		CharterHandler:     charter.NewHandler(logger, charterService, rbacMiddleware),
		AuditHandler:       audithttp.NewHandler(logger, auditService, rbacMiddleware),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
