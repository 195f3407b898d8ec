package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/reprimand-panel/reprimand-panel/internal/app"
	"github.com/reprimand-panel/reprimand-panel/internal/identity/discord"
	jobmetrics "github.com/reprimand-panel/reprimand-panel/internal/jobs"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
	"github.com/reprimand-panel/reprimand-panel/internal/roles"
	"github.com/reprimand-panel/reprimand-panel/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	guild, err := discord.New(cfg.DiscordBotToken, cfg.DiscordGuildID)
	if err != nil {
		logger.Error("init discord client", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.DiscordReprimandChannel == "" {
		logger.Warn("reprimand channel not configured, notices disabled")
	}
	if cfg.DiscordReprimandRoleID == "" {
		logger.Warn("reprimand role not configured, role changes disabled")
	}

	metrics := jobmetrics.NewMetrics(nil)
	effectsJob := jobs.NewReprimandEffectsJob(guild, jobs.EffectsConfig{
		ChannelID: cfg.DiscordReprimandChannel,
		RoleID:    cfg.DiscordReprimandRoleID,
		Terminal:  cfg.TerminalPunishment,
	}, logger, metrics)
	rolesJob := jobs.NewRolesSyncJob(roles.NewService(roles.NewRepository(pool), guild), logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReprimandNotify, Handler: effectsJob.HandleNotify},
			{Type: jobs.TaskReprimandRoleRemove, Handler: effectsJob.HandleRoleRemove},
			{Type: jobs.TaskRolesSync, Handler: rolesJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RoleSyncCron, Task: jobs.NewRolesSyncTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
