package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/reprimand-panel/reprimand-panel/internal/jobs"
	"github.com/reprimand-panel/reprimand-panel/internal/roles"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// RoleSyncer is satisfied by roles.Service.
type RoleSyncer interface {
	Sync(ctx context.Context, p *shared.Principal) ([]roles.Role, error)
}

// RolesSyncJob mirrors guild roles on a schedule.
type RolesSyncJob struct {
	Syncer  RoleSyncer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRolesSyncJob constructs the job handler.
func NewRolesSyncJob(syncer RoleSyncer, logger *slog.Logger, metrics *jobmetrics.Metrics) *RolesSyncJob {
	return &RolesSyncJob{Syncer: syncer, Logger: logger, Metrics: metrics}
}

// Handle runs one sync attributed to the system actor.
func (j *RolesSyncJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Syncer == nil {
		return errors.New("roles sync: dependencies not configured")
	}

	tracker := j.metrics().Track(TaskRolesSync)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	synced, err := j.Syncer.Sync(ctx, nil)
	if err != nil {
		resultErr = err
		j.log().Error("sync roles", slog.Any("error", err))
		return resultErr
	}
	j.log().Info("synced guild roles", slog.Int("roles", len(synced)), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *RolesSyncJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *RolesSyncJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRolesSync))
	}
	return slog.Default().With(slog.String("job", TaskRolesSync))
}
