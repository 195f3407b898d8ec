package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/reprimand-panel/reprimand-panel/internal/identity"
	jobmetrics "github.com/reprimand-panel/reprimand-panel/internal/jobs"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// EffectsConfig names the guild objects the side effects act on. Empty ids
// disable the matching effect.
type EffectsConfig struct {
	ChannelID string
	RoleID    string
	Terminal  string
}

// ReprimandEffectsJob executes the Discord side effects of reprimand changes.
type ReprimandEffectsJob struct {
	Sink    identity.Sink
	Config  EffectsConfig
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReprimandEffectsJob constructs the job handler.
func NewReprimandEffectsJob(sink identity.Sink, cfg EffectsConfig, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReprimandEffectsJob {
	return &ReprimandEffectsJob{Sink: sink, Config: cfg, Logger: logger, Metrics: metrics}
}

// HandleNotify applies the reprimand role, then posts the notice. The role goes
// first so a retry after a failed post does not announce twice.
func (j *ReprimandEffectsJob) HandleNotify(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Sink == nil {
		return errors.New("reprimand effects: sink not configured")
	}
	var payload NotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", TaskReprimandNotify, err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskReprimandNotify)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	c := payload.Case
	if payload.AddRole && j.Config.RoleID != "" {
		err := j.Sink.AddRole(ctx, c.RecipientID, j.Config.RoleID)
		if resultErr = j.settle("role_add", c.ID, err); resultErr != nil {
			return resultErr
		}
	}
	if payload.Notify && j.Config.ChannelID != "" {
		err := j.Sink.PostNotice(ctx, j.Config.ChannelID, c.Notice(j.Config.Terminal))
		if resultErr = j.settle("notice", c.ID, err); resultErr != nil {
			return resultErr
		}
	}
	return resultErr
}

// HandleRoleRemove lifts the reprimand role. A member who already left the
// guild has nothing to lift.
func (j *ReprimandEffectsJob) HandleRoleRemove(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Sink == nil {
		return errors.New("reprimand effects: sink not configured")
	}
	var payload RoleRemovePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", TaskReprimandRoleRemove, err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskReprimandRoleRemove)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if j.Config.RoleID == "" || payload.RecipientID == "" {
		return resultErr
	}
	err := j.Sink.RemoveRole(ctx, payload.RecipientID, j.Config.RoleID)
	resultErr = j.settle("role_remove", payload.ReprimandID, err)
	return resultErr
}

// settle records the effect outcome and decides whether the task retries.
func (j *ReprimandEffectsJob) settle(effect string, reprimandID int64, err error) error {
	log := j.log().With(slog.String("effect", effect), slog.Int64("reprimand_id", reprimandID))
	switch {
	case err == nil:
		j.metrics().ObserveEffect(effect, "ok")
		return nil
	case errors.Is(err, shared.ErrNotFound):
		j.metrics().ObserveEffect(effect, "skipped")
		log.Info("side effect target gone", slog.Any("error", err))
		return nil
	case errors.Is(err, shared.ErrConfiguration), errors.Is(err, shared.ErrValidation):
		j.metrics().ObserveEffect(effect, "rejected")
		log.Error("side effect rejected", slog.Any("error", err))
		return fmt.Errorf("%s: %v: %w", effect, err, asynq.SkipRetry)
	default:
		j.metrics().ObserveEffect(effect, "failed")
		log.Warn("side effect failed", slog.Any("error", err))
		return fmt.Errorf("%s: %w", effect, err)
	}
}

func (j *ReprimandEffectsJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReprimandEffectsJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", "reprimand:effects"))
	}
	return slog.Default().With(slog.String("job", "reprimand:effects"))
}
