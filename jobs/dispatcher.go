package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/reprimand-panel/reprimand-panel/internal/reprimand"
)

// Enqueuer is the part of the asynq client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher turns committed reprimand outcomes into queued tasks.
type Dispatcher struct {
	queue Enqueuer
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(queue Enqueuer) *Dispatcher {
	return &Dispatcher{queue: queue}
}

// Dispatch enqueues one task per requested effect group. A task already queued
// for the same case counts as dispatched.
func (d *Dispatcher) Dispatch(ctx context.Context, outcome reprimand.Outcome) error {
	if d == nil || d.queue == nil {
		return errors.New("jobs: dispatcher not configured")
	}
	effects := outcome.Effects
	var errs []error
	if effects.Notify || effects.AddRole {
		task, err := NewNotifyTask(outcome.Case, effects)
		if err == nil {
			err = d.enqueue(ctx, task)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s: %w", TaskReprimandNotify, err))
		}
	}
	if effects.RemoveRole {
		task, err := NewRoleRemoveTask(outcome.Case)
		if err == nil {
			err = d.enqueue(ctx, task)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s: %w", TaskReprimandRoleRemove, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) enqueue(ctx context.Context, task *asynq.Task) error {
	_, err := d.queue.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}
