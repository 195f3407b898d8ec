package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/reprimand-panel/reprimand-panel/internal/jobs"
	"github.com/reprimand-panel/reprimand-panel/internal/reprimand"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReprimandNotify announces a new reprimand and applies the reprimand role.
	TaskReprimandNotify = "reprimand:notify"
	// TaskReprimandRoleRemove lifts the reprimand role from the recipient.
	TaskReprimandRoleRemove = "reprimand:role_remove"
	// TaskRolesSync mirrors the guild roles into the role table.
	TaskRolesSync = "roles:sync"
)

const (
	effectMaxRetry = 8
	effectTimeout  = 30 * time.Second
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// NotifyPayload carries the case snapshot taken at commit time, so the notice
// matches what was stored even if the case changes before the task runs.
type NotifyPayload struct {
	Case    reprimand.Case `json:"case"`
	Notify  bool           `json:"notify"`
	AddRole bool           `json:"add_role"`
}

// RoleRemovePayload identifies whose reprimand role to lift.
type RoleRemovePayload struct {
	ReprimandID int64  `json:"reprimand_id"`
	RecipientID string `json:"recipient_id"`
}

// NewNotifyTask builds the notify task for a freshly created case. The task id
// is derived from the case id so a repeated dispatch is dropped by the queue.
func NewNotifyTask(c reprimand.Case, effects reprimand.Effects) (*asynq.Task, error) {
	body, err := json.Marshal(NotifyPayload{Case: c, Notify: effects.Notify, AddRole: effects.AddRole})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReprimandNotify, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(fmt.Sprintf("%s:%d", TaskReprimandNotify, c.ID)),
		asynq.MaxRetry(effectMaxRetry),
		asynq.Timeout(effectTimeout),
	), nil
}

// NewRoleRemoveTask builds the role removal task for a served, revoked or
// deleted case.
func NewRoleRemoveTask(c reprimand.Case) (*asynq.Task, error) {
	body, err := json.Marshal(RoleRemovePayload{ReprimandID: c.ID, RecipientID: c.RecipientID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReprimandRoleRemove, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(fmt.Sprintf("%s:%d", TaskReprimandRoleRemove, c.ID)),
		asynq.MaxRetry(effectMaxRetry),
		asynq.Timeout(effectTimeout),
	), nil
}

// NewRolesSyncTask builds the periodic role sync task.
func NewRolesSyncTask() *asynq.Task {
	return asynq.NewTask(TaskRolesSync, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}
