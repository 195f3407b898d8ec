package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
)

// Record writes an action log row through ex, which is normally the caller's
// transaction so the log entry commits or rolls back with the change itself.
func Record(ctx context.Context, ex db.Execer, entry Entry) error {
	if ex == nil {
		return errors.New("audit: executor not initialised")
	}
	if strings.TrimSpace(entry.Action) == "" || strings.TrimSpace(entry.ActorID) == "" {
		return errors.New("audit: entry requires action and actor")
	}
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx,
		`INSERT INTO action_logs (user_id, user_name, action_type, details) VALUES ($1, $2, $3, $4)`,
		entry.ActorID, entry.ActorName, entry.Action, detailsJSON)
	return db.Classify(err)
}
