package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
)

// PGRepository reads the action log from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Window returns rows newest first, filtered by actor and action when set.
func (r *PGRepository) Window(ctx context.Context, actor, action string, offset, limit int) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, user_name, action_type, details, created_at
		FROM action_logs
		WHERE ($1 = '' OR user_id = $1 OR user_name ILIKE $1)
		  AND ($2 = '' OR action_type = $2)
		ORDER BY created_at DESC, id DESC
		OFFSET $3 LIMIT $4`,
		strings.TrimSpace(actor), strings.TrimSpace(action), offset, limit)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var result []TimelineRow
	for rows.Next() {
		var (
			row     TimelineRow
			details []byte
		)
		if err := rows.Scan(&row.ID, &row.ActorID, &row.ActorName, &row.Action, &details, &row.At); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &row.Details); err != nil {
				return nil, err
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}
	return result, nil
}

var _ Repository = (*PGRepository)(nil)
