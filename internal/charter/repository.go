package charter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
)

// Repository stores the charter row.
type Repository interface {
	Get(ctx context.Context) (Charter, error)
	Save(ctx context.Context, c Charter, entry audit.Entry) (Charter, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get implements Repository. A missing row is an empty charter.
func (r *PGRepository) Get(ctx context.Context) (Charter, error) {
	var c Charter
	err := r.pool.QueryRow(ctx, `
		SELECT content, COALESCE(last_updated_by_id, ''), COALESCE(last_updated_by_name, ''), updated_at
		FROM charter WHERE id = 1`).Scan(&c.Content, &c.LastUpdatedByID, &c.LastUpdatedByName, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Charter{}, nil
	}
	if err != nil {
		return Charter{}, db.Classify(err)
	}
	return c, nil
}

// Save implements Repository.
func (r *PGRepository) Save(ctx context.Context, c Charter, entry audit.Entry) (Charter, error) {
	var saved Charter
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO charter (id, content, last_updated_by_id, last_updated_by_name, updated_at)
			VALUES (1, $1, $2, $3, NOW())
			ON CONFLICT (id) DO UPDATE
			SET content = EXCLUDED.content,
				last_updated_by_id = EXCLUDED.last_updated_by_id,
				last_updated_by_name = EXCLUDED.last_updated_by_name,
				updated_at = NOW()
			RETURNING content, last_updated_by_id, last_updated_by_name, updated_at`,
			c.Content, c.LastUpdatedByID, c.LastUpdatedByName,
		).Scan(&saved.Content, &saved.LastUpdatedByID, &saved.LastUpdatedByName, &saved.UpdatedAt)
		if err != nil {
			return db.Classify(err)
		}
		return audit.Record(ctx, tx, entry)
	})
	if err != nil {
		return Charter{}, err
	}
	return saved, nil
}

var _ Repository = (*PGRepository)(nil)
