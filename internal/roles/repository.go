package roles

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all mirrored roles, including ones since removed from the guild.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, guild_id, updated_at FROM discord_roles ORDER BY name, id`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()
	roles := make([]Role, 0)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.GuildID, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}
	return roles, nil
}

// UpsertRoles inserts missing roles and renames existing ones in one
// transaction. Nothing is deleted.
func (r *Repository) UpsertRoles(ctx context.Context, roles []Role, entry audit.Entry) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if len(roles) == 0 {
			return audit.Record(ctx, tx, entry)
		}
		batch := &pgx.Batch{}
		for _, role := range roles {
			batch.Queue(`
				INSERT INTO discord_roles (id, name, guild_id, updated_at) VALUES ($1, $2, $3, NOW())
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`,
				role.ID, role.Name, role.GuildID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return db.Classify(err)
		}
		return audit.Record(ctx, tx, entry)
	})
}

var _ RepositoryPort = (*Repository)(nil)
