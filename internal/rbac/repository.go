package rbac

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
)

// Repository persists the grant table.
type Repository interface {
	LoadGrants(ctx context.Context) (Grants, error)
	// ReplaceGrants swaps the whole table and records entry in one transaction.
	ReplaceGrants(ctx context.Context, grants Grants, entry audit.Entry) error
	// AddGrants inserts pairs for one role, leaving existing pairs untouched.
	AddGrants(ctx context.Context, roleID string, keys []string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// LoadGrants reads every (role, permission) pair.
func (r *PGRepository) LoadGrants(ctx context.Context) (Grants, error) {
	rows, err := r.pool.Query(ctx, `SELECT role_id, permission_key FROM permissions`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()
	var pairs []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.RoleID, &g.PermissionKey); err != nil {
			return nil, err
		}
		pairs = append(pairs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}
	return FromPairs(pairs), nil
}

// ReplaceGrants implements Repository.
func (r *PGRepository) ReplaceGrants(ctx context.Context, grants Grants, entry audit.Entry) error {
	roleIDs, keys := splitPairs(grants.Pairs())
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM permissions`); err != nil {
			return db.Classify(err)
		}
		if len(roleIDs) > 0 {
			if err := insertPairs(ctx, tx, roleIDs, keys); err != nil {
				return err
			}
		}
		return audit.Record(ctx, tx, entry)
	})
}

// AddGrants implements Repository.
func (r *PGRepository) AddGrants(ctx context.Context, roleID string, keys []string) error {
	roleID = strings.TrimSpace(roleID)
	roleIDs := make([]string, len(keys))
	for i := range keys {
		roleIDs[i] = roleID
	}
	return insertPairs(ctx, r.pool, roleIDs, keys)
}

func insertPairs(ctx context.Context, ex db.Execer, roleIDs, keys []string) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO permissions (role_id, permission_key)
		SELECT * FROM unnest($1::varchar[], $2::varchar[])
		ON CONFLICT (role_id, permission_key) DO NOTHING`, roleIDs, keys)
	return db.Classify(err)
}

func splitPairs(pairs []Grant) ([]string, []string) {
	roleIDs := make([]string, len(pairs))
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		roleIDs[i] = p.RoleID
		keys[i] = p.PermissionKey
	}
	return roleIDs, keys
}

var _ Repository = (*PGRepository)(nil)
