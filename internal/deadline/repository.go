package deadline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
)

// Repository stores the logic settings document.
type Repository interface {
	// LoadRules returns the stored rule list as raw JSON, nil when none is stored.
	LoadRules(ctx context.Context) (json.RawMessage, error)
	// ReplaceRules swaps the whole rule list and records entry in one transaction.
	ReplaceRules(ctx context.Context, rules []Rule, entry audit.Entry) error
}

// PGRepository keeps the rules inside the system_settings jsonb row.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// LoadRules implements Repository.
func (r *PGRepository) LoadRules(ctx context.Context) (json.RawMessage, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT settings->'deadline_rules' FROM system_settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	return raw, nil
}

// ReplaceRules implements Repository. Other keys of the settings document are kept.
func (r *PGRepository) ReplaceRules(ctx context.Context, rules []Rule, entry audit.Entry) error {
	if rules == nil {
		rules = []Rule{}
	}
	payload, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO system_settings (id, settings)
			VALUES (1, jsonb_build_object('deadline_rules', $1::jsonb))
			ON CONFLICT (id) DO UPDATE
			SET settings = system_settings.settings || EXCLUDED.settings`, payload)
		if err != nil {
			return db.Classify(err)
		}
		return audit.Record(ctx, tx, entry)
	})
}

var _ Repository = (*PGRepository)(nil)
