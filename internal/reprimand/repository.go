package reprimand

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reprimand-panel/reprimand-panel/internal/audit"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Repository persists cases. Every mutation commits together with its audit entry.
type Repository interface {
	// Create inserts c and records the entry built from the stored row.
	Create(ctx context.Context, c Case, entry func(Case) audit.Entry) (Case, error)
	// UpdateStatus changes the status in a single statement.
	UpdateStatus(ctx context.Context, id int64, status Status, entry audit.Entry) (Case, error)
	Delete(ctx context.Context, id int64, entry audit.Entry) (Case, error)
	Get(ctx context.Context, id int64) (Case, error)
	List(ctx context.Context, limit int) ([]Case, error)
}

const caseColumns = `id, issuer_id, issuer_name, recipient_id, recipient_name, punishment_type,
	reason, COALESCE(evidence, ''), COALESCE(task, ''), deadline_days, expires_at, status, issued_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create implements Repository.
func (r *PGRepository) Create(ctx context.Context, c Case, entry func(Case) audit.Entry) (Case, error) {
	var saved Case
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO reprimands (issuer_id, issuer_name, recipient_id, recipient_name, punishment_type,
				reason, evidence, task, deadline_days, expires_at, status, issued_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING `+caseColumns,
			c.IssuerID, c.IssuerName, c.RecipientID, c.RecipientName, c.PunishmentType,
			c.Reason, c.Evidence, c.Task, c.Days, c.Deadline, string(c.Status), c.IssuedAt)
		var err error
		if saved, err = scanCase(row); err != nil {
			return db.Classify(err)
		}
		return audit.Record(ctx, tx, entry(saved))
	})
	if err != nil {
		return Case{}, err
	}
	return saved, nil
}

// UpdateStatus implements Repository.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status Status, entry audit.Entry) (Case, error) {
	var updated Case
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE reprimands SET status = $1 WHERE id = $2 RETURNING `+caseColumns, string(status), id)
		var err error
		if updated, err = scanCase(row); err != nil {
			return notFound(err, id)
		}
		return audit.Record(ctx, tx, entry)
	})
	if err != nil {
		return Case{}, err
	}
	return updated, nil
}

// Delete implements Repository.
func (r *PGRepository) Delete(ctx context.Context, id int64, entry audit.Entry) (Case, error) {
	var deleted Case
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `DELETE FROM reprimands WHERE id = $1 RETURNING `+caseColumns, id)
		var err error
		if deleted, err = scanCase(row); err != nil {
			return notFound(err, id)
		}
		return audit.Record(ctx, tx, entry)
	})
	if err != nil {
		return Case{}, err
	}
	return deleted, nil
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, id int64) (Case, error) {
	c, err := scanCase(r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM reprimands WHERE id = $1`, id))
	if err != nil {
		return Case{}, notFound(err, id)
	}
	return c, nil
}

// List implements Repository. Newest cases come first.
func (r *PGRepository) List(ctx context.Context, limit int) ([]Case, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+caseColumns+` FROM reprimands ORDER BY issued_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()
	cases := make([]Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, db.Classify(rows.Err())
}

func scanCase(row pgx.Row) (Case, error) {
	var (
		c      Case
		status string
	)
	err := row.Scan(&c.ID, &c.IssuerID, &c.IssuerName, &c.RecipientID, &c.RecipientName, &c.PunishmentType,
		&c.Reason, &c.Evidence, &c.Task, &c.Days, &c.Deadline, &status, &c.IssuedAt)
	c.Status = Status(status)
	return c, err
}

func notFound(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: reprimand %d", shared.ErrNotFound, id)
	}
	return db.Classify(err)
}

var _ Repository = (*PGRepository)(nil)
