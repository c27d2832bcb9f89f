package contributions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conferia/conferia/internal/platform/db"
	"github.com/conferia/conferia/internal/schedule"
	"github.com/conferia/conferia/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the contribution
// ledger. Batch transitions run inside a single transaction guarded by the
// source state; a partial match rolls the whole batch back.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetConfig loads the stored treasury configuration.
func (r *Repository) GetConfig(ctx context.Context) (schedule.Config, error) {
	var cfg schedule.Config
	err := r.pool.QueryRow(ctx, `SELECT monthly_amount, deadline_day, start_month, end_month
FROM treasury_config WHERE id = 1`).
		Scan(&cfg.MonthlyAmount, &cfg.DeadlineDay, &cfg.StartMonth, &cfg.EndMonth)
	if errors.Is(err, pgx.ErrNoRows) {
		return schedule.Config{}, fmt.Errorf("contributions: config missing: %w", shared.ErrNotFound)
	}
	if err != nil {
		return schedule.Config{}, err
	}
	return cfg, nil
}

// SaveConfig upserts the singleton treasury configuration row.
func (r *Repository) SaveConfig(ctx context.Context, cfg schedule.Config) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO treasury_config (id, monthly_amount, deadline_day, start_month, end_month, updated_at)
VALUES (1, $1, $2, $3, $4, NOW())
ON CONFLICT (id) DO UPDATE SET monthly_amount = EXCLUDED.monthly_amount,
	deadline_day = EXCLUDED.deadline_day,
	start_month = EXCLUDED.start_month,
	end_month = EXCLUDED.end_month,
	updated_at = NOW()`,
		cfg.MonthlyAmount, cfg.DeadlineDay, cfg.StartMonth, cfg.EndMonth)
	return err
}

// ListPeriods returns the ordered period sequence.
func (r *Repository) ListPeriods(ctx context.Context) ([]schedule.Period, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, label, deadline FROM contribution_periods ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []schedule.Period
	for rows.Next() {
		var p schedule.Period
		if err := rows.Scan(&p.ID, &p.Label, &p.Deadline); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// ReplacePeriods swaps the period sequence wholesale. Pending cells of
// dropped periods are removed; the service layer has already verified that
// no dropped period holds settled cells.
func (r *Repository) ReplacePeriods(ctx context.Context, periods []schedule.Period) error {
	ids := make([]string, len(periods))
	for i, p := range periods {
		ids[i] = p.ID
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM contribution_cells
WHERE state = 'PENDING' AND NOT (period_id = ANY($1))`, ids); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM contribution_periods WHERE NOT (id = ANY($1))`, ids); err != nil {
			return err
		}
		for _, p := range periods {
			if _, err := tx.Exec(ctx, `INSERT INTO contribution_periods (id, label, deadline)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET label = EXCLUDED.label, deadline = EXCLUDED.deadline`,
				p.ID, p.Label, p.Deadline); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListOrganizers returns the committee roster.
func (r *Repository) ListOrganizers(ctx context.Context) ([]Organizer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(role, '') FROM organizers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var organizers []Organizer
	for rows.Next() {
		var o Organizer
		if err := rows.Scan(&o.ID, &o.Name, &o.Role); err != nil {
			return nil, err
		}
		organizers = append(organizers, o)
	}
	return organizers, rows.Err()
}

// ListCells returns one organizer's cells ordered by period.
func (r *Repository) ListCells(ctx context.Context, organizerID string) ([]Cell, error) {
	rows, err := r.pool.Query(ctx, `SELECT organizer_id, period_id, state, expected_amount, COALESCE(voucher_ref, ''), paid_at, validated_at
FROM contribution_cells WHERE organizer_id = $1 ORDER BY period_id`, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCells(rows)
}

// ListAllCells returns every cell ordered by organizer then period.
func (r *Repository) ListAllCells(ctx context.Context) ([]Cell, error) {
	rows, err := r.pool.Query(ctx, `SELECT organizer_id, period_id, state, expected_amount, COALESCE(voucher_ref, ''), paid_at, validated_at
FROM contribution_cells ORDER BY organizer_id, period_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCells(rows)
}

func scanCells(rows pgx.Rows) ([]Cell, error) {
	var cells []Cell
	for rows.Next() {
		var c Cell
		var paidAt, validatedAt pgtype.Timestamptz
		if err := rows.Scan(&c.OrganizerID, &c.PeriodID, &c.State, &c.ExpectedAmount, &c.VoucherRef, &paidAt, &validatedAt); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			c.PaidAt = &paidAt.Time
		}
		if validatedAt.Valid {
			c.ValidatedAt = &validatedAt.Time
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// ListSettledPeriodIDs returns periods holding at least one cell that is
// paid or awaiting validation.
func (r *Repository) ListSettledPeriodIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT period_id FROM contribution_cells
WHERE state IN ('PAID', 'AWAITING_VALIDATION') ORDER BY period_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SeedCells inserts pending cells, leaving existing records untouched.
func (r *Repository) SeedCells(ctx context.Context, cells []Cell) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, c := range cells {
			if _, err := tx.Exec(ctx, `INSERT INTO contribution_cells (organizer_id, period_id, state, expected_amount)
VALUES ($1, $2, 'PENDING', $3)
ON CONFLICT (organizer_id, period_id) DO NOTHING`,
				c.OrganizerID, c.PeriodID, c.ExpectedAmount); err != nil {
				return err
			}
		}
		return nil
	})
}

// SubmitCells transitions the batch PENDING to AWAITING_VALIDATION. An
// advisory lock keyed on the organizer serialises concurrent submissions.
func (r *Repository) SubmitCells(ctx context.Context, organizerID string, periodIDs []string, voucherRef string, paidAt time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, shared.OrganizerLockKey(organizerID)); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE contribution_cells
SET state = 'AWAITING_VALIDATION', voucher_ref = $3, paid_at = $4
WHERE organizer_id = $1 AND period_id = ANY($2) AND state = 'PENDING'`,
			organizerID, periodIDs, voucherRef, paidAt)
		if err != nil {
			return err
		}
		if int(tag.RowsAffected()) != len(periodIDs) {
			return fmt.Errorf("contributions: %d of %d cells not pending: %w",
				len(periodIDs)-int(tag.RowsAffected()), len(periodIDs), shared.ErrInvalidState)
		}
		return nil
	})
}

// ApproveCells transitions the batch AWAITING_VALIDATION to PAID and
// returns the summed expected amount.
func (r *Repository) ApproveCells(ctx context.Context, organizerID string, periodIDs []string, validatedAt time.Time) (float64, error) {
	var total float64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `UPDATE contribution_cells
SET state = 'PAID', validated_at = $3
WHERE organizer_id = $1 AND period_id = ANY($2) AND state = 'AWAITING_VALIDATION'
RETURNING expected_amount`, organizerID, periodIDs, validatedAt)
		if err != nil {
			return err
		}
		defer rows.Close()
		count := 0
		for rows.Next() {
			var amount float64
			if err := rows.Scan(&amount); err != nil {
				return err
			}
			total += amount
			count++
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if count != len(periodIDs) {
			return fmt.Errorf("contributions: %d of %d cells not awaiting validation: %w",
				len(periodIDs)-count, len(periodIDs), shared.ErrInvalidState)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RejectCells transitions the batch AWAITING_VALIDATION back to PENDING,
// clearing voucher evidence.
func (r *Repository) RejectCells(ctx context.Context, organizerID string, periodIDs []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE contribution_cells
SET state = 'PENDING', voucher_ref = NULL, paid_at = NULL
WHERE organizer_id = $1 AND period_id = ANY($2) AND state = 'AWAITING_VALIDATION'`,
			organizerID, periodIDs)
		if err != nil {
			return err
		}
		if int(tag.RowsAffected()) != len(periodIDs) {
			return fmt.Errorf("contributions: %d of %d cells not awaiting validation: %w",
				len(periodIDs)-int(tag.RowsAffected()), len(periodIDs), shared.ErrInvalidState)
		}
		return nil
	})
}
