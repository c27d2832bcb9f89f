package fines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conferia/conferia/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the fine ledger.
// Transitions are guarded on the source state; a guard miss means the fine
// was not in the required state and nothing changes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const fineColumns = `id, organizer_id, description, amount, state, issued_at, due_date, COALESCE(voucher_ref, ''), paid_at, validated_at`

// Insert stores a newly issued fine.
func (r *Repository) Insert(ctx context.Context, fine Fine) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO fines (id, organizer_id, description, amount, state, issued_at, due_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		fine.ID, fine.OrganizerID, fine.Description, fine.Amount, fine.State, fine.IssuedAt, fine.DueDate)
	return err
}

// Get returns a single fine by ID.
func (r *Repository) Get(ctx context.Context, fineID string) (Fine, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fineColumns+` FROM fines WHERE id = $1`, fineID)
	fine, err := scanFine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Fine{}, fmt.Errorf("fines: %s: %w", fineID, shared.ErrNotFound)
	}
	return fine, err
}

// ListByOrganizer returns the organizer's fines newest first.
func (r *Repository) ListByOrganizer(ctx context.Context, organizerID string) ([]Fine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+fineColumns+` FROM fines
WHERE organizer_id = $1 ORDER BY issued_at DESC`, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFines(rows)
}

// ListAll returns every fine newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Fine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+fineColumns+` FROM fines ORDER BY issued_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFines(rows)
}

// SubmitFine transitions PENDING to AWAITING_VALIDATION.
func (r *Repository) SubmitFine(ctx context.Context, fineID, voucherRef string, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE fines
SET state = 'AWAITING_VALIDATION', voucher_ref = $2, paid_at = $3
WHERE id = $1 AND state = 'PENDING'`, fineID, voucherRef, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.stateConflict(ctx, fineID)
	}
	return nil
}

// ApproveFine transitions AWAITING_VALIDATION to PAID and returns the
// settled fine.
func (r *Repository) ApproveFine(ctx context.Context, fineID string, validatedAt time.Time) (Fine, error) {
	row := r.pool.QueryRow(ctx, `UPDATE fines
SET state = 'PAID', validated_at = $2
WHERE id = $1 AND state = 'AWAITING_VALIDATION'
RETURNING `+fineColumns, fineID, validatedAt)
	fine, err := scanFine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Fine{}, r.stateConflict(ctx, fineID)
	}
	return fine, err
}

// RejectFine transitions AWAITING_VALIDATION back to PENDING, clearing
// voucher evidence.
func (r *Repository) RejectFine(ctx context.Context, fineID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE fines
SET state = 'PENDING', voucher_ref = NULL, paid_at = NULL
WHERE id = $1 AND state = 'AWAITING_VALIDATION'`, fineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.stateConflict(ctx, fineID)
	}
	return nil
}

// stateConflict distinguishes a missing fine from one in the wrong state
// after a guarded update matched nothing.
func (r *Repository) stateConflict(ctx context.Context, fineID string) error {
	var state FineState
	err := r.pool.QueryRow(ctx, `SELECT state FROM fines WHERE id = $1`, fineID).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("fines: %s: %w", fineID, shared.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("fines: %s is %s: %w", fineID, state, shared.ErrInvalidState)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFine(row rowScanner) (Fine, error) {
	var f Fine
	var dueDate, paidAt, validatedAt pgtype.Timestamptz
	err := row.Scan(&f.ID, &f.OrganizerID, &f.Description, &f.Amount, &f.State, &f.IssuedAt, &dueDate, &f.VoucherRef, &paidAt, &validatedAt)
	if err != nil {
		return Fine{}, err
	}
	if dueDate.Valid {
		f.DueDate = &dueDate.Time
	}
	if paidAt.Valid {
		f.PaidAt = &paidAt.Time
	}
	if validatedAt.Valid {
		f.ValidatedAt = &validatedAt.Time
	}
	return f, nil
}

func scanFines(rows pgx.Rows) ([]Fine, error) {
	var fines []Fine
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}
