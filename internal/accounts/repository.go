package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/conferia/conferia/internal/platform/db"
	"github.com/conferia/conferia/internal/shared"
)

// Repository provides PostgreSQL backed persistence for treasury accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new account.
func (r *Repository) Insert(ctx context.Context, account Account) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO accounts (id, name, kind, balance, created_at)
VALUES ($1, $2, $3, 0, $4)`, account.ID, account.Name, account.Kind, account.CreatedAt)
	return err
}

// Get returns an account by ID.
func (r *Repository) Get(ctx context.Context, accountID string) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, `SELECT id, name, kind, balance, created_at
FROM accounts WHERE id = $1`, accountID).
		Scan(&a.ID, &a.Name, &a.Kind, &a.Balance, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, fmt.Errorf("accounts: %s: %w", accountID, shared.ErrNotFound)
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// List returns every account ordered by name.
func (r *Repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, kind, balance, created_at
FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind, &a.Balance, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Delete removes an account unless it holds transactions.
func (r *Repository) Delete(ctx context.Context, accountID string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM account_transactions
WHERE account_id = $1`, accountID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("accounts: %s holds %d transactions: %w", accountID, count, shared.ErrConfigurationConflict)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("accounts: %s: %w", accountID, shared.ErrNotFound)
		}
		return nil
	})
}

// RecordTransaction appends a movement and adjusts the balance in one
// transaction.
func (r *Repository) RecordTransaction(ctx context.Context, txn Transaction) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $2
WHERE id = $1`, txn.AccountID, txn.Amount)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("accounts: %s: %w", txn.AccountID, shared.ErrNotFound)
		}
		_, err = tx.Exec(ctx, `INSERT INTO account_transactions (id, account_id, amount, memo, recorded_at)
VALUES ($1, $2, $3, $4, $5)`,
			txn.ID, txn.AccountID, txn.Amount, txn.Memo, txn.RecordedAt)
		return err
	})
}

// ListTransactions returns an account's movements newest first.
func (r *Repository) ListTransactions(ctx context.Context, accountID string) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, account_id, amount, memo, recorded_at
FROM account_transactions WHERE account_id = $1 ORDER BY recorded_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Memo, &t.RecordedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
