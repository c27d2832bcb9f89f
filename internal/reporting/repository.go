package reporting

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetRepository provides PostgreSQL backed persistence for budget lines.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository constructs a repository.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// ListBudgets returns every category's execution row ordered by category.
func (r *BudgetRepository) ListBudgets(ctx context.Context) ([]BudgetRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT category, budgeted, executed
FROM budgets ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BudgetRow
	for rows.Next() {
		var row BudgetRow
		if err := rows.Scan(&row.Category, &row.Budgeted, &row.Executed); err != nil {
			return nil, err
		}
		row.Pct, row.Status = EvaluateBudget(row.Budgeted, row.Executed)
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpsertBudget stores one category's budgeted and executed amounts.
func (r *BudgetRepository) UpsertBudget(ctx context.Context, category string, budgeted, executed float64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO budgets (category, budgeted, executed)
VALUES ($1, $2, $3)
ON CONFLICT (category) DO UPDATE SET budgeted = EXCLUDED.budgeted, executed = EXCLUDED.executed`,
		category, budgeted, executed)
	return err
}
