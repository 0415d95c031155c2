package storage

import (
	"context"
	"fmt"

	"hisab/internal/core"
)

// DateRange bounds a sum to [From, To). A zero bound is open.
type DateRange struct {
	From core.Date
	To   core.Date
}

func (r *Repository) sumCents(ctx context.Context, table, userID string, dr DateRange) (core.Money, error) {
	query := `SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) FROM ` + table + ` WHERE user_id = ?`
	args := []any{userID}
	if !dr.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, dr.From)
	}
	if !dr.To.IsZero() {
		query += ` AND date < ?`
		args = append(args, dr.To)
	}
	var cents int64
	if err := r.queryRow(ctx, query, args...).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", table, err)
	}
	return core.NewMoneyFromCents(cents), nil
}

func (r *Repository) SumExpenses(ctx context.Context, userID string, dr DateRange) (core.Money, error) {
	return r.sumCents(ctx, "expenses", userID, dr)
}

func (r *Repository) SumIncomes(ctx context.Context, userID string, dr DateRange) (core.Money, error) {
	return r.sumCents(ctx, "incomes", userID, dr)
}

func (r *Repository) SumAccountBalances(ctx context.Context, userID string) (core.Money, error) {
	var cents int64
	err := r.queryRow(ctx, `SELECT CAST(COALESCE(SUM(balance_cents), 0) AS BIGINT)
		FROM bank_accounts WHERE user_id = ?`, userID).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum account balances: %w", err)
	}
	return core.NewMoneyFromCents(cents), nil
}

func (r *Repository) SumPendingRent(ctx context.Context, userID string) (core.Money, error) {
	var cents int64
	err := r.queryRow(ctx, `SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)
		FROM rent_payments WHERE user_id = ? AND status = ?`, userID, core.RentPending).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum pending rent: %w", err)
	}
	return core.NewMoneyFromCents(cents), nil
}

func (r *Repository) categoryTotals(ctx context.Context, table, userID string, from core.Date) ([]core.CategoryAmount, error) {
	rows, err := r.query(ctx, `SELECT category, CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) AS total
		FROM `+table+`
		WHERE user_id = ? AND date >= ?
		GROUP BY category
		ORDER BY total DESC, category`, userID, from)
	if err != nil {
		return nil, fmt.Errorf("group %s by category: %w", table, err)
	}
	defer rows.Close()

	totals := []core.CategoryAmount{}
	for rows.Next() {
		var (
			ca    core.CategoryAmount
			cents int64
		)
		if err := rows.Scan(&ca.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ca.Amount = core.NewMoneyFromCents(cents)
		totals = append(totals, ca)
	}
	return totals, rows.Err()
}

// ExpensesByCategory sums the user's expenses dated on or after from.
func (r *Repository) ExpensesByCategory(ctx context.Context, userID string, from core.Date) ([]core.CategoryAmount, error) {
	return r.categoryTotals(ctx, "expenses", userID, from)
}

// IncomeByCategory sums the user's income dated on or after from.
func (r *Repository) IncomeByCategory(ctx context.Context, userID string, from core.Date) ([]core.CategoryAmount, error) {
	return r.categoryTotals(ctx, "incomes", userID, from)
}

// DailyTrend returns per-day income and expense totals since from, most recent day first.
func (r *Repository) DailyTrend(ctx context.Context, userID string, from core.Date, limit int) ([]core.DailyTrend, error) {
	rows, err := r.query(ctx, `SELECT date,
			CAST(COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0) AS BIGINT)
		FROM (
			SELECT date, amount_cents, 'income' AS kind FROM incomes WHERE user_id = ? AND date >= ?
			UNION ALL
			SELECT date, amount_cents, 'expense' AS kind FROM expenses WHERE user_id = ? AND date >= ?
		) combined
		GROUP BY date
		ORDER BY date DESC
		LIMIT ?`, userID, from, userID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	defer rows.Close()

	trend := []core.DailyTrend{}
	for rows.Next() {
		var (
			d               core.DailyTrend
			income, expense int64
		)
		if err := rows.Scan(&d.Date, &income, &expense); err != nil {
			return nil, fmt.Errorf("scan daily trend: %w", err)
		}
		d.Income = core.NewMoneyFromCents(income)
		d.Expense = core.NewMoneyFromCents(expense)
		trend = append(trend, d)
	}
	return trend, rows.Err()
}
