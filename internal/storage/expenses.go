package storage

import (
	"context"
	"fmt"

	"hisab/internal/core"
)

const expenseColumns = `id, user_id, title, description, amount_cents, category, payment_method,
	date, is_recurring, recurring_frequency, created_at, updated_at`

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e     core.Expense
		cents int64
	)
	err := s.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &cents, &e.Category, &e.PaymentMethod,
		&e.Date, &e.IsRecurring, &e.RecurringFrequency, &e.CreatedAt, &e.UpdatedAt)
	e.Amount = core.NewMoneyFromCents(cents)
	return e, err
}

// expenseFilter builds the WHERE clause shared by the list and the count.
func expenseFilter(q core.ListQuery) (string, []any) {
	where := `user_id = ?`
	args := []any{q.UserID}
	if q.Category != "" {
		where += ` AND category = ?`
		args = append(args, q.Category)
	}
	return where, args
}

func (r *Repository) ListExpenses(ctx context.Context, q core.ListQuery) ([]core.Expense, error) {
	where, args := expenseFilter(q)
	rows, err := r.query(ctx, `SELECT `+expenseColumns+` FROM expenses
		WHERE `+where+`
		ORDER BY date DESC, created_at DESC, id DESC
		LIMIT ? OFFSET ?`, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *Repository) CountExpenses(ctx context.Context, q core.ListQuery) (int, error) {
	where, args := expenseFilter(q)
	n, err := r.count(ctx, `SELECT COUNT(*) FROM expenses WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	e, err := scanExpense(r.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, notFound(err))
	}
	return e, nil
}

func (r *Repository) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := r.exec(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Description, e.Amount.Cents(), e.Category, e.PaymentMethod,
		e.Date, e.IsRecurring, e.RecurringFrequency, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	err := r.execOne(ctx, `UPDATE expenses SET
		title = ?, description = ?, amount_cents = ?, category = ?, payment_method = ?,
		date = ?, is_recurring = ?, recurring_frequency = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Title, e.Description, e.Amount.Cents(), e.Category, e.PaymentMethod,
		e.Date, e.IsRecurring, e.RecurringFrequency, e.UpdatedAt, e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return nil
}
