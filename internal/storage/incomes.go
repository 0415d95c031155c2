package storage

import (
	"context"
	"fmt"

	"hisab/internal/core"
)

const incomeColumns = `id, user_id, title, description, amount_cents, category, source,
	date, is_recurring, recurring_frequency, created_at, updated_at`

func scanIncome(s rowScanner) (core.Income, error) {
	var (
		i     core.Income
		cents int64
	)
	err := s.Scan(&i.ID, &i.UserID, &i.Title, &i.Description, &cents, &i.Category, &i.Source,
		&i.Date, &i.IsRecurring, &i.RecurringFrequency, &i.CreatedAt, &i.UpdatedAt)
	i.Amount = core.NewMoneyFromCents(cents)
	return i, err
}

func (r *Repository) ListIncomes(ctx context.Context, q core.ListQuery) ([]core.Income, error) {
	where, args := expenseFilter(q)
	rows, err := r.query(ctx, `SELECT `+incomeColumns+` FROM incomes
		WHERE `+where+`
		ORDER BY date DESC, created_at DESC, id DESC
		LIMIT ? OFFSET ?`, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

func (r *Repository) CountIncomes(ctx context.Context, q core.ListQuery) (int, error) {
	where, args := expenseFilter(q)
	n, err := r.count(ctx, `SELECT COUNT(*) FROM incomes WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count incomes: %w", err)
	}
	return n, nil
}

func (r *Repository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	i, err := scanIncome(r.queryRow(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, id))
	if err != nil {
		return core.Income{}, fmt.Errorf("get income %s: %w", id, notFound(err))
	}
	return i, nil
}

func (r *Repository) InsertIncome(ctx context.Context, i core.Income) error {
	_, err := r.exec(ctx, `INSERT INTO incomes (`+incomeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.UserID, i.Title, i.Description, i.Amount.Cents(), i.Category, i.Source,
		i.Date, i.IsRecurring, i.RecurringFrequency, i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

func (r *Repository) UpdateIncome(ctx context.Context, i core.Income) error {
	err := r.execOne(ctx, `UPDATE incomes SET
		title = ?, description = ?, amount_cents = ?, category = ?, source = ?,
		date = ?, is_recurring = ?, recurring_frequency = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		i.Title, i.Description, i.Amount.Cents(), i.Category, i.Source,
		i.Date, i.IsRecurring, i.RecurringFrequency, i.UpdatedAt, i.ID, i.UserID)
	if err != nil {
		return fmt.Errorf("update income %s: %w", i.ID, err)
	}
	return nil
}

func (r *Repository) DeleteIncome(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete income %s: %w", id, err)
	}
	return nil
}
