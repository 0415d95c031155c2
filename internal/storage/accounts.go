package storage

import (
	"context"
	"fmt"

	"hisab/internal/core"
)

const accountColumns = `id, user_id, account_name, bank_name, account_number, account_type,
	balance_cents, currency, created_at, updated_at`

func scanAccount(s rowScanner) (core.BankAccount, error) {
	var (
		a     core.BankAccount
		cents int64
	)
	err := s.Scan(&a.ID, &a.UserID, &a.AccountName, &a.BankName, &a.AccountNumber, &a.AccountType,
		&cents, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	a.Balance = core.NewMoneyFromCents(cents)
	return a, err
}

func (r *Repository) ListAccounts(ctx context.Context, q core.ListQuery) ([]core.BankAccount, error) {
	limit, args := pageClause(q, []any{q.UserID})
	rows, err := r.query(ctx, `SELECT `+accountColumns+` FROM bank_accounts
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.BankAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) CountAccounts(ctx context.Context, userID string) (int, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM bank_accounts WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (core.BankAccount, error) {
	a, err := scanAccount(r.queryRow(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id = ?`, id))
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("get account %s: %w", id, notFound(err))
	}
	return a, nil
}

func (r *Repository) InsertAccount(ctx context.Context, a core.BankAccount) error {
	_, err := r.exec(ctx, `INSERT INTO bank_accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.AccountName, a.BankName, a.AccountNumber, a.AccountType,
		a.Balance.Cents(), a.Currency, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.BankAccount) error {
	err := r.execOne(ctx, `UPDATE bank_accounts SET
		account_name = ?, bank_name = ?, account_number = ?, account_type = ?,
		balance_cents = ?, currency = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		a.AccountName, a.BankName, a.AccountNumber, a.AccountType,
		a.Balance.Cents(), a.Currency, a.UpdatedAt, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("update account %s: %w", a.ID, err)
	}
	return nil
}

func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, `DELETE FROM bank_accounts WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return nil
}
