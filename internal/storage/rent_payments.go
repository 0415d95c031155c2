package storage

import (
	"context"
	"fmt"

	"hisab/internal/core"
)

const paymentColumns = `id, user_id, tenant_id, amount_cents, due_date, paid_date, status,
	payment_method, notes, created_at, updated_at`

func scanPayment(s rowScanner, extra ...any) (core.RentPayment, error) {
	var (
		p     core.RentPayment
		cents int64
		paid  core.Date
	)
	dest := []any{&p.ID, &p.UserID, &p.TenantID, &cents, &p.DueDate, &paid, &p.Status,
		&p.PaymentMethod, &p.Notes, &p.CreatedAt, &p.UpdatedAt}
	err := s.Scan(append(dest, extra...)...)
	p.Amount = core.NewMoneyFromCents(cents)
	p.PaidDate = optionalDate(paid)
	return p, err
}

// scanPaymentWithTenant reads a rent_payments row joined with its tenant.
func scanPaymentWithTenant(s rowScanner) (core.RentPayment, error) {
	var (
		t        core.Tenant
		cents    int64
		leaseEnd core.Date
	)
	p, err := scanPayment(s, &t.ID, &t.UserID, &t.Name, &t.Email, &t.Phone, &t.Address, &cents,
		&t.RentDueDate, &t.LeaseStartDate, &leaseEnd, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return p, err
	}
	t.RentAmount = core.NewMoneyFromCents(cents)
	t.LeaseEndDate = optionalDate(leaseEnd)
	p.Tenant = &t
	return p, nil
}

const paymentJoinColumns = `p.id, p.user_id, p.tenant_id, p.amount_cents, p.due_date, p.paid_date, p.status,
	p.payment_method, p.notes, p.created_at, p.updated_at,
	t.id, t.user_id, t.name, t.email, t.phone, t.address, t.rent_amount_cents, t.rent_due_date,
	t.lease_start_date, t.lease_end_date, t.created_at, t.updated_at`

func paymentFilter(q core.ListQuery) (string, []any) {
	where := `p.user_id = ?`
	args := []any{q.UserID}
	if q.TenantID != "" {
		where += ` AND p.tenant_id = ?`
		args = append(args, q.TenantID)
	}
	return where, args
}

func (r *Repository) ListRentPayments(ctx context.Context, q core.ListQuery) ([]core.RentPayment, error) {
	where, args := paymentFilter(q)
	limit, args := pageClause(q, args)
	rows, err := r.query(ctx, `SELECT `+paymentJoinColumns+`
		FROM rent_payments p JOIN tenants t ON t.id = p.tenant_id
		WHERE `+where+`
		ORDER BY p.due_date DESC, p.created_at DESC, p.id DESC`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("list rent payments: %w", err)
	}
	defer rows.Close()

	var payments []core.RentPayment
	for rows.Next() {
		p, err := scanPaymentWithTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rent payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *Repository) CountRentPayments(ctx context.Context, q core.ListQuery) (int, error) {
	where, args := paymentFilter(q)
	n, err := r.count(ctx, `SELECT COUNT(*) FROM rent_payments p WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count rent payments: %w", err)
	}
	return n, nil
}

func (r *Repository) GetRentPayment(ctx context.Context, id string) (core.RentPayment, error) {
	p, err := scanPaymentWithTenant(r.queryRow(ctx, `SELECT `+paymentJoinColumns+`
		FROM rent_payments p JOIN tenants t ON t.id = p.tenant_id
		WHERE p.id = ?`, id))
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("get rent payment %s: %w", id, notFound(err))
	}
	return p, nil
}

func (r *Repository) InsertRentPayment(ctx context.Context, p core.RentPayment) error {
	_, err := r.exec(ctx, `INSERT INTO rent_payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.TenantID, p.Amount.Cents(), p.DueDate, nullableDate(p.PaidDate), p.Status,
		p.PaymentMethod, p.Notes, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert rent payment: %w", err)
	}
	return nil
}

func (r *Repository) UpdateRentPayment(ctx context.Context, p core.RentPayment) error {
	err := r.execOne(ctx, `UPDATE rent_payments SET
		tenant_id = ?, amount_cents = ?, due_date = ?, paid_date = ?, status = ?,
		payment_method = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		p.TenantID, p.Amount.Cents(), p.DueDate, nullableDate(p.PaidDate), p.Status,
		p.PaymentMethod, p.Notes, p.UpdatedAt, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update rent payment %s: %w", p.ID, err)
	}
	return nil
}

func (r *Repository) DeleteRentPayment(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, `DELETE FROM rent_payments WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete rent payment %s: %w", id, err)
	}
	return nil
}
