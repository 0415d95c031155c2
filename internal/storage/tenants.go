package storage

import (
	"context"
	"fmt"

	"hisab/internal/core"
)

const tenantColumns = `id, user_id, name, email, phone, address, rent_amount_cents, rent_due_date,
	lease_start_date, lease_end_date, created_at, updated_at`

func scanTenant(s rowScanner) (core.Tenant, error) {
	var (
		t        core.Tenant
		cents    int64
		leaseEnd core.Date
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Email, &t.Phone, &t.Address, &cents, &t.RentDueDate,
		&t.LeaseStartDate, &leaseEnd, &t.CreatedAt, &t.UpdatedAt)
	t.RentAmount = core.NewMoneyFromCents(cents)
	t.LeaseEndDate = optionalDate(leaseEnd)
	return t, err
}

func (r *Repository) ListTenants(ctx context.Context, q core.ListQuery) ([]core.Tenant, error) {
	rows, err := r.query(ctx, `SELECT `+tenantColumns+` FROM tenants
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, q.UserID, q.Limit, q.Offset())
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	var tenants []core.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	if err := r.attachRentPayments(ctx, tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// attachRentPayments loads the payments of every tenant in one query.
func (r *Repository) attachRentPayments(ctx context.Context, tenants []core.Tenant) error {
	if len(tenants) == 0 {
		return nil
	}
	ids := make([]any, len(tenants))
	index := make(map[string]int, len(tenants))
	for i, t := range tenants {
		ids[i] = t.ID
		index[t.ID] = i
		tenants[i].RentPayments = []core.RentPayment{}
	}

	rows, err := r.query(ctx, `SELECT `+paymentColumns+` FROM rent_payments
		WHERE tenant_id IN (`+placeholders(len(ids))+`)
		ORDER BY due_date DESC, created_at DESC, id DESC`, ids...)
	if err != nil {
		return fmt.Errorf("load rent payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return fmt.Errorf("scan rent payment: %w", err)
		}
		i := index[p.TenantID]
		tenants[i].RentPayments = append(tenants[i].RentPayments, p)
	}
	return rows.Err()
}

func (r *Repository) CountTenants(ctx context.Context, userID string) (int, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM tenants WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return n, nil
}

// GetTenant returns the tenant with its rent payments, most recent due date first.
func (r *Repository) GetTenant(ctx context.Context, id string) (core.Tenant, error) {
	t, err := scanTenant(r.queryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id))
	if err != nil {
		return core.Tenant{}, fmt.Errorf("get tenant %s: %w", id, notFound(err))
	}
	tenants := []core.Tenant{t}
	if err := r.attachRentPayments(ctx, tenants); err != nil {
		return core.Tenant{}, err
	}
	return tenants[0], nil
}

func (r *Repository) InsertTenant(ctx context.Context, t core.Tenant) error {
	_, err := r.exec(ctx, `INSERT INTO tenants (`+tenantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Name, t.Email, t.Phone, t.Address, t.RentAmount.Cents(), int(t.RentDueDate),
		t.LeaseStartDate, nullableDate(t.LeaseEndDate), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (r *Repository) UpdateTenant(ctx context.Context, t core.Tenant) error {
	err := r.execOne(ctx, `UPDATE tenants SET
		name = ?, email = ?, phone = ?, address = ?, rent_amount_cents = ?, rent_due_date = ?,
		lease_start_date = ?, lease_end_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Name, t.Email, t.Phone, t.Address, t.RentAmount.Cents(), int(t.RentDueDate),
		t.LeaseStartDate, nullableDate(t.LeaseEndDate), t.UpdatedAt, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update tenant %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTenant removes the tenant; its rent payments go with it.
func (r *Repository) DeleteTenant(ctx context.Context, userID, id string) error {
	if err := r.execOne(ctx, `DELETE FROM tenants WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete tenant %s: %w", id, err)
	}
	return nil
}
