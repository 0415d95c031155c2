package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hisab/internal/amqp"
	"hisab/internal/core"
)

// AccountPage is a page of accounts plus the balance across all of them.
type AccountPage struct {
	core.Page[core.BankAccount]
	TotalBalance core.Money
}

func (l *Ledger) ListAccounts(ctx context.Context, q core.ListQuery) (AccountPage, error) {
	var (
		page  core.Page[core.BankAccount]
		total core.Money
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = listPage(gctx, q, l.store.ListAccounts, byUser(l.store.CountAccounts))
		return err
	})
	g.Go(func() error {
		if q.UserID == "" {
			return nil
		}
		var err error
		total, err = l.store.SumAccountBalances(gctx, q.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return AccountPage{}, fmt.Errorf("list accounts: %w", err)
	}
	return AccountPage{Page: page, TotalBalance: total}, nil
}

func (l *Ledger) GetAccount(ctx context.Context, caller, id string) (core.BankAccount, error) {
	return owned(ctx, caller, id, l.store.GetAccount)
}

func (l *Ledger) CreateAccount(ctx context.Context, caller string, a core.BankAccount) (core.BankAccount, error) {
	if caller == "" {
		return core.BankAccount{}, core.ErrUnauthorized
	}
	if err := l.validate(ctx, amqp.EntityAccount, &a); err != nil {
		return core.BankAccount{}, err
	}
	now := l.timestamp()
	a.ID, a.UserID, a.CreatedAt, a.UpdatedAt = uuid.NewString(), caller, now, now
	if err := l.store.InsertAccount(ctx, a); err != nil {
		return core.BankAccount{}, err
	}
	l.changed(ctx, amqp.EntityAccount, amqp.ActionCreated, a.ID, caller)
	return a, nil
}

func (l *Ledger) UpdateAccount(ctx context.Context, caller, id string, a core.BankAccount) (core.BankAccount, error) {
	existing, err := owned(ctx, caller, id, l.store.GetAccount)
	if err != nil {
		return core.BankAccount{}, err
	}
	if err := l.validate(ctx, amqp.EntityAccount, &a); err != nil {
		return core.BankAccount{}, err
	}
	a.ID, a.UserID, a.CreatedAt, a.UpdatedAt = id, caller, existing.CreatedAt, l.timestamp()
	if err := l.store.UpdateAccount(ctx, a); err != nil {
		return core.BankAccount{}, err
	}
	l.changed(ctx, amqp.EntityAccount, amqp.ActionUpdated, id, caller)
	return a, nil
}

func (l *Ledger) DeleteAccount(ctx context.Context, caller, id string) error {
	if _, err := owned(ctx, caller, id, l.store.GetAccount); err != nil {
		return err
	}
	if err := l.store.DeleteAccount(ctx, caller, id); err != nil {
		return err
	}
	l.changed(ctx, amqp.EntityAccount, amqp.ActionDeleted, id, caller)
	return nil
}

func (l *Ledger) ListExpenses(ctx context.Context, q core.ListQuery) (core.Page[core.Expense], error) {
	page, err := listPage(ctx, q, l.store.ListExpenses, l.store.CountExpenses)
	if err != nil {
		return page, fmt.Errorf("list expenses: %w", err)
	}
	return page, nil
}

func (l *Ledger) GetExpense(ctx context.Context, caller, id string) (core.Expense, error) {
	return owned(ctx, caller, id, l.store.GetExpense)
}

func (l *Ledger) CreateExpense(ctx context.Context, caller string, e core.Expense) (core.Expense, error) {
	if caller == "" {
		return core.Expense{}, core.ErrUnauthorized
	}
	if err := l.validate(ctx, amqp.EntityExpense, &e); err != nil {
		return core.Expense{}, err
	}
	now := l.timestamp()
	e.ID, e.UserID, e.CreatedAt, e.UpdatedAt = uuid.NewString(), caller, now, now
	if err := l.store.InsertExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}
	l.changed(ctx, amqp.EntityExpense, amqp.ActionCreated, e.ID, caller)
	return e, nil
}

func (l *Ledger) UpdateExpense(ctx context.Context, caller, id string, e core.Expense) (core.Expense, error) {
	existing, err := owned(ctx, caller, id, l.store.GetExpense)
	if err != nil {
		return core.Expense{}, err
	}
	if err := l.validate(ctx, amqp.EntityExpense, &e); err != nil {
		return core.Expense{}, err
	}
	e.ID, e.UserID, e.CreatedAt, e.UpdatedAt = id, caller, existing.CreatedAt, l.timestamp()
	if err := l.store.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}
	l.changed(ctx, amqp.EntityExpense, amqp.ActionUpdated, id, caller)
	return e, nil
}

func (l *Ledger) DeleteExpense(ctx context.Context, caller, id string) error {
	if _, err := owned(ctx, caller, id, l.store.GetExpense); err != nil {
		return err
	}
	if err := l.store.DeleteExpense(ctx, caller, id); err != nil {
		return err
	}
	l.changed(ctx, amqp.EntityExpense, amqp.ActionDeleted, id, caller)
	return nil
}

func (l *Ledger) ListIncomes(ctx context.Context, q core.ListQuery) (core.Page[core.Income], error) {
	page, err := listPage(ctx, q, l.store.ListIncomes, l.store.CountIncomes)
	if err != nil {
		return page, fmt.Errorf("list incomes: %w", err)
	}
	return page, nil
}

func (l *Ledger) GetIncome(ctx context.Context, caller, id string) (core.Income, error) {
	return owned(ctx, caller, id, l.store.GetIncome)
}

func (l *Ledger) CreateIncome(ctx context.Context, caller string, i core.Income) (core.Income, error) {
	if caller == "" {
		return core.Income{}, core.ErrUnauthorized
	}
	if err := l.validate(ctx, amqp.EntityIncome, &i); err != nil {
		return core.Income{}, err
	}
	now := l.timestamp()
	i.ID, i.UserID, i.CreatedAt, i.UpdatedAt = uuid.NewString(), caller, now, now
	if err := l.store.InsertIncome(ctx, i); err != nil {
		return core.Income{}, err
	}
	l.changed(ctx, amqp.EntityIncome, amqp.ActionCreated, i.ID, caller)
	return i, nil
}

func (l *Ledger) UpdateIncome(ctx context.Context, caller, id string, i core.Income) (core.Income, error) {
	existing, err := owned(ctx, caller, id, l.store.GetIncome)
	if err != nil {
		return core.Income{}, err
	}
	if err := l.validate(ctx, amqp.EntityIncome, &i); err != nil {
		return core.Income{}, err
	}
	i.ID, i.UserID, i.CreatedAt, i.UpdatedAt = id, caller, existing.CreatedAt, l.timestamp()
	if err := l.store.UpdateIncome(ctx, i); err != nil {
		return core.Income{}, err
	}
	l.changed(ctx, amqp.EntityIncome, amqp.ActionUpdated, id, caller)
	return i, nil
}

func (l *Ledger) DeleteIncome(ctx context.Context, caller, id string) error {
	if _, err := owned(ctx, caller, id, l.store.GetIncome); err != nil {
		return err
	}
	if err := l.store.DeleteIncome(ctx, caller, id); err != nil {
		return err
	}
	l.changed(ctx, amqp.EntityIncome, amqp.ActionDeleted, id, caller)
	return nil
}

func (l *Ledger) ListTenants(ctx context.Context, q core.ListQuery) (core.Page[core.Tenant], error) {
	page, err := listPage(ctx, q, l.store.ListTenants, byUser(l.store.CountTenants))
	if err != nil {
		return page, fmt.Errorf("list tenants: %w", err)
	}
	return page, nil
}

// GetTenant returns the tenant with its rent payments, newest due date first.
func (l *Ledger) GetTenant(ctx context.Context, caller, id string) (core.Tenant, error) {
	return owned(ctx, caller, id, l.store.GetTenant)
}

func (l *Ledger) CreateTenant(ctx context.Context, caller string, t core.Tenant) (core.Tenant, error) {
	if caller == "" {
		return core.Tenant{}, core.ErrUnauthorized
	}
	if err := l.validate(ctx, amqp.EntityTenant, &t); err != nil {
		return core.Tenant{}, err
	}
	now := l.timestamp()
	t.ID, t.UserID, t.CreatedAt, t.UpdatedAt = uuid.NewString(), caller, now, now
	t.RentPayments = []core.RentPayment{}
	if err := l.store.InsertTenant(ctx, t); err != nil {
		return core.Tenant{}, err
	}
	l.changed(ctx, amqp.EntityTenant, amqp.ActionCreated, t.ID, caller)
	return t, nil
}

func (l *Ledger) UpdateTenant(ctx context.Context, caller, id string, t core.Tenant) (core.Tenant, error) {
	existing, err := owned(ctx, caller, id, l.store.GetTenant)
	if err != nil {
		return core.Tenant{}, err
	}
	if err := l.validate(ctx, amqp.EntityTenant, &t); err != nil {
		return core.Tenant{}, err
	}
	t.ID, t.UserID, t.CreatedAt, t.UpdatedAt = id, caller, existing.CreatedAt, l.timestamp()
	t.RentPayments = existing.RentPayments
	if err := l.store.UpdateTenant(ctx, t); err != nil {
		return core.Tenant{}, err
	}
	l.changed(ctx, amqp.EntityTenant, amqp.ActionUpdated, id, caller)
	return t, nil
}

// DeleteTenant removes the tenant and, with it, its rent payments.
func (l *Ledger) DeleteTenant(ctx context.Context, caller, id string) error {
	if _, err := owned(ctx, caller, id, l.store.GetTenant); err != nil {
		return err
	}
	if err := l.store.DeleteTenant(ctx, caller, id); err != nil {
		return err
	}
	l.changed(ctx, amqp.EntityTenant, amqp.ActionDeleted, id, caller)
	return nil
}

func (l *Ledger) ListRentPayments(ctx context.Context, q core.ListQuery) (core.Page[core.RentPayment], error) {
	page, err := listPage(ctx, q, l.store.ListRentPayments, l.store.CountRentPayments)
	if err != nil {
		return page, fmt.Errorf("list rent payments: %w", err)
	}
	return page, nil
}

func (l *Ledger) GetRentPayment(ctx context.Context, caller, id string) (core.RentPayment, error) {
	return owned(ctx, caller, id, l.store.GetRentPayment)
}

func (l *Ledger) CreateRentPayment(ctx context.Context, caller string, p core.RentPayment) (core.RentPayment, error) {
	if caller == "" {
		return core.RentPayment{}, core.ErrUnauthorized
	}
	if err := l.validate(ctx, amqp.EntityRentPayment, &p); err != nil {
		return core.RentPayment{}, err
	}
	tenant, err := l.paymentTenant(ctx, caller, p.TenantID)
	if err != nil {
		return core.RentPayment{}, err
	}
	now := l.timestamp()
	p.ID, p.UserID, p.CreatedAt, p.UpdatedAt = uuid.NewString(), caller, now, now
	if err := l.store.InsertRentPayment(ctx, p); err != nil {
		return core.RentPayment{}, err
	}
	p.Tenant = tenant
	l.changed(ctx, amqp.EntityRentPayment, amqp.ActionCreated, p.ID, caller)
	return p, nil
}

func (l *Ledger) UpdateRentPayment(ctx context.Context, caller, id string, p core.RentPayment) (core.RentPayment, error) {
	existing, err := owned(ctx, caller, id, l.store.GetRentPayment)
	if err != nil {
		return core.RentPayment{}, err
	}
	if err := l.validate(ctx, amqp.EntityRentPayment, &p); err != nil {
		return core.RentPayment{}, err
	}
	tenant, err := l.paymentTenant(ctx, caller, p.TenantID)
	if err != nil {
		return core.RentPayment{}, err
	}
	p.ID, p.UserID, p.CreatedAt, p.UpdatedAt = id, caller, existing.CreatedAt, l.timestamp()
	if err := l.store.UpdateRentPayment(ctx, p); err != nil {
		return core.RentPayment{}, err
	}
	p.Tenant = tenant
	l.changed(ctx, amqp.EntityRentPayment, amqp.ActionUpdated, id, caller)
	return p, nil
}

func (l *Ledger) DeleteRentPayment(ctx context.Context, caller, id string) error {
	if _, err := owned(ctx, caller, id, l.store.GetRentPayment); err != nil {
		return err
	}
	if err := l.store.DeleteRentPayment(ctx, caller, id); err != nil {
		return err
	}
	l.changed(ctx, amqp.EntityRentPayment, amqp.ActionDeleted, id, caller)
	return nil
}

// paymentTenant loads the tenant a payment refers to. A tenant the caller
// does not own is rejected as invalid input.
func (l *Ledger) paymentTenant(ctx context.Context, caller, tenantID string) (*core.Tenant, error) {
	t, err := owned(ctx, caller, tenantID, l.store.GetTenant)
	if errors.Is(err, core.ErrNotFound) {
		return nil, &core.ValidationError{Field: "tenantId", Reason: "unknown tenant"}
	}
	if err != nil {
		return nil, err
	}
	// embedded tenants do not load their payments
	t.RentPayments = nil
	return &t, nil
}
