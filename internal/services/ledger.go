// Package services implements the ledger: per-record CRUD scoped to the
// calling user, dashboard aggregates and user profiles.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"hisab/internal/amqp"
	"hisab/internal/cache"
	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/storage"
)

// Store is the persistence the ledger needs. *storage.Repository implements it.
type Store interface {
	AccountStore
	ExpenseStore
	IncomeStore
	TenantStore
	RentPaymentStore
	AggregateStore
	UserStore
}

type AccountStore interface {
	ListAccounts(ctx context.Context, q core.ListQuery) ([]core.BankAccount, error)
	CountAccounts(ctx context.Context, userID string) (int, error)
	GetAccount(ctx context.Context, id string) (core.BankAccount, error)
	InsertAccount(ctx context.Context, a core.BankAccount) error
	UpdateAccount(ctx context.Context, a core.BankAccount) error
	DeleteAccount(ctx context.Context, userID, id string) error
}

type ExpenseStore interface {
	ListExpenses(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
	CountExpenses(ctx context.Context, q core.ListQuery) (int, error)
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	InsertExpense(ctx context.Context, e core.Expense) error
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error
}

type IncomeStore interface {
	ListIncomes(ctx context.Context, q core.ListQuery) ([]core.Income, error)
	CountIncomes(ctx context.Context, q core.ListQuery) (int, error)
	GetIncome(ctx context.Context, id string) (core.Income, error)
	InsertIncome(ctx context.Context, i core.Income) error
	UpdateIncome(ctx context.Context, i core.Income) error
	DeleteIncome(ctx context.Context, userID, id string) error
}

type TenantStore interface {
	ListTenants(ctx context.Context, q core.ListQuery) ([]core.Tenant, error)
	CountTenants(ctx context.Context, userID string) (int, error)
	GetTenant(ctx context.Context, id string) (core.Tenant, error)
	InsertTenant(ctx context.Context, t core.Tenant) error
	UpdateTenant(ctx context.Context, t core.Tenant) error
	DeleteTenant(ctx context.Context, userID, id string) error
}

type RentPaymentStore interface {
	ListRentPayments(ctx context.Context, q core.ListQuery) ([]core.RentPayment, error)
	CountRentPayments(ctx context.Context, q core.ListQuery) (int, error)
	GetRentPayment(ctx context.Context, id string) (core.RentPayment, error)
	InsertRentPayment(ctx context.Context, p core.RentPayment) error
	UpdateRentPayment(ctx context.Context, p core.RentPayment) error
	DeleteRentPayment(ctx context.Context, userID, id string) error
}

type AggregateStore interface {
	SumExpenses(ctx context.Context, userID string, dr storage.DateRange) (core.Money, error)
	SumIncomes(ctx context.Context, userID string, dr storage.DateRange) (core.Money, error)
	SumAccountBalances(ctx context.Context, userID string) (core.Money, error)
	SumPendingRent(ctx context.Context, userID string) (core.Money, error)
	ExpensesByCategory(ctx context.Context, userID string, from core.Date) ([]core.CategoryAmount, error)
	IncomeByCategory(ctx context.Context, userID string, from core.Date) ([]core.CategoryAmount, error)
	DailyTrend(ctx context.Context, userID string, from core.Date, limit int) ([]core.DailyTrend, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u core.User, s core.UserSettings) error
	GetUser(ctx context.Context, id string) (core.User, error)
	UpdateUser(ctx context.Context, u core.User) error
	GetSettings(ctx context.Context, userID string) (core.UserSettings, error)
	SaveSettings(ctx context.Context, s core.UserSettings) error
}

// EventPublisher announces committed changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev amqp.LedgerEvent) error
}

// Ledger orchestrates record operations across storage, the chart cache and
// the optional event publisher.
type Ledger struct {
	store      Store
	events     EventPublisher
	charts     *cache.LRUCache[core.ChartData]
	chartGen   chartGenerations
	logger     *applog.Logger
	structured *applog.StructuredLogger
	now        func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEvents publishes a LedgerEvent after every committed change.
func WithEvents(p EventPublisher) Option {
	return func(l *Ledger) { l.events = p }
}

// WithChartCache caches chart data per user and period.
func WithChartCache(c *cache.LRUCache[core.ChartData]) Option {
	return func(l *Ledger) { l.charts = c }
}

// WithLogger sets the ledger logger.
func WithLogger(logger *applog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = applog.New(applog.DefaultConfig())
	}
	l.logger = l.logger.WithComponent(applog.ComponentLedger)
	l.structured = applog.NewStructuredLogger(l.logger)
	return l
}

// timestamp is the current instant in UTC, stripped of its monotonic reading.
func (l *Ledger) timestamp() time.Time {
	return l.now().UTC().Round(0)
}

// changed logs a committed change and publishes it. Publishing never fails the
// operation: the record is already stored.
func (l *Ledger) changed(ctx context.Context, entity, action, id, userID string) {
	l.structured.LogRecordChanged(ctx, action, entity, id, userID)

	if entity == amqp.EntityExpense || entity == amqp.EntityIncome {
		l.invalidateCharts(userID)
	}

	if l.events == nil {
		return
	}
	if err := l.events.PublishEvent(ctx, amqp.NewLedgerEvent(entity, action, id, userID)); err != nil {
		l.structured.LogError(ctx, "Failed to publish ledger event", err, applog.ComponentAMQP, action,
			applog.NewFields().WithRecord(entity, id).WithUserID(userID))
	}
}

// owned loads a record and checks that caller owns it.
func owned[T core.Owned](ctx context.Context, caller, id string, get func(context.Context, string) (T, error)) (T, error) {
	var zero T
	if caller == "" {
		return zero, core.ErrUnauthorized
	}
	rec, err := get(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := core.Authorize(rec, caller); err != nil {
		return zero, err
	}
	return rec, nil
}

// listPage runs the page query and the count concurrently.
func listPage[T any](ctx context.Context, q core.ListQuery,
	list func(context.Context, core.ListQuery) ([]T, error),
	count func(context.Context, core.ListQuery) (int, error),
) (core.Page[T], error) {
	if q.UserID == "" {
		return core.Page[T]{}, core.ErrUnauthorized
	}
	q.Normalize()

	var (
		items []T
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = list(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Page[T]{}, err
	}
	return core.NewPage(items, total, q), nil
}

func byUser(count func(context.Context, string) (int, error)) func(context.Context, core.ListQuery) (int, error) {
	return func(ctx context.Context, q core.ListQuery) (int, error) {
		return count(ctx, q.UserID)
	}
}

// validate normalizes a record and logs rejected input.
func (l *Ledger) validate(ctx context.Context, entity string, rec interface {
	Normalize()
	Validate() error
}) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		l.logger.WarnContext(ctx, "Rejected invalid record",
			applog.FieldEntity, entity,
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeValidation)
		return fmt.Errorf("validate %s: %w", entity, err)
	}
	return nil
}
