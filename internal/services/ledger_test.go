package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hisab/internal/amqp"
	"hisab/internal/cache"
	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, ev amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Entity+"."+ev.Action)
	}
	return out
}

var fixedNow = time.Date(2025, 5, 15, 10, 30, 0, 0, time.UTC)

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *recordingPublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	pub := &recordingPublisher{}
	logger := applog.New(applog.Config{Output: io.Discard})
	opts = append([]Option{
		WithEvents(pub),
		WithLogger(logger),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewLedger(repo, opts...), pub
}

func newExpense(title string, amount int64, cat core.ExpenseCategory, date core.Date) core.Expense {
	return core.Expense{
		Title:    title,
		Amount:   core.NewMoneyFromCents(amount),
		Category: cat,
		Date:     date,
	}
}

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	l, pub := newTestLedger(t)

	created, err := l.CreateExpense(ctx, "alice", newExpense("  Groceries ", 4550, core.ExpenseFood, core.NewDate(2025, 5, 2)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.UserID != "alice" || created.Title != "Groceries" {
		t.Fatalf("unexpected created record %+v", created)
	}
	if !created.CreatedAt.Equal(fixedNow) {
		t.Fatalf("createdAt = %v", created.CreatedAt)
	}

	upd := newExpense("Groceries and more", 6000, core.ExpenseFood, core.NewDate(2025, 5, 3))
	updated, err := l.UpdateExpense(ctx, "alice", created.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents() != 6000 || updated.ID != created.ID {
		t.Fatalf("unexpected update %+v", updated)
	}

	got, err := l.GetExpense(ctx, "alice", created.ID)
	if err != nil || got.Title != "Groceries and more" {
		t.Fatalf("get after update: %+v %v", got, err)
	}

	if err := l.DeleteExpense(ctx, "alice", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := l.GetExpense(ctx, "alice", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if _, err := l.UpdateExpense(ctx, "alice", created.ID, upd); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update after delete: %v", err)
	}
	if err := l.DeleteExpense(ctx, "alice", created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete after delete: %v", err)
	}

	want := []string{"expense.created", "expense.updated", "expense.deleted"}
	got2 := pub.actions()
	if len(got2) != len(want) {
		t.Fatalf("events = %v", got2)
	}
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("events = %v, want %v", got2, want)
		}
	}
}

func TestCrossUserRecordsAreInvisible(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	acct, err := l.CreateAccount(ctx, "alice", core.BankAccount{
		AccountName: "Main", BankName: "City Bank", AccountNumber: "0123456789",
		AccountType: core.AccountSavings, Balance: core.NewMoneyFromCents(100000),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if acct.AccountNumber != "****6789" || acct.Currency != "BDT" {
		t.Fatalf("account not normalized: %+v", acct)
	}

	exp, err := l.CreateExpense(ctx, "alice", newExpense("Bus", 300, core.ExpenseTransport, core.NewDate(2025, 5, 1)))
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	inc, err := l.CreateIncome(ctx, "alice", core.Income{
		Title: "Salary", Amount: core.NewMoneyFromCents(500000), Category: core.IncomeSalary, Date: core.NewDate(2025, 5, 1),
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	ten, err := l.CreateTenant(ctx, "alice", core.Tenant{
		Name: "Rahim", RentAmount: core.NewMoneyFromCents(1500000), RentDueDate: 5, LeaseStartDate: core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	pay, err := l.CreateRentPayment(ctx, "alice", core.RentPayment{
		TenantID: ten.ID, Amount: core.NewMoneyFromCents(1500000), DueDate: core.NewDate(2025, 5, 5),
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if pay.Status != core.RentPending || pay.Tenant == nil || pay.Tenant.Name != "Rahim" {
		t.Fatalf("unexpected payment %+v", pay)
	}

	checks := []struct {
		name string
		get  func() error
		del  func() error
	}{
		{"account", func() error { _, err := l.GetAccount(ctx, "bob", acct.ID); return err },
			func() error { return l.DeleteAccount(ctx, "bob", acct.ID) }},
		{"expense", func() error { _, err := l.GetExpense(ctx, "bob", exp.ID); return err },
			func() error { return l.DeleteExpense(ctx, "bob", exp.ID) }},
		{"income", func() error { _, err := l.GetIncome(ctx, "bob", inc.ID); return err },
			func() error { return l.DeleteIncome(ctx, "bob", inc.ID) }},
		{"tenant", func() error { _, err := l.GetTenant(ctx, "bob", ten.ID); return err },
			func() error { return l.DeleteTenant(ctx, "bob", ten.ID) }},
		{"rent payment", func() error { _, err := l.GetRentPayment(ctx, "bob", pay.ID); return err },
			func() error { return l.DeleteRentPayment(ctx, "bob", pay.ID) }},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if err := c.get(); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("get as other user: %v", err)
			}
			if err := c.del(); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("delete as other user: %v", err)
			}
		})
	}

	if _, err := l.UpdateIncome(ctx, "bob", inc.ID, core.Income{
		Title: "Stolen", Amount: core.NewMoneyFromCents(1), Category: core.IncomeOther, Date: core.NewDate(2025, 5, 1),
	}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update as other user: %v", err)
	}

	if _, err := l.CreateRentPayment(ctx, "bob", core.RentPayment{
		TenantID: ten.ID, Amount: core.NewMoneyFromCents(100), DueDate: core.NewDate(2025, 5, 5),
	}); !core.IsValidation(err) {
		t.Fatalf("payment against another user's tenant: %v", err)
	}

	if _, err := l.GetExpense(ctx, "", exp.ID); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("anonymous get: %v", err)
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	for i := 1; i <= 23; i++ {
		cat := core.ExpenseFood
		if i%2 == 0 {
			cat = core.ExpenseUtilities
		}
		if _, err := l.CreateExpense(ctx, "alice", newExpense("item", int64(i*100), cat, core.NewDate(2025, 4, i))); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	l.CreateExpense(ctx, "bob", newExpense("other", 100, core.ExpenseFood, core.NewDate(2025, 4, 1)))

	page, err := l.ListExpenses(ctx, core.ListQuery{UserID: "alice", Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 23 || page.Pages != 3 || len(page.Items) != 3 || page.Page != 3 {
		t.Fatalf("unexpected page total=%d pages=%d items=%d", page.Total, page.Pages, len(page.Items))
	}
	if page.Items[0].Date.String() != "2025-04-03" {
		t.Fatalf("expected date-desc order, first item on last page is %s", page.Items[0].Date)
	}

	page, err = l.ListExpenses(ctx, core.ListQuery{UserID: "alice", Page: 0, Limit: 500, Category: "utilities"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if page.Total != 11 || page.Limit != core.MaxLimit || page.Page != 1 || page.Pages != 1 {
		t.Fatalf("unexpected filtered page %+v", page)
	}

	empty, err := l.ListIncomes(ctx, core.ListQuery{UserID: "alice"})
	if err != nil {
		t.Fatalf("list incomes: %v", err)
	}
	if empty.Items == nil || empty.Total != 0 || empty.Pages != 0 {
		t.Fatalf("unexpected empty page %+v", empty)
	}

	if _, err := l.ListExpenses(ctx, core.ListQuery{}); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("anonymous list: %v", err)
	}
}

func TestListAccountsTotalBalance(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	for _, cents := range []int64{100000, -2550, 40000} {
		_, err := l.CreateAccount(ctx, "alice", core.BankAccount{
			AccountName: "Acct", BankName: "Bank", AccountType: core.AccountChecking, Balance: core.NewMoneyFromCents(cents),
		})
		if err != nil {
			t.Fatalf("create account: %v", err)
		}
	}

	page, err := l.ListAccounts(ctx, core.ListQuery{UserID: "alice", Limit: 2})
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(page.Items) != 2 || page.Total != 3 || page.Pages != 2 {
		t.Fatalf("unexpected page %+v", page.Page)
	}
	if page.TotalBalance.Cents() != 137450 {
		t.Fatalf("total balance = %s", page.TotalBalance)
	}
}

func TestTenantDeleteCascades(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	ten, err := l.CreateTenant(ctx, "alice", core.Tenant{
		Name: "Karim", RentAmount: core.NewMoneyFromCents(1000000), RentDueDate: 1, LeaseStartDate: core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	for m := 1; m <= 3; m++ {
		if _, err := l.CreateRentPayment(ctx, "alice", core.RentPayment{
			TenantID: ten.ID, Amount: core.NewMoneyFromCents(1000000), DueDate: core.NewDate(2025, m, 1), Status: core.RentPaid,
		}); err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}

	got, err := l.GetTenant(ctx, "alice", ten.ID)
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if len(got.RentPayments) != 3 || got.RentPayments[0].DueDate.String() != "2025-03-01" {
		t.Fatalf("unexpected payments %+v", got.RentPayments)
	}

	if err := l.DeleteTenant(ctx, "alice", ten.ID); err != nil {
		t.Fatalf("delete tenant: %v", err)
	}
	payments, err := l.ListRentPayments(ctx, core.ListQuery{UserID: "alice"})
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if payments.Total != 0 {
		t.Fatalf("payments survived tenant deletion: %d", payments.Total)
	}
}

func TestValidationRejectsInput(t *testing.T) {
	ctx := context.Background()
	l, pub := newTestLedger(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"zero amount", func() error {
			_, err := l.CreateExpense(ctx, "alice", newExpense("x", 0, core.ExpenseFood, core.NewDate(2025, 5, 1)))
			return err
		}},
		{"unknown category", func() error {
			_, err := l.CreateExpense(ctx, "alice", newExpense("x", 100, "gadgets", core.NewDate(2025, 5, 1)))
			return err
		}},
		{"missing date", func() error {
			_, err := l.CreateIncome(ctx, "alice", core.Income{Title: "x", Amount: core.NewMoneyFromCents(1), Category: core.IncomeOther})
			return err
		}},
		{"bad due day", func() error {
			_, err := l.CreateTenant(ctx, "alice", core.Tenant{
				Name: "x", RentAmount: core.NewMoneyFromCents(1), RentDueDate: 32, LeaseStartDate: core.NewDate(2025, 1, 1),
			})
			return err
		}},
		{"bad account type", func() error {
			_, err := l.CreateAccount(ctx, "alice", core.BankAccount{AccountName: "a", BankName: "b", AccountType: "crypto"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !core.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if n := len(pub.actions()); n != 0 {
		t.Fatalf("rejected input published %d events", n)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	l, pub := newTestLedger(t)
	pub.err = errors.New("broker down")

	e, err := l.CreateExpense(ctx, "alice", newExpense("Tea", 50, core.ExpenseFood, core.NewDate(2025, 5, 1)))
	if err != nil {
		t.Fatalf("create with failing publisher: %v", err)
	}
	if _, err := l.GetExpense(ctx, "alice", e.ID); err != nil {
		t.Fatalf("record not stored: %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	mustExpense := func(cents int64, d core.Date) {
		if _, err := l.CreateExpense(ctx, "alice", newExpense("e", cents, core.ExpenseFood, d)); err != nil {
			t.Fatal(err)
		}
	}
	mustIncome := func(cents int64, d core.Date) {
		if _, err := l.CreateIncome(ctx, "alice", core.Income{
			Title: "i", Amount: core.NewMoneyFromCents(cents), Category: core.IncomeSalary, Date: d,
		}); err != nil {
			t.Fatal(err)
		}
	}
	mustIncome(100000, core.NewDate(2025, 5, 1))
	mustIncome(50000, core.NewDate(2025, 4, 30))
	mustExpense(25000, core.NewDate(2025, 5, 31))
	mustExpense(10000, core.NewDate(2025, 6, 1))

	s, err := l.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.MonthlyIncome.Cents() != 100000 || s.MonthlyExpenses.Cents() != 25000 {
		t.Fatalf("monthly sums wrong: %+v", s)
	}
	if s.TotalIncome.Cents() != 150000 || s.TotalExpenses.Cents() != 35000 {
		t.Fatalf("total sums wrong: %+v", s)
	}
	if s.MonthlyBalance.Cents() != 75000 || s.SavingsRate != 75 {
		t.Fatalf("derived values wrong: balance=%s rate=%v", s.MonthlyBalance, s.SavingsRate)
	}

	empty, err := l.Stats(ctx, "nobody")
	if err != nil {
		t.Fatalf("stats for empty user: %v", err)
	}
	if empty.SavingsRate != 0 || !empty.TotalIncome.IsZero() {
		t.Fatalf("unexpected empty stats %+v", empty)
	}
}

func TestStatsMonthFollowsClockLocation(t *testing.T) {
	ctx := context.Background()
	dhaka := time.FixedZone("UTC+6", 6*60*60)
	// 2025-05-31 20:00 UTC is already June in UTC+6.
	now := time.Date(2025, time.June, 1, 2, 0, 0, 0, dhaka)
	l, _ := newTestLedger(t, WithClock(func() time.Time { return now }))

	for _, e := range []core.Expense{
		newExpense("june", 4000, core.ExpenseFood, core.NewDate(2025, 6, 1)),
		newExpense("may", 900, core.ExpenseFood, core.NewDate(2025, 5, 31)),
	} {
		if _, err := l.CreateExpense(ctx, "alice", e); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}

	s, err := l.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.MonthlyExpenses.Cents() != 4000 || s.TotalExpenses.Cents() != 4900 {
		t.Fatalf("monthly = %s total = %s", s.MonthlyExpenses, s.TotalExpenses)
	}
}

func TestChartDataCachingAndInvalidation(t *testing.T) {
	ctx := context.Background()
	charts := cache.NewLRUCache[core.ChartData](10, time.Hour)
	l, _ := newTestLedger(t, WithChartCache(charts))

	for _, e := range []core.Expense{
		newExpense("a", 1000, core.ExpenseFood, core.NewDate(2025, 5, 2)),
		newExpense("b", 2500, core.ExpenseFood, core.NewDate(2025, 5, 3)),
		newExpense("c", 700, core.ExpenseTransport, core.NewDate(2025, 4, 20)),
	} {
		if _, err := l.CreateExpense(ctx, "alice", e); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}

	month, err := l.ChartData(ctx, "alice", core.PeriodMonth)
	if err != nil {
		t.Fatalf("chart data: %v", err)
	}
	if len(month.ExpensesByCategory) != 1 || month.ExpensesByCategory[0].Amount.Cents() != 3500 {
		t.Fatalf("month categories = %+v", month.ExpensesByCategory)
	}
	if month.IncomeByCategory == nil || len(month.DailyTrend) != 2 {
		t.Fatalf("unexpected chart data %+v", month)
	}

	quarter, err := l.ChartData(ctx, "alice", core.PeriodQuarter)
	if err != nil {
		t.Fatalf("quarter chart data: %v", err)
	}
	var total int64
	for _, c := range quarter.ExpensesByCategory {
		total += c.Amount.Cents()
	}
	if total != 4200 {
		t.Fatalf("quarter category total = %d", total)
	}
	if charts.Size() != 2 {
		t.Fatalf("cache size = %d", charts.Size())
	}

	if _, err := l.CreateIncome(ctx, "alice", core.Income{
		Title: "x", Amount: core.NewMoneyFromCents(1), Category: core.IncomeOther, Date: core.NewDate(2025, 5, 4),
	}); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if charts.Size() != 0 {
		t.Fatalf("income write did not invalidate chart cache, size = %d", charts.Size())
	}

	month, err = l.ChartData(ctx, "alice", core.PeriodMonth)
	if err != nil {
		t.Fatalf("chart data after invalidation: %v", err)
	}
	if len(month.IncomeByCategory) != 1 {
		t.Fatalf("stale chart data after invalidation: %+v", month.IncomeByCategory)
	}
}

// writeDuringTrend runs write once, in the middle of a chart computation.
type writeDuringTrend struct {
	Store
	once  sync.Once
	write func()
}

func (s *writeDuringTrend) DailyTrend(ctx context.Context, userID string, from core.Date, limit int) ([]core.DailyTrend, error) {
	s.once.Do(s.write)
	return s.Store.DailyTrend(ctx, userID, from, limit)
}

func TestChartDataNotCachedAcrossConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "charts.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	charts := cache.NewLRUCache[core.ChartData](10, time.Hour)
	store := &writeDuringTrend{Store: repo}
	l := NewLedger(store,
		WithLogger(applog.New(applog.Config{Output: io.Discard})),
		WithClock(func() time.Time { return fixedNow }),
		WithChartCache(charts))

	if _, err := l.CreateExpense(ctx, "alice", newExpense("early", 1000, core.ExpenseFood, core.NewDate(2025, 5, 2))); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	store.write = func() {
		if _, err := l.CreateExpense(ctx, "alice", newExpense("late", 500, core.ExpenseFood, core.NewDate(2025, 5, 10))); err != nil {
			t.Errorf("create expense during chart load: %v", err)
		}
	}

	if _, err := l.ChartData(ctx, "alice", core.PeriodMonth); err != nil {
		t.Fatalf("chart data: %v", err)
	}
	if charts.Size() != 0 {
		t.Fatalf("chart data loaded across a write was cached, size = %d", charts.Size())
	}

	fresh, err := l.ChartData(ctx, "alice", core.PeriodMonth)
	if err != nil {
		t.Fatalf("chart data: %v", err)
	}
	if len(fresh.ExpensesByCategory) != 1 || fresh.ExpensesByCategory[0].Amount.Cents() != 1500 {
		t.Fatalf("expenses by category = %+v", fresh.ExpensesByCategory)
	}
	if charts.Size() != 1 {
		t.Fatalf("fresh chart data not cached, size = %d", charts.Size())
	}
}

func TestProfileAndSettings(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if _, err := l.Profile(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing profile: %v", err)
	}
	if _, err := l.CreateUser(ctx, "not-an-email", "X"); !core.IsValidation(err) {
		t.Fatalf("invalid email accepted: %v", err)
	}

	u, err := l.CreateUser(ctx, "Amina@Example.com", "Amina")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "amina@example.com" || u.Currency != "BDT" || u.Settings == nil || !u.Settings.EmailNotifications {
		t.Fatalf("unexpected user %+v", u)
	}

	updated, err := l.UpdateProfile(ctx, u.ID, core.ProfileUpdate{Name: "Amina K", Currency: "usd"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Amina K" || updated.Currency != "USD" || updated.Timezone != DefaultTimezone {
		t.Fatalf("unexpected profile %+v", updated)
	}

	dark := true
	s, err := l.UpdateSettings(ctx, u.ID, core.SettingsUpdate{DarkMode: &dark})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if !s.DarkMode || !s.EmailNotifications {
		t.Fatalf("unexpected settings %+v", s)
	}

	none, err := l.Settings(ctx, "fresh")
	if err != nil || none != nil {
		t.Fatalf("settings for unknown user = %+v, %v", none, err)
	}
	off := false
	s, err = l.UpdateSettings(ctx, "fresh", core.SettingsUpdate{EmailNotifications: &off})
	if err != nil {
		t.Fatalf("upsert settings: %v", err)
	}
	if s.EmailNotifications || s.UserID != "fresh" {
		t.Fatalf("unexpected upserted settings %+v", s)
	}
}
