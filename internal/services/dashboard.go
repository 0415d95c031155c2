package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"hisab/internal/core"
	"hisab/internal/storage"
)

// Stats computes the dashboard figures. The month window is taken in the
// clock's location; nothing is cached.
func (l *Ledger) Stats(ctx context.Context, userID string) (core.DashboardStats, error) {
	if userID == "" {
		return core.DashboardStats{}, core.ErrUnauthorized
	}
	from, to := core.MonthWindow(l.now())
	month := storage.DateRange{From: from, To: to}

	var s core.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	sum := func(dst *core.Money, fn func(context.Context) (core.Money, error)) {
		g.Go(func() error {
			v, err := fn(gctx)
			*dst = v
			return err
		})
	}
	sum(&s.MonthlyIncome, func(ctx context.Context) (core.Money, error) {
		return l.store.SumIncomes(ctx, userID, month)
	})
	sum(&s.MonthlyExpenses, func(ctx context.Context) (core.Money, error) {
		return l.store.SumExpenses(ctx, userID, month)
	})
	sum(&s.TotalIncome, func(ctx context.Context) (core.Money, error) {
		return l.store.SumIncomes(ctx, userID, storage.DateRange{})
	})
	sum(&s.TotalExpenses, func(ctx context.Context) (core.Money, error) {
		return l.store.SumExpenses(ctx, userID, storage.DateRange{})
	})
	sum(&s.BankBalance, func(ctx context.Context) (core.Money, error) {
		return l.store.SumAccountBalances(ctx, userID)
	})
	sum(&s.PendingRent, func(ctx context.Context) (core.Money, error) {
		return l.store.SumPendingRent(ctx, userID)
	})
	if err := g.Wait(); err != nil {
		return core.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}

	s.Derive()
	return s, nil
}

// ChartData returns per-category totals since the start of the period and the
// most recent daily trend. Results are cached per user and period until the
// user writes an expense or income.
func (l *Ledger) ChartData(ctx context.Context, userID string, period core.ChartPeriod) (core.ChartData, error) {
	if userID == "" {
		return core.ChartData{}, core.ErrUnauthorized
	}
	key := chartKey(userID, period)
	if l.charts != nil {
		if data, ok := l.charts.Get(key); ok {
			l.logger.DebugContext(ctx, "Chart cache hit", "key", key)
			return data, nil
		}
	}

	gen := l.chartGen.current(userID)
	from := period.Start(l.now())
	var data core.ChartData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.IncomeByCategory, err = l.store.IncomeByCategory(gctx, userID, from)
		return err
	})
	g.Go(func() error {
		var err error
		data.ExpensesByCategory, err = l.store.ExpensesByCategory(gctx, userID, from)
		return err
	})
	g.Go(func() error {
		var err error
		data.DailyTrend, err = l.store.DailyTrend(gctx, userID, from, core.MaxTrendDays)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.ChartData{}, fmt.Errorf("chart data: %w", err)
	}

	if data.IncomeByCategory == nil {
		data.IncomeByCategory = []core.CategoryAmount{}
	}
	if data.ExpensesByCategory == nil {
		data.ExpensesByCategory = []core.CategoryAmount{}
	}
	if data.DailyTrend == nil {
		data.DailyTrend = []core.DailyTrend{}
	}

	if l.charts != nil {
		cached := l.chartGen.storeIf(userID, gen, func() { l.charts.Set(key, data) })
		if !cached {
			l.logger.DebugContext(ctx, "Chart data changed while loading, not cached", "key", key)
		}
	}
	return data, nil
}

func chartKey(userID string, period core.ChartPeriod) string {
	return userID + ":" + string(period)
}

func (l *Ledger) invalidateCharts(userID string) {
	if l.charts == nil {
		return
	}
	var n int
	l.chartGen.invalidate(userID, func() { n = l.charts.DeletePrefix(userID + ":") })
	if n > 0 {
		l.logger.Debug("Chart cache invalidated", "user_id", userID, "entries", n)
	}
}

// chartGenerations counts chart invalidations per user. A result computed
// before an invalidation must not be cached after it.
type chartGenerations struct {
	mu  sync.Mutex
	gen map[string]uint64
}

func (g *chartGenerations) current(userID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[userID]
}

// storeIf runs set only if the user's generation is still gen.
func (g *chartGenerations) storeIf(userID string, gen uint64, set func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen[userID] != gen {
		return false
	}
	set()
	return true
}

// invalidate advances the user's generation and runs drop under the same lock.
func (g *chartGenerations) invalidate(userID string, drop func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen == nil {
		g.gen = make(map[string]uint64)
	}
	g.gen[userID]++
	drop()
}
