package core

// DashboardStats summarises a user's finances for the dashboard.
type DashboardStats struct {
	MonthlyIncome   Money   `json:"monthlyIncome"`
	MonthlyExpenses Money   `json:"monthlyExpenses"`
	TotalIncome     Money   `json:"totalIncome"`
	TotalExpenses   Money   `json:"totalExpenses"`
	BankBalance     Money   `json:"bankBalance"`
	PendingRent     Money   `json:"pendingRent"`
	MonthlyBalance  Money   `json:"monthlyBalance"`
	SavingsRate     float64 `json:"savingsRate"`
}

// Derive fills MonthlyBalance and SavingsRate from the raw sums.
func (s *DashboardStats) Derive() {
	s.MonthlyBalance = s.MonthlyIncome.Sub(s.MonthlyExpenses)
	s.SavingsRate = 0
	if s.MonthlyIncome.IsPositive() {
		s.SavingsRate = s.MonthlyBalance.Float64() / s.MonthlyIncome.Float64() * 100
	}
}

type CategoryAmount struct {
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
}

type DailyTrend struct {
	Date    Date  `json:"date"`
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
}

type ChartData struct {
	IncomeByCategory   []CategoryAmount `json:"incomeByCategory"`
	ExpensesByCategory []CategoryAmount `json:"expensesByCategory"`
	DailyTrend         []DailyTrend     `json:"dailyTrend"`
}

// MaxTrendDays bounds the daily trend series.
const MaxTrendDays = 30
