package core

import "time"

// ChartPeriod selects the window of the dashboard chart data.
type ChartPeriod string

const (
	PeriodMonth   ChartPeriod = "month"
	PeriodQuarter ChartPeriod = "quarter"
	PeriodYear    ChartPeriod = "year"
)

// ParseChartPeriod maps unknown or empty values to PeriodMonth.
func ParseChartPeriod(s string) ChartPeriod {
	switch p := ChartPeriod(s); p {
	case PeriodQuarter, PeriodYear:
		return p
	default:
		return PeriodMonth
	}
}

// MonthWindow returns [first day of now's month, first day of the next month).
func MonthWindow(now time.Time) (Date, Date) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateOf(start), DateOf(start.AddDate(0, 1, 0))
}

// Start returns the first day of the calendar month, quarter or year containing now.
func (p ChartPeriod) Start(now time.Time) Date {
	switch p {
	case PeriodQuarter:
		first := time.Month((int(now.Month())-1)/3*3 + 1)
		return DateOf(time.Date(now.Year(), first, 1, 0, 0, 0, 0, now.Location()))
	case PeriodYear:
		return DateOf(time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()))
	default:
		start, _ := MonthWindow(now)
		return start
	}
}
