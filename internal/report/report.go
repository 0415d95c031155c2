// Package report lays out and renders PDF reports from a pre-aggregated
// snapshot of a user's finances. It performs no aggregation itself.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"hisab/internal/core"
)

// Type selects the sections of a report.
type Type string

const (
	TypeExpenses Type = "expenses"
	TypeIncome   Type = "income"
	TypeFull     Type = "full"
)

// ErrInvalidType is returned for report types other than expenses, income and full.
var ErrInvalidType = errors.New("invalid report type")

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeExpenses, TypeIncome, TypeFull:
		return t, nil
	}
	return "", ErrInvalidType
}

// Snapshot is the figure set a report is built from.
type Snapshot struct {
	MonthlyIncome     core.Money      `json:"monthlyIncome"`
	MonthlyExpenses   core.Money      `json:"monthlyExpenses"`
	TotalIncome       core.Money      `json:"totalIncome"`
	TotalExpenses     core.Money      `json:"totalExpenses"`
	BankBalance       core.Money      `json:"bankBalance"`
	PendingRent       core.Money      `json:"pendingRent"`
	MonthlyBalance    core.Money      `json:"monthlyBalance"`
	SavingsRate       *float64        `json:"savingsRate,omitempty"`
	ExpenseCategories []CategoryShare `json:"expenseCategories,omitempty"`
	IncomeSources     []SourceShare   `json:"incomeSources,omitempty"`
}

type CategoryShare struct {
	Category   string     `json:"category"`
	Amount     core.Money `json:"amount"`
	Percentage float64    `json:"percentage"`
}

type SourceShare struct {
	Source     string     `json:"source"`
	Amount     core.Money `json:"amount"`
	Percentage float64    `json:"percentage"`
}

// Options control labels that do not come from the snapshot.
type Options struct {
	Brand    string
	Currency string
	Now      time.Time
}

// Layout is a renderer-independent description of a report.
type Layout struct {
	Title       string
	Timeframe   string
	GeneratedOn string
	Sections    []Section
}

// Section is a heading followed by a table.
type Section struct {
	Heading string
	Columns []string
	Rows    [][]string
}

// Build lays out a report of type t. The full report is the header block only.
func Build(t Type, timeframe string, snap Snapshot, opts Options) (Layout, error) {
	if _, err := ParseType(string(t)); err != nil {
		return Layout{}, err
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	f := newFormatter(opts.Currency)

	l := Layout{
		Timeframe:   "Timeframe: " + capitalize(timeframe),
		GeneratedOn: "Generated on: " + opts.Now.Format("January 2, 2006"),
	}

	switch t {
	case TypeExpenses:
		l.Title = titled("Expenses Report", opts.Brand)
		l.Sections = append(l.Sections, Section{
			Heading: "Financial Summary",
			Columns: []string{"Metric", "Amount"},
			Rows: [][]string{
				{"Total Expenses", f.money(snap.TotalExpenses)},
				{"Monthly Expenses", f.money(snap.MonthlyExpenses)},
				{"Savings Rate", f.rate(snap.SavingsRate)},
			},
		})
		if len(snap.ExpenseCategories) > 0 {
			shares := make([]share, len(snap.ExpenseCategories))
			for i, c := range snap.ExpenseCategories {
				shares[i] = share{c.Category, c.Amount, c.Percentage}
			}
			l.Sections = append(l.Sections, breakdown("Expense by Category", "Category", shares, f))
		}
	case TypeIncome:
		l.Title = titled("Income Report", opts.Brand)
		l.Sections = append(l.Sections, Section{
			Heading: "Income Summary",
			Columns: []string{"Metric", "Amount"},
			Rows: [][]string{
				{"Total Income", f.money(snap.TotalIncome)},
				{"Monthly Income", f.money(snap.MonthlyIncome)},
				{"Bank Balance", f.money(snap.BankBalance)},
			},
		})
		if len(snap.IncomeSources) > 0 {
			shares := make([]share, len(snap.IncomeSources))
			for i, s := range snap.IncomeSources {
				shares[i] = share{s.Source, s.Amount, s.Percentage}
			}
			l.Sections = append(l.Sections, breakdown("Income by Source", "Source", shares, f))
		}
	case TypeFull:
		l.Title = titled("Complete Financial Report", opts.Brand)
	}
	return l, nil
}

// Filename is the attachment name of a report generated at now.
func Filename(t Type, now time.Time) string {
	return fmt.Sprintf("report-%s-%s.pdf", t, now.UTC().Format(core.DateLayout))
}

type share struct {
	name       string
	amount     core.Money
	percentage float64
}

// breakdown derives missing percentages from the breakdown total.
func breakdown(heading, column string, shares []share, f formatter) Section {
	total := core.Money{}
	for _, s := range shares {
		total = total.Add(s.amount)
	}
	sec := Section{Heading: heading, Columns: []string{column, "Amount", "Percentage"}}
	for _, s := range shares {
		pct := s.percentage
		if pct == 0 && total.IsPositive() {
			pct = s.amount.Float64() / total.Float64() * 100
		}
		sec.Rows = append(sec.Rows, []string{s.name, f.money(s.amount), f.percent(pct)})
	}
	return sec
}

func titled(title, brand string) string {
	if brand == "" {
		return title
	}
	return title + " - " + brand
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// formatter renders amounts as "<code> 1,234.50". Core PDF fonts have no
// glyphs for most currency symbols, so the ISO code is used.
type formatter struct {
	printer  *message.Printer
	currency string
}

func newFormatter(currency string) formatter {
	return formatter{printer: message.NewPrinter(language.English), currency: currency}
}

func (f formatter) money(m core.Money) string {
	s := f.printer.Sprintf("%.2f", m.Float64())
	if f.currency == "" {
		return s
	}
	return f.currency + " " + s
}

func (f formatter) percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func (f formatter) rate(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return f.percent(*p)
}
