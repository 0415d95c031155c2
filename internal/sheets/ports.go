package sheets

import (
	"context"
	"time"

	"hisab/internal/core"
)

// Header is the first row of a journal sheet.
var Header = []any{"timestamp", "action", "entity", "id", "userId", "date", "title", "category", "amount"}

// JournalRow is one change recorded in the journal. Deleted records carry
// only the identifying columns.
type JournalRow struct {
	Timestamp time.Time
	Action    string
	Entity    string
	ID        string
	UserID    string

	Date     core.Date
	Title    string
	Category string
	Amount   *core.Money
}

// Values renders the row in Header order.
func (r JournalRow) Values() []any {
	amount := ""
	if r.Amount != nil {
		amount = r.Amount.String()
	}
	return []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Action,
		r.Entity,
		r.ID,
		r.UserID,
		r.Date.String(),
		r.Title,
		r.Category,
		amount,
	}
}

// Ports for outbound adapters.
type (
	// JournalWriter appends rows to the journal.
	JournalWriter interface {
		AppendRow(ctx context.Context, row JournalRow) error
	}
)
