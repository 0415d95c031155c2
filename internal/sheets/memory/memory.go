// Package memory keeps the journal in process, for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"errors"
	"sync"

	"hisab/internal/sheets"
)

var _ sheets.JournalWriter = (*Journal)(nil)

// ErrMissingIdentity rejects rows that could not be traced back to a record.
var ErrMissingIdentity = errors.New("journal row missing entity, action or id")

type Journal struct {
	mu   sync.Mutex
	rows []sheets.JournalRow
}

func New() *Journal {
	return &Journal{}
}

// AppendRow stores the row.
func (j *Journal) AppendRow(_ context.Context, row sheets.JournalRow) error {
	if row.Entity == "" || row.Action == "" || row.ID == "" {
		return ErrMissingIdentity
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rows = append(j.rows, row)
	return nil
}

// Rows returns a copy of the appended rows in order.
func (j *Journal) Rows() []sheets.JournalRow {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sheets.JournalRow(nil), j.rows...)
}

// Values returns the appended rows as they would be written to a sheet,
// header first.
func (j *Journal) Values() [][]any {
	rows := j.Rows()
	out := make([][]any, 0, len(rows)+1)
	out = append(out, sheets.Header)
	for _, r := range rows {
		out = append(out, r.Values())
	}
	return out
}
