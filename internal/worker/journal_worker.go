// Package worker mirrors ledger events into the spreadsheet journal.
package worker

import (
	"context"
	"errors"
	"fmt"

	"hisab/internal/amqp"
	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/sheets"
)

// RecordReader loads the records a journal row is built from.
type RecordReader interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	GetIncome(ctx context.Context, id string) (core.Income, error)
}

// JournalWorker appends one journal row per expense or income event.
type JournalWorker struct {
	records RecordReader
	journal sheets.JournalWriter
	logger  *applog.Logger
}

func NewJournalWorker(records RecordReader, journal sheets.JournalWriter, logger *applog.Logger) *JournalWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &JournalWorker{
		records: records,
		journal: journal,
		logger:  logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes a single ledger event. A returned error asks the
// consumer to requeue the message.
func (w *JournalWorker) HandleEvent(ctx context.Context, ev amqp.LedgerEvent) error {
	if ev.Entity != amqp.EntityExpense && ev.Entity != amqp.EntityIncome {
		w.logger.DebugContext(ctx, "Skipping event for unjournaled entity",
			applog.FieldEntity, ev.Entity,
			applog.FieldRecordID, ev.ID)
		return nil
	}

	row := sheets.JournalRow{
		Timestamp: ev.Timestamp,
		Action:    ev.Action,
		Entity:    ev.Entity,
		ID:        ev.ID,
		UserID:    ev.UserID,
	}

	switch ev.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		err := w.fill(ctx, &row)
		if errors.Is(err, core.ErrNotFound) {
			// deleted before we got here; its own event will be journaled
			w.logger.WarnContext(ctx, "Record vanished before it could be journaled",
				applog.FieldEntity, ev.Entity,
				applog.FieldRecordID, ev.ID,
				"action", ev.Action)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load %s %s: %w", ev.Entity, ev.ID, err)
		}
	case amqp.ActionDeleted:
	default:
		w.logger.WarnContext(ctx, "Skipping event with unknown action",
			applog.FieldEntity, ev.Entity,
			applog.FieldRecordID, ev.ID,
			"action", ev.Action)
		return nil
	}

	if err := w.journal.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append journal row: %w", err)
	}

	w.logger.InfoContext(ctx, "Journaled ledger event",
		applog.FieldEntity, ev.Entity,
		applog.FieldRecordID, ev.ID,
		applog.FieldUserID, ev.UserID,
		"action", ev.Action)
	return nil
}

func (w *JournalWorker) fill(ctx context.Context, row *sheets.JournalRow) error {
	switch row.Entity {
	case amqp.EntityExpense:
		e, err := w.records.GetExpense(ctx, row.ID)
		if err != nil {
			return err
		}
		row.Date, row.Title, row.Category, row.Amount = e.Date, e.Title, string(e.Category), &e.Amount
	case amqp.EntityIncome:
		i, err := w.records.GetIncome(ctx, row.ID)
		if err != nil {
			return err
		}
		row.Date, row.Title, row.Category, row.Amount = i.Date, i.Title, string(i.Category), &i.Amount
	}
	return nil
}
