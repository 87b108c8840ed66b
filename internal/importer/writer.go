package importer

import (
	"context"
	"time"

	"cajabooks/internal/logger"
	"cajabooks/internal/models"
)

// Inserter persists one batch of expenses. Inserted reports how many rows
// the store actually took; an implementation without duplicate detection
// returns len(batch).
type Inserter interface {
	InsertExpenses(ctx context.Context, batch []models.ExpenseRecord) (inserted int, err error)
}

// InserterFunc adapts a plain function to the Inserter interface.
type InserterFunc func(ctx context.Context, batch []models.ExpenseRecord) (int, error)

func (f InserterFunc) InsertExpenses(ctx context.Context, batch []models.ExpenseRecord) (int, error) {
	return f(ctx, batch)
}

// WriteResult aggregates the outcome of a batch run. Duplicates stays 0 on
// the plain-insert path; only an ignore-duplicates inserter can populate
// it, and detection there is entirely the store's unique-constraint
// behavior.
type WriteResult struct {
	Success    int `json:"success"`
	Errors     int `json:"errors"`
	Duplicates int `json:"duplicates"`
}

// Writer persists expenses in fixed-size contiguous batches, pausing
// briefly between batches to keep write pressure on the store bounded.
// Batches run strictly sequentially, one in flight at a time.
type Writer struct {
	Store     Inserter
	BatchSize int           // default 100
	Delay     time.Duration // between batches, default 100ms
}

// Write submits every record. A failed batch is counted whole, with no
// per-record retry or partial-batch success, and never aborts the
// remaining batches; the returned counts are the only error channel.
func (w Writer) Write(ctx context.Context, expenses []models.ExpenseRecord) WriteResult {
	batchSize := w.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}
	delay := w.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	log := logger.FromContext(ctx)
	var result WriteResult

	for i := 0; i < len(expenses); i += batchSize {
		end := min(i+batchSize, len(expenses))
		batch := expenses[i:end]

		inserted, err := w.Store.InsertExpenses(ctx, batch)
		if err != nil {
			log.Error("expense_batch_failed",
				"batch", i/batchSize+1,
				"size", len(batch),
				"error", err.Error(),
			)
			result.Errors += len(batch)
		} else {
			result.Success += len(batch)
			result.Duplicates += len(batch) - inserted
		}

		if end < len(expenses) {
			time.Sleep(delay)
		}
	}

	return result
}
