package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cajabooks/internal/database"
	"cajabooks/internal/importer"
	"cajabooks/internal/models"
)

// ImportExpensesPayload is the JSON payload for import_expenses jobs.
type ImportExpensesPayload struct {
	FileName  string `json:"file_name"`
	Mode      string `json:"mode"` // "insert" (default) or "upsert"
	BatchSize int    `json:"batch_size,omitempty"`
	DelayMs   int    `json:"delay_ms,omitempty"`
}

// ImportExpensesHandler returns the job handler that parses an uploaded
// expense CSV and batch-writes it to the store. batchSize and delayMs are
// the configured writer defaults; a job payload may override them. The job
// result records parsed/flagged row counts plus the writer's
// success/error/duplicate totals.
func ImportExpensesHandler(openFile func(name string) (io.ReadCloser, error), batchSize, delayMs int) JobHandler {
	return func(ctx context.Context, job *models.Job, db *database.DB) error {
		var payload ImportExpensesPayload
		if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}

		f, err := openFile(payload.FileName)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		rows, err := importer.ReadRows(f)
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		db.UpdateJobProgress(job.ID, 20)

		stores, err := db.ListStoreRefs()
		if err != nil {
			return fmt.Errorf("list stores: %w", err)
		}

		processed, flagged := importer.ParseRows(rows, stores)
		expenses := make([]models.ExpenseRecord, 0, len(processed))
		for _, p := range processed {
			expenses = append(expenses, p.Expense)
		}
		db.UpdateJobProgress(job.ID, 40)

		if payload.BatchSize <= 0 {
			payload.BatchSize = batchSize
		}
		if payload.DelayMs <= 0 {
			payload.DelayMs = delayMs
		}
		writer := importer.Writer{
			Store:     insertStore(db, payload.Mode),
			BatchSize: payload.BatchSize,
			Delay:     time.Duration(payload.DelayMs) * time.Millisecond,
		}
		result := writer.Write(ctx, expenses)
		db.UpdateJobProgress(job.ID, 95)

		resultJSON, _ := json.Marshal(map[string]any{
			"parsed":     len(rows),
			"flagged":    flagged,
			"success":    result.Success,
			"errors":     result.Errors,
			"duplicates": result.Duplicates,
		})
		db.CompleteJob(job.ID, string(resultJSON))
		return nil
	}
}

// insertStore picks the writer backend: plain inserts, or the
// ignore-duplicates variant that lets the unique index skip repeats.
func insertStore(db *database.DB, mode string) importer.Inserter {
	if mode == "upsert" {
		return importer.InserterFunc(db.InsertExpensesIgnore)
	}
	return importer.InserterFunc(db.InsertExpenses)
}
