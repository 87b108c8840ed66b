package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"cajabooks/internal/models"
)

// InsertExpenses writes one batch of expenses in a single transaction.
// Any failure rolls the whole batch back; the batch writer converts that
// into an error count.
func (db *DB) InsertExpenses(ctx context.Context, batch []models.ExpenseRecord) (int, error) {
	return db.insertBatch(ctx, batch, false)
}

// InsertExpensesIgnore is the duplicate-tolerant variant: rows that
// violate the invoice unique index are skipped by the store and reported
// via the inserted count. Conflict detection is entirely SQLite's
// constraint behavior.
func (db *DB) InsertExpensesIgnore(ctx context.Context, batch []models.ExpenseRecord) (int, error) {
	return db.insertBatch(ctx, batch, true)
}

func (db *DB) insertBatch(ctx context.Context, batch []models.ExpenseRecord, ignoreDuplicates bool) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	verb := "INSERT"
	if ignoreDuplicates {
		verb = "INSERT OR IGNORE"
	}

	stmt, err := tx.PrepareContext(ctx, verb+` INTO expenses
		(date, store_id, store_name_raw, provider, expense_type, total, taxes, invoice_number, needs_review)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range batch {
		result, err := stmt.ExecContext(ctx,
			e.Date, storeIDValue(e.StoreID), e.StoreNameRaw, e.Provider,
			e.ExpenseType, e.Total, e.Taxes, e.InvoiceNumber, e.NeedsReview,
		)
		if err != nil {
			return 0, fmt.Errorf("insert expense: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListExpenses returns filtered expenses with their resolved store names
// joined in.
func (db *DB) ListExpenses(filter models.ExpenseFilter) ([]models.ExpenseRecord, error) {
	query := `
		SELECT e.id, e.date, e.store_id, e.store_name_raw, e.provider, e.expense_type,
			   e.total, e.taxes, e.invoice_number, e.needs_review, e.created_at, e.updated_at
		FROM expenses e
		WHERE 1=1
	`
	query, args := applyExpenseFilter(query, filter)
	query += " ORDER BY date(e.date) DESC, e.id DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.ExpenseRecord
	for rows.Next() {
		var e models.ExpenseRecord
		var storeID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Date, &storeID, &e.StoreNameRaw, &e.Provider, &e.ExpenseType,
			&e.Total, &e.Taxes, &e.InvoiceNumber, &e.NeedsReview, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if storeID.Valid {
			id := strconv.FormatInt(storeID.Int64, 10)
			e.StoreID = &id
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListExpenseRows returns the joined rows the stats aggregator consumes.
func (db *DB) ListExpenseRows(filter models.ExpenseFilter) ([]models.ExpenseRow, error) {
	query := `
		SELECT e.date, e.expense_type, s.name, e.total
		FROM expenses e
		LEFT JOIN stores s ON e.store_id = s.id
		WHERE 1=1
	`
	query, args := applyExpenseFilter(query, filter)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expense rows: %w", err)
	}
	defer rows.Close()

	var out []models.ExpenseRow
	for rows.Next() {
		var r models.ExpenseRow
		var storeName sql.NullString
		if err := rows.Scan(&r.Date, &r.ExpenseType, &storeName, &r.Total); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		if storeName.Valid {
			r.StoreName = &storeName.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListExpenseCategories returns the distinct expense types, ordered.
func (db *DB) ListExpenseCategories() ([]string, error) {
	rows, err := db.Query(`
		SELECT DISTINCT expense_type FROM expenses
		WHERE expense_type != ''
		ORDER BY expense_type
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func applyExpenseFilter(query string, filter models.ExpenseFilter) (string, []interface{}) {
	var args []interface{}
	if filter.StartDate != "" {
		query += " AND e.date >= ?"
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += " AND e.date <= ?"
		args = append(args, filter.EndDate)
	}
	if filter.StoreID != "" {
		query += " AND e.store_id = ?"
		args = append(args, filter.StoreID)
	}
	if filter.Category != "" {
		query += " AND e.expense_type = ?"
		args = append(args, filter.Category)
	}
	return query, args
}

func storeIDValue(id *string) interface{} {
	if id == nil {
		return nil
	}
	if n, err := strconv.ParseInt(*id, 10, 64); err == nil {
		return n
	}
	return nil
}
