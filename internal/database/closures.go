package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"cajabooks/internal/models"
)

// ClosureInput is a closure as submitted by the register form: cashier and
// store arrive as display names and are resolved to ids on write.
type ClosureInput struct {
	Date      string                `json:"date"`
	Note      string                `json:"note"`
	Cashier   string                `json:"cashier"`
	Store     string                `json:"store"`
	Channels  []models.ChannelTotal `json:"channels"`
	Efectivo  models.Efectivo       `json:"efectivo"`
	Envelopes []EnvelopeInput       `json:"envelopes"`
}

type EnvelopeInput struct {
	Number string  `json:"number"`
	Amount float64 `json:"amount"`
}

// CreateClosure resolves the cashier and store names and writes the
// closure, its channel breakdown and its envelopes in one transaction.
// A failed lookup aborts the whole operation with nothing persisted.
func (db *DB) CreateClosure(ctx context.Context, in ClosureInput) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	cashierID, err := lookupID(ctx, tx, "cashiers", "cashier", in.Cashier)
	if err != nil {
		return 0, err
	}
	storeID, err := lookupID(ctx, tx, "stores", "store", in.Store)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO cash_closures
			(date, note, cashier_id, store_id, ef_base, ef_ventas, ef_gastos,
			 ef_ingresos, ef_egresos, ef_pos, ef_real, ef_diferencia, ef_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.Date, in.Note, cashierID, storeID,
		in.Efectivo.Base, in.Efectivo.Ventas, in.Efectivo.Gastos,
		in.Efectivo.Ingresos, in.Efectivo.Egresos, in.Efectivo.POS,
		in.Efectivo.Real, in.Efectivo.Diferencia, in.Efectivo.Porcentaje)
	if err != nil {
		return 0, fmt.Errorf("insert closure: %w", err)
	}
	closureID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("closure id: %w", err)
	}

	if err := insertChannels(ctx, tx, closureID, in.Channels); err != nil {
		return 0, err
	}
	if err := insertEnvelopes(ctx, tx, closureID, in.Envelopes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return closureID, nil
}

// UpdateClosure rewrites a closure in place. Channels and envelopes are
// replaced wholesale, all in the same transaction as the name lookups.
func (db *DB) UpdateClosure(ctx context.Context, closureID int64, in ClosureInput) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	cashierID, err := lookupID(ctx, tx, "cashiers", "cashier", in.Cashier)
	if err != nil {
		return err
	}
	storeID, err := lookupID(ctx, tx, "stores", "store", in.Store)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE cash_closures
		SET date = ?, note = ?, cashier_id = ?, store_id = ?,
			ef_base = ?, ef_ventas = ?, ef_gastos = ?, ef_ingresos = ?,
			ef_egresos = ?, ef_pos = ?, ef_real = ?, ef_diferencia = ?, ef_percent = ?
		WHERE id = ?
	`, in.Date, in.Note, cashierID, storeID,
		in.Efectivo.Base, in.Efectivo.Ventas, in.Efectivo.Gastos,
		in.Efectivo.Ingresos, in.Efectivo.Egresos, in.Efectivo.POS,
		in.Efectivo.Real, in.Efectivo.Diferencia, in.Efectivo.Porcentaje, closureID)
	if err != nil {
		return fmt.Errorf("update closure: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("closure not found")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cash_closure_channels WHERE closure_id = ?`, closureID); err != nil {
		return fmt.Errorf("delete channels: %w", err)
	}
	if err := insertChannels(ctx, tx, closureID, in.Channels); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cash_envelopes WHERE closure_id = ?`, closureID); err != nil {
		return fmt.Errorf("delete envelopes: %w", err)
	}
	if err := insertEnvelopes(ctx, tx, closureID, in.Envelopes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListClosures returns the most recent closures with joined cashier/store
// names and their channel breakdowns. limit <= 0 means no limit.
func (db *DB) ListClosures(limit int) ([]models.Closure, error) {
	query := `
		SELECT cl.id, cl.date, cl.note, c.name, s.name,
			   cl.ef_base, cl.ef_ventas, cl.ef_gastos, cl.ef_ingresos,
			   cl.ef_egresos, cl.ef_pos, cl.ef_real, cl.ef_diferencia, cl.ef_percent,
			   cl.created_at
		FROM cash_closures cl
		JOIN cashiers c ON cl.cashier_id = c.id
		JOIN stores s ON cl.store_id = s.id
		ORDER BY cl.date DESC, cl.id DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query closures: %w", err)
	}
	defer rows.Close()

	var closures []models.Closure
	var ids []int64
	for rows.Next() {
		var cl models.Closure
		var id int64
		var createdAt time.Time
		if err := rows.Scan(&id, &cl.Date, &cl.Note, &cl.Cashier, &cl.Store,
			&cl.Efectivo.Base, &cl.Efectivo.Ventas, &cl.Efectivo.Gastos, &cl.Efectivo.Ingresos,
			&cl.Efectivo.Egresos, &cl.Efectivo.POS, &cl.Efectivo.Real, &cl.Efectivo.Diferencia,
			&cl.Efectivo.Porcentaje, &createdAt); err != nil {
			return nil, fmt.Errorf("scan closure: %w", err)
		}
		cl.ID = strconv.FormatInt(id, 10)
		cl.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		closures = append(closures, cl)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	channels, err := db.channelsByClosure(ids)
	if err != nil {
		return nil, err
	}
	for i := range closures {
		closures[i].Channels = channels[ids[i]]
	}
	return closures, nil
}

// ListEnvelopes returns envelopes joined with their closure's cashier,
// store and date, most recent first.
func (db *DB) ListEnvelopes(limit int) ([]models.Envelope, error) {
	query := `
		SELECT e.id, cl.date, c.name, s.name, e.envelope_number, e.amount, e.status,
			   cl.id, e.created_at
		FROM cash_envelopes e
		JOIN cash_closures cl ON e.closure_id = cl.id
		JOIN cashiers c ON cl.cashier_id = c.id
		JOIN stores s ON cl.store_id = s.id
		ORDER BY cl.date DESC, e.id DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []models.Envelope
	for rows.Next() {
		var env models.Envelope
		var id, closureID int64
		var number, status string
		var amount float64
		var createdAt time.Time
		if err := rows.Scan(&id, &env.Date, &env.Cashier, &env.Store,
			&number, &amount, &status, &closureID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		env.ID = strconv.FormatInt(id, 10)
		env.ClosureID = strconv.FormatInt(closureID, 10)
		env.SinSobre = status == "sin sobre"
		if !env.SinSobre {
			a := amount
			env.ValorSobre = &a
		}
		env.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		envelopes = append(envelopes, env)
	}
	return envelopes, rows.Err()
}

func (db *DB) channelsByClosure(ids []int64) (map[int64][]models.ChannelTotal, error) {
	out := make(map[int64][]models.ChannelTotal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT closure_id, channel_name, system_amount, real_amount
		FROM cash_closure_channels
		WHERE closure_id IN (?` + repeatPlaceholder(len(ids)-1) + `)
		ORDER BY closure_id, id
	`
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var closureID int64
		var ch models.ChannelTotal
		if err := rows.Scan(&closureID, &ch.Name, &ch.System, &ch.Real); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out[closureID] = append(out[closureID], ch)
	}
	return out, rows.Err()
}

func lookupID(ctx context.Context, tx *sql.Tx, table, kind, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%s not found: %s", kind, name)
	}
	if err != nil {
		return 0, fmt.Errorf("query %s id: %w", kind, err)
	}
	return id, nil
}

func insertChannels(ctx context.Context, tx *sql.Tx, closureID int64, channels []models.ChannelTotal) error {
	for _, ch := range channels {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cash_closure_channels (closure_id, channel_name, system_amount, real_amount)
			VALUES (?, ?, ?, ?)
		`, closureID, ch.Name, ch.System, ch.Real); err != nil {
			return fmt.Errorf("insert channel: %w", err)
		}
	}
	return nil
}

func insertEnvelopes(ctx context.Context, tx *sql.Tx, closureID int64, envelopes []EnvelopeInput) error {
	for _, env := range envelopes {
		status := "activo en tienda"
		if env.Number == models.NoEnvelopeNumber {
			status = "sin sobre"
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cash_envelopes (closure_id, envelope_number, amount, status)
			VALUES (?, ?, ?, ?)
		`, closureID, env.Number, env.Amount, status); err != nil {
			return fmt.Errorf("insert envelope: %w", err)
		}
	}
	return nil
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
