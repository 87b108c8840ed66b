package models

import "time"

// ChannelNames is the list of payment channels tracked on a closure.
var ChannelNames = []string{
	"dataphone",
	"rappi",
	"justo",
	"apparta_pay",
	"transferencia_nequi",
	"transferencia_bancolombia",
}

// NoEnvelopeNumber marks a closure that produced no physical envelope.
const NoEnvelopeNumber = "SIN SOBRE"

type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Cashier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreRef is the minimal store identity the matcher works against.
type StoreRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchResult is a resolved store with a confidence score in [0, 1].
// 1.0 means an exact case-insensitive name match.
type MatchResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ExpenseRecord is one reconciled expense line. Built by the row parser,
// inserted in batches, never mutated by the import path afterwards.
type ExpenseRecord struct {
	ID            int64   `json:"id,omitempty"`
	Date          string  `json:"date"` // YYYY-MM-DD
	StoreID       *string `json:"store_id,omitempty"`
	StoreNameRaw  string  `json:"store_name_raw"`
	Provider      string  `json:"provider"`
	ExpenseType   string  `json:"expense_type"`
	Total         float64 `json:"total"`
	Taxes         float64 `json:"taxes"`
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	NeedsReview   bool    `json:"needs_review"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// ImportRow is one record from the expense CSV export. Field names follow
// the export's Spanish column headers.
type ImportRow struct {
	FechaGasto      string // "Fecha Gasto": serial number, DD/MM/YYYY or ISO
	Negocio         string // raw store name as exported
	NombreComercial string // provider/vendor display name
	TipoGasto       string // "Tipo de gasto": expense category
	NumeroFactura   string // "N° Factura"
	Impuestos       string // taxes, free-text money
	Total           string // total, free-text money
}

// ProcessedExpense pairs a parsed record with the store match used, if any.
type ProcessedExpense struct {
	Expense ExpenseRecord `json:"expense"`
	Matched *MatchResult  `json:"matched_store,omitempty"`
}

type ExpenseFilter struct {
	StartDate string
	EndDate   string
	StoreID   string
	Category  string
}

// ExpenseRow is the joined shape the stats aggregator consumes: an expense
// with its resolved store display name, when one is linked.
type ExpenseRow struct {
	Date        string
	ExpenseType string
	StoreName   *string
	Total       float64
}

// GroupTotal is one (label, total, count) bucket in a stats grouping.
type GroupTotal struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// ExpenseStats is the derived, non-persisted aggregate over a filtered
// expense result set.
type ExpenseStats struct {
	TotalExpenses int          `json:"totalExpenses"`
	TotalAmount   float64      `json:"totalAmount"`
	ByCategory    []GroupTotal `json:"byCategory"`
	ByStore       []GroupTotal `json:"byStore"`
	ByMonth       []GroupTotal `json:"byMonth"`
}

// ChannelTotal holds system vs. actual amounts for one payment channel.
type ChannelTotal struct {
	Name   string  `json:"name"`
	System float64 `json:"system"`
	Real   float64 `json:"real"`
}

// Efectivo is the cash block of a closure.
type Efectivo struct {
	Base       float64 `json:"base"`
	Ventas     float64 `json:"ventas"`
	Gastos     float64 `json:"gastos"`
	Ingresos   float64 `json:"ingresos"`
	Egresos    float64 `json:"egresos"`
	POS        float64 `json:"pos"`
	Real       float64 `json:"real"`
	Diferencia float64 `json:"diferencia"`
	Porcentaje float64 `json:"porcentaje"`
}

// Closure is one cash-register reconciliation for a cashier/store/date.
type Closure struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	Note      string         `json:"note"`
	Cashier   string         `json:"cashier"`
	Store     string         `json:"store"`
	Channels  []ChannelTotal `json:"channels"`
	Efectivo  Efectivo       `json:"efectivo"`
	CreatedAt string         `json:"createdAt"`
}

// Envelope is the physical cash deposit derived from a closure.
// ValorSobre is nil when the closure produced no envelope.
type Envelope struct {
	ID         string   `json:"id"`
	Date       string   `json:"date"`
	Cashier    string   `json:"cashier"`
	Store      string   `json:"store"`
	ValorSobre *float64 `json:"valorSobre"`
	SinSobre   bool     `json:"sinSobre"`
	ClosureID  string   `json:"closureId"`
	CreatedAt  string   `json:"createdAt"`
}

// EnvelopeValue derives the envelope amount for a closure: cash counted
// minus the register base. A negative value means no envelope was made.
func (c Closure) EnvelopeValue() (float64, bool) {
	v := c.Efectivo.Real - c.Efectivo.Base
	if v < 0 {
		return 0, false
	}
	return v, true
}

type Job struct {
	ID          int64      `json:"id"`
	JobType     string     `json:"job_type"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"` // pending, running, completed, failed
	Progress    int        `json:"progress"`
	Result      string     `json:"result"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
