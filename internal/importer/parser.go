package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cajabooks/internal/models"
)

// reviewConfidence is the minimum match confidence below which a parsed
// row is flagged for manual review. It is independent of the matcher's
// distance cutoff: a row can match and still need review.
const reviewConfidence = 0.8

// serialEpochOffset is the number of days between the spreadsheet serial
// epoch and the Unix epoch.
const serialEpochOffset = 25569

// ParseRow converts one import row into an ExpenseRecord, resolving the
// store via MatchStoreName. It never fails: malformed dates pass through
// untouched and malformed amounts default to zero, but a non-empty amount
// that cannot be parsed also flags the row for review so the defaulting is
// not silent.
func ParseRow(row models.ImportRow, stores []models.StoreRef) models.ProcessedExpense {
	date := ParseDate(row.FechaGasto)

	total, totalOK := parseAmount(row.Total)
	taxes, taxesOK := parseAmount(row.Impuestos)

	matched := MatchStoreName(row.Negocio, stores)

	provider := strings.TrimSpace(row.NombreComercial)
	if provider == "" {
		provider = "Desconocido"
	}

	expense := models.ExpenseRecord{
		Date:          date,
		StoreNameRaw:  row.Negocio,
		Provider:      provider,
		ExpenseType:   strings.TrimSpace(row.TipoGasto),
		Total:         total,
		Taxes:         taxes,
		InvoiceNumber: strings.TrimSpace(row.NumeroFactura),
		NeedsReview:   matched == nil || matched.Confidence < reviewConfidence || !totalOK || !taxesOK,
	}
	if matched != nil {
		expense.StoreID = &matched.ID
	}

	return models.ProcessedExpense{Expense: expense, Matched: matched}
}

// ParseDate normalizes the three date shapes the export produces to
// YYYY-MM-DD: a spreadsheet serial-day number, DD/MM/YYYY, or an ISO-8601
// date/time. Anything else is returned as-is.
func ParseDate(raw string) string {
	date := strings.TrimSpace(raw)

	switch {
	case isSerialNumber(date):
		serial, err := strconv.ParseFloat(date, 64)
		if err != nil {
			return date
		}
		// Serial days count from 25569 days before the Unix epoch;
		// convert in UTC to avoid timezone drift.
		secs := math.Round((serial - serialEpochOffset) * 86400)
		return time.Unix(int64(secs), 0).UTC().Format("2006-01-02")

	case strings.Contains(date, "/"):
		parts := strings.Split(date, "/")
		if len(parts) != 3 {
			return date
		}
		return fmt.Sprintf("%s-%s-%s", parts[2], pad2(parts[1]), pad2(parts[0]))

	case strings.Contains(date, "T"):
		return date[:strings.Index(date, "T")]
	}

	return date
}

// isSerialNumber reports whether the string is a bare number, i.e. a
// spreadsheet serial day rather than a formatted date.
func isSerialNumber(s string) bool {
	if s == "" || strings.ContainsAny(s, "/-") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// scrubAmount drops everything that is not a digit, minus sign or
// decimal point.
func scrubAmount(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseAmount turns a free-text money value ("$1,200.50") into a float.
// Missing values parse as 0 and are fine; a non-empty value that still
// fails after scrubbing also yields 0 but reports ok=false.
func parseAmount(raw string) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, true
	}

	cleaned := scrubAmount(raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
