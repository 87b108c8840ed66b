package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cajabooks/internal/models"
)

// Column headers of the POS expense export. Matching is case-insensitive
// and tolerant of column order; unknown columns are ignored.
const (
	colFechaGasto      = "fecha gasto"
	colNegocio         = "negocio"
	colNombreComercial = "nombre comercial"
	colTipoGasto       = "tipo de gasto"
	colNumeroFactura   = "n° factura"
	colImpuestos       = "impuestos"
	colTotal           = "total"
)

// ReadRows decodes the expense CSV export into import rows. The first
// record is the header; blank lines are skipped. Rows with fewer fields
// than the header simply leave the missing values empty, mirroring how the
// rest of the pipeline treats absent data.
func ReadRows(r io.Reader) ([]models.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // exports are ragged
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := headerIndex(header)
	if _, ok := idx[colNegocio]; !ok {
		return nil, fmt.Errorf("csv header missing %q column", "Negocio")
	}

	var rows []models.ImportRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		if isBlank(record) {
			continue
		}

		rows = append(rows, models.ImportRow{
			FechaGasto:      field(record, idx, colFechaGasto),
			Negocio:         field(record, idx, colNegocio),
			NombreComercial: field(record, idx, colNombreComercial),
			TipoGasto:       field(record, idx, colTipoGasto),
			NumeroFactura:   field(record, idx, colNumeroFactura),
			Impuestos:       field(record, idx, colImpuestos),
			Total:           field(record, idx, colTotal),
		})
	}
	return rows, nil
}

// ParseRows runs every import row through the parser against the given
// store set, returning the processed expenses and how many were flagged
// for review.
func ParseRows(rows []models.ImportRow, stores []models.StoreRef) ([]models.ProcessedExpense, int) {
	processed := make([]models.ProcessedExpense, 0, len(rows))
	flagged := 0
	for _, row := range rows {
		p := ParseRow(row, stores)
		if p.Expense.NeedsReview {
			flagged++
		}
		processed = append(processed, p)
	}
	return processed, flagged
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func field(record []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
