// Package stats computes grouped expense totals over an already-filtered
// result set. Filtering (date range, store, category) is the query layer's
// job; this package only aggregates what it is handed.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"cajabooks/internal/models"
)

// UnassignedLabel stands in for a missing category or store link.
const UnassignedLabel = "unassigned"

type bucket struct {
	total decimal.Decimal
	count int
}

// Compute aggregates the rows into totals grouped by category, store and
// month. Category and store groups sort by descending total; months sort
// ascending by their YYYY-MM key, which is also chronological. Missing
// totals count as zero.
func Compute(rows []models.ExpenseRow) models.ExpenseStats {
	totalAmount := decimal.Zero
	byCategory := make(map[string]bucket)
	byStore := make(map[string]bucket)
	byMonth := make(map[string]bucket)

	for _, row := range rows {
		amount := decimal.NewFromFloat(row.Total)
		totalAmount = totalAmount.Add(amount)

		category := row.ExpenseType
		if category == "" {
			category = UnassignedLabel
		}
		add(byCategory, category, amount)

		store := UnassignedLabel
		if row.StoreName != nil && *row.StoreName != "" {
			store = *row.StoreName
		}
		add(byStore, store, amount)

		add(byMonth, monthKey(row.Date), amount)
	}

	return models.ExpenseStats{
		TotalExpenses: len(rows),
		TotalAmount:   totalAmount.InexactFloat64(),
		ByCategory:    sortedByTotal(byCategory),
		ByStore:       sortedByTotal(byStore),
		ByMonth:       sortedByLabel(byMonth),
	}
}

func add(m map[string]bucket, key string, amount decimal.Decimal) {
	b := m[key]
	b.total = b.total.Add(amount)
	b.count++
	m[key] = b
}

// monthKey is the first 7 characters of a YYYY-MM-DD date.
func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func sortedByTotal(m map[string]bucket) []models.GroupTotal {
	groups := collect(m)
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Total != groups[j].Total {
			return groups[i].Total > groups[j].Total
		}
		return groups[i].Label < groups[j].Label
	})
	return groups
}

func sortedByLabel(m map[string]bucket) []models.GroupTotal {
	groups := collect(m)
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Label < groups[j].Label
	})
	return groups
}

func collect(m map[string]bucket) []models.GroupTotal {
	groups := make([]models.GroupTotal, 0, len(m))
	for label, b := range m {
		groups = append(groups, models.GroupTotal{
			Label: label,
			Total: b.total.InexactFloat64(),
			Count: b.count,
		})
	}
	return groups
}
