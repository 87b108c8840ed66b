package database

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajabooks/internal/models"
)

func expense(date, storeID, category, invoice string, total float64) models.ExpenseRecord {
	e := models.ExpenseRecord{
		Date:          date,
		StoreNameRaw:  "raw name",
		Provider:      "Quesos del Valle",
		ExpenseType:   category,
		Total:         total,
		InvoiceNumber: invoice,
	}
	if storeID != "" {
		e.StoreID = &storeID
	}
	return e
}

func TestInsertExpenses_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	storeID, err := db.CreateStore("Palatino")
	require.NoError(t, err)
	sid := strconv.FormatInt(storeID, 10)

	batch := []models.ExpenseRecord{
		expense("2024-03-15", sid, "Insumos", "F-1001", 1200.50),
		expense("2024-03-20", "", "Servicios", "", 80),
	}
	inserted, err := db.InsertExpenses(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	got, err := db.ListExpenses(models.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest date first.
	assert.Equal(t, "2024-03-20", got[0].Date)
	assert.Nil(t, got[0].StoreID)
	assert.Equal(t, "2024-03-15", got[1].Date)
	require.NotNil(t, got[1].StoreID)
	assert.Equal(t, sid, *got[1].StoreID)
	assert.Equal(t, 1200.50, got[1].Total)
	assert.Equal(t, "F-1001", got[1].InvoiceNumber)
}

func TestInsertExpenses_DuplicateFailsBatch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	storeID, err := db.CreateStore("Palatino")
	require.NoError(t, err)
	sid := strconv.FormatInt(storeID, 10)

	_, err = db.InsertExpenses(ctx, []models.ExpenseRecord{
		expense("2024-03-15", sid, "Insumos", "F-1001", 100),
	})
	require.NoError(t, err)

	// Same store/date/invoice violates the unique index; the whole batch
	// rolls back, the new row included.
	_, err = db.InsertExpenses(ctx, []models.ExpenseRecord{
		expense("2024-03-16", sid, "Insumos", "F-2002", 50),
		expense("2024-03-15", sid, "Insumos", "F-1001", 100),
	})
	require.Error(t, err)

	got, err := db.ListExpenses(models.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInsertExpensesIgnore_SkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	storeID, err := db.CreateStore("Palatino")
	require.NoError(t, err)
	sid := strconv.FormatInt(storeID, 10)

	_, err = db.InsertExpenses(ctx, []models.ExpenseRecord{
		expense("2024-03-15", sid, "Insumos", "F-1001", 100),
	})
	require.NoError(t, err)

	inserted, err := db.InsertExpensesIgnore(ctx, []models.ExpenseRecord{
		expense("2024-03-15", sid, "Insumos", "F-1001", 100),
		expense("2024-03-16", sid, "Insumos", "F-2002", 50),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	got, err := db.ListExpenses(models.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestInsertExpenses_BlankInvoiceNeverConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	storeID, err := db.CreateStore("Palatino")
	require.NoError(t, err)
	sid := strconv.FormatInt(storeID, 10)

	inserted, err := db.InsertExpenses(ctx, []models.ExpenseRecord{
		expense("2024-03-15", sid, "Insumos", "", 10),
		expense("2024-03-15", sid, "Insumos", "", 20),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}

func TestListExpenses_Filter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	storeID, err := db.CreateStore("Palatino")
	require.NoError(t, err)
	sid := strconv.FormatInt(storeID, 10)

	_, err = db.InsertExpenses(ctx, []models.ExpenseRecord{
		expense("2024-02-10", sid, "Insumos", "", 10),
		expense("2024-03-15", sid, "Servicios", "", 20),
		expense("2024-04-01", "", "Insumos", "", 30),
	})
	require.NoError(t, err)

	got, err := db.ListExpenses(models.ExpenseFilter{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-15", got[0].Date)

	got, err = db.ListExpenses(models.ExpenseFilter{Category: "Insumos"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = db.ListExpenses(models.ExpenseFilter{StoreID: sid, Category: "Insumos"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02-10", got[0].Date)
}

func TestListExpenseRows_JoinsStoreName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	storeID, err := db.CreateStore("Palatino")
	require.NoError(t, err)
	sid := strconv.FormatInt(storeID, 10)

	_, err = db.InsertExpenses(ctx, []models.ExpenseRecord{
		expense("2024-03-15", sid, "Insumos", "", 100),
		expense("2024-03-16", "", "Insumos", "", 50),
	})
	require.NoError(t, err)

	rows, err := db.ListExpenseRows(models.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var linked, unlinked int
	for _, r := range rows {
		if r.StoreName != nil {
			assert.Equal(t, "Palatino", *r.StoreName)
			linked++
		} else {
			unlinked++
		}
	}
	assert.Equal(t, 1, linked)
	assert.Equal(t, 1, unlinked)
}

func TestListExpenseCategories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.InsertExpenses(ctx, []models.ExpenseRecord{
		expense("2024-03-15", "", "Servicios", "", 10),
		expense("2024-03-16", "", "Insumos", "", 20),
		expense("2024-03-17", "", "Insumos", "", 30),
		expense("2024-03-18", "", "", "", 40),
	})
	require.NoError(t, err)

	categories, err := db.ListExpenseCategories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Insumos", "Servicios"}, categories)
}
