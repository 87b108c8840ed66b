package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajabooks/internal/cache"
	"cajabooks/internal/database"
	"cajabooks/internal/filestore"
	"cajabooks/internal/models"
	"cajabooks/internal/refdata"
)

// newMemoryRouter builds the API with no backing database.
func newMemoryRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(New(nil, nil, nil, NewMemoryStore()))
}

// newDBRouter builds the API over a throwaway SQLite database.
func newDBRouter(t *testing.T) (http.Handler, *database.DB) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })

	files, err := filestore.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	ref := refdata.New(db, cache.New(), time.Minute)
	return NewRouter(New(db, ref, files, NewMemoryStore())), db
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func multipartCSV(t *testing.T, csv string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "gastos.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, csv)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestExpensesEndpoints_NoDatabase(t *testing.T) {
	h := newMemoryRouter(t)

	for _, path := range []string{"/api/expenses", "/api/expenses/stats", "/api/expenses/categories"} {
		rec := doJSON(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestExpensesListAndStats(t *testing.T) {
	h, db := newDBRouter(t)

	storeID, err := db.CreateStore("Palatino")
	require.NoError(t, err)
	sid := fmt.Sprintf("%d", storeID)

	_, err = db.InsertExpenses(context.Background(), []models.ExpenseRecord{
		{Date: "2024-03-15", StoreID: &sid, ExpenseType: "Insumos", Total: 100},
		{Date: "2024-03-20", StoreID: &sid, ExpenseType: "Servicios", Total: 50},
		{Date: "2024-04-01", ExpenseType: "Insumos", Total: 25},
	})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet, "/api/expenses?category=Insumos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Expenses []models.ExpenseRecord `json:"expenses"`
	}
	decodeBody(t, rec, &listResp)
	assert.Len(t, listResp.Expenses, 2)

	rec = doJSON(t, h, http.MethodGet, "/api/expenses/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var s models.ExpenseStats
	decodeBody(t, rec, &s)
	assert.Equal(t, 3, s.TotalExpenses)
	assert.InDelta(t, 175, s.TotalAmount, 0.001)
	require.NotEmpty(t, s.ByCategory)
	assert.Equal(t, "Insumos", s.ByCategory[0].Label)

	rec = doJSON(t, h, http.MethodGet, "/api/expenses/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var catResp struct {
		Categories []string `json:"categories"`
	}
	decodeBody(t, rec, &catResp)
	assert.Equal(t, []string{"Insumos", "Servicios"}, catResp.Categories)
}

func TestStoresCreateAndList(t *testing.T) {
	h, _ := newDBRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/stores", map[string]string{"name": "Palatino"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/stores", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Stores []string `json:"stores"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, []string{"Palatino"}, resp.Stores)

	// The cached list must not survive the write.
	rec = doJSON(t, h, http.MethodPost, "/api/stores", map[string]string{"name": "Green Office"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/stores", nil)
	decodeBody(t, rec, &resp)
	assert.Equal(t, []string{"Green Office", "Palatino"}, resp.Stores)

	rec = doJSON(t, h, http.MethodPost, "/api/stores", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCashiersCreateAndList(t *testing.T) {
	h, _ := newDBRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/cashiers", map[string]string{"name": "yeseldis cordoba"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/cashiers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Cashiers []string `json:"cashiers"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, []string{"yeseldis cordoba"}, resp.Cashiers)
}

func TestExpensesPreview(t *testing.T) {
	h, db := newDBRouter(t)

	_, err := db.CreateStore("Palatino")
	require.NoError(t, err)

	csv := "Fecha Gasto,Negocio,Total\n" +
		"15/03/2024,GRUPO TCW SAS - Palatino,\"$100\"\n" +
		"16/03/2024,Tienda Desconocida,\"$50\"\n"
	body, contentType := multipartCSV(t, csv)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Rows    []models.ProcessedExpense `json:"rows"`
		Parsed  int                       `json:"parsed"`
		Flagged int                       `json:"flagged"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Parsed)
	assert.Equal(t, 1, resp.Flagged)
	require.Len(t, resp.Rows, 2)
	require.NotNil(t, resp.Rows[0].Matched)
	assert.Equal(t, "Palatino", resp.Rows[0].Matched.Name)
	assert.False(t, resp.Rows[0].Expense.NeedsReview)
	assert.True(t, resp.Rows[1].Expense.NeedsReview)
}

func TestExpensesImport_QueuesJob(t *testing.T) {
	h, db := newDBRouter(t)

	body, contentType := multipartCSV(t, "Fecha Gasto,Negocio,Total\n15/03/2024,Palatino,10\n")
	req := httptest.NewRequest(http.MethodPost, "/api/expenses/import?mode=upsert", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp struct {
		JobID int64 `json:"job_id"`
	}
	decodeBody(t, rec, &resp)
	require.Positive(t, resp.JobID)

	job, err := db.GetJob(resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, "import_expenses", job.JobType)
	assert.Equal(t, "pending", job.Status)
	assert.Contains(t, job.Payload, `"mode":"upsert"`)
	assert.Contains(t, job.Payload, ".csv")
}

func TestJobStatus(t *testing.T) {
	h, db := newDBRouter(t)

	id, err := db.CreateJob("import_expenses", nil)
	require.NoError(t, err)
	require.NoError(t, db.CompleteJob(id, `{"success":5,"errors":0}`))

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/jobs/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status   string         `json:"status"`
		Progress int            `json:"progress"`
		Result   map[string]any `json:"result"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, float64(5), resp.Result["success"])

	rec = doJSON(t, h, http.MethodGet, "/api/jobs/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/jobs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIVersion(t *testing.T) {
	h := newMemoryRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "version"))
}
