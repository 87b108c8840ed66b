package handlers

import (
	"net/http"

	"cajabooks/internal/importer"
	"cajabooks/internal/jobs"
	"cajabooks/internal/logger"
	"cajabooks/internal/models"
	"cajabooks/internal/stats"
)

func expenseFilterFromQuery(r *http.Request) models.ExpenseFilter {
	q := r.URL.Query()
	return models.ExpenseFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		StoreID:   q.Get("store_id"),
		Category:  q.Get("category"),
	}
}

// ExpensesList returns filtered expenses.
func (h *Handler) ExpensesList(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	expenses, err := h.db.ListExpenses(expenseFilterFromQuery(r))
	if err != nil {
		logger.FromContext(r.Context()).Error("expenses_list_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not load expenses")
		return
	}
	if expenses == nil {
		expenses = []models.ExpenseRecord{}
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{"expenses": expenses})
}

// ExpensesStats aggregates the filtered expenses into grouped totals.
// Filtering happens in the query; grouping happens here.
func (h *Handler) ExpensesStats(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	rows, err := h.db.ListExpenseRows(expenseFilterFromQuery(r))
	if err != nil {
		logger.FromContext(r.Context()).Error("expense_stats_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not load expense stats")
		return
	}

	h.writeJSON(w, r, http.StatusOK, stats.Compute(rows))
}

// ExpensesCategories returns the distinct expense types.
func (h *Handler) ExpensesCategories(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	categories, err := h.db.ListExpenseCategories()
	if err != nil {
		logger.FromContext(r.Context()).Error("expense_categories_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not load categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{"categories": categories})
}

// ExpensesImport accepts a multipart CSV upload, stores the file and
// queues an import job. The response carries the job id for polling.
// ?mode=upsert selects the duplicate-tolerant writer.
func (h *Handler) ExpensesImport(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	name, err := h.files.Save(header.Filename, file)
	if err != nil {
		logger.FromContext(r.Context()).Error("import_upload_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not store upload")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode != "upsert" {
		mode = "insert"
	}

	jobID, err := h.db.CreateJob("import_expenses", jobs.ImportExpensesPayload{
		FileName: name,
		Mode:     mode,
	})
	if err != nil {
		logger.FromContext(r.Context()).Error("import_job_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not queue import")
		return
	}

	h.writeJSON(w, r, http.StatusAccepted, map[string]any{"job_id": jobID})
}

// ExpensesPreview parses an uploaded CSV against the known stores without
// writing anything, so flagged rows can be reviewed before import.
func (h *Handler) ExpensesPreview(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	rows, err := importer.ReadRows(file)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stores, err := h.refdata.StoreRefs()
	if err != nil {
		logger.FromContext(r.Context()).Error("store_refs_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not load stores")
		return
	}

	processed, flagged := importer.ParseRows(rows, stores)
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"rows":    processed,
		"parsed":  len(processed),
		"flagged": flagged,
	})
}
