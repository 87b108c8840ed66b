package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"cajabooks/internal/logger"
)

// CashiersList serves the cashier names, through the reference-data cache.
func (h *Handler) CashiersList(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeJSON(w, r, http.StatusOK, map[string]any{"cashiers": defaultCashiers})
		return
	}

	names, err := h.refdata.CashierNames()
	if err != nil {
		logger.FromContext(r.Context()).Error("cashiers_list_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not load cashiers")
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"cashiers": names})
}

// StoresList serves the store names, through the reference-data cache.
func (h *Handler) StoresList(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeJSON(w, r, http.StatusOK, map[string]any{"stores": defaultStores})
		return
	}

	names, err := h.refdata.StoreNames()
	if err != nil {
		logger.FromContext(r.Context()).Error("stores_list_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not load stores")
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"stores": names})
}

type nameRequest struct {
	Name string `json:"name"`
}

// CashiersCreate adds a cashier and invalidates the cached list.
func (h *Handler) CashiersCreate(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		h.writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	id, err := h.db.CreateCashier(strings.TrimSpace(req.Name))
	if err != nil {
		logger.FromContext(r.Context()).Error("cashier_create_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not create cashier")
		return
	}
	h.refdata.InvalidateCashiers()

	h.writeJSON(w, r, http.StatusCreated, map[string]any{"id": id})
}

// StoresCreate adds a store and invalidates every cached store view.
func (h *Handler) StoresCreate(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		h.writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	id, err := h.db.CreateStore(strings.TrimSpace(req.Name))
	if err != nil {
		logger.FromContext(r.Context()).Error("store_create_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not create store")
		return
	}
	h.refdata.InvalidateStores()

	h.writeJSON(w, r, http.StatusCreated, map[string]any{"id": id})
}
