package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cajabooks/internal/database"
	"cajabooks/internal/logger"
	"cajabooks/internal/models"
)

// closuresResponse is the GET /api/closures payload the register frontend
// consumes.
type closuresResponse struct {
	Closures []models.Closure  `json:"closures"`
	Sobres   []models.Envelope `json:"sobres"`
	Cashiers []string          `json:"cashiers"`
	Stores   []string          `json:"stores"`
	Error    string            `json:"error,omitempty"`
}

// ClosuresList returns recent closures plus the cashier/store dropdown
// lists. Without a database it serves the in-memory fallback data.
func (h *Handler) ClosuresList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	if h.db == nil {
		closures, envelopes := h.memory.Snapshot()
		h.writeJSON(w, r, http.StatusOK, closuresResponse{
			Closures: closures,
			Sobres:   envelopes,
			Cashiers: defaultCashiers,
			Stores:   defaultStores,
		})
		return
	}

	l := logger.FromContext(r.Context())

	closures, err := h.db.ListClosures(limit)
	if err != nil {
		l.Error("closures_list_error", "error", err.Error())
		h.writeJSON(w, r, http.StatusInternalServerError, closuresResponse{
			Closures: []models.Closure{},
			Sobres:   []models.Envelope{},
			Cashiers: defaultCashiers,
			Stores:   defaultStores,
			Error:    "could not load closures",
		})
		return
	}

	envelopes, err := h.db.ListEnvelopes(limit)
	if err != nil {
		l.Error("envelopes_list_error", "error", err.Error())
		envelopes = nil
	}

	cashiers, err := h.refdata.CashierNames()
	if err != nil || len(cashiers) == 0 {
		cashiers = defaultCashiers
	}
	stores, err := h.refdata.StoreNames()
	if err != nil || len(stores) == 0 {
		stores = defaultStores
	}

	if closures == nil {
		closures = []models.Closure{}
	}
	if envelopes == nil {
		envelopes = []models.Envelope{}
	}

	h.writeJSON(w, r, http.StatusOK, closuresResponse{
		Closures: closures,
		Sobres:   envelopes,
		Cashiers: cashiers,
		Stores:   stores,
	})
}

// ClosuresCreate accepts a closure payload, persists it (or stores it in
// memory when no database is configured) and returns the closure together
// with its derived envelope.
func (h *Handler) ClosuresCreate(w http.ResponseWriter, r *http.Request) {
	var in database.ClosureInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid closure payload")
		return
	}

	if h.db == nil {
		closure, envelope := h.memory.AddClosure(in)
		h.writeJSON(w, r, http.StatusCreated, map[string]any{
			"closure": closure,
			"sobre":   envelope,
		})
		return
	}

	// Derive the envelope before writing so it persists with the closure.
	in.Envelopes = appendDerivedEnvelope(in)

	id, err := h.db.CreateClosure(r.Context(), in)
	if err != nil {
		if isLookupFailure(err) {
			h.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.FromContext(r.Context()).Error("closure_create_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not create closure")
		return
	}

	closure := models.Closure{
		ID:        strconv.FormatInt(id, 10),
		Date:      in.Date,
		Note:      in.Note,
		Cashier:   in.Cashier,
		Store:     in.Store,
		Channels:  in.Channels,
		Efectivo:  in.Efectivo,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	envelope := deriveEnvelope(closure)

	h.writeJSON(w, r, http.StatusCreated, map[string]any{
		"closure": closure,
		"sobre":   envelope,
	})
}

// ClosuresUpdate rewrites an existing closure, replacing its channels and
// envelopes.
func (h *Handler) ClosuresUpdate(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid closure id")
		return
	}

	var in database.ClosureInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid closure payload")
		return
	}
	in.Envelopes = appendDerivedEnvelope(in)

	if err := h.db.UpdateClosure(r.Context(), id, in); err != nil {
		if isLookupFailure(err) {
			h.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.FromContext(r.Context()).Error("closure_update_error", "error", err.Error())
		h.writeError(w, r, http.StatusInternalServerError, "could not update closure")
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

// appendDerivedEnvelope adds the computed envelope to the input when the
// form sent none: value = real - base, negative means "SIN SOBRE".
func appendDerivedEnvelope(in database.ClosureInput) []database.EnvelopeInput {
	if len(in.Envelopes) > 0 {
		return in.Envelopes
	}

	value := in.Efectivo.Real - in.Efectivo.Base
	if value < 0 {
		return []database.EnvelopeInput{{Number: models.NoEnvelopeNumber, Amount: 0}}
	}
	return []database.EnvelopeInput{{Number: uuid.NewString()[:8], Amount: value}}
}

func deriveEnvelope(closure models.Closure) models.Envelope {
	envelope := models.Envelope{
		ID:        uuid.NewString(),
		Date:      closure.Date,
		Cashier:   closure.Cashier,
		Store:     closure.Store,
		ClosureID: closure.ID,
		CreatedAt: closure.CreatedAt,
	}
	if v, ok := closure.EnvelopeValue(); ok {
		envelope.ValorSobre = &v
	} else {
		envelope.SinSobre = true
	}
	return envelope
}

// isLookupFailure distinguishes a missing cashier/store reference from an
// infrastructure error.
func isLookupFailure(err error) bool {
	return strings.Contains(err.Error(), "not found")
}
