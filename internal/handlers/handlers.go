package handlers

import (
	"encoding/json"
	"net/http"

	"cajabooks/internal/database"
	"cajabooks/internal/filestore"
	"cajabooks/internal/logger"
	"cajabooks/internal/refdata"
)

// Handler holds the JSON API's collaborators. db is nil when the server
// runs without a backing store; the closure endpoints then fall back to
// the in-memory store and the import endpoints are unavailable.
type Handler struct {
	db      *database.DB
	refdata *refdata.Service
	files   *filestore.Store
	memory  *MemoryStore
}

func New(db *database.DB, ref *refdata.Service, files *filestore.Store, memory *MemoryStore) *Handler {
	return &Handler{
		db:      db,
		refdata: ref,
		files:   files,
		memory:  memory,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("json_encode_error", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, map[string]string{"error": msg})
}
