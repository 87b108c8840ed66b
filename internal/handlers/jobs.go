package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cajabooks/internal/version"
)

// JobStatus returns the status of a background job as JSON (for polling).
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "no database configured")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := h.db.GetJob(id)
	if err != nil {
		h.writeError(w, r, http.StatusNotFound, "job not found")
		return
	}

	var result any
	if job.Result != "" {
		// Result is stored as JSON for completed jobs, plain text for
		// failures; pass through whichever it is.
		var parsed any
		if err := json.Unmarshal([]byte(job.Result), &parsed); err == nil {
			result = parsed
		} else {
			result = job.Result
		}
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"id":       job.ID,
		"type":     job.JobType,
		"status":   job.Status,
		"progress": job.Progress,
		"result":   result,
	})
}

// APIVersion reports build metadata.
func (h *Handler) APIVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"version":    version.Version,
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
	})
}
