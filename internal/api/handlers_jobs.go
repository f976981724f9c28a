package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/doccheck/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleListChecks lists tracked jobs, optionally filtered by ?status=.
func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	status := pipeline.JobStatus(r.URL.Query().Get("status"))

	jobs := []pipeline.JobSnapshot{}
	for _, job := range s.checks.ListJobs() {
		snap := job.Snapshot()
		if status != "" && snap.Status != status {
			continue
		}
		jobs = append(jobs, snap)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"jobs": jobs})
}

// handleDeleteCheck forgets a finished job and its result.
func (s *Server) handleDeleteCheck(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	found, err := s.checks.DeleteJob(jobID)
	switch {
	case errors.Is(err, pipeline.ErrJobRunning):
		jsonError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	case !found:
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"job_id": jobID, "deleted": true})
}
