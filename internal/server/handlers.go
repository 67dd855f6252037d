package server

import (
	"encoding/json"
	"net/http"

	"github.com/avelez/scoping-agent/internal/types"
)

// runResponse is the payload returned for a finished job, successful or not.
type runResponse struct {
	JobID     string             `json:"job_id"`
	State     types.JobState     `json:"state"`
	Estimate  *types.JobEstimate `json:"estimate,omitempty"`
	Artifacts map[string]string  `json:"artifacts,omitempty"`
	Error     string             `json:"error,omitempty"`
	ErrorKind types.ErrorKind    `json:"error_kind,omitempty"`
}

// handleRun accepts a JobSpec, runs the job to a terminal state, and returns
// the estimate plus artifact locators.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var spec types.JobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, runResponse{
			State:     types.StateFailed,
			Error:     "invalid request body: " + err.Error(),
			ErrorKind: types.KindValidation,
		})
		return
	}

	rec, err := s.orchestrator.Run(r.Context(), spec)
	resp := runResponse{
		JobID:     rec.ID.String(),
		State:     rec.State,
		Estimate:  rec.Estimate,
		Artifacts: rec.Artifacts,
	}
	if err != nil {
		resp.Error = rec.Failure
		resp.ErrorKind = rec.FailureKind
		writeJSON(w, httpStatus(rec.FailureKind), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// httpStatus maps a job failure kind to the response status code.
func httpStatus(kind types.ErrorKind) int {
	switch kind {
	case types.KindValidation:
		return http.StatusBadRequest
	case types.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
