package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jonathan/talent-match/internal/schemas"
	"github.com/jonathan/talent-match/internal/types"
	"go.uber.org/zap"
)

// WarmRequest is the body of POST /admin/warm. Empty ids warm every record of the kind.
type WarmRequest struct {
	Kind types.RecordKind `json:"kind"`
	IDs  []string         `json:"ids"`
}

// WarmResponse reports records that could not be warmed.
type WarmResponse struct {
	Diagnostics []types.Diagnostic `json:"diagnostics"`
}

// listResponse wraps record listings.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	return data, nil
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	job, err := schemas.DecodeJob(data)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	stored, err := s.service.CreateJob(r.Context(), job)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, stored)
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	candidate, err := schemas.DecodeCandidate(data)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	stored, err := s.service.CreateCandidate(r.Context(), candidate)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, stored)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.Repository().GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, job)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.service.Repository().GetCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, candidate)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.Repository().ListJobs(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if jobs == nil {
		jobs = []*types.JobRecord{}
	}
	writeJSON(w, s.logger, http.StatusOK, listResponse[*types.JobRecord]{Items: jobs, Count: len(jobs)})
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.service.Repository().ListCandidates(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if candidates == nil {
		candidates = []*types.CandidateRecord{}
	}
	writeJSON(w, s.logger, http.StatusOK, listResponse[*types.CandidateRecord]{Items: candidates, Count: len(candidates)})
}

func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	opts, err := parseSearchOptions(r.URL.Query())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	resp, err := s.service.SearchJobsForApplicant(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleSearchCandidates(w http.ResponseWriter, r *http.Request) {
	opts, err := parseSearchOptions(r.URL.Query())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	resp, err := s.service.SearchCandidatesForJob(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleApplicantSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.GetApplicantSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, summary)
}

func (s *Server) handleJobSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.GetJobSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, summary)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.CompareApplicantWithPeers(r.Context(), r.PathValue("id"), peerIDs(r.URL.Query()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleComparePair(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.CompareApplicants(r.Context(), r.PathValue("id"), r.PathValue("peerId"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.GetComparisonHeatmap(r.Context(), r.PathValue("id"), peerIDs(r.URL.Query()))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleWarm(w http.ResponseWriter, r *http.Request) {
	var req WarmRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, s.logger, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if req.Kind != types.KindJob && req.Kind != types.KindCandidate {
		writeError(w, s.logger, &ErrValidation{Field: "kind", Message: "must be job or candidate"})
		return
	}

	diagnostics, err := s.service.Warm(r.Context(), req.Kind, req.IDs)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if diagnostics == nil {
		diagnostics = []types.Diagnostic{}
	}
	s.logger.Info("warm request served", zap.String("kind", string(req.Kind)), zap.Int("ids", len(req.IDs)))
	writeJSON(w, s.logger, http.StatusOK, WarmResponse{Diagnostics: diagnostics})
}
