package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/respcompare/internal/compare"
	"github.com/jonathan/respcompare/internal/db"
	"github.com/jonathan/respcompare/internal/server/middleware"
	"github.com/jonathan/respcompare/internal/types"
)

// maxListLimit caps the limit query parameter on list endpoints
const maxListLimit = 200

// ListResultsResponse represents the response for listing benchmark records
type ListResultsResponse struct {
	Results []types.BenchmarkResult `json:"results"`
	Count   int                     `json:"count"`
	Limit   int                     `json:"limit"`
}

// ListComparisonsResponse represents the response for listing stored comparisons of a record
type ListComparisonsResponse struct {
	Comparisons []db.ComparisonSummary `json:"comparisons"`
	Count       int                    `json:"count"`
}

func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// decodeJSON reads a size-limited JSON body into v. It writes the error
// response itself and reports whether decoding succeeded.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorFromErr(w, err)
			return false
		}
		s.errorFromErr(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return false
	}
	return true
}

// parseResultID reads the {id} path value, writing a 400 when it is not a UUID
func (s *Server) parseResultID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid result ID")
		return uuid.Nil, false
	}
	return id, true
}

// engineFor returns an engine for the requested mode. An empty mode uses the
// server default.
func (s *Server) engineFor(mode string) (*compare.Engine, error) {
	opts := s.engineOpts
	if mode != "" {
		m, err := compare.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		opts.Mode = m
	}
	return compare.NewEngine(opts), nil
}

// handleCompare compares two texts without storing anything
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req types.CompareRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, err)
		return
	}

	engine, err := s.engineFor(req.Mode)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	report, err := engine.Compare(req.TextA, req.TextB)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.NewComparisonReport(uuid.Nil, "", report))
}

// handleCreateResult stores a benchmark record
func (s *Server) handleCreateResult(w http.ResponseWriter, r *http.Request) {
	var req types.CreateBenchmarkResultRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, err)
		return
	}

	// Records that could never be compared are refused up front
	engine, _ := s.engineFor("")
	if err := engine.CheckSize(req.ModeAResponse, req.ModeBResponse); err != nil {
		s.errorFromErr(w, err)
		return
	}

	created, err := s.store.CreateBenchmarkResult(r.Context(), req.ToResult())
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	log.Printf("[results] %s created %s (%s)", middleware.GetClientName(r), created.ID, created.TestName)
	s.jsonResponse(w, http.StatusCreated, created)
}

// handleListResults lists benchmark records, newest first
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	filters := db.BenchmarkResultFilters{
		TestName: r.URL.Query().Get("test_name"),
		Limit:    parseQueryInt(r, "limit", db.DefaultListLimit, maxListLimit),
	}
	if filters.Limit == 0 {
		filters.Limit = db.DefaultListLimit
	}

	results, err := s.store.ListBenchmarkResults(r.Context(), filters)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ListResultsResponse{
		Results: results,
		Count:   len(results),
		Limit:   filters.Limit,
	})
}

// handleGetResult retrieves a benchmark record by its ID
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseResultID(w, r)
	if !ok {
		return
	}

	result, err := s.store.GetBenchmarkResult(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if result == nil {
		s.errorFromErr(w, &ErrNotFound{Resource: "benchmark result", ID: id.String()})
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleDeleteResult deletes a benchmark record and its stored comparisons
func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseResultID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteBenchmarkResult(r.Context(), id); err != nil {
		s.errorFromErr(w, err)
		return
	}

	log.Printf("[results] %s deleted %s", middleware.GetClientName(r), id)
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleCompareResult compares the two responses of a stored record and
// persists the report, replacing any earlier report for the same mode
func (s *Server) handleCompareResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseResultID(w, r)
	if !ok {
		return
	}

	engine, err := s.engineFor(r.URL.Query().Get("mode"))
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	result, err := s.store.GetBenchmarkResult(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if result == nil {
		s.errorFromErr(w, &ErrNotFound{Resource: "benchmark result", ID: id.String()})
		return
	}

	report, err := engine.Compare(result.ModeAResponse, result.ModeBResponse)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	comparison := types.NewComparisonReport(result.ID, result.TestName, report)
	if err := s.store.SaveComparison(r.Context(), comparison); err != nil {
		s.errorFromErr(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, comparison)
}

// handleGetComparison retrieves the stored report for a record and mode
func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseResultID(w, r)
	if !ok {
		return
	}

	engine, err := s.engineFor(r.URL.Query().Get("mode"))
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	report, err := s.store.GetComparison(r.Context(), id, string(engine.Mode()))
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	if report == nil {
		s.errorFromErr(w, &ErrNotFound{Resource: "comparison", ID: id.String()})
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleListComparisons lists summaries of every stored report for a record
func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseResultID(w, r)
	if !ok {
		return
	}

	summaries, err := s.store.ListComparisons(r.Context(), id)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ListComparisonsResponse{
		Comparisons: summaries,
		Count:       len(summaries),
	})
}
