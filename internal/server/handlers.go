package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/aitken/internal/engine"
	"github.com/agbru/aitken/internal/logging"
	"github.com/agbru/aitken/internal/problems"
	"github.com/agbru/aitken/internal/service"
	"github.com/agbru/aitken/pkg/aitken"
	"github.com/agbru/aitken/pkg/models"
)

// DefaultRequestBudget is the budget of an /accelerate request that does not
// set one.
const DefaultRequestBudget uint64 = 1_000_000

// handleHealth responds to health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleRunners returns the names of the registered runners.
func (s *Server) handleRunners(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"runners": s.factory.List(),
	})
}

// handleProblems returns the problem catalogue.
func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	all := s.service.Problems()
	infos := make([]models.ProblemInfo, 0, len(all))
	for _, p := range all {
		infos = append(infos, p.Info())
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"problems": infos,
	})
}

// handleAccelerate evaluates one problem with one runner.
// It parses the query parameters, executes the run under the request timeout
// and returns an AccelerationReport. A run that fails after starting, for
// instance on a degenerate step under the fail policy, is still answered with
// 200 and the error in the report.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleAccelerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, err := s.parseAccelerateParams(r.URL.Query())
	if err != nil {
		var paramErr ParamError
		if errors.As(err, &paramErr) {
			s.writeErrorResponse(w, paramErr.StatusCode, paramErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	p, ok := s.findProblem(req.problem)
	if !ok {
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("Unknown problem '%s'", req.problem))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	out, err := s.service.Accelerate(ctx, req.problem, req.runner, req.opts)
	duration := time.Since(start)

	var unknownRunner *engine.UnknownRunnerError
	switch {
	case errors.Is(err, service.ErrMaxBudgetExceeded):
		s.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Value of 'budget' exceeds maximum allowed (%d). This limit prevents resource exhaustion.", s.securityConfig.MaxBudget))
		return
	case errors.As(err, &unknownRunner):
		s.writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown runner '%s'", unknownRunner.Name))
		return
	case errors.Is(err, problems.ErrUnknownProblem):
		s.writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	if err != nil {
		s.logger.Error("run failed", err, logging.Problem(req.problem), logging.Runner(req.runner))
	}
	s.writeJSONResponse(w, http.StatusOK, engine.NewReport(p, req.runner, out, req.opts, duration, err))
}

// accelerateRequest holds the parsed parameters of an /accelerate request.
type accelerateRequest struct {
	problem string
	runner  string
	opts    engine.Options
}

// parseAccelerateParams extracts and validates the run parameters. Absent
// tolerances and policy fall back to the server configuration, an absent
// budget to DefaultRequestBudget and an absent runner to "aitken".
//
// Parameters:
//   - q: The query parameters of the request.
//
// Returns:
//   - accelerateRequest: The parsed request.
//   - error: A ParamError if validation fails, nil otherwise.
func (s *Server) parseAccelerateParams(q url.Values) (accelerateRequest, error) {
	req := accelerateRequest{
		problem: strings.ToLower(q.Get("problem")),
		runner:  strings.ToLower(q.Get("algo")),
		opts: engine.Options{
			AbsTolerance: s.cfg.AbsTolerance,
			RelTolerance: s.cfg.RelTolerance,
			Budget:       DefaultRequestBudget,
		},
	}
	if req.problem == "" {
		return req, ParamError{Message: "Missing 'problem' parameter", StatusCode: http.StatusBadRequest}
	}
	if req.runner == "" {
		req.runner = "aitken"
	}

	var err error
	if req.opts.AbsTolerance, err = parseTolerance(q, "abs", req.opts.AbsTolerance); err != nil {
		return req, err
	}
	if req.opts.RelTolerance, err = parseTolerance(q, "rel", req.opts.RelTolerance); err != nil {
		return req, err
	}

	if v := q.Get("budget"); v != "" {
		// ParseUint rejects a sign, so negative budgets fail here.
		budget, err := strconv.ParseUint(v, 10, 64)
		if err != nil || budget == 0 {
			return req, ParamError{Message: "Invalid 'budget' parameter: must be a positive integer", StatusCode: http.StatusBadRequest}
		}
		req.opts.Budget = budget
	}

	policy := q.Get("policy")
	if policy == "" {
		policy = s.cfg.Policy
	}
	if policy != "" {
		if req.opts.Policy, err = aitken.ParsePolicy(policy); err != nil {
			return req, ParamError{Message: "Invalid 'policy' parameter: must be propagate, stop or fail", StatusCode: http.StatusBadRequest}
		}
	}
	return req, nil
}

// parseTolerance reads a non-negative finite float parameter.
func parseTolerance(q url.Values, key string, def float64) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f-f != 0 {
		return 0, ParamError{
			Message:    fmt.Sprintf("Invalid '%s' parameter: must be a non-negative number", key),
			StatusCode: http.StatusBadRequest,
		}
	}
	return f, nil
}

// findProblem resolves name against the catalogue of the service.
func (s *Server) findProblem(name string) (problems.Problem, bool) {
	for _, p := range s.service.Problems() {
		if p.Name == name {
			return p, true
		}
	}
	return problems.Problem{}, false
}

// writeJSONResponse writes data as JSON with the given status code.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

// writeErrorResponse writes a standardized error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errResp := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	s.writeJSONResponse(w, statusCode, errResp)
}
