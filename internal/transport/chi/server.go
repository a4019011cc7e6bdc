// Package chi serves the agricarte REST API on a chi router.
package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain/person"
	"github.com/cen-na/agricarte/internal/domain/usage"
	logpkg "github.com/cen-na/agricarte/internal/logger"
	healthuc "github.com/cen-na/agricarte/internal/usecase/health"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers of the API.
type Server struct {
	persons       PersonSearcher
	sirets        SiretResolver
	contracts     ContractManager
	health        HealthChecker
	usage         UsageReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	persons PersonSearcher,
	sirets SiretResolver,
	contracts ContractManager,
	health HealthChecker,
	usage UsageReporter,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		persons:       persons,
		sirets:        sirets,
		contracts:     contracts,
		health:        health,
		usage:         usage,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts every API route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/search_agriculteur", s.SearchAgriculteur)
		r.Post("/search_referent", s.SearchReferent)
		r.Post("/siret", s.LookupSiret)
		r.Get("/check_existing_contract_by_siret/{siret}", s.CheckExistingContract)

		r.Get("/markers", s.ListMarkers)
		r.Post("/markers/filter", s.FilterMarkers)

		r.Post("/contracts", s.CreateContract)
		r.Get("/contracts/{id}", s.GetContract)
		r.Put("/contracts/{id}", s.UpdateContract)
		r.Delete("/contracts/{id}", s.DeleteContract)

		r.Get("/usage", s.GetUsage)
	})
}

// SearchAgriculteur handles POST /api/search_agriculteur.
func (s *Server) SearchAgriculteur(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	found, err := s.persons.Search(r.Context(), person.Agriculteur, req.SearchTerm)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agriculteursToResponse(found))
}

// SearchReferent handles POST /api/search_referent.
func (s *Server) SearchReferent(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	found, err := s.persons.Search(r.Context(), person.Referent, req.SearchTerm)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, referentsToResponse(found))
}

// LookupSiret handles POST /api/siret.
func (s *Server) LookupSiret(w http.ResponseWriter, r *http.Request) {
	var req siretRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, siretErrorResponse{Error: "Requête invalide."})
		return
	}
	lookup, err := s.sirets.Lookup(r.Context(), req.Siret)
	if err != nil {
		s.handleSiretError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lookupToResponse(lookup))
}

// CheckExistingContract handles GET /api/check_existing_contract_by_siret/{siret}.
func (s *Server) CheckExistingContract(w http.ResponseWriter, r *http.Request) {
	existing, err := s.sirets.CheckExisting(r.Context(), chi.URLParam(r, "siret"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, existingContractResponse{
		Exists:     existing.Exists,
		ContractID: existing.ContractID,
		NomSociete: existing.NomSociete,
	})
}

// ListMarkers handles GET /api/markers.
func (s *Server) ListMarkers(w http.ResponseWriter, r *http.Request) {
	data, err := s.contracts.Markers(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// FilterMarkers handles POST /api/markers/filter.
func (s *Server) FilterMarkers(w http.ResponseWriter, r *http.Request) {
	var req criteriaRequest
	if !s.decode(w, r, &req) {
		return
	}
	criteria, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidCriteria, err.Error())
		return
	}
	res, err := s.contracts.Filter(r.Context(), criteria)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterResponse{IDs: res.IDs, Matched: res.Matched, Total: res.Total})
}

// CreateContract handles POST /api/contracts.
func (s *Server) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := req.toDomain()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	created, err := s.contracts.Register(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/contracts/%s", created.ID))
	writeJSON(w, http.StatusCreated, created.MarkerData())
}

// GetContract handles GET /api/contracts/{id}.
func (s *Server) GetContract(w http.ResponseWriter, r *http.Request) {
	r, id := withContractID(r)
	c, err := s.contracts.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contractToResponse(c))
}

// UpdateContract handles PUT /api/contracts/{id}.
func (s *Server) UpdateContract(w http.ResponseWriter, r *http.Request) {
	r, id := withContractID(r)
	var req contractRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := req.toDomain()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	updated, err := s.contracts.Update(r.Context(), id, c)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated.MarkerData())
}

// DeleteContract handles DELETE /api/contracts/{id}.
func (s *Server) DeleteContract(w http.ResponseWriter, r *http.Request) {
	r, id := withContractID(r)
	if err := s.contracts.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// GetUsage handles GET /api/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := usage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(s.usage.Report(r.Context(), period)))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// withContractID tags the request logger with the {id} URL parameter.
func withContractID(r *http.Request) (*http.Request, string) {
	id := chi.URLParam(r, "id")
	return r.WithContext(logpkg.With(r.Context(), zap.String("contract_id", id))), id
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l := logpkg.FromContext(r.Context()); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}
