package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		detailedHandler(domain.ErrInvalidSiret, http.StatusBadRequest, codeInvalidSiret),
		detailedHandler(domain.ErrInvalidContract, http.StatusBadRequest, codeValidationFailed),
		detailedHandler(domain.ErrInvalidCriteria, http.StatusBadRequest, codeInvalidCriteria),
		sentinelHandler(domain.ErrSiretNotFound, http.StatusNotFound, codeSiretNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrSireneQuotaExceeded, http.StatusTooManyRequests, codeQuotaExceeded),
		sentinelHandler(domain.ErrSireneUnavailable, http.StatusBadGateway, codeSireneUnavailable),
	}
}

// sentinelHandler matches a single sentinel and answers with its message only.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// detailedHandler matches a client-fault sentinel whose message only carries request data.
func detailedHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// siretMessages are the French messages the contract form shows verbatim.
var siretMessages = []struct {
	sentinel error
	status   int
	message  string
}{
	{domain.ErrInvalidSiret, http.StatusBadRequest, "Le numéro SIRET est invalide."},
	{domain.ErrSiretNotFound, http.StatusNotFound, "Aucun établissement trouvé."},
	{domain.ErrSireneQuotaExceeded, http.StatusTooManyRequests, "Quota API SIRENE atteint."},
	{domain.ErrSireneUnavailable, http.StatusBadGateway, "Erreur API SIRENE."},
}

// handleSiretError writes the {"error"} envelope of POST /api/siret.
func (s *Server) handleSiretError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	for _, m := range siretMessages {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		msg := m.message
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			msg = "Erreur API : " + http.StatusText(ue.Status)
		}
		log.Warn("siret lookup failed", zap.Error(err))
		writeJSON(w, m.status, siretErrorResponse{Error: msg})
		return
	}
	log.Error("siret lookup failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, siretErrorResponse{Error: "Erreur serveur."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
