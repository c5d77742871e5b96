package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

type errorResponse struct {
	Error   string          `json:"error"`
	Failure *domain.Failure `json:"failure,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure renders err with the status its failure kind maps to.
func writeFailure(w http.ResponseWriter, err error) {
	f := domain.AsFailure(err)
	if f == nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, statusFor(f), errorResponse{Error: f.Error(), Failure: f})
}

// statusFor maps a failure kind to an HTTP status.
func statusFor(f *domain.Failure) int {
	switch {
	case errors.Is(f, domain.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(f, domain.ErrPathNotFound):
		return http.StatusNotFound
	case errors.Is(f, domain.ErrToolNotFound):
		return http.StatusServiceUnavailable
	case errors.Is(f, domain.ErrProcessTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
