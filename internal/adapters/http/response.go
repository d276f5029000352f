package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/contracts"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message, detail string) {
	writeJSON(w, statusCode, contracts.ErrorResponse{OK: false, Error: message, Detail: detail})
}

// mapDomainError translates domain sentinels to the error taxonomy:
// validation 400, not-found 404, conflict 409, authorization 403,
// upstream 502 with the upstream body as detail.
func mapDomainError(err error) (int, string, string) {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrNoNumberOnFile):
		return http.StatusNotFound, domain.ErrNoNumberOnFile.Error(), ""
	case errors.Is(err, domain.ErrSignatureRequired):
		return http.StatusConflict, domain.ErrSignatureRequired.Error(), ""
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, "version conflict", ""
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error(), ""
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error(), ""
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error(), ""
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", ""
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "upstream dependency failed", upstream.Detail
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream dependency failed", err.Error()
	default:
		return http.StatusInternalServerError, "internal error", ""
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, message, detail := mapDomainError(err)
	writeError(w, status, message, detail)
}
