package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"shareit/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindAlreadyExists:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotAvailable, domain.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError reports classified errors verbatim. Anything else is
// logged and answered with an opaque 500.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		writeError(w, statusFor(de.Kind), de.Message)
		return
	}

	s.logger.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", requestID(r.Context())).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation.Withf("request body is required")
		}
		return domain.ErrValidation.Withf("invalid JSON body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrValidation.Withf("invalid id %q", raw)
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrValidation.Withf("query parameter %s must be a number", name)
	}
	return v, nil
}

func pageParams(r *http.Request, defaultSize int) (from, size int, err error) {
	if from, err = queryInt(r, "from", 0); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(r, "size", defaultSize); err != nil {
		return 0, 0, err
	}
	return from, size, nil
}

func stateParam(r *http.Request) string {
	if !r.URL.Query().Has("state") {
		return "ALL"
	}
	return r.URL.Query().Get("state")
}
