package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP status codes. Unrecognized
// errors become opaque 500s; the detail stays in the server log.
func writeError(w http.ResponseWriter, err error) {
	var status int
	message := err.Error()

	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateEntry):
		status = http.StatusConflict
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "unauthorized"
	case errors.Is(err, common.ErrUnsupportedFormat),
		errors.Is(err, common.ErrNoTransactions),
		errors.Is(err, common.ErrMissingColumns),
		errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, storage.ErrNilID),
		errors.Is(err, storage.ErrNilParameter):
		status = http.StatusBadRequest
	default:
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			status = http.StatusBadRequest
			message = userErr.Error()
			break
		}
		status = http.StatusInternalServerError
		message = "internal server error"
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return common.NewUserError("invalid request body", err)
	}
	return nil
}
