package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/comanda-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// envelope wraps every response body.
type envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, envelope{Success: true, Data: data, Message: "ok"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeEnvelope(w, status, envelope{Success: false, Message: msg})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	env.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// writeServiceError maps a service error category onto an HTTP status. Errors
// outside the known categories are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("op", op).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request failed")
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrOrderLocked),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrNotReady):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// numericToString renders money with exactly two decimals.
func numericToString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return "0.00"
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
