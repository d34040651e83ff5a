package presenter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/chatsts/internal/service"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	correlationID, _ := r.Context().Value("correlation_id").(string)
	resp := ErrorResponse{
		Error:         msg,
		CorrelationID: correlationID,
	}
	JSON(w, r, resp, status)
}

// Err writes err as an error response. Only the public message of a service.HTTPError
// reaches the caller, anything else becomes an opaque internal server error.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	var httpError *service.HTTPError
	if errors.As(err, &httpError) {
		Error(w, r, httpError.Message, httpError.StatusCode)
		return
	}
	Error(w, r, "internal server error", http.StatusInternalServerError)
}
