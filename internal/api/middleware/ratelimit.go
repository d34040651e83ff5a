package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/chatsts/internal/api/presenter"
)

const TooManyRequestsMessage = "Too many requests, please try again later."

// RateLimit allows requests per window for each client IP.
// A non-positive requests value disables limiting.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			log.Ctx(r.Context()).Warn().Msg("rate limit exceeded")
			presenter.Error(w, r, TooManyRequestsMessage, http.StatusTooManyRequests)
		}),
	)
}
