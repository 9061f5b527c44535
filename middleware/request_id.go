package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// PropagateRequestID copies the chi-generated request id into our own
// context key so handlers and middleware can log it without importing chi.
// Must be mounted after chi's RequestID middleware.
func PropagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(WithRequestID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}
