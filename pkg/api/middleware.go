package api

import (
	"context"
	"net/http"
	"strings"

	"campusnet/pkg/apperr"
)

type ctxKey int

const callerKey ctxKey = 0

func callerID(ctx context.Context) string {
	id, _ := ctx.Value(callerKey).(string)
	return id
}

// authenticate rejects requests without a valid bearer token and stores the
// caller's id in the request context.
func (h *handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, h.logger, apperr.Unauthorized("Not authorized, no token"))
			return
		}
		id, err := h.users.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, id)))
	})
}

// cors allows the configured origin to call the api from a browser.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
