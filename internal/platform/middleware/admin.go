package middleware

import (
	"log/slog"
	"net/http"

	"agegate/pkg/requestcontext"
	"agegate/pkg/secrets"
)

// RequireAdminKey returns middleware that gates a route group on the
// X-Admin-Key header. Only the bcrypt hash of the key is kept in
// configuration; the plaintext never touches disk.
func RequireAdminKey(keyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Admin-Key")
			if key == "" || keyHash == "" || secrets.Verify(key, keyHash) != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin key rejected",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin key required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
