package device

import (
	"net/http"

	"agegate/pkg/requestcontext"
)

// Config holds configuration for the Device middleware.
type Config struct {
	// FingerprintFn computes a device fingerprint from the User-Agent string.
	// This is typically device.Service.ComputeFingerprint.
	FingerprintFn func(userAgent string) string
}

// Device pre-computes the device fingerprint for the request.
// It should be registered after the metadata middleware (which extracts
// the User-Agent into context).
func Device(cfg *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cfg.FingerprintFn != nil {
				userAgent := requestcontext.UserAgent(ctx)
				if userAgent != "" {
					fingerprint := cfg.FingerprintFn(userAgent)
					ctx = requestcontext.WithDeviceFingerprint(ctx, fingerprint)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
