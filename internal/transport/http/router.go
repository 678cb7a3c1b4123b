// Package httptransport assembles the HTTP surface: the middleware chain and
// the three route tiers (public queries, token-protected protocol operations,
// and the owner surface behind token plus admin key). Handlers live with their
// features; this package only mounts them.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attestationHandler "agegate/internal/attestation/handler"
	"agegate/internal/clock"
	eligibilityHandler "agegate/internal/eligibility/handler"
	"agegate/internal/platform/health"
	"agegate/internal/platform/middleware"
	verificationHandler "agegate/internal/verification/handler"
	"agegate/pkg/platform/middleware/auth"
	"agegate/pkg/platform/middleware/device"
	"agegate/pkg/platform/middleware/metadata"
)

// AdminHandler is implemented by the owner surface; declared here so the
// router does not depend on the admin package directly.
type AdminHandler interface {
	Register(r chi.Router)
}

// Config carries everything the router mounts. All handlers are required
// except Health, which is skipped when nil (tests that exercise only the
// protocol surface).
type Config struct {
	Logger         *slog.Logger
	Clock          clock.Clock
	TokenValidator auth.ClaimsValidator
	AdminKeyHash   string

	// TrustedProxies are the CIDR ranges allowed to set forwarding headers.
	// Empty means client IPs always come from the direct connection.
	TrustedProxies []netip.Prefix

	// FingerprintFn pre-computes the device fingerprint from the User-Agent.
	// Nil disables device binding for proofs.
	FingerprintFn func(userAgent string) string

	Verification *verificationHandler.Handler
	Attestation  *attestationHandler.Handler
	Eligibility  *eligibilityHandler.Handler
	Admin        AdminHandler
	Health       *health.Handler
}

// NewRouter wires all endpoints with middleware.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTick(cfg.Clock))
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)
	r.Use(device.Device(&device.Config{FingerprintFn: cfg.FingerprintFn}))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	// Verification state is world-readable; queries carry no caller.
	r.Group(func(r chi.Router) {
		cfg.Verification.RegisterQueries(r)
		cfg.Attestation.RegisterQueries(r)
	})

	// Protocol operations act on behalf of the authenticated principal.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.TokenValidator, cfg.Logger))
		cfg.Verification.Register(r)
		cfg.Attestation.Register(r)
		cfg.Eligibility.Register(r)
	})

	// The owner surface requires the admin key on top of the bearer token; the
	// admin service still checks caller == owner.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.TokenValidator, cfg.Logger))
		r.Use(middleware.RequireAdminKey(cfg.AdminKeyHash, cfg.Logger))
		cfg.Admin.Register(r)
	})

	return r
}
