// Package admin is the owner-facing surface of the protocol: verifier registry
// management plus a thin front over the engine's owner-gated operations. Every
// operation here requires the configured owner principal; verifier management
// is checked locally, the delegated engine operations carry the caller through
// so the engine performs its own check.
package admin

import (
	"context"
	"log/slog"

	"agegate/internal/audit"
	"agegate/internal/clock"
	"agegate/pkg/attrs"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/requestcontext"
)

// VerifierRegistry is the writable view of the verifier set.
type VerifierRegistry interface {
	SetAuthorized(ctx context.Context, p id.Principal, authorized bool) error
	List(ctx context.Context) ([]id.Principal, error)
}

// Engine is the subset of the verification engine the owner operates through
// this service. All four operations enforce caller == owner themselves.
type Engine interface {
	SetVerificationFee(ctx context.Context, caller id.Principal, amount uint64) error
	SetProofBond(ctx context.Context, caller id.Principal, amount uint64) error
	EmergencyRevoke(ctx context.Context, caller, subject id.Principal) error
	WithdrawFees(ctx context.Context, caller id.Principal) (uint64, error)
}

// AuditPublisher receives verifier management audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service provides owner-gated protocol administration.
type Service struct {
	verifiers VerifierRegistry
	engine    Engine
	owner     id.Principal
	clock     clock.Clock

	logger         *slog.Logger
	auditPublisher AuditPublisher
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func NewService(verifiers VerifierRegistry, engine Engine, owner id.Principal, clk clock.Clock, opts ...Option) *Service {
	svc := &Service{
		verifiers: verifiers,
		engine:    engine,
		owner:     owner,
		clock:     clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func (s *Service) now(ctx context.Context) id.Tick {
	if t, ok := requestcontext.Tick(ctx); ok {
		return t
	}
	return s.clock.Now()
}

func (s *Service) requireOwner(caller id.Principal) error {
	if caller != s.owner {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the contract owner")
	}
	return nil
}

// InitializeVerifiers authorizes the given principals in bulk. The operation
// is idempotent: principals that are already authorized stay authorized, and
// a retry after a partial failure re-applies the full set.
func (s *Service) InitializeVerifiers(ctx context.Context, caller id.Principal, verifiers []id.Principal) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	for _, v := range verifiers {
		if v.IsNil() {
			return dErrors.New(dErrors.CodeInvalidInput, "verifier principal is required")
		}
	}

	for _, v := range verifiers {
		if err := s.verifiers.SetAuthorized(ctx, v, true); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to authorize verifier")
		}
		s.logAudit(ctx, audit.EventVerifierUpdated,
			"principal", caller.String(),
			"subject", v.String(),
			"decision", "authorized",
			"reason", "bulk initialization",
		)
	}
	return nil
}

// ManageVerifier authorizes or deauthorizes a single verifier. Deauthorizing
// stops future validations and attestations; records already validated by the
// verifier are untouched.
func (s *Service) ManageVerifier(ctx context.Context, caller, verifier id.Principal, authorized bool) error {
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if verifier.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "verifier principal is required")
	}

	if err := s.verifiers.SetAuthorized(ctx, verifier, authorized); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verifier")
	}

	decision := "authorized"
	if !authorized {
		decision = "deauthorized"
	}
	s.logAudit(ctx, audit.EventVerifierUpdated,
		"principal", caller.String(),
		"subject", verifier.String(),
		"decision", decision,
	)
	return nil
}

// ListVerifiers returns the currently authorized verifier set.
func (s *Service) ListVerifiers(ctx context.Context, caller id.Principal) ([]id.Principal, error) {
	if err := s.requireOwner(caller); err != nil {
		return nil, err
	}
	verifiers, err := s.verifiers.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifiers")
	}
	return verifiers, nil
}

// SetVerificationFee updates the fee charged on commitment creation.
func (s *Service) SetVerificationFee(ctx context.Context, caller id.Principal, amount uint64) error {
	return s.engine.SetVerificationFee(ctx, caller, amount)
}

// SetProofBond updates the bond required to submit a proof.
func (s *Service) SetProofBond(ctx context.Context, caller id.Principal, amount uint64) error {
	return s.engine.SetProofBond(ctx, caller, amount)
}

// EmergencyRevoke forces a subject's verification record to revoked.
func (s *Service) EmergencyRevoke(ctx context.Context, caller, subject id.Principal) error {
	return s.engine.EmergencyRevoke(ctx, caller, subject)
}

// WithdrawFees sweeps the operator and escrow balances to the owner and
// returns the total amount moved.
func (s *Service) WithdrawFees(ctx context.Context, caller id.Principal) (uint64, error) {
	return s.engine.WithdrawFees(ctx, caller)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Tick:      s.now(ctx),
		Principal: attrs.ExtractString(attributes, "principal"),
		Subject:   attrs.ExtractString(attributes, "subject"),
		Action:    string(event),
		Decision:  attrs.ExtractString(attributes, "decision"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
	}
}
