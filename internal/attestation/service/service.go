// Package service implements the attestation trust path: verifier-issued,
// time-bounded claims about a subject's age threshold. This path is fully
// independent of the subject's own commit-reveal verification; an attestation
// neither requires nor affects a verification record.
package service

import (
	"context"
	"errors"
	"log/slog"

	"agegate/internal/attestation/metrics"
	"agegate/internal/attestation/models"
	"agegate/internal/audit"
	"agegate/internal/clock"
	"agegate/internal/platform/tracer"
	"agegate/pkg/attrs"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/sentinel"
	"agegate/pkg/requestcontext"
)

// Store defines the persistence interface for attestations.
// Error Contract: Find returns sentinel.ErrNotFound for an unknown
// (attester, subject) pair; Save upserts per pair.
type Store interface {
	Save(ctx context.Context, a *models.Attestation) error
	Find(ctx context.Context, attester, subject id.Principal) (*models.Attestation, error)
}

// VerifierRegistry gates attestation issuance.
type VerifierRegistry interface {
	IsAuthorized(ctx context.Context, p id.Principal) (bool, error)
}

// AuditPublisher receives attestation audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service issues, revokes, and checks attestations.
type Service struct {
	store     Store
	verifiers VerifierRegistry
	clock     clock.Clock

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         tracer.Tracer
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func NewService(store Store, verifiers VerifierRegistry, clk clock.Clock, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		verifiers: verifiers,
		clock:     clk,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	return svc
}

func (s *Service) now(ctx context.Context) id.Tick {
	if t, ok := requestcontext.Tick(ctx); ok {
		return t
	}
	return s.clock.Now()
}

// Create issues an attestation that the subject meets ageThreshold, valid
// for validDuration ticks from now. Re-issuing for the same subject
// overwrites the attester's previous attestation, revoked or not.
func (s *Service) Create(ctx context.Context, attester, subject id.Principal, ageThreshold, validDuration uint64) (*models.Attestation, error) {
	if attester.IsNil() {
		return nil, dErrors.New(dErrors.CodeVerifierNotAuthorized, "missing attester identity")
	}
	if subject.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	if ageThreshold == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "age threshold must be positive")
	}
	if validDuration == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "validity duration must be positive")
	}

	authorized, err := s.verifiers.IsAuthorized(ctx, attester)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier authorization")
	}
	if !authorized {
		return nil, dErrors.New(dErrors.CodeVerifierNotAuthorized, "attester is not an authorized verifier")
	}

	now := s.now(ctx)
	a := &models.Attestation{
		Attester:     attester,
		Subject:      subject,
		AgeThreshold: ageThreshold,
		Hash:         models.ComputeHash(ageThreshold, now, validDuration),
		CreatedAt:    now,
		ValidUntil:   now.Add(validDuration),
	}
	if err := s.store.Save(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save attestation")
	}

	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
	s.logAudit(ctx, audit.EventAttestationCreated,
		"principal", attester.String(),
		"subject", subject.String(),
		"age_threshold", ageThreshold,
		"decision", "allow",
	)
	return a, nil
}

// Revoke permanently invalidates the caller's attestation for the subject.
// The lookup is keyed by the caller as attester, so a principal can only
// ever revoke its own attestations. Revoking twice is a no-op success.
func (s *Service) Revoke(ctx context.Context, attester, subject id.Principal) error {
	a, err := s.store.Find(ctx, attester, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no attestation from caller for subject")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attestation")
	}

	a.Revoked = true
	if err := s.store.Save(ctx, a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save attestation")
	}

	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	s.logAudit(ctx, audit.EventAttestationRevoked,
		"principal", attester.String(),
		"subject", subject.String(),
		"decision", "revoked",
	)
	return nil
}

// Check reports whether the attester currently vouches for the subject
// meeting the threshold: not revoked, threshold covered, and the validity
// window (inclusive of its last tick) not yet passed. An unknown pair
// simply reports false.
func (s *Service) Check(ctx context.Context, attester, subject id.Principal, threshold uint64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAttestation,
		tracer.String(tracer.AttrSubject, tracer.HashPrincipal(subject.String())),
		tracer.Int64(tracer.AttrThreshold, int64(threshold)),
	)
	var err error
	defer func() { span.End(err) }()

	a, ferr := s.store.Find(ctx, attester, subject)
	if ferr != nil {
		if errors.Is(ferr, sentinel.ErrNotFound) {
			s.incrementChecks("miss")
			return false, nil
		}
		err = dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load attestation")
		return false, err
	}

	ok := a.ActiveAt(threshold, s.now(ctx))
	if ok {
		s.incrementChecks("pass")
	} else {
		s.incrementChecks("fail")
	}
	return ok, nil
}

func (s *Service) incrementChecks(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementChecks(outcome)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
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
