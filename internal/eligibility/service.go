// Package eligibility answers the compound question relying parties actually
// ask: "may this subject through at this threshold?" It consults the
// self-sovereign verification path and, when an attester is named, the
// attestation path, and allows if either vouches. The engine performs no
// mutation; a failing path degrades to the other rather than failing the
// evaluation.
package eligibility

import (
	"context"
	"log/slog"
	"time"

	"agegate/internal/audit"
	"agegate/internal/clock"
	"agegate/internal/eligibility/metrics"
	"agegate/internal/eligibility/ports"
	"agegate/internal/platform/tracer"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/requestcontext"
)

// evaluateTimeout bounds the whole evaluation; both paths share it.
const evaluateTimeout = 3 * time.Second

// AuditPublisher receives eligibility decision events.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service evaluates subject eligibility across the available trust paths.
type Service struct {
	verifications ports.VerificationPort
	attestations  ports.AttestationPort
	clock         clock.Clock

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

// New creates the eligibility engine. Both ports are required; panic at
// startup beats a nil dereference on the first request.
func New(verifications ports.VerificationPort, attestations ports.AttestationPort, clk clock.Clock, opts ...Option) *Service {
	if verifications == nil {
		panic("eligibility.New: verification port is required")
	}
	if attestations == nil {
		panic("eligibility.New: attestation port is required")
	}

	s := &Service{
		verifications: verifications,
		attestations:  attestations,
		clock:         clk,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = tracer.NewNoop()
	}
	return s
}

func (s *Service) now(ctx context.Context) id.Tick {
	if t, ok := requestcontext.Tick(ctx); ok {
		return t
	}
	return s.clock.Now()
}

// Evaluate runs the consulted paths in parallel and combines their answers.
// Allow requires exactly one thing: some path vouched. Deny distinguishes
// "checked and refused" from "could not check" through the reason.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*Decision, error) {
	if req.Subject.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	if req.Threshold == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "age threshold must be positive")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanEligibility,
		tracer.String(tracer.AttrSubject, tracer.HashPrincipal(req.Subject.String())),
		tracer.Int64(tracer.AttrThreshold, int64(req.Threshold)),
	)
	defer span.End(nil)

	// One tick for the whole evaluation: both paths and the decision report
	// the same logical time.
	evalTick := s.now(ctx)
	ctx = requestcontext.WithTick(ctx, evalTick)

	paths := s.gatherPaths(ctx, req)
	decision := s.decide(req, paths, evalTick)

	span.SetAttributes(tracer.String("outcome", string(decision.Outcome)))
	if s.metrics != nil {
		s.metrics.IncrementDecisions(string(decision.Outcome))
	}
	s.emitAudit(ctx, req, decision)
	return decision, nil
}

func (s *Service) decide(req EvaluateRequest, paths pathResults, evalTick id.Tick) *Decision {
	d := &Decision{
		Threshold:    req.Threshold,
		Verification: paths.verification,
		Attestation:  paths.attestation,
		EvaluatedAt:  evalTick,
	}

	switch {
	case paths.verification.Passed:
		d.Outcome, d.Reason = OutcomeAllow, ReasonVerificationPath
	case paths.attestation.Passed:
		d.Outcome, d.Reason = OutcomeAllow, ReasonAttestationPath
	case paths.allDegraded():
		d.Outcome, d.Reason = OutcomeDeny, ReasonPathsUnavailable
	default:
		d.Outcome, d.Reason = OutcomeDeny, ReasonNotEligible
	}
	return d
}

// emitAudit records the decision best-effort; eligibility is advisory and a
// sink outage must not block the answer.
func (s *Service) emitAudit(ctx context.Context, req EvaluateRequest, decision *Decision) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Tick:      decision.EvaluatedAt,
		Subject:   req.Subject.String(),
		Action:    string(audit.EventEligibilityEvaluated),
		Decision:  string(decision.Outcome),
		Reason:    string(decision.Reason),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit eligibility audit event",
			"error", err,
			"subject", req.Subject,
		)
	}
}
