package service

import (
	"context"

	"agegate/internal/audit"
	"agegate/pkg/attrs"
	"agegate/pkg/requestcontext"
)

// Observability helpers for logging, auditing, and metrics.
// These methods are on *Service to access logger, auditPublisher, and metrics.

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	// Add request_id from context if available
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
		Tick:              s.now(ctx),
		Principal:         attrs.ExtractString(attributes, "principal"),
		Subject:           attrs.ExtractString(attributes, "subject"),
		Action:            string(event),
		Decision:          attrs.ExtractString(attributes, "decision"),
		Reason:            attrs.ExtractString(attributes, "reason"),
		RequestID:         requestID,
		DeviceFingerprint: requestcontext.DeviceFingerprint(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
	}
}

// proofFailureAttrs holds parsed attributes for proof rejection events.
// Extracted once and reused for both logging and audit emission.
type proofFailureAttrs struct {
	requestID string
	subject   string
	caller    string
}

// parseProofFailureAttrs extracts common attributes from the variadic list.
func parseProofFailureAttrs(ctx context.Context, attributes []any) proofFailureAttrs {
	return proofFailureAttrs{
		requestID: requestcontext.RequestID(ctx),
		subject:   attrs.ExtractString(attributes, "subject"),
		caller:    attrs.ExtractString(attributes, "principal"),
	}
}

// proofFailure records a rejected proof across all three observability
// surfaces: structured log, audit trail, and the rejection counter.
func (s *Service) proofFailure(ctx context.Context, reason string, attributes ...any) {
	parsed := parseProofFailureAttrs(ctx, attributes)
	s.logProofFailure(ctx, reason, parsed, attributes)
	s.emitProofFailure(ctx, reason, parsed)
	if s.metrics != nil {
		s.metrics.IncrementProofsRejected()
	}
}

func (s *Service) logProofFailure(ctx context.Context, reason string, parsed proofFailureAttrs, attributes []any) {
	if s.logger == nil {
		return
	}
	if parsed.requestID != "" {
		attributes = append(attributes, "request_id", parsed.requestID)
	}
	args := append(attributes, "event", audit.EventProofRejected, "reason", reason, "log_type", "standard")
	s.logger.WarnContext(ctx, string(audit.EventProofRejected), args...)
}

func (s *Service) emitProofFailure(ctx context.Context, reason string, parsed proofFailureAttrs) {
	if s.auditPublisher == nil {
		return
	}

	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Tick:              s.now(ctx),
		Principal:         parsed.caller,
		Subject:           parsed.subject,
		Action:            string(audit.EventProofRejected),
		Reason:            reason,
		Decision:          "denied",
		RequestID:         parsed.requestID,
		DeviceFingerprint: requestcontext.DeviceFingerprint(ctx),
	}); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit proof rejection audit event", "error", err)
	}
}

// incrementCommitmentsCreated increments the commitment counter if metrics are enabled
func (s *Service) incrementCommitmentsCreated() {
	if s.metrics != nil {
		s.metrics.IncrementCommitmentsCreated()
	}
}

// incrementProofsSubmitted increments the submission counter if metrics are enabled
func (s *Service) incrementProofsSubmitted() {
	if s.metrics != nil {
		s.metrics.IncrementProofsSubmitted()
	}
}

// incrementProofsAccepted increments the acceptance counter if metrics are enabled
func (s *Service) incrementProofsAccepted() {
	if s.metrics != nil {
		s.metrics.IncrementProofsAccepted()
	}
}

// incrementValidations records a validation decision if metrics are enabled
func (s *Service) incrementValidations(decision string) {
	if s.metrics != nil {
		s.metrics.IncrementValidations(decision)
	}
}

// incrementRevocations increments the revocation counter if metrics are enabled
func (s *Service) incrementRevocations() {
	if s.metrics != nil {
		s.metrics.IncrementRevocations()
	}
}

// incrementRangeProofsDerived increments the derivation counter if metrics are enabled
func (s *Service) incrementRangeProofsDerived() {
	if s.metrics != nil {
		s.metrics.IncrementRangeProofsDerived()
	}
}

// incrementThresholdChecks records a threshold check outcome if metrics are enabled
func (s *Service) incrementThresholdChecks(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementThresholdChecks(outcome)
	}
}

// incrementDeviceDrift increments the device drift counter if metrics are enabled
func (s *Service) incrementDeviceDrift() {
	if s.metrics != nil {
		s.metrics.IncrementDeviceDrift()
	}
}

// observeSubmitProofDuration records the duration of a proof submission
func (s *Service) observeSubmitProofDuration(durationMs float64) {
	if s.metrics != nil {
		s.metrics.ObserveSubmitProofDuration(durationMs)
	}
}

// recordBondPosted adds to the posted bond totals if metrics are enabled
func (s *Service) recordBondPosted(amount uint64) {
	if s.metrics != nil {
		s.metrics.AddBondsPosted(amount)
	}
}

// recordBondRefunded adds to the refunded bond totals if metrics are enabled
func (s *Service) recordBondRefunded(amount uint64) {
	if s.metrics != nil {
		s.metrics.AddBondsRefunded(amount)
	}
}

// recordBondForfeited adds to the forfeited bond totals if metrics are enabled
func (s *Service) recordBondForfeited(amount uint64) {
	if s.metrics != nil {
		s.metrics.AddBondsForfeited(amount)
	}
}

// recordFeeCollected adds to the collected fee totals if metrics are enabled
func (s *Service) recordFeeCollected(amount uint64) {
	if s.metrics != nil {
		s.metrics.AddFeesCollected(amount)
	}
}
