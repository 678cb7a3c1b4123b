// Package service implements the protocol engine: the single writer that
// moves verification records through their lifecycle and the only component
// allowed to move funds between protocol accounts.
package service

import (
	"context"
	"log/slog"
	"sync"

	"agegate/internal/audit"
	"agegate/internal/clock"
	commitmentModels "agegate/internal/commitment/models"
	"agegate/internal/device"
	"agegate/internal/ledger"
	"agegate/internal/platform/tracer"
	rangeproofModels "agegate/internal/rangeproof/models"
	"agegate/internal/verification/metrics"
	"agegate/internal/verification/models"
	id "agegate/pkg/domain"
	"agegate/pkg/requestcontext"
)

// CommitmentStore defines the persistence interface for commitments.
// Error Contract: FindByID and Update return sentinel.ErrNotFound when the
// commitment doesn't exist; Save assigns the id when zero.
type CommitmentStore interface {
	Save(ctx context.Context, c *commitmentModels.Commitment) error
	FindByID(ctx context.Context, verificationID id.VerificationID) (*commitmentModels.Commitment, error)
	Update(ctx context.Context, c *commitmentModels.Commitment) error
}

// RecordStore defines the persistence interface for verification records.
// Error Contract: FindBySubject returns sentinel.ErrNotFound when the
// subject has no record; Save overwrites the subject's slot.
type RecordStore interface {
	Save(ctx context.Context, record *models.Record) error
	FindBySubject(ctx context.Context, subject id.Principal) (*models.Record, error)
}

// VerifierRegistry defines the read interface over the authorized verifier set.
type VerifierRegistry interface {
	IsAuthorized(ctx context.Context, p id.Principal) (bool, error)
}

// RangeProofStore defines the persistence interface for derived range proofs.
// Error Contract: FindBySubject returns sentinel.ErrNotFound when no proof
// was ever derived for the subject.
type RangeProofStore interface {
	Save(ctx context.Context, proof *rangeproofModels.Proof) error
	FindBySubject(ctx context.Context, subject id.Principal) (*rangeproofModels.Proof, error)
}

// AuditPublisher receives protocol audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Config carries the protocol parameters the engine is booted with.
// Fee and bond are mutable at runtime through the owner surface; the
// validity period and account bindings are fixed for the process lifetime.
type Config struct {
	Owner           id.Principal
	OperatorAccount id.Principal
	EscrowAccount   id.Principal

	VerificationFee     uint64
	ProofBond           uint64
	ProofValidityPeriod uint64
}

// Service is the protocol engine.
//
// A single mutex serializes every mutating operation, reproducing the
// globally ordered, one-at-a-time execution model the protocol assumes:
// each call runs to completion, transfers included, before the next
// mutation observes state. Read-only queries go straight to the stores; the
// per-subject record is a single overwrite slot, so a reader sees the last
// fully written record.
type Service struct {
	commitments CommitmentStore
	records     RecordStore
	verifiers   VerifierRegistry
	proofs      RangeProofStore
	ledger      ledger.Ledger
	clock       clock.Clock

	owner           id.Principal
	operatorAccount id.Principal
	escrowAccount   id.Principal
	validityPeriod  uint64

	mu   sync.Mutex
	fee  uint64
	bond uint64

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         tracer.Tracer
	devices        *device.Service
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

// WithDeviceService enables commit/reveal device drift detection.
func WithDeviceService(d *device.Service) Option {
	return func(s *Service) {
		s.devices = d
	}
}

func NewService(
	commitments CommitmentStore,
	records RecordStore,
	verifiers VerifierRegistry,
	proofs RangeProofStore,
	led ledger.Ledger,
	clk clock.Clock,
	cfg Config,
	opts ...Option,
) *Service {
	svc := &Service{
		commitments:     commitments,
		records:         records,
		verifiers:       verifiers,
		proofs:          proofs,
		ledger:          led,
		clock:           clk,
		owner:           cfg.Owner,
		operatorAccount: cfg.OperatorAccount,
		escrowAccount:   cfg.EscrowAccount,
		validityPeriod:  cfg.ProofValidityPeriod,
		fee:             cfg.VerificationFee,
		bond:            cfg.ProofBond,
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

// now returns the tick pinned on the request context when present, falling
// back to the engine clock otherwise.
func (s *Service) now(ctx context.Context) id.Tick {
	if t, ok := requestcontext.Tick(ctx); ok {
		return t
	}
	return s.clock.Now()
}

// currentFee reads the fee under the engine lock.
func (s *Service) currentFee() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fee
}

// currentBond reads the bond under the engine lock.
func (s *Service) currentBond() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bond
}
