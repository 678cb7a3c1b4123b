package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"agegate/internal/audit"
	"agegate/internal/clock"
	commitmentStore "agegate/internal/commitment/store"
	"agegate/internal/ledger"
	rangeproofStore "agegate/internal/rangeproof/store"
	verificationStore "agegate/internal/verification/store"
	verifierStore "agegate/internal/verifier/store"
	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
)

// The engine suite wires real in-memory implementations of every port: the
// protocol is a deterministic state machine over its stores and the ledger,
// so exercising the real implementations end to end gives stronger coverage
// than mocking the seams.

const (
	testOwner    = id.Principal("owner")
	testOperator = id.Principal("operator")
	testEscrow   = id.Principal("escrow")
	testSubject  = id.Principal("alice")
	testVerifier = id.Principal("victor")

	testFee    = uint64(10)
	testBond   = uint64(50)
	testPeriod = uint64(100)

	startTick = id.Tick(1000)
)

type EngineSuite struct {
	suite.Suite
	commitments *commitmentStore.InMemoryStore
	records     *verificationStore.InMemoryStore
	verifiers   *verifierStore.InMemoryStore
	proofs      *rangeproofStore.InMemoryStore
	ledger      *ledger.InMemoryLedger
	clk         *clock.Manual
	auditStore  *audit.InMemoryStore
	service     *Service
}

func (s *EngineSuite) SetupTest() {
	s.commitments = commitmentStore.New()
	s.records = verificationStore.New()
	s.verifiers = verifierStore.New()
	s.proofs = rangeproofStore.New()
	s.ledger = ledger.NewInMemoryLedger()
	s.clk = clock.NewManual(startTick)
	s.auditStore = audit.NewInMemoryStore()

	s.service = NewService(
		s.commitments,
		s.records,
		s.verifiers,
		s.proofs,
		s.ledger,
		s.clk,
		Config{
			Owner:               testOwner,
			OperatorAccount:     testOperator,
			EscrowAccount:       testEscrow,
			VerificationFee:     testFee,
			ProofBond:           testBond,
			ProofValidityPeriod: testPeriod,
		},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
	)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

// Shared fixture helpers.

func (s *EngineSuite) seed(p id.Principal, amount uint64) {
	s.ledger.Credit(p, amount)
}

func (s *EngineSuite) balance(p id.Principal) uint64 {
	bal, err := s.ledger.Balance(context.Background(), p)
	s.Require().NoError(err)
	return bal
}

// commit funds the subject and creates a commitment for (age, threshold),
// returning the allocated id and the salt needed to reveal it.
func (s *EngineSuite) commit(subject id.Principal, age, threshold uint64) (id.VerificationID, []byte) {
	s.T().Helper()
	salt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	digest := commitment.Digest(age, threshold, salt)

	s.seed(subject, testFee)
	vid, err := s.service.CreateCommitment(context.Background(), subject, threshold, digest[:], salt)
	s.Require().NoError(err)
	return vid, salt
}

// reveal funds the bond and submits a passing proof for the commitment.
func (s *EngineSuite) reveal(subject id.Principal, vid id.VerificationID, age uint64, salt []byte) {
	s.T().Helper()
	s.seed(subject, testBond)
	s.Require().NoError(s.service.SubmitProof(context.Background(), subject, vid, age, salt))
}

// authorize puts a principal in the verifier registry directly.
func (s *EngineSuite) authorize(p id.Principal) {
	s.T().Helper()
	s.Require().NoError(s.verifiers.SetAuthorized(context.Background(), p, true))
}

// auditActions lists the recorded audit actions for a subject in order.
func (s *EngineSuite) auditActions(subject id.Principal) []string {
	events, err := s.auditStore.ListBySubject(context.Background(), subject.String())
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}
