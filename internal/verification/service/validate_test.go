package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agegate/internal/audit"
	"agegate/internal/verification/models"
	dErrors "agegate/pkg/domain-errors"
)

func (s *EngineSuite) TestValidateApproveRefundsBond() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.reveal(testSubject, vid, 25, salt)
	s.authorize(testVerifier)

	err := s.service.Validate(context.Background(), testVerifier, testSubject, true)
	s.Require().NoError(err)

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(models.StatusValidated, rec.Status)
	s.Require().NotNil(rec.Verifier)
	s.Equal(testVerifier, *rec.Verifier)

	// The full bond comes back to the subject; escrow is empty again.
	s.Equal(testBond, s.balance(testSubject))
	s.Zero(s.balance(testEscrow))
	s.Contains(s.auditActions(testSubject), string(audit.EventVerificationValidated))
}

func (s *EngineSuite) TestValidateRejectKeepsBondInEscrow() {
	vid, salt := s.commit(testSubject, 25, 18)
	s.reveal(testSubject, vid, 25, salt)
	s.authorize(testVerifier)

	err := s.service.Validate(context.Background(), testVerifier, testSubject, false)
	s.Require().NoError(err)

	rec, err := s.records.FindBySubject(context.Background(), testSubject)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, rec.Status)
	s.Require().NotNil(rec.Verifier)
	s.Equal(testVerifier, *rec.Verifier)

	s.Equal(testBond, s.balance(testEscrow))
	s.Zero(s.balance(testSubject))
	s.Contains(s.auditActions(testSubject), string(audit.EventVerificationRejected))
}

func (s *EngineSuite) TestValidatePreconditions() {
	vid, salt := s.commit(testSubject, 25, 18)

	s.T().Run("unauthorized verifier is rejected", func(t *testing.T) {
		err := s.service.Validate(context.Background(), testVerifier, testSubject, true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeVerifierNotAuthorized))
	})

	s.T().Run("unknown subject returns not found", func(t *testing.T) {
		s.authorize(testVerifier)
		err := s.service.Validate(context.Background(), testVerifier, "nobody", true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("pending record is not validatable", func(t *testing.T) {
		err := s.service.Validate(context.Background(), testVerifier, testSubject, true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidProof))
	})

	s.T().Run("validated record is terminal", func(t *testing.T) {
		s.reveal(testSubject, vid, 25, salt)
		require.NoError(t, s.service.Validate(context.Background(), testVerifier, testSubject, true))
		err := s.service.Validate(context.Background(), testVerifier, testSubject, false)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidProof))

		rec, ferr := s.records.FindBySubject(context.Background(), testSubject)
		require.NoError(t, ferr)
		assert.Equal(t, models.StatusValidated, rec.Status, "a failed second decision must not flip the outcome")
	})
}

func (s *EngineSuite) TestValidateBalanceConservation() {
	// Approving moves exactly the bond amount and nothing else: total supply
	// across all protocol accounts is conserved through the whole lifecycle.
	vid, salt := s.commit(testSubject, 25, 18)
	s.reveal(testSubject, vid, 25, salt)
	s.authorize(testVerifier)

	total := s.balance(testSubject) + s.balance(testOperator) + s.balance(testEscrow)
	s.Require().NoError(s.service.Validate(context.Background(), testVerifier, testSubject, true))
	after := s.balance(testSubject) + s.balance(testOperator) + s.balance(testEscrow)
	s.Equal(total, after)
	s.Equal(testBond, s.balance(testSubject))
}
