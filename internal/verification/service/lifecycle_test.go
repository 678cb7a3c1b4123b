package service

import (
	"context"

	"agegate/internal/verification/models"
	"agegate/pkg/commitment"
	dErrors "agegate/pkg/domain-errors"
)

// TestFullLifecycle walks the protocol end to end: commit, reveal, verifier
// approval, range derivation, and read-time expiry, asserting funds and
// statuses at each step.
func (s *EngineSuite) TestFullLifecycle() {
	ctx := context.Background()

	// Subject commits to proving age >= 18 with actual age 25.
	salt, err := commitment.GenerateSalt()
	s.Require().NoError(err)
	digest := commitment.Digest(25, 18, salt)
	s.seed(testSubject, testFee+testBond)

	vid, err := s.service.CreateCommitment(ctx, testSubject, 18, digest[:], salt)
	s.Require().NoError(err)

	// Reveal passes: digest matches and 25 >= 18.
	s.Require().NoError(s.service.SubmitProof(ctx, testSubject, vid, 25, salt))
	resp, err := s.service.Status(ctx, testSubject)
	s.Require().NoError(err)
	s.Equal(string(models.StatusVerified), resp.Status)

	// An unauthorized principal cannot validate.
	err = s.service.Validate(ctx, "impostor", testSubject, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVerifierNotAuthorized))

	// The owner authorizes a verifier, who approves: bond comes home.
	s.authorize(testVerifier)
	s.Require().NoError(s.service.Validate(ctx, testVerifier, testSubject, true))
	resp, err = s.service.Status(ctx, testSubject)
	s.Require().NoError(err)
	s.Equal(string(models.StatusValidated), resp.Status)
	s.Equal(testBond, s.balance(testSubject))

	// Validated strong assurance unlocks range derivation.
	s.Require().NoError(s.service.VerifyAgeRange(ctx, testSubject, 18, 65, []byte("proof-data")))
	proof, err := s.service.RangeProof(ctx, testSubject)
	s.Require().NoError(err)
	s.True(proof.Valid)
	s.Equal(uint64(18), proof.MinAgeVerified)
	s.Equal(uint64(65), proof.MaxAgeVerified)

	ok, err := s.service.CheckAgeThreshold(ctx, testSubject, 18)
	s.Require().NoError(err)
	s.True(ok)

	// The validity window lapses: every read-side answer degrades together.
	s.clk.Advance(testPeriod + 1)

	ok, err = s.service.CheckAgeThreshold(ctx, testSubject, 18)
	s.Require().NoError(err)
	s.False(ok)

	resp, err = s.service.Status(ctx, testSubject)
	s.Require().NoError(err)
	s.Equal(string(models.StatusExpired), resp.Status)

	proof, err = s.service.RangeProof(ctx, testSubject)
	s.Require().NoError(err)
	s.False(proof.Valid)
	s.Zero(proof.MinAgeVerified)
	s.Zero(proof.MaxAgeVerified)
}
