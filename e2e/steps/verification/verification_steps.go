//go:build e2e

package verification

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/cucumber/godog"

	"agegate/pkg/commitment"
)

// TestContext is the slice of the shared test context these steps need.
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	AuthHeaders(principal string) (map[string]string, error)
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers the commit-reveal protocol steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{
		tc:          tc,
		commitments: make(map[string]*subjectCommitment),
	}

	// Protocol mutations
	ctx.Step(`^"([^"]*)" commits to age (\d+) against threshold (\d+)$`, steps.commit)
	ctx.Step(`^"([^"]*)" reveals the committed age$`, steps.reveal)
	ctx.Step(`^"([^"]*)" reveals age (\d+) instead$`, steps.revealAge)
	ctx.Step(`^"([^"]*)" tries to reveal the commitment of "([^"]*)"$`, steps.revealOther)
	ctx.Step(`^"([^"]*)" validates "([^"]*)" with (approval|rejection)$`, steps.validate)
	ctx.Step(`^"([^"]*)" derives a range proof for ages (\d+) to (\d+)$`, steps.deriveRangeProof)

	// Public queries
	ctx.Step(`^I query the verification status of "([^"]*)"$`, steps.queryStatus)
	ctx.Step(`^I check whether "([^"]*)" meets threshold (\d+)$`, steps.checkThreshold)
	ctx.Step(`^I query the range proof of "([^"]*)"$`, steps.queryRangeProof)
}

// subjectCommitment remembers what a subject committed to, so reveal steps
// can replay or deliberately contradict it.
type subjectCommitment struct {
	age            uint64
	threshold      uint64
	salt           []byte
	verificationID uint64
}

type verificationSteps struct {
	tc          TestContext
	commitments map[string]*subjectCommitment
}

func (s *verificationSteps) commit(ctx context.Context, subject string, age, threshold int) error {
	salt, err := commitment.GenerateSalt()
	if err != nil {
		return err
	}
	digest := commitment.Digest(uint64(age), uint64(threshold), salt)

	headers, err := s.tc.AuthHeaders(subject)
	if err != nil {
		return err
	}
	body := map[string]any{
		"age_threshold": threshold,
		"digest":        commitment.EncodeDigest(digest[:]),
		"salt":          commitment.EncodeSalt(salt),
	}
	if err := s.tc.POSTWithHeaders("/verification/commit", body, headers); err != nil {
		return err
	}

	sc := &subjectCommitment{age: uint64(age), threshold: uint64(threshold), salt: salt}
	// Failure scenarios leave no id in the response; later reveal steps for
	// this subject would fail on their own assertions anyway.
	if raw, ferr := s.tc.GetResponseField("verification_id"); ferr == nil {
		if f, ok := raw.(float64); ok {
			sc.verificationID = uint64(f)
		}
	}
	s.commitments[subject] = sc
	return nil
}

func (s *verificationSteps) reveal(ctx context.Context, subject string) error {
	c, err := s.committed(subject)
	if err != nil {
		return err
	}
	return s.submitReveal(subject, c, c.age)
}

func (s *verificationSteps) revealAge(ctx context.Context, subject string, age int) error {
	c, err := s.committed(subject)
	if err != nil {
		return err
	}
	return s.submitReveal(subject, c, uint64(age))
}

func (s *verificationSteps) revealOther(ctx context.Context, caller, subject string) error {
	c, err := s.committed(subject)
	if err != nil {
		return err
	}
	return s.submitReveal(caller, c, c.age)
}

func (s *verificationSteps) submitReveal(caller string, c *subjectCommitment, age uint64) error {
	headers, err := s.tc.AuthHeaders(caller)
	if err != nil {
		return err
	}
	body := map[string]any{
		"verification_id": c.verificationID,
		"claimed_age":     age,
		"salt":            commitment.EncodeSalt(c.salt),
	}
	return s.tc.POSTWithHeaders("/verification/reveal", body, headers)
}

func (s *verificationSteps) validate(ctx context.Context, verifier, subject, decision string) error {
	headers, err := s.tc.AuthHeaders(verifier)
	if err != nil {
		return err
	}
	body := map[string]any{
		"subject": subject,
		"approve": decision == "approval",
	}
	return s.tc.POSTWithHeaders("/verification/validate", body, headers)
}

func (s *verificationSteps) deriveRangeProof(ctx context.Context, subject string, minAge, maxAge int) error {
	headers, err := s.tc.AuthHeaders(subject)
	if err != nil {
		return err
	}
	proofData := make([]byte, 32)
	if _, err := rand.Read(proofData); err != nil {
		return err
	}
	body := map[string]any{
		"min_age":    minAge,
		"max_age":    maxAge,
		"proof_data": hex.EncodeToString(proofData),
	}
	return s.tc.POSTWithHeaders("/verification/range-proof", body, headers)
}

func (s *verificationSteps) queryStatus(ctx context.Context, subject string) error {
	return s.tc.GET("/verification/"+subject+"/status", nil)
}

func (s *verificationSteps) checkThreshold(ctx context.Context, subject string, threshold int) error {
	return s.tc.GET(fmt.Sprintf("/verification/%s/check?threshold=%d", subject, threshold), nil)
}

func (s *verificationSteps) queryRangeProof(ctx context.Context, subject string) error {
	return s.tc.GET("/verification/"+subject+"/range-proof", nil)
}

func (s *verificationSteps) committed(subject string) (*subjectCommitment, error) {
	c, ok := s.commitments[subject]
	if !ok {
		return nil, fmt.Errorf("no commitment recorded for %q in this scenario", subject)
	}
	return c, nil
}
