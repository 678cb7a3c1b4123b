//go:build e2e

package attestation

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared test context these steps need.
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	DELETE(path string, headers map[string]string) error
	GET(path string, headers map[string]string) error
	AuthHeaders(principal string) (map[string]string, error)
}

// RegisterSteps registers the attestation steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &attestationSteps{tc: tc}

	ctx.Step(`^"([^"]*)" attests that "([^"]*)" meets threshold (\d+) for (\d+) ticks$`, steps.attest)
	ctx.Step(`^"([^"]*)" revokes the attestation for "([^"]*)"$`, steps.revoke)
	ctx.Step(`^I check the attestation by "([^"]*)" for "([^"]*)" at threshold (\d+)$`, steps.check)
}

type attestationSteps struct {
	tc TestContext
}

func (s *attestationSteps) attest(ctx context.Context, attester, subject string, threshold, duration int) error {
	headers, err := s.tc.AuthHeaders(attester)
	if err != nil {
		return err
	}
	body := map[string]any{
		"subject":        subject,
		"age_threshold":  threshold,
		"valid_duration": duration,
	}
	return s.tc.POSTWithHeaders("/attestations", body, headers)
}

func (s *attestationSteps) revoke(ctx context.Context, attester, subject string) error {
	headers, err := s.tc.AuthHeaders(attester)
	if err != nil {
		return err
	}
	return s.tc.DELETE("/attestations/"+subject, headers)
}

func (s *attestationSteps) check(ctx context.Context, attester, subject string, threshold int) error {
	return s.tc.GET(fmt.Sprintf("/attestations/check?attester=%s&subject=%s&threshold=%d",
		attester, subject, threshold), nil)
}
