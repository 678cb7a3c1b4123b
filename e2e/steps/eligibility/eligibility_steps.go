//go:build e2e

package eligibility

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared test context these steps need.
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	AuthHeaders(principal string) (map[string]string, error)
	GetLastResponseBody() []byte
}

// RegisterSteps registers the eligibility evaluation steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &eligibilitySteps{tc: tc}

	ctx.Step(`^"([^"]*)" evaluates the eligibility of "([^"]*)" at threshold (\d+)$`, steps.evaluate)
	ctx.Step(`^"([^"]*)" evaluates the eligibility of "([^"]*)" at threshold (\d+) naming attester "([^"]*)"$`, steps.evaluateWithAttester)

	ctx.Step(`^the "(verification|attestation)" path should have passed$`, steps.pathShouldHavePassed)
	ctx.Step(`^the "(verification|attestation)" path should not have passed$`, steps.pathShouldNotHavePassed)
}

type eligibilitySteps struct {
	tc TestContext
}

func (s *eligibilitySteps) evaluate(ctx context.Context, caller, subject string, threshold int) error {
	return s.post(caller, map[string]any{
		"subject":   subject,
		"threshold": threshold,
	})
}

func (s *eligibilitySteps) evaluateWithAttester(ctx context.Context, caller, subject string, threshold int, attester string) error {
	return s.post(caller, map[string]any{
		"subject":   subject,
		"threshold": threshold,
		"attester":  attester,
	})
}

func (s *eligibilitySteps) post(caller string, body map[string]any) error {
	headers, err := s.tc.AuthHeaders(caller)
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders("/eligibility/evaluate", body, headers)
}

func (s *eligibilitySteps) pathShouldHavePassed(ctx context.Context, path string) error {
	return s.assertPath(path, true)
}

func (s *eligibilitySteps) pathShouldNotHavePassed(ctx context.Context, path string) error {
	return s.assertPath(path, false)
}

// assertPath digs into the per-path evidence of the decision payload.
func (s *eligibilitySteps) assertPath(path string, wantPassed bool) error {
	var data map[string]any
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &data); err != nil {
		return fmt.Errorf("failed to parse decision: %w (body: %s)", err, string(s.tc.GetLastResponseBody()))
	}

	result, ok := data[path].(map[string]any)
	if !ok {
		return fmt.Errorf("decision has no %q path result: %v", path, data)
	}
	passed, ok := result["passed"].(bool)
	if !ok {
		return fmt.Errorf("%q path result has no boolean passed field: %v", path, result)
	}
	if passed != wantPassed {
		return fmt.Errorf("%q path: expected passed=%v but got %v (result: %v)", path, wantPassed, passed, result)
	}
	return nil
}
