//go:build e2e

package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared test context these steps need.
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	PUTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	AuthHeaders(principal string) (map[string]string, error)
	AdminHeaders(principal string) (map[string]string, error)
	GetOwnerName() string
	GetLastResponseBody() []byte
	GetLastResponseStatus() int
}

// RegisterSteps registers the owner-surface steps. The setup steps other
// features lean on (fee, bond, verifier authorization) verify their own
// response status so a misconfigured admin key fails loudly at the Given
// instead of three steps later.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	// Setup steps, also used as Background by the other features
	ctx.Step(`^the owner sets the verification fee to (\d+)$`, steps.setFee)
	ctx.Step(`^the owner sets the proof bond to (\d+)$`, steps.setBond)
	ctx.Step(`^"([^"]*)" is an authorized verifier$`, steps.authorizeVerifier)

	// Owner operations
	ctx.Step(`^the owner authorizes the verifiers "([^"]*)"$`, steps.initVerifiers)
	ctx.Step(`^the owner lists the verifiers$`, steps.listVerifiers)
	ctx.Step(`^the owner sets verifier "([^"]*)" authorization to (true|false)$`, steps.manageVerifier)
	ctx.Step(`^the owner revokes the verification of "([^"]*)"$`, steps.emergencyRevoke)
	ctx.Step(`^the owner withdraws the protocol fees$`, steps.withdrawFees)

	// Negative-path variants
	ctx.Step(`^the owner updates the verification fee to (\d+) without the admin key$`, steps.setFeeWithoutKey)
	ctx.Step(`^"([^"]*)" authorizes the verifiers "([^"]*)" using the admin key$`, steps.initVerifiersAs)

	// Assertions
	ctx.Step(`^the verifier list should include "([^"]*)"$`, steps.verifierListShouldInclude)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) setFee(ctx context.Context, amount int) error {
	return s.setAmount("/admin/fee", amount)
}

func (s *adminSteps) setBond(ctx context.Context, amount int) error {
	return s.setAmount("/admin/bond", amount)
}

func (s *adminSteps) setAmount(path string, amount int) error {
	headers, err := s.tc.AdminHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	if err := s.tc.PUTWithHeaders(path, map[string]any{"amount": amount}, headers); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("updating %s returned %d: %s", path, status, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *adminSteps) authorizeVerifier(ctx context.Context, verifier string) error {
	headers, err := s.tc.AdminHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	if err := s.tc.PUTWithHeaders("/admin/verifiers/"+verifier, map[string]any{"authorized": true}, headers); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("authorizing verifier %q returned %d: %s", verifier, status, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *adminSteps) initVerifiers(ctx context.Context, list string) error {
	headers, err := s.tc.AdminHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders("/admin/verifiers/init", verifiersBody(list), headers)
}

func (s *adminSteps) initVerifiersAs(ctx context.Context, caller, list string) error {
	headers, err := s.tc.AdminHeaders(caller)
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders("/admin/verifiers/init", verifiersBody(list), headers)
}

func (s *adminSteps) listVerifiers(ctx context.Context) error {
	headers, err := s.tc.AdminHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	return s.tc.GET("/admin/verifiers", headers)
}

func (s *adminSteps) manageVerifier(ctx context.Context, verifier, authorized string) error {
	headers, err := s.tc.AdminHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	return s.tc.PUTWithHeaders("/admin/verifiers/"+verifier,
		map[string]any{"authorized": authorized == "true"}, headers)
}

func (s *adminSteps) emergencyRevoke(ctx context.Context, subject string) error {
	headers, err := s.tc.AdminHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders("/admin/revoke", map[string]any{"subject": subject}, headers)
}

func (s *adminSteps) withdrawFees(ctx context.Context) error {
	headers, err := s.tc.AdminHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	return s.tc.POSTWithHeaders("/admin/withdraw", nil, headers)
}

func (s *adminSteps) setFeeWithoutKey(ctx context.Context, amount int) error {
	headers, err := s.tc.AuthHeaders(s.tc.GetOwnerName())
	if err != nil {
		return err
	}
	return s.tc.PUTWithHeaders("/admin/fee", map[string]any{"amount": amount}, headers)
}

func (s *adminSteps) verifierListShouldInclude(ctx context.Context, verifier string) error {
	var resp struct {
		Verifiers []string `json:"verifiers"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &resp); err != nil {
		return fmt.Errorf("failed to parse verifier list: %w (body: %s)", err, string(s.tc.GetLastResponseBody()))
	}
	for _, v := range resp.Verifiers {
		if v == verifier {
			return nil
		}
	}
	return fmt.Errorf("verifier %q not in list: %v", verifier, resp.Verifiers)
}

func verifiersBody(list string) map[string]any {
	var verifiers []string
	for _, v := range strings.Split(list, ",") {
		if v = strings.TrimSpace(v); v != "" {
			verifiers = append(verifiers, v)
		}
	}
	return map[string]any{"verifiers": verifiers}
}
