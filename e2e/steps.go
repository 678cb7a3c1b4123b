//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"

	adminsteps "agegate/e2e/steps/admin"
	attestationsteps "agegate/e2e/steps/attestation"
	eligibilitysteps "agegate/e2e/steps/eligibility"
	verificationsteps "agegate/e2e/steps/verification"
)

// RegisterSteps registers the shared request and assertion steps, then the
// per-domain step packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^the age verification service is running$`, tc.serviceIsRunning)

	// Request steps
	ctx.Step(`^I GET "([^"]*)"$`, tc.getPublic)
	ctx.Step(`^I GET "([^"]*)" with invalid token "([^"]*)"$`, tc.getWithInvalidToken)
	ctx.Step(`^I POST to "([^"]*)" with empty body$`, tc.postWithEmptyBody)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the error code should be (\d+)$`, tc.errorCodeShouldBe)
	ctx.Step(`^the error should be "([^"]*)"$`, tc.errorShouldBe)

	verificationsteps.RegisterSteps(ctx, tc)
	attestationsteps.RegisterSteps(ctx, tc)
	adminsteps.RegisterSteps(ctx, tc)
	eligibilitysteps.RegisterSteps(ctx, tc)
}

func (tc *TestContext) serviceIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live", nil); err != nil {
		return fmt.Errorf("service unreachable at %s: %w", tc.BaseURL, err)
	}
	if tc.GetLastResponseStatus() != 200 {
		return fmt.Errorf("liveness probe returned %d", tc.GetLastResponseStatus())
	}
	return nil
}

func (tc *TestContext) getPublic(ctx context.Context, path string) error {
	return tc.GET(path, nil)
}

func (tc *TestContext) getWithInvalidToken(ctx context.Context, path, token string) error {
	return tc.GET(path, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func (tc *TestContext) postWithEmptyBody(ctx context.Context, path string) error {
	return tc.POST(path, map[string]any{})
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no response recorded")
	}
	if tc.LastResponse.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s",
			expectedStatus, tc.LastResponse.StatusCode, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, field string) error {
	if !tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain %q\nResponse: %s", field, string(tc.LastResponseBody))
	}
	return nil
}

// responseFieldShouldEqual compares a top-level field against its literal
// representation. Numbers are decoded as json.Number so large values compare
// digit for digit instead of through float formatting.
func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	dec := json.NewDecoder(bytes.NewReader(tc.LastResponseBody))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("failed to parse response: %w (body: %s)", err, string(tc.LastResponseBody))
	}

	actualValue, ok := data[field]
	if !ok {
		return fmt.Errorf("field %s not found in response: %s", field, string(tc.LastResponseBody))
	}

	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (tc *TestContext) errorCodeShouldBe(ctx context.Context, expectedCode int) error {
	var envelope struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(tc.LastResponseBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse error envelope: %w (body: %s)", err, string(tc.LastResponseBody))
	}
	if envelope.Code != expectedCode {
		return fmt.Errorf("expected error code %d but got %d\nResponse: %s",
			expectedCode, envelope.Code, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) errorShouldBe(ctx context.Context, expectedError string) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(tc.LastResponseBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse error envelope: %w (body: %s)", err, string(tc.LastResponseBody))
	}
	if envelope.Error != expectedError {
		return fmt.Errorf("expected error %q but got %q", expectedError, envelope.Error)
	}
	return nil
}
