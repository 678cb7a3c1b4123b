//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"agegate/internal/token"
	id "agegate/pkg/domain"
)

// TestContext holds state between test steps. A single instance is shared by
// every step package; Reset clears per-scenario state in place so the method
// values registered with godog keep observing it.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	// OwnerName is the principal the server treats as protocol owner, and
	// AdminKey is the raw key behind the X-Admin-Key middleware.
	OwnerName string
	AdminKey  string

	tokens     *token.Service
	tokenCache map[string]string
}

// NewTestContext creates a test context from the environment. Tokens are
// minted locally with the same signing key the server holds; there is no
// token endpoint on the wire.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	signingKey := os.Getenv("AGEGATE_JWT_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "dev-secret-key-change-in-production"
	}
	owner := os.Getenv("AGEGATE_OWNER")
	if owner == "" {
		owner = "owner"
	}

	return &TestContext{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		OwnerName:  owner,
		AdminKey:   os.Getenv("ADMIN_KEY"),
		tokens:     token.NewService(signingKey, "agegate", "agegate-client", time.Hour),
		tokenCache: make(map[string]string),
	}
}

// Reset clears the per-scenario response state. Minted tokens survive; they
// are principal-scoped, not scenario-scoped.
func (tc *TestContext) Reset() {
	tc.LastResponse = nil
	tc.LastResponseBody = nil
}

// POST makes a POST request and stores the response.
func (tc *TestContext) POST(path string, body any) error {
	return tc.send(http.MethodPost, path, body, nil)
}

// POSTWithHeaders makes a POST request with optional headers.
func (tc *TestContext) POSTWithHeaders(path string, body any, headers map[string]string) error {
	return tc.send(http.MethodPost, path, body, headers)
}

// PUTWithHeaders makes a PUT request with optional headers.
func (tc *TestContext) PUTWithHeaders(path string, body any, headers map[string]string) error {
	return tc.send(http.MethodPut, path, body, headers)
}

// DELETE makes a DELETE request and stores the response.
func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.send(http.MethodDelete, path, nil, headers)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.send(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) send(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// TokenFor mints (and caches) a bearer token for the given principal.
func (tc *TestContext) TokenFor(principal string) (string, error) {
	if cached, ok := tc.tokenCache[principal]; ok {
		return cached, nil
	}
	p, err := id.ParsePrincipal(principal)
	if err != nil {
		return "", fmt.Errorf("invalid principal %q: %w", principal, err)
	}
	minted, err := tc.tokens.GenerateToken(p)
	if err != nil {
		return "", fmt.Errorf("failed to mint token for %q: %w", principal, err)
	}
	tc.tokenCache[principal] = minted
	return minted, nil
}

// AuthHeaders returns the Authorization header for the given principal.
func (tc *TestContext) AuthHeaders(principal string) (map[string]string, error) {
	minted, err := tc.TokenFor(principal)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + minted}, nil
}

// AdminHeaders returns the Authorization and X-Admin-Key headers for a caller
// on the owner surface. The caller is usually the owner; scenarios probing the
// owner check pass somebody else.
func (tc *TestContext) AdminHeaders(principal string) (map[string]string, error) {
	headers, err := tc.AuthHeaders(principal)
	if err != nil {
		return nil, err
	}
	headers["X-Admin-Key"] = tc.AdminKey
	return headers, nil
}

// GetOwnerName returns the configured owner principal.
func (tc *TestContext) GetOwnerName() string {
	return tc.OwnerName
}

// GetResponseField extracts a field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text.
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}

// Getter methods for step package interfaces

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
