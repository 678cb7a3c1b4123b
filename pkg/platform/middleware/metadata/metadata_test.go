package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agegate/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		remoteAddr     string
		trustedProxies []string
		expectedIP     string
		expectedUA     string
	}{
		{
			name: "ignores XFF when no trusted proxies",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
				"User-Agent":      "Mozilla/5.0",
			},
			remoteAddr:     "192.168.1.1:12345",
			trustedProxies: nil,
			expectedIP:     "192.168.1.1",
			expectedUA:     "Mozilla/5.0",
		},
		{
			name: "trusts XFF first hop when request from trusted proxy",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1, 10.0.0.2",
				"User-Agent":      "curl/7.64.1",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.1",
			expectedUA:     "curl/7.64.1",
		},
		{
			name: "trusts X-Real-IP from trusted proxy when no XFF",
			headers: map[string]string{
				"X-Real-IP": "203.0.113.9",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "203.0.113.9",
		},
		{
			name: "ignores X-Real-IP from untrusted source",
			headers: map[string]string{
				"X-Real-IP": "203.0.113.9",
			},
			remoteAddr:     "192.168.1.7:4242",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "192.168.1.7",
		},
		{
			name: "oversized XFF falls back to direct connection",
			headers: map[string]string{
				"X-Forwarded-For": strings.Repeat("1", MaxXFFHeaderLength+1),
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name: "non-IP XFF content falls back to direct connection",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-address",
			},
			remoteAddr:     "10.0.0.1:12345",
			trustedProxies: []string{"10.0.0.0/8"},
			expectedIP:     "10.0.0.1",
		},
		{
			name:           "handles bracketed IPv6 remote addr",
			headers:        map[string]string{},
			remoteAddr:     "[::1]:8080",
			trustedProxies: nil,
			expectedIP:     "::1",
		},
		{
			name:           "handles missing user agent",
			headers:        map[string]string{},
			remoteAddr:     "10.0.0.1:8080",
			trustedProxies: nil,
			expectedIP:     "10.0.0.1",
			expectedUA:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			var prefixes []netip.Prefix
			for _, cidr := range tt.trustedProxies {
				prefix, err := netip.ParsePrefix(cidr)
				require.NoError(t, err)
				prefixes = append(prefixes, prefix)
			}
			mw := NewMiddleware(&Config{TrustedProxies: prefixes})
			handler := mw.Handler(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/verification/alice/status", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedIP, requestcontext.ClientIP(capturedCtx), "client IP mismatch")
			assert.Equal(t, tt.expectedUA, requestcontext.UserAgent(capturedCtx), "User-Agent mismatch")
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	t.Run("empty input yields nil", func(t *testing.T) {
		prefixes, err := ParseTrustedProxies("")
		require.NoError(t, err)
		assert.Nil(t, prefixes)
	})

	t.Run("parses comma-separated CIDRs with whitespace", func(t *testing.T) {
		prefixes, err := ParseTrustedProxies(" 10.0.0.0/8 , 192.168.0.0/16 ,fd00::/8")
		require.NoError(t, err)
		require.Len(t, prefixes, 3)
		assert.True(t, prefixes[0].Contains(netip.MustParseAddr("10.1.2.3")))
		assert.True(t, prefixes[1].Contains(netip.MustParseAddr("192.168.44.1")))
		assert.True(t, prefixes[2].Contains(netip.MustParseAddr("fd00::1")))
	})

	t.Run("rejects invalid entries by name", func(t *testing.T) {
		_, err := ParseTrustedProxies("10.0.0.0/8,bogus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
	})

	t.Run("bare IP without prefix length is invalid", func(t *testing.T) {
		_, err := ParseTrustedProxies("10.0.0.1")
		require.Error(t, err)
	})
}
