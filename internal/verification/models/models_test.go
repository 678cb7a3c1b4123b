package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "agegate/pkg/domain"
)

func TestEffectiveStatus(t *testing.T) {
	const period = 100

	tests := []struct {
		name     string
		status   Status
		proofAt  id.Tick
		now      id.Tick
		expected Status
	}{
		{name: "pending never expires", status: StatusPending, proofAt: 0, now: 10_000, expected: StatusPending},
		{name: "verified inside window", status: StatusVerified, proofAt: 50, now: 149, expected: StatusVerified},
		{name: "verified at window boundary", status: StatusVerified, proofAt: 50, now: 150, expected: StatusExpired},
		{name: "validated inside window", status: StatusValidated, proofAt: 0, now: 99, expected: StatusValidated},
		{name: "validated past window", status: StatusValidated, proofAt: 0, now: 500, expected: StatusExpired},
		{name: "rejected reported as stored", status: StatusRejected, proofAt: 0, now: 500, expected: StatusRejected},
		{name: "revoked reported as stored", status: StatusRevoked, proofAt: 0, now: 500, expected: StatusRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Status: tt.status, ProofTimestamp: tt.proofAt}
			assert.Equal(t, tt.expected, r.EffectiveStatus(tt.now, period))
		})
	}
}

func TestSatisfies(t *testing.T) {
	const period = 100

	tests := []struct {
		name      string
		status    Status
		threshold uint64
		asked     uint64
		proofAt   id.Tick
		now       id.Tick
		expected  bool
	}{
		{name: "verified fresh meets threshold", status: StatusVerified, threshold: 21, asked: 18, proofAt: 10, now: 50, expected: true},
		{name: "validated fresh meets exact threshold", status: StatusValidated, threshold: 18, asked: 18, proofAt: 10, now: 50, expected: true},
		{name: "threshold below asked", status: StatusValidated, threshold: 18, asked: 21, proofAt: 10, now: 50, expected: false},
		{name: "pending never satisfies", status: StatusPending, threshold: 21, asked: 18, proofAt: 10, now: 50, expected: false},
		{name: "rejected never satisfies", status: StatusRejected, threshold: 21, asked: 18, proofAt: 10, now: 50, expected: false},
		{name: "revoked never satisfies", status: StatusRevoked, threshold: 21, asked: 18, proofAt: 10, now: 50, expected: false},
		{name: "stale proof fails freshness", status: StatusValidated, threshold: 21, asked: 18, proofAt: 0, now: 100, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Status: tt.status, AgeThreshold: tt.threshold, ProofTimestamp: tt.proofAt}
			assert.Equal(t, tt.expected, r.Satisfies(tt.asked, tt.now, period))
		})
	}
}
