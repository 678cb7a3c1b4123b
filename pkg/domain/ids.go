// Package domain provides type-safe identifiers to prevent mixing up protocol
// values at compile time.
package domain

import (
	"strconv"
	"strings"

	dErrors "agegate/pkg/domain-errors"
)

// Principal identifies an account taking part in the protocol: subjects,
// verifiers, the owner, and the protocol's own operator/escrow accounts.
// Principals are opaque lowercase account names; the ledger is the authority
// on balances, this type only prevents accidental mixups.
type Principal string

// VerificationID is the monotonically increasing identifier allocated per
// commitment. IDs start at 1; zero means "not allocated".
type VerificationID uint64

// Tick is the logical clock value used for expiry and validity windows.
type Tick uint64

const maxPrincipalLen = 128

// ParsePrincipal validates an account name at trust boundaries (handlers, CLI).
// Names are case-insensitive and stored lowercase.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	if len(s) > maxPrincipalLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal too long")
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' && r != '_' && r != '.' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "principal contains invalid characters")
		}
	}
	return Principal(strings.ToLower(s)), nil
}

// ParseVerificationID parses a decimal verification id from transport input.
func ParseVerificationID(s string) (VerificationID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "verification ID cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid verification ID format")
	}
	return VerificationID(n), nil
}

func (p Principal) String() string       { return string(p) }
func (id VerificationID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (t Tick) String() string            { return strconv.FormatUint(uint64(t), 10) }

func (p Principal) IsNil() bool       { return p == "" }
func (id VerificationID) IsNil() bool { return id == 0 }

// Add advances a tick by a duration expressed in ticks.
func (t Tick) Add(d uint64) Tick { return t + Tick(d) }

// Since reports how many ticks have elapsed from earlier to t; zero if earlier
// is in the future (ticks never run backwards, but stores may be replayed).
func (t Tick) Since(earlier Tick) uint64 {
	if earlier > t {
		return 0
	}
	return uint64(t - earlier)
}
