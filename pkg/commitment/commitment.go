// Package commitment implements the commit-reveal digest scheme shared by
// the protocol engine and its clients.
//
// A commitment binds a claimed age to an age threshold without revealing
// the age up front: digest = SHA-256(age ‖ threshold ‖ salt), with age and
// threshold serialized as 8-byte big-endian integers. The subject publishes
// the digest first and later reveals (age, salt); the engine recomputes the
// digest and accepts the reveal only on an exact match. Clients generating
// commitments offline must use this exact serialization.
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"

	dErrors "agegate/pkg/domain-errors"
)

// DigestLen is the byte length of a commitment digest.
const DigestLen = sha256.Size

// SaltLen is the byte length of commitment salts accepted by the engine.
const SaltLen = 32

// GenerateSalt creates a cryptographically secure commitment salt.
func GenerateSalt() ([]byte, error) {
	buf := make([]byte, SaltLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate salt")
	}
	return buf, nil
}

// Digest computes the commitment digest for a claimed age, threshold, and salt.
// It is a pure function: equal inputs always produce equal digests.
func Digest(claimedAge, ageThreshold uint64, salt []byte) [DigestLen]byte {
	buf := make([]byte, 16, 16+len(salt))
	binary.BigEndian.PutUint64(buf[0:8], claimedAge)
	binary.BigEndian.PutUint64(buf[8:16], ageThreshold)
	buf = append(buf, salt...)
	return sha256.Sum256(buf)
}

// Matches reports whether the digest recomputed from a reveal equals the
// committed digest. The comparison is constant-time.
func Matches(committed []byte, claimedAge, ageThreshold uint64, salt []byte) bool {
	if len(committed) != DigestLen {
		return false
	}
	d := Digest(claimedAge, ageThreshold, salt)
	return subtle.ConstantTimeCompare(committed, d[:]) == 1
}

// EncodeDigest returns the lowercase hex transport form of a digest.
func EncodeDigest(d []byte) string {
	return hex.EncodeToString(d)
}

// DecodeDigest parses a hex-encoded digest, enforcing the exact digest length.
func DecodeDigest(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "digest is not valid hex")
	}
	if len(b) != DigestLen {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "digest must be 32 bytes")
	}
	return b, nil
}

// EncodeSalt returns the lowercase hex transport form of a salt.
func EncodeSalt(salt []byte) string {
	return hex.EncodeToString(salt)
}

// DecodeSalt parses a hex-encoded salt, enforcing the exact salt length.
func DecodeSalt(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "salt is not valid hex")
	}
	if len(b) != SaltLen {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "salt must be 32 bytes")
	}
	return b, nil
}
