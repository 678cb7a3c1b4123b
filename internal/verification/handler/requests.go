package handler

import (
	"encoding/hex"

	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
)

// HTTP request DTOs. Binary protocol fields (digest, salt, proof data) travel
// hex-encoded.

type commitRequest struct {
	AgeThreshold uint64 `json:"age_threshold"`
	Digest       string `json:"digest"`
	Salt         string `json:"salt"`
}

func (r *commitRequest) parse() (digest, salt []byte, err error) {
	digest, err = commitment.DecodeDigest(r.Digest)
	if err != nil {
		return nil, nil, err
	}
	salt, err = commitment.DecodeSalt(r.Salt)
	if err != nil {
		return nil, nil, err
	}
	return digest, salt, nil
}

type revealRequest struct {
	VerificationID uint64 `json:"verification_id"`
	ClaimedAge     uint64 `json:"claimed_age"`
	Salt           string `json:"salt"`
}

// parse deliberately does not enforce the salt length: a reveal with a
// wrong-length salt must reach the engine so it fails the digest match there,
// after the bond is posted, instead of bouncing off the transport.
func (r *revealRequest) parse() (id.VerificationID, []byte, error) {
	if r.VerificationID == 0 {
		return 0, nil, dErrors.New(dErrors.CodeInvalidInput, "verification_id is required")
	}
	salt, err := decodeHexField("salt", r.Salt)
	if err != nil {
		return 0, nil, err
	}
	return id.VerificationID(r.VerificationID), salt, nil
}

type validateRequest struct {
	Subject string `json:"subject"`
	Approve bool   `json:"approve"`
}

func (r *validateRequest) parse() (id.Principal, error) {
	return id.ParsePrincipal(r.Subject)
}

type rangeProofRequest struct {
	MinAge    uint64 `json:"min_age"`
	MaxAge    uint64 `json:"max_age"`
	ProofData string `json:"proof_data"`
}

func (r *rangeProofRequest) parse() ([]byte, error) {
	return decodeHexField("proof_data", r.ProofData)
}

func decodeHexField(name, value string) ([]byte, error) {
	if value == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, name+" is required")
	}
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, name+" must be hex encoded")
	}
	return decoded, nil
}
