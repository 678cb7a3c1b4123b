package protocol

// ContractVersion identifies the wire schema shared with external callers.
const ContractVersion = "v0.1.0"

// Numeric error codes exposed to callers. The numbering is part of the external
// contract and must not be renumbered.
const (
	CodeNotAuthorized         = 100
	CodeVerificationNotFound  = 101
	CodeAlreadyVerified       = 102
	CodeInvalidProof          = 103
	CodeVerifierNotAuthorized = 104
	CodeVerificationExpired   = 105
	CodeInvalidAge            = 106
	CodeTransferFailed        = 107
)

// VerificationStatus values reported by the status query. "expired" is computed
// at read time; it is never stored.
const (
	StatusPending   = "pending"
	StatusVerified  = "verified"
	StatusValidated = "validated"
	StatusRejected  = "rejected"
	StatusRevoked   = "revoked"
	StatusExpired   = "expired"
)

// VerificationStatusResponse is the payload of the status query.
type VerificationStatusResponse struct {
	VerificationID uint64 `json:"verification_id"`
	Subject        string `json:"subject"`
	AgeThreshold   uint64 `json:"age_threshold"`
	Status         string `json:"status"`
	ProofTimestamp uint64 `json:"proof_timestamp"`
	Verifier       string `json:"verifier,omitempty"`
	BondAmount     uint64 `json:"bond_amount"`
}

// AgeRangeProofResponse is the payload of the range-proof query. Past expiry the
// fields are zeroed and Valid is false; the record is never reported as absent
// once derived.
type AgeRangeProofResponse struct {
	MinAgeVerified uint64 `json:"min_age_verified"`
	MaxAgeVerified uint64 `json:"max_age_verified"`
	ProofHash      string `json:"proof_hash,omitempty"`
	VerifiedAt     uint64 `json:"verified_at"`
	ExpiresAt      uint64 `json:"expires_at"`
	Valid          bool   `json:"valid"`
}

// ContractInfoResponse reports protocol parameters and the current logical tick.
type ContractInfoResponse struct {
	VerificationFee     uint64 `json:"verification_fee"`
	ProofBond           uint64 `json:"proof_bond"`
	ProofValidityPeriod uint64 `json:"proof_validity_period"`
	CurrentTick         uint64 `json:"current_tick"`
}
