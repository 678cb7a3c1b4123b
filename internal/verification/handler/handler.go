// Package handler exposes the commit-reveal engine over HTTP. Protocol
// mutations act on behalf of the authenticated caller; queries are public and
// carry no caller at all.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agegate/contracts/protocol"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/httputil"
	"agegate/pkg/requestcontext"
)

// Service defines the engine operations the handler fronts.
type Service interface {
	CreateCommitment(ctx context.Context, subject id.Principal, ageThreshold uint64, digest, salt []byte) (id.VerificationID, error)
	SubmitProof(ctx context.Context, caller id.Principal, verificationID id.VerificationID, claimedAge uint64, salt []byte) error
	Validate(ctx context.Context, verifier, subject id.Principal, approve bool) error
	VerifyAgeRange(ctx context.Context, subject id.Principal, minAge, maxAge uint64, proofData []byte) error
	CheckAgeThreshold(ctx context.Context, subject id.Principal, threshold uint64) (bool, error)
	Status(ctx context.Context, subject id.Principal) (*protocol.VerificationStatusResponse, error)
	RangeProof(ctx context.Context, subject id.Principal) (*protocol.AgeRangeProofResponse, error)
	IsAuthorizedVerifier(ctx context.Context, p id.Principal) (bool, error)
	ContractInfo(ctx context.Context) *protocol.ContractInfoResponse
}

// Handler handles verification protocol requests.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new verification handler.
func New(logger *slog.Logger, service Service) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the protocol mutation routes. The router must mount these
// behind the bearer-token middleware so the caller principal is present.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verification/commit", h.handleCommit)
	r.Post("/verification/reveal", h.handleReveal)
	r.Post("/verification/validate", h.handleValidate)
	r.Post("/verification/range-proof", h.handleRangeProof)
}

// RegisterQueries registers the read-only routes. These are public: the
// protocol treats verification state as world-readable.
func (h *Handler) RegisterQueries(r chi.Router) {
	r.Get("/verification/{subject}/status", h.handleStatus)
	r.Get("/verification/{subject}/check", h.handleCheck)
	r.Get("/verification/{subject}/range-proof", h.handleRangeProofQuery)
	r.Get("/verifiers/{principal}", h.handleVerifierQuery)
	r.Get("/contract/info", h.handleContractInfo)
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	digest, salt, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	verificationID, err := h.service.CreateCommitment(ctx, caller, req.AgeThreshold, digest, salt)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create commitment",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, commitResponse{
		VerificationID: uint64(verificationID),
		Status:         protocol.StatusPending,
	})
}

func (h *Handler) handleReveal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	verificationID, salt, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SubmitProof(ctx, caller, verificationID, req.ClaimedAge, salt); err != nil {
		h.logger.ErrorContext(ctx, "failed to submit proof",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, revealResponse{
		VerificationID: uint64(verificationID),
		Status:         protocol.StatusVerified,
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	subject, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Validate(ctx, caller, subject, req.Approve); err != nil {
		h.logger.ErrorContext(ctx, "failed to validate verification",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := protocol.StatusValidated
	if !req.Approve {
		status = protocol.StatusRejected
	}
	httputil.WriteJSON(w, http.StatusOK, validateResponse{
		Subject: subject.String(),
		Status:  status,
	})
}

func (h *Handler) handleRangeProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req rangeProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	proofData, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.VerifyAgeRange(ctx, caller, req.MinAge, req.MaxAge, proofData); err != nil {
		h.logger.ErrorContext(ctx, "failed to derive range proof",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, rangeProofResponse{
		Subject: caller.String(),
		MinAge:  req.MinAge,
		MaxAge:  req.MaxAge,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, err := id.ParsePrincipal(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := h.service.Status(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, err := id.ParsePrincipal(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	threshold, err := parseThreshold(r.URL.Query().Get("threshold"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	eligible, err := h.service.CheckAgeThreshold(ctx, subject, threshold)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, checkResponse{
		Subject:   subject.String(),
		Threshold: threshold,
		Eligible:  eligible,
	})
}

func (h *Handler) handleRangeProofQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, err := id.ParsePrincipal(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	proof, err := h.service.RangeProof(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, proof)
}

func (h *Handler) handleVerifierQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	authorized, err := h.service.IsAuthorizedVerifier(ctx, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, verifierResponse{
		Principal:  principal.String(),
		Authorized: authorized,
	})
}

func (h *Handler) handleContractInfo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.ContractInfo(r.Context()))
}

func parseThreshold(raw string) (uint64, error) {
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "threshold query parameter is required")
	}
	threshold, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || threshold == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "threshold must be a positive integer")
	}
	return threshold, nil
}

// Response DTOs. Query responses reuse the contracts/protocol payloads; the
// mutation acknowledgements are local to the transport.

type commitResponse struct {
	VerificationID uint64 `json:"verification_id"`
	Status         string `json:"status"`
}

type revealResponse struct {
	VerificationID uint64 `json:"verification_id"`
	Status         string `json:"status"`
}

type validateResponse struct {
	Subject string `json:"subject"`
	Status  string `json:"status"`
}

type rangeProofResponse struct {
	Subject string `json:"subject"`
	MinAge  uint64 `json:"min_age"`
	MaxAge  uint64 `json:"max_age"`
}

type checkResponse struct {
	Subject   string `json:"subject"`
	Threshold uint64 `json:"threshold"`
	Eligible  bool   `json:"eligible"`
}

type verifierResponse struct {
	Principal  string `json:"principal"`
	Authorized bool   `json:"authorized"`
}
