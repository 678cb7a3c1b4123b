// Package handler exposes verifier-issued attestations over HTTP. Issuing and
// revoking act on behalf of the authenticated attester; the check query is
// public and names the attester explicitly.
package handler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agegate/internal/attestation/models"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/httputil"
	"agegate/pkg/requestcontext"
)

// Service defines the attestation operations the handler fronts.
type Service interface {
	Create(ctx context.Context, attester, subject id.Principal, ageThreshold, validDuration uint64) (*models.Attestation, error)
	Revoke(ctx context.Context, attester, subject id.Principal) error
	Check(ctx context.Context, attester, subject id.Principal, threshold uint64) (bool, error)
}

// Handler handles attestation requests.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new attestation handler.
func New(logger *slog.Logger, service Service) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the attester-facing routes. The router must mount these
// behind the bearer-token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attestations", h.handleCreate)
	r.Delete("/attestations/{subject}", h.handleRevoke)
}

// RegisterQueries registers the public check route.
func (h *Handler) RegisterQueries(r chi.Router) {
	r.Get("/attestations/check", h.handleCheck)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	subject, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	attestation, err := h.service.Create(ctx, caller, subject, req.AgeThreshold, req.ValidDuration)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create attestation",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toAttestationResponse(attestation))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	subject, err := id.ParsePrincipal(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Revoke(ctx, caller, subject); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke attestation",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"attester": caller.String(),
		"subject":  subject.String(),
		"status":   "revoked",
	})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	attester, err := id.ParsePrincipal(query.Get("attester"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	subject, err := id.ParsePrincipal(query.Get("subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	threshold, err := strconv.ParseUint(query.Get("threshold"), 10, 64)
	if err != nil || threshold == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "threshold must be a positive integer"))
		return
	}

	active, err := h.service.Check(ctx, attester, subject, threshold)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, checkResponse{
		Attester:  attester.String(),
		Subject:   subject.String(),
		Threshold: threshold,
		Active:    active,
	})
}

// Request and response DTOs.

type createRequest struct {
	Subject       string `json:"subject"`
	AgeThreshold  uint64 `json:"age_threshold"`
	ValidDuration uint64 `json:"valid_duration"`
}

func (req *createRequest) parse() (id.Principal, error) {
	return id.ParsePrincipal(req.Subject)
}

type attestationResponse struct {
	Attester     string `json:"attester"`
	Subject      string `json:"subject"`
	AgeThreshold uint64 `json:"age_threshold"`
	Hash         string `json:"hash"`
	CreatedAt    uint64 `json:"created_at"`
	ValidUntil   uint64 `json:"valid_until"`
}

func toAttestationResponse(a *models.Attestation) *attestationResponse {
	return &attestationResponse{
		Attester:     a.Attester.String(),
		Subject:      a.Subject.String(),
		AgeThreshold: a.AgeThreshold,
		Hash:         hex.EncodeToString(a.Hash),
		CreatedAt:    uint64(a.CreatedAt),
		ValidUntil:   uint64(a.ValidUntil),
	}
}

type checkResponse struct {
	Attester  string `json:"attester"`
	Subject   string `json:"subject"`
	Threshold uint64 `json:"threshold"`
	Active    bool   `json:"active"`
}
