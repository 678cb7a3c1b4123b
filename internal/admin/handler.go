package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/httputil"
	"agegate/pkg/requestcontext"
)

// Handler exposes the owner operations over HTTP. The router mounts it behind
// both the bearer-token middleware (which supplies the caller principal) and
// the admin-key middleware; the service still enforces caller == owner.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// New creates a new admin handler.
func New(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register registers the admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/verifiers/init", h.handleInitializeVerifiers)
	r.Put("/admin/verifiers/{principal}", h.handleManageVerifier)
	r.Get("/admin/verifiers", h.handleListVerifiers)
	r.Put("/admin/fee", h.handleSetFee)
	r.Put("/admin/bond", h.handleSetBond)
	r.Post("/admin/revoke", h.handleEmergencyRevoke)
	r.Post("/admin/withdraw", h.handleWithdrawFees)
}

func (h *Handler) handleInitializeVerifiers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req initVerifiersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	verifiers, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.InitializeVerifiers(ctx, caller, verifiers); err != nil {
		h.logger.ErrorContext(ctx, "failed to initialize verifiers",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"authorized": len(verifiers)})
}

func (h *Handler) handleManageVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	verifier, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req manageVerifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.service.ManageVerifier(ctx, caller, verifier, req.Authorized); err != nil {
		h.logger.ErrorContext(ctx, "failed to manage verifier",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, verifierResponse{
		Principal:  verifier.String(),
		Authorized: req.Authorized,
	})
}

func (h *Handler) handleListVerifiers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	verifiers, err := h.service.ListVerifiers(ctx, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list verifiers",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toVerifiersListResponse(verifiers))
}

func (h *Handler) handleSetFee(w http.ResponseWriter, r *http.Request) {
	h.handleSetAmount(w, r, h.service.SetVerificationFee)
}

func (h *Handler) handleSetBond(w http.ResponseWriter, r *http.Request) {
	h.handleSetAmount(w, r, h.service.SetProofBond)
}

// handleSetAmount is shared by the fee and bond endpoints; both take the same
// request shape and differ only in the service call.
func (h *Handler) handleSetAmount(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, caller id.Principal, amount uint64) error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req setAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := set(ctx, caller, req.Amount); err != nil {
		h.logger.ErrorContext(ctx, "failed to update protocol parameter",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"amount": req.Amount})
}

func (h *Handler) handleEmergencyRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	subject, err := id.ParsePrincipal(req.Subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.EmergencyRevoke(ctx, caller, subject); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke verification",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"subject": subject.String(),
		"status":  "revoked",
	})
}

func (h *Handler) handleWithdrawFees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	amount, err := h.service.WithdrawFees(ctx, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to withdraw fees",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "fees withdrawn",
		"request_id", requestID,
		"amount", amount,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"amount": amount})
}

// Request and response DTOs.

type initVerifiersRequest struct {
	Verifiers []string `json:"verifiers"`
}

func (req *initVerifiersRequest) parse() ([]id.Principal, error) {
	if len(req.Verifiers) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one verifier is required")
	}
	verifiers := make([]id.Principal, 0, len(req.Verifiers))
	for _, v := range req.Verifiers {
		p, err := id.ParsePrincipal(v)
		if err != nil {
			return nil, err
		}
		verifiers = append(verifiers, p)
	}
	return verifiers, nil
}

type manageVerifierRequest struct {
	Authorized bool `json:"authorized"`
}

type setAmountRequest struct {
	Amount uint64 `json:"amount"`
}

type revokeRequest struct {
	Subject string `json:"subject"`
}

type verifierResponse struct {
	Principal  string `json:"principal"`
	Authorized bool   `json:"authorized"`
}

type verifiersListResponse struct {
	Verifiers []string `json:"verifiers"`
	Total     int      `json:"total"`
}

func toVerifiersListResponse(verifiers []id.Principal) *verifiersListResponse {
	out := make([]string, len(verifiers))
	for i, v := range verifiers {
		out[i] = v.String()
	}
	return &verifiersListResponse{Verifiers: out, Total: len(out)}
}
