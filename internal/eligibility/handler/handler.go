// Package handler exposes eligibility evaluation over HTTP for relying
// parties. The endpoint answers the compound question and returns the full
// decision, including per-path diagnostics.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agegate/internal/eligibility"
	id "agegate/pkg/domain"
	dErrors "agegate/pkg/domain-errors"
	"agegate/pkg/platform/httputil"
	"agegate/pkg/requestcontext"
)

// Service defines the evaluation operation the handler fronts.
type Service interface {
	Evaluate(ctx context.Context, req eligibility.EvaluateRequest) (*eligibility.Decision, error)
}

// Handler handles eligibility requests.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new eligibility handler.
func New(logger *slog.Logger, service Service) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the eligibility routes with the chi router. The router
// must mount these behind the bearer-token middleware: evaluations are for
// authenticated relying parties, not the open internet.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/evaluate", h.handleEvaluate)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	evalReq, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	decision, err := h.service.Evaluate(ctx, evalReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to evaluate eligibility",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, decision)
}

// evaluateRequest is the wire form of an evaluation. Attester is optional;
// when absent only the subject's own verification is consulted.
type evaluateRequest struct {
	Subject   string `json:"subject"`
	Threshold uint64 `json:"threshold"`
	Attester  string `json:"attester,omitempty"`
}

func (req *evaluateRequest) parse() (eligibility.EvaluateRequest, error) {
	subject, err := id.ParsePrincipal(req.Subject)
	if err != nil {
		return eligibility.EvaluateRequest{}, err
	}

	var attester id.Principal
	if req.Attester != "" {
		attester, err = id.ParsePrincipal(req.Attester)
		if err != nil {
			return eligibility.EvaluateRequest{}, err
		}
	}

	return eligibility.EvaluateRequest{
		Subject:   subject,
		Threshold: req.Threshold,
		Attester:  attester,
	}, nil
}
