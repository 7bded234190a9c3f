package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"onboard/internal/reconciliation"
	"onboard/internal/staging"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

// Service defines the evaluation operations the handler needs.
type Service interface {
	Evaluate(ctx context.Context, req reconciliation.EvaluateRequest) (*reconciliation.Evaluation, error)
}

// DecisionReader returns the most recent recorded decision for a client.
// Implementations return sentinel.ErrNotFound when none is held.
type DecisionReader interface {
	Latest(ctx context.Context, clientID string) (audit.Event, error)
}

// Handler wires evaluation endpoints to the reconciliation service.
type Handler struct {
	service   Service
	decisions DecisionReader
	logger    *slog.Logger
	maxUpload int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithDecisionReader enables GET /v1/clients/{clientID}/decision.
func WithDecisionReader(r DecisionReader) Option {
	return func(h *Handler) {
		h.decisions = r
	}
}

// WithMaxUploadBytes caps the whole multipart request body.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// New constructs an evaluation handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:   service,
		logger:    logger,
		maxUpload: 3*staging.DefaultMaxDocumentBytes + 1<<20,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts evaluation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/evaluations", h.HandleEvaluate)
	if h.decisions != nil {
		r.Get("/v1/clients/{clientID}/decision", h.HandleLatestDecision)
	}
}

// HandleEvaluate handles POST /v1/evaluations. The body is multipart with a
// client_id field and form, profile and passport files.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	upload, err := parseEvaluateUpload(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid evaluation request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	defer upload.Close()

	ev, err := h.service.Evaluate(ctx, upload.request)
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed",
			"request_id", requestID,
			"client_id", upload.request.ClientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "evaluation served",
		"request_id", requestID,
		"client_id", ev.ClientID,
		"decision", ev.Result.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromEvaluation(ev))
}

// HandleLatestDecision handles GET /v1/clients/{clientID}/decision.
func (h *Handler) HandleLatestDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := chi.URLParam(r, "clientID")
	if err := ValidateClientID(clientID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.decisions.Latest(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no decision recorded for client"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to read decision",
			"request_id", requestcontext.RequestID(ctx),
			"client_id", clientID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read decision"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvent(event))
}
