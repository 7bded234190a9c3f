package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"onboard/internal/evidence/extract"
	"onboard/internal/reconciliation/metrics"
	"onboard/internal/reconciliation/ports"
	"onboard/internal/staging"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/requestcontext"
)

// Document kinds accepted by Service.Evaluate.
const (
	KindForm     = "form"
	KindProfile  = "profile"
	KindPassport = "passport"
)

// Evaluator is the engine contract the service depends on.
type Evaluator interface {
	Evaluate(ctx context.Context, src Sources) *Result
}

// DocumentChecker reports whether a document can be read by a registered
// adapter. extract.Registry implements it.
type DocumentChecker interface {
	Supports(source extract.Source, path string) bool
}

var kindSources = map[string]extract.Source{
	KindForm:     extract.SourceForm,
	KindProfile:  extract.SourceProfile,
	KindPassport: extract.SourceImage,
}

// Stager copies uploaded documents somewhere the extractors can read them.
type Stager interface {
	Stage(docs ...staging.Document) (*staging.Workspace, error)
}

// Service wraps the engine with staging, metrics, tracing and the decision
// audit trail.
type Service struct {
	engine  Evaluator
	stager  Stager
	checker DocumentChecker
	sink    ports.DecisionSink
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditSink sets where decisions are recorded. Emission is fail-closed:
// a decision that cannot be recorded is not returned.
func WithAuditSink(sink ports.DecisionSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithStager overrides the system temp directory staging area.
func WithStager(st Stager) Option {
	return func(s *Service) {
		s.stager = st
	}
}

// WithDocumentChecker rejects uploads whose file type no adapter reads
// before anything is staged.
func WithDocumentChecker(c DocumentChecker) Option {
	return func(s *Service) {
		s.checker = c
	}
}

// WithServiceTracer overrides the global tracer.
func WithServiceTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func NewService(engine Evaluator, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	s := &Service{engine: engine, tracer: engineTracer}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.stager == nil {
		s.stager = staging.New("", staging.WithLogger(s.logger))
	}
	return s, nil
}

// EvaluateRequest carries uploaded documents for one client.
type EvaluateRequest struct {
	ClientID  string
	Documents []staging.Document
}

// Evaluate stages the uploaded documents, evaluates them and removes the
// staged copies whatever the outcome.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*Evaluation, error) {
	start := time.Now()

	present := make(map[string]bool, len(req.Documents))
	for _, d := range req.Documents {
		present[d.Kind] = true
	}
	for _, kind := range []string{KindForm, KindProfile, KindPassport} {
		if !present[kind] {
			return nil, dErrors.New(dErrors.CodeValidation, kind+" document is required")
		}
	}

	if s.checker != nil {
		for _, d := range req.Documents {
			source, ok := kindSources[d.Kind]
			if ok && !s.checker.Supports(source, d.Name) {
				return nil, dErrors.New(dErrors.CodeValidation,
					fmt.Sprintf("unsupported %s document type %q", d.Kind, filepath.Ext(d.Name)))
			}
		}
	}

	ws, err := s.stager.Stage(req.Documents...)
	if err != nil {
		if errors.Is(err, staging.ErrDocumentTooLarge) || errors.Is(err, staging.ErrDuplicateKind) || errors.Is(err, staging.ErrInvalidKind) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to stage documents")
	}
	defer func() {
		_ = ws.Cleanup()
	}()

	return s.evaluate(ctx, req.ClientID, Sources{
		FormPath:    ws.Path(KindForm),
		ProfilePath: ws.Path(KindProfile),
		ImagePath:   ws.Path(KindPassport),
	}, start)
}

// EvaluateSources evaluates documents already on disk.
func (s *Service) EvaluateSources(ctx context.Context, clientID string, src Sources) (*Evaluation, error) {
	return s.evaluate(ctx, clientID, src, time.Now())
}

func (s *Service) evaluate(ctx context.Context, clientID string, src Sources, start time.Time) (*Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "reconciliation.evaluate",
		trace.WithAttributes(attribute.String("client.id", clientID)))
	defer span.End()

	evaluatedAt := requestcontext.Now(ctx)
	res := s.engine.Evaluate(ctx, src)
	if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
		return nil, dErrors.Wrap(res.Err, dErrors.CodeTimeout, "evaluation cancelled")
	}
	// An unreadable document type is a request error, never a recorded reject.
	if errors.Is(res.Err, extract.ErrNoAdapter) {
		var xerr *extract.ExtractionError
		source := "document"
		if errors.As(res.Err, &xerr) {
			source = string(xerr.Source)
		}
		s.logger.WarnContext(ctx, "no adapter for uploaded document",
			"client_id", clientID,
			"error", res.Err,
		)
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported "+source+" document type")
	}

	ev := &Evaluation{
		ID:          uuid.New(),
		ClientID:    clientID,
		Result:      res,
		EvaluatedAt: evaluatedAt,
		Duration:    time.Since(start),
	}
	span.SetAttributes(
		attribute.String("evaluation.id", ev.ID.String()),
		attribute.String("evaluation.decision", string(res.Decision)),
		attribute.String("evaluation.reason", string(res.Reason)),
	)

	s.metrics.IncrementOutcome(string(res.Decision), string(res.Reason))
	s.metrics.ObserveEvaluateLatency(ev.Duration)

	s.logger.InfoContext(ctx, "evaluation completed",
		"evaluation_id", ev.ID,
		"client_id", clientID,
		"decision", res.Decision,
		"reason", res.Reason,
		"stage", res.Stage,
		"request_id", requestcontext.RequestID(ctx),
		"duration_ms", ev.Duration.Milliseconds(),
	)

	if err := s.emit(ctx, ev); err != nil {
		s.metrics.IncrementAuditFailure()
		s.logger.ErrorContext(ctx, "failed to record decision",
			"evaluation_id", ev.ID,
			"client_id", clientID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
	}
	return ev, nil
}

func (s *Service) emit(ctx context.Context, ev *Evaluation) error {
	if s.sink == nil {
		return nil
	}
	action := audit.EventEvaluationRejected
	if ev.Result.Accepted() {
		action = audit.EventEvaluationAccepted
	}
	return s.sink.Emit(ctx, audit.Event{
		Category:     action.Category(),
		Timestamp:    ev.EvaluatedAt,
		EvaluationID: ev.ID.String(),
		ClientID:     ev.ClientID,
		Action:       string(action),
		Decision:     string(ev.Result.Decision),
		Reason:       string(ev.Result.Reason),
		Stage:        string(ev.Result.Stage),
		Details:      ev.Result.Details(),
		RequestID:    requestcontext.RequestID(ctx),
		ActorID:      requestcontext.Operator(ctx),
	})
}
