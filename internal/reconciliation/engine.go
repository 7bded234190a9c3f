// Package reconciliation decides whether a client's form, profile and
// passport scan tell one consistent identity story.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"onboard/internal/identity/fuzzy"
	"onboard/internal/identity/record"
	"onboard/internal/reconciliation/metrics"
	"onboard/internal/reconciliation/ports"
)

var engineTracer = otel.Tracer("onboard/reconciliation")

// Engine runs the three stages of an evaluation in order: form merge, profile
// merge, passport check. The first failing stage decides a rejection; later
// stages do not run.
type Engine struct {
	forms    ports.FormExtractor
	profiles ports.ProfileExtractor
	images   ports.ImageExtractor

	formAliases    record.AliasTable
	profileAliases record.AliasTable
	matcher        *fuzzy.Matcher
	checked        []record.Field

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEngineMetrics sets the metrics collector.
func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithAliasTables replaces the shipped form and profile tables.
func WithAliasTables(form, profile record.AliasTable) EngineOption {
	return func(e *Engine) {
		e.formAliases = form
		e.profileAliases = profile
	}
}

// WithMatcher replaces the default fuzzy matcher.
func WithMatcher(m *fuzzy.Matcher) EngineOption {
	return func(e *Engine) {
		e.matcher = m
	}
}

// WithCheckedFields replaces the fields the passport scan must corroborate.
func WithCheckedFields(fields ...record.Field) EngineOption {
	return func(e *Engine) {
		e.checked = fields
	}
}

// NewEngine builds an Engine. All three extractors are required and alias
// tables are validated up front.
func NewEngine(forms ports.FormExtractor, profiles ports.ProfileExtractor, images ports.ImageExtractor, opts ...EngineOption) (*Engine, error) {
	if forms == nil {
		return nil, errors.New("form extractor is required")
	}
	if profiles == nil {
		return nil, errors.New("profile extractor is required")
	}
	if images == nil {
		return nil, errors.New("image extractor is required")
	}

	e := &Engine{
		forms:          forms,
		profiles:       profiles,
		images:         images,
		formAliases:    record.FormAliases,
		profileAliases: record.ProfileAliases,
		checked:        fuzzy.CheckedFields,
		tracer:         engineTracer,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.matcher == nil {
		e.matcher = fuzzy.NewMatcher(nil)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	if err := e.formAliases.Validate(); err != nil {
		return nil, fmt.Errorf("form alias table: %w", err)
	}
	if err := e.profileAliases.Validate(); err != nil {
		return nil, fmt.Errorf("profile alias table: %w", err)
	}
	return e, nil
}

type stage struct {
	name Stage
	run  func(ctx context.Context, rec *record.Record, src Sources) *Result
}

func (e *Engine) stages() []stage {
	return []stage{
		{name: StageForm, run: e.formStage},
		{name: StageProfile, run: e.profileStage},
		{name: StageImage, run: e.imageStage},
	}
}

// Evaluate runs every stage against a fresh record. It never returns an
// error: extraction, merge and fuzzy failures all become a rejection.
func (e *Engine) Evaluate(ctx context.Context, src Sources) *Result {
	rec := record.New()
	for _, st := range e.stages() {
		if err := ctx.Err(); err != nil {
			return rejected(st.name, ReasonExtractionFailed, err)
		}
		if res := e.runStage(ctx, st, rec, src); res != nil {
			return res
		}
	}
	return accepted()
}

func (e *Engine) runStage(ctx context.Context, st stage, rec *record.Record, src Sources) *Result {
	ctx, span := e.tracer.Start(ctx, "reconciliation."+string(st.name))
	defer span.End()

	start := time.Now()
	res := st.run(ctx, rec, src)
	e.metrics.ObserveStageLatency(string(st.name), time.Since(start))

	if res != nil {
		span.SetAttributes(attribute.String("reconciliation.reason", string(res.Reason)))
		span.SetStatus(codes.Error, string(res.Reason))
		if res.Err != nil {
			span.RecordError(res.Err)
		}
		e.logger.InfoContext(ctx, "reconciliation stage rejected",
			"stage", st.name,
			"reason", res.Reason,
			"error", res.Err,
		)
	}
	return res
}

func (e *Engine) formStage(ctx context.Context, rec *record.Record, src Sources) *Result {
	fields, err := e.forms.ExtractForm(ctx, src.FormPath)
	if err != nil {
		return rejected(StageForm, ReasonExtractionFailed, err)
	}
	return e.merge(ctx, StageForm, rec, fields, e.formAliases)
}

func (e *Engine) profileStage(ctx context.Context, rec *record.Record, src Sources) *Result {
	fields, err := e.profiles.ExtractProfile(ctx, src.ProfilePath)
	if err != nil {
		return rejected(StageProfile, ReasonExtractionFailed, err)
	}
	return e.merge(ctx, StageProfile, rec, fields, e.profileAliases)
}

func (e *Engine) merge(ctx context.Context, st Stage, rec *record.Record, fields map[string]string, table record.AliasTable) *Result {
	res := rec.Merge(fields, table)
	if len(res.DroppedAddressParts) > 0 {
		e.logger.WarnContext(ctx, "address parts ignored by parser",
			"stage", st,
			"dropped", res.DroppedAddressParts,
		)
	}
	if !res.OK() {
		out := rejected(st, ReasonMergeMismatch, res.Err())
		out.Mismatches = res.Mismatches
		return out
	}
	return nil
}

func (e *Engine) imageStage(ctx context.Context, rec *record.Record, src Sources) *Result {
	text, err := e.images.ExtractText(ctx, src.ImagePath)
	if err != nil {
		return rejected(StageImage, ReasonExtractionFailed, err)
	}

	rep := e.matcher.Verify(rec, text, e.checked)
	if rep.OK() {
		return nil
	}
	for _, f := range rep.Failed {
		e.metrics.IncrementFuzzyFailure(string(f))
	}
	out := rejected(StageImage, ReasonFuzzyCheckFailed, rep.Err())
	out.FuzzyFailures = rep.Failed
	return out
}
