package reconciliation

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"onboard/internal/reconciliation/ports"
	"onboard/pkg/platform/audit"
	"onboard/pkg/requestcontext"
)

const defaultBatchConcurrency = 4

// SourceEvaluator evaluates documents already on disk.
type SourceEvaluator interface {
	EvaluateSources(ctx context.Context, clientID string, src Sources) (*Evaluation, error)
}

// BatchItem is one client to evaluate.
type BatchItem struct {
	ClientID string
	Sources  Sources
}

// BatchOutcome pairs an item with its evaluation or the error that
// prevented one.
type BatchOutcome struct {
	ClientID   string
	Evaluation *Evaluation
	Err        error
}

// BatchSummary counts outcomes of a run.
type BatchSummary struct {
	Total    int
	Accepted int
	Rejected int
	Failed   int
}

// Summarize counts accepted, rejected and failed outcomes.
func Summarize(outcomes []BatchOutcome) BatchSummary {
	sum := BatchSummary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Err != nil || o.Evaluation == nil:
			sum.Failed++
		case o.Evaluation.Result.Accepted():
			sum.Accepted++
		default:
			sum.Rejected++
		}
	}
	return sum
}

// Batch evaluates many clients concurrently. Each evaluation is still
// sequential and owns its record; only whole evaluations run in parallel.
type Batch struct {
	evaluator   SourceEvaluator
	concurrency int
	limiter     *rate.Limiter
	sink        ports.DecisionSink
	logger      *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency bounds how many evaluations run at once.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRateLimit paces evaluation starts, e.g. to spare the OCR binary.
func WithRateLimit(limit rate.Limit, burst int) BatchOption {
	return func(b *Batch) {
		if limit > 0 {
			if burst < 1 {
				burst = 1
			}
			b.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithBatchAuditSink records a batch_completed event after each run.
func WithBatchAuditSink(sink ports.DecisionSink) BatchOption {
	return func(b *Batch) {
		b.sink = sink
	}
}

func NewBatch(evaluator SourceEvaluator, opts ...BatchOption) *Batch {
	b := &Batch{evaluator: evaluator, concurrency: defaultBatchConcurrency}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	return b
}

// Run evaluates items and returns one outcome per item, in input order.
// Per-client failures are reported in the outcome; the returned error is
// only set when the run itself was cut short.
func (b *Batch) Run(ctx context.Context, items []BatchItem) ([]BatchOutcome, error) {
	outcomes := make([]BatchOutcome, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, item := range items {
		g.Go(func() error {
			outcomes[i].ClientID = item.ClientID
			if b.limiter != nil {
				if err := b.limiter.Wait(gctx); err != nil {
					outcomes[i].Err = err
					return err
				}
			}
			ev, err := b.evaluator.EvaluateSources(gctx, item.ClientID, item.Sources)
			outcomes[i].Evaluation = ev
			outcomes[i].Err = err
			if err != nil {
				b.logger.WarnContext(gctx, "batch evaluation failed",
					"client_id", item.ClientID,
					"error", err,
				)
			}
			return nil
		})
	}
	runErr := g.Wait()

	sum := Summarize(outcomes)
	b.logger.InfoContext(ctx, "batch completed",
		"total", sum.Total,
		"accepted", sum.Accepted,
		"rejected", sum.Rejected,
		"failed", sum.Failed,
	)
	if b.sink != nil {
		event := audit.Event{
			Category:  audit.EventBatchCompleted.Category(),
			Timestamp: requestcontext.Now(ctx),
			Action:    string(audit.EventBatchCompleted),
			Details: []string{
				fmt.Sprintf("total=%d", sum.Total),
				fmt.Sprintf("accepted=%d", sum.Accepted),
				fmt.Sprintf("rejected=%d", sum.Rejected),
				fmt.Sprintf("failed=%d", sum.Failed),
			},
		}
		if err := b.sink.Emit(ctx, event); err != nil {
			b.logger.ErrorContext(ctx, "failed to record batch completion", "error", err)
		}
	}
	return outcomes, runErr
}
