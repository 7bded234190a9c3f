package reconciliation

import (
	"time"

	"github.com/google/uuid"

	"onboard/internal/identity/record"
)

// Decision is the binary onboarding signal.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Stage names the step of an evaluation. A rejected Result carries the stage
// that failed; an accepted one carries StageComplete.
type Stage string

const (
	StageForm     Stage = "form"
	StageProfile  Stage = "profile"
	StageImage    Stage = "image"
	StageComplete Stage = "complete"
)

// Reason explains a decision.
type Reason string

const (
	ReasonAllChecksPassed  Reason = "all_checks_passed"
	ReasonExtractionFailed Reason = "extraction_failed"
	ReasonMergeMismatch    Reason = "merge_mismatch"
	ReasonFuzzyCheckFailed Reason = "fuzzy_check_failed"
)

// Sources locates one client's three documents.
type Sources struct {
	FormPath    string
	ProfilePath string
	ImagePath   string
}

// Result is the outcome of one evaluation. Err holds the typed failure
// (*extract.ExtractionError, *record.MergeError or *fuzzy.CheckError) of a
// rejection and is nil on accept.
type Result struct {
	Decision      Decision
	Stage         Stage
	Reason        Reason
	Mismatches    []record.Mismatch
	FuzzyFailures []record.Field
	Err           error
}

// Accepted reports whether the client passed every stage.
func (r *Result) Accepted() bool {
	return r != nil && r.Decision == DecisionAccept
}

// Details renders the failure for logs and audit trails.
func (r *Result) Details() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, m := range r.Mismatches {
		out = append(out, m.String())
	}
	for _, f := range r.FuzzyFailures {
		out = append(out, "not found in scan: "+string(f))
	}
	if len(out) == 0 && r.Err != nil {
		out = append(out, r.Err.Error())
	}
	return out
}

func accepted() *Result {
	return &Result{Decision: DecisionAccept, Stage: StageComplete, Reason: ReasonAllChecksPassed}
}

func rejected(stage Stage, reason Reason, err error) *Result {
	return &Result{Decision: DecisionReject, Stage: stage, Reason: reason, Err: err}
}

// Evaluation is a Result stamped with identity and timing, as returned by
// the Service.
type Evaluation struct {
	ID          uuid.UUID
	ClientID    string
	Result      *Result
	EvaluatedAt time.Time
	Duration    time.Duration
}
