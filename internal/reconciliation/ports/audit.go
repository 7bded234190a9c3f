package ports

//go:generate mockgen -source=audit.go -destination=../mocks/audit_mocks.go -package=mocks

import (
	"context"

	"onboard/pkg/platform/audit"
)

// DecisionSink receives one audit event per evaluation. It is defined here to
// keep the reconciliation package free of publisher wiring.
type DecisionSink interface {
	Emit(ctx context.Context, event audit.Event) error
}
