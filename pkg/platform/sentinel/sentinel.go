// Package sentinel holds errors for infrastructure facts. Stores return them,
// possibly wrapped, and callers test with errors.Is before translating them
// into domain errors. Input validation uses pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound: the store holds nothing for the key, e.g. no decision
	// has been recorded for a client yet.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable: a backing service did not answer.
	ErrUnavailable = errors.New("unavailable")
)
