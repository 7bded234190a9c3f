package testutil

import (
	"net/http"

	"onboard/pkg/requestcontext"
)

// WithOperator marks the request as authenticated by operator, as the auth
// middleware would.
func WithOperator(req *http.Request, operator string) *http.Request {
	return req.WithContext(requestcontext.WithOperator(req.Context(), operator))
}

// WithRequestID sets the request ID the request middleware would assign.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
