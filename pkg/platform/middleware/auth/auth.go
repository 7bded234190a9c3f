// Package auth guards operator-facing routes with a bearer token.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/requestcontext"
)

// JWTValidator validates a raw bearer token.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims are the claims the middleware needs from a validated token.
type JWTClaims struct {
	Operator string
	JTI      string
}

// Emitter records security events for rejected credentials.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

type options struct {
	emitter Emitter
}

// Option configures RequireAuth.
type Option func(*options)

// WithEmitter records an auth_failed audit event for every rejected request.
func WithEmitter(e Emitter) Option {
	return func(o *options) {
		o.emitter = e
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// operator subject in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger, opts ...Option) func(http.Handler) http.Handler {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				reject(ctx, w, logger, o, "missing token", dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				reject(ctx, w, logger, o, "invalid token", err)
				return
			}
			if claims.Operator == "" {
				reject(ctx, w, logger, o, "token without subject", dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}

			ctx = requestcontext.WithOperator(ctx, claims.Operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, o *options, reason string, err error) {
	logger.WarnContext(ctx, "unauthorized access - "+reason,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"client_ip", requestcontext.ClientIP(ctx),
	)
	if o.emitter != nil {
		emitErr := o.emitter.Emit(ctx, audit.Event{
			Action:    string(audit.EventAuthFailed),
			Reason:    reason,
			RequestID: requestcontext.RequestID(ctx),
		})
		if emitErr != nil {
			logger.WarnContext(ctx, "failed to record auth failure", "error", emitErr)
		}
	}
	if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		err = dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}
	httputil.WriteError(w, err)
}
