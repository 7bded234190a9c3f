package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/platform/metrics"
	"onboard/pkg/platform/middleware/auth"
	"onboard/pkg/platform/middleware/request"
	"onboard/pkg/requestcontext"
	"onboard/pkg/testutil"
)

type echoRoutes struct{}

func (echoRoutes) Register(r chi.Router) {
	r.Post("/v1/evaluations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Operator", requestcontext.Operator(r.Context()))
		w.WriteHeader(http.StatusAccepted)
	})
}

type fixedValidator struct{}

func (fixedValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.JWTClaims{Operator: "analyst-7"}, nil
}

func newTestRouter(health ...HealthCheck) (http.Handler, *prometheus.Registry) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		API:      []Registrar{echoRoutes{}},
		Auth:     auth.RequireAuth(fixedValidator{}, logger),
		Metrics:  metrics.NewWith(reg),
		Gatherer: reg,
		Health:   health,
		Logger:   logger,
	}), reg
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "a router with auth enabled", func(t *testing.T) {
		router, _ := newTestRouter()

		testutil.When(t, "the API is called without a token", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewMultipartRequest(t, "/v1/evaluations", nil, nil))

			testutil.Then(t, "it is rejected", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
				assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
			})
		})

		testutil.When(t, "the API is called with a valid token", func(t *testing.T) {
			req := testutil.NewMultipartRequest(t, "/v1/evaluations", nil, nil)
			req.Header.Set("Authorization", "Bearer good")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the operator reaches the handler", func(t *testing.T) {
				assert.Equal(t, http.StatusAccepted, rr.Code)
				assert.Equal(t, "analyst-7", rr.Header().Get("X-Operator"))
			})
		})

		testutil.When(t, "health is probed without a token", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "it is public", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
			})
		})
	})
}

func TestRouter_HealthDegraded(t *testing.T) {
	router, _ := newTestRouter(
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
	)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	body := testutil.UnmarshalResponse[healthResponse](t, rr)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.Equal(t, "unavailable", body.Checks["redis"])
	assert.NotContains(t, rr.Body.String(), "refused")
}

func TestRouter_MetricsExposeRequests(t *testing.T) {
	router, _ := newTestRouter()

	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `onboard_http_requests_total{method="GET",route="/healthz",status="200"} 1`))
}
