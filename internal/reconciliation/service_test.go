package reconciliation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"onboard/internal/evidence/extract"
	"onboard/internal/identity/record"
	"onboard/internal/reconciliation/metrics"
	"onboard/internal/reconciliation/mocks"
	"onboard/internal/staging"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/requestcontext"
)

type evaluatorFunc func(ctx context.Context, src Sources) *Result

func (f evaluatorFunc) Evaluate(ctx context.Context, src Sources) *Result {
	return f(ctx, src)
}

// =============================================================================
// Service Test Suite
// =============================================================================

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	sink    *mocks.MockDecisionSink
	root    string
	service *Service
	seen    Sources
	result  *Result
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sink = mocks.NewMockDecisionSink(s.ctrl)
	s.root = s.T().TempDir()
	s.result = accepted()

	engine := evaluatorFunc(func(_ context.Context, src Sources) *Result {
		s.seen = src
		for _, p := range []string{src.FormPath, src.ProfilePath, src.ImagePath} {
			_, err := os.Stat(p)
			s.Require().NoError(err, "staged document should exist during evaluation")
		}
		return s.result
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = NewService(engine,
		WithLogger(logger),
		WithMetrics(metrics.NewWith(prometheus.NewRegistry())),
		WithAuditSink(s.sink),
		WithStager(staging.New(s.root, staging.WithLogger(logger))),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) request() EvaluateRequest {
	return EvaluateRequest{
		ClientID: "client_1",
		Documents: []staging.Document{
			{Kind: KindForm, Name: "account.json", Body: strings.NewReader(`{"a":"b"}`)},
			{Kind: KindProfile, Name: "profile.html", Body: strings.NewReader("<table></table>")},
			{Kind: KindPassport, Name: "passport.txt", Body: strings.NewReader("JANE")},
		},
	}
}

func (s *ServiceSuite) assertRootEmpty() {
	entries, err := os.ReadDir(s.root)
	s.Require().NoError(err)
	s.Empty(entries, "staged workspace should be removed")
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func (s *ServiceSuite) TestNewServiceRequiresEngine() {
	_, err := NewService(nil)
	s.ErrorContains(err, "engine is required")
}

func (s *ServiceSuite) TestAcceptIsRecordedAndStagingRemoved() {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithOperator(ctx, "analyst@bank")

	var got audit.Event
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		got = e
		return nil
	})

	ev, err := s.service.Evaluate(ctx, s.request())
	s.Require().NoError(err)

	s.True(ev.Result.Accepted())
	s.Equal("client_1", ev.ClientID)
	s.Equal(at, ev.EvaluatedAt)
	s.Equal(".json", filepath.Ext(s.seen.FormPath))
	s.Equal(".html", filepath.Ext(s.seen.ProfilePath))
	s.Equal(".txt", filepath.Ext(s.seen.ImagePath))

	s.Equal(string(audit.EventEvaluationAccepted), got.Action)
	s.Equal(audit.CategoryCompliance, got.Category)
	s.Equal(ev.ID.String(), got.EvaluationID)
	s.Equal("client_1", got.ClientID)
	s.Equal("accept", got.Decision)
	s.Equal("req-1", got.RequestID)
	s.Equal("analyst@bank", got.ActorID)

	s.assertRootEmpty()
}

func (s *ServiceSuite) TestRejectCarriesDetails() {
	s.result = rejected(StageProfile, ReasonMergeMismatch, errors.New("merge profile"))
	s.result.Mismatches = []record.Mismatch{{
		Source: "profile", Field: record.FieldSurname,
		Held: record.Text("Doe"), HeldBy: "form", Offered: record.Text("Smith"),
	}}

	var got audit.Event
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		got = e
		return nil
	})

	ev, err := s.service.Evaluate(context.Background(), s.request())
	s.Require().NoError(err)

	s.False(ev.Result.Accepted())
	s.Equal(string(audit.EventEvaluationRejected), got.Action)
	s.Equal("merge_mismatch", got.Reason)
	s.Equal("profile", got.Stage)
	s.Equal([]string{`profile: surname "Doe" (from form) != "Smith"`}, got.Details)
	s.assertRootEmpty()
}

func (s *ServiceSuite) TestAuditFailureWithholdsDecision() {
	s.sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	ev, err := s.service.Evaluate(context.Background(), s.request())

	s.Nil(ev)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.assertRootEmpty()
}

func (s *ServiceSuite) TestMissingDocumentIsValidationError() {
	req := s.request()
	req.Documents = req.Documents[:2]

	_, err := s.service.Evaluate(context.Background(), req)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "passport document is required")
}

func (s *ServiceSuite) TestDuplicateDocumentIsValidationError() {
	req := s.request()
	req.Documents = append(req.Documents, staging.Document{Kind: KindForm, Name: "b.json", Body: strings.NewReader("{}")})

	_, err := s.service.Evaluate(context.Background(), req)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.assertRootEmpty()
}

func (s *ServiceSuite) TestUnsupportedDocumentTypeIsValidationError() {
	registry := extract.NewRegistry()
	s.Require().NoError(registry.RegisterForm(mocks.NewMockFormExtractor(s.ctrl), ".json"))
	s.Require().NoError(registry.RegisterProfile(mocks.NewMockProfileExtractor(s.ctrl), ".html"))
	s.Require().NoError(registry.RegisterImage(mocks.NewMockImageExtractor(s.ctrl), ".txt", ".png"))

	logger := slog.New(slog.DiscardHandler)
	svc, err := NewService(evaluatorFunc(func(context.Context, Sources) *Result {
		s.Fail("engine must not run for an unsupported document")
		return accepted()
	}),
		WithLogger(logger),
		WithAuditSink(s.sink),
		WithStager(staging.New(s.root, staging.WithLogger(logger))),
		WithDocumentChecker(registry),
	)
	s.Require().NoError(err)

	req := s.request()
	req.Documents[2] = staging.Document{Kind: KindPassport, Name: "passport.bmp", Body: strings.NewReader("BM")}

	ev, err := svc.Evaluate(context.Background(), req)

	s.Nil(ev)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), `".bmp"`)
	s.assertRootEmpty()
}

func (s *ServiceSuite) TestNoAdapterRejectIsNotRecorded() {
	s.result = rejected(StageImage, ReasonExtractionFailed, extract.NewError(
		extract.SourceImage, filepath.Join(s.root, "passport.bmp"), extract.CategoryMalformed,
		`unsupported document type ".bmp"`, extract.ErrNoAdapter))

	ev, err := s.service.Evaluate(context.Background(), s.request())

	s.Nil(ev)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.NotContains(err.Error(), s.root, "staging paths stay out of the client-facing message")
	s.assertRootEmpty()
}

func (s *ServiceSuite) TestCancelledEvaluationIsTimeout() {
	s.result = rejected(StageForm, ReasonExtractionFailed, context.Canceled)

	ev, err := s.service.Evaluate(context.Background(), s.request())

	s.Nil(ev)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.assertRootEmpty()
}

func (s *ServiceSuite) TestEvaluateSourcesWithoutSink() {
	dir := s.T().TempDir()
	src := Sources{
		FormPath:    filepath.Join(dir, "f.json"),
		ProfilePath: filepath.Join(dir, "p.html"),
		ImagePath:   filepath.Join(dir, "i.txt"),
	}
	for _, p := range []string{src.FormPath, src.ProfilePath, src.ImagePath} {
		s.Require().NoError(os.WriteFile(p, []byte("x"), 0o600))
	}

	svc, err := NewService(evaluatorFunc(func(context.Context, Sources) *Result { return accepted() }))
	s.Require().NoError(err)

	ev, err := svc.EvaluateSources(context.Background(), "client_9", src)
	s.Require().NoError(err)
	s.Equal("client_9", ev.ClientID)
	s.NotEqual(ev.ID.String(), "")
}
