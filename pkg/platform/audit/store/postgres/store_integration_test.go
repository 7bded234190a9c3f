//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	txcontext "onboard/pkg/platform/tx"
	"onboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = New(s.pg.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
	s.Require().NoError(s.store.Migrate(context.Background()), "migration is idempotent")
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "audit_events"))
}

func at(minute int) time.Time {
	return time.Date(2026, 3, 1, 12, minute, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp:    at(1),
		EvaluationID: "ev-1",
		ClientID:     "client_1",
		Action:       string(audit.EventEvaluationRejected),
		Decision:     "reject",
		Reason:       "merge_mismatch",
		Stage:        "profile",
		Details:      []string{`profile: surname "Doe" (from form) != "Smith"`},
		RequestID:    "req-1",
		ActorID:      "analyst-7",
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{Timestamp: at(2), ClientID: "client_1", Action: string(audit.EventEvaluationAccepted), Decision: "accept"}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{Timestamp: at(3), Action: string(audit.EventBatchCompleted)}))

	events, err := s.store.ListByClient(ctx, "client_1")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("ev-1", events[0].EvaluationID, "oldest first")
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal([]string{`profile: surname "Doe" (from form) != "Smith"`}, events[0].Details)
	s.Equal("analyst-7", events[0].ActorID)
	s.True(events[0].Timestamp.Equal(at(1)))

	recent, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(string(audit.EventBatchCompleted), recent[0].Action, "newest first")
	s.Equal(audit.CategoryOperations, recent[0].Category)
}

func (s *PostgresStoreSuite) TestLatestDecision() {
	ctx := context.Background()

	_, err := s.store.Latest(ctx, "client_1")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Append(ctx, audit.Event{Timestamp: at(1), ClientID: "client_1", EvaluationID: "ev-1", Action: string(audit.EventEvaluationRejected)}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{Timestamp: at(2), ClientID: "client_1", EvaluationID: "ev-2", Action: string(audit.EventEvaluationAccepted)}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{Timestamp: at(3), ClientID: "client_1", Action: string(audit.EventAuthFailed)}))

	latest, err := s.store.Latest(ctx, "client_1")
	s.Require().NoError(err)
	s.Equal("ev-2", latest.EvaluationID)
}

func (s *PostgresStoreSuite) TestAppendJoinsContextTransaction() {
	ctx := context.Background()
	rollback := errors.New("rollback")

	err := txcontext.Run(ctx, s.pg.DB, func(ctx context.Context) error {
		if err := s.store.Append(ctx, audit.Event{Timestamp: at(1), ClientID: "client_9", Action: string(audit.EventEvaluationAccepted)}); err != nil {
			return err
		}
		return rollback
	})
	s.ErrorIs(err, rollback)

	events, err := s.store.ListByClient(ctx, "client_9")
	s.Require().NoError(err)
	s.Empty(events, "append rolled back with the surrounding transaction")

	var count int
	s.Require().NoError(s.pg.DB.QueryRowContext(ctx, "SELECT count(*) FROM audit_events").Scan(&count))
	s.Zero(count)
}
