//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *DecisionStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = New(s.redis.Client, WithKeyPrefix("test:decision:"))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestLatestOverwrites() {
	ctx := context.Background()

	_, err := s.store.Latest(ctx, "client_1")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Append(ctx, audit.Event{ClientID: "client_1", EvaluationID: "ev-1", Action: string(audit.EventEvaluationRejected), Decision: "reject"}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{ClientID: "client_1", EvaluationID: "ev-2", Action: string(audit.EventEvaluationAccepted), Decision: "accept"}))

	latest, err := s.store.Latest(ctx, "client_1")
	s.Require().NoError(err)
	s.Equal("ev-2", latest.EvaluationID)
	s.Equal("accept", latest.Decision)

	ttl, err := s.redis.Client.TTL(ctx, "test:decision:client_1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 29*24*time.Hour)
}

func (s *RedisStoreSuite) TestIgnoresNonDecisions() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, audit.Event{ClientID: "client_2", Action: string(audit.EventAuthFailed)}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{Action: string(audit.EventEvaluationAccepted)}))

	keys, err := s.redis.Client.Keys(ctx, "test:decision:*").Result()
	s.Require().NoError(err)
	s.Empty(keys)
}

func (s *RedisStoreSuite) TestNoExpiry() {
	ctx := context.Background()
	store := New(s.redis.Client, WithKeyPrefix("test:decision:"), WithTTL(0))

	s.Require().NoError(store.Append(ctx, audit.Event{ClientID: "client_3", Action: string(audit.EventEvaluationAccepted)}))

	ttl, err := s.redis.Client.TTL(ctx, "test:decision:client_3").Result()
	s.Require().NoError(err)
	s.Equal(time.Duration(-1), ttl)
}
