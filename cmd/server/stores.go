package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	"onboard/internal/platform/config"
	"onboard/internal/platform/kafka"
	"onboard/internal/platform/postgres"
	platformredis "onboard/internal/platform/redis"
	"onboard/internal/reconciliation/handler"
	httptransport "onboard/internal/transport/http"
	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/consumer"
	"onboard/pkg/platform/audit/publishers/fanout"
	kafkapub "onboard/pkg/platform/audit/publishers/kafka"
	"onboard/pkg/platform/audit/store/memory"
	pgstore "onboard/pkg/platform/audit/store/postgres"
	redisstore "onboard/pkg/platform/audit/store/redis"
	"onboard/pkg/platform/sentinel"
)

// stores is the audit wiring chosen from configuration.
//
// Postgres, when configured, is the primary record; otherwise decisions are
// held in memory. Kafka and Redis are best-effort secondaries. With both
// configured, Redis is fed by the topic projector instead of directly so a
// single consumer group keeps it current for every replica.
type stores struct {
	Audit     audit.Store
	Decisions handler.DecisionReader
	Projector *kafka.Consumer
	Health    []httptransport.HealthCheck

	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*stores, error) {
	s := &stores{}
	fail := func(err error) (*stores, error) {
		s.Close()
		return nil, err
	}

	var primary interface {
		audit.Store
		handler.DecisionReader
	}
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return fail(err)
	}
	if db != nil {
		s.closers = append(s.closers, func() { _ = db.Close() })
		pg := pgstore.New(db)
		if cfg.Database.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				return fail(err)
			}
		}
		primary = pg
		s.Health = append(s.Health, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
	} else {
		log.Warn("ONBOARD_DATABASE_URL not set, decisions are kept in memory only")
		primary = memory.NewInMemoryStore()
	}

	var opts []fanout.Option
	var decisions handler.DecisionReader = primary

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	var cache *redisstore.DecisionStore
	if rdb != nil {
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		cache = redisstore.New(rdb.Client, redisstore.WithTTL(cfg.Redis.DecisionTTL))
		decisions = cachedDecisions{cache: cache, primary: primary, log: log}
		s.Health = append(s.Health, httptransport.HealthCheck{Name: "redis", Check: rdb.Health})
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return fail(err)
	}
	if producer != nil {
		s.closers = append(s.closers, producer.Close)
		if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return fail(err)
		}
		opts = append(opts, fanout.WithSecondary("kafka", kafkapub.New(producer, cfg.Kafka.Topic)))
		s.Health = append(s.Health, httptransport.HealthCheck{Name: "kafka", Check: producerHealth(producer)})

		if cache != nil {
			router := consumer.NewRouter(log, nil)
			consumer.NewDecisionProjector(cache, log).Register(router)
			s.Projector, err = kafka.NewConsumer(cfg.Kafka, router, log)
			if err != nil {
				return fail(err)
			}
		}
	} else if cache != nil {
		opts = append(opts, fanout.WithSecondary("redis", cache))
	}

	opts = append(opts, fanout.WithLogger(log), fanout.WithMetrics(fanout.NewMetrics(reg)))
	s.Audit = fanout.New(primary, opts...)
	s.Decisions = decisions
	return s, nil
}

func producerHealth(cl *kgo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := cl.Ping(ctx); err != nil {
			return fmt.Errorf("kafka: %w: %w", sentinel.ErrUnavailable, err)
		}
		return nil
	}
}

// cachedDecisions serves from Redis and falls back to the primary record on
// a miss or a cache failure.
type cachedDecisions struct {
	cache   handler.DecisionReader
	primary handler.DecisionReader
	log     *slog.Logger
}

func (c cachedDecisions) Latest(ctx context.Context, clientID string) (audit.Event, error) {
	event, err := c.cache.Latest(ctx, clientID)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		c.log.WarnContext(ctx, "decision cache read failed", "client_id", clientID, "error", err)
	}
	return c.primary.Latest(ctx, clientID)
}
