package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"onboard/internal/evidence/extract/builtin"
	jwttoken "onboard/internal/jwt_token"
	"onboard/internal/platform/config"
	"onboard/internal/platform/httpserver"
	"onboard/internal/platform/logger"
	platformmetrics "onboard/internal/platform/metrics"
	"onboard/internal/platform/otel"
	"onboard/internal/reconciliation"
	"onboard/internal/reconciliation/handler"
	recmetrics "onboard/internal/reconciliation/metrics"
	"onboard/internal/staging"
	httptransport "onboard/internal/transport/http"
	"onboard/pkg/platform/audit/publisher"
	"onboard/pkg/platform/middleware/auth"
)

const auditBuffer = 256

// main wires dependencies and runs the HTTP server until SIGINT or SIGTERM.
// Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	registry, err := builtin.NewRegistry(builtin.Config{
		TesseractPath: cfg.Extraction.TesseractPath,
		TesseractLang: cfg.Extraction.TesseractLang,
		OCRTimeout:    cfg.Extraction.OCRTimeout,
		XLSXSheet:     cfg.Extraction.XLSXSheet,
	})
	if err != nil {
		return fmt.Errorf("build extractor registry: %w", err)
	}

	reg := prometheus.DefaultRegisterer
	recMetrics := recmetrics.NewWith(reg)

	engine, err := reconciliation.NewEngine(registry, registry, registry,
		reconciliation.WithEngineLogger(log),
		reconciliation.WithEngineMetrics(recMetrics),
	)
	if err != nil {
		return err
	}

	stores, err := openStores(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer stores.Close()

	pub := publisher.NewPublisher(stores.Audit,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
	)
	defer pub.Close()

	service, err := reconciliation.NewService(engine,
		reconciliation.WithLogger(log),
		reconciliation.WithMetrics(recMetrics),
		reconciliation.WithAuditSink(pub),
		reconciliation.WithStager(staging.New(cfg.Server.StagingDir, staging.WithLogger(log))),
		reconciliation.WithDocumentChecker(registry),
	)
	if err != nil {
		return err
	}

	evaluations := handler.New(service, log,
		handler.WithDecisionReader(stores.Decisions),
		handler.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
	)

	deps := httptransport.Deps{
		API:     []httptransport.Registrar{evaluations},
		Metrics: platformmetrics.NewWith(reg),
		Health:  stores.Health,
		Logger:  log,
	}
	if cfg.AuthEnabled() {
		jwt := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
		deps.Auth = auth.RequireAuth(jwttoken.NewJWTServiceAdapter(jwt), log, auth.WithEmitter(pub))
	} else {
		log.Warn("ONBOARD_JWT_SIGNING_KEY not set, evaluation endpoints are unauthenticated")
	}

	if stores.Projector != nil {
		// Deferred after stores.Close so the projector is gone before Redis closes.
		defer startProjector(ctx, stores.Projector, log)()
	}

	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(deps), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	log.Info("starting onboard", slog.String("addr", cfg.Server.Addr))
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

type runner interface {
	Run(ctx context.Context) error
}

// startProjector runs p in the background. The returned func cancels it and
// blocks until Run has returned.
func startProjector(ctx context.Context, p runner, log *slog.Logger) (wait func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("decision projector stopped", "error", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
