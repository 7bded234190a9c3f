// Package evaluate runs the reconciliation engine over a directory of
// client folders and reports each decision.
package evaluate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"

	"onboard/internal/evidence/extract"
	"onboard/internal/evidence/extract/builtin"
	"onboard/internal/platform/config"
	"onboard/internal/platform/logger"
	"onboard/internal/platform/postgres"
	"onboard/internal/reconciliation"
	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/publisher"
	"onboard/pkg/platform/audit/store/memory"
	pgstore "onboard/pkg/platform/audit/store/postgres"
)

// ErrDisagreement is returned when -expect-accept-upto is set and at least
// one decision differs from the label implied by the folder number.
var ErrDisagreement = errors.New("decisions disagree with labels")

// Document base names looked up in each client folder, in preference order.
var (
	formNames    = []string{"account", "form"}
	profileNames = []string{"profile"}
	imageNames   = []string{"passport"}
)

var clientNumber = regexp.MustCompile(`(\d+)$`)

// Config holds evaluate command configuration.
type Config struct {
	Dir              string
	ExpectAcceptUpTo int
	LogLevel         string `env:"ONBOARD_LOG_LEVEL" envDefault:"warn"`
	Extraction       config.ExtractionConfig
	Batch            config.BatchConfig
	// Database, when set, records decisions and the batch summary in the
	// same audit trail as the server.
	Database config.DatabaseConfig
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.Dir, "dir", "client_data", "directory holding one folder per client")
	fs.IntVar(&cfg.ExpectAcceptUpTo, "expect-accept-upto", -1, "folders numbered up to N are expected to be accepted; -1 disables the comparison")
	fs.IntVar(&cfg.Batch.Concurrency, "concurrency", cfg.Batch.Concurrency, "clients evaluated in parallel")
	fs.Float64Var(&cfg.Batch.Rate, "rate", cfg.Batch.Rate, "evaluations started per second; 0 is unlimited")
	fs.StringVar(&cfg.Extraction.TesseractPath, "tesseract", cfg.Extraction.TesseractPath, "tesseract binary for image OCR")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Dir == "" {
		return Config{}, errors.New("-dir is required")
	}
	return cfg, nil
}

// Run evaluates every client folder under cfg.Dir and writes one line per
// client to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, "text")

	store, closeStore, err := openAuditStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()
	return run(ctx, cfg, out, log, store)
}

// openAuditStore returns the Postgres audit store when configured and an
// in-memory one otherwise.
func openAuditStore(ctx context.Context, cfg config.DatabaseConfig) (audit.Store, func(), error) {
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return memory.NewInMemoryStore(), func() {}, nil
	}
	store := pgstore.New(db)
	if cfg.Migrate {
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return store, func() { _ = db.Close() }, nil
}

func run(ctx context.Context, cfg Config, out io.Writer, log *slog.Logger, store audit.Store) error {
	pub := publisher.NewPublisher(store, publisher.WithLogger(log))
	defer pub.Close()

	registry, err := builtin.NewRegistry(builtin.Config{
		TesseractPath: cfg.Extraction.TesseractPath,
		TesseractLang: cfg.Extraction.TesseractLang,
		OCRTimeout:    cfg.Extraction.OCRTimeout,
		XLSXSheet:     cfg.Extraction.XLSXSheet,
	})
	if err != nil {
		return err
	}
	engine, err := reconciliation.NewEngine(registry, registry, registry, reconciliation.WithEngineLogger(log))
	if err != nil {
		return err
	}
	service, err := reconciliation.NewService(engine,
		reconciliation.WithLogger(log),
		reconciliation.WithAuditSink(pub),
	)
	if err != nil {
		return err
	}

	items, skipped, err := Discover(cfg.Dir, registry)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		log.WarnContext(ctx, "skipping client folder", "dir", s.Dir, "reason", s.Reason)
	}

	batch := reconciliation.NewBatch(service,
		reconciliation.WithConcurrency(cfg.Batch.Concurrency),
		reconciliation.WithRateLimit(rate.Limit(cfg.Batch.Rate), cfg.Batch.Burst),
		reconciliation.WithBatchLogger(log),
		reconciliation.WithBatchAuditSink(pub),
	)
	outcomes, runErr := batch.Run(ctx, items)

	disagreements := report(out, outcomes, cfg.ExpectAcceptUpTo)
	if runErr != nil {
		return runErr
	}
	if disagreements > 0 {
		return fmt.Errorf("%w: %d", ErrDisagreement, disagreements)
	}
	return nil
}

// Skipped is a client folder that could not be evaluated.
type Skipped struct {
	Dir    string
	Reason string
}

// Discover returns one batch item per client folder that holds all three
// documents in a supported format, sorted by client number.
func Discover(dir string, registry *extract.Registry) ([]reconciliation.BatchItem, []Skipped, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read client directory: %w", err)
	}

	var items []reconciliation.BatchItem
	var skipped []Skipped
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		clientDir := filepath.Join(dir, e.Name())
		src, missing, err := locate(clientDir, registry)
		if err != nil {
			return nil, nil, err
		}
		if len(missing) > 0 {
			skipped = append(skipped, Skipped{Dir: clientDir, Reason: "missing " + strings.Join(missing, ", ")})
			continue
		}
		items = append(items, reconciliation.BatchItem{ClientID: e.Name(), Sources: src})
	}

	slices.SortStableFunc(items, func(a, b reconciliation.BatchItem) int {
		na, oka := number(a.ClientID)
		nb, okb := number(b.ClientID)
		if oka && okb && na != nb {
			return na - nb
		}
		return strings.Compare(a.ClientID, b.ClientID)
	})
	return items, skipped, nil
}

func locate(dir string, registry *extract.Registry) (reconciliation.Sources, []string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return reconciliation.Sources{}, nil, fmt.Errorf("read %s: %w", dir, err)
	}
	find := func(source extract.Source, bases []string) string {
		for _, base := range bases {
			for _, f := range files {
				name := f.Name()
				if f.IsDir() || !strings.EqualFold(strings.TrimSuffix(name, filepath.Ext(name)), base) {
					continue
				}
				if path := filepath.Join(dir, name); registry.Supports(source, path) {
					return path
				}
			}
		}
		return ""
	}

	src := reconciliation.Sources{
		FormPath:    find(extract.SourceForm, formNames),
		ProfilePath: find(extract.SourceProfile, profileNames),
		ImagePath:   find(extract.SourceImage, imageNames),
	}
	var missing []string
	if src.FormPath == "" {
		missing = append(missing, "form")
	}
	if src.ProfilePath == "" {
		missing = append(missing, "profile")
	}
	if src.ImagePath == "" {
		missing = append(missing, "passport")
	}
	return src, missing, nil
}

func number(clientID string) (int, bool) {
	m := clientNumber.FindStringSubmatch(clientID)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// report writes the outcome table and returns how many labelled clients got
// the other decision.
func report(out io.Writer, outcomes []reconciliation.BatchOutcome, expectUpTo int) int {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	disagreements := 0
	for _, o := range outcomes {
		if o.Err != nil || o.Evaluation == nil {
			fmt.Fprintf(tw, "%s\terror\t%v\n", o.ClientID, o.Err)
			continue
		}
		res := o.Evaluation.Result
		mark := ""
		if n, ok := number(o.ClientID); ok && expectUpTo >= 0 {
			if expected := n <= expectUpTo; expected != res.Accepted() {
				disagreements++
				mark = "\tUNEXPECTED"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\n", o.ClientID, res.Decision, res.Reason, mark)
		for _, d := range res.Details() {
			fmt.Fprintf(tw, "\t\t  %s\n", d)
		}
	}

	sum := reconciliation.Summarize(outcomes)
	fmt.Fprintf(tw, "\ntotal=%d accepted=%d rejected=%d failed=%d", sum.Total, sum.Accepted, sum.Rejected, sum.Failed)
	if expectUpTo >= 0 {
		fmt.Fprintf(tw, " disagreements=%d", disagreements)
	}
	fmt.Fprintln(tw)
	_ = tw.Flush()
	return disagreements
}
