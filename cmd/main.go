// Command rotation solves an offline rotation plan for a roster CSV and
// writes the plan grid to stdout. With a metrics address configured it also
// serves Prometheus metrics until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snapwise/rotation/internal/adapters/rosterio"
	"github.com/snapwise/rotation/internal/config"
	"github.com/snapwise/rotation/internal/domain/formation"
	"github.com/snapwise/rotation/internal/domain/scoring"
	"github.com/snapwise/rotation/internal/domain/solver"
	"github.com/snapwise/rotation/pkg/logger"
	"github.com/snapwise/rotation/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
	}

	if len(os.Args) < 2 {
		log.Error(ctx, "usage: rotation <roster.csv>")
		os.Exit(2)
	}
	rosterPath := os.Args[1]

	metrics.Init(metrics.WithNamespace("rotation"))
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	f, err := os.Open(rosterPath)
	if err != nil {
		log.Error(ctx, "failed to open roster", logger.String("path", rosterPath), logger.Error(err))
		os.Exit(1)
	}
	importer := rosterio.NewImporter(rosterio.WithLimitedDefault(cfg.LimitedDefault))
	roster, report, err := importer.Import(f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to import roster", logger.Error(err))
		os.Exit(1)
	}
	for _, finding := range report.Findings {
		log.Warn(ctx, "roster import finding", logger.String("finding", finding))
	}
	for _, finding := range rosterio.Validate(roster) {
		log.Warn(ctx, "roster validation finding", logger.String("finding", finding))
	}
	log.Info(ctx, "roster imported",
		logger.Int("players", report.RowsImported),
		logger.Int("skipped", report.RowsSkipped))

	variant, _ := formation.VariantByName(cfg.Variant)
	engine, err := scoring.New(scoring.WithWeights(cfg.PreferenceWeights))
	if err != nil {
		log.Error(ctx, "invalid preference weights", logger.Error(err))
		os.Exit(1)
	}

	capValue := cfg.EvennessCapValue
	if !cfg.EvennessCapEnabled {
		capValue = -1
	}
	sol := solver.New(
		solver.WithScoring(engine),
		solver.WithEvennessCap(capValue),
		solver.WithLimitedPenalty(cfg.LimitedPenalty),
		solver.WithMismatchPenalty(cfg.MismatchPenalty),
		solver.WithGreedyFairness(cfg.GreedyFairness),
		solver.WithSeed(cfg.RandomSeed),
		solver.WithStepBudget(cfg.SolverStepBudget),
		solver.WithLogger(log.Named("solver")),
	)

	req := solver.Request{
		Roster:  roster,
		Variant: variant,
		Series:  cfg.TotalSeries,
	}
	result, err := sol.Solve(ctx, req)
	if err != nil {
		log.Error(ctx, "solve failed", logger.Error(err))
		os.Exit(1)
	}
	if result.Warning != "" {
		log.Warn(ctx, "solve warning", logger.String("warning", result.Warning))
	}
	log.Info(ctx, "plan solved",
		logger.String("strategy", string(result.Strategy)),
		logger.Int("series", len(result.Plan.Series)),
		logger.Int("unfilled", len(result.Unfilled)))

	if err := rosterio.ExportPlan(os.Stdout, variant, result.Plan, roster); err != nil {
		log.Error(ctx, "failed to write plan", logger.Error(err))
		os.Exit(1)
	}
	for _, load := range sol.Dashboard(req, result.Plan) {
		log.Info(ctx, "player load",
			logger.String("player", load.Name),
			logger.Int("assigned", load.Assigned),
			logger.Int("lower", load.LowerBound),
			logger.Int("upper", load.UpperBound),
			logger.Any("out_of_bounds", load.OutOfBounds))
	}

	if cfg.MetricsAddr != "" {
		log.Info(ctx, "serving metrics until interrupted", logger.String("addr", cfg.MetricsAddr))
		<-ctx.Done()
	}
}

func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
