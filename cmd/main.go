package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kkkkikiki/shiftsweep/internal/config"
	"github.com/kkkkikiki/shiftsweep/internal/engine"
	"github.com/kkkkikiki/shiftsweep/internal/expiry"
	"github.com/kkkkikiki/shiftsweep/internal/history"
	"github.com/kkkkikiki/shiftsweep/internal/publish"
	"github.com/kkkkikiki/shiftsweep/internal/report"
	"github.com/kkkkikiki/shiftsweep/internal/service"
	"github.com/kkkkikiki/shiftsweep/internal/store"
)

var (
	// Global flags
	verbose     bool
	filePath    string
	expiresFlag string
	dryRun      bool

	// Logger
	logger *zap.Logger
)

// rootCmd runs one pass over the codes document. With positional codes it
// performs a targeted update; without, a bulk sweep.
var rootCmd = &cobra.Command{
	Use:   "shiftsweep [CODE, CODE, ...]",
	Short: "Mark SHiFT codes expired in the codes document",
	Long: `shiftsweep maintains the expired flags in the scraped codes document.

With CODE(s): targeted update. If --expires is provided, only the 'expires'
field of the matched codes is overwritten. If --expires is omitted, both
'expires' (set to now) and 'expired'=true are written.

With no CODE: bulk sweep sets 'expired'=true for entries whose existing
'expires' predates the reference time.

Naive timestamps (no offset) are interpreted in the configured civil
timezone (default America/Chicago) and converted to UTC.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE:          runOnce,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// serveCmd runs scheduled bulk sweeps and exposes health and metrics.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled sweeps with health and metrics endpoints",
	Long: `Runs bulk sweeps on the SWEEP_SCHEDULE cron expression and serves
/health and /metrics until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&filePath, "file", "", "path to the codes document (default: SWEEP_FILE or data/shiftcodes.json)")
	rootCmd.Flags().StringVar(&expiresFlag, "expires", "", "ISO-8601 reference/stamp timestamp; naive values are civil-local")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report intended changes without writing or uploading")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and wires the sweeper's collaborators. The
// returned cleanup closes the history sink; the sink itself is returned so
// serve mode can expose it over HTTP.
func setup(ctx context.Context) (*config.Config, *expiry.Parser, *service.Sweeper, *history.Store, func(), error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if filePath != "" {
		cfg.Sweep.File = filePath
	}

	loc, err := time.LoadLocation(cfg.Sweep.Timezone)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("invalid SWEEP_TIMEZONE %q: %w", cfg.Sweep.Timezone, err)
	}
	parser := expiry.NewParser(loc)

	var publisher *publish.Publisher
	if cfg.GitHub.Enabled() {
		publisher = publish.New(cfg.GitHub.User, cfg.GitHub.Repo, cfg.GitHub.Token,
			cfg.GitHub.Branch, cfg.GitHub.RateLimit, logger)
	} else {
		logger.Debug("GitHub credentials incomplete; publishing disabled")
	}

	var hist *history.Store
	cleanup := func() {}
	if cfg.History.Enabled {
		hist, err = history.Open(ctx, &cfg.History)
		if err != nil {
			// The document on disk is the source of truth; run anyway.
			logger.Warn("history sink unavailable", zap.Error(err))
			hist = nil
		} else if err := hist.EnsureSchema(ctx); err != nil {
			logger.Warn("history schema check failed", zap.Error(err))
			hist.Close()
			hist = nil
		}
		if hist != nil {
			h := hist
			cleanup = func() {
				if err := h.Close(); err != nil {
					logger.Warn("error closing history sink", zap.Error(err))
				}
			}
		}
	}

	sweeper := service.NewSweeper(store.New(cfg.Sweep.File), parser, publisher, hist, logger)
	return cfg, parser, sweeper, hist, cleanup, nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Enforce comma-separated format for multiple codes before touching
	// anything.
	codes, err := engine.ParseTargetCodes(args)
	if err != nil {
		return err
	}

	_, parser, sweeper, _, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	// One reference instant governs the entire run.
	forced := expiresFlag != ""
	var ref time.Time
	if forced {
		t, ok := parser.ParseISO(expiresFlag)
		if !ok {
			return fmt.Errorf("invalid ISO timestamp for --expires: %q", expiresFlag)
		}
		ref = t
	} else {
		ref = time.Now().In(parser.Location()).UTC()
	}

	hdr := report.Header{
		RefISO:    ref.UTC().Format(time.RFC3339),
		RefPretty: parser.FormatCivil(ref),
		DryRun:    dryRun,
	}

	if len(codes) > 0 {
		res, err := sweeper.RunTargeted(ctx, codes, ref, forced, dryRun)
		if err != nil {
			return err
		}
		report.Targeted(os.Stdout, hdr, res.Details, res.Stats, forced, res.Unmatched)
		if res.PublishErr != nil {
			return fmt.Errorf("upload attempt failed: %w", res.PublishErr)
		}
		return nil
	}

	res, err := sweeper.RunBulk(ctx, ref, dryRun)
	if err != nil {
		return err
	}
	report.Bulk(os.Stdout, hdr, res.Details, res.Stats)
	if res.PublishErr != nil {
		return fmt.Errorf("upload attempt failed: %w", res.PublishErr)
	}
	return nil
}

// recentRunsLimit caps the /runs listing.
const recentRunsLimit = 20

// runLister is the slice of the history sink the /runs endpoint needs.
type runLister interface {
	RecentRuns(ctx context.Context, limit int) ([]history.Run, error)
}

// recentRunsHandler serves the most recent sweep runs as JSON, newest
// first.
func recentRunsHandler(lister runLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := lister.RecentRuns(r.Context(), recentRunsLimit)
		if err != nil {
			logger.Error("failed to list run history", zap.Error(err))
			http.Error(w, `{"error":"run history unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			logger.Warn("failed to encode run history", zap.Error(err))
		}
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, parser, sweeper, hist, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting shiftsweep service",
		zap.String("environment", cfg.App.Environment),
		zap.String("file", cfg.Sweep.File),
		zap.String("schedule", cfg.Sweep.Schedule))

	// Schedule recurring bulk sweeps.
	trigger, err := quartz.NewCronTrigger(cfg.Sweep.Schedule)
	if err != nil {
		return fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", cfg.Sweep.Schedule, err)
	}
	sched := quartz.NewStdScheduler()
	sched.Start(ctx)

	job := quartz.NewFunctionJob(func(jobCtx context.Context) (bool, error) {
		ref := time.Now().In(parser.Location()).UTC()
		res, err := sweeper.RunBulk(jobCtx, ref, false)
		if err != nil {
			logger.Error("scheduled sweep failed", zap.Error(err))
			return false, err
		}
		logger.Info("scheduled sweep complete",
			zap.Bool("changed", res.Changed),
			zap.Int("scanned", res.Stats.Scanned),
			zap.Int("set_expired", res.Stats.SetExpired),
			zap.Int("skipped_unknown", res.Stats.SkippedUnknown),
			zap.Int("unparsable", res.Stats.Unparsable))
		return res.Changed, nil
	})
	if err := sched.ScheduleJob(ctx, job, trigger); err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}

	// Create HTTP mux
	mux := http.NewServeMux()

	// Add health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		hostname, _ := os.Hostname()
		w.WriteHeader(http.StatusOK)
		response := fmt.Sprintf(`{"status":"ok","service":"shiftsweep","hostname":"%s"}`, hostname)
		w.Write([]byte(response))
	})

	// Add Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Add run-history listing when the sink is configured
	if hist != nil {
		mux.HandleFunc("/runs", recentRunsHandler(hist))
	}

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddr(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
		// Use h2c so we can serve HTTP/2 without TLS
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// Start server in goroutine
	go func() {
		logger.Info("serving", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	sched.Stop()
	sched.Wait(shutdownCtx)

	logger.Info("exited gracefully")
	return nil
}
