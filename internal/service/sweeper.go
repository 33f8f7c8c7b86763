package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kkkkikiki/shiftsweep/internal/engine"
	"github.com/kkkkikiki/shiftsweep/internal/expiry"
	"github.com/kkkkikiki/shiftsweep/internal/history"
	"github.com/kkkkikiki/shiftsweep/internal/metrics"
	"github.com/kkkkikiki/shiftsweep/internal/model"
	"github.com/kkkkikiki/shiftsweep/internal/publish"
	"github.com/kkkkikiki/shiftsweep/internal/store"
)

// Sweeper orchestrates one run: load the document, apply the engine,
// persist when something actually changed, then record history and
// publish. Persistence is attempted only after the full classification
// pass, and a failed persist surfaces as an error rather than a
// changed=true success.
type Sweeper struct {
	store     *store.Store
	parser    *expiry.Parser
	engine    *engine.Engine
	publisher *publish.Publisher // nil when publishing is not configured
	history   *history.Store     // nil when the history sink is disabled
	logger    *zap.Logger
}

// NewSweeper wires a Sweeper. publisher and hist may be nil.
func NewSweeper(st *store.Store, parser *expiry.Parser, publisher *publish.Publisher, hist *history.Store, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:     st,
		parser:    parser,
		engine:    engine.New(parser),
		publisher: publisher,
		history:   hist,
		logger:    logger,
	}
}

// RunResult is the outcome of one bulk or targeted run.
type RunResult struct {
	Changed   bool
	Stats     engine.Stats
	Details   []engine.RecordReport
	Unmatched []string
	CommitMsg string
	// PublishErr is set when the local persist succeeded but the remote
	// publish did not; the local write is not rolled back.
	PublishErr error
}

// RunBulk sweeps the whole collection against ref.
func (s *Sweeper) RunBulk(ctx context.Context, ref time.Time, dryRun bool) (*RunResult, error) {
	start := time.Now()
	status := "failure"
	defer func() {
		metrics.RecordRunDuration("bulk", status, time.Since(start).Seconds())
	}()

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	changed, stats, details := s.engine.Sweep(doc.Entries(), ref, dryRun)

	res := &RunResult{
		Changed:   changed,
		Stats:     stats,
		Details:   details,
		CommitMsg: fmt.Sprintf("Sweep expired by timestamp via shiftsweep (%s)", ref.UTC().Format(time.RFC3339)),
	}
	if err := s.finish(ctx, "bulk", doc, res, ref, dryRun); err != nil {
		return nil, err
	}
	status = "success"
	return res, nil
}

// RunTargeted stamps the given codes with ref. forcedExpires selects
// stamp-only mode (expired untouched) over stamp-and-expire.
func (s *Sweeper) RunTargeted(ctx context.Context, codes []string, ref time.Time, forcedExpires, dryRun bool) (*RunResult, error) {
	start := time.Now()
	status := "failure"
	defer func() {
		metrics.RecordRunDuration("targeted", status, time.Since(start).Seconds())
	}()

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	changed, stats, details, unmatched, err := s.engine.UpdateTargets(doc.Entries(), codes, ref, forcedExpires, dryRun)
	if err != nil {
		return nil, err
	}

	codesStr := strings.Join(codes, ", ")
	commitMsg := fmt.Sprintf("Targeted mark expired via shiftsweep for: %s", codesStr)
	if forcedExpires {
		commitMsg = fmt.Sprintf("Targeted overwrite 'expires' via shiftsweep for: %s", codesStr)
	}

	res := &RunResult{
		Changed:   changed,
		Stats:     stats,
		Details:   details,
		Unmatched: unmatched,
		CommitMsg: commitMsg,
	}
	if err := s.finish(ctx, "targeted", doc, res, ref, dryRun); err != nil {
		return nil, err
	}
	status = "success"
	return res, nil
}

// finish persists a mutated document, then records history and publishes.
// doc is the same in-memory document the engine mutated in place.
func (s *Sweeper) finish(ctx context.Context, mode string, doc model.Document, res *RunResult, ref time.Time, dryRun bool) error {
	metrics.RecordOutcomes(res.Stats.Scanned, res.Stats.SetExpired, res.Stats.SkippedUnknown, res.Stats.Unparsable)

	if res.Changed && !dryRun {
		if err := s.store.Save(doc); err != nil {
			return fmt.Errorf("failed to persist %s: %w", s.store.Path(), err)
		}
		s.logger.Info("persisted updated codes document",
			zap.String("file", s.store.Path()),
			zap.Int("set_expired", res.Stats.SetExpired),
			zap.Int("set_expires", res.Stats.SetExpires))
	}

	// History is an audit sink; a failure is logged, never fatal.
	if s.history != nil {
		if err := s.history.RecordRun(ctx, mode, ref, dryRun, res.Changed, res.Stats); err != nil {
			s.logger.Warn("failed to record run history", zap.Error(err))
		}
	}

	if res.Changed && !dryRun && s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.store.Path(), res.CommitMsg); err != nil {
			// The local persist already succeeded; report, don't roll back.
			res.PublishErr = err
			s.logger.Error("publish failed after local persist", zap.Error(err))
		}
	}
	return nil
}
