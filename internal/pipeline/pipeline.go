// Package pipeline sequences the consolidation stages end to end: scan,
// copy, combine, analyze, consolidate. Stages run strictly in order under
// one exclusive lock and share a run ID for log correlation; the first
// fatal stage error stops the run. Recoverable problems never surface
// here, they ride inside each stage's result.
package pipeline

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"shoebox/internal/config"
	"shoebox/internal/consolidator"
	"shoebox/internal/copier"
	"shoebox/internal/duplicates"
	"shoebox/internal/logging"
	"shoebox/internal/manifest"
	"shoebox/internal/scanner"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// Progress bundles per-stage progress callbacks. Any field may be nil.
type Progress struct {
	Scan scanner.ProgressFunc
	Copy copier.ProgressFunc
}

// Summary aggregates the stage results of one full run. Combined stays nil
// on dry runs: without per-drive copy manifests there is nothing to merge.
type Summary struct {
	RunID         string
	DryRun        bool
	StartedAt     time.Time
	Duration      time.Duration
	Scan          *scanner.Result
	Copy          *copier.Result
	Combined      *manifest.Manifest
	Analysis      *duplicates.Result
	Consolidation *consolidator.Result
}

// Errors flattens the recoverable stage errors in stage order. Analysis
// warnings are advisory and deliberately excluded.
func (s *Summary) Errors() []string {
	var all []string
	if s.Scan != nil {
		all = append(all, s.Scan.Errors...)
	}
	if s.Copy != nil {
		all = append(all, s.Copy.Errors...)
	}
	if s.Consolidation != nil {
		all = append(all, s.Consolidation.Errors...)
	}
	return all
}

// Pipeline wires the stages behind a single entry point for the run
// command. Single-stage commands construct stages directly; the pipeline
// exists to sequence all of them under one lock and run ID.
type Pipeline struct {
	cfg          *config.Config
	logger       *slog.Logger
	lock         *Lock
	scanner      *scanner.Scanner
	copier       *copier.Copier
	analyzer     *duplicates.Analyzer
	consolidator *consolidator.Consolidator
}

// New constructs the pipeline and every stage it sequences.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		lock:         NewLock(cfg.LockPath()),
		scanner:      scanner.New(cfg, logger),
		copier:       copier.New(cfg, logger),
		analyzer:     duplicates.New(cfg, logger),
		consolidator: consolidator.New(cfg, logger),
	}
}

// Run executes the full workflow under the exclusive run lock. Every stage
// runs even on dry runs, matching single-stage behavior: a dry run with no
// combined manifest from an earlier live copy fails at the analyze stage.
func (p *Pipeline) Run(ctx context.Context, progress Progress) (*Summary, error) {
	if err := p.lock.Acquire(); err != nil {
		return nil, err
	}
	defer func() {
		if err := p.lock.Release(); err != nil {
			p.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	dryRun := p.cfg.Process.DryRun

	summary := &Summary{RunID: runID, DryRun: dryRun, StartedAt: time.Now()}
	logger.Info("workflow starting",
		logging.Bool("dry_run", dryRun),
		logging.Int("drives", len(p.cfg.Drives)),
	)

	err := p.runStage(ctx, "scan", func(ctx context.Context) error {
		result, err := p.scanner.Scan(ctx, progress.Scan)
		if err != nil {
			return err
		}
		summary.Scan = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.runStage(ctx, "copy", func(ctx context.Context) error {
		result, err := p.copier.CopyAll(ctx, progress.Copy)
		if err != nil {
			return err
		}
		summary.Copy = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !dryRun {
		err = p.runStage(ctx, "combine", func(ctx context.Context) error {
			m, err := p.copier.Combine(ctx)
			if err != nil {
				return err
			}
			summary.Combined = m
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = p.runStage(ctx, "analyze", func(ctx context.Context) error {
		result, err := p.analyzer.Analyze(ctx, "")
		if err != nil {
			return err
		}
		summary.Analysis = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.runStage(ctx, "consolidate", func(ctx context.Context) error {
		result, err := p.consolidator.Consolidate(ctx)
		if err != nil {
			return err
		}
		summary.Consolidation = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Duration = time.Since(summary.StartedAt)
	logger.Info("workflow complete",
		logging.Bool("dry_run", dryRun),
		logging.Duration("duration", summary.Duration),
		logging.Int("stage_errors", len(summary.Errors())),
	)
	return summary, nil
}

// runStage brackets one stage with transition logs carrying the run and
// stage context fields.
func (p *Pipeline) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, p.logger)

	started := time.Now()
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("stage interrupted by shutdown")
			return err
		}
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("stage_duration", time.Since(started)),
			logging.Error(err),
		)
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(started)),
	)
	return nil
}

// HealthCheckers exposes every stage for the status command.
func (p *Pipeline) HealthCheckers() []stage.HealthChecker {
	return []stage.HealthChecker{p.scanner, p.copier, p.analyzer, p.consolidator}
}
