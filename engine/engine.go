// Package engine implements the ground-motion residual pipeline: event
// grouping, expected-motion evaluation against opaque model handles,
// random-effects residual decomposition and likelihood decoration. The
// ranking package consumes its output table.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gmfit/domain/core"
	"gmfit/domain/gm"
	"gmfit/internal/config"
	"gmfit/ports"
)

// Engine runs the residual pipeline. Safe for reuse across runs; each run
// allocates its own output table.
type Engine struct {
	cfg    config.EngineConfig
	logger *slog.Logger
}

// New creates an engine. A nil logger falls back to slog.Default().
func New(cfg config.EngineConfig, logger *slog.Logger) (*Engine, error) {
	if cfg.Workers < 1 {
		return nil, core.NewBadConfigError("workers", "must be at least 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// HarmonizeModels validates a collection of model handles into a canonical
// name -> handle mapping. Nil handles, blank or whitespace-padded names and
// duplicate names are configuration errors.
func HarmonizeModels(models []ports.GroundMotionModel) (map[core.ModelName]ports.GroundMotionModel, error) {
	if len(models) == 0 {
		return nil, core.NewBadConfigError("models", "at least one ground-motion model is required")
	}
	out := make(map[core.ModelName]ports.GroundMotionModel, len(models))
	for _, model := range models {
		if model == nil {
			return nil, core.NewInvalidModelError("<nil>")
		}
		// Names feed whitespace-delimited column keys, so surrounding
		// whitespace would not round-trip through ParseColumn.
		name, err := core.ParseModelName(model.Name().String())
		if err != nil || name != model.Name() {
			return nil, core.NewInvalidModelError(model.Name().String())
		}
		if _, dup := out[name]; dup {
			return nil, core.NewInvalidModelError(name.String())
		}
		out[name] = model
	}
	return out, nil
}

// Residuals evaluates every model against every intensity measure over the
// observation table and returns the residual table.
//
// Configuration errors (unknown models/imts, missing grouping columns)
// abort the run with no partial results. Per-pair soft failures and numeric
// degeneracies never error: they appear as absent keys or NaN entries, so a
// run over N models and M imts always yields a table when the inputs are
// well-formed.
//
// Event groups are processed concurrently up to the configured worker
// count; each event writes disjoint row positions and the merge completes
// before the method returns, so the table is safe to hand to ranking.
func (e *Engine) Residuals(
	ctx context.Context,
	ff *gm.Flatfile,
	models []ports.GroundMotionModel,
	imtNames []string,
) (*gm.ResidualTable, error) {
	start := time.Now()

	byName, err := HarmonizeModels(models)
	if err != nil {
		return nil, err
	}
	imts, err := gm.HarmonizeIMTs(imtNames)
	if err != nil {
		return nil, err
	}
	events, err := GroupEvents(ff)
	if err != nil {
		return nil, err
	}

	table := gm.NewResidualTable(ff)
	e.logger.InfoContext(ctx, "starting residual computation",
		"run_id", table.RunID,
		"models", len(byName),
		"imts", len(imts),
		"events", len(events),
		"records", ff.NumRows(),
	)

	// Events own disjoint row positions; the mutex only guards column
	// allocation in the shared table.
	var mu sync.Mutex
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.cfg.Workers)

	for _, event := range events {
		event := event
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			expected := e.expectedMotions(grpCtx, event, byName, imts)
			residuals := e.eventResiduals(event, expected, byName, imts)

			mu.Lock()
			defer mu.Unlock()
			for key, values := range expected {
				table.SetAt(key, event.SIDs, values)
			}
			for key, values := range residuals {
				table.SetAt(key, event.SIDs, values)
			}
			return nil
		})
	}
	// Merge barrier: no downstream computation before every event landed
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if e.cfg.Likelihood {
		decorateLikelihoods(table)
	}

	e.logger.InfoContext(ctx, "residual computation finished",
		"run_id", table.RunID,
		"columns", len(table.Keys()),
		"duration", time.Since(start),
	)
	return table, nil
}

// TagColumns classifies the raw input columns of a residual table's source
// flatfile, for callers concatenating raw columns alongside computed ones.
// Computed columns are excluded; the classification never feeds back into
// the residual or ranking math.
func TagColumns(table *gm.ResidualTable, classifier ports.ColumnClassifier) map[gm.ColumnClass][]string {
	out := make(map[gm.ColumnClass][]string)
	for _, name := range table.Flatfile().ColumnNames() {
		if _, computed := gm.ParseColumn(name); computed {
			continue
		}
		class := classifier.Classify(name)
		out[class] = append(out[class], name)
	}
	return out
}
