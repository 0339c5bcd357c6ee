// Package ranking reduces a completed residual table into scalar fit
// measures per ground-motion model: residual summary statistics, likelihood
// median/IQR (Scherbaum et al. 2004), log-likelihood (Scherbaum et al.
// 2009) and the Euclidean Distance-based Ranking triple (Kale & Akkar
// 2013).
package ranking

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"

	"gmfit/domain/core"
	"gmfit/domain/gm"
	"gmfit/internal/config"
)

var nan = math.NaN()

// Aggregator computes fit measures from a residual table. It reads the
// table only; repeated aggregation of the same table yields equal results.
type Aggregator struct {
	cfg    config.RankingConfig
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger falls back to
// slog.Default().
func NewAggregator(cfg config.RankingConfig, logger *slog.Logger) (*Aggregator, error) {
	if cfg.Bandwidth <= 0 {
		return nil, core.NewBadConfigError("edr bandwidth", "must be positive")
	}
	if cfg.Multiplier <= 0 {
		return nil, core.NewBadConfigError("edr multiplier", "must be positive")
	}
	if cfg.Bandwidth >= cfg.Multiplier {
		return nil, core.NewBadConfigError("edr bandwidth", "must be smaller than the multiplier span")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, logger: logger}, nil
}

// Aggregate computes every fit measure for every model present in the
// table. Numeric degeneracies (empty finite-value arrays) propagate as NaN
// entries; the only error source is an EDR discretization that the
// configured bandwidth cannot cover defensively.
func (a *Aggregator) Aggregate(table *gm.ResidualTable) (*Result, error) {
	result := newResult()

	for _, model := range table.Models() {
		a.residualStats(table, model, result)
		a.likelihoodStats(table, model, result)
		a.logLikelihood(table, model, result)
		if err := a.edr(table, model, result); err != nil {
			return nil, err
		}
	}

	a.logger.Info("ranking aggregated",
		"run_id", result.RunID,
		"models", len(result.Models()),
		"measures", len(result.Measures()),
	)
	return result, nil
}

// residualStats emits sample mean and population stddev per residual column
func (a *Aggregator) residualStats(table *gm.ResidualTable, model core.ModelName, result *Result) {
	for _, key := range table.Keys() {
		if key.Model != model || !key.Kind.IsResidual() {
			continue
		}
		column, _ := table.Column(key)
		values := finite(column)

		label := fmt.Sprintf("%s %s", key.IMT, key.Kind)
		if len(values) == 0 {
			result.set(model, label+" mean", nan)
			result.set(model, label+" stddev", nan)
			continue
		}
		mean, _ := stats.Mean(values)
		// Population stddev (ddof=0)
		stddev, _ := stats.StandardDeviationPopulation(values)
		result.set(model, label+" mean", mean)
		result.set(model, label+" stddev", stddev)
	}
}

// likelihoodStats emits median and inter-quartile range per likelihood
// column, ignoring missing values
func (a *Aggregator) likelihoodStats(table *gm.ResidualTable, model core.ModelName, result *Result) {
	for _, key := range table.Keys() {
		if key.Model != model || !key.Kind.IsLikelihood() {
			continue
		}
		column, _ := table.Column(key)
		values := finite(column)

		label := fmt.Sprintf("%s %s", key.IMT, key.Kind)
		if len(values) == 0 {
			result.set(model, label+" median", nan)
			result.set(model, label+" iqr", nan)
			continue
		}
		p25, _ := stats.Percentile(values, 25)
		p50, _ := stats.Percentile(values, 50)
		p75, _ := stats.Percentile(values, 75)
		result.set(model, label+" median", p50)
		result.set(model, label+" iqr", p75-p25)
	}
}

// finite drops NaN and infinite entries
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
