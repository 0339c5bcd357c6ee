package ranking

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gmfit/domain/core"
	"gmfit/domain/gm"
)

// EDR measure labels (Kale & Akkar 2013)
const (
	MeasureMDENorm   = "mde_norm"
	MeasureSqrtKappa = "sqrt_kappa"
	MeasureEDR       = "edr"
)

// maxEDRBins caps the discretization loop. The bin count is bounded by
// (max covered distance)/bandwidth, so a bandwidth degenerately small
// relative to the data's dynamic range is a configuration error, not a
// multi-hour loop.
const maxEDRBins = 2_000_000

// edr computes the Euclidean Distance-based Ranking triple for one model,
// aggregated over every intensity measure carrying a complete
// mean/total_stddev/total_residual triple.
//
// Rows with non-finite observed/predicted/stddev (or non-positive stddev)
// are dropped first; with no finite rows left all three measures are NaN.
func (a *Aggregator) edr(table *gm.ResidualTable, model core.ModelName, result *Result) error {
	observed, predicted, stddev := a.stackModel(table, model)

	if len(observed) == 0 {
		result.set(model, MeasureMDENorm, nan)
		result.set(model, MeasureSqrtKappa, nan)
		result.set(model, MeasureEDR, nan)
		return nil
	}

	kappa := edrKappa(observed, predicted)

	mdeNorm, err := a.mdeNorm(observed, predicted, stddev)
	if err != nil {
		return err
	}

	result.set(model, MeasureMDENorm, mdeNorm)
	result.set(model, MeasureSqrtKappa, math.Sqrt(kappa))
	result.set(model, MeasureEDR, math.Sqrt(kappa*mdeNorm*mdeNorm))
	return nil
}

// stackModel flattens observed (log scale), predicted mean and total stddev
// over every imt with a complete triple, keeping only finite rows.
func (a *Aggregator) stackModel(table *gm.ResidualTable, model core.ModelName) (observed, predicted, stddev []float64) {
	ff := table.Flatfile()
	for _, imt := range table.IMTs() {
		mean, hasMean := table.Column(gm.MakeKey(imt, gm.KindMean, model))
		sigma, hasSigma := table.Column(gm.MakeKey(imt, gm.KindTotalStddev, model))
		if !hasMean || !hasSigma || !table.Has(gm.MakeKey(imt, gm.KindTotalResidual, model)) {
			continue
		}
		obsColumn, ok := ff.Float(imt)
		if !ok {
			continue
		}
		for i := range mean {
			if obsColumn[i] <= 0 {
				continue
			}
			obs := math.Log(obsColumn[i])
			if !isFinite(obs) || !isFinite(mean[i]) || !isFinite(sigma[i]) || sigma[i] <= 0 {
				continue
			}
			observed = append(observed, obs)
			predicted = append(predicted, mean[i])
			stddev = append(stddev, sigma[i])
		}
	}
	return observed, predicted, stddev
}

// edrKappa is the bias-correction factor: the ratio of the sum of squared
// errors of the raw predictions to that of predictions corrected by the
// ordinary least-squares fit of predicted on observed.
func edrKappa(observed, predicted []float64) float64 {
	b0, b1 := stat.LinearRegression(observed, predicted, nil, false)

	var deOrig, deCorr float64
	for i := range observed {
		corrected := predicted[i] - ((b0 + b1*observed[i]) - observed[i])
		deOrig += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
		deCorr += (observed[i] - corrected) * (observed[i] - corrected)
	}
	if deOrig == 0 {
		// Perfect prediction needs no correction
		return 1
	}
	if deCorr == 0 {
		return nan
	}
	return deOrig / deCorr
}

// mdeNorm accumulates the probability-weighted modified Euclidean distance
// over absolute-difference bins of the configured bandwidth, extended
// multiplier stddevs beyond the observed extremes, and returns
// sqrt(mean(MDE^2)).
func (a *Aggregator) mdeNorm(observed, predicted, stddev []float64) (float64, error) {
	n := len(observed)
	halfBin := a.cfg.Bandwidth / 2

	// Bias per row and the farthest distance any bin must cover
	bias := make([]float64, n)
	dcMax := 0.0
	for i := range observed {
		bias[i] = observed[i] - predicted[i]
		lo := math.Abs(observed[i] - (predicted[i] - a.cfg.Multiplier*stddev[i]))
		hi := math.Abs(observed[i] - (predicted[i] + a.cfg.Multiplier*stddev[i]))
		dcMax = math.Max(dcMax, math.Max(lo, hi))
	}
	dcMax = math.Ceil(dcMax)

	bins := int(math.Ceil((dcMax - halfBin) / a.cfg.Bandwidth))
	if bins < 0 {
		bins = 0
	}
	if bins > maxEDRBins {
		return 0, core.NewBadConfigError("edr bandwidth",
			"too small for the data's dynamic range")
	}

	mde := make([]float64, n)
	for bin := 0; bin < bins; bin++ {
		d := halfBin + float64(bin)*a.cfg.Bandwidth
		d1 := d - halfBin
		d2 := d + halfBin
		for i := range mde {
			p1 := distuv.UnitNormal.CDF((d1-bias[i])/stddev[i]) -
				distuv.UnitNormal.CDF((-d1-bias[i])/stddev[i])
			p2 := distuv.UnitNormal.CDF((d2-bias[i])/stddev[i]) -
				distuv.UnitNormal.CDF((-d2-bias[i])/stddev[i])
			mde[i] += (p2 - p1) * d
		}
	}

	sumSq := 0.0
	for _, m := range mde {
		sumSq += m * m
	}
	return math.Sqrt(sumSq / float64(n)), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
