package ranking

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gmfit/domain/core"
	"gmfit/domain/gm"
)

// AllIMTMeasure labels the log-likelihood aggregated over every intensity
// measure of a model. With a single requested measure it duplicates the
// per-imt value.
const AllIMTMeasure = "All_IMT loglikelihood"

// logLikelihood emits the Scherbaum et al. (2009) average sample
// log-likelihood per (model, imt):
//
//	LLH = -mean(log2(phi(z)))
//
// with phi the unit normal density and z the normalized total residuals,
// plus the All_IMT aggregate over the concatenation of every measure's
// residuals. Empty arrays propagate NaN rather than raising.
func (a *Aggregator) logLikelihood(table *gm.ResidualTable, model core.ModelName, result *Result) {
	var pooled []float64
	for _, imt := range table.IMTs() {
		column, ok := table.Column(gm.MakeKey(imt, gm.KindTotalResidual, model))
		if !ok {
			continue
		}
		values := finite(column)
		result.set(model, fmt.Sprintf("%s loglikelihood", imt), llh(values))
		pooled = append(pooled, values...)
	}
	result.set(model, AllIMTMeasure, llh(pooled))
}

func llh(residuals []float64) float64 {
	if len(residuals) == 0 {
		return nan
	}
	sum := 0.0
	for _, z := range residuals {
		sum += math.Log2(distuv.UnitNormal.Prob(z))
	}
	return -sum / float64(len(residuals))
}
