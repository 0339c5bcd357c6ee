package engine

import (
	"math"

	"gmfit/domain/gm"
)

// decorateLikelihoods adds a likelihood counterpart column for every
// residual column present in the table, per Scherbaum et al. (2004), eq. 9:
//
//	LH = 1 - erf(|z| / sqrt(2))
//
// which is the probability that a unit normal exceeds |z| in absolute
// value. Applies element-wise; NaN residuals stay NaN. Columns without a
// residual kind are left untouched.
func decorateLikelihoods(table *gm.ResidualTable) {
	for _, key := range table.Keys() {
		lhKind, ok := key.Kind.Likelihood()
		if !ok {
			continue
		}
		residuals, _ := table.Column(key)

		lh := make([]float64, len(residuals))
		for i, z := range residuals {
			lh[i] = likelihood(z)
		}
		lhKey := gm.MakeKey(key.IMT, lhKind, key.Model)
		copy(table.EnsureColumn(lhKey), lh)
	}
}

// likelihood maps a residual to the bounded [0, 1] Scherbaum measure
func likelihood(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	return 1 - math.Erf(math.Abs(z)/math.Sqrt2)
}
