package engine

import (
	"gmfit/domain/core"
	"gmfit/domain/gm"
	"gmfit/ports"
)

// eventResiduals computes the residual columns for one event from its
// expected motions, keyed by ColumnKey and sized to the context. Each
// component is produced only when its prerequisite columns exist; absent
// prerequisites skip the component silently.
func (e *Engine) eventResiduals(
	event *gm.EventContext,
	expected expectedMotion,
	models map[core.ModelName]ports.GroundMotionModel,
	imts []gm.IMT,
) map[gm.ColumnKey][]float64 {
	out := make(map[gm.ColumnKey][]float64)

	for _, imt := range imts {
		obs, ok := event.ObservedLn(imt.Name)
		if !ok {
			continue
		}
		for name := range models {
			mean, ok := expected[gm.MakeKey(imt.Name, gm.KindMean, name)]
			if !ok {
				continue
			}

			// delta is the raw prediction error in natural-log units
			delta := make([]float64, event.N())
			for i := range delta {
				delta[i] = obs[i] - mean[i]
			}

			if sigma, ok := expected[gm.MakeKey(imt.Name, gm.KindTotalStddev, name)]; ok {
				out[gm.MakeKey(imt.Name, gm.KindTotalResidual, name)] = totalResiduals(delta, sigma, e.cfg.Normalize)
			}

			tau, hasTau := expected[gm.MakeKey(imt.Name, gm.KindInterEventStddev, name)]
			phi, hasPhi := expected[gm.MakeKey(imt.Name, gm.KindIntraEventStddev, name)]
			if hasTau && hasPhi {
				inter, intra := decomposeResiduals(delta, tau, phi, e.cfg.Normalize)
				out[gm.MakeKey(imt.Name, gm.KindInterEventResidual, name)] = inter
				out[gm.MakeKey(imt.Name, gm.KindIntraEventResidual, name)] = intra
			}
		}
	}
	return out
}

// totalResiduals returns (ln(obs) - mean) / sigma, or the raw difference
// when normalization is off.
func totalResiduals(delta, sigma []float64, normalize bool) []float64 {
	out := make([]float64, len(delta))
	for i := range delta {
		if normalize {
			out[i] = delta[i] / sigma[i]
		} else {
			out[i] = delta[i]
		}
	}
	return out
}

// decomposeResiduals splits the raw prediction error into inter- and
// intra-event components via the random-effects estimator of Abrahamson &
// Youngs (1992), eq. 10:
//
//	inter_i = tau_i^2 * sum(delta) / (N*tau_i^2 + phi_i^2)
//	intra_i = delta_i - inter_i
//
// The estimator assumes one inter-event residual per event, broadcast over
// its rows; it is applied row-wise with each row's own (tau, phi) pair, so
// a model returning an event-constant tau yields a single repeated value,
// while a model whose tau varies within the event yields per-row values.
// Whether the original single-scalar broadcast was intended for the varying
// case is unresolved upstream; the row-wise form reproduces both behaviors
// rather than picking one.
func decomposeResiduals(delta, tau, phi []float64, normalize bool) (inter, intra []float64) {
	n := float64(len(delta))
	sumDelta := 0.0
	for _, d := range delta {
		sumDelta += d
	}

	inter = make([]float64, len(delta))
	intra = make([]float64, len(delta))
	for i := range delta {
		tau2 := tau[i] * tau[i]
		interRaw := tau2 * sumDelta / (n*tau2 + phi[i]*phi[i])
		intraRaw := delta[i] - interRaw

		if normalize {
			inter[i] = interRaw / tau[i]
			intra[i] = intraRaw / phi[i]
		} else {
			inter[i] = interRaw
			intra[i] = intraRaw
		}
	}
	return inter, intra
}
