package engine

import (
	"context"

	"gmfit/domain/core"
	"gmfit/domain/gm"
	apperrors "gmfit/internal/errors"
	"gmfit/ports"
)

// expectedMotion holds the predicted columns for one event context, keyed by
// ColumnKey and sized to the context's row count.
type expectedMotion map[gm.ColumnKey][]float64

// expectedMotions evaluates every surviving (model, imt) pair for one event.
//
// Validity filtering is a deliberate soft-fail policy: a model with a finite
// spectral-period range silently skips spectral-acceleration measures
// outside it, producing no column and no error. Callers must treat a missing
// mean column as "model undefined for this imt". Evaluation failures are
// likewise absorbed per pair, preserving the rest of the run.
func (e *Engine) expectedMotions(
	ctx context.Context,
	event *gm.EventContext,
	models map[core.ModelName]ports.GroundMotionModel,
	imts []gm.IMT,
) expectedMotion {
	out := make(expectedMotion)

	for _, imt := range imts {
		for _, model := range models {
			if !modelDefinesIMT(model, imt) {
				e.logger.DebugContext(ctx, "imt outside model validity range",
					"model", model.Name(), "imt", imt.Name, "event", event.Key)
				continue
			}

			pred, err := model.Evaluate(ctx, imt, event)
			if err != nil || len(pred.Mean) != event.N() {
				e.logger.WarnContext(ctx, "model evaluation skipped",
					"model", model.Name(), "imt", imt.Name, "event", event.Key,
					"error", apperrors.WithCode(apperrors.CodeEvaluation, err))
				continue
			}

			out[gm.MakeKey(imt.Name, gm.KindMean, model.Name())] = pred.Mean
			for stddevKind, values := range pred.Stddevs {
				kind, ok := stddevKind.ColumnKind()
				if !ok || len(values) != event.N() {
					continue
				}
				out[gm.MakeKey(imt.Name, kind, model.Name())] = values
			}
		}
	}
	return out
}

// modelDefinesIMT applies the model's declared validity limits
func modelDefinesIMT(model ports.GroundMotionModel, imt gm.IMT) bool {
	if !imt.IsSA() {
		return true
	}
	min, max, bounded := model.PeriodRange()
	if !bounded {
		return true
	}
	return imt.Period >= min && imt.Period <= max
}
