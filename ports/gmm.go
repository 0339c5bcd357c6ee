package ports

import (
	"context"

	"gmfit/domain/core"
	"gmfit/domain/gm"
)

// Prediction is the outcome of evaluating one model for one intensity
// measure over one event context: a natural-log-scale mean per row and zero
// or more standard-deviation component arrays, each tagged with the kind
// the model declares. No fixed set of kinds is assumed; downstream code
// checks presence rather than schema.
type Prediction struct {
	Mean    []float64
	Stddevs map[gm.StddevKind][]float64
}

// GroundMotionModel is the opaque model-evaluation capability. The engine
// never branches on the concrete model, only on the model's declared
// validity limits and on which stddev kinds an evaluation returns.
type GroundMotionModel interface {
	// Name returns the model's canonical name
	Name() core.ModelName

	// PeriodRange reports the model's valid spectral-period bounds for
	// spectral-acceleration measures. bounded is false when the model
	// imposes no period limits.
	PeriodRange() (min, max float64, bounded bool)

	// Evaluate computes the predicted intensity distribution for every row
	// of the event context. The computation is CPU-bound and
	// side-effect-free.
	Evaluate(ctx context.Context, imt gm.IMT, event *gm.EventContext) (Prediction, error)
}

// ColumnClassifier classifies a raw flatfile column's role. Used only to
// tag input columns when concatenating them alongside computed columns.
type ColumnClassifier interface {
	Classify(column string) gm.ColumnClass
}
