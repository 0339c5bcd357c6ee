package testkit

import (
	"context"
	"errors"
	"math"

	"gmfit/domain/core"
	"gmfit/domain/gm"
	"gmfit/ports"
)

// FakeGMM is a deterministic ground-motion model: the predicted mean is an
// analytic function of magnitude, Joyner-Boore distance and spectral
// period, and the standard-deviation components are configurable constants.
// It implements ports.GroundMotionModel.
type FakeGMM struct {
	name    core.ModelName
	stddevs map[gm.StddevKind]float64

	periodMin float64
	periodMax float64
	bounded   bool

	// VaryTau makes the inter-event stddev grow per row within an event,
	// exercising the row-varying decomposition path
	VaryTau bool
	// FailEvaluate forces Evaluate to error, exercising per-pair soft skips
	FailEvaluate bool
}

// NewFakeGMM creates a model with the given stddev components. A nil map
// defaults to total/inter/intra of (0.7, 0.4, 0.55).
func NewFakeGMM(name string, stddevs map[gm.StddevKind]float64) *FakeGMM {
	if stddevs == nil {
		stddevs = map[gm.StddevKind]float64{
			gm.StddevTotal:      0.7,
			gm.StddevInterEvent: 0.4,
			gm.StddevIntraEvent: 0.55,
		}
	}
	return &FakeGMM{name: core.ModelName(name), stddevs: stddevs}
}

// WithPeriodRange declares finite spectral-period validity limits
func (m *FakeGMM) WithPeriodRange(min, max float64) *FakeGMM {
	m.periodMin, m.periodMax, m.bounded = min, max, true
	return m
}

func (m *FakeGMM) Name() core.ModelName {
	return m.name
}

func (m *FakeGMM) PeriodRange() (min, max float64, bounded bool) {
	return m.periodMin, m.periodMax, m.bounded
}

func (m *FakeGMM) Evaluate(ctx context.Context, imt gm.IMT, event *gm.EventContext) (ports.Prediction, error) {
	if m.FailEvaluate {
		return ports.Prediction{}, errors.New("forced evaluation failure")
	}

	magnitude, ok := event.RuptureValue(gm.ColMagnitude)
	if !ok {
		return ports.Prediction{}, errors.New("magnitude column missing")
	}
	rjb, ok := event.SiteValues("rjb")
	if !ok {
		return ports.Prediction{}, errors.New("rjb column missing")
	}

	mean := make([]float64, event.N())
	for i := range mean {
		mean[i] = fakeLnMean(magnitude, rjb[i], imt.Period)
	}

	stddevs := make(map[gm.StddevKind][]float64, len(m.stddevs))
	for kind, value := range m.stddevs {
		column := make([]float64, event.N())
		for i := range column {
			column[i] = value
			if kind == gm.StddevInterEvent && m.VaryTau {
				column[i] = value * (1 + 0.15*float64(i))
			}
		}
		stddevs[kind] = column
	}
	return ports.Prediction{Mean: mean, Stddevs: stddevs}, nil
}

// fakeLnMean is a toy attenuation relation in natural-log units
func fakeLnMean(magnitude, rjb, period float64) float64 {
	return -1.5 + 0.8*magnitude - 1.1*math.Log(rjb+10) - 0.3*period
}

func imtPeriod(name string) float64 {
	imt, err := gm.ParseIMT(name)
	if err != nil {
		return 0
	}
	return imt.Period
}

func canonicalIMT(name string) string {
	imt, err := gm.ParseIMT(name)
	if err != nil {
		return name
	}
	return imt.Name
}
