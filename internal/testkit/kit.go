// Package testkit provides deterministic synthetic flatfiles and fake
// ground-motion models for engine and ranking tests.
package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"gmfit/domain/gm"
)

// GeneratorConfig configures the synthetic flatfile generator
type GeneratorConfig struct {
	Events          int
	RecordsPerEvent int
	IMTs            []string
	Seed            int64
	// SurrogateOnly omits the event id column so grouping must fall back
	// to the location/time tuple
	SurrogateOnly bool
}

// DefaultGeneratorConfig returns sensible defaults for a small test table
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Events:          5,
		RecordsPerEvent: 8,
		IMTs:            []string{"PGA", "SA(0.2)"},
		Seed:            42,
	}
}

// Generator produces synthetic observation tables
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a generator. Identical configs (including seed)
// produce identical tables.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Flatfile builds a synthetic observation table: per-event constant rupture
// attributes, per-record site/distance attributes, and lognormal
// intensity-measure observations roughly consistent with FakeGMM.
func (g *Generator) Flatfile() *gm.Flatfile {
	n := g.config.Events * g.config.RecordsPerEvent

	eventIDs := make([]string, n)
	lat := make([]float64, n)
	lon := make([]float64, n)
	depth := make([]float64, n)
	times := make([]string, n)
	stations := make([]string, n)
	magnitude := make([]float64, n)
	rake := make([]float64, n)
	vs30 := make([]float64, n)
	rjb := make([]float64, n)

	// Observation columns are stored under canonical measure names so the
	// engine's harmonized lookups find them
	imtNames := make([]string, len(g.config.IMTs))
	observations := make(map[string][]float64, len(g.config.IMTs))
	for i, imt := range g.config.IMTs {
		imtNames[i] = canonicalIMT(imt)
		observations[imtNames[i]] = make([]float64, n)
	}

	base := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	row := 0
	for ev := 0; ev < g.config.Events; ev++ {
		evMag := 4.5 + g.rng.Float64()*3.0
		evLat := 35 + g.rng.Float64()*5
		evLon := 23 + g.rng.Float64()*8
		evDepth := 5 + g.rng.Float64()*20
		evTime := base.AddDate(0, 0, ev*11).Format(time.RFC3339)

		for rec := 0; rec < g.config.RecordsPerEvent; rec++ {
			eventIDs[row] = fmt.Sprintf("ev%03d", ev)
			lat[row] = evLat
			lon[row] = evLon
			depth[row] = evDepth
			times[row] = evTime
			stations[row] = fmt.Sprintf("st%03d", rec)
			magnitude[row] = evMag
			rake[row] = -90 + g.rng.Float64()*180
			vs30[row] = 200 + g.rng.Float64()*600
			rjb[row] = 1 + g.rng.Float64()*120

			for _, imt := range imtNames {
				lnMean := fakeLnMean(evMag, rjb[row], imtPeriod(imt))
				// Observation scatter mimics inter- plus intra-event terms
				observations[imt][row] = lognormal(g.rng, lnMean, 0.6)
			}
			row++
		}
	}

	ff := gm.NewFlatfile(n)
	if !g.config.SurrogateOnly {
		_ = ff.AddStringColumn(gm.ColEventID, eventIDs)
	}
	_ = ff.AddFloatColumn(gm.ColEventLatitude, lat)
	_ = ff.AddFloatColumn(gm.ColEventLongitude, lon)
	_ = ff.AddFloatColumn(gm.ColEventDepth, depth)
	_ = ff.AddStringColumn(gm.ColEventTime, times)
	_ = ff.AddStringColumn(gm.ColStationID, stations)
	_ = ff.AddFloatColumn(gm.ColMagnitude, magnitude)
	_ = ff.AddFloatColumn(gm.ColRake, rake)
	_ = ff.AddFloatColumn(gm.ColVs30, vs30)
	_ = ff.AddFloatColumn("rjb", rjb)
	for imt, values := range observations {
		_ = ff.AddFloatColumn(imt, values)
	}
	return ff
}

func lognormal(rng *rand.Rand, lnMean, lnStddev float64) float64 {
	z := rng.NormFloat64()
	return math.Exp(lnMean + lnStddev*z)
}

// Provider adapts a generator to ports.FlatfileProvider
type Provider struct {
	Gen *Generator
}

func (p Provider) Flatfile(_ context.Context) (*gm.Flatfile, error) {
	return p.Gen.Flatfile(), nil
}

// Classifier is a minimal column classifier for tagging tests
type Classifier struct{}

func (Classifier) Classify(column string) gm.ColumnClass {
	switch column {
	case gm.ColMagnitude, gm.ColRake, gm.ColEventDepth,
		gm.ColEventLatitude, gm.ColEventLongitude:
		return gm.ClassRupture
	case gm.ColVs30:
		return gm.ClassSite
	case "rjb", "rrup", "repi":
		return gm.ClassDistance
	}
	if column == "PGA" || column == "PGV" || strings.HasPrefix(column, "SA(") {
		return gm.ClassIntensity
	}
	return gm.ClassUnknown
}
