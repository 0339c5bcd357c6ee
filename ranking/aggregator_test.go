package ranking

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmfit/domain/gm"
	"gmfit/engine"
	"gmfit/internal/config"
	"gmfit/internal/testkit"
	"gmfit/ports"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	a, err := NewAggregator(config.Default().Ranking, nil)
	require.NoError(t, err)
	return a
}

func TestNewAggregator_ConfigErrors(t *testing.T) {
	for name, cfg := range map[string]config.RankingConfig{
		"zero bandwidth":      {Bandwidth: 0, Multiplier: 3},
		"negative multiplier": {Bandwidth: 0.01, Multiplier: -1},
		"bandwidth too wide":  {Bandwidth: 3, Multiplier: 3},
	} {
		_, err := NewAggregator(cfg, nil)
		assert.Error(t, err, name)
	}
}

// zeroResidualTable carries one model, one imt and 10 rows of all-zero total
// residuals with their likelihood decoration.
func zeroResidualTable(t *testing.T) *gm.ResidualTable {
	t.Helper()
	n := 10
	ff := gm.NewFlatfile(n)

	observed := make([]float64, n)
	zeros := make([]float64, n)
	ones := make([]float64, n)
	sids := make([]int, n)
	for i := range observed {
		observed[i] = 0.25 // exp(mean) so residuals are exactly zero
		ones[i] = 1
		sids[i] = i
	}
	require.NoError(t, ff.AddFloatColumn("PGA", observed))

	table := gm.NewResidualTable(ff)
	mean := make([]float64, n)
	sigma := make([]float64, n)
	for i := range mean {
		mean[i] = math.Log(0.25)
		sigma[i] = 0.7
	}
	table.SetAt(gm.MakeKey("PGA", gm.KindMean, "ModelA"), sids, mean)
	table.SetAt(gm.MakeKey("PGA", gm.KindTotalStddev, "ModelA"), sids, sigma)
	table.SetAt(gm.MakeKey("PGA", gm.KindTotalResidual, "ModelA"), sids, zeros)
	table.SetAt(gm.MakeKey("PGA", gm.KindTotalResidualLikelihood, "ModelA"), sids, ones)
	return table
}

func TestAggregate_ZeroResiduals(t *testing.T) {
	result, err := newTestAggregator(t).Aggregate(zeroResidualTable(t))
	require.NoError(t, err)

	median, ok := result.Value("ModelA", "PGA total_residual_likelihood median")
	require.True(t, ok)
	assert.InDelta(t, 1.0, median, 1e-12, "erf(0)=0 so likelihood is 1")

	stddev, ok := result.Value("ModelA", "PGA total_residual stddev")
	require.True(t, ok)
	assert.InDelta(t, 0.0, stddev, 1e-12)

	mean, ok := result.Value("ModelA", "PGA total_residual mean")
	require.True(t, ok)
	assert.InDelta(t, 0.0, mean, 1e-12)

	llh, ok := result.Value("ModelA", "PGA loglikelihood")
	require.True(t, ok)
	assert.False(t, math.IsNaN(llh) || math.IsInf(llh, 0), "log-likelihood must be finite")
	// -log2(phi(0)) = log2(sqrt(2*pi)) ~ 1.3257
	assert.InDelta(t, 1.3257, llh, 1e-3)

	iqr, ok := result.Value("ModelA", "PGA total_residual_likelihood iqr")
	require.True(t, ok)
	assert.InDelta(t, 0.0, iqr, 1e-12)
}

func TestAggregate_PerfectPredictionEDR(t *testing.T) {
	n := 20
	ff := gm.NewFlatfile(n)

	observed := make([]float64, n)
	mean := make([]float64, n)
	sigma := make([]float64, n)
	zeros := make([]float64, n)
	sids := make([]int, n)
	for i := range observed {
		observed[i] = 0.05 + 0.01*float64(i)
		mean[i] = math.Log(observed[i])
		sigma[i] = 1e-5 // effectively certain predictions
		sids[i] = i
	}
	require.NoError(t, ff.AddFloatColumn("PGA", observed))

	table := gm.NewResidualTable(ff)
	table.SetAt(gm.MakeKey("PGA", gm.KindMean, "Perfect"), sids, mean)
	table.SetAt(gm.MakeKey("PGA", gm.KindTotalStddev, "Perfect"), sids, sigma)
	table.SetAt(gm.MakeKey("PGA", gm.KindTotalResidual, "Perfect"), sids, zeros)

	result, err := newTestAggregator(t).Aggregate(table)
	require.NoError(t, err)

	bandwidth := config.Default().Ranking.Bandwidth
	mdeNorm, _ := result.Value("Perfect", MeasureMDENorm)
	edr, _ := result.Value("Perfect", MeasureEDR)
	sqrtKappa, _ := result.Value("Perfect", MeasureSqrtKappa)

	assert.Less(t, mdeNorm, bandwidth, "perfect prediction collapses MDE to bin-width scale")
	assert.Less(t, edr, bandwidth)
	assert.GreaterOrEqual(t, mdeNorm, 0.0)
	assert.GreaterOrEqual(t, edr, 0.0)
	assert.InDelta(t, 1.0, sqrtKappa, 1e-9, "no bias to correct")
}

func TestAggregate_EDREmptyInputIsNaN(t *testing.T) {
	ff := gm.NewFlatfile(4)
	require.NoError(t, ff.AddFloatColumn("PGA", []float64{0.1, 0.2, 0.1, 0.3}))

	table := gm.NewResidualTable(ff)
	// Columns exist but every entry is missing
	table.EnsureColumn(gm.MakeKey("PGA", gm.KindMean, "Sparse"))
	table.EnsureColumn(gm.MakeKey("PGA", gm.KindTotalStddev, "Sparse"))
	table.EnsureColumn(gm.MakeKey("PGA", gm.KindTotalResidual, "Sparse"))

	result, err := newTestAggregator(t).Aggregate(table)
	require.NoError(t, err, "numeric degeneracy must not raise")

	for _, measure := range []string{MeasureMDENorm, MeasureSqrtKappa, MeasureEDR} {
		v, ok := result.Value("Sparse", measure)
		require.True(t, ok, measure)
		assert.True(t, math.IsNaN(v), "%s should be NaN on empty input", measure)
	}
	llh, _ := result.Value("Sparse", "PGA loglikelihood")
	assert.True(t, math.IsNaN(llh))
	allIMT, _ := result.Value("Sparse", AllIMTMeasure)
	assert.True(t, math.IsNaN(allIMT))
}

func TestAggregate_EndToEnd(t *testing.T) {
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Events = 6
	cfg.RecordsPerEvent = 10
	ff := testkit.NewGenerator(cfg).Flatfile()

	e, err := engine.New(config.Default().Engine, nil)
	require.NoError(t, err)

	models := []ports.GroundMotionModel{
		testkit.NewFakeGMM("Sharp", map[gm.StddevKind]float64{
			gm.StddevTotal:      0.55,
			gm.StddevInterEvent: 0.3,
			gm.StddevIntraEvent: 0.46,
		}),
		testkit.NewFakeGMM("Blunt", map[gm.StddevKind]float64{
			gm.StddevTotal: 1.1,
		}),
	}

	table, err := e.Residuals(context.Background(), ff, models, []string{"PGA", "SA(0.2)"})
	require.NoError(t, err)

	result, err := newTestAggregator(t).Aggregate(table)
	require.NoError(t, err)

	require.ElementsMatch(t, result.Models(), table.Models())

	for _, model := range result.Models() {
		for _, measure := range []string{MeasureMDENorm, MeasureSqrtKappa, MeasureEDR} {
			v, ok := result.Value(model, measure)
			require.True(t, ok, "%s %s", model, measure)
			if !math.IsNaN(v) {
				assert.GreaterOrEqual(t, v, 0.0, "%s %s never negative", model, measure)
			}
		}
		allIMT, ok := result.Value(model, AllIMTMeasure)
		require.True(t, ok)
		assert.False(t, math.IsNaN(allIMT), "pooled residuals exist for %s", model)
	}

	// The model declaring only a total stddev yields no decomposition stats
	_, ok := result.Value("Blunt", "PGA inter_event_residual mean")
	assert.False(t, ok)
	_, ok = result.Value("Sharp", "PGA inter_event_residual mean")
	assert.True(t, ok)
}

func TestResult_TableView(t *testing.T) {
	result, err := newTestAggregator(t).Aggregate(zeroResidualTable(t))
	require.NoError(t, err)

	view := result.Table()
	require.Equal(t, len(result.Measures()), len(view.Measures))
	require.Equal(t, len(result.Models()), len(view.Models))
	require.Len(t, view.Cells, len(view.Measures))

	for i, measure := range view.Measures {
		for j, model := range view.Models {
			want, ok := result.Value(model, measure)
			require.True(t, ok)
			if math.IsNaN(want) {
				assert.True(t, math.IsNaN(view.Cells[i][j]))
				continue
			}
			assert.Equal(t, want, view.Cells[i][j])
		}
	}

	// The nested view agrees with point lookups and is a copy
	for _, model := range result.Models() {
		perModel := result.PerModel(model)
		for measure, v := range perModel {
			want, ok := result.Value(model, measure)
			require.True(t, ok)
			if !math.IsNaN(want) {
				assert.Equal(t, want, v)
			}
		}
		perModel[MeasureEDR] = -1
		v, ok := result.Value(model, MeasureEDR)
		require.True(t, ok)
		assert.NotEqual(t, -1.0, v, "mutating the copy must not touch the store")
	}
}
