package ranking

import (
	"sort"

	"gmfit/domain/core"
)

// Result maps human-readable fit-measure names (e.g. "PGA total_residual
// mean", "mde_norm", "edr") to per-model values. Created fresh per
// aggregation and immutable once returned; the tabular and nested views are
// both derived from the same store.
type Result struct {
	RunID     core.RunID
	CreatedAt core.Timestamp

	values map[core.ModelName]map[string]float64
}

func newResult() *Result {
	return &Result{
		RunID:     core.NewRunID(),
		CreatedAt: core.Now(),
		values:    make(map[core.ModelName]map[string]float64),
	}
}

func (r *Result) set(model core.ModelName, measure string, value float64) {
	if _, ok := r.values[model]; !ok {
		r.values[model] = make(map[string]float64)
	}
	r.values[model][measure] = value
}

// Value returns one fit measure for one model
func (r *Result) Value(model core.ModelName, measure string) (float64, bool) {
	measures, ok := r.values[model]
	if !ok {
		return 0, false
	}
	v, ok := measures[measure]
	return v, ok
}

// Models returns the models present, sorted
func (r *Result) Models() []core.ModelName {
	models := make([]core.ModelName, 0, len(r.values))
	for model := range r.values {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// Measures returns every fit-measure name present for any model, sorted
func (r *Result) Measures() []string {
	seen := make(map[string]bool)
	for _, measures := range r.values {
		for name := range measures {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PerModel returns the nested measure map for one model (a copy)
func (r *Result) PerModel(model core.ModelName) map[string]float64 {
	out := make(map[string]float64, len(r.values[model]))
	for name, v := range r.values[model] {
		out[name] = v
	}
	return out
}

// Table is the tabular view: rows are fit measures, columns are models.
// Cells[i][j] holds measure i for model j; NaN marks a measure a model
// does not define.
type Table struct {
	Measures []string
	Models   []core.ModelName
	Cells    [][]float64
}

// Table derives the tabular view from the store
func (r *Result) Table() Table {
	measures := r.Measures()
	models := r.Models()

	cells := make([][]float64, len(measures))
	for i, measure := range measures {
		cells[i] = make([]float64, len(models))
		for j, model := range models {
			v, ok := r.Value(model, measure)
			if !ok {
				v = nan
			}
			cells[i][j] = v
		}
	}
	return Table{Measures: measures, Models: models, Cells: cells}
}
