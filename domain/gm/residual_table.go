package gm

import (
	"math"
	"sort"

	"gmfit/domain/core"
)

// ColumnClass tags a raw input column's role when concatenating raw columns
// alongside computed ones. The residual and ranking math never depends on
// this classification.
type ColumnClass string

const (
	ClassRupture   ColumnClass = "rupture"
	ClassSite      ColumnClass = "site"
	ClassDistance  ColumnClass = "distance"
	ClassIntensity ColumnClass = "intensity"
	ClassUnknown   ColumnClass = "unknown"
)

// ResidualTable is the engine's output: the source observation table
// alongside every computed column, addressed by ColumnKey. Missing entries
// are NaN, never zero; a wholly absent key means the (model, imt) pair was
// skipped (model undefined for that measure). The caller owns the table;
// downstream consumers read only.
type ResidualTable struct {
	RunID     core.RunID
	CreatedAt core.Timestamp

	ff   *Flatfile
	cols map[ColumnKey][]float64
}

// NewResidualTable allocates an empty residual frame over a flatfile
func NewResidualTable(ff *Flatfile) *ResidualTable {
	return &ResidualTable{
		RunID:     core.NewRunID(),
		CreatedAt: core.Now(),
		ff:        ff,
		cols:      make(map[ColumnKey][]float64),
	}
}

// Flatfile returns the source observation table
func (t *ResidualTable) Flatfile() *Flatfile {
	return t.ff
}

// NumRows returns the full-table row count
func (t *ResidualTable) NumRows() int {
	return t.ff.NumRows()
}

// EnsureColumn returns the column for key, allocating a NaN-filled one on
// first use.
func (t *ResidualTable) EnsureColumn(key ColumnKey) []float64 {
	if col, ok := t.cols[key]; ok {
		return col
	}
	col := make([]float64, t.ff.NumRows())
	for i := range col {
		col[i] = math.NaN()
	}
	t.cols[key] = col
	return col
}

// SetAt scatters per-event values into the column for key at the given row
// positions. sids and values must have equal length; rows not covered by
// any event remain NaN.
func (t *ResidualTable) SetAt(key ColumnKey, sids []int, values []float64) {
	col := t.EnsureColumn(key)
	for i, sid := range sids {
		col[sid] = values[i]
	}
}

// Column returns the values for a computed-column key
func (t *ResidualTable) Column(key ColumnKey) ([]float64, bool) {
	col, ok := t.cols[key]
	return col, ok
}

// Has reports whether a computed column exists for key
func (t *ResidualTable) Has(key ColumnKey) bool {
	_, ok := t.cols[key]
	return ok
}

// Keys returns every computed-column key in deterministic sorted order
func (t *ResidualTable) Keys() []ColumnKey {
	keys := make([]ColumnKey, 0, len(t.cols))
	for key := range t.cols {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Models returns the distinct model names present, sorted
func (t *ResidualTable) Models() []core.ModelName {
	seen := make(map[core.ModelName]bool)
	for key := range t.cols {
		seen[key.Model] = true
	}
	models := make([]core.ModelName, 0, len(seen))
	for model := range seen {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// IMTs returns the distinct intensity-measure names present, sorted
func (t *ResidualTable) IMTs() []string {
	seen := make(map[string]bool)
	for key := range t.cols {
		seen[key.IMT] = true
	}
	imts := make([]string, 0, len(seen))
	for imt := range seen {
		imts = append(imts, imt)
	}
	sort.Strings(imts)
	return imts
}
