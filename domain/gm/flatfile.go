package gm

import (
	"sort"

	"gmfit/domain/core"
)

// Well-known flatfile column names. The observation-table provider
// guarantees these names for event/station identification; intensity-measure
// observation columns are named after the measure itself (e.g. "PGA",
// "SA(0.2)") and hold untransformed physical values.
const (
	ColEventID        = "event_id"
	ColEventLatitude  = "event_latitude"
	ColEventLongitude = "event_longitude"
	ColEventDepth     = "event_depth"
	ColEventTime      = "event_time"
	ColStationID      = "station_id"
	ColMagnitude      = "magnitude"
	ColRake           = "rake"
	ColVs30           = "vs30"
)

// SurrogateEventColumns is the tuple of columns used as an event grouping
// key when no explicit event id column exists.
var SurrogateEventColumns = []string{
	ColEventLatitude, ColEventLongitude, ColEventDepth, ColEventTime,
}

// Flatfile is the validated observation table: one row per ground-motion
// record, with float columns (rupture, site, distance and intensity-measure
// observations) and string columns (event/station identification). Column
// typing, validation and default-filling are the provider's responsibility;
// the engine only requires lengths to match and the row index to be dense.
type Flatfile struct {
	nRows  int
	floats map[string][]float64
	strs   map[string][]string
	index  []int // nil means the dense 0..N-1 index
}

// NewFlatfile creates an empty flatfile with a fixed row count
func NewFlatfile(nRows int) *Flatfile {
	return &Flatfile{
		nRows:  nRows,
		floats: make(map[string][]float64),
		strs:   make(map[string][]string),
	}
}

// NumRows returns the number of records
func (f *Flatfile) NumRows() int {
	return f.nRows
}

// AddFloatColumn attaches a numeric column. The slice is owned by the
// flatfile afterwards.
func (f *Flatfile) AddFloatColumn(name string, values []float64) error {
	if len(values) != f.nRows {
		return core.ErrColumnLength
	}
	f.floats[name] = values
	return nil
}

// AddStringColumn attaches a string column
func (f *Flatfile) AddStringColumn(name string, values []string) error {
	if len(values) != f.nRows {
		return core.ErrColumnLength
	}
	f.strs[name] = values
	return nil
}

// Float returns a numeric column by name
func (f *Flatfile) Float(name string) ([]float64, bool) {
	col, ok := f.floats[name]
	return col, ok
}

// Str returns a string column by name
func (f *Flatfile) Str(name string) ([]string, bool) {
	col, ok := f.strs[name]
	return col, ok
}

// HasColumn reports whether a column of either type exists
func (f *Flatfile) HasColumn(name string) bool {
	_, fok := f.floats[name]
	_, sok := f.strs[name]
	return fok || sok
}

// ColumnNames returns all column names in sorted order
func (f *Flatfile) ColumnNames() []string {
	names := make([]string, 0, len(f.floats)+len(f.strs))
	for name := range f.floats {
		names = append(names, name)
	}
	for name := range f.strs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequireColumns returns ErrMissingColumn naming every absent column
func (f *Flatfile) RequireColumns(names ...string) error {
	var missing []string
	for _, name := range names {
		if !f.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return core.NewMissingColumnError(missing...)
	}
	return nil
}

// SetIndex attaches explicit row labels, as supplied by the provider.
// Labels must be unique and match the row count.
func (f *Flatfile) SetIndex(labels []int) error {
	if len(labels) != f.nRows {
		return core.ErrColumnLength
	}
	seen := make(map[int]bool, len(labels))
	for _, label := range labels {
		if seen[label] {
			return core.NewBadConfigError("index", "row index labels must be unique")
		}
		seen[label] = true
	}
	f.index = labels
	return nil
}

// Index returns the row labels (dense 0..N-1 when none were set)
func (f *Flatfile) Index() []int {
	if f.index == nil {
		labels := make([]int, f.nRows)
		for i := range labels {
			labels[i] = i
		}
		return labels
	}
	return f.index
}

// HasDenseIndex reports whether row labels already form the 0..N-1 range
func (f *Flatfile) HasDenseIndex() bool {
	if f.index == nil {
		return true
	}
	for i, label := range f.index {
		if label != i {
			return false
		}
	}
	return true
}

// Reindex discards explicit row labels in favor of the dense 0..N-1 range.
// Row order and column data are unchanged; only the labels are replaced.
func (f *Flatfile) Reindex() {
	f.index = nil
}
