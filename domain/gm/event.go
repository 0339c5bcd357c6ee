package gm

import (
	"math"

	"gmfit/domain/core"
)

// EventContext is a read-only view over the flatfile rows belonging to one
// earthquake event, the unit of inter-event statistical estimation. It owns
// the row positions (sids) used to scatter per-event results back into the
// full-table residual frame, and exposes rupture-level scalars (constant
// within the group) and per-row site/distance vectors. One context lives for
// the duration of one event's processing.
type EventContext struct {
	Key  core.EventKey
	SIDs []int

	ff *Flatfile
}

// NewEventContext builds a context over the given row positions.
// Positions must be non-empty; the grouper guarantees this.
func NewEventContext(key core.EventKey, sids []int, ff *Flatfile) *EventContext {
	return &EventContext{Key: key, SIDs: sids, ff: ff}
}

// N returns the number of records in the event group
func (c *EventContext) N() int {
	return len(c.SIDs)
}

// RuptureValue returns a rupture-level scalar attribute (magnitude, rake,
// depth, ...), looked up once from the group's first row. Rupture columns
// are constant within an event by the flatfile provider's contract.
func (c *EventContext) RuptureValue(column string) (float64, bool) {
	col, ok := c.ff.Float(column)
	if !ok || len(c.SIDs) == 0 {
		return 0, false
	}
	return col[c.SIDs[0]], true
}

// SiteValues gathers a per-row site or distance attribute vector
// (vs30, distance metrics) in group row order.
func (c *EventContext) SiteValues(column string) ([]float64, bool) {
	col, ok := c.ff.Float(column)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(c.SIDs))
	for i, sid := range c.SIDs {
		out[i] = col[sid]
	}
	return out, true
}

// ObservedLn gathers the observed values of an intensity measure for the
// group, transformed to natural-log scale. Observation columns hold
// untransformed physical units; non-positive values map to NaN.
func (c *EventContext) ObservedLn(imt string) ([]float64, bool) {
	col, ok := c.ff.Float(imt)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(c.SIDs))
	for i, sid := range c.SIDs {
		if col[sid] > 0 {
			out[i] = math.Log(col[sid])
		} else {
			out[i] = math.NaN()
		}
	}
	return out, true
}
