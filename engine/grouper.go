package engine

import (
	"strconv"
	"strings"

	"gmfit/domain/core"
	"gmfit/domain/gm"
)

// GroupEvents partitions a flatfile into per-event contexts, the unit of
// inter-event statistical estimation. Grouping uses the event id column when
// present, otherwise the surrogate location/time tuple with exact equality
// (identical coordinates only, no proximity snapping).
//
// Guarantees: groups are non-empty, row order within a group follows the
// source table, and the union of all groups' row positions is exactly the
// table's row set with no duplicates. Events appear in first-seen order. A
// non-dense row index is re-indexed once up front; contexts carry
// post-reindex positions.
func GroupEvents(ff *gm.Flatfile) ([]*gm.EventContext, error) {
	if ff == nil || ff.NumRows() == 0 {
		return nil, core.ErrEmptyFlatfile
	}
	if !ff.HasDenseIndex() {
		ff.Reindex()
	}

	keys, err := eventKeys(ff)
	if err != nil {
		return nil, err
	}

	order := make([]core.EventKey, 0)
	groups := make(map[core.EventKey][]int)
	for sid, key := range keys {
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sid)
	}

	contexts := make([]*gm.EventContext, 0, len(order))
	for _, key := range order {
		contexts = append(contexts, gm.NewEventContext(key, groups[key], ff))
	}
	return contexts, nil
}

// eventKeys derives one grouping key per row
func eventKeys(ff *gm.Flatfile) ([]core.EventKey, error) {
	if ids, ok := ff.Str(gm.ColEventID); ok {
		keys := make([]core.EventKey, len(ids))
		for i, id := range ids {
			keys[i] = core.EventKey(id)
		}
		return keys, nil
	}

	if err := ff.RequireColumns(gm.SurrogateEventColumns...); err != nil {
		return nil, err
	}

	lat, _ := ff.Float(gm.ColEventLatitude)
	lon, _ := ff.Float(gm.ColEventLongitude)
	depth, _ := ff.Float(gm.ColEventDepth)
	times, timesOK := ff.Str(gm.ColEventTime)
	floatTimes, floatTimesOK := ff.Float(gm.ColEventTime)

	keys := make([]core.EventKey, ff.NumRows())
	for i := range keys {
		parts := []string{
			strconv.FormatFloat(lat[i], 'g', -1, 64),
			strconv.FormatFloat(lon[i], 'g', -1, 64),
			strconv.FormatFloat(depth[i], 'g', -1, 64),
		}
		switch {
		case timesOK:
			parts = append(parts, times[i])
		case floatTimesOK:
			parts = append(parts, strconv.FormatFloat(floatTimes[i], 'g', -1, 64))
		}
		keys[i] = core.EventKey(strings.Join(parts, "|"))
	}
	return keys, nil
}
