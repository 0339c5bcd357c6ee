package engine

import (
	"errors"
	"testing"

	"gmfit/domain/core"
	"gmfit/domain/gm"
	"gmfit/internal/testkit"
)

func TestGroupEvents_ByID(t *testing.T) {
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Events = 4
	cfg.RecordsPerEvent = 6
	ff := testkit.NewGenerator(cfg).Flatfile()

	events, err := GroupEvents(ff)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	assertPartition(t, events, ff.NumRows())
}

func TestGroupEvents_BySurrogateTuple(t *testing.T) {
	cfg := testkit.DefaultGeneratorConfig()
	cfg.Events = 3
	cfg.RecordsPerEvent = 5
	cfg.SurrogateOnly = true
	ff := testkit.NewGenerator(cfg).Flatfile()

	if ff.HasColumn(gm.ColEventID) {
		t.Fatal("fixture should omit the event id column")
	}

	events, err := GroupEvents(ff)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	assertPartition(t, events, ff.NumRows())
}

func TestGroupEvents_SurrogateNumericTime(t *testing.T) {
	ff := gm.NewFlatfile(4)
	mustAddFloat(t, ff, gm.ColEventLatitude, []float64{38.1, 38.1, 38.1, 38.1})
	mustAddFloat(t, ff, gm.ColEventLongitude, []float64{27.4, 27.4, 27.4, 27.4})
	mustAddFloat(t, ff, gm.ColEventDepth, []float64{12, 12, 12, 12})
	// Epoch-style numeric origin times: same location, two events
	mustAddFloat(t, ff, gm.ColEventTime, []float64{1000, 1000, 2000, 2000})

	events, err := GroupEvents(ff)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	assertPartition(t, events, 4)
}

func TestGroupEvents_PreservesRowOrder(t *testing.T) {
	ff := gm.NewFlatfile(6)
	// Interleaved events: row order within each group must follow the table
	mustAddStr(t, ff, gm.ColEventID, []string{"a", "b", "a", "b", "a", "b"})

	events, err := GroupEvents(ff)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// First-seen order
	if events[0].Key != "a" || events[1].Key != "b" {
		t.Errorf("events out of first-seen order: %v, %v", events[0].Key, events[1].Key)
	}
	wantA := []int{0, 2, 4}
	for i, sid := range events[0].SIDs {
		if sid != wantA[i] {
			t.Errorf("event a sids = %v, want %v", events[0].SIDs, wantA)
			break
		}
	}
}

func TestGroupEvents_ReindexesSparseIndex(t *testing.T) {
	ff := gm.NewFlatfile(4)
	mustAddStr(t, ff, gm.ColEventID, []string{"a", "a", "b", "b"})
	if err := ff.SetIndex([]int{10, 20, 30, 40}); err != nil {
		t.Fatalf("set index: %v", err)
	}

	events, err := GroupEvents(ff)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if !ff.HasDenseIndex() {
		t.Error("grouping must re-index a sparse table")
	}
	assertPartition(t, events, 4)
}

func TestGroupEvents_ConfigErrors(t *testing.T) {
	if _, err := GroupEvents(nil); !errors.Is(err, core.ErrEmptyFlatfile) {
		t.Errorf("nil flatfile: got %v", err)
	}
	if _, err := GroupEvents(gm.NewFlatfile(0)); !errors.Is(err, core.ErrEmptyFlatfile) {
		t.Errorf("empty flatfile: got %v", err)
	}

	// No event id and no surrogate columns
	ff := gm.NewFlatfile(2)
	mustAddFloat(t, ff, "PGA", []float64{0.1, 0.2})
	if _, err := GroupEvents(ff); !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("missing grouping columns: got %v", err)
	}
}

// assertPartition checks groups are non-empty, disjoint and cover all rows
func assertPartition(t *testing.T, events []*gm.EventContext, nRows int) {
	t.Helper()
	seen := make(map[int]bool, nRows)
	for _, event := range events {
		if event.N() == 0 {
			t.Fatal("empty event group")
		}
		for _, sid := range event.SIDs {
			if seen[sid] {
				t.Fatalf("row %d appears in two groups", sid)
			}
			seen[sid] = true
		}
	}
	if len(seen) != nRows {
		t.Fatalf("groups cover %d rows, want %d", len(seen), nRows)
	}
}

func mustAddFloat(t *testing.T, ff *gm.Flatfile, name string, values []float64) {
	t.Helper()
	if err := ff.AddFloatColumn(name, values); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
}

func mustAddStr(t *testing.T, ff *gm.Flatfile, name string, values []string) {
	t.Helper()
	if err := ff.AddStringColumn(name, values); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
}
