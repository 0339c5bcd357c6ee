package gm

import (
	"testing"

	"gmfit/domain/core"
)

func TestColumnKey_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  ColumnKey
	}{
		{"scalar imt", MakeKey("PGA", KindTotalResidual, "AkkarBommer2010")},
		{"spectral imt", MakeKey("SA(0.2)", KindMean, "BooreAtkinson2008")},
		{"likelihood kind", MakeKey("PGV", KindIntraEventResidualLikelihood, "ChiouYoungs2014")},
		{"model with spaces", MakeKey("PGA", KindInterEventStddev, "Custom Model v2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseColumn(tt.key.String())
			if !ok {
				t.Fatalf("ParseColumn(%q) not recognized", tt.key.String())
			}
			if parsed != tt.key {
				t.Errorf("round trip mismatch: got %+v, want %+v", parsed, tt.key)
			}
		})
	}
}

func TestParseColumn_RejectsNonComputed(t *testing.T) {
	for _, column := range []string{
		"PGA",
		"magnitude",
		"event_id",
		"vs30 something Model",
		"PGA unknown_kind Model",
		"PGA mean",
		"",
	} {
		if _, ok := ParseColumn(column); ok {
			t.Errorf("ParseColumn(%q) should not recognize a raw column", column)
		}
	}
}

func TestKind_LikelihoodCounterparts(t *testing.T) {
	wantPairs := map[Kind]Kind{
		KindTotalResidual:      KindTotalResidualLikelihood,
		KindInterEventResidual: KindInterEventResidualLikelihood,
		KindIntraEventResidual: KindIntraEventResidualLikelihood,
	}
	for residual, want := range wantPairs {
		got, ok := residual.Likelihood()
		if !ok || got != want {
			t.Errorf("%s.Likelihood() = %s, %v; want %s", residual, got, ok, want)
		}
		if !got.Valid() || !got.IsLikelihood() {
			t.Errorf("%s should be a valid likelihood kind", got)
		}
	}

	for _, kind := range []Kind{KindMean, KindTotalStddev, KindTotalResidualLikelihood} {
		if _, ok := kind.Likelihood(); ok {
			t.Errorf("%s.Likelihood() should not map", kind)
		}
	}
}

func TestStddevKind_ColumnKind(t *testing.T) {
	for stddev, want := range map[StddevKind]Kind{
		StddevTotal:      KindTotalStddev,
		StddevInterEvent: KindInterEventStddev,
		StddevIntraEvent: KindIntraEventStddev,
	} {
		got, ok := stddev.ColumnKind()
		if !ok || got != want {
			t.Errorf("%s.ColumnKind() = %s, %v; want %s", stddev, got, ok, want)
		}
	}
	if _, ok := StddevKind("bogus").ColumnKind(); ok {
		t.Error("unrecognized stddev kind should not map")
	}
}

func TestColumnKey_Unique(t *testing.T) {
	keys := []ColumnKey{
		MakeKey("PGA", KindMean, "A"),
		MakeKey("PGA", KindMean, "B"),
		MakeKey("PGA", KindTotalStddev, "A"),
		MakeKey("SA(0.2)", KindMean, "A"),
	}
	seen := make(map[string]core.ModelName)
	for _, key := range keys {
		if _, dup := seen[key.String()]; dup {
			t.Errorf("column form %q collides", key.String())
		}
		seen[key.String()] = key.Model
	}
}
