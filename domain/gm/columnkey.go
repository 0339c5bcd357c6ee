package gm

import (
	"strings"

	"gmfit/domain/core"
)

// Kind is the closed vocabulary of computed-column quantities. Every derived
// column in a residual table is addressed by the (intensity measure, kind,
// model) triple; any column whose middle token is not one of these values is
// a raw observation or metadata column, never a computed one.
type Kind string

const (
	KindMean             Kind = "mean"
	KindTotalStddev      Kind = "total_stddev"
	KindInterEventStddev Kind = "inter_event_stddev"
	KindIntraEventStddev Kind = "intra_event_stddev"

	KindTotalResidual      Kind = "total_residual"
	KindInterEventResidual Kind = "inter_event_residual"
	KindIntraEventResidual Kind = "intra_event_residual"

	KindTotalResidualLikelihood      Kind = "total_residual_likelihood"
	KindInterEventResidualLikelihood Kind = "inter_event_residual_likelihood"
	KindIntraEventResidualLikelihood Kind = "intra_event_residual_likelihood"
)

// allKinds is the full vocabulary, used by ParseColumn for recognition.
var allKinds = map[Kind]bool{
	KindMean:                         true,
	KindTotalStddev:                  true,
	KindInterEventStddev:             true,
	KindIntraEventStddev:             true,
	KindTotalResidual:                true,
	KindInterEventResidual:           true,
	KindIntraEventResidual:           true,
	KindTotalResidualLikelihood:      true,
	KindInterEventResidualLikelihood: true,
	KindIntraEventResidualLikelihood: true,
}

// Valid reports whether k belongs to the kind vocabulary
func (k Kind) Valid() bool {
	return allKinds[k]
}

// IsResidual reports whether k is one of the three residual kinds
func (k Kind) IsResidual() bool {
	return k == KindTotalResidual || k == KindInterEventResidual || k == KindIntraEventResidual
}

// IsStddev reports whether k is one of the three standard-deviation kinds
func (k Kind) IsStddev() bool {
	return k == KindTotalStddev || k == KindInterEventStddev || k == KindIntraEventStddev
}

// IsLikelihood reports whether k is a likelihood counterpart kind
func (k Kind) IsLikelihood() bool {
	return k == KindTotalResidualLikelihood ||
		k == KindInterEventResidualLikelihood ||
		k == KindIntraEventResidualLikelihood
}

// Likelihood returns the likelihood counterpart of a residual kind.
// ok is false when k is not a residual kind.
func (k Kind) Likelihood() (Kind, bool) {
	switch k {
	case KindTotalResidual:
		return KindTotalResidualLikelihood, true
	case KindInterEventResidual:
		return KindInterEventResidualLikelihood, true
	case KindIntraEventResidual:
		return KindIntraEventResidualLikelihood, true
	default:
		return "", false
	}
}

// StddevKind tags a standard-deviation component array returned by a
// ground-motion model. Models declare an arbitrary subset of these.
type StddevKind string

const (
	StddevTotal      StddevKind = "total"
	StddevInterEvent StddevKind = "inter_event"
	StddevIntraEvent StddevKind = "intra_event"
)

// ColumnKind maps a stddev kind to its computed-column kind.
// ok is false for unrecognized kinds.
func (s StddevKind) ColumnKind() (Kind, bool) {
	switch s {
	case StddevTotal:
		return KindTotalStddev, true
	case StddevInterEvent:
		return KindInterEventStddev, true
	case StddevIntraEvent:
		return KindIntraEventStddev, true
	default:
		return "", false
	}
}

// ColumnKey addresses one computed column by the
// (intensity measure, quantity kind, model) triple.
// Within one residual table a given key is unique.
type ColumnKey struct {
	IMT   string
	Kind  Kind
	Model core.ModelName
}

// MakeKey builds a computed-column key. Never collides for distinct inputs:
// IMT names carry no whitespace (enforced by ParseIMT) and the kind token is
// drawn from the closed vocabulary, so String round-trips via ParseColumn.
func MakeKey(imt string, kind Kind, model core.ModelName) ColumnKey {
	return ColumnKey{IMT: imt, Kind: kind, Model: model}
}

// String renders the flat column form "<imt> <kind> <model>"
func (k ColumnKey) String() string {
	return k.IMT + " " + string(k.Kind) + " " + string(k.Model)
}

// ParseColumn recognizes a flat column name as a computed-column key.
// Columns whose middle token is outside the kind vocabulary are treated as
// non-computed (raw observation or metadata) and ok is false.
func ParseColumn(column string) (ColumnKey, bool) {
	fields := strings.Fields(column)
	if len(fields) < 3 {
		return ColumnKey{}, false
	}
	kind := Kind(fields[1])
	if !kind.Valid() {
		return ColumnKey{}, false
	}
	return ColumnKey{
		IMT:   fields[0],
		Kind:  kind,
		Model: core.ModelName(strings.Join(fields[2:], " ")),
	}, true
}

// Less orders keys by (imt, kind, model) for deterministic iteration
func (k ColumnKey) Less(other ColumnKey) bool {
	if k.IMT != other.IMT {
		return k.IMT < other.IMT
	}
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.Model < other.Model
}
