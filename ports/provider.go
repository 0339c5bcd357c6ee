package ports

import (
	"context"

	"gmfit/domain/gm"
)

// FlatfileProvider supplies a validated observation table. Column typing,
// default-filling and event/station identification guarantees are entirely
// the provider's responsibility; the engine assumes only the invariants it
// re-checks (dense unique row index, required grouping columns).
type FlatfileProvider interface {
	Flatfile(ctx context.Context) (*gm.Flatfile, error)
}
