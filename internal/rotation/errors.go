package rotation

import "errors"

// Engine failure kinds. All are returned to callers as values; the
// sweep and the monitors capture them per item instead of halting.
var (
	ErrTableNotFound         = errors.New("table not found")
	ErrDealerNotFound        = errors.New("dealer not found")
	ErrUnsupportedGameType   = errors.New("craps tables are staffed manually")
	ErrNoQualifiedCandidates = errors.New("no qualified candidates")
)
