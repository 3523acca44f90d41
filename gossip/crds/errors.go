package crds

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. They are sentinels compared with
// errors.Is, the same pattern ethdb.ErrKeyNotFound uses elsewhere in this
// codebase.
var (
	// ErrOldValue means the incoming value is superseded by the stored one
	// under the overwrite predicate.
	ErrOldValue = errors.New("crds: incoming value is older than the stored one")

	// ErrDuplicateValue means the incoming value is hash-identical to the
	// one already stored.
	ErrDuplicateValue = errors.New("crds: incoming value is identical to the stored one")

	// ErrResourceExceeded means accepting the value would exceed the
	// table's configured size budget (Config.MaxTableSize).
	ErrResourceExceeded = errors.New("crds: table size limit exceeded")
)

// assertInvariant panics on a broken internal invariant. Internal invariant
// violations are programming bugs, not runtime errors, so this never fires
// on malformed caller input — only on a secondary index falling out of sync
// with the primary store, which insert/overwrite code paths alone can cause.
func assertInvariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("crds: invariant violated: "+format, args...))
	}
}
