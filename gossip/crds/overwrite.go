package crds

import "github.com/ledgerwatch/crds/common"

// shouldOverwrite implements the conflict-resolution predicate for two
// records sharing a label: the record with the higher wallclock wins;
// ties are broken by the lexicographically larger hash, giving every peer
// applying the same rule a consistent, deterministic total order.
func shouldOverwrite(oldWallclock, newWallclock uint64, oldHash, newHash common.Hash) bool {
	switch {
	case newWallclock > oldWallclock:
		return true
	case newWallclock < oldWallclock:
		return false
	default:
		return oldHash.Less(newHash)
	}
}
