package crds

import (
	"crypto/sha256"

	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/wire"
)

// HashValue computes the 32-byte content hash of v's canonical encoding.
// SHA-256 is the stdlib primitive deliberately used here instead of any
// third-party digest: the hash must stay bit-exact across every peer, and
// crypto/sha256 is the correct, unambiguous tool for that (see DESIGN.md).
func HashValue(v CrdsValue) common.Hash {
	return hashBytes(wire.Encode(v))
}

// hashBytes is the same primitive applied to an already-encoded value, so
// callers that need both the encoding's length and its hash (the table's
// insert path) don't encode twice.
func hashBytes(encoded []byte) common.Hash {
	return common.Hash(sha256.Sum256(encoded))
}
