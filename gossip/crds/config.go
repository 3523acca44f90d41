package crds

import "github.com/c2h5oh/datasize"

// Config holds the only caller-tunable knob the core itself needs: eviction
// policy, persistence and transport all live in the caller. The zero Config
// is a valid, unlimited-size table.
type Config struct {
	// MaxTableSize bounds the table's estimated canonical-encoding byte
	// footprint. Zero means unlimited. Crossing it is the concrete trigger
	// for ErrResourceExceeded.
	MaxTableSize datasize.ByteSize
}
