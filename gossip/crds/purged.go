package crds

import (
	"container/list"

	"github.com/ledgerwatch/crds/common"
)

// purgedEntry is one (hash, timestamp) record in the HashTimeQueue.
type purgedEntry struct {
	Hash      common.Hash
	Timestamp uint64
}

// HashTimeQueue is the FIFO of recently evicted or rejected value hashes,
// used by callers to suppress re-offering values peers have already told
// us about or that we just displaced. A doubly linked list matches the
// trim-from-head access pattern exactly: Insert only ever appends, Trim
// only ever removes a prefix from the front.
//
// The queue has no lock of its own — like the rest of CrdsTable's
// sub-structures, it is guarded by the table's single RWMutex; used
// standalone (as in this package's tests) it is not goroutine-safe.
type HashTimeQueue struct {
	entries *list.List
}

// NewHashTimeQueue returns an empty purged queue.
func NewHashTimeQueue() *HashTimeQueue {
	return &HashTimeQueue{entries: list.New()}
}

// Insert appends (hash, now) to the tail of the queue.
func (q *HashTimeQueue) Insert(hash common.Hash, now uint64) {
	q.entries.PushBack(purgedEntry{Hash: hash, Timestamp: now})
}

// Trim removes every prefix entry older than cutoff, stopping at the first
// entry with Timestamp >= cutoff. In steady state timestamps are appended
// non-decreasing, so this head-only scan is sufficient; an out-of-order
// timestamp may be left behind, which is acceptable since purged is
// advisory only.
func (q *HashTimeQueue) Trim(cutoff uint64) {
	for e := q.entries.Front(); e != nil; {
		if e.Value.(purgedEntry).Timestamp >= cutoff {
			return
		}
		next := e.Next()
		q.entries.Remove(e)
		e = next
	}
}

// Values returns every queued hash in FIFO order.
func (q *HashTimeQueue) Values() []common.Hash {
	out := make([]common.Hash, 0, q.entries.Len())
	for e := q.entries.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(purgedEntry).Hash)
	}
	return out
}

// Len returns the current entry count.
func (q *HashTimeQueue) Len() int { return q.entries.Len() }
