package crds

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/crds/common"
)

func TestHashTimeQueueFIFOOrder(t *testing.T) {
	q := NewHashTimeQueue()
	h1, h2, h3 := common.Hash{1}, common.Hash{2}, common.Hash{3}
	q.Insert(h1, 10)
	q.Insert(h2, 20)
	q.Insert(h3, 30)
	require.Equal(t, []common.Hash{h1, h2, h3}, q.Values())
	require.Equal(t, 3, q.Len())
}

// An entry inserted at now=120 is still present at Len()==1; trimming at
// a cutoff past it empties the queue.
func TestHashTimeQueueTrim(t *testing.T) {
	q := NewHashTimeQueue()
	q.Insert(common.Hash{0xAA}, 120)
	require.Equal(t, 1, q.Len())
	q.Trim(130)
	require.Equal(t, 0, q.Len())
}

func TestHashTimeQueueTrimStopsAtFirstSurvivor(t *testing.T) {
	q := NewHashTimeQueue()
	q.Insert(common.Hash{1}, 10)
	q.Insert(common.Hash{2}, 20)
	q.Insert(common.Hash{3}, 30)
	q.Trim(20)
	require.Equal(t, []common.Hash{common.Hash{2}, common.Hash{3}}, q.Values())
}

func TestHashTimeQueueTrimLeavesOutOfOrderEntry(t *testing.T) {
	q := NewHashTimeQueue()
	// Out-of-order timestamp at the head: trim only scans from the front
	// and stops as soon as it sees a survivor, so the later, older entry
	// behind it is left in place. This is acceptable: purged is advisory,
	// not authoritative.
	q.Insert(common.Hash{1}, 50)
	q.Insert(common.Hash{2}, 5)
	q.Trim(40)
	require.Equal(t, 2, q.Len())
}
