package crds

import (
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/wire"
)

func pubkeyFrom(b byte) common.Pubkey {
	var p common.Pubkey
	p[0] = b
	return p
}

func contactInfo(pk common.Pubkey, wallclock uint64, shredVersion uint16) CrdsValue {
	return CrdsValue{Data: &LegacyContactInfo{
		ID:           pk,
		WallclockMs:  wallclock,
		ShredVersion: shredVersion,
		Gossip:       "127.0.0.1:8001",
	}}
}

func vote(pk common.Pubkey, index uint8, wallclock, slot uint64) CrdsValue {
	return CrdsValue{Data: &Vote{Index: index, From: pk, WallclockMs: wallclock, Slot: slot}}
}

// TestTableInsertNewSlot covers the happy path: inserting a brand-new
// label succeeds and is immediately visible via Get.
func TestTableInsertNewSlot(t *testing.T) {
	tbl := NewTable(Config{})
	pk := pubkeyFrom(1)
	v := contactInfo(pk, 100, 7)

	require.NoError(t, tbl.Insert(v, 100))
	assert.Equal(t, 1, tbl.Len())

	got, ok := tbl.Get(v.Label())
	require.True(t, ok)
	assert.Equal(t, uint64(100), got.TimestampOnInsertion)
	assert.Equal(t, uint64(0), got.CursorOnInsertion)

	sv, ok := tbl.ShredVersion(pk)
	require.True(t, ok)
	assert.EqualValues(t, 7, sv)
}

// TestTableInsertDuplicateRejected: re-inserting a hash-identical value
// returns ErrDuplicateValue and leaves the slot untouched.
func TestTableInsertDuplicateRejected(t *testing.T) {
	tbl := NewTable(Config{})
	pk := pubkeyFrom(1)
	v := contactInfo(pk, 100, 7)
	require.NoError(t, tbl.Insert(v, 100))

	err := tbl.Insert(v, 200)
	assert.ErrorIs(t, err, ErrDuplicateValue)
	assert.Equal(t, 1, tbl.Len())

	got, _ := tbl.Get(v.Label())
	assert.Equal(t, uint64(100), got.TimestampOnInsertion, "rejected insert must not touch the stored record")
}

// TestTableInsertOlderRejected: a strictly older wallclock for the same
// label is rejected without mutating the table.
func TestTableInsertOlderRejected(t *testing.T) {
	tbl := NewTable(Config{})
	pk := pubkeyFrom(1)
	require.NoError(t, tbl.Insert(contactInfo(pk, 100, 7), 100))

	older := contactInfo(pk, 50, 9)
	err := tbl.Insert(older, 150)
	assert.ErrorIs(t, err, ErrOldValue)

	got, _ := tbl.Get(older.Label())
	assert.EqualValues(t, 100, got.Value.Wallclock())
}

// TestTableInsertNewerOverwrites exercises the overwrite path: a strictly
// newer wallclock replaces the slot, advances its cursor, and pushes the
// displaced hash onto the purged queue.
func TestTableInsertNewerOverwrites(t *testing.T) {
	tbl := NewTable(Config{})
	pk := pubkeyFrom(1)
	first := contactInfo(pk, 100, 7)
	require.NoError(t, tbl.Insert(first, 100))
	firstRecord, _ := tbl.Get(first.Label())

	second := contactInfo(pk, 200, 8)
	require.NoError(t, tbl.Insert(second, 250))

	got, _ := tbl.Get(second.Label())
	assert.EqualValues(t, 200, got.Value.Wallclock())
	assert.Equal(t, uint64(1), got.CursorOnInsertion)
	assert.Equal(t, 1, tbl.Len(), "overwrite must not grow the table")

	purged := tbl.PurgedValues()
	require.Len(t, purged, 1)
	assert.Equal(t, firstRecord.ValueHash, purged[0])

	sv, ok := tbl.ShredVersion(pk)
	require.True(t, ok)
	assert.EqualValues(t, 8, sv)
}

// TestTableInsertTieBreakByHash: equal wallclocks are resolved by the
// lexicographically larger hash winning, in either insertion order.
func TestTableInsertTieBreakByHash(t *testing.T) {
	tbl := NewTable(Config{})
	pk := pubkeyFrom(1)

	a := CrdsValue{Data: &LegacyContactInfo{ID: pk, WallclockMs: 100, Gossip: "a"}}
	b := CrdsValue{Data: &LegacyContactInfo{ID: pk, WallclockMs: 100, Gossip: "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"}}
	ha, hb := HashValue(a), HashValue(b)

	var lower, higher CrdsValue
	if ha.Less(hb) {
		lower, higher = a, b
	} else {
		lower, higher = b, a
	}

	require.NoError(t, tbl.Insert(lower, 100))
	err := tbl.Insert(higher, 100)
	require.NoError(t, err, "the higher hash must win and be accepted")

	got, _ := tbl.Get(lower.Label())
	assert.Equal(t, HashValue(higher), got.ValueHash)

	// And the reverse order: inserting the lower hash second must be rejected.
	tbl2 := NewTable(Config{})
	require.NoError(t, tbl2.Insert(higher, 100))
	err = tbl2.Insert(lower, 100)
	assert.ErrorIs(t, err, ErrOldValue)
}

// TestTableVoteSubtyping: two votes from the same originator with
// different indices occupy distinct slots, and each advances its own
// label's record independently.
func TestTableVoteSubtyping(t *testing.T) {
	tbl := NewTable(Config{})
	pk := pubkeyFrom(3)

	require.NoError(t, tbl.Insert(vote(pk, 0, 100, 10), 100))
	require.NoError(t, tbl.Insert(vote(pk, 1, 100, 11), 100))
	assert.Equal(t, 2, tbl.Len())

	buf := make([]VersionedValue, 4)
	var cursor uint64
	out := tbl.GetVotesWithCursor(buf, &cursor)
	assert.Len(t, out, 2)
	assert.Equal(t, uint64(2), cursor)

	// A repeated scan from the advanced cursor delivers nothing further.
	more := tbl.GetVotesWithCursor(buf, &cursor)
	assert.Len(t, more, 0)
}

// TestTableGetEntriesWithCursorExactlyOnce: repeated GetEntriesWithCursor
// calls, resuming from the returned cursor, together enumerate every
// accepted value exactly once regardless of page size.
func TestTableGetEntriesWithCursorExactlyOnce(t *testing.T) {
	tbl := NewTable(Config{})
	const n = 25
	for i := 0; i < n; i++ {
		pk := pubkeyFrom(byte(i + 1))
		require.NoError(t, tbl.Insert(contactInfo(pk, uint64(100+i), 0), uint64(100+i)))
	}

	seen := map[common.Hash]bool{}
	buf := make([]VersionedValue, 4)
	var cursor uint64
	for {
		page := tbl.GetEntriesWithCursor(buf, &cursor)
		if len(page) == 0 {
			break
		}
		for _, rec := range page {
			assert.False(t, seen[rec.ValueHash], "value delivered twice")
			seen[rec.ValueHash] = true
		}
	}
	assert.Len(t, seen, n)
}

// TestTableGetEntriesWithCursorSkipsOverwrittenSlots: an overwritten entry's
// old cursor position is vacated, so scanning from 0 must not see a gap
// artifact or double-deliver the label.
func TestTableGetEntriesWithCursorSkipsOverwrittenSlots(t *testing.T) {
	tbl := NewTable(Config{})
	pkA, pkB := pubkeyFrom(1), pubkeyFrom(2)

	require.NoError(t, tbl.Insert(contactInfo(pkA, 100, 0), 100)) // cursor 0
	require.NoError(t, tbl.Insert(contactInfo(pkB, 100, 0), 100)) // cursor 1
	require.NoError(t, tbl.Insert(contactInfo(pkA, 200, 0), 250)) // overwrite, new cursor 2

	buf := make([]VersionedValue, 8)
	var cursor uint64
	out := tbl.GetEntriesWithCursor(buf, &cursor)
	require.Len(t, out, 2)
	labels := map[CrdsValueLabel]bool{}
	for _, rec := range out {
		labels[rec.Value.Label()] = true
	}
	assert.True(t, labels[contactInfo(pkA, 0, 0).Label()])
	assert.True(t, labels[contactInfo(pkB, 0, 0).Label()])
}

// TestTableResourceLimitRejectsNewSlot covers the ResourceError path
// under Config.MaxTableSize.
func TestTableResourceLimitRejectsNewSlot(t *testing.T) {
	pk := pubkeyFrom(1)
	probe := contactInfo(pk, 100, 0)
	encodedLen := len(wire.Encode(probe))

	tbl := NewTable(Config{MaxTableSize: datasize.ByteSize(encodedLen)})
	require.NoError(t, tbl.Insert(probe, 100))

	second := contactInfo(pubkeyFrom(2), 100, 0)
	err := tbl.Insert(second, 100)
	assert.ErrorIs(t, err, ErrResourceExceeded)
	assert.Equal(t, 1, tbl.Len())
}

// TestTableInsertValuesDropsOutOfWindow exercises InsertValues' wallclock
// freshness filter: values outside [now-timeout, now+timeout] are dropped
// silently (not reported as failed) rather than inserted.
func TestTableInsertValuesDropsOutOfWindow(t *testing.T) {
	tbl := NewTable(Config{})
	now := func() uint64 { return 1000 }

	fresh := contactInfo(pubkeyFrom(1), 1000, 0)
	stale := contactInfo(pubkeyFrom(2), 1, 0)
	future := contactInfo(pubkeyFrom(3), 5000, 0)

	failed := tbl.InsertValues([]CrdsValue{fresh, stale, future}, 100, now)
	assert.Empty(t, failed, "out-of-window drops are not failures")
	assert.Equal(t, 1, tbl.Len())
	_, ok := tbl.Get(fresh.Label())
	assert.True(t, ok)
}

// TestTableInsertValuesReportsFailedIndices: a duplicate within a batch
// reports its input index as failed, in ascending order, while unrelated
// successes are still applied.
func TestTableInsertValuesReportsFailedIndices(t *testing.T) {
	tbl := NewTable(Config{})
	pk := pubkeyFrom(1)
	require.NoError(t, tbl.Insert(contactInfo(pk, 100, 0), 100))

	now := func() uint64 { return 100 }
	dup := contactInfo(pk, 100, 0)
	ok1 := contactInfo(pubkeyFrom(2), 100, 0)
	ok2 := contactInfo(pubkeyFrom(3), 100, 0)

	failed := tbl.InsertValues([]CrdsValue{ok1, dup, ok2}, 1000, now)
	assert.Equal(t, []int{1}, failed)
	assert.Equal(t, 3, tbl.Len())
}

// TestTableGetBitmaskMatchesEmptySweep: a maskBits=0 query returns every
// stored index.
func TestTableGetBitmaskMatchesEmptySweep(t *testing.T) {
	tbl := NewTable(Config{})
	for i := 0; i < 5; i++ {
		require.NoError(t, tbl.Insert(contactInfo(pubkeyFrom(byte(i+1)), 100, 0), 100))
	}
	matches := tbl.GetBitmaskMatches(0, 0)
	assert.Len(t, matches, 5)
}

// TestTableGetContactInfos exercises the contact-info secondary index
// directly, independent of cursor order.
func TestTableGetContactInfos(t *testing.T) {
	tbl := NewTable(Config{})
	require.NoError(t, tbl.Insert(contactInfo(pubkeyFrom(1), 100, 0), 100))
	require.NoError(t, tbl.Insert(vote(pubkeyFrom(2), 0, 100, 1), 100))

	buf := make([]VersionedValue, 4)
	out := tbl.GetContactInfos(buf)
	require.Len(t, out, 1)
	assert.Equal(t, KindLegacyContactInfo, out[0].Value.Kind())
}

// TestTableLockedVariantsRequireExternalLocking demonstrates the advanced
// batched-access pattern: acquire the write lock once, then call the
// *Locked methods directly.
func TestTableLockedVariantsRequireExternalLocking(t *testing.T) {
	tbl := NewTable(Config{})
	tbl.WriteLock()
	defer tbl.ReleaseWriteLock()

	require.NoError(t, tbl.InsertLocked(contactInfo(pubkeyFrom(1), 100, 0), 100))
	_, ok := tbl.GetLocked(contactInfo(pubkeyFrom(1), 0, 0).Label())
	assert.True(t, ok)
}
