// Package crds implements the Cluster Replicated Data Store: the
// in-memory, thread-safe, indexed registry of signed gossip values a
// cluster node holds. Callers drive eviction and transport; this package
// owns conflict resolution, cursor bookkeeping and the shard index that
// makes bitmask-matched pull responses cheap.
package crds

import (
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerwatch/crds/common"
	"github.com/ledgerwatch/crds/gossip/crds/crdsmetrics"
	"github.com/ledgerwatch/crds/gossip/wire"
	"github.com/ledgerwatch/crds/log"
)

// VersionedValue is the stored record for one label: the value itself, its
// content hash, and the two timestamps/sequence numbers assigned at
// insertion. Getters return copies of this type so callers may read them
// after releasing the table's lock.
type VersionedValue struct {
	Value                CrdsValue
	ValueHash            common.Hash
	TimestampOnInsertion uint64
	CursorOnInsertion    uint64
}

// NowFunc supplies the current wallclock time in milliseconds, computed
// once per InsertValues call.
type NowFunc func() uint64

// Table is the CrdsTable: the primary label-keyed store, its per-category
// secondary indices, the shard index, the purged queue, and the single
// RWMutex that makes every operation's side effects atomic.
type Table struct {
	mu sync.RWMutex

	cfg Config

	store []VersionedValue
	sizes []uint64
	labels map[CrdsValueLabel]uint32

	contactInfos    mapset.Set[uint32]
	votes           *cursorIndex
	epochSlots      *cursorIndex
	duplicateShreds *cursorIndex
	entries         *cursorIndex

	shredVersions map[common.Pubkey]uint16

	shards *CrdsShards
	purged *HashTimeQueue

	cursor       uint64
	sizeEstimate uint64

	metrics *crdsmetrics.Set
	log     log.Logger
}

// NewTable returns an empty CrdsTable.
func NewTable(cfg Config) *Table {
	return &Table{
		cfg:             cfg,
		labels:          make(map[CrdsValueLabel]uint32),
		contactInfos:    mapset.NewThreadUnsafeSet[uint32](),
		votes:           newCursorIndex(),
		epochSlots:      newCursorIndex(),
		duplicateShreds: newCursorIndex(),
		entries:         newCursorIndex(),
		shredVersions:   make(map[common.Pubkey]uint16),
		shards:          NewCrdsShards(),
		purged:          NewHashTimeQueue(),
		log:             log.New("pkg", "crds"),
	}
}

// SetMetrics attaches a crdsmetrics.Set the table updates after every
// Insert/InsertValues call. Optional; a nil Set (the default) is a no-op.
func (t *Table) SetMetrics(m *crdsmetrics.Set) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics = m
}

// Len returns the number of distinct labels currently stored.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.store)
}

// WriteLock, ReleaseWriteLock, ReadLock and ReleaseReadLock give advanced
// callers manual control of the table's single RWMutex, for example to
// assemble a pull response from several *Locked calls under one critical
// section. Ordinary callers should use the self-locking methods below
// instead; mixing the two on the same goroutine deadlocks, since
// sync.RWMutex is not reentrant.
func (t *Table) WriteLock()        { t.mu.Lock() }
func (t *Table) ReleaseWriteLock() { t.mu.Unlock() }
func (t *Table) ReadLock()         { t.mu.RLock() }
func (t *Table) ReleaseReadLock()  { t.mu.RUnlock() }

// Insert inserts or conflict-resolves value into the table.
func (t *Table) Insert(value CrdsValue, now uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertLocked(value, now)
}

// InsertLocked is Insert without acquiring the lock; the caller must hold
// it via WriteLock.
func (t *Table) InsertLocked(value CrdsValue, now uint64) error {
	return t.insertLocked(value, now)
}

func (t *Table) insertLocked(value CrdsValue, now uint64) error {
	encoded := wire.Encode(value)
	hash := common.Hash(hashBytes(encoded))
	label := value.Label()
	size := uint64(len(encoded))

	idx, exists := t.labels[label]
	if !exists {
		if t.wouldExceedBudget(t.sizeEstimate + size) {
			t.observeInsert(crdsmetrics.OutcomeResourceExceeded)
			return fmt.Errorf("crds: inserting %s would exceed configured size budget: %w", label, ErrResourceExceeded)
		}
		record := VersionedValue{
			Value:                value,
			ValueHash:            hash,
			TimestampOnInsertion: now,
			CursorOnInsertion:    t.cursor,
		}
		idx = uint32(len(t.store))
		t.store = append(t.store, record)
		t.sizes = append(t.sizes, size)
		t.labels[label] = idx
		t.addToCategoryIndex(label.Kind, idx, t.cursor)
		if lci, ok := value.Data.(*LegacyContactInfo); ok {
			t.shredVersions[lci.ID] = lci.ShredVersion
		}
		if err := t.shards.Insert(idx, hash); err != nil {
			assertInvariant(false, "shards.Insert on new slot %d: %v", idx, err)
		}
		t.entries.insert(t.cursor, idx)
		t.sizeEstimate += size
		t.cursor++
		t.log.Debug("crds: inserted new value", "label", label, "cursor", record.CursorOnInsertion)
		t.observeInsert(crdsmetrics.OutcomeOk)
		t.refreshGauges()
		return nil
	}

	old := t.store[idx]
	switch {
	case shouldOverwrite(old.Value.Wallclock(), value.Wallclock(), old.ValueHash, hash):
		prospective := t.sizeEstimate - t.sizes[idx] + size
		if t.wouldExceedBudget(prospective) {
			t.observeInsert(crdsmetrics.OutcomeResourceExceeded)
			return fmt.Errorf("crds: overwriting %s would exceed configured size budget: %w", label, ErrResourceExceeded)
		}
		if err := t.shards.Remove(idx, old.ValueHash); err != nil {
			assertInvariant(false, "shards.Remove on overwrite of slot %d: %v", idx, err)
		}
		if err := t.shards.Insert(idx, hash); err != nil {
			assertInvariant(false, "shards.Insert on overwrite of slot %d: %v", idx, err)
		}
		t.removeCursorCategoryIndex(label.Kind, old.CursorOnInsertion)
		t.addToCategoryIndex(label.Kind, idx, t.cursor)
		t.entries.remove(old.CursorOnInsertion)
		t.entries.insert(t.cursor, idx)
		if lci, ok := value.Data.(*LegacyContactInfo); ok {
			t.shredVersions[lci.ID] = lci.ShredVersion
		}
		t.purged.Insert(old.ValueHash, now)
		t.store[idx] = VersionedValue{
			Value:                value,
			ValueHash:            hash,
			TimestampOnInsertion: now,
			CursorOnInsertion:    t.cursor,
		}
		t.sizeEstimate = prospective
		t.sizes[idx] = size
		t.cursor++
		t.log.Debug("crds: overwrote value", "label", label, "cursor", t.store[idx].CursorOnInsertion)
		t.observeInsert(crdsmetrics.OutcomeOk)
		t.refreshGauges()
		return nil
	case hash == old.ValueHash:
		t.observeInsert(crdsmetrics.OutcomeDuplicateValue)
		return ErrDuplicateValue
	default:
		t.purged.Insert(old.ValueHash, now)
		t.observeInsert(crdsmetrics.OutcomeOldValue)
		t.refreshGauges()
		return ErrOldValue
	}
}

func (t *Table) wouldExceedBudget(prospective uint64) bool {
	return t.cfg.MaxTableSize > 0 && prospective > uint64(t.cfg.MaxTableSize)
}

func (t *Table) observeInsert(outcome string) { t.metrics.ObserveInsert(outcome) }

func (t *Table) refreshGauges() {
	t.metrics.SetSize(len(t.store))
	t.metrics.SetCursor(t.cursor)
	t.metrics.SetPurgedLen(t.purged.Len())
}

func (t *Table) addToCategoryIndex(kind CrdsDataKind, idx uint32, cursor uint64) {
	switch kind {
	case KindLegacyContactInfo:
		t.contactInfos.Add(idx)
	case KindVote:
		t.votes.insert(cursor, idx)
	case KindEpochSlots:
		t.epochSlots.insert(cursor, idx)
	case KindDuplicateShred:
		t.duplicateShreds.insert(cursor, idx)
	}
}

func (t *Table) removeCursorCategoryIndex(kind CrdsDataKind, cursor uint64) {
	switch kind {
	case KindVote:
		t.votes.remove(cursor)
	case KindEpochSlots:
		t.epochSlots.remove(cursor)
	case KindDuplicateShred:
		t.duplicateShreds.remove(cursor)
	}
}

// InsertValues filters values by wallclock freshness window and inserts
// the rest, returning the input indices that failed. The window check runs
// in the calling goroutine; each in-window value's insert then runs on its
// own goroutine, synchronized only by the table's own RWMutex, joined with
// an errgroup; the failure list is sorted back into input order before
// returning.
func (t *Table) InsertValues(values []CrdsValue, timeoutMs uint64, now NowFunc) []int {
	nowMs := now()
	lower := saturatingSub(nowMs, timeoutMs)
	upper := saturatingAdd(nowMs, timeoutMs)

	var (
		g      errgroup.Group
		failMu sync.Mutex
		failed []int
	)
	for i, v := range values {
		i, v := i, v
		wc := v.Wallclock()
		if wc < lower || wc > upper {
			t.log.Debug("crds: dropping out-of-window value", "label", v.Label(), "wallclock", wc, "now", nowMs)
			continue
		}
		g.Go(func() error {
			if err := t.Insert(v, nowMs); err != nil {
				t.log.Debug("crds: insert failed", "label", v.Label(), "err", err)
				failMu.Lock()
				failed = append(failed, i)
				failMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	sort.Ints(failed)
	return failed
}

// Get returns the current record for label, if any.
func (t *Table) Get(label CrdsValueLabel) (VersionedValue, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getLocked(label)
}

func (t *Table) GetLocked(label CrdsValueLabel) (VersionedValue, bool) { return t.getLocked(label) }

func (t *Table) getLocked(label CrdsValueLabel) (VersionedValue, bool) {
	idx, ok := t.labels[label]
	if !ok {
		return VersionedValue{}, false
	}
	return t.store[idx], true
}

// GetEntriesWithCursor copies every accepted value past *cursor into buf,
// in insertion-cursor order, advancing *cursor to resume past what was
// returned.
func (t *Table) GetEntriesWithCursor(buf []VersionedValue, cursor *uint64) []VersionedValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scanWithCursor(t.entries, buf, cursor)
}

func (t *Table) GetEntriesWithCursorLocked(buf []VersionedValue, cursor *uint64) []VersionedValue {
	return t.scanWithCursor(t.entries, buf, cursor)
}

func (t *Table) GetVotesWithCursor(buf []VersionedValue, cursor *uint64) []VersionedValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scanWithCursor(t.votes, buf, cursor)
}

func (t *Table) GetVotesWithCursorLocked(buf []VersionedValue, cursor *uint64) []VersionedValue {
	return t.scanWithCursor(t.votes, buf, cursor)
}

func (t *Table) GetEpochSlotsWithCursor(buf []VersionedValue, cursor *uint64) []VersionedValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scanWithCursor(t.epochSlots, buf, cursor)
}

func (t *Table) GetEpochSlotsWithCursorLocked(buf []VersionedValue, cursor *uint64) []VersionedValue {
	return t.scanWithCursor(t.epochSlots, buf, cursor)
}

func (t *Table) GetDuplicateShredsWithCursor(buf []VersionedValue, cursor *uint64) []VersionedValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scanWithCursor(t.duplicateShreds, buf, cursor)
}

func (t *Table) GetDuplicateShredsWithCursorLocked(buf []VersionedValue, cursor *uint64) []VersionedValue {
	return t.scanWithCursor(t.duplicateShreds, buf, cursor)
}

func (t *Table) scanWithCursor(idx *cursorIndex, buf []VersionedValue, cursor *uint64) []VersionedValue {
	n := 0
	_, next := idx.scanFrom(*cursor, len(buf), func(primaryIdx uint32) {
		buf[n] = t.store[primaryIdx]
		n++
	})
	*cursor = next
	return buf[:n]
}

// GetContactInfos copies up to len(buf) contact-info records into buf, in
// the contact-info index's own order — not cursor order. See DESIGN.md for
// why contact infos stay a plain set instead of a sixth cursor-keyed index.
func (t *Table) GetContactInfos(buf []VersionedValue) []VersionedValue {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getContactInfosLocked(buf)
}

func (t *Table) GetContactInfosLocked(buf []VersionedValue) []VersionedValue {
	return t.getContactInfosLocked(buf)
}

func (t *Table) getContactInfosLocked(buf []VersionedValue) []VersionedValue {
	n := 0
	for idx := range t.contactInfos.Iter() {
		if n >= len(buf) {
			break
		}
		buf[n] = t.store[idx]
		n++
	}
	return buf[:n]
}

// GetBitmaskMatches delegates to the shard index.
func (t *Table) GetBitmaskMatches(mask uint64, maskBits int) []uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shards.Find(mask, maskBits)
}

func (t *Table) GetBitmaskMatchesLocked(mask uint64, maskBits int) []uint32 {
	return t.shards.Find(mask, maskBits)
}

// PurgedInsert records hash as purged at time now.
func (t *Table) PurgedInsert(hash common.Hash, now uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.purged.Insert(hash, now)
}

// PurgedTrim drops purged entries older than cutoff.
func (t *Table) PurgedTrim(cutoff uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.purged.Trim(cutoff)
	t.refreshGauges()
}

// PurgedValues returns every currently queued purged hash, in FIFO order.
func (t *Table) PurgedValues() []common.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.purged.Values()
}

// PurgedLen returns the current purged-queue length.
func (t *Table) PurgedLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.purged.Len()
}

// ShredVersion returns the shred version of the most-recently-accepted
// LegacyContactInfo from pk, if any.
func (t *Table) ShredVersion(pk common.Pubkey) (uint16, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.shredVersions[pk]
	return v, ok
}

func saturatingAdd(a, b uint64) uint64 {
	s := a + b
	if s < a {
		return ^uint64(0)
	}
	return s
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
