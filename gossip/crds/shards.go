package crds

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/ledgerwatch/crds/common"
)

// ShardBits is the bucket-id width: 2^12 = 4096 buckets.
const ShardBits = 12

// NumShards is the bucket count, 2^ShardBits.
const NumShards = 1 << ShardBits

// CrdsShards is the binary-prefix index over value hashes that powers
// bitmask-matched pull-response construction. Each bucket keeps a
// roaring.Bitmap of member primary indices — the same bucketed-bitmap,
// FastOr-to-union technique ethdb/bitmapdb uses for range-sharded secondary
// indices — plus a plain map back to the full hash prefix for the narrow,
// single-bucket comparisons mask_bits > 12 requires.
type CrdsShards struct {
	buckets [NumShards]shardBucket
}

type shardBucket struct {
	bitmap *roaring.Bitmap
	prefix map[uint32]uint64
}

// NewCrdsShards returns an empty shard index.
func NewCrdsShards() *CrdsShards {
	s := &CrdsShards{}
	for i := range s.buckets {
		s.buckets[i] = shardBucket{bitmap: roaring.New(), prefix: make(map[uint32]uint64)}
	}
	return s
}

// bucketOf returns the bucket id for a hash prefix: its top ShardBits bits.
func bucketOf(prefix uint64) uint32 {
	return uint32(prefix >> (64 - ShardBits))
}

// Insert records index in the bucket determined by hash. Re-inserting an
// index already present is a programming error.
func (s *CrdsShards) Insert(index uint32, hash common.Hash) error {
	prefix := hash.FirstU64LE()
	bucket := &s.buckets[bucketOf(prefix)]
	if bucket.bitmap.Contains(index) {
		return fmt.Errorf("crds: shards: index %d already present", index)
	}
	bucket.bitmap.Add(index)
	bucket.prefix[index] = prefix
	return nil
}

// Remove erases index from the bucket determined by hash. Removing an
// absent index is a programming error.
func (s *CrdsShards) Remove(index uint32, hash common.Hash) error {
	prefix := hash.FirstU64LE()
	bucket := &s.buckets[bucketOf(prefix)]
	if !bucket.bitmap.Contains(index) {
		return fmt.Errorf("crds: shards: index %d not present", index)
	}
	bucket.bitmap.Remove(index)
	delete(bucket.prefix, index)
	return nil
}

// Find returns every primary index whose stored hash prefix shares the top
// maskBits bits with mask. maskBits must be in [0, 64].
func (s *CrdsShards) Find(mask uint64, maskBits int) []uint32 {
	switch {
	case maskBits == 0:
		return s.unionRange(0, NumShards)
	case maskBits <= ShardBits:
		rangeSize := uint32(1) << (ShardBits - maskBits)
		base := uint32(mask>>(64-maskBits)) << (ShardBits - maskBits)
		return s.unionRange(base, base+rangeSize)
	default:
		bucket := &s.buckets[mask>>(64-ShardBits)]
		shift := uint(64 - maskBits)
		want := mask >> shift
		var out []uint32
		for idx, prefix := range bucket.prefix {
			if prefix>>shift == want {
				out = append(out, idx)
			}
		}
		return out
	}
}

func (s *CrdsShards) unionRange(from, to uint32) []uint32 {
	bitmaps := make([]*roaring.Bitmap, 0, to-from)
	for b := from; b < to; b++ {
		bitmaps = append(bitmaps, s.buckets[b].bitmap)
	}
	return roaring.FastOr(bitmaps...).ToArray()
}

// Len returns the total number of indexed entries across all buckets.
func (s *CrdsShards) Len() int {
	total := 0
	for i := range s.buckets {
		total += int(s.buckets[i].bitmap.GetCardinality())
	}
	return total
}
