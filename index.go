package hdrhistogram

import "math/bits"

// bucketIndex returns the power-of-two bucket a value falls in. It mirrors
// the reference HdrHistogram algorithm: the smallest power of two able to
// represent (value | subBucketMask) tells us how many buckets above bucket
// zero the value needs.
func bucketIndex(cfg *BucketConfig, v int64) int32 {
	pow2Ceiling := int64(bits.Len64(uint64(v | cfg.SubBucketMask)))
	idx := int32(pow2Ceiling - cfg.UnitMagnitude - int64(cfg.SubBucketHalfCountMagnitude+1))
	if idx < 0 {
		return 0
	}
	return idx
}

func subBucketIndex(cfg *BucketConfig, v int64, bucketIdx int32) int32 {
	return int32(v >> uint(int64(bucketIdx)+cfg.UnitMagnitude))
}

// countsIndex folds (bucketIdx, subBucketIdx) into a flat counts-array
// index. Bucket 0 occupies the full [0, subBucketCount) range; every
// following bucket only contributes its upper half, since the lower half
// is already covered by the previous bucket at twice the resolution.
func countsIndex(cfg *BucketConfig, bucketIdx, subBucketIdx int32) int32 {
	bucketBaseIdx := (bucketIdx + 1) << uint(cfg.SubBucketHalfCountMagnitude)
	offsetInBucket := subBucketIdx - cfg.SubBucketHalfCount
	return bucketBaseIdx + offsetInBucket
}

// countsIndexFor maps a raw value straight to its counts-array cell. The
// bucket/sub-bucket math always produces a logical index; normalize folds
// in the histogram's normalizing index offset to get the physical slot
// backing it, for ring-shifted histograms.
func (h *Histogram) countsIndexFor(v int64) int32 {
	bucketIdx := bucketIndex(&h.cfg, v)
	subIdx := subBucketIndex(&h.cfg, v, bucketIdx)
	idx := countsIndex(&h.cfg, bucketIdx, subIdx)
	return h.normalize(idx)
}

// normalize maps a logical counts index (the one the bucket/sub-bucket
// math above produces, and the one valueAtIndex decodes from) to its
// physical slot in the counts array. Every reader that walks the counts
// array — the iterators, ResetInternalCounters, the percentile/mean/
// stddev scans — must drive its loop in logical index space and pass each
// step through normalize before touching h.counts; decoding straight off
// a raw physical array position, or indexing h.counts with an
// un-normalized logical index, silently scrambles values for a non-zero
// offset (spec §9's "must not forget this in either direction").
func (h *Histogram) normalize(idx int32) int32 {
	if h.normalizingIndexOffset == 0 {
		return idx
	}
	n := int32(len(h.counts))
	idx = (idx + h.normalizingIndexOffset) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

func valueFromIndexes(cfg *BucketConfig, bucketIdx, subBucketIdx int32) int64 {
	return int64(subBucketIdx) << uint(int64(bucketIdx)+cfg.UnitMagnitude)
}

// valueAtIndex is the inverse of countsIndexFor's bucket/sub-bucket math:
// it recovers the lowest value that maps to logical counts index i. i is
// always logical (unshifted by the normalizing index offset); callers
// walking the physical counts array must normalize separately when they
// touch h.counts, and pass the logical loop index here.
func (h *Histogram) valueAtIndex(i int32) int64 {
	cfg := &h.cfg
	bucketIdx := (i >> uint(cfg.SubBucketHalfCountMagnitude)) - 1
	subBucketIdx := (i & (cfg.SubBucketHalfCount - 1)) + cfg.SubBucketHalfCount
	if bucketIdx < 0 {
		subBucketIdx -= cfg.SubBucketHalfCount
		bucketIdx = 0
	}
	return valueFromIndexes(cfg, bucketIdx, subBucketIdx)
}

func (h *Histogram) sizeOfEquivalentValueRange(v int64) int64 {
	cfg := &h.cfg
	bucketIdx := bucketIndex(cfg, v)
	subIdx := subBucketIndex(cfg, v, bucketIdx)
	adjustedBucket := bucketIdx
	if subIdx >= cfg.SubBucketCount {
		adjustedBucket++
	}
	return int64(1) << uint(cfg.UnitMagnitude+int64(adjustedBucket))
}

// LowestEquivalentValue returns the smallest value that shares v's
// counts-array cell.
func (h *Histogram) LowestEquivalentValue(v int64) int64 {
	cfg := &h.cfg
	bucketIdx := bucketIndex(cfg, v)
	subIdx := subBucketIndex(cfg, v, bucketIdx)
	return valueFromIndexes(cfg, bucketIdx, subIdx)
}

// NextNonEquivalentValue returns the smallest value that does NOT share
// v's counts-array cell.
func (h *Histogram) NextNonEquivalentValue(v int64) int64 {
	return h.LowestEquivalentValue(v) + h.sizeOfEquivalentValueRange(v)
}

// HighestEquivalentValue returns the largest value that shares v's
// counts-array cell.
func (h *Histogram) HighestEquivalentValue(v int64) int64 {
	return h.NextNonEquivalentValue(v) - 1
}

// MedianEquivalentValue returns the midpoint of v's equivalence range.
func (h *Histogram) MedianEquivalentValue(v int64) int64 {
	return h.LowestEquivalentValue(v) + (h.sizeOfEquivalentValueRange(v) >> 1)
}

// SizeOfEquivalentValueRange returns the width of v's equivalence range.
func (h *Histogram) SizeOfEquivalentValueRange(v int64) int64 {
	return h.sizeOfEquivalentValueRange(v)
}

// ValuesAreEquivalent reports whether a and b round to the same
// counts-array cell.
func (h *Histogram) ValuesAreEquivalent(a, b int64) bool {
	return h.LowestEquivalentValue(a) == h.LowestEquivalentValue(b)
}
