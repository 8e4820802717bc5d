package hdrhistogram

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/sirupsen/logrus"
)

// Histogram is a fixed-memory, lock-free recorder of integer samples
// across a wide dynamic range. Geometry (LowestTrackableValue,
// HighestTrackableValue, SignificantFigures and everything derived from
// them) is set once at construction and never changes; only the counts
// array and the total/min/max scalars mutate afterward, and only through
// atomic read-modify-write operations.
//
// Multiple goroutines may call the Record* methods on the same Histogram
// concurrently. Reset, Close and merging a Histogram into another are NOT
// safe against concurrent recorders — callers must externally exclude
// those from RecordValue/RecordValues/RecordCorrectedValue(s).
type Histogram struct {
	cfg BucketConfig

	normalizingIndexOffset int32
	conversionRatio        float64

	alloc  Allocator
	logger logrus.FieldLogger

	_ [cacheLineSize]byte

	totalCount atomic.Int64

	_ [cacheLineSize]byte

	minValue atomic.Int64
	maxValue atomic.Int64

	_ [cacheLineSize]byte

	counts []atomic.Int64
}

// Option configures a Histogram at construction time.
type Option func(*options)

type options struct {
	logger                 logrus.FieldLogger
	alloc                  Allocator
	normalizingIndexOffset int32
	conversionRatio        float64
}

// WithLogger attaches a structured logger used only for diagnostics off
// the recording hot path: a Warn on construction-time validation failure
// and a Debug noting samples dropped by a merge. It is never consulted by
// RecordValue/RecordValues.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithAllocator substitutes the counts-array allocator. See Allocator.
func WithAllocator(a Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// WithNormalizingIndexOffset shifts every value-to-index mapping by the
// given offset, modulo the counts-array length. It supports histograms fed
// by an external ring-buffer recorder that rotates which cell is "first".
func WithNormalizingIndexOffset(offset int32) Option {
	return func(o *options) { o.normalizingIndexOffset = offset }
}

// WithConversionRatio sets a multiplicative factor applied to values only
// on output (e.g. converting stored nanoseconds to reported
// microseconds). It defaults to 1.
func WithConversionRatio(ratio float64) Option {
	return func(o *options) { o.conversionRatio = ratio }
}

func resolveOptions(opts []Option) options {
	o := options{conversionRatio: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		o.alloc = defaultAllocator()
	}
	if o.conversionRatio == 0 {
		o.conversionRatio = 1
	}
	return o
}

// NewHistogram constructs a Histogram capable of tracking values in
// [0, highestTrackableValue] with the requested number of significant
// decimal figures. It returns ErrInvalidRange (wrapped with the offending
// values) if the geometry is invalid.
func NewHistogram(lowestTrackableValue, highestTrackableValue int64, significantFigures int, opts ...Option) (*Histogram, error) {
	cfg, err := CalculateBucketConfig(lowestTrackableValue, highestTrackableValue, significantFigures)
	o := resolveOptions(opts)
	if err != nil {
		if o.logger != nil {
			o.logger.WithError(err).Warn("hdrhistogram: rejecting invalid geometry")
		}
		return nil, err
	}
	return newPreallocated(cfg, o), nil
}

// NewPreallocated constructs a Histogram from an already-computed
// BucketConfig, as produced by CalculateBucketConfig. It is meant for
// callers (e.g. external serializers) that have validated and derived the
// geometry themselves and want to skip re-deriving it.
func NewPreallocated(cfg BucketConfig, opts ...Option) *Histogram {
	return newPreallocated(cfg, resolveOptions(opts))
}

func newPreallocated(cfg BucketConfig, o options) *Histogram {
	h := &Histogram{
		cfg:                    cfg,
		normalizingIndexOffset: o.normalizingIndexOffset,
		conversionRatio:        o.conversionRatio,
		alloc:                  o.alloc,
		logger:                 o.logger,
	}
	h.counts = h.alloc.AllocCounts(int(cfg.CountsLen))
	h.minValue.Store(math.MaxInt64)
	return h
}

// Reset zeroes every counter and restores total/min/max to their empty
// sentinels. Geometry is preserved. Reset is not safe to call while
// another goroutine may be recording into the same Histogram.
func (h *Histogram) Reset() {
	for i := range h.counts {
		h.counts[i].Store(0)
	}
	h.totalCount.Store(0)
	h.minValue.Store(math.MaxInt64)
	h.maxValue.Store(0)
}

// ResetInternalCounters re-derives total_count, min_value and max_value by
// scanning the counts array. It exists for external serializers that write
// directly into the counts array (e.g. deserializing a persisted
// histogram) and then need the aggregate scalars brought back in sync.
func (h *Histogram) ResetInternalCounters() {
	var total, min, max int64
	min = math.MaxInt64
	for i := int32(0); i < int32(len(h.counts)); i++ {
		c := h.counts[h.normalize(i)].Load()
		if c == 0 {
			continue
		}
		total += c
		v := h.valueAtIndex(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	h.totalCount.Store(total)
	h.minValue.Store(min)
	h.maxValue.Store(max)
}

// Close releases the counts array via the Allocator supplied at
// construction (or the default aligned allocator). The Histogram must not
// be used afterward.
func (h *Histogram) Close() {
	h.alloc.Free(h.counts)
	h.counts = nil
}

// MemorySize estimates the number of bytes occupied by the Histogram,
// including its counts array.
func (h *Histogram) MemorySize() int64 {
	var zero atomic.Int64
	return int64(unsafe.Sizeof(*h)) + int64(len(h.counts))*int64(unsafe.Sizeof(zero))
}

// Config returns the Histogram's immutable bucket geometry.
func (h *Histogram) Config() BucketConfig {
	return h.cfg
}

// CountsLen returns the number of cells in the counts array.
func (h *Histogram) CountsLen() int32 {
	return int32(len(h.counts))
}
