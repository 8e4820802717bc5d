package hdrhistogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestS1MixedValues: init(1, 3600e6, 3); record 1, 100, 10000, 1e9.
func TestS1MixedValues(t *testing.T) {
	t.Parallel()
	h, err := NewHistogram(1, 3600000000, 3)
	require.NoError(t, err)
	defer h.Close()

	require.True(t, h.RecordValue(1))
	require.True(t, h.RecordValue(100))
	require.True(t, h.RecordValue(10000))
	require.True(t, h.RecordValue(1000000000))

	assert.Equal(t, int64(1), h.Min())
	assert.Equal(t, int64(1000000000), h.Max())
	assert.EqualValues(t, 4, h.TotalCount())

	p50 := h.ValueAtPercentile(50)
	assert.True(t, h.ValuesAreEquivalent(p50, 100))

	p99999 := h.ValueAtPercentile(99.999)
	assert.True(t, h.ValuesAreEquivalent(p99999, 1000000000))
}

// TestS2NegativeValueRejected: init(1, 100000, 3); record -1.
func TestS2NegativeValueRejected(t *testing.T) {
	t.Parallel()
	h, err := NewHistogram(1, 100000, 3)
	require.NoError(t, err)
	defer h.Close()

	assert.False(t, h.RecordValue(-1))
	assert.EqualValues(t, 0, h.TotalCount())
}

// TestS3AboveHighestRejected: init(1, 100000, 3); record 200000.
func TestS3AboveHighestRejected(t *testing.T) {
	t.Parallel()
	h, err := NewHistogram(1, 100000, 3)
	require.NoError(t, err)
	defer h.Close()

	assert.False(t, h.RecordValue(200000))
	assert.EqualValues(t, 0, h.TotalCount())
}

// TestS4CoordinatedOmissionBackfill: init(1, 1000, 3);
// record_corrected_value(100, expected_interval=10).
func TestS4CoordinatedOmissionBackfill(t *testing.T) {
	t.Parallel()
	h, err := NewHistogram(1, 1000, 3)
	require.NoError(t, err)
	defer h.Close()

	require.True(t, h.RecordCorrectedValue(100, 10))
	assert.EqualValues(t, 10, h.TotalCount())

	for v := int64(10); v <= 100; v += 10 {
		assert.EqualValues(t, 1, h.CountAtValue(v), "expected count 1 at value %d", v)
	}
}

// TestS5PercentileBoundary: init(1, 3600e6, 3); record_value(1000)x10000;
// record_value(100000)x1.
func TestS5PercentileBoundary(t *testing.T) {
	t.Parallel()
	h, err := NewHistogram(1, 3600000000, 3)
	require.NoError(t, err)
	defer h.Close()

	require.True(t, h.RecordValues(1000, 10000))
	require.True(t, h.RecordValue(100000))

	p9999 := h.ValueAtPercentile(99.99)
	assert.True(t, h.ValuesAreEquivalent(p9999, 1000))

	p100 := h.ValueAtPercentile(100)
	assert.True(t, h.ValuesAreEquivalent(p100, 100000))
}

// TestS6ResetClearsEverything: init(1, 1000, 3) then reset.
func TestS6ResetClearsEverything(t *testing.T) {
	t.Parallel()
	h, err := NewHistogram(1, 1000, 3)
	require.NoError(t, err)
	defer h.Close()

	require.True(t, h.RecordValue(500))
	require.True(t, h.RecordValue(999))
	h.Reset()

	assert.EqualValues(t, 0, h.Min())
	assert.EqualValues(t, 0, h.Max())
	assert.EqualValues(t, 0, h.TotalCount())

	iterators := []Iterator{
		NewRawIterator(h),
		NewRecordedIterator(h),
		NewLinearIterator(h, 100),
		NewLogIterator(h, 1, 2),
		NewPercentileIterator(h, 5),
	}
	for _, it := range iterators {
		assert.False(t, it.Next())
	}
}

func TestNewHistogramOptions(t *testing.T) {
	t.Parallel()

	h, err := NewHistogram(1, 1000, 3, WithConversionRatio(1000), WithNormalizingIndexOffset(0))
	require.NoError(t, err)
	defer h.Close()

	require.True(t, h.RecordValue(500))
	assert.EqualValues(t, 1, h.TotalCount())
}

func TestWithConversionRatioScalesOutputOnly(t *testing.T) {
	t.Parallel()

	raw := newTestHistogram(t)
	require.True(t, raw.RecordValues(100, 5))
	require.True(t, raw.RecordValues(500, 3))

	scaled, err := NewHistogram(1, 3600000000, 3, WithConversionRatio(1000))
	require.NoError(t, err)
	defer scaled.Close()
	require.True(t, scaled.RecordValues(100, 5))
	require.True(t, scaled.RecordValues(500, 3))

	// Output getters report 1000x the unscaled histogram's values...
	assert.Equal(t, raw.Min()*1000, scaled.Min())
	assert.Equal(t, raw.Max()*1000, scaled.Max())
	assert.Equal(t, raw.ValueAtPercentile(50)*1000, scaled.ValueAtPercentile(50))
	assert.InDelta(t, raw.Mean()*1000, scaled.Mean(), 1e-6)
	assert.InDelta(t, raw.StdDev()*1000, scaled.StdDev(), 1e-6)

	// ...but recording and counting stay keyed to the raw, unscaled values:
	// the ratio only applies on the way out.
	assert.Equal(t, raw.TotalCount(), scaled.TotalCount())
	assert.Equal(t, raw.CountAtValue(100), scaled.CountAtValue(100))
}

func TestWithConversionRatioScalesIteratorValues(t *testing.T) {
	t.Parallel()

	h, err := NewHistogram(1, 3600000000, 3, WithConversionRatio(1000))
	require.NoError(t, err)
	defer h.Close()
	require.True(t, h.RecordValue(100))

	it := NewRecordedIterator(h)
	require.True(t, it.Next())
	assert.Equal(t, h.ValueAtIndex(h.countsIndexFor(100))*1000, it.Value())
}

func TestResetInternalCountersRederivesAggregates(t *testing.T) {
	t.Parallel()
	h := newTestHistogram(t)

	require.True(t, h.RecordValue(100))
	require.True(t, h.RecordValue(200))

	// Simulate an external writer poking the counts array directly, the
	// way a deserializer reconstructing persisted state would.
	idx := h.countsIndexFor(5000)
	h.counts[idx].Add(3)

	h.ResetInternalCounters()

	assert.EqualValues(t, 5, h.TotalCount())
	assert.Equal(t, int64(100), h.Min())
	assert.True(t, h.ValuesAreEquivalent(h.Max(), 5000))
}

func TestMemorySizeAndCountsLen(t *testing.T) {
	t.Parallel()
	h := newTestHistogram(t)

	assert.Equal(t, h.Config().CountsLen, h.CountsLen())
	assert.Greater(t, h.MemorySize(), int64(0))
}
