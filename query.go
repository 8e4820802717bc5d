package hdrhistogram

import "math"

// TotalCount returns the number of samples recorded so far. Queries below
// snapshot this value once at entry; concurrent recording may make the sum
// of scanned counts differ slightly from it, by design (see the package
// doc and spec §5 "weakly-consistent queries").
func (h *Histogram) TotalCount() int64 {
	return h.totalCount.Load()
}

// scale applies the Histogram's conversion ratio to a value on its way
// out to a caller. Recording and internal bucket math always operate on
// raw, unscaled values; conversionRatio (see WithConversionRatio) is a
// multiplicative factor applied to values on output only, per spec §3.
func (h *Histogram) scale(v int64) int64 {
	if h.conversionRatio == 1 {
		return v
	}
	return int64(math.Round(float64(v) * h.conversionRatio))
}

// Min returns the smallest recorded value, or 0 if nothing has been
// recorded. This is the one documented convention for the empty-histogram
// sentinel (see DESIGN.md); callers should never observe the internal
// math.MaxInt64 placeholder.
func (h *Histogram) Min() int64 {
	if h.totalCount.Load() == 0 {
		return 0
	}
	return h.scale(h.minValue.Load())
}

// Max returns the largest recorded value, or 0 if nothing has been
// recorded.
func (h *Histogram) Max() int64 {
	return h.scale(h.maxValue.Load())
}

// CountAtValue returns the number of samples recorded in v's equivalence
// range.
func (h *Histogram) CountAtValue(v int64) int64 {
	idx := h.countsIndexFor(v)
	if idx < 0 || idx >= int32(len(h.counts)) {
		return 0
	}
	return h.counts[idx].Load()
}

// CountAtIndex returns the counts-array cell value at logical index i,
// the same index space ValueAtIndex decodes from.
func (h *Histogram) CountAtIndex(i int32) int64 {
	return h.counts[h.normalize(i)].Load()
}

// ValueAtIndex returns the lowest value mapping to counts-array cell i.
func (h *Histogram) ValueAtIndex(i int32) int64 {
	return h.valueAtIndex(i)
}

// ValueAtPercentile finds the smallest recorded value v such that the
// fraction of samples <= v is at least p/100, and returns the highest value
// equivalent to v (the top of v's counts-array cell). p is clamped to
// [0,100]. It returns 0 on an empty histogram.
func (h *Histogram) ValueAtPercentile(p float64) int64 {
	total := h.totalCount.Load()
	if total == 0 {
		return 0
	}
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	countAtPercentile := int64(math.Ceil((p / 100) * float64(total)))
	if countAtPercentile < 1 {
		countAtPercentile = 1
	}

	var running int64
	for i := int32(0); i < int32(len(h.counts)); i++ {
		running += h.counts[h.normalize(i)].Load()
		if running >= countAtPercentile {
			return h.scale(h.HighestEquivalentValue(h.valueAtIndex(i)))
		}
	}
	return 0
}

// rawMean is Mean before the output conversion ratio is applied; StdDev
// needs the unscaled figure to compute deviations against the unscaled
// per-cell values it also scans.
func (h *Histogram) rawMean() float64 {
	total := h.totalCount.Load()
	if total == 0 {
		return 0
	}
	var sum float64
	for i := int32(0); i < int32(len(h.counts)); i++ {
		c := h.counts[h.normalize(i)].Load()
		if c == 0 {
			continue
		}
		sum += float64(c) * float64(h.MedianEquivalentValue(h.valueAtIndex(i)))
	}
	return sum / float64(total)
}

// Mean returns the arithmetic mean of recorded values, using each cell's
// median equivalent value as a stand-in for every sample it holds. It
// returns 0 on an empty histogram.
func (h *Histogram) Mean() float64 {
	if h.totalCount.Load() == 0 {
		return 0
	}
	return h.rawMean() * h.conversionRatio
}

// StdDev returns the standard deviation of recorded values, using the same
// median-equivalent-value approximation as Mean. It returns 0 on an empty
// histogram.
func (h *Histogram) StdDev() float64 {
	total := h.totalCount.Load()
	if total == 0 {
		return 0
	}
	mean := h.rawMean()
	var sumSq float64
	for i := int32(0); i < int32(len(h.counts)); i++ {
		c := h.counts[h.normalize(i)].Load()
		if c == 0 {
			continue
		}
		dev := float64(h.MedianEquivalentValue(h.valueAtIndex(i))) - mean
		sumSq += dev * dev * float64(c)
	}
	return math.Sqrt(sumSq/float64(total)) * h.conversionRatio
}
