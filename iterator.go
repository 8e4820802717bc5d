package hdrhistogram

import "math"

// Iterator is the unified cursor contract shared by all five iteration
// disciplines (raw, recorded, linear, logarithmic, percentile). Each
// discipline is a distinct type embedding cursor and implementing its own
// Next — a tagged-variant replacement for the function-pointer-driven
// cursor in the original C implementation (see DESIGN.md).
type Iterator interface {
	// Next advances the cursor to the next reporting step. It returns
	// false once the iterator is exhausted, including immediately on an
	// empty histogram.
	Next() bool
	// Value is the raw value backing the current step.
	Value() int64
	// Count is the counts-array cell value at the cursor's current
	// position. For linear/log/percentile this is the last cell reached,
	// not the step's aggregate; see CountAddedInThisStep for that.
	Count() int64
	// CumulativeCount is the running total of samples seen so far,
	// inclusive of the current step.
	CumulativeCount() int64
	// CountAddedInThisStep is the number of samples folded into the
	// current step (equal to Count for raw/recorded).
	CountAddedInThisStep() int64
	// ValueIteratedFrom and ValueIteratedTo bound the value range
	// represented by the current step.
	ValueIteratedFrom() int64
	ValueIteratedTo() int64
	// Percentile is only meaningful for the percentile discipline; it is
	// 0 for every other iterator.
	Percentile() float64
}

// cursor holds the state shared by every discipline: a borrow of the
// histogram, the current counts-array position, and the running
// cumulative count against a total_count snapshot taken when the iterator
// is created.
type cursor struct {
	h               *Histogram
	countsIndex     int32
	totalCount      int64
	count           int64
	cumulativeCount int64
	value           int64
	valueFrom       int64
	valueTo         int64
}

func newCursor(h *Histogram) cursor {
	return cursor{h: h, countsIndex: -1, totalCount: h.totalCount.Load()}
}

// Value, ValueIteratedFrom and ValueIteratedTo apply the histogram's
// output conversion ratio (see Histogram.scale); every other cursor field
// — counts, the cumulative count, the percentile — is not a value and is
// reported raw.
func (c *cursor) Value() int64            { return c.h.scale(c.value) }
func (c *cursor) Count() int64             { return c.count }
func (c *cursor) CumulativeCount() int64   { return c.cumulativeCount }
func (c *cursor) ValueIteratedFrom() int64 { return c.h.scale(c.valueFrom) }
func (c *cursor) ValueIteratedTo() int64   { return c.h.scale(c.valueTo) }
func (c *cursor) Percentile() float64      { return 0 }

// advanceIndex moves to the next logical counts index, loading its count
// through the physical slot normalize maps it to and folding it into
// cumulativeCount. It returns false once the array is exhausted.
//
// countsIndex is always a logical index: decoding (valueAtIndex) and
// array access (counts[normalize(...)]) must agree on that, or a non-zero
// normalizing index offset both scrambles which value a cell reports and
// breaks the ascending-value order every discipline here depends on.
func (c *cursor) advanceIndex() bool {
	c.countsIndex++
	if c.countsIndex >= int32(len(c.h.counts)) {
		return false
	}
	c.value = c.h.valueAtIndex(c.countsIndex)
	c.count = c.h.counts[c.h.normalize(c.countsIndex)].Load()
	c.cumulativeCount += c.count
	return true
}

// --- raw ---

type rawIterator struct{ cursor }

// NewRawIterator steps through every counts-array cell in order, whether
// or not it holds any samples, and stops after the cell that brings the
// cumulative count up to the total count.
func NewRawIterator(h *Histogram) Iterator {
	return &rawIterator{newCursor(h)}
}

func (it *rawIterator) CountAddedInThisStep() int64 { return it.count }

func (it *rawIterator) Next() bool {
	if it.cumulativeCount >= it.totalCount {
		return false
	}
	if !it.advanceIndex() {
		return false
	}
	it.valueFrom = it.valueTo
	it.valueTo = it.h.HighestEquivalentValue(it.value)
	return true
}

// --- recorded ---

type recordedIterator struct {
	cursor
	countAdded int64
}

// NewRecordedIterator steps only through cells holding at least one
// sample.
func NewRecordedIterator(h *Histogram) Iterator {
	return &recordedIterator{cursor: newCursor(h)}
}

func (it *recordedIterator) CountAddedInThisStep() int64 { return it.countAdded }

func (it *recordedIterator) Next() bool {
	for {
		if it.cumulativeCount >= it.totalCount {
			return false
		}
		if !it.advanceIndex() {
			return false
		}
		if it.count == 0 {
			continue
		}
		it.countAdded = it.count
		it.valueFrom = it.valueTo
		it.valueTo = it.h.HighestEquivalentValue(it.value)
		return true
	}
}

// --- linear ---

type linearIterator struct {
	cursor
	valueUnitsPerBucket     int64
	nextValueReportingLevel int64
	countAdded              int64
	done                    bool
}

// NewLinearIterator reports one step per valueUnitsPerBucket-wide value
// range, aggregating every cell whose value falls in that range.
func NewLinearIterator(h *Histogram, valueUnitsPerBucket int64) Iterator {
	return &linearIterator{
		cursor:                  newCursor(h),
		valueUnitsPerBucket:     valueUnitsPerBucket,
		nextValueReportingLevel: valueUnitsPerBucket,
	}
}

func (it *linearIterator) CountAddedInThisStep() int64 { return it.countAdded }

func (it *linearIterator) Next() bool {
	if it.totalCount == 0 || it.done {
		return false
	}
	it.countAdded = 0
	reachedEnd := false
	for {
		nextIdx := it.countsIndex + 1
		if nextIdx >= int32(len(it.h.counts)) {
			reachedEnd = true
			break
		}
		if it.countsIndex >= 0 && it.h.valueAtIndex(nextIdx) >= it.nextValueReportingLevel {
			break
		}
		it.advanceIndex()
		it.countAdded += it.count
	}
	it.valueFrom = it.valueTo
	it.valueTo = it.nextValueReportingLevel - 1
	it.nextValueReportingLevel += it.valueUnitsPerBucket

	if reachedEnd || it.cumulativeCount >= it.totalCount {
		it.done = true
	}
	return true
}

// --- logarithmic ---

type logIterator struct {
	cursor
	firstBucketWidth        float64
	logBase                 float64
	nextValueReportingLevel float64
	countAdded              int64
	done                    bool
}

// NewLogIterator reports one step per exponentially-growing value range:
// the first step covers [0, firstBucketWidth), and each subsequent step's
// upper bound is the previous one multiplied by logBase.
func NewLogIterator(h *Histogram, firstBucketWidth float64, logBase float64) Iterator {
	return &logIterator{
		cursor:                  newCursor(h),
		firstBucketWidth:        firstBucketWidth,
		logBase:                 logBase,
		nextValueReportingLevel: firstBucketWidth,
	}
}

func (it *logIterator) CountAddedInThisStep() int64 { return it.countAdded }

func (it *logIterator) Next() bool {
	if it.totalCount == 0 || it.done {
		return false
	}
	it.countAdded = 0
	reachedEnd := false
	for {
		nextIdx := it.countsIndex + 1
		if nextIdx >= int32(len(it.h.counts)) {
			reachedEnd = true
			break
		}
		if it.countsIndex >= 0 && float64(it.h.valueAtIndex(nextIdx)) >= it.nextValueReportingLevel {
			break
		}
		it.advanceIndex()
		it.countAdded += it.count
	}
	it.valueFrom = it.valueTo
	it.valueTo = int64(it.nextValueReportingLevel) - 1
	it.nextValueReportingLevel *= it.logBase

	if reachedEnd || it.cumulativeCount >= it.totalCount {
		it.done = true
	}
	return true
}

// --- percentile ---

type percentileIterator struct {
	cursor
	ticksPerHalfDistance   int32
	percentileToIterateTo  float64
	percentile             float64
	seenLastValue          bool
	countAdded             int64
}

// NewPercentileIterator reports at exponentially tightening percentile
// boundaries, tickCount-ing twice as fast every time the distance to the
// 100th percentile halves. After the tick that reaches the cell holding
// the largest recorded value, it yields one final step at percentile 100
// on that same cell, adding no further count.
func NewPercentileIterator(h *Histogram, ticksPerHalfDistance int32) Iterator {
	if ticksPerHalfDistance < 1 {
		ticksPerHalfDistance = 1
	}
	return &percentileIterator{cursor: newCursor(h), ticksPerHalfDistance: ticksPerHalfDistance}
}

func (it *percentileIterator) CountAddedInThisStep() int64 { return it.countAdded }
func (it *percentileIterator) Percentile() float64         { return it.percentile }

func (it *percentileIterator) Next() bool {
	if it.totalCount == 0 {
		return false
	}
	if it.cumulativeCount >= it.totalCount {
		if it.seenLastValue {
			return false
		}
		it.seenLastValue = true
		it.percentile = 100
		it.countAdded = 0
		return true
	}
	it.countAdded = 0
	for it.advanceIndex() {
		it.countAdded += it.count
		currentPercentile := 100 * float64(it.cumulativeCount) / float64(it.totalCount)
		if it.count != 0 && currentPercentile >= it.percentileToIterateTo {
			it.percentile = it.percentileToIterateTo
			halfDistance := math.Pow(2, math.Log2(100.0/(100.0-it.percentileToIterateTo))+1)
			ticks := float64(it.ticksPerHalfDistance) * halfDistance
			it.percentileToIterateTo += 100.0 / ticks
			it.valueFrom = it.valueTo
			it.valueTo = it.h.HighestEquivalentValue(it.value)
			return true
		}
	}
	return false
}
