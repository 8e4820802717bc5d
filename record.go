package hdrhistogram

// RecordValue records a single occurrence of v. It returns false — leaving
// the histogram's state completely untouched — iff v is outside
// [0, HighestTrackableValue]. The value is rounded down to its lowest
// equivalent value, so precision is bounded by SignificantFigures rather
// than exact.
func (h *Histogram) RecordValue(v int64) bool {
	return h.RecordValues(v, 1)
}

// RecordValues records count occurrences of v in a single atomic step on
// the target cell. See RecordValue for the range contract.
func (h *Histogram) RecordValues(v, count int64) bool {
	if v < 0 || v > h.cfg.HighestTrackableValue {
		return false
	}
	idx := h.countsIndexFor(v)
	if idx < 0 || idx >= int32(len(h.counts)) {
		return false
	}
	h.counts[idx].Add(count)
	h.totalCount.Add(count)
	h.updateMin(v)
	h.updateMax(v)
	return true
}

// RecordCorrectedValue records v and, when expectedInterval > 0 and v is
// larger than it, backfills synthetic samples at
// v-expectedInterval, v-2*expectedInterval, ... for as long as the
// backfilled value is still >= expectedInterval (so expectedInterval
// itself is recorded when v is a multiple of it). This corrects for coordinated omission: the
// latency samples a synchronously-blocked client would have produced had
// it not stalled.
func (h *Histogram) RecordCorrectedValue(v, expectedInterval int64) bool {
	return h.RecordCorrectedValues(v, 1, expectedInterval)
}

// RecordCorrectedValues is RecordCorrectedValue with an explicit sample
// count for both the recorded value and every backfilled sample.
func (h *Histogram) RecordCorrectedValues(v, count, expectedInterval int64) bool {
	if !h.RecordValues(v, count) {
		return false
	}
	if expectedInterval <= 0 || v <= expectedInterval {
		return true
	}
	ok := true
	for missing := v - expectedInterval; missing >= expectedInterval; missing -= expectedInterval {
		if !h.RecordValues(missing, count) {
			ok = false
		}
	}
	return ok
}

func (h *Histogram) updateMin(v int64) {
	if v == 0 {
		return
	}
	for {
		cur := h.minValue.Load()
		if v >= cur {
			return
		}
		if h.minValue.CompareAndSwap(cur, v) {
			return
		}
	}
}

func (h *Histogram) updateMax(v int64) {
	for {
		cur := h.maxValue.Load()
		if v <= cur {
			return
		}
		if h.maxValue.CompareAndSwap(cur, v) {
			return
		}
	}
}
