package hdrhistogram

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Add merges every recorded cell of src into dst and returns the number of
// samples dropped because their value fell outside dst's trackable range.
// Merging reads src through a recorded iterator and is not atomic across
// src as a whole — callers wanting a consistent snapshot must quiesce src
// first.
func Add(dst, src *Histogram) int64 {
	return addInto(dst, src, 0)
}

// AddWhileCorrectingForCoordinatedOmission merges src into dst the same
// way Add does, but records each sample with RecordCorrectedValues so
// coordinated-omission backfill runs against dst's own geometry.
func AddWhileCorrectingForCoordinatedOmission(dst, src *Histogram, expectedInterval int64) int64 {
	return addInto(dst, src, expectedInterval)
}

func addInto(dst, src *Histogram, expectedInterval int64) int64 {
	var dropped int64
	// Built directly against the concrete recordedIterator, not the
	// exported Iterator returned by NewRecordedIterator: Value() applies
	// src's output conversion ratio, but dst must be recorded with src's
	// raw, unscaled values, the same domain RecordValues expects.
	it := &recordedIterator{cursor: newCursor(src)}
	for it.Next() {
		v := it.value
		c := it.count
		var ok bool
		if expectedInterval > 0 {
			ok = dst.RecordCorrectedValues(v, c, expectedInterval)
		} else {
			ok = dst.RecordValues(v, c)
		}
		if !ok {
			dropped += c
		}
	}
	if dropped > 0 && dst.logger != nil {
		dst.logger.WithField("dropped", dropped).Debug("hdrhistogram: merge dropped out-of-range samples")
	}
	return dropped
}

// MergeAll merges every histogram in srcs into dst concurrently, one
// goroutine per source. This is safe because RecordValues/
// RecordCorrectedValues tolerate any number of concurrent callers (see
// the package doc); MergeAll only adds a wait for every goroutine to
// finish before returning the total dropped-sample count. Each goroutine
// checks ctx before it starts and skips its source if ctx is already done;
// merges already in flight run to completion, since a merge's samples
// would otherwise be partially applied to dst.
func MergeAll(ctx context.Context, dst *Histogram, srcs ...*Histogram) (int64, error) {
	var dropped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range srcs {
		src := src
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			dropped.Add(addInto(dst, src, 0))
			return nil
		})
	}
	err := g.Wait()
	return dropped.Load(), err
}
