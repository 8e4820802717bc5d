package hdrhistogram

import (
	"fmt"
	"math"
)

// BucketConfig is the derived, immutable sub-bucket geometry of a
// Histogram. CalculateBucketConfig is a pure function of (lowest, highest,
// significantFigures); nothing here depends on any recorded sample.
type BucketConfig struct {
	LowestTrackableValue        int64
	HighestTrackableValue       int64
	SignificantFigures          int64
	UnitMagnitude               int64
	SubBucketCount              int32
	SubBucketHalfCount          int32
	SubBucketHalfCountMagnitude int32
	SubBucketMask               int64
	BucketCount                 int32
	CountsLen                   int32
}

// CalculateBucketConfig validates (lowest, highest, sigFigs) and derives
// the bucket geometry described in index.go: the partition of the trackable
// range into bucketCount+1 power-of-two buckets, each holding subBucketCount
// (subBucketHalfCount for every bucket but the first) uniform-width cells.
func CalculateBucketConfig(lowest, highest int64, sigFigs int) (BucketConfig, error) {
	if lowest < 1 {
		return BucketConfig{}, fmt.Errorf("%w: lowestTrackableValue must be >= 1, got %d", ErrInvalidRange, lowest)
	}
	if sigFigs < 1 || sigFigs > 5 {
		return BucketConfig{}, fmt.Errorf("%w: significantFigures must be in [1,5], got %d", ErrInvalidRange, sigFigs)
	}
	if highest < 2*lowest {
		return BucketConfig{}, fmt.Errorf("%w: highestTrackableValue (%d) must be >= 2*lowestTrackableValue (%d)", ErrInvalidRange, highest, 2*lowest)
	}

	largestValueWithSingleUnitResolution := 2 * int64(math.Pow(10, float64(sigFigs)))
	subBucketCountMagnitude := int32(math.Ceil(math.Log(float64(largestValueWithSingleUnitResolution)) / math.Log(2)))

	subBucketHalfCountMagnitude := subBucketCountMagnitude - 1
	if subBucketHalfCountMagnitude < 0 {
		subBucketHalfCountMagnitude = 0
	}

	unitMagnitude := int64(math.Floor(math.Log(float64(lowest)) / math.Log(2)))
	if unitMagnitude < 0 {
		unitMagnitude = 0
	}

	subBucketCount := int32(1) << uint(subBucketHalfCountMagnitude+1)
	subBucketHalfCount := subBucketCount / 2
	subBucketMask := int64(subBucketCount-1) << uint(unitMagnitude)

	// Smallest power-of-two bucket count whose top bucket still covers
	// highest: start from the value range a single bucket-0 can resolve
	// and keep doubling.
	trackableValue := int64(subBucketCount-1) << uint(unitMagnitude)
	bucketsNeeded := int32(1)
	for trackableValue < highest {
		trackableValue <<= 1
		bucketsNeeded++
	}

	countsLen := (bucketsNeeded + 1) * subBucketHalfCount

	return BucketConfig{
		LowestTrackableValue:        lowest,
		HighestTrackableValue:       highest,
		SignificantFigures:          int64(sigFigs),
		UnitMagnitude:               unitMagnitude,
		SubBucketCount:              subBucketCount,
		SubBucketHalfCount:          subBucketHalfCount,
		SubBucketHalfCountMagnitude: subBucketHalfCountMagnitude,
		SubBucketMask:               subBucketMask,
		BucketCount:                 bucketsNeeded,
		CountsLen:                   countsLen,
	}, nil
}
