package hdrhistogram

import "errors"

// ErrInvalidRange is returned by CalculateBucketConfig / NewHistogram when
// the requested (lowest, highest, significantFigures) triple is not a
// valid geometry: lowest < 1, significantFigures outside [1,5], or highest
// < 2*lowest.
var ErrInvalidRange = errors.New("hdrhistogram: invalid trackable value range")
