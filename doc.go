// Package hdrhistogram implements a High Dynamic Range Histogram: a
// fixed-memory structure that records integer samples across a wide
// dynamic range while guaranteeing a caller-chosen relative precision for
// every value recorded. It is built for latency measurement, where both
// the overall distribution shape and the extreme quantiles (p99, p99.9,
// p99.99) need to survive constant-time, lock-free recording.
//
// A Histogram is constructed once with a trackable value range and a
// number of significant decimal figures; geometry is immutable afterward.
// Recording (RecordValue, RecordValues, RecordCorrectedValue(s)) is safe
// from any number of concurrent goroutines. Queries (Min, Max, Mean,
// StdDev, ValueAtPercentile, CountAtValue) and the iterator disciplines in
// iterator.go read a weakly-consistent snapshot and never block a
// recorder.
//
// Textual/CSV rendering, binary log serialization, double-valued wrapper
// types, and a CLI are intentionally left to other packages; this package
// is the in-memory core only.
package hdrhistogram
