package cwa

import "time"

// TimeReconstructor carries the (anchorTime, anchorIndex) pair across data
// blocks and turns each block's timestampOffset into precise first/last
// sample instants. The approach is the same one a phase-locked flux
// decoder uses to recover a precise bit-cell period from noisy transition
// timing: keep a running reference updated once per block instead of
// recomputing the period from scratch each time, so small per-block
// rounding errors never accumulate across the file.
type TimeReconstructor struct {
	anchorSet   bool
	anchorTime  time.Time
	anchorIndex int64
}

// NewTimeReconstructor returns a reconstructor with no anchor yet recorded;
// the first block it sees always falls back to the rate-based estimate.
func NewTimeReconstructor() *TimeReconstructor {
	return &TimeReconstructor{}
}

// Reconstruct computes (firstSampleTime, lastSampleTime) for one data block
// and advances the anchor. maxSamples is the largest sampleCount the
// block's byte layout can hold (480/bytesPerSample); it bounds how far the
// anchor is trusted before falling back to the rate-based estimate.
func (r *TimeReconstructor) Reconstruct(blockTime time.Time, timestampOffset int32, sampleCount int, freq float64, maxSamples int) (firstSampleTime, lastSampleTime time.Time) {
	var spanToSampleNs int64
	if r.anchorSet {
		spanToSampleNs = blockTime.Sub(r.anchorTime).Nanoseconds()
	}

	offset64 := int64(timestampOffset)
	useAnchor := r.anchorSet &&
		offset64 > r.anchorIndex &&
		spanToSampleNs > 0 &&
		float64(spanToSampleNs) <= 2*float64(maxSamples)*1e9/freq

	if useAnchor {
		gap := float64(spanToSampleNs) / float64(offset64-r.anchorIndex) // ns per sample
		firstSampleTime = r.anchorTime.Add(time.Duration(int64(float64(-r.anchorIndex) * gap)))
		lastSampleTime = r.anchorTime.Add(time.Duration(int64((float64(-r.anchorIndex) + float64(sampleCount)) * gap)))
	} else {
		offsetStart := -float64(timestampOffset) / freq // seconds, signed
		firstSampleTime = blockTime.Add(durationFromSeconds(offsetStart))
		lastSampleTime = firstSampleTime.Add(durationFromSeconds(float64(sampleCount) / freq))
	}

	r.anchorTime = blockTime
	r.anchorIndex = offset64 - int64(sampleCount)
	r.anchorSet = true

	return firstSampleTime, lastSampleTime
}
