package cwa

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// maxSessionStartClamp bounds how far the header's logged session-start
// time may diverge from the first epoch's start before it is ignored: a
// device clock that drifted or a header written well before logging
// actually began should not shift every epoch timestamp in the file. The
// resample grid in flush() steps by 1/freq rather than a fixed 10ms so the
// grid length and spacing stay consistent at any sample rate.
const maxSessionStartClamp = 15 * time.Second

// EpochConfig configures the EpochAggregator: the epoch window length,
// resampling/filtering behavior, and the stationary-bout and epoch-start
// alignment options.
type EpochConfig struct {
	EpochPeriod           time.Duration
	UseFilter             bool
	GetStationaryBouts    bool
	StationaryStd         float64
	TimeFormat            string
	StartEpochWholeMinute bool
	StartEpochWholeSecond bool
}

// Row is one emitted epoch summary, in CSV column order.
type Row struct {
	Time              time.Time
	ENMOTrunc         float64
	Mean              [3]float64 // only meaningful (and only emitted) when GetStationaryBouts is set
	Range             [3]float64
	Std               [3]float64
	TemperatureC      float64
	Samples           int
	DataErrors        int
	ClipsBeforeCalibr int
	ClipsAfterCalibr  int
	RawSamples        int
}

// EpochAggregator accumulates calibrated samples into a rolling buffer and
// emits one Row each time the buffer's window closes. It owns no global or
// static state: everything it needs is a field here, created fresh per
// decode by the Orchestrator, so two files can be decoded concurrently
// without clobbering each other.
type EpochAggregator struct {
	cfg EpochConfig

	sessionStart *time.Time
	startOffset  time.Duration

	epochStart    time.Time
	epochStartSet bool

	timeBufferMs []float64
	xBuf, yBuf, zBuf []float64
	tempSum      float64
	tempCount    int

	errors      int
	clipsBefore int
	clipsAfter  int
}

// NewEpochAggregator returns an aggregator with empty buffers. sessionStart
// is the header's logging-planned start time (nil if no header was seen, or
// the header's timestamp was unparseable).
func NewEpochAggregator(cfg EpochConfig, sessionStart *time.Time) *EpochAggregator {
	return &EpochAggregator{cfg: cfg, sessionStart: sessionStart}
}

// CountError records a recoverable per-sample decode failure (an
// InvalidSampleEncoding hit). It is tallied into the current epoch's
// dataErrors counter regardless of whether a sample was produced.
func (a *EpochAggregator) CountError() {
	a.errors++
}

// CountClip records the clip outcome of one calibrated sample: whether the
// raw reading was already at or beyond range before calibration, and
// whether calibration alone pushed an otherwise in-range reading past it.
func (a *EpochAggregator) CountClip(preClipped, postClippedNew bool) {
	if preClipped {
		a.clipsBefore++
	}
	if postClippedNew {
		a.clipsAfter++
	}
}

// AddSample feeds one calibrated sample at absolute time t, with the
// block's current temperature (degrees C) and nominal sample frequency
// (Hz, used to size the resample grid). It returns the emitted Row when
// adding this sample causes the current epoch's window to close, or nil
// otherwise.
func (a *EpochAggregator) AddSample(t time.Time, x, y, z, temperatureC, freq float64) *Row {
	if !a.epochStartSet {
		a.epochStart = a.snapEpochStart(t)
		a.epochStartSet = true
		a.computeStartOffset()
	}

	periodSec := a.cfg.EpochPeriod.Seconds()
	currentPeriod := math.Floor(t.Sub(a.epochStart).Seconds())

	// Close the window currently open - using whatever is buffered, even
	// if a gap cut it short - before deciding whether the gap also spans
	// whole empty windows beyond it. This must happen before the bulk
	// skip below or a still-open, partially-filled epoch's data would be
	// silently discarded.
	var emitted *Row
	if currentPeriod >= periodSec {
		emitted = a.flush(freq)
		currentPeriod = math.Floor(t.Sub(a.epochStart).Seconds())
	}

	// Gap recovery: the buffer is empty at this point (flush just cleared
	// it, or there was nothing to flush), so any further whole epochs the
	// gap spans can be skipped in bulk with no data loss and no row
	// emitted for them (data was absent).
	if currentPeriod >= 2*periodSec {
		skip := math.Floor(currentPeriod/periodSec) * periodSec
		a.epochStart = a.epochStart.Add(time.Duration(skip * float64(time.Second)))
	}

	ms := t.Sub(a.epochStart).Seconds() * 1000
	a.timeBufferMs = append(a.timeBufferMs, ms)
	a.xBuf = append(a.xBuf, x)
	a.yBuf = append(a.yBuf, y)
	a.zBuf = append(a.zBuf, z)
	a.tempSum += temperatureC
	a.tempCount++

	return emitted
}

// snapEpochStart aligns the very first sample's time to the requested
// whole-minute/whole-second calendar boundary, so epoch windows line up
// with clock time rather than drifting with wherever the recording
// happened to start.
func (a *EpochAggregator) snapEpochStart(t time.Time) time.Time {
	switch {
	case a.cfg.StartEpochWholeMinute:
		return t.Truncate(time.Minute)
	case a.cfg.StartEpochWholeSecond:
		return t.Truncate(time.Second)
	default:
		return t
	}
}

// computeStartOffset clamps the header's logged session-start time against
// the first epoch's start: only used when within +/-15s of the first
// sample's time, else the epochs track block timestamps directly.
func (a *EpochAggregator) computeStartOffset() {
	if a.sessionStart == nil {
		return
	}
	offset := a.sessionStart.Sub(a.epochStart)
	if offset < -maxSessionStartClamp || offset > maxSessionStartClamp {
		offset = 0
	}
	a.startOffset = offset
}

// flush resamples the current buffer onto a uniform grid, computes the
// epoch's summary statistics, and returns the Row - or nil when stationary
// filtering is enabled and this epoch does not qualify.
func (a *EpochAggregator) flush(freq float64) *Row {
	raw := len(a.timeBufferMs)
	row := &Row{
		Time:              a.epochStart.Add(a.startOffset),
		TemperatureC:      meanOf(a.tempSum, a.tempCount),
		DataErrors:        a.errors,
		ClipsBeforeCalibr: a.clipsBefore,
		ClipsAfterCalibr:  a.clipsAfter,
		RawSamples:        raw,
	}

	if raw > 0 {
		step := 1000.0 / freq // ms
		gridLen := int(a.cfg.EpochPeriod.Seconds() * freq)
		grid := make([]float64, gridLen)
		start := a.timeBufferMs[0]
		for i := range grid {
			grid[i] = start + float64(i)*step
		}

		rx := resample(a.timeBufferMs, a.xBuf, grid)
		ry := resample(a.timeBufferMs, a.yBuf, grid)
		rz := resample(a.timeBufferMs, a.zBuf, grid)

		row.Samples = gridLen
		for axis, r := range [][]float64{rx, ry, rz} {
			m, s := meanStd(r)
			row.Mean[axis] = m
			row.Std[axis] = s
			row.Range[axis] = rangeOf(r)
			if s == 0 && math.Abs(m) > 1.5 {
				a.errors++
				row.DataErrors++
			}
		}

		row.ENMOTrunc = enmo(rx, ry, rz, freq, a.cfg.UseFilter)
	}

	a.timeBufferMs = a.timeBufferMs[:0]
	a.xBuf = a.xBuf[:0]
	a.yBuf = a.yBuf[:0]
	a.zBuf = a.zBuf[:0]
	a.tempSum, a.tempCount = 0, 0
	a.errors, a.clipsBefore, a.clipsAfter = 0, 0, 0
	a.epochStart = a.epochStart.Add(a.cfg.EpochPeriod)

	// A window with no buffered samples has no data to summarize, so no
	// row is emitted for it.
	if raw == 0 {
		return nil
	}

	if a.cfg.GetStationaryBouts {
		for _, s := range row.Std {
			if s >= a.cfg.StationaryStd {
				return nil
			}
		}
	}
	return row
}

// enmo computes the Euclidean-Norm-Minus-One activity metric, truncated to
// non-negative, averaged over every non-NaN resampled point. The optional
// low-pass filter runs before truncation, so short transients are smoothed
// away instead of being clipped to zero and then averaged in.
func enmo(x, y, z []float64, freq float64, useFilter bool) float64 {
	vals := make([]float64, 0, len(x))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsNaN(z[i]) {
			continue
		}
		vals = append(vals, math.Sqrt(x[i]*x[i]+y[i]*y[i]+z[i]*z[i])-1)
	}
	if len(vals) == 0 {
		return 0
	}
	if useFilter {
		vals = lowPassFilter(vals, freq)
	}
	sum := 0.0
	for _, v := range vals {
		sum += math.Max(v, 0)
	}
	return sum / float64(len(vals))
}

func meanStd(v []float64) (mean, std float64) {
	clean := make([]float64, 0, len(v))
	for _, x := range v {
		if !math.IsNaN(x) {
			clean = append(clean, x)
		}
	}
	if len(clean) == 0 {
		return math.NaN(), math.NaN()
	}
	mean = stat.Mean(clean, nil)
	if len(clean) < 2 {
		return mean, 0
	}
	std = stat.StdDev(clean, nil)
	return mean, std
}

func rangeOf(v []float64) float64 {
	clean := make([]float64, 0, len(v))
	for _, x := range v {
		if !math.IsNaN(x) {
			clean = append(clean, x)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	return floats.Max(clean) - floats.Min(clean)
}

func meanOf(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
