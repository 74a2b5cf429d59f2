package cwa

import "math"

// lowPassCutoffHz is the fixed low-pass cutoff applied to the ENMO signal
// before truncation. ActiGraph/GENEActiv-style ENMO pipelines commonly use
// 2 Hz here to suppress high-frequency sensor noise while keeping the
// movement-driven signal intact.
const lowPassCutoffHz = 2.0

// lowPassFilter applies a one-pole (exponential) low-pass filter over seq,
// sampled at sampleHz, in both directions (forward then backward) so the
// result has no phase lag - the same trick a single-pole RC filter needs
// to behave like a zero-phase filter without a full IIR design.
func lowPassFilter(seq []float64, sampleHz float64) []float64 {
	if len(seq) == 0 || sampleHz <= 0 {
		return seq
	}

	alpha := poleAlpha(lowPassCutoffHz, sampleHz)

	fwd := make([]float64, len(seq))
	fwd[0] = seq[0]
	for i := 1; i < len(seq); i++ {
		fwd[i] = fwd[i-1] + alpha*(seq[i]-fwd[i-1])
	}

	out := make([]float64, len(seq))
	out[len(out)-1] = fwd[len(fwd)-1]
	for i := len(fwd) - 2; i >= 0; i-- {
		out[i] = out[i+1] + alpha*(fwd[i]-out[i+1])
	}
	return out
}

// poleAlpha converts a cutoff frequency and sample rate into the smoothing
// factor of a discrete one-pole low-pass: y[n] = y[n-1] + alpha*(x[n]-y[n-1]).
func poleAlpha(cutoffHz, sampleHz float64) float64 {
	dt := 1.0 / sampleHz
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	return dt / (rc + dt)
}
