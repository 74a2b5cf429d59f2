package cwa

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// resample linearly interpolates (tSrc, xSrc) onto tDst. tSrc must be
// strictly increasing and have at least two points; shorter inputs fall
// back to a flat extension of the single known value (or NaN when there is
// none), matching the "no data yet" case a freshly opened epoch buffer can
// hit at a window's edges.
func resample(tSrc, xSrc, tDst []float64) []float64 {
	out := make([]float64, len(tDst))

	switch len(tSrc) {
	case 0:
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	case 1:
		for i := range out {
			out[i] = xSrc[0]
		}
		return out
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(tSrc, xSrc); err != nil {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	lo, hi := tSrc[0], tSrc[len(tSrc)-1]
	for i, t := range tDst {
		switch {
		case t < lo:
			out[i] = xSrc[0]
		case t > hi:
			out[i] = xSrc[len(xSrc)-1]
		default:
			out[i] = pl.Predict(t)
		}
	}
	return out
}
