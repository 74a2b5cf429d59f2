package cwa

import "math"

// Coefficients holds the per-axis affine calibration plus linear
// temperature correction and the saturation range, all in g-units.
type Coefficients struct {
	XIntercept, YIntercept, ZIntercept float64
	XSlope, YSlope, ZSlope             float64
	XTemp, YTemp, ZTemp                float64
	MeanTemp                           float64
	Range                              float64
}

// DefaultCoefficients is the identity calibration: no offset, unit slope,
// no temperature dependence, default +/-8g saturation range.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		XSlope: 1, YSlope: 1, ZSlope: 1,
		Range: 8,
	}
}

// CalibrationPipeline applies Coefficients to a raw (x, y, z) sample. It
// holds no per-epoch state itself; clip bookkeeping across a window is the
// EpochAggregator's responsibility, so the same pipeline instance can be
// reused across blocks without resetting.
type CalibrationPipeline struct {
	Coeffs Coefficients
}

// NewCalibrationPipeline returns a pipeline configured with coeffs.
func NewCalibrationPipeline(coeffs Coefficients) *CalibrationPipeline {
	return &CalibrationPipeline{Coeffs: coeffs}
}

// Apply returns the calibrated (x, y, z) in g-units plus whether the raw
// sample clipped before calibration and whether calibration pushed an
// unclipped sample past the range (a "new" post-calibration clip).
func (c *CalibrationPipeline) Apply(x, y, z, temperatureC float64) (xc, yc, zc float64, preClipped, postClippedNew bool) {
	rng := c.Coeffs.Range
	mcTemp := temperatureC - c.Coeffs.MeanTemp

	preClipped = math.Abs(x) >= rng || math.Abs(y) >= rng || math.Abs(z) >= rng

	xp := c.Coeffs.XIntercept + c.Coeffs.XSlope*x + c.Coeffs.XTemp*mcTemp
	yp := c.Coeffs.YIntercept + c.Coeffs.YSlope*y + c.Coeffs.YTemp*mcTemp
	zp := c.Coeffs.ZIntercept + c.Coeffs.ZSlope*z + c.Coeffs.ZTemp*mcTemp

	postClipped := math.Abs(xp) > rng || math.Abs(yp) > rng || math.Abs(zp) > rng
	postClippedNew = postClipped && !preClipped

	xc = saturate(xp, rng, preClipped)
	yc = saturate(yp, rng, preClipped)
	zc = saturate(zp, rng, preClipped)

	return
}

// saturate clamps v into [-rng, rng]. A pre-clipped input is pushed to full
// scale in the direction of its calibrated value v, even when calibration
// flipped its sign relative to the raw reading it clipped at.
func saturate(v, rng float64, preClipped bool) float64 {
	switch {
	case v < -rng:
		return -rng
	case preClipped && v < 0:
		return -rng
	case v > rng:
		return rng
	case preClipped && v > 0:
		return rng
	default:
		return v
	}
}
