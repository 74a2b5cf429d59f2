package cwa

import "testing"

func TestSaturationPolarityPreservedOnPreClip(t *testing.T) {
	coeffs := Coefficients{
		XSlope: 0.5, YSlope: 1, ZSlope: 1, // slope<1 on x can flip sign post-calibration
		Range: 8,
	}
	pipe := NewCalibrationPipeline(coeffs)

	// Pre-calibration x is at +range; slope 0.5 alone would give +4, but a
	// negative intercept pushes the pre-clipped sample negative post-
	// calibration. It must saturate to -range, not +range.
	pipe.Coeffs.XIntercept = -10
	xc, _, _, pre, _ := pipe.Apply(8, 0, 0, 0)
	if !pre {
		t.Fatalf("expected pre-clip at x=range")
	}
	if xc != -8 {
		t.Fatalf("x = %v, want -8 (polarity preserved on negative post-calibration value)", xc)
	}

	// Symmetric: pre-clipped negative sample pushed positive must saturate
	// to +range.
	pipe.Coeffs.XIntercept = 10
	xc2, _, _, pre2, _ := pipe.Apply(-8, 0, 0, 0)
	if !pre2 {
		t.Fatalf("expected pre-clip at x=-range")
	}
	if xc2 != 8 {
		t.Fatalf("x = %v, want 8 (polarity preserved on positive post-calibration value)", xc2)
	}
}

func TestClipCounters(t *testing.T) {
	pipe := NewCalibrationPipeline(DefaultCoefficients())

	_, _, _, pre, postNew := pipe.Apply(1, 0, 0, 0)
	if pre || postNew {
		t.Fatalf("expected no clip for an in-range sample")
	}

	_, _, _, pre, postNew = pipe.Apply(9, 0, 0, 0) // beyond default range=8
	if !pre {
		t.Fatalf("expected pre-clip for x=9 > range=8")
	}
	if postNew {
		t.Fatalf("postClippedNew should be false once preClipped is true")
	}
}

func TestTemperatureCorrection(t *testing.T) {
	coeffs := DefaultCoefficients()
	coeffs.XTemp = 0.1
	coeffs.MeanTemp = 20
	pipe := NewCalibrationPipeline(coeffs)

	xc, _, _, _, _ := pipe.Apply(0, 0, 0, 30) // mcTemp = 10
	if xc != 1 {
		t.Fatalf("x = %v, want 1 (0.1 * (30-20))", xc)
	}
}
