package cwa

import (
	"fmt"
	"io"
	"math"
)

// writeHeader writes the CSV header row for the configured column set:
// the mean triple only appears when getStationaryBouts is active.
func writeHeader(w io.Writer, withMeans bool) error {
	cols := []string{"Time", "enmoTrunc"}
	if withMeans {
		cols = append(cols, "xMean", "yMean", "zMean")
	}
	cols = append(cols,
		"xRange", "yRange", "zRange",
		"xStd", "yStd", "zStd",
		"temp", "samples", "dataErrors",
		"clipsBeforeCalibr", "clipsAfterCalibr", "rawSamples",
	)
	return writeCSVLine(w, cols)
}

// writeRow formats and writes one Row. withMeans must match the flag
// writeHeader was called with.
func writeRow(w io.Writer, r Row, timeFormat string, withMeans bool) error {
	fields := []string{
		r.Time.Format(timeFormat),
		ceilFormat(r.ENMOTrunc, 6),
	}
	if withMeans {
		fields = append(fields, ceilFormat(r.Mean[0], 6), ceilFormat(r.Mean[1], 6), ceilFormat(r.Mean[2], 6))
	}
	fields = append(fields,
		ceilFormat(r.Range[0], 6), ceilFormat(r.Range[1], 6), ceilFormat(r.Range[2], 6),
		ceilFormat(r.Std[0], 6), ceilFormat(r.Std[1], 6), ceilFormat(r.Std[2], 6),
		ceilFormat(r.TemperatureC, 2),
		fmt.Sprintf("%d", r.Samples),
		fmt.Sprintf("%d", r.DataErrors),
		fmt.Sprintf("%d", r.ClipsBeforeCalibr),
		fmt.Sprintf("%d", r.ClipsAfterCalibr),
		fmt.Sprintf("%d", r.RawSamples),
	)
	return writeCSVLine(w, fields)
}

func writeCSVLine(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, ", "); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, f); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ceilFormat renders v with digits fractional digits, rounded toward
// positive infinity (ceiling, not banker's rounding), matching the
// downstream classifier's expectation that a summary statistic never
// under-reports the epoch it was computed from.
func ceilFormat(v float64, digits int) string {
	if math.IsNaN(v) {
		v = 0
	}
	scale := math.Pow(10, float64(digits))
	rounded := math.Ceil(v*scale) / scale
	return fmt.Sprintf("%.*f", digits, rounded)
}
