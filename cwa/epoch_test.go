package cwa

import (
	"testing"
	"time"
)

func testEpochConfig(periodSeconds int) EpochConfig {
	return EpochConfig{
		EpochPeriod: time.Duration(periodSeconds) * time.Second,
		UseFilter:   false,
	}
}

func TestEpochBoundary(t *testing.T) {
	agg := NewEpochAggregator(testEpochConfig(5), nil)
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	times := []float64{0, 1, 2, 3, 4, 5.001}
	var rows []*Row
	for _, sec := range times {
		ts := base.Add(time.Duration(sec * float64(time.Second)))
		if row := agg.AddSample(ts, 0, 0, 1, 20, 1); row != nil {
			rows = append(rows, row)
		}
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (flush at the 5.001s sample)", len(rows))
	}
	if !rows[0].Time.Equal(base) {
		t.Fatalf("row time = %v, want %v", rows[0].Time, base)
	}

	// Feeding a full second epoch's worth of samples now closes the window
	// that started at t=5.
	for _, sec := range []float64{6, 7, 8, 9, 10.001} {
		ts := base.Add(time.Duration(sec * float64(time.Second)))
		if row := agg.AddSample(ts, 0, 0, 1, 20, 1); row != nil {
			rows = append(rows, row)
		}
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows after second epoch, want 2", len(rows))
	}
	wantSecond := base.Add(5 * time.Second)
	if !rows[1].Time.Equal(wantSecond) {
		t.Fatalf("second row time = %v, want %v", rows[1].Time, wantSecond)
	}
}

func TestGapSkip(t *testing.T) {
	agg := NewEpochAggregator(testEpochConfig(5), nil)
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	var rows []*Row
	times := []float64{0, 1, 2, 3, 4, 120, 121, 122, 123, 124}
	for _, sec := range times {
		ts := base.Add(time.Duration(sec * float64(time.Second)))
		if row := agg.AddSample(ts, 0, 0, 1, 20, 1); row != nil {
			rows = append(rows, row)
		}
	}
	// Force the final partial epoch closed so both gap-straddling windows
	// are observable.
	finalRow := agg.flush(1)
	if finalRow != nil {
		rows = append(rows, finalRow)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (t=0 and t=120)", len(rows))
	}
	if !rows[0].Time.Equal(base) {
		t.Fatalf("first row time = %v, want %v", rows[0].Time, base)
	}
	wantSecond := base.Add(120 * time.Second)
	if !rows[1].Time.Equal(wantSecond) {
		t.Fatalf("second row time = %v, want %v", rows[1].Time, wantSecond)
	}
	wantEpochStart := base.Add(125 * time.Second)
	if !agg.epochStart.Equal(wantEpochStart) {
		t.Fatalf("epochStart after emission = %v, want %v", agg.epochStart, wantEpochStart)
	}
}

func TestStationaryFiltering(t *testing.T) {
	cfg := testEpochConfig(1)
	cfg.GetStationaryBouts = true
	cfg.StationaryStd = 0.013

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	// Noisy epoch: std exceeds threshold on every axis, must be suppressed.
	noisy := NewEpochAggregator(cfg, nil)
	for i, v := range []float64{0, 1, -1, 2} {
		ts := base.Add(time.Duration(float64(i) / 4 * float64(time.Second)))
		noisy.AddSample(ts, v, v, v, 20, 4)
	}
	if row := noisy.flush(4); row != nil {
		t.Fatalf("expected noisy epoch (std > threshold) to be suppressed, got a row")
	}

	// Quiet epoch: constant signal, std==0 < threshold, must be emitted.
	quiet := NewEpochAggregator(cfg, nil)
	for i := 0; i < 4; i++ {
		ts := base.Add(time.Duration(float64(i) / 4 * float64(time.Second)))
		quiet.AddSample(ts, 0.1, 0.1, 1, 20, 4)
	}
	if row := quiet.flush(4); row == nil {
		t.Fatalf("expected quiet epoch (std < threshold) to be emitted")
	}
}

func TestENMOTruncation(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{1.0, 0},
		{1.5, 0.5},
		{0.5, 0},
	}
	for _, c := range cases {
		x := make([]float64, 10)
		y := make([]float64, 10)
		z := make([]float64, 10)
		for i := range x {
			x[i] = c.x
		}
		got := enmo(x, y, z, 10, false)
		if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("enmo(x=%v) = %v, want %v", c.x, got, c.want)
		}
	}
}
