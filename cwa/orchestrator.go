package cwa

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Config bundles everything the Orchestrator needs to decode one CWA
// stream into one CSV stream: the epoch/resample options and the
// calibration coefficients. A fresh value is built per decode so two
// files can be decoded concurrently without sharing state.
type Config struct {
	Epoch       EpochConfig
	Calibration Coefficients
	Verbose     bool
}

// Stats are diagnostic counters surfaced after a run but not part of the
// CSV contract.
type Stats struct {
	BlocksProcessed int
	BlocksSkipped   int
	DuplicateBlocks int
}

// Orchestrator drives the streaming decode: read 512-byte sectors, parse
// each, and thread decoder state (TimeReconstructor anchor, calibration
// pipeline, epoch aggregator) across the whole file. It is the sole owner
// of cross-block mutable state, held as ordinary struct fields rather than
// package-level variables, so nothing leaks between runs.
type Orchestrator struct {
	cfg Config

	reconstructor *TimeReconstructor
	calibration   *CalibrationPipeline
	aggregator    *EpochAggregator

	sessionStart  *time.Time
	withMeans     bool
	headerWritten bool
	lastBlockHash uint64
	lastHashValid bool
	stats         Stats
}

// NewOrchestrator returns a fresh Orchestrator. Call Run once per input
// stream; it is not safe to reuse across files.
func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:           cfg,
		reconstructor: NewTimeReconstructor(),
		calibration:   NewCalibrationPipeline(cfg.Calibration),
		withMeans:     cfg.Epoch.GetStationaryBouts,
	}
}

// Run consumes r as a sequence of 512-byte sectors and writes one CSV row
// per emitted epoch to w. totalBytes, when > 0, enables verbose percent-
// complete progress reporting; pass 0 when the input size is unknown (for
// example, a pipe).
func (o *Orchestrator) Run(r io.Reader, w io.Writer, totalBytes int64) (Stats, error) {
	buf := make([]byte, SectorSize)
	var bytesRead int64
	blockIndex := 0

	for {
		n, err := io.ReadFull(r, buf)
		if n == SectorSize {
			if procErr := o.processBlock(buf, blockIndex, w); procErr != nil {
				return o.stats, fmt.Errorf("block %d: %w", blockIndex, procErr)
			}
			bytesRead += SectorSize
			blockIndex++
			if o.cfg.Verbose && totalBytes > 0 {
				fmt.Fprintf(os.Stderr, "\r%5.1f%% complete", 100*float64(bytesRead)/float64(totalBytes))
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return o.stats, fmt.Errorf("read sector %d: %w", blockIndex, err)
		}
	}

	if o.cfg.Verbose && totalBytes > 0 {
		fmt.Fprintln(os.Stderr)
	}
	return o.stats, nil
}

func (o *Orchestrator) processBlock(buf []byte, index int, w io.Writer) error {
	tag := string(buf[0:2])

	switch tag {
	case TagHeader:
		return o.processHeaderBlock(buf, w)
	case TagData:
		return o.processDataBlock(buf, index, w)
	default:
		o.stats.BlocksSkipped++
		return nil
	}
}

func (o *Orchestrator) processHeaderBlock(buf []byte, w io.Writer) error {
	t, err := parseHeaderBlock(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "header block: %v\n", err)
	} else {
		o.sessionStart = &t
	}

	if !o.headerWritten {
		if err := writeHeader(w, o.withMeans); err != nil {
			return err
		}
		o.headerWritten = true
		o.aggregator = NewEpochAggregator(o.cfg.Epoch, o.sessionStart)
	}
	o.stats.BlocksProcessed++
	return nil
}

func (o *Orchestrator) processDataBlock(buf []byte, index int, w io.Writer) error {
	if o.aggregator == nil {
		// No header sector was seen yet; still a well-formed stream to
		// decode, so start the CSV without a session-start clamp.
		if err := writeHeader(w, o.withMeans); err != nil {
			return err
		}
		o.headerWritten = true
		o.aggregator = NewEpochAggregator(o.cfg.Epoch, nil)
	}

	hash := xxhash.Sum64(buf)
	if o.lastHashValid && hash == o.lastBlockHash {
		o.stats.DuplicateBlocks++
		if o.cfg.Verbose {
			fmt.Fprintf(os.Stderr, "block %d: duplicate of previous data block (firmware buffer-stall symptom)\n", index)
		}
	}
	o.lastBlockHash = hash
	o.lastHashValid = true

	pb, err := parseDataBlock(buf, index)
	if err != nil {
		fmt.Fprintf(os.Stderr, "block %d: %v\n", index, err)
		o.stats.BlocksSkipped++
		return nil
	}

	maxSamples := 480 / pb.BytesPerSample
	first, last := o.reconstructor.Reconstruct(pb.BlockTime, pb.TimestampOffset, pb.SampleCount, pb.Freq, maxSamples)

	if pb.InvalidEncoding {
		encErr := &InvalidSampleEncodingError{NumAxesBPS: pb.NumAxesBPS}
		fmt.Fprintf(os.Stderr, "block %d: %v\n", index, encErr)
		for i := 0; i < pb.SampleCount; i++ {
			o.aggregator.CountError()
		}
		o.stats.BlocksProcessed++
		return nil
	}

	span := last.Sub(first)
	for i := 0; i < pb.SampleCount; i++ {
		var t time.Time
		if pb.SampleCount > 1 {
			frac := float64(i) / float64(pb.SampleCount)
			t = first.Add(time.Duration(frac * float64(span)))
		} else {
			t = first
		}

		offset := pb.PayloadOffset + i*pb.BytesPerSample
		if offset+pb.BytesPerSample > len(buf) {
			break
		}

		var rawX, rawY, rawZ int16
		switch pb.BytesPerSample {
		case 4:
			rawX, rawY, rawZ = readPackedXYZ(buf, offset)
		case 6:
			rawX, rawY, rawZ = readRawXYZ16(buf, offset)
		}

		x := float64(rawX) / 256
		y := float64(rawY) / 256
		z := float64(rawZ) / 256

		xc, yc, zc, pre, postNew := o.calibration.Apply(x, y, z, pb.TemperatureC)
		o.aggregator.CountClip(pre, postNew)

		if row := o.aggregator.AddSample(t, xc, yc, zc, pb.TemperatureC, pb.Freq); row != nil {
			if err := writeRow(w, *row, o.cfg.Epoch.TimeFormat, o.withMeans); err != nil {
				return err
			}
		}
	}

	o.stats.BlocksProcessed++
	return nil
}
