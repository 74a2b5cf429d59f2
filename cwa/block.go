// Package cwa decodes an AX3 .CWA accelerometer recording into a stream of
// fixed-duration epoch summaries. See orchestrator.go for the streaming entry
// point; cmd/decode.go wires it to the command line.
package cwa

import "time"

// SectorSize is the fixed size of every CWA block, header or data.
const SectorSize = 512

// payloadOffset is the byte offset of the first packed sample in a data
// sector.
const payloadOffset = 30

// Tags identifying the two sector kinds this decoder understands. Any other
// two-byte tag is skipped by the orchestrator.
const (
	TagHeader = "MD"
	TagData   = "AX"
)

// ParsedBlock holds everything BlockParser extracts from a single data
// sector (tag "AX").
type ParsedBlock struct {
	BlockTime       time.Time
	Fractional      uint16
	TemperatureC    float64
	Freq            float64
	TimestampOffset int32
	BytesPerSample  int
	SampleCount     int
	PayloadOffset   int
	NumAxesBPS      byte

	// InvalidEncoding is set when numAxesBPS & 0x0F is not in {0, 2}: the
	// payload cannot be decoded and every sample in it is counted as an
	// error rather than a value.
	InvalidEncoding bool
}
