package cwa

import (
	"encoding/binary"
	"math"
	"time"
)

// parseHeaderBlock extracts the logging-planned start time from a header
// sector (tag "MD"), packed at byte offset 13.
func parseHeaderBlock(buf []byte) (time.Time, error) {
	word := binary.LittleEndian.Uint32(buf[13:17])
	return decodeCalendar(word)
}

// parseDataBlock decodes the fixed fields of a data sector (tag "AX") per
// the CWA block layout: device-id-or-flagged-fractional word at byte 4,
// timestamp at byte 14, temperature at byte 20, rateCode at byte 24,
// numAxesBPS at byte 25, timestampOffset-or-legacy-frequency at byte 26,
// sampleCount at byte 28.
func parseDataBlock(buf []byte, blockIndex int) (ParsedBlock, error) {
	if len(buf) < SectorSize {
		return ParsedBlock{}, &BlockCorruptError{BlockIndex: blockIndex, Reason: "short sector"}
	}

	oldDeviceID := binary.LittleEndian.Uint16(buf[4:6])
	rawTemp := binary.LittleEndian.Uint16(buf[20:22])
	rateCode := buf[24]
	numAxesBPS := buf[25]
	word26 := binary.LittleEndian.Uint16(buf[26:28])
	sampleCount := int(binary.LittleEndian.Uint16(buf[28:30]))

	var timestampOffset int32
	var freq float64
	var fractional uint16

	if rateCode != 0 {
		timestampOffset = int32(int16(word26))
		freq = 3200 / float64(uint(1)<<(15-(rateCode&15)))
		if oldDeviceID&0x8000 != 0 {
			fractional = (oldDeviceID & 0x7FFF) << 1
			timestampOffset += int32((int64(fractional) * int64(math.Floor(freq))) >> 16)
		}
	} else {
		timestampOffset = 0
		freq = float64(int16(word26))
	}

	bytesPerSample := 0
	invalidEncoding := false
	switch numAxesBPS & 0x0F {
	case 0:
		bytesPerSample = 4
	case 2:
		bytesPerSample = 6
	default:
		invalidEncoding = true
		bytesPerSample = 4 // conservative clamp denominator; payload is never decoded on this path
	}

	maxSamples := 480 / bytesPerSample
	if sampleCount > maxSamples {
		sampleCount = maxSamples
	}
	if freq <= 0 {
		freq = 1
	}

	calendarWord := binary.LittleEndian.Uint32(buf[14:18])
	calendar, err := decodeCalendar(calendarWord)
	if err != nil {
		return ParsedBlock{}, err
	}
	blockTime := withFractional(calendar, fractional)

	return ParsedBlock{
		BlockTime:       blockTime,
		Fractional:      fractional,
		TemperatureC:    (float64(rawTemp)*150 - 20500) / 1000,
		Freq:            freq,
		TimestampOffset: timestampOffset,
		BytesPerSample:  bytesPerSample,
		SampleCount:     sampleCount,
		PayloadOffset:   payloadOffset,
		NumAxesBPS:      numAxesBPS,
		InvalidEncoding: invalidEncoding,
	}, nil
}
