package cwa

import (
	"encoding/binary"
	"time"
)

// buildDataSector constructs a synthetic 512-byte "AX" data sector for
// tests. samples16 holds (x,y,z) triples encoded as 6-bytes-per-sample
// (numAxesBPS low nibble 2); pass nil to leave the payload zeroed.
func buildDataSector(t time.Time, rateCode byte, timestampOffsetOrFreq int16, sampleCount int, temperatureC float64, samples16 [][3]int16) []byte {
	buf := make([]byte, SectorSize)
	copy(buf[0:2], []byte(TagData))

	rawTemp := uint16((temperatureC*1000 + 20500) / 150)
	binary.LittleEndian.PutUint16(buf[20:22], rawTemp)

	buf[24] = rateCode
	buf[25] = 2 // 6 bytes per sample, 16-bit raw axes
	binary.LittleEndian.PutUint16(buf[26:28], uint16(timestampOffsetOrFreq))
	binary.LittleEndian.PutUint16(buf[28:30], uint16(sampleCount))
	binary.LittleEndian.PutUint32(buf[14:18], encodeCalendar(t))

	for i, s := range samples16 {
		off := payloadOffset + i*6
		if off+6 > len(buf) {
			break
		}
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(s[0]))
		binary.LittleEndian.PutUint16(buf[off+2:off+4], uint16(s[1]))
		binary.LittleEndian.PutUint16(buf[off+4:off+6], uint16(s[2]))
	}
	return buf
}

// buildHeaderSector constructs a synthetic "MD" header sector with the
// session start time packed at byte offset 13.
func buildHeaderSector(sessionStart time.Time) []byte {
	buf := make([]byte, SectorSize)
	copy(buf[0:2], []byte(TagHeader))
	binary.LittleEndian.PutUint32(buf[13:17], encodeCalendar(sessionStart))
	return buf
}

func repeatSample(xyz [3]int16, n int) [][3]int16 {
	out := make([][3]int16, n)
	for i := range out {
		out[i] = xyz
	}
	return out
}
