package cwa

import "encoding/binary"

// readPackedXYZ decodes a 32-bit little-endian word at buf[offset:offset+4]
// into three 10-bit-per-axis signed samples with a shared 2-bit right-shift
// exponent.
//
// The decode recipe is bit-exact and must not be "simplified": each axis's
// 10-bit payload is placed in the high 10 bits of a 16-bit slot, then
// arithmetic-right-shifted by 6-e. This is equivalent to
// signExtend10(v>>k)<<e for k in {0,10,20}, but expressed the way the
// firmware itself computes it so the two can never silently drift apart.
func readPackedXYZ(buf []byte, offset int) (x, y, z int16) {
	v := binary.LittleEndian.Uint32(buf[offset : offset+4])
	e := uint((v >> 30) & 3)
	shift := 6 - e

	axis := func(k uint) int16 {
		slot := uint16((v >> k) & 0x3FF)
		slot16 := slot << 6
		return int16(slot16) >> shift
	}

	return axis(0), axis(10), axis(20)
}

// readRawXYZ16 reads three consecutive little-endian 16-bit signed axis
// values starting at offset.
func readRawXYZ16(buf []byte, offset int) (x, y, z int16) {
	x = int16(binary.LittleEndian.Uint16(buf[offset : offset+2]))
	y = int16(binary.LittleEndian.Uint16(buf[offset+2 : offset+4]))
	z = int16(binary.LittleEndian.Uint16(buf[offset+4 : offset+6]))
	return
}
