package cwa

import (
	"encoding/binary"
	"testing"
)

func wordToBuf(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func TestReadPackedXYZBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		word       uint32
		wantX      int16
		wantY      int16
		wantZ      int16
	}{
		{"all-ones", 0xFFFFFFFF, -8, -8, -8},
		{"x-0x3F-unsigned", 0x0000003F, 63, 0, 0},
		{"x-0x3FF-signed", 0x000003FF, -1, 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, y, z := readPackedXYZ(wordToBuf(c.word), 0)
			if x != c.wantX || y != c.wantY || z != c.wantZ {
				t.Fatalf("readPackedXYZ(0x%08x) = (%d,%d,%d), want (%d,%d,%d)", c.word, x, y, z, c.wantX, c.wantY, c.wantZ)
			}
		})
	}
}

// signExtend10 is the reference formula readPackedXYZ is checked against:
// sign-extend a 10-bit field, then left-shift by e.
func signExtend10(v uint32) int16 {
	s := int16(v & 0x3FF)
	if s&0x200 != 0 {
		s |= ^int16(0x3FF)
	}
	return s
}

func referencePackedXYZ(v uint32) (x, y, z int16) {
	e := uint((v >> 30) & 3)
	x = signExtend10(v) << e
	y = signExtend10(v>>10) << e
	z = signExtend10(v>>20) << e
	return
}

func TestReadPackedXYZMatchesReferenceFormula(t *testing.T) {
	words := []uint32{
		0x00000000,
		0xFFFFFFFF,
		0x0000003F,
		0x000003FF,
		0x40000201,
		0x80000000,
		0xC0000000,
		0x3FFFFFFF,
		0x12345678,
		0xABCDEF01,
	}
	for _, v := range words {
		gotX, gotY, gotZ := readPackedXYZ(wordToBuf(v), 0)
		wantX, wantY, wantZ := referencePackedXYZ(v)
		if gotX != wantX || gotY != wantY || gotZ != wantZ {
			t.Fatalf("word 0x%08x: got (%d,%d,%d), reference (%d,%d,%d)", v, gotX, gotY, gotZ, wantX, wantY, wantZ)
		}
	}
}

func TestReadRawXYZ16(t *testing.T) {
	buf := []byte{0x00, 0x01, 0xFF, 0xFF, 0x34, 0x12}
	x, y, z := readRawXYZ16(buf, 0)
	if x != 256 || y != -1 || z != 0x1234 {
		t.Fatalf("readRawXYZ16 = (%d,%d,%d), want (256,-1,4660)", x, y, z)
	}
}
