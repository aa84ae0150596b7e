// Package leb decodes LEB128 and ULEB128 variable-length integers, plus
// LuaJIT's specialized "uleb128-33" tagged form.
package leb

import "github.com/pkg/errors"

// ErrOverflow is returned when a value would need more bytes than its
// target width can hold. The decoder does not validate the decoded value
// itself, only the byte count, which bounds how far a malformed stream
// can run before the decoder gives up.
var ErrOverflow = errors.New("leb: value overflows target width")

// ByteReader is the minimal capability the codec needs from its source.
// xbuf.Buffer satisfies this, as does bufio.Reader and bytes.Reader.
type ByteReader interface {
	ReadByte() (byte, error)
}

// maxBytes returns the most continuation bytes a ULEB128 value of the
// given bit width can need: ceil(width/7).
func maxBytes(width uint) int {
	return int((width + 6) / 7)
}

// readRaw accumulates an unsigned LEB128 value up to width bits, and
// reports the shift at which decoding stopped and the last byte
// consumed, both needed by the signed decoders for sign extension.
func readRaw(r ByteReader, width uint) (value uint64, shift uint, last byte, err error) {
	limit := maxBytes(width)
	for i := 0; ; i++ {
		if i >= limit {
			return 0, 0, 0, ErrOverflow
		}
		b, rerr := r.ReadByte()
		if rerr != nil {
			return 0, 0, 0, errors.Wrap(rerr, "leb: read byte")
		}
		value |= uint64(b&0x7F) << shift
		shift += 7
		last = b
		if b&0x80 == 0 {
			return value, shift, last, nil
		}
	}
}

// Uint8 decodes an unsigned LEB128 value into 8 bits.
func Uint8(r ByteReader) (uint8, error) {
	v, _, _, err := readRaw(r, 8)
	return uint8(v), err
}

// Uint16 decodes an unsigned LEB128 value into 16 bits.
func Uint16(r ByteReader) (uint16, error) {
	v, _, _, err := readRaw(r, 16)
	return uint16(v), err
}

// Uint32 decodes an unsigned LEB128 value into 32 bits. This is the
// "ULEB32" form used throughout the bytecode wire format.
func Uint32(r ByteReader) (uint32, error) {
	v, _, _, err := readRaw(r, 32)
	return uint32(v), err
}

// Uint64 decodes an unsigned LEB128 value into 64 bits.
func Uint64(r ByteReader) (uint64, error) {
	v, _, _, err := readRaw(r, 64)
	return v, err
}

// signExtend applies LEB128 sign extension: if the terminating byte's
// 0x40 bit is set and the value didn't use the full width, the
// remaining high bits are set to 1.
func signExtend(value uint64, shift, width uint, last byte) uint64 {
	if shift < width && last&0x40 != 0 {
		value |= ^uint64(0) << shift
	}
	return value
}

// Int8 decodes a signed LEB128 value into 8 bits.
func Int8(r ByteReader) (int8, error) {
	v, shift, last, err := readRaw(r, 8)
	if err != nil {
		return 0, err
	}
	return int8(signExtend(v, shift, 8, last)), nil
}

// Int16 decodes a signed LEB128 value into 16 bits.
func Int16(r ByteReader) (int16, error) {
	v, shift, last, err := readRaw(r, 16)
	if err != nil {
		return 0, err
	}
	return int16(signExtend(v, shift, 16, last)), nil
}

// Int32 decodes a signed LEB128 value into 32 bits.
func Int32(r ByteReader) (int32, error) {
	v, shift, last, err := readRaw(r, 32)
	if err != nil {
		return 0, err
	}
	return int32(signExtend(v, shift, 32, last)), nil
}

// Int64 decodes a signed LEB128 value into 64 bits.
func Int64(r ByteReader) (int64, error) {
	v, shift, last, err := readRaw(r, 64)
	if err != nil {
		return 0, err
	}
	return int64(signExtend(v, shift, 64, last)), nil
}

// Uleb33 decodes LuaJIT's specialized tagged varint: the low bit of the
// first byte is a type flag (isNumber); the remaining 6 bits of the
// first byte are the low 6 bits of a 32-bit value, continued as a
// standard ULEB128 starting at shift 6 if the first byte's high bit is
// set.
func Uleb33(r ByteReader) (isNumber bool, value uint32, err error) {
	b0, err := r.ReadByte()
	if err != nil {
		return false, 0, errors.Wrap(err, "leb: read uleb33 first byte")
	}
	isNumber = b0&0x01 != 0
	value = uint32(b0>>1) & 0x3F
	if b0&0x80 == 0 {
		return isNumber, value, nil
	}

	shift := uint(6)
	for i := 0; ; i++ {
		if i >= 4 {
			return false, 0, ErrOverflow
		}
		b, rerr := r.ReadByte()
		if rerr != nil {
			return false, 0, errors.Wrap(rerr, "leb: read uleb33 continuation")
		}
		value |= uint32(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	return isNumber, value, nil
}
