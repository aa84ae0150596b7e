// Package xbuf provides an endian-aware cursor over an in-memory byte
// buffer, plus the fixed-size and null-terminated string readers that
// sit alongside it in the bytecode wire format.
package xbuf

import (
	"encoding/binary"
	"unsafe"

	"github.com/go-lj/bcir/pkg/leb"
	"github.com/pkg/errors"
)

// Order selects one of the three endianness interpretations a Buffer
// can apply to fixed-width fields. ULEB128 and raw-byte reads are
// endian-invariant and unaffected by this choice.
type Order int

const (
	Little Order = iota
	Big
	Native
)

// nativeOrder is resolved once, by probing how this process lays out a
// multi-byte integer in memory, rather than branching on GOARCH per
// read.
var nativeOrder = func() binary.ByteOrder {
	var probe uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&probe))
	if b[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

func (o Order) byteOrder() binary.ByteOrder {
	switch o {
	case Big:
		return binary.BigEndian
	case Native:
		return nativeOrder
	default:
		return binary.LittleEndian
	}
}

// ErrUnexpectedEOF is returned when the cursor runs out of bytes before
// satisfying a read.
var ErrUnexpectedEOF = errors.New("xbuf: unexpected end of buffer")

// Buffer is a forward-only cursor over a byte slice. It is not safe for
// concurrent use, matching the single-owner, single-pass pipeline
// described by the decoder's resource model.
type Buffer struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// New wraps data in a Buffer that interprets fixed-width fields using
// order.
func New(data []byte, order Order) *Buffer {
	return &Buffer{data: data, order: order.byteOrder()}
}

// Len reports the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.pos
}

// Pos reports the current byte offset from the start of the buffer.
func (b *Buffer) Pos() int {
	return b.pos
}

func (b *Buffer) take(n int) ([]byte, error) {
	if n < 0 || b.Len() < n {
		return nil, ErrUnexpectedEOF
	}
	out := b.data[b.pos : b.pos+n]
	b.pos += n
	return out, nil
}

// ReadByte satisfies io.ByteReader and leb.ByteReader.
func (b *Buffer) ReadByte() (byte, error) {
	chunk, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return chunk[0], nil
}

// Byte is an alias for ReadByte, the endian-invariant single-byte
// read.
func (b *Buffer) Byte() (byte, error) {
	return b.ReadByte()
}

// Raw consumes and returns exactly n bytes, endian-invariant.
func (b *Buffer) Raw(n int) ([]byte, error) {
	return b.take(n)
}

// String consumes exactly n bytes and returns them as an opaque byte
// string. Lua strings are not guaranteed to be UTF-8; callers that
// need text treat the result as bytes, not runes.
func (b *Buffer) String(n int) (string, error) {
	chunk, err := b.take(n)
	if err != nil {
		return "", err
	}
	return string(chunk), nil
}

// CString consumes bytes up to and including a 0x00 terminator and
// returns the bytes preceding it.
func (b *Buffer) CString() (string, error) {
	start := b.pos
	for {
		chunk, err := b.take(1)
		if err != nil {
			return "", errors.Wrap(err, "xbuf: cstring terminator not found")
		}
		if chunk[0] == 0 {
			return string(b.data[start : b.pos-1]), nil
		}
	}
}

// Uint16 reads a 16-bit unsigned integer using the Buffer's order.
func (b *Buffer) Uint16() (uint16, error) {
	chunk, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(chunk), nil
}

// Uint32 reads a 32-bit unsigned integer using the Buffer's order.
func (b *Buffer) Uint32() (uint32, error) {
	chunk, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(chunk), nil
}

// Uint64 reads a 64-bit unsigned integer using the Buffer's order.
func (b *Buffer) Uint64() (uint64, error) {
	chunk, err := b.take(8)
	if err != nil {
		return 0, err
	}
	return b.order.Uint64(chunk), nil
}

// Int16 reads a 16-bit signed integer using the Buffer's order.
func (b *Buffer) Int16() (int16, error) {
	v, err := b.Uint16()
	return int16(v), err
}

// Int32 reads a 32-bit signed integer using the Buffer's order.
func (b *Buffer) Int32() (int32, error) {
	v, err := b.Uint32()
	return int32(v), err
}

// Int64 reads a 64-bit signed integer using the Buffer's order.
func (b *Buffer) Int64() (int64, error) {
	v, err := b.Uint64()
	return int64(v), err
}

// ULEB8 reads an unsigned LEB128 value into 8 bits. Endian-invariant.
func (b *Buffer) ULEB8() (uint8, error) { return leb.Uint8(b) }

// ULEB16 reads an unsigned LEB128 value into 16 bits. Endian-invariant.
func (b *Buffer) ULEB16() (uint16, error) { return leb.Uint16(b) }

// ULEB32 reads an unsigned LEB128 value into 32 bits. Endian-invariant.
func (b *Buffer) ULEB32() (uint32, error) { return leb.Uint32(b) }

// ULEB64 reads an unsigned LEB128 value into 64 bits. Endian-invariant.
func (b *Buffer) ULEB64() (uint64, error) { return leb.Uint64(b) }

// SLEB32 reads a signed LEB128 value into 32 bits. Endian-invariant.
func (b *Buffer) SLEB32() (int32, error) { return leb.Int32(b) }

// Uleb33 reads LuaJIT's specialized tagged varint. Endian-invariant.
func (b *Buffer) Uleb33() (isNumber bool, value uint32, err error) {
	return leb.Uleb33(b)
}
