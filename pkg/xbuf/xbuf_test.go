package xbuf

import "testing"

func TestFixedWidthLittleEndian(t *testing.T) {
	b := New([]byte{0x01, 0x02, 0x03, 0x04}, Little)
	got, err := b.Uint32()
	if err != nil {
		t.Fatalf("Uint32() error: %v", err)
	}
	if want := uint32(0x04030201); got != want {
		t.Errorf("Uint32() = %#x, want %#x", got, want)
	}
}

func TestFixedWidthBigEndian(t *testing.T) {
	b := New([]byte{0x01, 0x02, 0x03, 0x04}, Big)
	got, err := b.Uint32()
	if err != nil {
		t.Fatalf("Uint32() error: %v", err)
	}
	if want := uint32(0x01020304); got != want {
		t.Errorf("Uint32() = %#x, want %#x", got, want)
	}
}

func TestCString(t *testing.T) {
	b := New([]byte("hello\x00world"), Little)
	got, err := b.CString()
	if err != nil {
		t.Fatalf("CString() error: %v", err)
	}
	if got != "hello" {
		t.Errorf("CString() = %q, want %q", got, "hello")
	}
	rest, err := b.String(b.Len())
	if err != nil {
		t.Fatalf("String() error: %v", err)
	}
	if rest != "world" {
		t.Errorf("remaining String() = %q, want %q", rest, "world")
	}
}

func TestReadPastEndReturnsUnexpectedEOF(t *testing.T) {
	b := New([]byte{0x01}, Little)
	if _, err := b.Uint32(); err != ErrUnexpectedEOF {
		t.Fatalf("Uint32() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestULEB32PassThrough(t *testing.T) {
	b := New([]byte{0x80, 0x01}, Little)
	got, err := b.ULEB32()
	if err != nil {
		t.Fatalf("ULEB32() error: %v", err)
	}
	if got != 0x80 {
		t.Errorf("ULEB32() = %#x, want %#x", got, 0x80)
	}
}
