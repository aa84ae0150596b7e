package bc

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-lj/bcir/pkg/xbuf"
	"github.com/google/go-cmp/cmp"
)

func newTestBuffer(t *testing.T, data []byte) *xbuf.Buffer {
	t.Helper()
	return xbuf.New(data, xbuf.Little)
}

// minimalDump is the smallest well-formed dump: stripped, no name, one
// empty prototype. Its declared size of 7 counts the four header bytes
// plus the three zero-valued count varints that follow.
func minimalDump() []byte {
	return []byte{
		0x1B, 0x4C, 0x4A, 0x02, // magic
		0x02,                               // flags: stripped
		0x07,                               // prototype size
		0x00, 0x00, 0x01, 0x00,             // flags, numparams, framesize, sizeuv
		0x00, 0x00, 0x00,                   // sizekgc, sizekn, sizeinsn
		0x00, // terminator
	}
}

func TestReadDumpMinimal(t *testing.T) {
	dump, err := ReadDump(context.Background(), bytes.NewReader(minimalDump()), 2)
	if err != nil {
		t.Fatalf("ReadDump() error: %v", err)
	}
	if !dump.Stripped {
		t.Errorf("Stripped = false, want true")
	}
	if dump.HasName {
		t.Errorf("HasName = true, want false")
	}
	if len(dump.Protos) != 1 {
		t.Fatalf("len(Protos) = %d, want 1", len(dump.Protos))
	}
	if dump.Main != 0 {
		t.Errorf("Main = %d, want 0", dump.Main)
	}
	proto := dump.Protos[0]
	if proto.Index != 0 || proto.FrameSize != 1 {
		t.Errorf("proto = %+v, want Index=0 FrameSize=1", proto)
	}
	if len(proto.Instructions) != 0 || len(proto.Upvalues) != 0 || len(proto.Complex) != 0 || len(proto.Numerics) != 0 {
		t.Errorf("proto has unexpected non-empty sections: %+v", proto)
	}
	if proto.Debug != nil {
		t.Errorf("Debug = %+v, want nil (sizedbg=0, stripped)", proto.Debug)
	}
}

func TestReadDumpBadMagic(t *testing.T) {
	bad := append([]byte{}, minimalDump()...)
	bad[0] = 0xFF
	if _, err := ReadDump(context.Background(), bytes.NewReader(bad), 2); err != ErrBadMagic {
		t.Fatalf("ReadDump() error = %v, want ErrBadMagic", err)
	}
}

func TestReadDumpTwiceStructurallyEqual(t *testing.T) {
	data := minimalDump()
	first, err := ReadDump(context.Background(), bytes.NewReader(data), 2)
	if err != nil {
		t.Fatalf("first ReadDump() error: %v", err)
	}
	second, err := ReadDump(context.Background(), bytes.NewReader(data), 2)
	if err != nil {
		t.Fatalf("second ReadDump() error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("parsing the same dump twice produced different results:\n%s", diff)
	}
}

func TestReadComplexSigned(t *testing.T) {
	// tag=2 (Signed), hi=0x80 (two-byte ULEB: 0x80,0x01), lo=0x00.
	d := &decoder{buf: newTestBuffer(t, []byte{0x02, 0x80, 0x01, 0x00})}
	c, err := d.readComplex(1)
	if err != nil {
		t.Fatalf("readComplex() error: %v", err)
	}
	signed, ok := c.(ComplexSigned)
	if !ok {
		t.Fatalf("readComplex() = %T, want ComplexSigned", c)
	}
	if want := int64(0x80) << 32; signed.Value != want {
		t.Errorf("Signed.Value = %#x, want %#x", signed.Value, want)
	}
}

func TestReadComplexPrototypeBackReference(t *testing.T) {
	d := &decoder{buf: newTestBuffer(t, []byte{0x00})}
	c, err := d.readComplex(3)
	if err != nil {
		t.Fatalf("readComplex() error: %v", err)
	}
	ref, ok := c.(ComplexPrototype)
	if !ok {
		t.Fatalf("readComplex() = %T, want ComplexPrototype", c)
	}
	if ref.Index != 2 {
		t.Errorf("Index = %d, want 2", ref.Index)
	}
}

// namedDump is a non-stripped dump carrying a source name and one
// prototype with a single RET0 instruction (opcode 75 at version 2)
// and a two-byte debug block: one line entry, no upvalue names, the
// variable-info End tag.
func namedDump() []byte {
	return []byte{
		0x1B, 0x4C, 0x4A, 0x02, // magic
		0x00,                      // flags: not stripped
		0x04, 't', 'e', 's', 't', // source name
		0x10,                   // prototype size
		0x00, 0x00, 0x02, 0x00, // flags, numparams, framesize, sizeuv
		0x00, 0x00, 0x01, // sizekgc, sizekn, sizeinsn
		0x02,       // sizedbg
		0x0A, 0x05, // firstline, numline
		0x4B, 0x00, 0x01, 0x00, // RET0 a=0 d=1
		0x0A, // line table: one 1-byte entry
		0x00, // variable-info End tag
		0x00, // terminator
	}
}

func TestReadDumpNamedWithDebug(t *testing.T) {
	dump, err := ReadDump(context.Background(), bytes.NewReader(namedDump()), 2)
	if err != nil {
		t.Fatalf("ReadDump() error: %v", err)
	}
	if dump.Stripped {
		t.Errorf("Stripped = true, want false")
	}
	if !dump.HasName || dump.Name != "test" {
		t.Errorf("Name = %q (HasName=%v), want %q", dump.Name, dump.HasName, "test")
	}
	proto := dump.Protos[0]
	if len(proto.Instructions) != 1 || proto.Instructions[0].Name != "RET0" {
		t.Fatalf("Instructions = %+v, want one RET0", proto.Instructions)
	}
	if proto.Debug == nil {
		t.Fatal("Debug = nil, want populated debug block")
	}
	if proto.Debug.FirstLine != 10 || proto.Debug.NumLine != 5 {
		t.Errorf("FirstLine, NumLine = %d, %d, want 10, 5", proto.Debug.FirstLine, proto.Debug.NumLine)
	}
	if len(proto.Debug.Lines) != 1 || proto.Debug.Lines[0] != 10 {
		t.Errorf("Lines = %v, want [10]", proto.Debug.Lines)
	}
}

func TestReadDumpCorruptPrototypeSize(t *testing.T) {
	bad := append([]byte{}, namedDump()...)
	bad[10] = 0x11 // declared size off by one from the bytes that follow
	_, err := ReadDump(context.Background(), bytes.NewReader(bad), 2)
	if !errors.Is(err, ErrCorruptPrototype) {
		t.Fatalf("ReadDump() error = %v, want ErrCorruptPrototype", err)
	}
}

func TestReadDumpTruncated(t *testing.T) {
	data := minimalDump()[:8]
	_, err := ReadDump(context.Background(), bytes.NewReader(data), 2)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("ReadDump() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReadDumpEmpty(t *testing.T) {
	data := []byte{0x1B, 0x4C, 0x4A, 0x02, 0x02, 0x00}
	if _, err := ReadDump(context.Background(), bytes.NewReader(data), 2); err != ErrEmptyDump {
		t.Fatalf("ReadDump() error = %v, want ErrEmptyDump", err)
	}
}
