// Package bc parses a LuaJIT 2.x bytecode dump into an in-memory model:
// a sequence of prototypes, each owning its decoded instruction stream,
// constants, and optional debug information.
package bc

import (
	"github.com/go-lj/bcir/pkg/opcode"
	"github.com/pkg/errors"
)

var (
	// ErrBadMagic is returned when the header does not match the
	// four-byte LuaJIT dump signature.
	ErrBadMagic = errors.New("bc: bad magic header")
	// ErrUnexpectedEOF is returned when the stream is exhausted before
	// a structural requirement was met.
	ErrUnexpectedEOF = errors.New("bc: unexpected end of stream")
	// ErrCorruptPrototype is returned when a prototype's declared size
	// does not match the bytes actually consumed for it.
	ErrCorruptPrototype = errors.New("bc: corrupt prototype")
	// ErrEmptyDump is returned when the stream ends with no prototypes.
	ErrEmptyDump = errors.New("bc: empty dump")
	// ErrMalformedPrimitive is returned for a KPRI/USETP operand whose
	// d field is not 0, 1, or 2.
	ErrMalformedPrimitive = errors.New("bc: malformed primitive operand")
)

// magic is the four-byte LuaJIT 2.x dump signature: ESC L J 2.
var magic = [4]byte{0x1B, 0x4C, 0x4A, 0x02}

const flagStripped = 1 << 1

// ReadOptions configures ReadDump. Version selects the opcode decode
// table; there is currently nothing else to configure, since file I/O,
// flag parsing, and CLI concerns all live outside this package.
type ReadOptions struct {
	Version int
}

// Dump is a parsed bytecode chunk: a stripped flag, an optional source
// name, and the prototypes it contains in post-order.
type Dump struct {
	Stripped bool
	Name     string
	HasName  bool
	Protos   []*Prototype
	Main     int
}

// Prototype is one compiled Lua function: its code, constants, and
// optional debug metadata, plus its own position within the dump.
type Prototype struct {
	Index        int
	Flags        byte
	NumParams    byte
	FrameSize    byte
	Instructions []opcode.Instruction
	Upvalues     []uint16
	Complex      []Complex
	Numerics     []Numeric
	Debug        *DebugInfo
}
