package bc

import (
	"context"
	"io"

	"github.com/go-lj/bcir/pkg/leb"
	"github.com/go-lj/bcir/pkg/opcode"
	"github.com/go-lj/bcir/pkg/xbuf"
	"github.com/pkg/errors"
)

type decoder struct {
	buf  *xbuf.Buffer
	opts ReadOptions
	insn *opcode.Generated
}

// ReadDump parses a complete LuaJIT 2.x bytecode dump from r. version
// selects the opcode decode table; ctx is checked once per prototype
// boundary and never mid-prototype, matching the format's single-pass,
// unsuspendable parse.
func ReadDump(ctx context.Context, r io.Reader, version int) (*Dump, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "bc: read dump")
	}

	d := &decoder{
		buf:  xbuf.New(data, xbuf.Little),
		opts: ReadOptions{Version: version},
		insn: opcode.Default,
	}
	dump, err := d.readDump(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return dump, nil
}

// classify folds lower-layer failure modes into this package's error
// kinds: a varint that outruns its width means the stream lost
// alignment (corrupt), and a short buffer is an unexpected EOF. The
// original sentinel stays in the message so the byte-level cause isn't
// lost.
func classify(err error) error {
	switch {
	case errors.Is(err, leb.ErrOverflow):
		return errors.Wrapf(ErrCorruptPrototype, "%v", err)
	case errors.Is(err, xbuf.ErrUnexpectedEOF):
		return errors.Wrapf(ErrUnexpectedEOF, "%v", err)
	default:
		return err
	}
}

func (d *decoder) readDump(ctx context.Context) (*Dump, error) {
	got, err := d.buf.Raw(len(magic))
	if err != nil {
		return nil, errors.Wrap(ErrBadMagic, "bc: reading header")
	}
	for i, b := range got {
		if b != magic[i] {
			return nil, ErrBadMagic
		}
	}

	flags, err := d.buf.ULEB32()
	if err != nil {
		return nil, errors.Wrap(err, "bc: reading header flags")
	}
	dump := &Dump{Stripped: flags&flagStripped != 0}

	if !dump.Stripped {
		nameLen, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading source name length")
		}
		name, err := d.buf.String(int(nameLen))
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading source name")
		}
		dump.Name = name
		dump.HasName = true
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		size, err := d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading prototype frame size")
		}
		if size == 0 {
			break
		}

		proto, err := d.readPrototype(len(dump.Protos), dump.Stripped, int(size))
		if err != nil {
			return nil, err
		}
		dump.Protos = append(dump.Protos, proto)
	}

	if len(dump.Protos) == 0 {
		return nil, ErrEmptyDump
	}
	dump.Main = len(dump.Protos) - 1
	return dump, nil
}

func (d *decoder) readPrototype(index int, stripped bool, size int) (*Prototype, error) {
	start := d.buf.Pos()

	fields, err := d.buf.Raw(4)
	if err != nil {
		return nil, errors.Wrap(err, "bc: reading prototype header bytes")
	}
	proto := &Prototype{
		Index:     index,
		Flags:     fields[0],
		NumParams: fields[1],
		FrameSize: fields[2],
	}
	sizeuv := int(fields[3])

	sizekgc, err := d.buf.ULEB32()
	if err != nil {
		return nil, errors.Wrap(err, "bc: reading sizekgc")
	}
	sizekn, err := d.buf.ULEB32()
	if err != nil {
		return nil, errors.Wrap(err, "bc: reading sizekn")
	}
	sizeinsn, err := d.buf.ULEB32()
	if err != nil {
		return nil, errors.Wrap(err, "bc: reading sizeinsn")
	}

	var sizedbg, firstline, numline uint32
	if !stripped {
		sizedbg, err = d.buf.ULEB32()
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading sizedbg")
		}
		if sizedbg != 0 {
			firstline, err = d.buf.ULEB32()
			if err != nil {
				return nil, errors.Wrap(err, "bc: reading firstline")
			}
			numline, err = d.buf.ULEB32()
			if err != nil {
				return nil, errors.Wrap(err, "bc: reading numline")
			}
		}
	}

	proto.Instructions = make([]opcode.Instruction, sizeinsn)
	for i := range proto.Instructions {
		word, err := d.buf.Uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "bc: reading instruction %d", i)
		}
		decoded, err := d.insn.Decode(word, d.opts.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "bc: decoding instruction %d", i)
		}
		proto.Instructions[i] = decoded
	}

	proto.Upvalues = make([]uint16, sizeuv)
	for i := range proto.Upvalues {
		uv, err := d.buf.Uint16()
		if err != nil {
			return nil, errors.Wrapf(err, "bc: reading upvalue %d", i)
		}
		proto.Upvalues[i] = uv
	}

	proto.Complex = make([]Complex, sizekgc)
	for i := range proto.Complex {
		c, err := d.readComplex(index)
		if err != nil {
			return nil, errors.Wrapf(err, "bc: reading complex constant %d", i)
		}
		proto.Complex[i] = c
	}

	proto.Numerics = make([]Numeric, sizekn)
	for i := range proto.Numerics {
		n, err := d.readNumeric()
		if err != nil {
			return nil, errors.Wrapf(err, "bc: reading numeric constant %d", i)
		}
		proto.Numerics[i] = n
	}

	if sizedbg > 0 {
		dbg, err := d.readDebugBlock(int(sizeinsn), int(numline), sizeuv)
		if err != nil {
			return nil, errors.Wrap(err, "bc: reading debug block")
		}
		dbg.FirstLine = firstline
		dbg.NumLine = numline
		proto.Debug = dbg
	}

	if consumed := d.buf.Pos() - start; consumed != size {
		return nil, errors.Wrapf(ErrCorruptPrototype, "declared size %d, consumed %d", size, consumed)
	}

	return proto, nil
}
