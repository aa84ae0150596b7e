// Package lift translates a prototype's decoded bytecode instructions
// into the ir package's intermediate representation, one emit.Emitter
// call at a time.
package lift

import (
	"github.com/go-lj/bcir/pkg/bc"
	"github.com/go-lj/bcir/pkg/emit"
	"github.com/go-lj/bcir/pkg/ir"
	"github.com/go-lj/bcir/pkg/opcode"
	"github.com/pkg/errors"
)

// ErrUnsupportedOpcode is returned for bytecode families the lifter
// accepts but does not lower, see the "Open" row of the lifter table.
var ErrUnsupportedOpcode = errors.New("lift: unsupported opcode")

// Lift drives an emit.Emitter across proto's instructions and returns
// the resulting IR sequence. version is accepted for symmetry with
// bc.ReadDump and for lowering rules a future bytecode version might
// need to pick per-version, but no opcode's lowering is version-
// dependent today; proto.Instructions already carries the variant
// names bc.ReadDump resolved at decode time.
func Lift(proto *bc.Prototype, version int) ([]ir.Insn, error) {
	_ = version
	e := emit.New(len(proto.Instructions))
	for i, insn := range proto.Instructions {
		if err := lift(e, insn); err != nil {
			return nil, errors.Wrapf(err, "lift: instruction %d (%s)", i, insn.Name)
		}
	}
	return e.Insns(), nil
}

func basic(b ir.Basic) ir.Operand { return ir.BasicOperand{Value: b} }
func expr(x ir.Expr) ir.Operand   { return ir.ExprOperand{Value: x} }

func primitive(d uint16) (ir.Primitive, error) {
	switch d {
	case 0:
		return ir.PrimitiveNil, nil
	case 1:
		return ir.PrimitiveTrue, nil
	case 2:
		return ir.PrimitiveFalse, nil
	default:
		return 0, errors.Wrapf(bc.ErrMalformedPrimitive, "d=%d", d)
	}
}

func lift(e *emit.Emitter, in opcode.Instruction) error {
	a, b, c, d := in.A(), in.B(), in.C(), in.D()

	cmp := func(op ir.CmpOp) error {
		e.Emit(ir.ConditionalBranch{
			Cond:   expr(ir.Binary{Op: op, Lhs: ir.Var{Slot: uint32(a)}, Rhs: ir.Var{Slot: uint32(d)}}),
			Target: ir.NoLabel{},
		})
		return nil
	}
	assign := func(lhs, rhs ir.Operand) error {
		e.Emit(ir.Assign{Lhs: lhs, Rhs: rhs})
		return nil
	}
	binVN := func(op func(ir.Basic, ir.Basic) ir.Expr) error {
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(op(ir.Var{Slot: uint32(b)}, ir.Num{Index: uint32(c)})))
	}
	binNV := func(op func(ir.Basic, ir.Basic) ir.Expr) error {
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(op(ir.Num{Index: uint32(b)}, ir.Var{Slot: uint32(c)})))
	}
	binVV := func(op func(ir.Basic, ir.Basic) ir.Expr) error {
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(op(ir.Var{Slot: uint32(b)}, ir.Var{Slot: uint32(c)})))
	}

	switch in.Name {
	case "ISLT":
		return cmp(ir.CmpLt)
	case "ISGE":
		return cmp(ir.CmpGe)
	case "ISLE":
		return cmp(ir.CmpLe)
	case "ISGT":
		return cmp(ir.CmpGt)
	case "ISEQV", "ISEQS", "ISEQN", "ISEQP":
		return cmp(ir.CmpEq)
	case "ISNEV", "ISNES", "ISNEN", "ISNEP":
		return cmp(ir.CmpNe)

	case "MOV":
		return assign(basic(ir.Var{Slot: uint32(a)}), basic(ir.Var{Slot: uint32(d)}))
	case "NOT":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Not{Value: ir.Var{Slot: uint32(d)}}))
	case "UNM":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Negate{Value: ir.Var{Slot: uint32(d)}}))
	case "LEN":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Len{Value: ir.Var{Slot: uint32(d)}}))

	case "ADDVN":
		return binVN(func(l, r ir.Basic) ir.Expr { return ir.Add{Lhs: l, Rhs: r} })
	case "SUBVN":
		return binVN(func(l, r ir.Basic) ir.Expr { return ir.Sub{Lhs: l, Rhs: r} })
	case "MULVN":
		return binVN(func(l, r ir.Basic) ir.Expr { return ir.Mul{Lhs: l, Rhs: r} })
	case "DIVVN":
		return binVN(func(l, r ir.Basic) ir.Expr { return ir.Div{Lhs: l, Rhs: r} })
	case "MODVN":
		return binVN(func(l, r ir.Basic) ir.Expr { return ir.Mod{Lhs: l, Rhs: r} })

	case "ADDNV":
		return binNV(func(l, r ir.Basic) ir.Expr { return ir.Add{Lhs: l, Rhs: r} })
	case "SUBNV":
		return binNV(func(l, r ir.Basic) ir.Expr { return ir.Sub{Lhs: l, Rhs: r} })
	case "MULNV":
		return binNV(func(l, r ir.Basic) ir.Expr { return ir.Mul{Lhs: l, Rhs: r} })
	case "DIVNV":
		return binNV(func(l, r ir.Basic) ir.Expr { return ir.Div{Lhs: l, Rhs: r} })
	case "MODNV":
		// Remainder in both operand orders, same as MODVN.
		return binNV(func(l, r ir.Basic) ir.Expr { return ir.Mod{Lhs: l, Rhs: r} })

	case "ADDVV":
		return binVV(func(l, r ir.Basic) ir.Expr { return ir.Add{Lhs: l, Rhs: r} })
	case "SUBVV":
		return binVV(func(l, r ir.Basic) ir.Expr { return ir.Sub{Lhs: l, Rhs: r} })
	case "MULVV":
		return binVV(func(l, r ir.Basic) ir.Expr { return ir.Mul{Lhs: l, Rhs: r} })
	case "DIVVV":
		return binVV(func(l, r ir.Basic) ir.Expr { return ir.Div{Lhs: l, Rhs: r} })
	case "MODVV":
		return binVV(func(l, r ir.Basic) ir.Expr { return ir.Mod{Lhs: l, Rhs: r} })

	case "POW":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Pow{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.Var{Slot: uint32(c)}}))
	case "CAT":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Cat{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.Var{Slot: uint32(c)}}))

	case "KSTR":
		return assign(basic(ir.Var{Slot: uint32(a)}), basic(ir.Str{Index: uint32(d)}))
	case "KCDATA":
		return assign(basic(ir.Var{Slot: uint32(a)}), basic(ir.Constant{Index: uint32(d)}))
	case "KSHORT":
		// d is a signed 16-bit immediate, not a constant-table index.
		return assign(basic(ir.Var{Slot: uint32(a)}), basic(ir.SignedLiteral{Value: int32(int16(d))}))
	case "KNUM":
		return assign(basic(ir.Var{Slot: uint32(a)}), basic(ir.Num{Index: uint32(d)}))
	case "KPRI":
		p, err := primitive(d)
		if err != nil {
			return err
		}
		return assign(basic(ir.Var{Slot: uint32(a)}), basic(ir.Pri{Value: p}))
	case "KNIL":
		// Clears the slot range [a, d], one assignment per slot.
		for slot := uint32(a); slot <= uint32(d); slot++ {
			e.Emit(ir.Assign{
				Lhs: basic(ir.Var{Slot: slot}),
				Rhs: basic(ir.Pri{Value: ir.PrimitiveNil}),
			})
		}
		return nil

	case "UGET":
		return assign(basic(ir.Var{Slot: uint32(a)}), basic(ir.Upvalue{Slot: uint32(d)}))
	case "USETV":
		return assign(basic(ir.Upvalue{Slot: uint32(a)}), basic(ir.Var{Slot: uint32(d)}))
	case "USETS":
		return assign(basic(ir.Upvalue{Slot: uint32(a)}), basic(ir.Str{Index: uint32(d)}))
	case "USETN":
		return assign(basic(ir.Upvalue{Slot: uint32(a)}), basic(ir.Num{Index: uint32(d)}))
	case "USETP":
		p, err := primitive(d)
		if err != nil {
			return err
		}
		return assign(basic(ir.Upvalue{Slot: uint32(a)}), basic(ir.Pri{Value: p}))

	case "TGETV":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Index{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.Var{Slot: uint32(c)}}))
	case "TGETS":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Index{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.Str{Index: uint32(c)}}))
	case "TGETB":
		return assign(basic(ir.Var{Slot: uint32(a)}), expr(ir.Index{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.UnsignedLiteral{Value: uint32(c)}}))

	case "TSETV":
		return assign(expr(ir.Index{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.Var{Slot: uint32(c)}}), basic(ir.Var{Slot: uint32(a)}))
	case "TSETS":
		return assign(expr(ir.Index{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.Str{Index: uint32(c)}}), basic(ir.Var{Slot: uint32(a)}))
	case "TSETB":
		return assign(expr(ir.Index{Lhs: ir.Var{Slot: uint32(b)}, Rhs: ir.UnsignedLiteral{Value: uint32(c)}}), basic(ir.Var{Slot: uint32(a)}))

	case "RETM":
		e.Emit(ir.Return{Base: ir.Var{Slot: uint32(a)}, Count: int(d)})
		return nil
	case "RET":
		e.Emit(ir.Return{Base: ir.Var{Slot: uint32(a)}, Count: int(d) - 1})
		return nil
	case "RET0":
		e.Emit(ir.Return{Base: ir.Var{Slot: uint32(a)}, Count: 0})
		return nil
	case "RET1":
		e.Emit(ir.Return{Base: ir.Var{Slot: uint32(a)}, Count: 1})
		return nil

	case "JMP":
		e.FixupBranch(ir.LabelAt{BC: int(d)})
		return nil

	default:
		return errors.Wrapf(ErrUnsupportedOpcode, "%s", in.Name)
	}
}
