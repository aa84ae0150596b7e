// Package ir is the intermediate representation the lifter produces:
// an operand-normalized, sum-typed model distinguishing pure slot/
// constant references from the composite expressions built on top of
// them, plus a small instruction set with deferred branch targets.
package ir

// Basic is the sealed sum type for a pure operand reference: a value
// that names something (a slot, a constant, a literal) rather than
// computing one. The marker method keeps this a closed set so callers
// switch on it exhaustively instead of treating it as an open
// interface.
type Basic interface{ isBasic() }

// Var is a local variable slot.
type Var struct{ Slot uint32 }

func (Var) isBasic() {}

// Upvalue is an upvalue slot, captured from an enclosing prototype.
type Upvalue struct{ Slot uint32 }

func (Upvalue) isBasic() {}

// UnsignedLiteral is an operand carrying its value directly rather than
// through a constant table index.
type UnsignedLiteral struct{ Value uint32 }

func (UnsignedLiteral) isBasic() {}

// SignedLiteral is the signed counterpart of UnsignedLiteral.
type SignedLiteral struct{ Value int32 }

func (SignedLiteral) isBasic() {}

// Primitive distinguishes the three constant primitive values a
// KPRI/USETP operand can name.
type Primitive int

const (
	PrimitiveNil Primitive = iota
	PrimitiveTrue
	PrimitiveFalse
)

// Pri wraps a Primitive as an operand.
type Pri struct{ Value Primitive }

func (Pri) isBasic() {}

// Num indexes a prototype's numeric constant table.
type Num struct{ Index uint32 }

func (Num) isBasic() {}

// Str indexes a prototype's string/complex constant table.
type Str struct{ Index uint32 }

func (Str) isBasic() {}

// Table indexes a prototype's template-table constant.
type Table struct{ Index uint32 }

func (Table) isBasic() {}

// Func indexes a prototype's function-proto constant.
type Func struct{ Index uint32 }

func (Func) isBasic() {}

// Constant indexes a prototype's generic complex-constant table, for
// cases that don't fit Num/Str/Table/Func.
type Constant struct{ Index uint32 }

func (Constant) isBasic() {}

// BranchTarget is a raw branch-target operand, biased the way LuaJIT
// encodes jump displacements in an instruction's D field.
type BranchTarget struct{ Value uint32 }

func (BranchTarget) isBasic() {}
