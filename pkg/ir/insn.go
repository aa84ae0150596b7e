package ir

// Operand is the sealed sum type `Basic(b) | Expr(e)` from the data
// model: either a pure reference, or a composite expression built from
// references.
type Operand interface{ isOperand() }

// BasicOperand wraps a Basic as an Operand.
type BasicOperand struct{ Value Basic }

func (BasicOperand) isOperand() {}

// ExprOperand wraps an Expr as an Operand.
type ExprOperand struct{ Value Expr }

func (ExprOperand) isOperand() {}

// Label is the sealed sum type for a branch target: either absent
// (a pending conditional still awaiting fixup) or resolved to a source
// bytecode offset, and optionally an index into the emitted IR
// sequence once a later pass has resolved it.
type Label interface{ isLabel() }

// NoLabel marks a ConditionalBranch whose target hasn't been fixed up
// yet, the state emit.Emitter.FixupBranch looks for on the most recently emitted
// instruction.
type NoLabel struct{}

func (NoLabel) isLabel() {}

// LabelAt names a branch target by its source bytecode offset. IR is
// left at its zero value until a later pass resolves the offset to an
// index into the emitted instruction sequence.
type LabelAt struct {
	IR int
	BC int
}

func (LabelAt) isLabel() {}

// Insn is the sealed sum type for one emitted IR instruction.
type Insn interface{ isInsn() }

// Assign is `lhs = rhs`.
type Assign struct{ Lhs, Rhs Operand }

func (Assign) isInsn() {}

// ConditionalBranch is a compare-and-branch, fused from a compare
// opcode and (if one followed) its JMP, see pkg/emit.
type ConditionalBranch struct {
	Cond   Operand
	Target Label
}

func (ConditionalBranch) isInsn() {}

// Branch is an unconditional jump with no preceding pending compare.
type Branch struct{ Target Label }

func (Branch) isInsn() {}

// Return lowers the RET family: Base is the first returned slot, Count
// is the number of values returned. RETM's d field is not nret-biased
// the way RET/RET0/RET1's is, so its Count is d unmodified.
type Return struct {
	Base  Basic
	Count int
}

func (Return) isInsn() {}
