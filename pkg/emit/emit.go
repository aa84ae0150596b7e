// Package emit holds the append-only IR buffer and the one-slot
// branch-fixup protocol that fuses a compare opcode with the JMP that
// follows it.
package emit

import "github.com/go-lj/bcir/pkg/ir"

// Emitter accumulates a prototype's lifted IR instructions.
type Emitter struct {
	insns []ir.Insn
}

// New returns an Emitter with capacity reserved for n instructions,
// the typical case of one IR instruction per bytecode instruction.
func New(n int) *Emitter {
	return &Emitter{insns: make([]ir.Insn, 0, n)}
}

// Emit appends insn to the buffer.
func (e *Emitter) Emit(insn ir.Insn) {
	e.insns = append(e.insns, insn)
}

// FixupBranch handles a bytecode JMP. If the instruction immediately
// preceding it is a ConditionalBranch still awaiting its target, that
// target is overwritten in place and the JMP is absorbed. This is
// how the two-instruction compare-then-jump idiom becomes one IR node.
// Otherwise a fresh Branch is appended. Only the last emitted
// instruction is ever a fixup candidate; FixupBranch never scans
// backward.
func (e *Emitter) FixupBranch(target ir.Label) {
	if n := len(e.insns); n > 0 {
		if cb, ok := e.insns[n-1].(ir.ConditionalBranch); ok {
			if _, pending := cb.Target.(ir.NoLabel); pending {
				cb.Target = target
				e.insns[n-1] = cb
				return
			}
		}
	}
	e.Emit(ir.Branch{Target: target})
}

// Insns returns the accumulated instruction sequence.
func (e *Emitter) Insns() []ir.Insn {
	return e.insns
}
