package lift

import (
	"errors"
	"testing"

	"github.com/go-lj/bcir/pkg/bc"
	"github.com/go-lj/bcir/pkg/ir"
	"github.com/go-lj/bcir/pkg/opcode"
)

func adWord(op uint8, a uint8, d uint16) uint32 {
	return uint32(op) | uint32(a)<<8 | uint32(d)<<16
}

func TestCompareThenJumpFusion(t *testing.T) {
	proto := &bc.Prototype{
		Instructions: []opcode.Instruction{
			{Name: "ISLT", Word: adWord(0, 2, 3)},
			{Name: "JMP", Word: adWord(0, 0, 17)},
		},
	}
	insns, err := Lift(proto, 2)
	if err != nil {
		t.Fatalf("Lift() error: %v", err)
	}
	if len(insns) != 1 {
		t.Fatalf("len(insns) = %d, want 1", len(insns))
	}
	cb, ok := insns[0].(ir.ConditionalBranch)
	if !ok {
		t.Fatalf("insns[0] = %T, want ir.ConditionalBranch", insns[0])
	}
	bin, ok := cb.Cond.(ir.ExprOperand).Value.(ir.Binary)
	if !ok || bin.Op != ir.CmpLt {
		t.Fatalf("Cond = %#v, want Binary{Op: CmpLt}", cb.Cond)
	}
	if bin.Lhs != (ir.Var{Slot: 2}) || bin.Rhs != (ir.Var{Slot: 3}) {
		t.Errorf("Binary operands = %#v, %#v, want Var{2}, Var{3}", bin.Lhs, bin.Rhs)
	}
	target, ok := cb.Target.(ir.LabelAt)
	if !ok || target.BC != 17 {
		t.Errorf("Target = %#v, want LabelAt{BC: 17}", cb.Target)
	}
}

func TestLoneJumpEmitsBranch(t *testing.T) {
	proto := &bc.Prototype{
		Instructions: []opcode.Instruction{
			{Name: "JMP", Word: adWord(0, 0, 9)},
		},
	}
	insns, err := Lift(proto, 2)
	if err != nil {
		t.Fatalf("Lift() error: %v", err)
	}
	if len(insns) != 1 {
		t.Fatalf("len(insns) = %d, want 1", len(insns))
	}
	br, ok := insns[0].(ir.Branch)
	if !ok {
		t.Fatalf("insns[0] = %T, want ir.Branch", insns[0])
	}
	target, ok := br.Target.(ir.LabelAt)
	if !ok || target.BC != 9 {
		t.Errorf("Target = %#v, want LabelAt{BC: 9}", br.Target)
	}
}

func TestReturnLowering(t *testing.T) {
	tests := []struct {
		name      string
		a         uint8
		d         uint16
		wantBase  uint32
		wantCount int
	}{
		{"RET0", 4, 1, 4, 0},
		{"RET", 2, 4, 2, 3},
		{"RET1", 5, 1, 5, 1},
		{"RETM", 1, 6, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proto := &bc.Prototype{
				Instructions: []opcode.Instruction{
					{Name: tt.name, Word: adWord(0, tt.a, tt.d)},
				},
			}
			insns, err := Lift(proto, 2)
			if err != nil {
				t.Fatalf("Lift() error: %v", err)
			}
			ret, ok := insns[0].(ir.Return)
			if !ok {
				t.Fatalf("insns[0] = %T, want ir.Return", insns[0])
			}
			if ret.Base != (ir.Var{Slot: tt.wantBase}) || ret.Count != tt.wantCount {
				t.Errorf("Return = %#v, want {Base: Var{%d}, Count: %d}", ret, tt.wantBase, tt.wantCount)
			}
		})
	}
}

func TestShortConstantSignExtends(t *testing.T) {
	proto := &bc.Prototype{
		Instructions: []opcode.Instruction{
			{Name: "KSHORT", Word: adWord(0, 3, 0xFFFF)}, // -1 as int16
		},
	}
	insns, err := Lift(proto, 2)
	if err != nil {
		t.Fatalf("Lift() error: %v", err)
	}
	as, ok := insns[0].(ir.Assign)
	if !ok {
		t.Fatalf("insns[0] = %T, want ir.Assign", insns[0])
	}
	rhs := as.Rhs.(ir.BasicOperand).Value
	if rhs != (ir.SignedLiteral{Value: -1}) {
		t.Errorf("Rhs = %#v, want SignedLiteral{-1}", rhs)
	}
}

func TestNilRangeAssignsEachSlot(t *testing.T) {
	proto := &bc.Prototype{
		Instructions: []opcode.Instruction{
			{Name: "KNIL", Word: adWord(0, 2, 4)},
		},
	}
	insns, err := Lift(proto, 2)
	if err != nil {
		t.Fatalf("Lift() error: %v", err)
	}
	if len(insns) != 3 {
		t.Fatalf("len(insns) = %d, want 3 (slots 2..4)", len(insns))
	}
	for i, insn := range insns {
		as, ok := insn.(ir.Assign)
		if !ok {
			t.Fatalf("insns[%d] = %T, want ir.Assign", i, insn)
		}
		lhs := as.Lhs.(ir.BasicOperand).Value
		if lhs != (ir.Var{Slot: uint32(2 + i)}) {
			t.Errorf("insns[%d].Lhs = %#v, want Var{%d}", i, lhs, 2+i)
		}
		rhs := as.Rhs.(ir.BasicOperand).Value
		if rhs != (ir.Pri{Value: ir.PrimitiveNil}) {
			t.Errorf("insns[%d].Rhs = %#v, want Pri{Nil}", i, rhs)
		}
	}
}

func TestMalformedPrimitive(t *testing.T) {
	proto := &bc.Prototype{
		Instructions: []opcode.Instruction{
			{Name: "KPRI", Word: adWord(0, 0, 3)},
		},
	}
	_, err := Lift(proto, 2)
	if !errors.Is(err, bc.ErrMalformedPrimitive) {
		t.Fatalf("Lift() error = %v, want ErrMalformedPrimitive", err)
	}
}

func TestUnsupportedOpcode(t *testing.T) {
	proto := &bc.Prototype{
		Instructions: []opcode.Instruction{
			{Name: "TNEW", Word: adWord(0, 0, 0)},
		},
	}
	if _, err := Lift(proto, 2); !errors.Is(err, ErrUnsupportedOpcode) {
		t.Fatal("Lift() error = nil, want ErrUnsupportedOpcode")
	}
}
