package icopt

import (
	"testing"

	"cminus/internal/flowgraph"
	"cminus/internal/icode"
	"cminus/internal/symtab"
)

func TestEliminateDeadCodeRemovesUnreachableTail(t *testing.T) {
	ic := icode.New()
	fn := symtab.ID(1)
	ic.Append(icode.Statement{Operator: icode.OpFunc, Operand1: opnd(icode.SymbolOperand(fn, symtab.RTVoid))})
	ic.Append(icode.Statement{Operator: icode.OpReturn})
	// Unreachable: nothing jumps here and the prior statement (Return)
	// already ended the block.
	ic.Append(icode.Statement{Operator: icode.OpAssign})

	g := flowgraph.Build(ic)
	ic2, g2 := EliminateDeadCode(ic, g)

	if ic2.Len() != 2 {
		t.Fatalf("expected dead Assign line to be eliminated, got %d lines: %s", ic2.Len(), ic2)
	}
	_ = g2
}

func TestEliminateDeadCodeIsIdempotent(t *testing.T) {
	ic := icode.New()
	fn := symtab.ID(1)
	ic.Append(icode.Statement{Operator: icode.OpFunc, Operand1: opnd(icode.SymbolOperand(fn, symtab.RTVoid))})
	ic.Append(icode.Statement{Operator: icode.OpReturn})
	ic.Append(icode.Statement{Operator: icode.OpAssign})

	g := flowgraph.Build(ic)
	ic2, g2 := EliminateDeadCode(ic, g)
	first := ic2.String()

	ic3, _ := EliminateDeadCode(ic2, g2)
	second := ic3.String()

	if first != second {
		t.Fatalf("expected DCE to be idempotent, got %q then %q", first, second)
	}
}

func opnd(o icode.Operand) *icode.Operand { return &o }
