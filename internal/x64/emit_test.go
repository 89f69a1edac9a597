package x64

import (
	"strings"
	"testing"

	"cminus/internal/ast"
	"cminus/internal/astopt"
	"cminus/internal/flowgraph"
	"cminus/internal/icode"
	"cminus/internal/symtab"
)

func TestEmitEmptyMainProducesLabelAndRet(t *testing.T) {
	table := symtab.New()
	tree := ast.NewTree()
	fn := table.AddFunction("main", symtab.RTVoid, 1)
	tree.Functions[fn] = &ast.FunctionRoot{Name: "main", Root: ast.Empty()}
	astopt.FoldConstants(tree, table)

	ic, err := icode.Generate(tree, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := flowgraph.Build(ic)

	asm := Emit(ic, table, g)
	if !strings.Contains(asm, ".globl main") {
		t.Fatalf("expected a main label, got:\n%s", asm)
	}
	if !strings.Contains(asm, "ret") {
		t.Fatalf("expected a ret instruction, got:\n%s", asm)
	}
}

func TestFrameSizeGrowsWithDistinctSymbols(t *testing.T) {
	ic := icode.New()
	fn := symtab.ID(1)
	a, b := symtab.ID(10), symtab.ID(11)
	ic.Append(icode.Statement{Operator: icode.OpFunc, Operand1: opnd(icode.SymbolOperand(fn, symtab.RTVoid))})
	ic.Append(icode.Statement{
		OpType: icode.SizeDouble, Operator: icode.OpAssign,
		Operand1: opnd(icode.Immediate(1, symtab.RTInt)),
		Target:   opnd(icode.SymbolOperand(a, symtab.RTInt)),
	})
	ic.Append(icode.Statement{
		OpType: icode.SizeDouble, Operator: icode.OpAssign,
		Operand1: opnd(icode.Immediate(2, symtab.RTInt)),
		Target:   opnd(icode.SymbolOperand(b, symtab.RTInt)),
	})

	if got := FrameSize(ic); got != 16 {
		t.Fatalf("expected two 8-byte slots (16 bytes), got %d", got)
	}
}

func opnd(o icode.Operand) *icode.Operand { return &o }
