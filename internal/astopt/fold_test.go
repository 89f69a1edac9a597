package astopt

import (
	"testing"

	"cminus/internal/ast"
	"cminus/internal/symtab"
)

func TestFoldConstantsAddMul(t *testing.T) {
	// 2 + 3*4 -> 14, matching the spec §8 scenario "Constant fold."
	mul := ast.Binary(ast.NMul, symtab.RTInt, ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(3), 1),
		ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(4), 1), 1)
	add := ast.Binary(ast.NAdd, symtab.RTInt, ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(2), 1), mul, 1)

	table := symtab.New()
	fn := table.AddFunction("main", symtab.RTVoid, 1)
	tree := ast.NewTree()
	tree.Functions[fn] = &ast.FunctionRoot{Name: "main", Root: add}

	FoldConstants(tree, table)

	got := tree.Functions[fn].Root
	if got.Kind != ast.KindConstant || got.Value.Widened() != 14 {
		t.Fatalf("expected folded constant 14, got kind=%v value=%v", got.Kind, got.Value)
	}
}

func TestFoldDoesNotFoldDivisionByLiteralZero(t *testing.T) {
	div := ast.Binary(ast.NDiv, symtab.RTInt, ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(5), 1),
		ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(0), 1), 1)

	table := symtab.New()
	fn := table.AddFunction("main", symtab.RTVoid, 1)
	tree := ast.NewTree()
	tree.Functions[fn] = &ast.FunctionRoot{Name: "main", Root: div}

	FoldConstants(tree, table)

	got := tree.Functions[fn].Root
	if got.Kind != ast.KindBinary {
		t.Fatalf("expected division by literal zero to remain unfolded, got kind=%v", got.Kind)
	}
}

func TestFoldSignMinusNegatesInWidenedRep(t *testing.T) {
	neg := ast.Unary(ast.NSignMinus, symtab.RTInt, ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(7), 1), 1)

	table := symtab.New()
	fn := table.AddFunction("main", symtab.RTVoid, 1)
	tree := ast.NewTree()
	tree.Functions[fn] = &ast.FunctionRoot{Name: "main", Root: neg}

	FoldConstants(tree, table)

	got := tree.Functions[fn].Root
	if got.Kind != ast.KindConstant || got.Value.Widened() != -7 {
		t.Fatalf("expected folded constant -7, got kind=%v value=%v", got.Kind, got.Value)
	}
}
