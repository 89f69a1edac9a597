package icode

import (
	"testing"

	"cminus/internal/ast"
	"cminus/internal/symtab"
)

func buildSimpleMain(table *symtab.Table) *ast.Tree {
	tree := ast.NewTree()
	fn := table.AddFunction("main", symtab.RTVoid, 1)
	tree.Functions[fn] = &ast.FunctionRoot{Name: "main", Root: ast.Empty()}
	return tree
}

func TestGenerateEmptyMainProducesFuncAndReturn(t *testing.T) {
	table := symtab.New()
	tree := buildSimpleMain(table)

	ic, err := Generate(tree, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := ic.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected exactly 2 statements (Func, Return), got %d: %s", len(lines), ic)
	}
	if lines[0].Stmt.Operator != OpFunc {
		t.Fatalf("expected first statement Func, got %s", lines[0].Stmt.Operator)
	}
	if lines[1].Stmt.Operator != OpReturn {
		t.Fatalf("expected second statement Return, got %s", lines[1].Stmt.Operator)
	}
}

func TestGenerateMissingBodyIsFatal(t *testing.T) {
	table := symtab.New()
	tree := ast.NewTree()
	fn := table.AddFunction("main", symtab.RTVoid, 1)
	tree.Functions[fn] = &ast.FunctionRoot{Name: "main", Root: nil}

	if _, err := Generate(tree, table); err == nil {
		t.Fatalf("expected ICodeError for a function with no attached body")
	}
}

func TestIntermediateCodeCompactDropsRemoved(t *testing.T) {
	ic := New()
	ic.Append(Statement{Operator: OpFunc})
	ic.Append(Statement{Operator: OpAssign})
	ic.Append(Statement{Operator: OpReturn})

	ic.Remove(2)
	ic.Compact()

	if ic.Len() != 2 {
		t.Fatalf("expected 2 statements after compacting a removed one, got %d", ic.Len())
	}
	if s, _ := ic.Get(2); s.Operator != OpReturn {
		t.Fatalf("expected Return to shift into line 2, got %s", s.Operator)
	}
}

func TestArithOpSignedness(t *testing.T) {
	if arithOp(ast.NDiv, false) != OpIDiv {
		t.Fatalf("expected signed division to emit IDiv")
	}
	if arithOp(ast.NDiv, true) != OpDiv {
		t.Fatalf("expected unsigned division to emit Div")
	}
}

func TestNegateJumpIsInvolutive(t *testing.T) {
	ops := []Operator{OpJe, OpJne, OpJl, OpJg, OpJle, OpJge, OpJb, OpJa, OpJbe, OpJae, OpJz, OpJnz}
	for _, op := range ops {
		if negateJump(negateJump(op)) != op {
			t.Errorf("negateJump(negateJump(%s)) != %s", op, op)
		}
	}
}
