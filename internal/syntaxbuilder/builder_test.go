package syntaxbuilder

import (
	"testing"

	"cminus/internal/ast"
	"cminus/internal/symtab"
)

func TestEnterFunctionRedeclaration(t *testing.T) {
	b := New()
	if _, ok := b.EnterFunction("main", symtab.RTVoid, 1); !ok {
		t.Fatalf("expected first main declaration to succeed")
	}
	b.LeaveFunction()
	if _, ok := b.EnterFunction("main", symtab.RTVoid, 2); ok {
		t.Fatalf("expected redeclaration of main to fail")
	}
	if !b.Diagnostics().HasErrors() {
		t.Fatalf("expected a Redeclaration diagnostic")
	}
}

func TestVisitAssignmentCoercesLowerToHigher(t *testing.T) {
	b := New()
	id, _ := b.EnterFunction("main", symtab.RTVoid, 1)
	x, _ := b.VisitVarDecl("x", symtab.RTInt, 1)
	lhs := b.VisitIdentifier("x", 1)
	rhs := ast.Constant(ast.NNum, symtab.RTBool, ast.ConstInt(1), 1)

	assign := b.VisitAssignment(lhs, rhs, 1)
	if assign.ReturnType != symtab.RTInt {
		t.Fatalf("expected assignment result type Int, got %s", assign.ReturnType)
	}
	if assign.Right.Kind != ast.KindUnary || assign.Right.NodeType != ast.NCoercion {
		t.Fatalf("expected rhs wrapped in a Coercion node, got %+v", assign.Right)
	}
	_ = id
	_ = x
}

func TestVisitAssignmentRejectsNarrowing(t *testing.T) {
	b := New()
	b.EnterFunction("main", symtab.RTVoid, 1)
	b.VisitVarDecl("x", symtab.RTInt8, 1)
	lhs := b.VisitIdentifier("x", 1)
	rhs := ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(1000), 1)

	assign := b.VisitAssignment(lhs, rhs, 1)
	if assign.ReturnType != symtab.RTError {
		t.Fatalf("expected narrowing assignment to produce RTError, got %s", assign.ReturnType)
	}
	if !b.Diagnostics().HasErrors() {
		t.Fatalf("expected a TypeMismatch diagnostic")
	}
}

func TestVisitFuncCallArityMismatch(t *testing.T) {
	b := New()
	fn, _ := b.EnterFunction("f", symtab.RTInt, 1)
	b.VisitParameter("a", symtab.RTInt, false, 1)
	b.LeaveFunction()
	_ = fn

	call := b.VisitFuncCall("f", nil, 2)
	if call.ReturnType != symtab.RTError {
		t.Fatalf("expected arity mismatch to produce RTError")
	}
	if !b.Diagnostics().HasErrors() {
		t.Fatalf("expected an ArityMismatch diagnostic")
	}
}

func TestUndeclaredIdentifierSynthesizesErrorSentinel(t *testing.T) {
	b := New()
	n := b.VisitIdentifier("nope", 1)
	if n.SymbolID != symtab.ErrorID || n.ReturnType != symtab.RTError {
		t.Fatalf("expected error-sentinel symbol node, got id=%d rt=%s", n.SymbolID, n.ReturnType)
	}
	if !b.Diagnostics().HasErrors() {
		t.Fatalf("expected an Undeclared diagnostic")
	}
}

func TestReduceExpressionAppliesPrecedence(t *testing.T) {
	// 2 + 3 * 4 should reduce the `3 * 4` triple first regardless of
	// position, per spec's precedence-climbing rule.
	b := New()
	two := ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(2), 1)
	three := ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(3), 1)
	four := ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(4), 1)

	result := b.ReduceExpression(
		[]*ast.Node{two, three, four},
		[]ast.NodeType{ast.NAdd, ast.NMul},
		[]int{1, 1},
	)
	if result.NodeType != ast.NAdd {
		t.Fatalf("expected top-level node to be Add, got %s", result.NodeType)
	}
	if result.Right.NodeType != ast.NMul {
		t.Fatalf("expected right child to be the reduced Mul, got %s", result.Right.NodeType)
	}
}

func TestReduceExpressionLeftmostTieBreak(t *testing.T) {
	// 2 - 3 - 4 : both operators are additive-precedence; leftmost wins
	// first, producing a left-associative fold: (2 - 3) - 4.
	b := New()
	two := ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(2), 1)
	three := ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(3), 1)
	four := ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(4), 1)

	result := b.ReduceExpression(
		[]*ast.Node{two, three, four},
		[]ast.NodeType{ast.NSub, ast.NSub},
		[]int{1, 1},
	)
	if result.NodeType != ast.NSub {
		t.Fatalf("expected top node Sub, got %s", result.NodeType)
	}
	if result.Left.Kind != ast.KindBinary || result.Left.NodeType != ast.NSub {
		t.Fatalf("expected left-associative fold (2-3)-4, got left=%+v", result.Left)
	}
}
