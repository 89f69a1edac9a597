package cparser

import (
	"strings"
	"testing"

	"cminus/internal/ast"
)

func TestScanTokensSkipsTriviaAndTracksLines(t *testing.T) {
	src := "int x; // comment\nint y;"
	toks, err := NewScanner(src).ScanTokens()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []TokenType{TokInt, TokIdent, TokSemi, TokInt, TokIdent, TokSemi, TokEOF}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s want %s", i, types[i], want[i])
		}
	}
	if toks[3].Line != 2 {
		t.Fatalf("expected second 'int' on line 2, got %d", toks[3].Line)
	}
}

func TestParseEmptyVoidMain(t *testing.T) {
	res, err := Parse("void main(void) { }")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Diags.Empty() {
		t.Fatalf("expected no diagnostics, got %s", res.Diags.Summary())
	}
	if !res.Table.HasMain() {
		t.Fatalf("expected main to be registered")
	}
	root := res.Tree.Functions[res.Table.MainID()]
	if root == nil || root.Root == nil {
		t.Fatalf("expected an attached (possibly Empty) root for main")
	}
}

func TestParseArithmeticAppliesPrecedence(t *testing.T) {
	res, err := Parse("int main(void) { return 2 + 3 * 4; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	root := res.Tree.Functions[res.Table.MainID()]
	ret := root.Root
	if ret.NodeType != ast.NReturn {
		t.Fatalf("expected a Return node, got %s", ret.NodeType)
	}
	addNode := ret.Child
	if addNode.NodeType != ast.NAdd {
		t.Fatalf("expected '+' to be the outermost op (lower precedence), got %s", addNode.NodeType)
	}
	if addNode.Right.NodeType != ast.NMul {
		t.Fatalf("expected '*' nested on the right of '+', got %s", addNode.Right.NodeType)
	}
}

func TestParseUndeclaredIdentifierReportsDiagnostic(t *testing.T) {
	res, err := Parse("int main(void) { return x; }")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Diags.Empty() {
		t.Fatalf("expected an Undeclared diagnostic")
	}
	if !strings.Contains(res.Diags.Summary(), "x") {
		t.Fatalf("expected diagnostic to mention 'x', got %s", res.Diags.Summary())
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	src := `
int f(int n) {
	if (n < 1) {
		return 0;
	} else {
		return n;
	}
	while (n) {
		n = n - 1;
	}
	return n;
}
`
	res, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Diags.Empty() {
		t.Fatalf("expected no diagnostics, got %s", res.Diags.Summary())
	}
}

func TestParseFunctionCallArity(t *testing.T) {
	src := `
int add(int a, int b) {
	return a + b;
}
int main(void) {
	return add(1);
}
`
	res, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Diags.Empty() {
		t.Fatalf("expected an ArityMismatch diagnostic")
	}
}

func TestParseArrayDeclarationAndAccess(t *testing.T) {
	src := `
int a[10];
int main(void) {
	a[0] = 1;
	return a[0];
}
`
	res, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Diags.Empty() {
		t.Fatalf("expected no diagnostics, got %s", res.Diags.Summary())
	}
}
