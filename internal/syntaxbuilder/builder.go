// Package syntaxbuilder implements the Syntax Builder (spec §4.1): it
// consumes parse events and produces a SyntaxTree and SymbolTable with
// correct scoping, declaration-vs-use disambiguation, operator
// precedence resolution, and implicit coercion.
package syntaxbuilder

import (
	"strconv"

	"cminus/internal/ast"
	"cminus/internal/diag"
	"cminus/internal/symtab"
)

// Builder exclusively owns the Table and Tree until Result surrenders
// them (spec §5: "the Syntax Builder exclusively owns the SymbolTable
// and AST until result() surrenders them").
type Builder struct {
	Table *symtab.Table
	Tree  *ast.Tree
	scope *symtab.ScopeManager
	diags diag.Bag

	currentFunc symtab.ID
	inFunction  bool
	currentLine int
}

// New returns a Builder with a fresh Table and Tree and a single open
// (global) scope.
func New() *Builder {
	return &Builder{
		Table: symtab.New(),
		Tree:  ast.NewTree(),
		scope: symtab.NewScopeManager(),
	}
}

// Result is what Builder.Result surrenders to the IC Generator: the
// completed Tree, Table, and any accumulated diagnostics.
type Result struct {
	Tree  *ast.Tree
	Table *symtab.Table
	Diags *diag.Bag
}

// Result surrenders ownership of the Tree and Table to the caller.
func (b *Builder) Result() Result {
	return Result{Tree: b.Tree, Table: b.Table, Diags: &b.diags}
}

// Diagnostics returns every diagnostic accumulated so far without
// ending the build.
func (b *Builder) Diagnostics() *diag.Bag { return &b.diags }

// SetLine records the line of the top-level declaration the parser is
// starting. No Visit method reads it: diagnostics and nodes take the
// line passed to each call.
func (b *Builder) SetLine(line int) { b.currentLine = line }

// EnterFunction registers a new function symbol, fails with a
// Redeclaration diagnostic if name is already bound in the outermost
// (global) scope, otherwise opens a new local scope and sets the
// "current function" context.
func (b *Builder) EnterFunction(name string, ret symtab.ReturnType, line int) (symtab.ID, bool) {
	if b.scope.IsDefinedInnermost(name) && b.scope.AtGlobalScope() {
		b.diags.Add(diag.Redeclaration(line, name))
		return symtab.ErrorID, false
	}
	id := b.Table.AddFunction(name, ret, line)
	b.scope.Bind(name, id)
	b.scope.EnterNewScope()
	b.currentFunc = id
	b.inFunction = true
	return id, true
}

// LeaveFunction pops back to the global scope and clears the current
// function context. It does not itself attach the body root — callers
// still call AttachRoot once the body has been fully built, matching
// spec §4.1's "exactly one call per function" invariant on attach_root.
func (b *Builder) LeaveFunction() {
	for !b.scope.AtGlobalScope() {
		b.scope.LeaveScope()
	}
	b.inFunction = false
	b.currentFunc = symtab.ErrorID
}

// EnterNewScope pushes an empty name-resolution frame.
func (b *Builder) EnterNewScope() { b.scope.EnterNewScope() }

// LeaveScope pops the innermost frame; the symbols it bound remain
// reachable by id (spec §4.1).
func (b *Builder) LeaveScope() { b.scope.LeaveScope() }

// currentScope returns the Scope a freshly added symbol should carry:
// Local{current_function} inside a function body, Global otherwise.
func (b *Builder) currentScope() symtab.Scope {
	if b.inFunction {
		return symtab.Scope{Global: false, OwningFunction: b.currentFunc}
	}
	return symtab.Scope{Global: true}
}

// AddSymbol registers sym, failing with a Redeclaration diagnostic if
// its name is already bound in the innermost scope.
func (b *Builder) AddSymbol(sym symtab.Symbol) (symtab.ID, bool) {
	if b.scope.IsDefinedInnermost(sym.Name) {
		b.diags.Add(diag.Redeclaration(sym.Line, sym.Name))
		return symtab.ErrorID, false
	}
	id := b.Table.AddSymbol(sym, b.currentScope())
	b.scope.Bind(sym.Name, id)
	return id, true
}

// VisitVarDecl declares a variable of the given declared type, the way
// a var_decl_maybe_init rule inherits decl_type from its enclosing
// var_declaration (spec §6).
func (b *Builder) VisitVarDecl(name string, declType symtab.ReturnType, line int) (symtab.ID, bool) {
	return b.AddSymbol(symtab.Symbol{Name: name, ReturnType: declType, SymbolType: symtab.STVariable, Line: line})
}

// VisitParameter declares a function parameter, Array controlling
// whether it is recorded as ArrayParam or Parameter.
func (b *Builder) VisitParameter(name string, declType symtab.ReturnType, array bool, line int) (symtab.ID, bool) {
	st := symtab.STParameter
	if array {
		st = symtab.STArrayParam
	}
	return b.AddSymbol(symtab.Symbol{Name: name, ReturnType: declType, SymbolType: st, Line: line})
}

// resolve looks up name, emitting an Undeclared diagnostic and
// synthesizing the error-sentinel Symbol node spec §4.1 names for
// "best-effort recovery" when no binding exists.
func (b *Builder) resolve(name string, line int) (*ast.Node, bool) {
	id, ok := b.scope.Resolve(name)
	if !ok {
		b.diags.Add(diag.Undeclared(line, name))
		return ast.SymbolNode(ast.NId, symtab.RTError, symtab.ErrorID, line), false
	}
	sym := b.Table.MustGet(id)
	return ast.SymbolNode(ast.NId, sym.ReturnType, id, line), true
}

// VisitIdentifier resolves a bare identifier reference to a Symbol
// node.
func (b *Builder) VisitIdentifier(name string, line int) *ast.Node {
	n, _ := b.resolve(name, line)
	return n
}

// coerce wraps n in a Coercion node targeting rt, or returns n
// unchanged if rt == n.ReturnType. Call sites first check CoercesTo.
func coerce(n *ast.Node, rt symtab.ReturnType, line int) *ast.Node {
	if n.ReturnType == rt {
		return n
	}
	return ast.Unary(ast.NCoercion, rt, n, line)
}

// VisitAssignment issues a Coercion node wrapping rhs when rhs's type
// is strictly lower than lhs's under the coercion order; fails with a
// TypeMismatch diagnostic if no such coercion exists (spec §4.1).
func (b *Builder) VisitAssignment(lhs, rhs *ast.Node, line int) *ast.Node {
	if lhs.IsError() || rhs.IsError() {
		return ast.Binary(ast.NAssignment, symtab.RTError, lhs, rhs, line)
	}
	if rhs.ReturnType == lhs.ReturnType {
		return ast.Binary(ast.NAssignment, lhs.ReturnType, lhs, rhs, line)
	}
	if !rhs.ReturnType.CoercesTo(lhs.ReturnType) {
		b.diags.Add(diag.TypeMismatch(line, rhs.ReturnType.String(), lhs.ReturnType.String()))
		return ast.Binary(ast.NAssignment, symtab.RTError, lhs, rhs, line)
	}
	wrapped := coerce(rhs, lhs.ReturnType, line)
	return ast.Binary(ast.NAssignment, lhs.ReturnType, lhs, wrapped, line)
}

// VisitFuncCall resolves name to a function id, fails with an
// ArityMismatch diagnostic on argument-count mismatch, and inserts a
// per-argument Coercion to the declared parameter type where legal
// (TypeMismatch otherwise).
func (b *Builder) VisitFuncCall(name string, args []*ast.Node, line int) *ast.Node {
	id, ok := b.scope.Resolve(name)
	if !ok {
		b.diags.Add(diag.Undeclared(line, name))
		return ast.SymbolNode(ast.NFunctionCall, symtab.RTError, symtab.ErrorID, line)
	}
	fnSym := b.Table.MustGet(id)
	fi := b.Table.FunctionInfo(id)
	params := fi.Parameters
	if len(params) != len(args) {
		b.diags.Add(diag.ArityMismatch(line, name, len(params), len(args)))
		return ast.SymbolNode(ast.NFunctionCall, symtab.RTError, id, line)
	}

	coerced := make([]*ast.Node, len(args))
	anyErr := false
	for i, arg := range args {
		if arg.IsError() {
			anyErr = true
			coerced[i] = arg
			continue
		}
		paramSym := b.Table.MustGet(params[i])
		switch {
		case arg.ReturnType == paramSym.ReturnType:
			coerced[i] = arg
		case arg.ReturnType.CoercesTo(paramSym.ReturnType):
			coerced[i] = coerce(arg, paramSym.ReturnType, line)
		default:
			b.diags.Add(diag.TypeMismatch(line, arg.ReturnType.String(), paramSym.ReturnType.String()))
			anyErr = true
			coerced[i] = arg
		}
	}

	ret := fnSym.ReturnType
	if anyErr {
		ret = symtab.RTError
	}
	call := ast.SymbolNode(ast.NFunctionCall, ret, id, line)
	call.Child = buildExprList(coerced, line)
	return call
}

// buildExprList threads a left-to-right argument list into a chain of
// ExpressionList nodes, matching the recursive shape ICG's
// visit_expr_list walks (original: ivisitor.rs).
func buildExprList(args []*ast.Node, line int) *ast.Node {
	if len(args) == 0 {
		return ast.Empty()
	}
	var list *ast.Node
	for i := len(args) - 1; i >= 0; i-- {
		if list == nil {
			list = ast.Unary(ast.NExpressionList, args[i].ReturnType, args[i], line)
		} else {
			list = ast.Binary(ast.NExpressionList, args[i].ReturnType, args[i], list, line)
		}
	}
	return list
}

// join returns whichever of a, b is the coercion-order maximum —
// "the join of l and r under the coercion order" spec §4.1 names for
// visit_binary's result type.
func join(a, b symtab.ReturnType) (symtab.ReturnType, bool) {
	ao, ok1 := a.Order()
	bo, ok2 := b.Order()
	if !ok1 || !ok2 {
		return symtab.RTError, false
	}
	if ao >= bo {
		return a, true
	}
	return b, true
}

// VisitBinary computes the join type of l and r, inserts a Coercion on
// whichever side is strictly lower, and for relational operators fixes
// the result type to Bool.
func (b *Builder) VisitBinary(op ast.NodeType, l, r *ast.Node, line int) *ast.Node {
	if l.IsError() || r.IsError() {
		return ast.Binary(op, symtab.RTError, l, r, line)
	}
	operandType, ok := join(l.ReturnType, r.ReturnType)
	if !ok {
		b.diags.Add(diag.TypeMismatch(line, l.ReturnType.String(), r.ReturnType.String()))
		return ast.Binary(op, symtab.RTError, l, r, line)
	}
	left, right := coerce(l, operandType, line), coerce(r, operandType, line)

	resultType := operandType
	if op.IsRelational() || op == ast.NAnd || op == ast.NOr {
		resultType = symtab.RTBool
	}
	return ast.Binary(op, resultType, left, right, line)
}

// VisitUnary implements SignPlus/SignMinus (preserve child type) and
// Not (result Bool, coercing the child to Bool if legal).
func (b *Builder) VisitUnary(op ast.NodeType, child *ast.Node, line int) *ast.Node {
	if child.IsError() {
		return ast.Unary(op, symtab.RTError, child, line)
	}
	switch op {
	case ast.NSignPlus, ast.NSignMinus:
		return ast.Unary(op, child.ReturnType, child, line)
	case ast.NNot:
		if child.ReturnType == symtab.RTBool {
			return ast.Unary(op, symtab.RTBool, child, line)
		}
		if !child.ReturnType.CoercesTo(symtab.RTBool) {
			b.diags.Add(diag.TypeMismatch(line, child.ReturnType.String(), symtab.RTBool.String()))
			return ast.Unary(op, symtab.RTError, child, line)
		}
		return ast.Unary(op, symtab.RTBool, coerce(child, symtab.RTBool, line), line)
	default:
		return ast.Unary(op, child.ReturnType, child, line)
	}
}

// VisitArrayAccess resolves name to an array symbol and folds index
// into an ArrayAccess node of the array's base element type.
func (b *Builder) VisitArrayAccess(name string, index *ast.Node, line int) *ast.Node {
	id, ok := b.scope.Resolve(name)
	if !ok {
		b.diags.Add(diag.Undeclared(line, name))
		return ast.SymbolNode(ast.NArrayAccess, symtab.RTError, symtab.ErrorID, line)
	}
	sym := b.Table.MustGet(id)
	if !sym.ReturnType.IsArray() {
		b.diags.Add(diag.TypeMismatch(line, sym.ReturnType.String(), "array"))
		return ast.SymbolNode(ast.NArrayAccess, symtab.RTError, id, line)
	}
	base := ast.SymbolNode(ast.NId, sym.ReturnType, id, line)
	return ast.Binary(ast.NArrayAccess, sym.ReturnType.BaseType(), base, index, line)
}

// VisitReturn builds a Return node; value may be nil for a bare
// `return;`.
func (b *Builder) VisitReturn(value *ast.Node, line int) *ast.Node {
	if value == nil {
		return ast.Unary(ast.NReturn, symtab.RTVoid, ast.Empty(), line)
	}
	return ast.Unary(ast.NReturn, value.ReturnType, value, line)
}

// VisitIf builds an If node; with elseBranch set, its right child is an
// IfTargets node pairing the two branches.
func (b *Builder) VisitIf(cond, thenBranch, elseBranch *ast.Node, line int) *ast.Node {
	if elseBranch == nil {
		then := ast.Binary(ast.NIf, symtab.RTVoid, cond, thenBranch, line)
		return then
	}
	branches := ast.Binary(ast.NIfTargets, symtab.RTVoid, thenBranch, elseBranch, line)
	return ast.Binary(ast.NIf, symtab.RTVoid, cond, branches, line)
}

// VisitWhile builds a While node.
func (b *Builder) VisitWhile(cond, body *ast.Node, line int) *ast.Node {
	return ast.Binary(ast.NWhile, symtab.RTVoid, cond, body, line)
}

// VisitStatementList threads a sequence of statements into a
// right-leaning chain of StatementList nodes.
func (b *Builder) VisitStatementList(stmts []*ast.Node, line int) *ast.Node {
	if len(stmts) == 0 {
		return ast.Empty()
	}
	var list *ast.Node
	for i := len(stmts) - 1; i >= 0; i-- {
		if list == nil {
			list = stmts[i]
		} else {
			list = ast.Binary(ast.NStatementList, symtab.RTVoid, stmts[i], list, line)
		}
	}
	return list
}

// VisitNumber chooses the narrowest signed type that fits lexeme's
// value, saturating to Int (with a NumericOverflow warning) if it
// overflows even that.
func (b *Builder) VisitNumber(value int64, line int) *ast.Node {
	switch {
	case value >= -128 && value <= 127:
		return ast.Constant(ast.NNum, symtab.RTInt8, ast.ConstInt8(int8(value)), line)
	case value >= -2147483648 && value <= 2147483647:
		return ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(int32(value)), line)
	default:
		b.diags.Add(diag.NumericOverflow(line, strconv.FormatInt(value, 10)))
		saturated := int32(2147483647)
		if value < 0 {
			saturated = -2147483648
		}
		return ast.Constant(ast.NNum, symtab.RTInt, ast.ConstInt(saturated), line)
	}
}

// AttachRoot stores funcID's completed body root. Exactly one call is
// expected per function (spec §4.1).
func (b *Builder) AttachRoot(funcID symtab.ID, root *ast.Node) {
	sym := b.Table.MustGet(funcID)
	b.Tree.Functions[funcID] = &ast.FunctionRoot{Name: sym.Name, Root: root}
}

// MissingBody records a SyntaxBuilderError for a function whose body
// never attached, and stores an absent root so downstream stages can
// still see the function exists.
func (b *Builder) MissingBody(funcID symtab.ID, line int) {
	sym := b.Table.MustGet(funcID)
	b.diags.Add(diag.MissingBody(line, sym.Name))
	b.Tree.Functions[funcID] = &ast.FunctionRoot{Name: sym.Name, Root: nil}
}
