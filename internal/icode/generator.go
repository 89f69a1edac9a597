package icode

import (
	"cminus/internal/ast"
	"cminus/internal/diag"
	"cminus/internal/symtab"
)

// Generator lowers one function's AST at a time into a flat
// three-address statement sequence, appending into a shared
// IntermediateCode (spec §4.2). It takes exclusive mutable access to
// the Table for temp/label allocation and read-only access to the AST
// (spec §5).
type Generator struct {
	table       *symtab.Table
	ic          *IntermediateCode
	currentFunc symtab.ID
}

// Generate lowers every non-builtin function in t, visited in
// ascending function-id order for deterministic output (spec §5), and
// returns the resulting IntermediateCode.
func Generate(t *ast.Tree, table *symtab.Table) (*IntermediateCode, error) {
	ic := New()
	for _, id := range table.FunctionIDs() {
		// "Builtin functions... are skipped entirely; the back-end
		// supplies their bodies." FunctionIDs() already excludes them,
		// but the guard documents the rule at the call site too.
		if id.IsBuiltin() {
			continue
		}
		fr, ok := t.Functions[id]
		if !ok || fr.Root == nil {
			sym := table.MustGet(id)
			return nil, diag.NewICodeError("function %q has no attached body at IC generation time", sym.Name)
		}
		g := &Generator{table: table, ic: ic, currentFunc: id}
		g.emit(Statement{OpType: SizeVoid, Operator: OpFunc, Operand1: ptr(SymbolOperand(id, symtab.RTVoid))})
		g.lowerStmt(fr.Root)
		g.maybeInsertImplicitReturn()
	}
	return ic, nil
}

func (g *Generator) emit(s Statement) LineNumber { return g.ic.Append(s) }

func (g *Generator) makeTemp(rt symtab.ReturnType) symtab.ID {
	return g.table.AddTempVar(g.currentFunc, rt)
}

func (g *Generator) makeLabel() symtab.ID {
	return g.table.AddLabel(g.currentFunc)
}

// maybeInsertImplicitReturn appends a Return iff the last statement
// emitted for this function is not already a jump, a Return, or a
// tail call to this same function (spec §4.2).
func (g *Generator) maybeInsertImplicitReturn() {
	last, ok := g.ic.Get(-1)
	if !ok {
		g.emit(Statement{OpType: SizeVoid, Operator: OpReturn})
		return
	}
	if last.Operator == OpFuncCall && last.Operand1 != nil && last.Operand1.ID() == g.currentFunc {
		return
	}
	if last.IsJump() {
		return
	}
	g.emit(Statement{OpType: SizeVoid, Operator: OpReturn})
}

// lowerStmt lowers a statement-level AST node: StatementList, If,
// While, Return, or an expression used as a statement (Assignment,
// FunctionCall, Empty).
func (g *Generator) lowerStmt(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.NodeType {
	case ast.NEmpty:
		return
	case ast.NStatementList:
		g.lowerStmt(n.Left)
		g.lowerStmt(n.Right)
	case ast.NIf:
		g.lowerIf(n)
	case ast.NWhile:
		g.lowerWhile(n)
	case ast.NReturn:
		g.lowerReturn(n)
	default:
		// An expression in statement position: evaluate for effect.
		g.lowerExpr(n)
	}
}

func (g *Generator) lowerReturn(n *ast.Node) {
	if n.Child == nil || n.Child.NodeType == ast.NEmpty {
		g.emit(Statement{OpType: SizeVoid, Operator: OpReturn})
		return
	}
	v := g.lowerExpr(n.Child)
	g.emit(Statement{OpType: SizeOf(n.Child.ReturnType), Operator: OpReturn, Operand1: ptr(v)})
}

func (g *Generator) lowerIf(n *ast.Node) {
	cond := n.Left
	target := n.Right
	if target != nil && target.NodeType == ast.NIfTargets {
		thenBranch, elseBranch := target.Left, target.Right
		elseLabel := g.makeLabel()
		endLabel := g.makeLabel()
		g.emitCondJump(cond, true, elseLabel)
		g.lowerStmt(thenBranch)
		g.emit(MakeGoto(endLabel))
		g.emit(MakeLabel(elseLabel))
		g.lowerStmt(elseBranch)
		g.emit(MakeLabel(endLabel))
		return
	}
	endLabel := g.makeLabel()
	g.emitCondJump(cond, true, endLabel)
	g.lowerStmt(target)
	g.emit(MakeLabel(endLabel))
}

func (g *Generator) lowerWhile(n *ast.Node) {
	cond, body := n.Left, n.Right
	condLabel := g.makeLabel()
	bodyLabel := g.makeLabel()
	g.emit(MakeGoto(condLabel))
	g.emit(MakeLabel(bodyLabel))
	g.lowerStmt(body)
	g.emit(MakeLabel(condLabel))
	g.emitCondJump(cond, false, bodyLabel)
}

// emitCondJump decomposes cond into a single conditional-jump
// statement targeting label, per spec §4.2's "Conditional compare":
// a relational condition decomposes directly; anything else (Coercion,
// bare identifier/number, or — under the short-circuit redesign —
// And/Or and call expressions) is first lowered to a value and then
// compared against zero. negate requests the jump fire on the
// condition being FALSE (used by If, where "fall through means
// taken"); while While wants the positive sense.
func (g *Generator) emitCondJump(cond *ast.Node, negate bool, label symtab.ID) {
	if cond.NodeType.IsRelational() {
		op, l, r := g.lowerRelationalJump(cond)
		if negate {
			op = negateJump(op)
		}
		g.emit(MakeCondJump(op, SizeOf(join(l.RetType, r.RetType)), l, r, label))
		return
	}
	v := g.lowerExpr(cond)
	op := OpJnz
	if negate {
		op = OpJz
	}
	g.emit(MakeCondJump(op, SizeOf(v.RetType), v, Immediate(0, v.RetType), label))
}

// lowerRelationalJump lowers a relational node's two operands and
// picks the signedness-aware jump opcode (positive sense) for it.
func (g *Generator) lowerRelationalJump(n *ast.Node) (Operator, Operand, Operand) {
	l := g.lowerExpr(n.Left)
	r := g.lowerExpr(n.Right)
	unsigned := n.Left.ReturnType.IsUnsigned() || n.Right.ReturnType.IsUnsigned()
	op := relationalJumpOp(n.NodeType, unsigned)
	return op, l, r
}

func relationalJumpOp(nt ast.NodeType, unsigned bool) Operator {
	var op Operator
	switch nt {
	case ast.NRelEqual:
		op = OpJe
	case ast.NRelNotEqual:
		op = OpJne
	case ast.NRelLT:
		op = OpJl
	case ast.NRelGT:
		op = OpJg
	case ast.NRelLTE:
		op = OpJle
	case ast.NRelGTE:
		op = OpJge
	}
	if unsigned {
		return op.ToUnsigned()
	}
	return op
}

// negateJump returns the complementary jump opcode: the one that fires
// exactly when op would not have.
func negateJump(op Operator) Operator {
	switch op {
	case OpJe:
		return OpJne
	case OpJne:
		return OpJe
	case OpJl:
		return OpJge
	case OpJge:
		return OpJl
	case OpJg:
		return OpJle
	case OpJle:
		return OpJg
	case OpJb:
		return OpJae
	case OpJae:
		return OpJb
	case OpJa:
		return OpJbe
	case OpJbe:
		return OpJa
	case OpJz:
		return OpJnz
	case OpJnz:
		return OpJz
	default:
		return op
	}
}

func join(a, b symtab.ReturnType) symtab.ReturnType {
	if ao, ok := a.Order(); ok {
		if bo, ok2 := b.Order(); ok2 && bo > ao {
			return b
		}
		return a
	}
	return b
}
