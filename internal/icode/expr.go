package icode

import (
	"cminus/internal/ast"
	"cminus/internal/symtab"
)

// lowerExpr lowers one expression-level AST node to an Operand,
// emitting exactly one IC statement per internal node (spec §4.2).
// Leaves (Constant, plain Symbol reference) return an operand directly
// with no emitted statement.
func (g *Generator) lowerExpr(n *ast.Node) Operand {
	switch n.Kind {
	case ast.KindConstant:
		return Immediate(n.Value.Widened(), n.ReturnType)
	case ast.KindSymbol:
		if n.NodeType == ast.NFunctionCall {
			return g.lowerCall(n)
		}
		return SymbolOperand(n.SymbolID, n.ReturnType)
	case ast.KindUnary:
		return g.lowerUnary(n)
	case ast.KindBinary:
		return g.lowerBinary(n)
	default:
		return Immediate(0, symtab.RTVoid)
	}
}

func (g *Generator) lowerUnary(n *ast.Node) Operand {
	switch n.NodeType {
	case ast.NSignPlus:
		// Identity at runtime (constant cases are already folded away
		// by astopt); nothing to emit.
		return g.lowerExpr(n.Child)
	case ast.NSignMinus:
		v := g.lowerExpr(n.Child)
		target := g.makeTemp(n.ReturnType)
		g.emit(Statement{OpType: SizeOf(n.ReturnType), Operator: OpMinus, Operand1: ptr(v), Target: ptr(SymbolOperand(target, n.ReturnType))})
		return SymbolOperand(target, n.ReturnType)
	case ast.NNot:
		v := g.lowerExpr(n.Child)
		target := g.makeTemp(symtab.RTBool)
		g.emit(Statement{OpType: SizeOf(symtab.RTBool), Operator: OpNot, Operand1: ptr(v), Target: ptr(SymbolOperand(target, symtab.RTBool))})
		return SymbolOperand(target, symtab.RTBool)
	case ast.NCoercion:
		v := g.lowerExpr(n.Child)
		target := g.makeTemp(n.ReturnType)
		g.emit(Statement{OpType: SizeOf(n.ReturnType), Operator: OpCoerce, Operand1: ptr(v), Target: ptr(SymbolOperand(target, n.ReturnType))})
		return SymbolOperand(target, n.ReturnType)
	case ast.NReturn:
		g.lowerReturn(n)
		return Immediate(0, symtab.RTVoid)
	default:
		return g.lowerExpr(n.Child)
	}
}

func (g *Generator) lowerBinary(n *ast.Node) Operand {
	switch n.NodeType {
	case ast.NAssignment:
		return g.lowerAssignment(n)
	case ast.NArrayAccess:
		return g.lowerArrayRead(n)
	case ast.NAnd:
		return g.lowerShortCircuit(n, false)
	case ast.NOr:
		return g.lowerShortCircuit(n, true)
	case ast.NExpressionList, ast.NStatementList:
		g.lowerExpr(n.Left)
		return g.lowerExpr(n.Right)
	default:
		if n.NodeType.IsRelational() {
			return g.lowerRelationalValue(n)
		}
		return g.lowerArith(n)
	}
}

// lowerArith lowers a plain arithmetic binary op, picking the signed
// or unsigned opcode variant per the operand type — this
// implementation adopts the redesign named in spec §9 (emit IDiv/IMod
// for signed operands instead of never emitting them).
func (g *Generator) lowerArith(n *ast.Node) Operand {
	l := g.lowerExpr(n.Left)
	r := g.lowerExpr(n.Right)
	op := arithOp(n.NodeType, n.ReturnType.IsUnsigned())
	target := g.makeTemp(n.ReturnType)
	g.emit(Statement{OpType: SizeOf(n.ReturnType), Operator: op, Operand1: ptr(l), Operand2: ptr(r), Target: ptr(SymbolOperand(target, n.ReturnType))})
	return SymbolOperand(target, n.ReturnType)
}

func arithOp(nt ast.NodeType, unsigned bool) Operator {
	switch nt {
	case ast.NAdd:
		return OpAdd
	case ast.NSub:
		return OpSub
	case ast.NMul:
		return OpMul
	case ast.NDiv:
		if unsigned {
			return OpDiv
		}
		return OpIDiv
	case ast.NMod:
		if unsigned {
			return OpMod
		}
		return OpIMod
	default:
		return OpAdd
	}
}

// lowerRelationalValue lowers a relational node used as an ordinary
// expression value (not a condition): emit a signedness-aware Set
// opcode producing a Bool temp.
func (g *Generator) lowerRelationalValue(n *ast.Node) Operand {
	op, l, r := g.lowerRelationalJump(n)
	setOp := jumpToSet(op)
	target := g.makeTemp(symtab.RTBool)
	g.emit(Statement{OpType: SizeOf(join(l.RetType, r.RetType)), Operator: setOp, Operand1: ptr(l), Operand2: ptr(r), Target: ptr(SymbolOperand(target, symtab.RTBool))})
	return SymbolOperand(target, symtab.RTBool)
}

func jumpToSet(op Operator) Operator {
	switch op {
	case OpJe:
		return OpSetE
	case OpJne:
		return OpSetNE
	case OpJl:
		return OpSetL
	case OpJle:
		return OpSetLE
	case OpJg:
		return OpSetG
	case OpJge:
		return OpSetGE
	case OpJb:
		return OpSetB
	case OpJbe:
		return OpSetBE
	case OpJa:
		return OpSetA
	case OpJae:
		return OpSetAE
	default:
		return OpSetE
	}
}

// lowerShortCircuit lowers `&&`/`||` via branch-based evaluation
// instead of always evaluating both sides (spec §9's flagged
// redesign, adopted here): `a && b` becomes
//
//	if(!a) goto Lshort; <eval b, coerce to bool>; goto Lend;
//	Lshort: result = <isOr>; Lend:
//
// and symmetrically (with the short-circuit value and the
// falling-through branch swapped) for `||`.
func (g *Generator) lowerShortCircuit(n *ast.Node, isOr bool) Operand {
	result := g.makeTemp(symtab.RTBool)
	shortLabel := g.makeLabel()
	endLabel := g.makeLabel()

	l := g.lowerExpr(n.Left)
	// Jump to the short-circuit branch when the left side already
	// decides the result: for && that's "l is false"; for || that's
	// "l is true".
	shortOp := OpJz
	if isOr {
		shortOp = OpJnz
	}
	g.emit(MakeCondJump(shortOp, SizeOf(l.RetType), l, Immediate(0, l.RetType), shortLabel))

	r := g.lowerExpr(n.Right)
	g.emit(Statement{OpType: SizeOf(symtab.RTBool), Operator: OpAssign, Operand1: ptr(r), Target: ptr(SymbolOperand(result, symtab.RTBool))})
	g.emit(MakeGoto(endLabel))

	g.emit(MakeLabel(shortLabel))
	shortValue := int64(0)
	if isOr {
		shortValue = 1
	}
	g.emit(Statement{OpType: SizeOf(symtab.RTBool), Operator: OpAssign, Operand1: ptr(Immediate(shortValue, symtab.RTBool)), Target: ptr(SymbolOperand(result, symtab.RTBool))})
	g.emit(MakeLabel(endLabel))

	return SymbolOperand(result, symtab.RTBool)
}

func (g *Generator) lowerAssignment(n *ast.Node) Operand {
	lhs, rhs := n.Left, n.Right
	if lhs.NodeType == ast.NArrayAccess {
		return g.lowerArrayWrite(lhs, rhs)
	}
	v := g.lowerExpr(rhs)
	g.emit(Statement{OpType: SizeOf(lhs.ReturnType), Operator: OpAssign, Operand1: ptr(v), Target: ptr(SymbolOperand(lhs.SymbolID, lhs.ReturnType))})
	return SymbolOperand(lhs.SymbolID, lhs.ReturnType)
}

// lowerArrayIndex implements the first step of spec §4.2's two-step
// array-index lowering: it emits the Mul that scales the index by the
// base type's byte width. It returns the array base symbol operand and
// the scaled offset operand; the caller emits the Array op itself.
func (g *Generator) lowerArrayIndex(n *ast.Node) (Operand, Operand) {
	base := n.Left
	idx := g.lowerExpr(n.Right)
	width := int64(n.ReturnType.ByteWidth())
	offsetTemp := g.makeTemp(symtab.RTUint)
	g.emit(Statement{OpType: SizeDouble, Operator: OpMul, Operand1: ptr(Immediate(width, symtab.RTUint)), Operand2: ptr(idx), Target: ptr(SymbolOperand(offsetTemp, symtab.RTUint))})
	return SymbolOperand(base.SymbolID, base.ReturnType), SymbolOperand(offsetTemp, symtab.RTUint)
}

func (g *Generator) lowerArrayRead(n *ast.Node) Operand {
	baseOp, offsetOp := g.lowerArrayIndex(n)
	target := g.makeTemp(n.ReturnType)
	g.emit(Statement{OpType: SizeOf(n.ReturnType), Operator: OpArray, Operand1: ptr(baseOp), Operand2: ptr(offsetOp), Target: ptr(SymbolOperand(target, n.ReturnType))})
	return SymbolOperand(target, n.ReturnType)
}

// lowerArrayWrite performs the same Mul+Array lowering as a read, but
// the resulting temp becomes the ret_target of the following Assign
// rather than a value the caller reads (spec §4.2: "the resulting temp
// is the ret_target of the final Assign rather than a readable value").
func (g *Generator) lowerArrayWrite(lhs, rhs *ast.Node) Operand {
	baseOp, offsetOp := g.lowerArrayIndex(lhs)
	slot := g.makeTemp(lhs.ReturnType)
	g.emit(Statement{OpType: SizeOf(lhs.ReturnType), Operator: OpArray, Operand1: ptr(baseOp), Operand2: ptr(offsetOp), Target: ptr(SymbolOperand(slot, lhs.ReturnType))})
	v := g.lowerExpr(rhs)
	g.emit(Statement{OpType: SizeOf(lhs.ReturnType), Operator: OpAssign, Operand1: ptr(v), Target: ptr(SymbolOperand(slot, lhs.ReturnType))})
	return SymbolOperand(slot, lhs.ReturnType)
}

// lowerCall lowers a FunctionCall node: each argument in left-to-right
// order emits a Param statement, then a single FuncCall statement
// produces a fresh temp of the callee's return type.
func (g *Generator) lowerCall(n *ast.Node) Operand {
	args := flattenExprList(n.Child)
	for _, a := range args {
		v := g.lowerExpr(a)
		g.emit(Statement{OpType: SizeOf(a.ReturnType), Operator: OpParam, Operand1: ptr(v)})
	}
	if n.ReturnType == symtab.RTVoid {
		g.emit(Statement{OpType: SizeVoid, Operator: OpFuncCall, Operand1: ptr(SymbolOperand(n.SymbolID, symtab.RTVoid))})
		return Immediate(0, symtab.RTVoid)
	}
	target := g.makeTemp(n.ReturnType)
	g.emit(Statement{OpType: SizeOf(n.ReturnType), Operator: OpFuncCall, Operand1: ptr(SymbolOperand(n.SymbolID, n.ReturnType)), Target: ptr(SymbolOperand(target, n.ReturnType))})
	return SymbolOperand(target, n.ReturnType)
}

// flattenExprList walks the ExpressionList chain VisitFuncCall built
// (a Binary(arg, rest) spine terminated by a Unary(arg) leaf) back
// into an ordered argument slice.
func flattenExprList(n *ast.Node) []*ast.Node {
	var out []*ast.Node
	for n != nil {
		switch {
		case n.NodeType == ast.NExpressionList && n.Kind == ast.KindBinary:
			out = append(out, n.Left)
			n = n.Right
		case n.NodeType == ast.NExpressionList && n.Kind == ast.KindUnary:
			out = append(out, n.Child)
			return out
		case n.Kind == ast.KindEmpty:
			// A call with no arguments carries an Empty list.
			return out
		default:
			out = append(out, n)
			return out
		}
	}
	return out
}
