// Package astopt implements the AST-level optimization pass: constant
// folding (spec §4.3 "Constant folding (AST)").
package astopt

import (
	"cminus/internal/ast"
	"cminus/internal/symtab"
)

// FoldConstants walks every function body in t bottom-up and folds
// binary/unary nodes whose operands are already constant, the way
// the original `fold_constants` does it per function. Division and
// modulo by a literal zero are never folded, preserving the run-time
// trap. The tree is mutated in place and also returned for chaining.
func FoldConstants(t *ast.Tree, table *symtab.Table) *ast.Tree {
	for _, fr := range t.Functions {
		if fr.Root == nil {
			continue
		}
		fr.Root = fold(fr.Root)
	}
	return t
}

func fold(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindEmpty, ast.KindConstant, ast.KindSymbol:
		return n
	case ast.KindUnary:
		n.Child = fold(n.Child)
		return foldUnary(n)
	case ast.KindBinary:
		n.Left = fold(n.Left)
		n.Right = fold(n.Right)
		return foldBinary(n)
	default:
		return n
	}
}

func foldUnary(n *ast.Node) *ast.Node {
	if n.Child == nil || n.Child.Kind != ast.KindConstant {
		return n
	}
	c := n.Child.Value
	switch n.NodeType {
	case ast.NSignPlus:
		// "SignPlus unwraps to its child constant."
		return ast.Constant(ast.NNum, n.Child.ReturnType, c, n.Line)
	case ast.NSignMinus:
		negated := ast.FromWidened(c.Kind, -c.Widened())
		return ast.Constant(ast.NNum, n.Child.ReturnType, negated, n.Line)
	case ast.NCoercion:
		// "Coercion produces a constant of the parent's return_type."
		kind := kindForReturnType(n.ReturnType, c.Kind)
		return ast.Constant(ast.NNum, n.ReturnType, ast.FromWidened(kind, c.Widened()), n.Line)
	default:
		return n
	}
}

func foldBinary(n *ast.Node) *ast.Node {
	if n.Left == nil || n.Right == nil {
		return n
	}
	if n.Left.Kind != ast.KindConstant || n.Right.Kind != ast.KindConstant {
		return n
	}
	l, r := n.Left.Value, n.Right.Value
	kind := ast.WidestKind(l.Kind, r.Kind)
	lv, rv := l.Widened(), r.Widened()

	switch n.NodeType {
	case ast.NDiv, ast.NMod:
		if rv == 0 {
			// "Division or modulo by literal zero is NOT folded."
			return n
		}
	}

	switch n.NodeType {
	case ast.NAdd:
		return ast.Constant(ast.NNum, n.ReturnType, ast.FromWidened(kind, lv+rv), n.Line)
	case ast.NSub:
		return ast.Constant(ast.NNum, n.ReturnType, ast.FromWidened(kind, lv-rv), n.Line)
	case ast.NMul:
		return ast.Constant(ast.NNum, n.ReturnType, ast.FromWidened(kind, lv*rv), n.Line)
	case ast.NDiv:
		return ast.Constant(ast.NNum, n.ReturnType, ast.FromWidened(kind, lv/rv), n.Line)
	case ast.NMod:
		return ast.Constant(ast.NNum, n.ReturnType, ast.FromWidened(kind, lv%rv), n.Line)
	case ast.NAnd:
		return boolConstant(n, (lv != 0) && (rv != 0))
	case ast.NOr:
		return boolConstant(n, (lv != 0) || (rv != 0))
	case ast.NRelEqual:
		return boolConstant(n, lv == rv)
	case ast.NRelNotEqual:
		return boolConstant(n, lv != rv)
	case ast.NRelLT:
		return boolConstant(n, lv < rv)
	case ast.NRelGT:
		return boolConstant(n, lv > rv)
	case ast.NRelLTE:
		return boolConstant(n, lv <= rv)
	case ast.NRelGTE:
		return boolConstant(n, lv >= rv)
	default:
		return n
	}
}

// boolConstant folds a logical/relational op "to 1/0 under C-style
// truthiness" (spec §4.3), materialized as an Int constant tagged
// Bool — relational/logical nodes always carry ReturnType::Bool.
func boolConstant(n *ast.Node, v bool) *ast.Node {
	val := int32(0)
	if v {
		val = 1
	}
	return ast.Constant(ast.NNum, symtab.RTBool, ast.ConstInt(val), n.Line)
}

// kindForReturnType picks the ConstantNodeValue kind matching rt
// (Bool maps to Int, the kind boolConstant uses), falling back to the
// pre-coercion kind when rt is not a numeric or Bool type.
func kindForReturnType(rt symtab.ReturnType, fallback ast.ConstantKind) ast.ConstantKind {
	switch rt {
	case symtab.RTInt8:
		return ast.CKInt8
	case symtab.RTUint8:
		return ast.CKUint8
	case symtab.RTInt, symtab.RTBool:
		return ast.CKInt
	case symtab.RTUint:
		return ast.CKUint
	default:
		return fallback
	}
}
