// Package ast implements the Syntax Tree data model of spec §3: the
// tagged-variant SyntaxNode, its ConstantNodeValue payload, and the
// per-function SyntaxTree the Syntax Builder produces.
package ast

import (
	"fmt"

	"cminus/internal/symtab"
)

// NodeType enumerates every shape a SyntaxNode can carry (spec §3).
type NodeType int

const (
	NEmpty NodeType = iota

	// Arithmetic
	NAdd
	NSub
	NMul
	NDiv
	NMod

	// Logic
	NAnd
	NOr
	NNot

	// Relational
	NRelEqual
	NRelNotEqual
	NRelLT
	NRelGT
	NRelLTE
	NRelGTE

	// Structural
	NStatementList
	NIf
	NIfTargets
	NWhile
	NReturn
	NFunctionCall
	NExpressionList
	NAssignment
	NArrayAccess

	// Unary
	NSignPlus
	NSignMinus
	NCoercion

	// Leaves
	NNum
	NId
)

func (n NodeType) String() string {
	switch n {
	case NEmpty:
		return "Empty"
	case NAdd:
		return "Add"
	case NSub:
		return "Sub"
	case NMul:
		return "Mul"
	case NDiv:
		return "Div"
	case NMod:
		return "Mod"
	case NAnd:
		return "And"
	case NOr:
		return "Or"
	case NNot:
		return "Not"
	case NRelEqual:
		return "RelEqual"
	case NRelNotEqual:
		return "RelNotEqual"
	case NRelLT:
		return "RelLT"
	case NRelGT:
		return "RelGT"
	case NRelLTE:
		return "RelLTE"
	case NRelGTE:
		return "RelGTE"
	case NStatementList:
		return "StatementList"
	case NIf:
		return "If"
	case NIfTargets:
		return "IfTargets"
	case NWhile:
		return "While"
	case NReturn:
		return "Return"
	case NFunctionCall:
		return "FunctionCall"
	case NExpressionList:
		return "ExpressionList"
	case NAssignment:
		return "Assignment"
	case NArrayAccess:
		return "ArrayAccess"
	case NSignPlus:
		return "SignPlus"
	case NSignMinus:
		return "SignMinus"
	case NCoercion:
		return "Coercion"
	case NNum:
		return "Num"
	case NId:
		return "Id"
	default:
		return "Unknown"
	}
}

// IsRelational reports whether n is one of the six relational node
// types — used by the IC generator's conditional-compare decomposition.
func (n NodeType) IsRelational() bool {
	switch n {
	case NRelEqual, NRelNotEqual, NRelLT, NRelGT, NRelLTE, NRelGTE:
		return true
	default:
		return false
	}
}

// Precedence returns the binding strength of a binary infix operator
// node type per spec §4.1's precedence groups, lowest to highest: Or(1);
// And(2); relational(3); additive(4); multiplicative(5). Panics for
// non-infix node types — callers only ever consult this for operator
// positions of a flattened expression sequence.
func (n NodeType) Precedence() int {
	switch n {
	case NOr:
		return 1
	case NAnd:
		return 2
	case NRelEqual, NRelNotEqual, NRelLT, NRelGT, NRelLTE, NRelGTE:
		return 3
	case NAdd, NSub:
		return 4
	case NMul, NDiv, NMod:
		return 5
	default:
		panic(fmt.Sprintf("ast: %s is not an infix operator", n))
	}
}

// ConstantKind tags which arm of ConstantNodeValue is populated.
type ConstantKind int

const (
	CKInt8 ConstantKind = iota
	CKUint8
	CKInt
	CKUint
)

// ConstantNodeValue is the tagged-variant payload of a Constant node
// (spec §3). Arithmetic helpers operate in the common widened
// representation (int64) and re-narrow only at construction.
type ConstantNodeValue struct {
	Kind ConstantKind
	I8   int8
	U8   uint8
	I32  int32
	U32  uint32
}

func ConstInt8(v int8) ConstantNodeValue   { return ConstantNodeValue{Kind: CKInt8, I8: v} }
func ConstUint8(v uint8) ConstantNodeValue { return ConstantNodeValue{Kind: CKUint8, U8: v} }
func ConstInt(v int32) ConstantNodeValue   { return ConstantNodeValue{Kind: CKInt, I32: v} }
func ConstUint(v uint32) ConstantNodeValue { return ConstantNodeValue{Kind: CKUint, U32: v} }

// Widened returns the value as a signed 64-bit integer, the common
// representation arithmetic on ConstantNodeValue is performed in.
func (c ConstantNodeValue) Widened() int64 {
	switch c.Kind {
	case CKInt8:
		return int64(c.I8)
	case CKUint8:
		return int64(c.U8)
	case CKInt:
		return int64(c.I32)
	case CKUint:
		return int64(c.U32)
	default:
		return 0
	}
}

// ReturnType maps the value's kind back to the symtab ReturnType it
// carries at the AST level.
func (c ConstantNodeValue) ReturnType() symtab.ReturnType {
	switch c.Kind {
	case CKInt8:
		return symtab.RTInt8
	case CKUint8:
		return symtab.RTUint8
	case CKInt:
		return symtab.RTInt
	case CKUint:
		return symtab.RTUint
	default:
		return symtab.RTError
	}
}

func (c ConstantNodeValue) String() string {
	return fmt.Sprintf("%d", c.Widened())
}

// FromWidened re-narrows a widened arithmetic result back into the
// given kind's representation, truncating exactly the way a Go numeric
// conversion does (matching the back-end's own truncating semantics).
func FromWidened(kind ConstantKind, v int64) ConstantNodeValue {
	switch kind {
	case CKInt8:
		return ConstInt8(int8(v))
	case CKUint8:
		return ConstUint8(uint8(v))
	case CKInt:
		return ConstInt(int32(v))
	case CKUint:
		return ConstUint(uint32(v))
	default:
		return ConstantNodeValue{}
	}
}

// WidestKind returns whichever of a, b has the larger ReturnType order,
// the "common (larger) representation" spec §3 names for
// ConstantNodeValue arithmetic.
func WidestKind(a, b ConstantKind) ConstantKind {
	rank := func(k ConstantKind) int {
		switch k {
		case CKInt8:
			return 0
		case CKUint8:
			return 1
		case CKInt:
			return 2
		case CKUint:
			return 3
		default:
			return -1
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// Node is the tagged-variant SyntaxNode of spec §3. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Node struct {
	Kind       SyntaxNodeKind
	NodeType   NodeType
	ReturnType symtab.ReturnType

	// Constant
	Value ConstantNodeValue

	// Symbol
	SymbolID symtab.ID

	// Unary
	Child *Node

	// Binary
	Left  *Node
	Right *Node

	Line int
}

// SyntaxNodeKind selects which SyntaxNode variant a Node represents.
type SyntaxNodeKind int

const (
	KindEmpty SyntaxNodeKind = iota
	KindConstant
	KindSymbol
	KindUnary
	KindBinary
)

// Empty returns the Empty variant.
func Empty() *Node { return &Node{Kind: KindEmpty, NodeType: NEmpty, ReturnType: symtab.RTVoid} }

// Constant returns a Constant node.
func Constant(nt NodeType, rt symtab.ReturnType, v ConstantNodeValue, line int) *Node {
	return &Node{Kind: KindConstant, NodeType: nt, ReturnType: rt, Value: v, Line: line}
}

// SymbolNode returns a Symbol node referencing id.
func SymbolNode(nt NodeType, rt symtab.ReturnType, id symtab.ID, line int) *Node {
	return &Node{Kind: KindSymbol, NodeType: nt, ReturnType: rt, SymbolID: id, Line: line}
}

// Unary returns a Unary node wrapping child.
func Unary(nt NodeType, rt symtab.ReturnType, child *Node, line int) *Node {
	return &Node{Kind: KindUnary, NodeType: nt, ReturnType: rt, Child: child, Line: line}
}

// Binary returns a Binary node joining left and right.
func Binary(nt NodeType, rt symtab.ReturnType, left, right *Node, line int) *Node {
	return &Node{Kind: KindBinary, NodeType: nt, ReturnType: rt, Left: left, Right: right, Line: line}
}

// IsError reports whether this node's return type is the error
// sentinel, propagated from an undeclared identifier or a failed
// coercion (spec §4.1 "Errors").
func (n *Node) IsError() bool { return n.ReturnType == symtab.RTError }

// FunctionRoot pairs a function's name with its (possibly absent) body
// root — absent exactly when the body failed to build (spec §3).
type FunctionRoot struct {
	Name string
	Root *Node // nil if the body never attached
}

// Tree is the SyntaxTree of spec §3: a map from function SymbolId to
// its FunctionRoot.
type Tree struct {
	Functions map[symtab.ID]*FunctionRoot
}

// NewTree returns an empty SyntaxTree.
func NewTree() *Tree { return &Tree{Functions: make(map[symtab.ID]*FunctionRoot)} }

// GetRoot returns the body root for funcID, or nil if absent or
// unknown.
func (t *Tree) GetRoot(funcID symtab.ID) *Node {
	fr, ok := t.Functions[funcID]
	if !ok {
		return nil
	}
	return fr.Root
}
