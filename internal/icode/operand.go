// Package icode implements the three-address Intermediate Code data
// model (spec §3) and its generator (spec §4.2): IOperand, IOperator,
// IOperatorSize, IStatement, IntermediateCode, and the per-function
// lowering that turns a syntax tree into a flat statement sequence.
package icode

import (
	"fmt"

	"cminus/internal/symtab"
)

// OperatorSize is IOperatorSize: the x86-64 operand-size class an
// operator/operand pair carries, derived from a ReturnType.
type OperatorSize int

const (
	SizeVoid OperatorSize = iota
	SizeByte
	SizeWord
	SizeDouble
	SizeQuad
)

func (s OperatorSize) String() string {
	switch s {
	case SizeByte:
		return "b"
	case SizeWord:
		return "w"
	case SizeDouble:
		return "l"
	case SizeQuad:
		return "q"
	default:
		return ""
	}
}

// SizeOf maps a ReturnType to its OperatorSize: Void -> Void;
// Bool/Int8/Uint8 -> Byte; Int/Uint -> Double; Real and any array
// reference -> Quad.
func SizeOf(rt symtab.ReturnType) OperatorSize {
	switch rt {
	case symtab.RTVoid:
		return SizeVoid
	case symtab.RTBool, symtab.RTInt8, symtab.RTUint8:
		return SizeByte
	case symtab.RTInt, symtab.RTUint:
		return SizeDouble
	default:
		return SizeQuad
	}
}

// Bytes returns the byte width of this size class.
func (s OperatorSize) Bytes() int {
	switch s {
	case SizeByte:
		return 1
	case SizeWord:
		return 2
	case SizeDouble:
		return 4
	case SizeQuad:
		return 8
	default:
		return 0
	}
}

// OperandKind selects which IOperand variant is populated.
type OperandKind int

const (
	OperandUnknown OperandKind = iota
	OperandImmediate
	OperandSymbol
)

// Operand is IOperand: Unknown | Immediate{value,ret_type} |
// Symbol{id,ret_type}.
type Operand struct {
	Kind    OperandKind
	Value   int64
	RetType symtab.ReturnType
	SymID   symtab.ID
}

// Immediate constructs an Immediate operand.
func Immediate(value int64, rt symtab.ReturnType) Operand {
	return Operand{Kind: OperandImmediate, Value: value, RetType: rt}
}

// SymbolOperand constructs a Symbol operand referencing id.
func SymbolOperand(id symtab.ID, rt symtab.ReturnType) Operand {
	return Operand{Kind: OperandSymbol, SymID: id, RetType: rt}
}

// ID returns the symbol id this operand refers to, or ErrorID for an
// Immediate/Unknown operand.
func (o Operand) ID() symtab.ID {
	if o.Kind == OperandSymbol {
		return o.SymID
	}
	return symtab.ErrorID
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandImmediate:
		return fmt.Sprintf("imm:%s %d", o.RetType, o.Value)
	case OperandSymbol:
		return fmt.Sprintf("sym:%d", o.SymID)
	default:
		return "unknown"
	}
}
