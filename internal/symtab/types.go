// Package symtab implements the Symbol Table and Scope Manager: the
// authoritative registry of every named entity in a compilation unit
// (spec §3 Symbol Table invariants, §4.1 scoping operations).
package symtab

import "fmt"

// ID is the opaque, process-unique handle every symbol is known by. 0 is
// reserved as the error sentinel.
type ID int

// ErrorID is the sentinel returned when a name fails to resolve.
const ErrorID ID = 0

func (id ID) String() string { return fmt.Sprintf("%d", int(id)) }

// IsBuiltin reports whether id names one of the runtime-provided I/O
// helpers that never generate code (spec glossary: "Builtin id").
func (id ID) IsBuiltin() bool {
	for _, b := range BuiltinIDs {
		if b == id {
			return true
		}
	}
	return false
}

// BuiltinIDs is the fixed, low-numbered set of runtime-provided function
// ids: the classic C-minus I/O primitives `input`, `inputb`, `output`,
// `outputb` (8-bit and 32-bit variants), none of which the IC generator
// ever emits a body for.
var BuiltinIDs = []ID{1, 2, 3, 4}

const (
	BuiltinInput   = ID(1) // int input(void)
	BuiltinInputB  = ID(2) // uint8 inputb(void)
	BuiltinOutput  = ID(3) // void output(int)
	BuiltinOutputB = ID(4) // void outputb(uint8)
)

// ReturnType is the value-type lattice of spec §3. Its numeric order
// defines coercion legality: a value of type a may be coerced to b iff
// a <= b (see Order()); Real and array types never participate.
type ReturnType int

const (
	RTError ReturnType = iota
	RTBool
	RTInt8
	RTUint8
	RTInt
	RTUint
	// Below this point, nothing coerces and nothing is coerced to.
	RTReal
	RTVoid
	RTIntArray
	RTUintArray
	RTInt8Array
	RTUint8Array
	RTUnknown
	RTLabel
)

// Order returns this type's position in the coercion total order, or
// false if the type does not participate in coercion at all.
func (r ReturnType) Order() (int, bool) {
	switch r {
	case RTError, RTBool, RTInt8, RTUint8, RTInt, RTUint:
		return int(r), true
	default:
		return 0, false
	}
}

// CoercesTo reports whether a value of type r may be implicitly widened
// to type to, i.e. r <= to under the coercion order.
func (r ReturnType) CoercesTo(to ReturnType) bool {
	ro, ok1 := r.Order()
	to2, ok2 := to.Order()
	return ok1 && ok2 && ro <= to2
}

// IsUnsigned reports whether r is one of the unsigned numeric types,
// used by the IC generator to select signed vs. unsigned opcodes.
func (r ReturnType) IsUnsigned() bool {
	switch r {
	case RTUint8, RTUint, RTUintArray, RTUint8Array:
		return true
	default:
		return false
	}
}

// IsArray reports whether r is one of the array reference types.
func (r ReturnType) IsArray() bool {
	switch r {
	case RTIntArray, RTUintArray, RTInt8Array, RTUint8Array:
		return true
	default:
		return false
	}
}

// BaseType returns the element type of an array reference type, or r
// unchanged if r is not an array type.
func (r ReturnType) BaseType() ReturnType {
	switch r {
	case RTIntArray:
		return RTInt
	case RTUintArray:
		return RTUint
	case RTInt8Array:
		return RTInt8
	case RTUint8Array:
		return RTUint8
	default:
		return r
	}
}

// ArrayOf returns the array reference type for the given element type,
// or RTError if r cannot be turned into an array type.
func (r ReturnType) ArrayOf() ReturnType {
	switch r {
	case RTInt:
		return RTIntArray
	case RTUint:
		return RTUintArray
	case RTInt8:
		return RTInt8Array
	case RTUint8:
		return RTUint8Array
	default:
		return RTError
	}
}

// ByteWidth returns the byte width spec §3 assigns to this type:
// Bool/Int8/Uint8 = 1, Int/Uint = 4, Real/any array reference = 8,
// Void = 0.
func (r ReturnType) ByteWidth() int {
	switch r {
	case RTBool, RTInt8, RTUint8:
		return 1
	case RTInt, RTUint:
		return 4
	case RTReal, RTIntArray, RTUintArray, RTInt8Array, RTUint8Array:
		return 8
	default:
		return 0
	}
}

func (r ReturnType) String() string {
	switch r {
	case RTError:
		return "error"
	case RTBool:
		return "bool"
	case RTInt8:
		return "int8"
	case RTUint8:
		return "uint8"
	case RTInt:
		return "int"
	case RTUint:
		return "uint"
	case RTReal:
		return "real"
	case RTVoid:
		return "void"
	case RTIntArray:
		return "int_array"
	case RTUintArray:
		return "uint_array"
	case RTInt8Array:
		return "int8_array"
	case RTUint8Array:
		return "uint8_array"
	case RTLabel:
		return "label"
	default:
		return "unknown"
	}
}

// ReturnTypeFromSpec maps a `type_specifier` parse token's literal text
// (spec §6) to a ReturnType.
func ReturnTypeFromSpec(text string) ReturnType {
	switch text {
	case "int":
		return RTInt
	case "int8_t":
		return RTInt8
	case "unsigned", "unsigned int":
		return RTUint
	case "uint8_t":
		return RTUint8
	case "void":
		return RTVoid
	default:
		return RTError
	}
}

// SymbolType is the kind of entity a Symbol names.
type SymbolType int

const (
	STUnknown SymbolType = iota
	STError
	STVariable
	STParameter
	STArrayParam
	STFunction
	STTempVar
	STLabel
	STProgram
)

func (t SymbolType) String() string {
	switch t {
	case STVariable:
		return "variable"
	case STParameter:
		return "parameter"
	case STArrayParam:
		return "array_parameter"
	case STFunction:
		return "function"
	case STTempVar:
		return "tempvar"
	case STLabel:
		return "label"
	case STProgram:
		return "program"
	case STError:
		return "error"
	default:
		return "unknown"
	}
}

// Symbol is the payload stored for every ID.
type Symbol struct {
	Name       string
	ReturnType ReturnType
	SymbolType SymbolType
	Line       int
}

func (s Symbol) String() string {
	return fmt.Sprintf("[`%s` Ret:%s Type:%s]", s.Name, s.ReturnType, s.SymbolType)
}

// Scope tags whether a symbol lives at file scope or inside a function.
type Scope struct {
	Global         bool
	OwningFunction ID // meaningful only when !Global
}

// FunctionInfo records a function's parameter and local-variable ids in
// declaration order — order is significant (spec §3: "ABI parameter
// slot assignment").
type FunctionInfo struct {
	Parameters []ID
	Variables  []ID
}
