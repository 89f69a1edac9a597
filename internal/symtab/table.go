package symtab

import (
	"fmt"
	"sort"
	"strings"
)

// MainFunctionName is the entry-point function every complete program
// must define.
const MainFunctionName = "main"

// Table is the Symbol Table: the dense, monotonically-id'd registry of
// every symbol in a compilation unit (spec §3 "SymbolTable invariants").
// Ids are never reused and symbols are never removed — leaving a scope
// only affects name resolution (see ScopeManager), not the table.
type Table struct {
	symbols   map[ID]Symbol
	scopes    map[ID]Scope
	functions map[ID]*FunctionInfo
	nextID    ID
	mainID    ID
	hasMain   bool
}

// New returns a Table seeded with the fixed builtin ids (spec §3: "a
// small fixed prefix (builtin ids) denotes runtime-provided symbols...
// that never generate code").
func New() *Table {
	t := &Table{
		symbols:   make(map[ID]Symbol),
		scopes:    make(map[ID]Scope),
		functions: make(map[ID]*FunctionInfo),
		nextID:    ErrorID + 1,
	}
	t.addBuiltin(BuiltinInput, "input", RTInt)
	t.addBuiltin(BuiltinInputB, "inputb", RTUint8)
	t.addBuiltin(BuiltinOutput, "output", RTVoid)
	t.addBuiltin(BuiltinOutputB, "outputb", RTVoid)
	return t
}

func (t *Table) addBuiltin(id ID, name string, ret ReturnType) {
	t.symbols[id] = Symbol{Name: name, ReturnType: ret, SymbolType: STFunction, Line: 0}
	t.scopes[id] = Scope{Global: true}
	t.functions[id] = &FunctionInfo{}
	if id >= t.nextID {
		t.nextID = id + 1
	}
}

func (t *Table) allocID() ID {
	id := t.nextID
	t.nextID++
	return id
}

// AddFunction registers a new function symbol and its (initially empty)
// FunctionInfo, caching the `main` id per the invariant that exactly one
// symbol named `main` with SymbolType::Function exists.
func (t *Table) AddFunction(name string, ret ReturnType, line int) ID {
	id := t.allocID()
	t.symbols[id] = Symbol{Name: name, ReturnType: ret, SymbolType: STFunction, Line: line}
	t.scopes[id] = Scope{Global: true}
	t.functions[id] = &FunctionInfo{}
	if name == MainFunctionName {
		t.mainID = id
		t.hasMain = true
	}
	return id
}

// AddSymbol registers a variable/parameter/array-parameter under the
// given scope, threading it into the owning function's FunctionInfo
// when the scope is local.
func (t *Table) AddSymbol(sym Symbol, scope Scope) ID {
	id := t.allocID()
	t.symbols[id] = sym
	t.scopes[id] = scope
	if !scope.Global {
		fi := t.functions[scope.OwningFunction]
		if fi == nil {
			fi = &FunctionInfo{}
			t.functions[scope.OwningFunction] = fi
		}
		switch sym.SymbolType {
		case STParameter, STArrayParam:
			fi.Parameters = append(fi.Parameters, id)
		default:
			fi.Variables = append(fi.Variables, id)
		}
	}
	return id
}

// AddTempVar allocates a fresh compiler-generated temporary scoped to
// owningFunc, the way ICG's make_temp does.
func (t *Table) AddTempVar(owningFunc ID, ret ReturnType) ID {
	id := t.allocID()
	name := fmt.Sprintf("t%d", id)
	t.symbols[id] = Symbol{Name: name, ReturnType: ret, SymbolType: STTempVar}
	t.scopes[id] = Scope{Global: false, OwningFunction: owningFunc}
	fi := t.functions[owningFunc]
	if fi == nil {
		fi = &FunctionInfo{}
		t.functions[owningFunc] = fi
	}
	fi.Variables = append(fi.Variables, id)
	return id
}

// AddLabel allocates a fresh compiler-generated label scoped to
// owningFunc.
func (t *Table) AddLabel(owningFunc ID) ID {
	id := t.allocID()
	name := fmt.Sprintf("L%d", id)
	t.symbols[id] = Symbol{Name: name, ReturnType: RTLabel, SymbolType: STLabel}
	t.scopes[id] = Scope{Global: false, OwningFunction: owningFunc}
	return id
}

// Get returns the Symbol stored for id.
func (t *Table) Get(id ID) (Symbol, bool) {
	s, ok := t.symbols[id]
	return s, ok
}

// MustGet returns the Symbol for id, panicking if it is absent — for
// call sites that already hold an id obtained from this same table.
func (t *Table) MustGet(id ID) Symbol {
	s, ok := t.symbols[id]
	if !ok {
		panic(fmt.Sprintf("symtab: no symbol for id %d", id))
	}
	return s
}

// ScopeOf returns the SymbolScope recorded for id.
func (t *Table) ScopeOf(id ID) Scope { return t.scopes[id] }

// FunctionInfo returns the FunctionInfo for a function id, or nil if id
// does not name a function.
func (t *Table) FunctionInfo(id ID) *FunctionInfo { return t.functions[id] }

// MainID returns the cached id of `main`. Panics if no `main` was ever
// registered — matching the Rust original's get_main_id, which assumes
// the caller only invokes it once the syntax tree is complete.
func (t *Table) MainID() ID {
	if !t.hasMain {
		panic("symtab: main is not declared")
	}
	return t.mainID
}

// HasMain reports whether `main` has been registered yet.
func (t *Table) HasMain() bool { return t.hasMain }

// Globals returns the ids of every symbol bound at file scope, in
// ascending id order (sort.Slice, the way the teacher sorts
// everywhere else in the corpus).
func (t *Table) Globals() []ID {
	var out []ID
	for id, scope := range t.scopes {
		if scope.Global && !id.IsBuiltin() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FunctionIDs returns every function id in ascending order, builtins
// excluded.
func (t *Table) FunctionIDs() []ID {
	var out []ID
	for id := range t.functions {
		if !id.IsBuiltin() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the table's Functions and Symbols sections, sorted by
// id and excluding builtins — the same shape the Rust original's
// `Display for SymbolTable` produces.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString("Functions:\n")
	for _, id := range t.FunctionIDs() {
		sym := t.symbols[id]
		fi := t.functions[id]
		sb.WriteString(fmt.Sprintf("  %d: %s -> %s (params: %v, locals: %v)\n",
			id, sym.Name, sym.ReturnType, fi.Parameters, fi.Variables))
	}
	sb.WriteString("Symbols:\n")
	ids := make([]ID, 0, len(t.symbols))
	for id := range t.symbols {
		if !id.IsBuiltin() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if t.symbols[id].SymbolType == STFunction {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %d: %s\n", id, t.symbols[id]))
	}
	return sb.String()
}
