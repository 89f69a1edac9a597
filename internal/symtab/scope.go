package symtab

// scope is a single name→id binding frame.
type scope struct {
	symbols map[string]ID
}

func newScope() *scope { return &scope{symbols: make(map[string]ID)} }

// ScopeManager is a stack of name-resolution frames layered on top of a
// Table. The Table is the permanent registry; ScopeManager only tracks
// which names currently resolve to which ids (spec §4.1: "leaving a
// scope does not destroy the symbols it defined... it only makes those
// names no longer resolvable by name").
type ScopeManager struct {
	stack []*scope
}

// NewScopeManager returns a manager with one (the outermost/global)
// scope already open.
func NewScopeManager() *ScopeManager {
	return &ScopeManager{stack: []*scope{newScope()}}
}

// EnterNewScope pushes an empty name→id frame.
func (m *ScopeManager) EnterNewScope() { m.stack = append(m.stack, newScope()) }

// LeaveScope pops the innermost frame. Never pops the outermost
// (global) scope.
func (m *ScopeManager) LeaveScope() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

// Depth reports how many scopes are currently open; 1 means only the
// global scope.
func (m *ScopeManager) Depth() int { return len(m.stack) }

// AtGlobalScope reports whether no function/block scope is open.
func (m *ScopeManager) AtGlobalScope() bool { return len(m.stack) == 1 }

func (m *ScopeManager) innermost() *scope { return m.stack[len(m.stack)-1] }

// IsDefinedInnermost reports whether name is already bound in the
// innermost scope — the exact check add_symbol uses to decide
// RedeclarationError (spec §4.1: "fails... if symbol.name is defined in
// the innermost scope").
func (m *ScopeManager) IsDefinedInnermost(name string) bool {
	_, ok := m.innermost().symbols[name]
	return ok
}

// Bind records that name now resolves to id in the innermost scope. The
// caller (SyntaxBuilder.add_symbol / enter_function) is responsible for
// having already checked IsDefinedInnermost.
func (m *ScopeManager) Bind(name string, id ID) {
	m.innermost().symbols[name] = id
}

// Resolve looks up name starting at the innermost scope and walking
// outward to the global scope, returning (id, true) on the first match.
//
// The Rust original this is ported from (scope.rs) only ever checks the
// single innermost frame, which would make the builder reject any
// reference to an enclosing function's parameters from a nested block
// — a limitation spec.md's own framing ("maintaining nested lexical
// scopes") does not intend. This implementation walks the whole stack,
// matching ordinary block-scoped name resolution; see DESIGN.md for the
// recorded Open Question decision.
func (m *ScopeManager) Resolve(name string) (ID, bool) {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if id, ok := m.stack[i].symbols[name]; ok {
			return id, true
		}
	}
	return ErrorID, false
}
