package symtab

import (
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func TestNewSeedsBuiltins(t *testing.T) {
	tab := New()
	for _, id := range BuiltinIDs {
		if !id.IsBuiltin() {
			t.Fatalf("id %d should report IsBuiltin", id)
		}
		if _, ok := tab.Get(id); !ok {
			t.Fatalf("builtin id %d missing from table", id)
		}
	}
}

func TestAddFunctionCachesMain(t *testing.T) {
	tab := New()
	if tab.HasMain() {
		t.Fatalf("fresh table should not have main yet")
	}
	id := tab.AddFunction("main", RTVoid, 1)
	if !tab.HasMain() || tab.MainID() != id {
		t.Fatalf("AddFunction(main) did not cache main id")
	}
}

func TestAddSymbolThreadsFunctionInfo(t *testing.T) {
	tab := New()
	fn := tab.AddFunction("f", RTInt, 1)
	p := tab.AddSymbol(Symbol{Name: "x", ReturnType: RTInt, SymbolType: STParameter, Line: 1},
		Scope{Global: false, OwningFunction: fn})
	v := tab.AddSymbol(Symbol{Name: "y", ReturnType: RTInt, SymbolType: STVariable, Line: 2},
		Scope{Global: false, OwningFunction: fn})

	fi := tab.FunctionInfo(fn)
	if len(fi.Parameters) != 1 || fi.Parameters[0] != p {
		t.Fatalf("expected parameter %d recorded, got %v", p, fi.Parameters)
	}
	if len(fi.Variables) != 1 || fi.Variables[0] != v {
		t.Fatalf("expected variable %d recorded, got %v", v, fi.Variables)
	}
}

func TestIDsAreDenseAndMonotonic(t *testing.T) {
	tab := New()
	first := tab.AddFunction("a", RTVoid, 1)
	second := tab.AddFunction("b", RTVoid, 2)
	if second != first+1 {
		t.Fatalf("expected dense monotonic ids, got %d then %d", first, second)
	}
}

func TestReturnTypeCoercionOrder(t *testing.T) {
	cases := []struct {
		from, to ReturnType
		want     bool
	}{
		{RTBool, RTInt, true},
		{RTInt8, RTUint8, true},
		{RTUint, RTInt, false},
		{RTInt, RTInt, true},
		{RTReal, RTInt, false},
		{RTVoid, RTInt, false},
	}
	for _, c := range cases {
		if got := c.from.CoercesTo(c.to); got != c.want {
			t.Errorf("%s.CoercesTo(%s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestScopeManagerInnermostRedeclaration(t *testing.T) {
	sm := NewScopeManager()
	sm.Bind("x", 1)
	if !sm.IsDefinedInnermost("x") {
		t.Fatalf("expected x bound in innermost scope")
	}
	sm.EnterNewScope()
	if sm.IsDefinedInnermost("x") {
		t.Fatalf("entering a new scope should not carry over innermost bindings")
	}
}

func TestScopeManagerResolveWalksOuterScopes(t *testing.T) {
	sm := NewScopeManager()
	sm.Bind("x", 42)
	sm.EnterNewScope()
	id, ok := sm.Resolve("x")
	if !ok || id != 42 {
		t.Fatalf("expected nested scope to resolve outer binding x=42, got %d,%v", id, ok)
	}
	sm.Bind("x", 7)
	id, ok = sm.Resolve("x")
	if !ok || id != 7 {
		t.Fatalf("expected innermost shadowing binding to win, got %d,%v", id, ok)
	}
	sm.LeaveScope()
	id, ok = sm.Resolve("x")
	if !ok || id != 42 {
		t.Fatalf("expected outer binding restored after LeaveScope, got %d,%v", id, ok)
	}
}

func TestAddSymbolFunctionInfoMatchesExpected(t *testing.T) {
	tab := New()
	fn := tab.AddFunction("f", RTInt, 1)
	p := tab.AddSymbol(Symbol{Name: "x", ReturnType: RTInt, SymbolType: STParameter, Line: 1},
		Scope{Global: false, OwningFunction: fn})
	v := tab.AddSymbol(Symbol{Name: "y", ReturnType: RTInt, SymbolType: STVariable, Line: 2},
		Scope{Global: false, OwningFunction: fn})

	got := tab.FunctionInfo(fn)
	want := &FunctionInfo{Parameters: []ID{p}, Variables: []ID{v}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FunctionInfo mismatch:\n%s", pretty.Sprint(pretty.Diff(want, got)))
	}
}

func TestScopeManagerNeverPopsGlobalScope(t *testing.T) {
	sm := NewScopeManager()
	sm.LeaveScope()
	if sm.Depth() != 1 {
		t.Fatalf("expected global scope to survive a stray LeaveScope, depth=%d", sm.Depth())
	}
}
