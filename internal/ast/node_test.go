package ast

import (
	"testing"

	"cminus/internal/symtab"
)

func TestPrecedenceGroups(t *testing.T) {
	if NMul.Precedence() <= NAdd.Precedence() {
		t.Fatalf("multiplicative must bind tighter than additive")
	}
	if NAdd.Precedence() <= NRelEqual.Precedence() {
		t.Fatalf("additive must bind tighter than relational")
	}
	if NRelEqual.Precedence() <= NAnd.Precedence() {
		t.Fatalf("relational must bind tighter than And")
	}
	if NAnd.Precedence() <= NOr.Precedence() {
		t.Fatalf("And must bind tighter than Or")
	}
}

func TestWidestKindPrefersLarger(t *testing.T) {
	if WidestKind(CKInt8, CKInt) != CKInt {
		t.Fatalf("expected Int to win over Int8")
	}
	if WidestKind(CKInt, CKInt8) != CKInt {
		t.Fatalf("expected Int to win regardless of argument order")
	}
}

func TestConstantRoundTrip(t *testing.T) {
	c := ConstInt(14)
	if c.Widened() != 14 {
		t.Fatalf("expected widened value 14, got %d", c.Widened())
	}
	if c.ReturnType() != symtab.RTInt {
		t.Fatalf("expected RTInt, got %s", c.ReturnType())
	}
}

func TestIsErrorPropagation(t *testing.T) {
	n := SymbolNode(NId, symtab.RTError, symtab.ErrorID, 1)
	if !n.IsError() {
		t.Fatalf("expected node with RTError to report IsError")
	}
}
