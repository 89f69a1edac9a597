// Package x64 implements a minimal AT&T-syntax text-assembly emitter
// over the Intermediate Code (spec §6's backend output contract). It
// is deliberately shallow: one pass per IStatement, every symbol
// spilled to its own stack slot (no register allocation), no floating
// point. It exists so the `cc` pipeline has an end to run, not as the
// deep optimizing backend spec.md §1 scopes out.
package x64

import (
	"fmt"
	"strings"

	"cminus/internal/flowgraph"
	"cminus/internal/icode"
	"cminus/internal/symtab"
)

// frame assigns each local symbol a fixed, growing stack slot the way
// a naive single-pass codegen would: it never reuses a slot once
// assigned, even after the symbol's last use.
type frame struct {
	offsets map[symtab.ID]int
	next    int
}

func newFrame() *frame { return &frame{offsets: make(map[symtab.ID]int)} }

func (f *frame) slot(size icode.OperatorSize, id symtab.ID) int {
	if off, ok := f.offsets[id]; ok {
		return off
	}
	f.next += 8 // keep every slot quad-aligned regardless of size
	f.offsets[id] = f.next
	return f.next
}

func (f *frame) size() int { return f.next }

// Emit lowers ic into AT&T-syntax text assembly, one function label
// per Func statement and one mnemonic block per remaining statement.
// table supplies the function names used as labels; g is unused by codegen
// itself but accepted so callers can assert reachability first (dead
// code should already have been eliminated upstream).
func Emit(ic *icode.IntermediateCode, table *symtab.Table, _ *flowgraph.Graph) string {
	var out strings.Builder
	out.WriteString(".text\n")

	var fn *frame
	var fnName string
	for _, line := range ic.Lines() {
		s := line.Stmt
		switch {
		case s.IsFunc():
			fn = newFrame()
			fnName = funcName(table, s)
			fmt.Fprintf(&out, "\n.globl %s\n%s:\n", fnName, fnName)
			out.WriteString("\tpushq %rbp\n\tmovq %rsp, %rbp\n")
		case s.IsLabel():
			id, _ := s.LabelID()
			fmt.Fprintf(&out, ".L%d:\n", id)
		default:
			emitStatement(&out, fn, s)
		}
	}
	_ = fnName
	return out.String()
}

func funcName(table *symtab.Table, s icode.Statement) string {
	if s.Operand1 == nil {
		return "fn"
	}
	if sym, ok := table.Get(s.Operand1.ID()); ok {
		return sym.Name
	}
	return "fn"
}

func emitStatement(out *strings.Builder, fn *frame, s icode.Statement) {
	suffix := s.OpType.String()
	switch s.Operator {
	case icode.OpReturn:
		if s.Operand1 != nil {
			loadInto(out, fn, s.OpType, *s.Operand1, "%rax")
		}
		out.WriteString("\tpopq %rbp\n\tret\n")
	case icode.OpGoto:
		id, _ := s.LabelID()
		fmt.Fprintf(out, "\tjmp .L%d\n", id)
	case icode.OpAssign:
		loadInto(out, fn, s.OpType, *s.Operand1, "%rax")
		storeFrom(out, fn, s.OpType, "%rax", *s.Target)
	case icode.OpParam:
		loadInto(out, fn, s.OpType, *s.Operand1, "%rax")
		out.WriteString("\tpushq %rax\n")
	case icode.OpFuncCall:
		fmt.Fprintf(out, "\tcall %s\n", targetSymbolComment(s))
		if s.Target != nil {
			storeFrom(out, fn, s.OpType, "%rax", *s.Target)
		}
	case icode.OpArray:
		loadInto(out, fn, s.OpType, *s.Operand1, "%rax")
		loadInto(out, fn, s.OpType, *s.Operand2, "%rbx")
		fmt.Fprintf(out, "\tmov%s (%%rax,%%rbx,1), %%rax\n", suffix)
		storeFrom(out, fn, s.OpType, "%rax", *s.Target)
	case icode.OpCoerce:
		loadInto(out, fn, s.OpType, *s.Operand1, "%rax")
		storeFrom(out, fn, s.OpType, "%rax", *s.Target)
	default:
		if s.Operator.IsConditionalJump() {
			emitCondJump(out, fn, s, suffix)
			return
		}
		emitArith(out, fn, s, suffix)
	}
}

func emitCondJump(out *strings.Builder, fn *frame, s icode.Statement, suffix string) {
	loadInto(out, fn, s.OpType, *s.Operand1, "%rax")
	loadInto(out, fn, s.OpType, *s.Operand2, "%rbx")
	fmt.Fprintf(out, "\tcmp%s %%rbx, %%rax\n", suffix)
	id, _ := s.LabelID()
	fmt.Fprintf(out, "\t%s .L%d\n", jumpMnemonic(s.Operator), id)
}

func emitArith(out *strings.Builder, fn *frame, s icode.Statement, suffix string) {
	mnem, ok := arithMnemonic(s.Operator)
	if !ok {
		fmt.Fprintf(out, "\t# unsupported op %s\n", s.Operator)
		return
	}
	loadInto(out, fn, s.OpType, *s.Operand1, "%rax")
	if s.Operand2 != nil {
		loadInto(out, fn, s.OpType, *s.Operand2, "%rbx")
		fmt.Fprintf(out, "\t%s%s %%rbx, %%rax\n", mnem, suffix)
	} else {
		fmt.Fprintf(out, "\t%s%s %%rax\n", mnem, suffix)
	}
	storeFrom(out, fn, s.OpType, "%rax", *s.Target)
}

func arithMnemonic(op icode.Operator) (string, bool) {
	switch op {
	case icode.OpAdd:
		return "add", true
	case icode.OpSub:
		return "sub", true
	case icode.OpMul:
		return "imul", true
	case icode.OpDiv, icode.OpIDiv:
		return "div", true
	case icode.OpMod, icode.OpIMod:
		return "mod", true
	case icode.OpAnd:
		return "and", true
	case icode.OpOr:
		return "or", true
	case icode.OpNot:
		return "not", true
	case icode.OpMinus:
		return "neg", true
	default:
		return "", false
	}
}

func jumpMnemonic(op icode.Operator) string {
	switch op {
	case icode.OpJe:
		return "je"
	case icode.OpJne:
		return "jne"
	case icode.OpJl:
		return "jl"
	case icode.OpJle:
		return "jle"
	case icode.OpJg:
		return "jg"
	case icode.OpJge:
		return "jge"
	case icode.OpJb:
		return "jb"
	case icode.OpJbe:
		return "jbe"
	case icode.OpJa:
		return "ja"
	case icode.OpJae:
		return "jae"
	case icode.OpJz:
		return "jz"
	case icode.OpJnz:
		return "jnz"
	default:
		return "jmp"
	}
}

func loadInto(out *strings.Builder, fn *frame, size icode.OperatorSize, op icode.Operand, reg string) {
	switch op.Kind {
	case icode.OperandImmediate:
		fmt.Fprintf(out, "\tmov%s $%d, %s\n", size, op.Value, reg)
	case icode.OperandSymbol:
		off := fn.slot(size, op.ID())
		fmt.Fprintf(out, "\tmov%s -%d(%%rbp), %s\n", size, off, reg)
	}
}

func storeFrom(out *strings.Builder, fn *frame, size icode.OperatorSize, reg string, target icode.Operand) {
	off := fn.slot(size, target.ID())
	fmt.Fprintf(out, "\tmov%s %s, -%d(%%rbp)\n", size, reg, off)
}

func targetSymbolComment(s icode.Statement) string {
	if s.Operand1 != nil {
		return fmt.Sprintf("fn_%d", s.Operand1.ID())
	}
	return "fn"
}

// FrameSize reports the stack space a function's naive single-slot-
// per-symbol allocation would need, for callers that want to emit a
// prologue `subq $N, %rsp` themselves instead of relying on pushq/popq
// bookkeeping per access.
func FrameSize(ic *icode.IntermediateCode) int {
	fn := newFrame()
	for _, line := range ic.Lines() {
		s := line.Stmt
		// Mirror Emit: function and label symbols never get a slot.
		if s.IsFunc() || s.IsLabel() {
			continue
		}
		ops := []*icode.Operand{s.Operand1, s.Operand2, s.Target}
		switch {
		case s.Operator.IsJump():
			ops = ops[:2] // the target is a label
		case s.IsCall():
			ops = ops[1:] // operand1 names the callee
		}
		for _, op := range ops {
			if op != nil && op.Kind == icode.OperandSymbol {
				fn.slot(s.OpType, op.ID())
			}
		}
	}
	return fn.size()
}
