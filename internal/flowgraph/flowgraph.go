// Package flowgraph implements the Flow Graph of spec §4.3: basic-block
// partitioning of an IntermediateCode, successor edges, and
// reachability.
package flowgraph

import (
	"fmt"
	"sort"

	"cminus/internal/icode"
	"cminus/internal/symtab"
)

// BlockRef is an opaque handle to a BasicBlock within a Graph.
type BlockRef int

// BasicBlock is {start, end, successors}; start and end are 1-based
// IC line numbers and the range is inclusive (spec §3: "a statement at
// start is a leader").
type BasicBlock struct {
	Start      icode.LineNumber
	End        icode.LineNumber
	Successors []BlockRef
}

// Graph is the FlowGraph of spec §3: blocks plus a named entry point
// per function. Unlike the Rust original's `FlowGraph::new` (a literal
// 2-block stub regardless of input), this always builds the real
// partition — the redesign spec §9 calls for.
type Graph struct {
	Blocks  []BasicBlock
	Entries map[symtab.ID]BlockRef // function id -> its entry block
}

// Build partitions ic into basic blocks and wires successor edges, per
// spec §4.3's leader/block/edge rules.
func Build(ic *icode.IntermediateCode) *Graph {
	lines := ic.Lines()
	g := &Graph{Entries: make(map[symtab.ID]BlockRef)}
	if len(lines) == 0 {
		return g
	}

	leaders := findLeaders(lines)
	blockOf := make(map[icode.LineNumber]BlockRef, len(lines))

	for i, start := range leaders {
		end := lines[len(lines)-1].Number
		if i+1 < len(leaders) {
			end = prevLine(lines, leaders[i+1])
		}
		ref := BlockRef(len(g.Blocks))
		g.Blocks = append(g.Blocks, BasicBlock{Start: start, End: end})
		for _, l := range lines {
			if l.Number >= start && l.Number <= end {
				blockOf[l.Number] = ref
			}
		}
	}

	labelDefLine := make(map[symtab.ID]icode.LineNumber)
	for _, l := range lines {
		if l.Stmt.IsLabel() {
			if id, ok := l.Stmt.LabelID(); ok {
				labelDefLine[id] = l.Number
			}
		}
	}

	for i, l := range lines {
		ref := blockOf[l.Number]
		if l.Number != g.Blocks[ref].End {
			continue
		}
		s := l.Stmt
		switch {
		case s.Operator == icode.OpGoto:
			if id, ok := s.LabelID(); ok {
				if target, ok2 := labelDefLine[id]; ok2 {
					addSuccessor(&g.Blocks[ref], blockOf[target])
				}
			}
		case s.Operator.IsConditionalJump():
			if id, ok := s.LabelID(); ok {
				if target, ok2 := labelDefLine[id]; ok2 {
					addSuccessor(&g.Blocks[ref], blockOf[target])
				}
			}
			if i+1 < len(lines) {
				addSuccessor(&g.Blocks[ref], blockOf[lines[i+1].Number])
			}
		case s.Operator == icode.OpReturn:
			// zero successors
		default:
			if i+1 < len(lines) {
				addSuccessor(&g.Blocks[ref], blockOf[lines[i+1].Number])
			}
		}

	}

	// Entries are recorded from each block's leading Func statement,
	// not the last — a function body is never empty (Generate always
	// emits at least Func + Return), so every entry block's first line
	// is its Func statement.
	for ref := range g.Blocks {
		first, ok := ic.Get(g.Blocks[ref].Start)
		if ok && first.IsFunc() && first.Operand1 != nil {
			g.Entries[first.Operand1.ID()] = BlockRef(ref)
		}
	}

	return g
}

func addSuccessor(b *BasicBlock, ref BlockRef) {
	for _, s := range b.Successors {
		if s == ref {
			return
		}
	}
	b.Successors = append(b.Successors, ref)
}

// findLeaders computes the leader line numbers per spec §4.3: the
// first statement of a function, any Label target of a jump, and
// whatever immediately follows a jump or Return.
func findLeaders(lines []icode.Line) []icode.LineNumber {
	jumpTargets := make(map[symtab.ID]bool)
	for _, l := range lines {
		if l.Stmt.Operator.IsJump() && l.Stmt.Operator != icode.OpReturn {
			if id, ok := l.Stmt.LabelID(); ok {
				jumpTargets[id] = true
			}
		}
	}

	var leaders []icode.LineNumber
	seen := make(map[icode.LineNumber]bool)
	add := func(ln icode.LineNumber) {
		if !seen[ln] {
			seen[ln] = true
			leaders = append(leaders, ln)
		}
	}

	for i, l := range lines {
		if l.Stmt.IsFunc() {
			add(l.Number)
		}
		if l.Stmt.IsLabel() {
			if id, ok := l.Stmt.LabelID(); ok && jumpTargets[id] {
				add(l.Number)
			}
		}
		if i > 0 {
			prev := lines[i-1].Stmt
			if prev.IsJump() {
				add(l.Number)
			}
		}
	}

	sort.Slice(leaders, func(i, j int) bool { return leaders[i] < leaders[j] })
	return leaders
}

// prevLine returns the line immediately before ln within lines.
func prevLine(lines []icode.Line, ln icode.LineNumber) icode.LineNumber {
	for i, l := range lines {
		if l.Number == ln && i > 0 {
			return lines[i-1].Number
		}
	}
	return ln
}

// IsReachable reports whether the block containing line is reachable
// from entry by a forward traversal (spec §4.3).
func (g *Graph) IsReachable(line icode.LineNumber, entry BlockRef) bool {
	target := g.blockContaining(line)
	if target < 0 {
		return false
	}
	visited := make(map[BlockRef]bool)
	var walk func(BlockRef) bool
	walk = func(ref BlockRef) bool {
		if ref == target {
			return true
		}
		if visited[ref] {
			return false
		}
		visited[ref] = true
		for _, succ := range g.Blocks[ref].Successors {
			if walk(succ) {
				return true
			}
		}
		return false
	}
	return walk(entry)
}

func (g *Graph) blockContaining(line icode.LineNumber) BlockRef {
	for i, b := range g.Blocks {
		if line >= b.Start && line <= b.End {
			return BlockRef(i)
		}
	}
	return -1
}

// ReachableLines returns the full set of reachable line numbers for
// the function whose entry block is entry.
func (g *Graph) ReachableLines(entry BlockRef) map[icode.LineNumber]bool {
	out := make(map[icode.LineNumber]bool)
	visited := make(map[BlockRef]bool)
	var walk func(BlockRef)
	walk = func(ref BlockRef) {
		if visited[ref] {
			return
		}
		visited[ref] = true
		b := g.Blocks[ref]
		for l := b.Start; l <= b.End; l++ {
			out[l] = true
		}
		for _, succ := range b.Successors {
			walk(succ)
		}
	}
	walk(entry)
	return out
}

func (g *Graph) String() string {
	var out string
	for i, b := range g.Blocks {
		out += fmt.Sprintf("B%d [%d,%d] -> %v\n", i, b.Start, b.End, b.Successors)
	}
	return out
}
