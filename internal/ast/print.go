package ast

import (
	"fmt"
	"sort"
	"strings"

	"cminus/internal/symtab"
)

// Print renders the whole tree as indented text, one function per
// top-level entry, in ascending function-id order. There is no
// Graphviz-style pretty-tree-printing library anywhere in the example
// pack (the original used Rust's `ptree` crate), so this is a hand-
// rolled equivalent — see DESIGN.md.
func Print(t *Tree, table *symtab.Table) string {
	var sb strings.Builder
	ids := make([]symtab.ID, 0, len(t.Functions))
	for id := range t.Functions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fr := t.Functions[id]
		fmt.Fprintf(&sb, "%s (id %d)\n", fr.Name, id)
		if fr.Root == nil {
			sb.WriteString("  <no body>\n")
			continue
		}
		printNode(&sb, fr.Root, table, "  ")
	}
	return sb.String()
}

func printNode(sb *strings.Builder, n *Node, table *symtab.Table, prefix string) {
	if n == nil {
		fmt.Fprintf(sb, "%s<nil>\n", prefix)
		return
	}
	switch n.Kind {
	case KindEmpty:
		fmt.Fprintf(sb, "%sEmpty\n", prefix)
	case KindConstant:
		fmt.Fprintf(sb, "%s%s %s = %s\n", prefix, n.NodeType, n.ReturnType, n.Value)
	case KindSymbol:
		name := fmt.Sprintf("sym:%d", n.SymbolID)
		if sym, ok := table.Get(n.SymbolID); ok {
			name = sym.Name
		}
		fmt.Fprintf(sb, "%s%s %s [%s]\n", prefix, n.NodeType, n.ReturnType, name)
	case KindUnary:
		fmt.Fprintf(sb, "%s%s %s\n", prefix, n.NodeType, n.ReturnType)
		printNode(sb, n.Child, table, prefix+"  ")
	case KindBinary:
		fmt.Fprintf(sb, "%s%s %s\n", prefix, n.NodeType, n.ReturnType)
		printNode(sb, n.Left, table, prefix+"  ")
		printNode(sb, n.Right, table, prefix+"  ")
	}
}
