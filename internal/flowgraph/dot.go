package flowgraph

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"cminus/internal/symtab"
)

// DOT renders g as Graphviz DOT text, one labeled subgraph per
// function entry point. No Graphviz Go binding exists anywhere in the
// example pack (the original used Rust's `dot` crate, itself only a
// DOT-text writer), so this is hand-rolled text assembly — see
// DESIGN.md.
func DOT(g *Graph, table *symtab.Table) string {
	var sb strings.Builder
	sb.WriteString("digraph cfg {\n  node [shape=box fontname=monospace];\n")

	entryIDs := make([]symtab.ID, 0, len(g.Entries))
	for id := range g.Entries {
		entryIDs = append(entryIDs, id)
	}
	sort.Slice(entryIDs, func(i, j int) bool { return entryIDs[i] < entryIDs[j] })
	for _, fnID := range entryIDs {
		name := fnID.String()
		if sym, ok := table.Get(fnID); ok {
			name = sym.Name
		}
		fmt.Fprintf(&sb, "  subgraph cluster_%d {\n    label=%q;\n", fnID, name)
		for _, ref := range reachableBlocks(g, g.Entries[fnID]) {
			b := g.Blocks[ref]
			fmt.Fprintf(&sb, "    b%d [label=\"B%d [%d,%d]\"];\n", ref, ref, b.Start, b.End)
		}
		sb.WriteString("  }\n")
	}
	for i, b := range g.Blocks {
		for _, succ := range b.Successors {
			fmt.Fprintf(&sb, "  b%d -> b%d;\n", i, succ)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func reachableBlocks(g *Graph, entry BlockRef) []BlockRef {
	visited := make(map[BlockRef]bool)
	var order []BlockRef
	var walk func(BlockRef)
	walk = func(ref BlockRef) {
		if visited[ref] {
			return
		}
		visited[ref] = true
		order = append(order, ref)
		for _, succ := range g.Blocks[ref].Successors {
			walk(succ)
		}
	}
	walk(entry)
	return order
}

// RenderPNG writes dotText to outPath. If a `dot` binary is available
// on $PATH it is invoked to produce a PNG at outPath; otherwise the raw
// DOT source is written to outPath+".dot" and ok is false so the
// caller can tell the user why no PNG appeared.
func RenderPNG(dotText, outPath string) (ok bool, err error) {
	dotBin, lookErr := exec.LookPath("dot")
	if lookErr != nil {
		return false, os.WriteFile(outPath+".dot", []byte(dotText), 0o644)
	}
	cmd := exec.Command(dotBin, "-Tpng", "-o", outPath)
	cmd.Stdin = strings.NewReader(dotText)
	if err := cmd.Run(); err != nil {
		return false, err
	}
	return true, nil
}
