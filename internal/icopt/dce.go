// Package icopt implements the IC-level optimization pass: reachability-
// based dead-code elimination (spec §4.3).
package icopt

import (
	"cminus/internal/flowgraph"
	"cminus/internal/icode"
)

// EliminateDeadCode marks every IC line unreachable from its function's
// entry block absent, compacts the list, and rebuilds the flow graph
// from the compacted IC. It is monotone (never adds statements, never
// changes the semantics of reachable code) and idempotent: running it
// again on its own output is a no-op (spec §4.3, §8).
func EliminateDeadCode(ic *icode.IntermediateCode, g *flowgraph.Graph) (*icode.IntermediateCode, *flowgraph.Graph) {
	reachable := make(map[icode.LineNumber]bool)
	for _, entry := range g.Entries {
		for line := range g.ReachableLines(entry) {
			reachable[line] = true
		}
	}

	for _, l := range ic.Lines() {
		if !reachable[l.Number] {
			ic.Remove(l.Number)
		}
	}
	ic.Compact()

	return ic, flowgraph.Build(ic)
}
