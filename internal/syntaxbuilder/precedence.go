package syntaxbuilder

import "cminus/internal/ast"

// ReduceExpression implements spec §4.1's "standard repeated-max
// precedence reduction" over a flat sequence of length 2k+1:
// [operand, op, operand, op, ..., operand]. Among operator positions
// (the odd indices of the combined sequence), it repeatedly picks the
// highest-precedence operator — leftmost on ties — reduces that triple
// via VisitBinary, and loops until one node remains.
//
// Ported from the Rule::expression arm of the original tree walker,
// which holds the same flattened list in a deque and removes the
// winning (operator, left, right) triple on each pass.
func (b *Builder) ReduceExpression(operands []*ast.Node, ops []ast.NodeType, lines []int) *ast.Node {
	if len(operands) == 0 {
		return ast.Empty()
	}
	if len(ops) != len(operands)-1 || len(lines) != len(ops) {
		panic("syntaxbuilder: ReduceExpression requires len(ops) == len(operands)-1")
	}
	if len(operands) == 1 {
		return operands[0]
	}

	nodes := append([]*ast.Node(nil), operands...)
	operators := append([]ast.NodeType(nil), ops...)
	opLines := append([]int(nil), lines...)

	for len(nodes) > 1 {
		best := 0
		for i := 1; i < len(operators); i++ {
			// Strictly greater only: the leftmost operator already in
			// `best` wins every tie, matching spec's "break ties by
			// leftmost (left-associative fold)".
			if operators[i].Precedence() > operators[best].Precedence() {
				best = i
			}
		}

		left, right := nodes[best], nodes[best+1]
		reduced := b.VisitBinary(operators[best], left, right, opLines[best])

		newNodes := make([]*ast.Node, 0, len(nodes)-1)
		newNodes = append(newNodes, nodes[:best]...)
		newNodes = append(newNodes, reduced)
		newNodes = append(newNodes, nodes[best+2:]...)
		nodes = newNodes

		newOps := make([]ast.NodeType, 0, len(operators)-1)
		newOps = append(newOps, operators[:best]...)
		newOps = append(newOps, operators[best+1:]...)
		operators = newOps

		newLines := make([]int, 0, len(opLines)-1)
		newLines = append(newLines, opLines[:best]...)
		newLines = append(newLines, opLines[best+1:]...)
		opLines = newLines
	}
	return nodes[0]
}
