package plan

import (
	"fmt"
	"strings"

	"github.com/planardb/planar/common"
)

// Dot renders the plan as a graphviz graph. Node identifiers are the arena
// handles, so a subtree shared by two parents shows up once with two edges;
// the dot output is the one renderer that makes the DAG structure visible.
func (v View) Dot() string {
	var lines []string
	lines = append(lines, "graph planar_query {")

	visited := make(map[common.Node]bool)
	stack := []common.Node{v.Root}
	var edges []string
	var childBuf []common.Node

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true

		lines = append(lines, fmt.Sprintf("  n%d [label=%q]", n, v.nodeLabel(n)))
		childBuf = Inputs(v.Get(n), childBuf[:0])
		for _, c := range childBuf {
			edges = append(edges, fmt.Sprintf("  n%d -- n%d", n, c))
			stack = append(stack, c)
		}
	}

	lines = append(lines, edges...)
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}
