package plan

import (
	"strings"

	"github.com/planardb/planar/common"
)

// DescribeTree renders the plan as a box-drawing tree, one operator label
// per line. Shared subtrees appear once per reference, mirroring how
// transforms walk the plan. Like the other renderers, the walk carries its
// own stack.
func (v View) DescribeTree() string {
	type item struct {
		node        common.Node
		linePrefix  string
		childPrefix string
	}

	var b strings.Builder
	first := true
	stack := []item{{node: v.Root}}
	var childBuf []common.Node

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !first {
			b.WriteByte('\n')
		}
		first = false
		b.WriteString(it.linePrefix)
		b.WriteString(v.nodeLabel(it.node))

		childBuf = Inputs(v.Get(it.node), childBuf[:0])
		for i := len(childBuf) - 1; i >= 0; i-- {
			connector, continuation := "├── ", "│   "
			if i == len(childBuf)-1 {
				connector, continuation = "└── ", "    "
			}
			stack = append(stack, item{
				node:        childBuf[i],
				linePrefix:  it.childPrefix + connector,
				childPrefix: it.childPrefix + continuation,
			})
		}
	}
	return b.String()
}
