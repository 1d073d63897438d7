package plan

import (
	"github.com/planardb/planar/common"
)

// mapFn maps one source operator to the operator stored in the destination
// arena. It receives the handles of the already-rebuilt children, in Inputs
// order. Returning an error aborts the whole rebuild.
type mapFn func(op IR, children []common.Node) (IR, error)

// rebuild copies the plan under v.Root into dst bottom-up, passing every
// operator through fn. It drives an explicit work stack instead of
// recursing, so plans nested hundreds of thousands of nodes deep rebuild
// without growing the goroutine stack.
//
// Children are emitted into dst strictly before their parents, which keeps
// the rebuilt arena topologically ordered (every handle points below the
// node holding it). Shared subtrees are rebuilt once per reference, not once
// per node: the walk follows references and keeps no memo table, so a node
// reachable twice is duplicated in the destination, exactly as a recursive
// clone would do.
func rebuild(v View, dst *common.Arena[IR], fn mapFn) (common.Node, error) {
	type task struct {
		node     common.Node
		expanded bool
	}

	stack := make([]task, 0, 64)
	stack = append(stack, task{node: v.Root})

	// results holds rebuilt handles; a parent pops one per child when its
	// turn comes.
	results := make([]common.Node, 0, 64)
	var childBuf []common.Node

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		op := v.IRs.Get(t.node)

		if !t.expanded {
			stack = append(stack, task{node: t.node, expanded: true})
			childBuf = Inputs(op, childBuf[:0])
			for _, child := range childBuf {
				stack = append(stack, task{node: child})
			}
			continue
		}

		childBuf = Inputs(op, childBuf[:0])
		n := len(childBuf)
		children := make([]common.Node, n)
		for i := 0; i < n; i++ {
			children[i] = results[len(results)-1]
			results = results[:len(results)-1]
		}

		mapped, err := fn(op, children)
		if err != nil {
			return 0, err
		}
		results = append(results, dst.Add(mapped))
	}

	common.Assert(len(results) == 1, "rebuild left %d roots on the result stack", len(results))
	return results[0], nil
}
