package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
)

// nodeLabel renders one operator as a single line. The tree and dot
// renderers use these labels verbatim; Describe shares most of them but
// interleaves its own structure for multi-input operators.
func (v View) nodeLabel(n common.Node) string {
	switch op := v.Get(n).(type) {
	case Slice:
		return fmt.Sprintf("SLICE[offset: %d, len: %d]", op.Offset, op.Len)
	case Filter:
		return fmt.Sprintf("FILTER BY %s", expr.Display(v.Exprs, op.Predicate))
	case Scan:
		return scanLabel(v, op)
	case DataFrameScan:
		return frameScanLabel("DF", op.Schema, op.OutputSchema)
	case PlaceholderScan:
		return frameScanLabel("PLACEHOLDER", op.Schema, op.OutputSchema)
	case SimpleProjection:
		total := v.SchemaOf(op.Input).Len()
		return fmt.Sprintf("simple π %d/%d", op.Columns.Len(), total)
	case Select:
		return fmt.Sprintf("SELECT [%s]", expr.DisplayAll(v.Exprs, op.Exprs))
	case Sort:
		return fmt.Sprintf("SORT BY [%s]", expr.DisplayAll(v.Exprs, op.ByColumn))
	case Cache:
		return fmt.Sprintf("CACHE[id: %s]", op.ID)
	case GroupBy:
		return fmt.Sprintf("AGGREGATE [%s] BY [%s]",
			expr.DisplayAll(v.Exprs, op.Aggs), expr.DisplayAll(v.Exprs, op.Keys))
	case Join:
		how := strings.ToUpper(op.Options.How.String())
		return fmt.Sprintf("%s JOIN[left: [%s], right: [%s]]",
			how, expr.DisplayAll(v.Exprs, op.LeftOn), expr.DisplayAll(v.Exprs, op.RightOn))
	case HStack:
		return fmt.Sprintf("WITH_COLUMNS [%s]", expr.DisplayAll(v.Exprs, op.Exprs))
	case Distinct:
		label := fmt.Sprintf("UNIQUE[maintain_order: %t, keep: %s]",
			op.Options.MaintainOrder, op.Options.Keep)
		if len(op.Options.Subset) > 0 {
			label += fmt.Sprintf(" BY [%s]", strings.Join(op.Options.Subset, ", "))
		}
		return label
	case MapFunction:
		return op.Function.String()
	case Union:
		return "UNION"
	case HConcat:
		return "HCONCAT"
	case ExtContext:
		return "EXTERNAL_CONTEXT"
	case Sink:
		return fmt.Sprintf("SINK (%s)", op.Target)
	case SinkMultiple:
		return "SINK_MULTIPLE"
	case MergeSorted:
		return fmt.Sprintf("MERGE_SORTED[key: %s]", op.Key)
	case Invalid:
		common.Assert(false, "encountered an invalid plan node")
	}
	common.Assert(false, "unknown plan variant %T", v.Get(n))
	return ""
}

// frameScanLabel renders in-memory scans and placeholders: the first few
// column names plus the projection arity.
func frameScanLabel(prefix string, schema, output *frame.Schema) string {
	names := schema.Names()
	ellipsis := ""
	if len(names) > 4 {
		names = names[:4]
		ellipsis = ", ..."
	}
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}
	return fmt.Sprintf("%s [%s%s]; PROJECT %s/%d COLUMNS",
		prefix, strings.Join(quoted, ", "), ellipsis, projectArity(output), schema.Len())
}

func scanLabel(v View, op Scan) string {
	label := fmt.Sprintf("%s SCAN [%s]; PROJECT %s/%d COLUMNS",
		strings.ToUpper(op.Format.String()), strings.Join(op.Paths, ", "),
		projectArity(op.OutputSchema), op.Schema.Len())
	if op.Predicate != nil {
		label += fmt.Sprintf("; SELECTION: %s", expr.Display(v.Exprs, *op.Predicate))
	}
	return label
}

func projectArity(output *frame.Schema) string {
	if output == nil {
		return "*"
	}
	return strconv.Itoa(output.Len())
}

// renderInstr is one step of the iterative describe walk: either a literal
// line, or a node still to be expanded.
type renderInstr struct {
	isNode bool
	node   common.Node
	indent int
	text   string
}

// Describe renders the plan one operator per line, each input indented two
// spaces beneath its consumer. Multi-input operators wrap their inputs in
// labeled sections. The walk keeps its own stack, so arbitrarily deep plans
// render without recursion.
func (v View) Describe() string {
	var b strings.Builder
	first := true
	writeLine := func(indent int, text string) {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		for i := 0; i < indent; i++ {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}

	stack := []renderInstr{{isNode: true, node: v.Root}}
	pushText := func(indent int, text string) {
		stack = append(stack, renderInstr{indent: indent, text: text})
	}
	pushNode := func(indent int, n common.Node) {
		stack = append(stack, renderInstr{isNode: true, indent: indent, node: n})
	}

	for len(stack) > 0 {
		in := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !in.isNode {
			writeLine(in.indent, in.text)
			continue
		}
		ind := in.indent

		// Instructions pop in reverse push order, so everything below
		// pushes epilogues first and first-emitted children last.
		switch op := v.Get(in.node).(type) {
		case Filter:
			writeLine(ind, fmt.Sprintf("FILTER %s FROM", expr.Display(v.Exprs, op.Predicate)))
			pushNode(ind+2, op.Input)
		case Select:
			writeLine(ind, fmt.Sprintf("SELECT [%s] FROM", expr.DisplayAll(v.Exprs, op.Exprs)))
			pushNode(ind+2, op.Input)
		case GroupBy:
			writeLine(ind, fmt.Sprintf("AGGREGATE [%s] BY [%s] FROM",
				expr.DisplayAll(v.Exprs, op.Aggs), expr.DisplayAll(v.Exprs, op.Keys)))
			pushNode(ind+2, op.Input)
		case HStack:
			writeLine(ind, fmt.Sprintf("WITH_COLUMNS [%s] FROM", expr.DisplayAll(v.Exprs, op.Exprs)))
			pushNode(ind+2, op.Input)

		case Join:
			how := strings.ToUpper(op.Options.How.String())
			writeLine(ind, how+" JOIN:")
			pushText(ind, "END "+how+" JOIN")
			pushNode(ind+4, op.InputRight)
			pushText(ind+2, fmt.Sprintf("RIGHT PLAN ON: [%s]", expr.DisplayAll(v.Exprs, op.RightOn)))
			pushNode(ind+4, op.InputLeft)
			pushText(ind+2, fmt.Sprintf("LEFT PLAN ON: [%s]", expr.DisplayAll(v.Exprs, op.LeftOn)))

		case MergeSorted:
			writeLine(ind, fmt.Sprintf("MERGE_SORTED[key: %s]:", op.Key))
			pushText(ind, "END MERGE_SORTED")
			pushNode(ind+4, op.InputRight)
			pushText(ind+2, "RIGHT PLAN:")
			pushNode(ind+4, op.InputLeft)
			pushText(ind+2, "LEFT PLAN:")

		case Union:
			v.describeSections(writeLine, &stack, ind, "UNION", op.Inputs)
		case HConcat:
			v.describeSections(writeLine, &stack, ind, "HCONCAT", op.Inputs)
		case SinkMultiple:
			v.describeSections(writeLine, &stack, ind, "SINK_MULTIPLE", op.Inputs)

		case ExtContext:
			writeLine(ind, "EXTERNAL_CONTEXT")
			pushText(ind, "END EXTERNAL_CONTEXT")
			for i := len(op.Contexts) - 1; i >= 0; i-- {
				pushNode(ind+4, op.Contexts[i])
				pushText(ind+2, fmt.Sprintf("CONTEXT %d:", i))
			}
			pushNode(ind+4, op.Input)
			pushText(ind+2, "PLAN:")

		default:
			writeLine(ind, v.nodeLabel(in.node))
			children := Inputs(op, nil)
			for i := len(children) - 1; i >= 0; i-- {
				pushNode(ind+2, children[i])
			}
		}
	}
	return b.String()
}

// describeSections emits a header, one labeled section per input, and a
// closing line, in the PLAN i: style.
func (v View) describeSections(writeLine func(int, string), stack *[]renderInstr, ind int, name string, inputs []common.Node) {
	writeLine(ind, name)
	*stack = append(*stack, renderInstr{indent: ind, text: "END " + name})
	for i := len(inputs) - 1; i >= 0; i-- {
		*stack = append(*stack, renderInstr{isNode: true, indent: ind + 4, node: inputs[i]})
		*stack = append(*stack, renderInstr{indent: ind + 2, text: fmt.Sprintf("PLAN %d:", i)})
	}
}
