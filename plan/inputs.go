package plan

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
)

// Inputs appends op's input handles to buf and returns it. Child order is
// fixed and shared by every traversal in this package: primary input first,
// then secondary inputs (join right side, contexts) in payload order.
// Calling Inputs on an Invalid node is a programming error.
func Inputs(op IR, buf []common.Node) []common.Node {
	switch v := op.(type) {
	case Slice:
		return append(buf, v.Input)
	case Filter:
		return append(buf, v.Input)
	case Scan, DataFrameScan, PlaceholderScan:
		return buf
	case SimpleProjection:
		return append(buf, v.Input)
	case Select:
		return append(buf, v.Input)
	case Sort:
		return append(buf, v.Input)
	case Cache:
		return append(buf, v.Input)
	case GroupBy:
		return append(buf, v.Input)
	case Join:
		return append(buf, v.InputLeft, v.InputRight)
	case HStack:
		return append(buf, v.Input)
	case Distinct:
		return append(buf, v.Input)
	case MapFunction:
		return append(buf, v.Input)
	case Union:
		return append(buf, v.Inputs...)
	case HConcat:
		return append(buf, v.Inputs...)
	case ExtContext:
		buf = append(buf, v.Input)
		return append(buf, v.Contexts...)
	case Sink:
		return append(buf, v.Input)
	case SinkMultiple:
		return append(buf, v.Inputs...)
	case MergeSorted:
		return append(buf, v.InputLeft, v.InputRight)
	case Invalid:
		common.Assert(false, "encountered an invalid plan node")
	}
	common.Assert(false, "unknown plan variant %T", op)
	return nil
}

// WithInputs returns a copy of op with its input handles replaced, in the
// same order Inputs reports them. Every other payload field is carried over
// unchanged; expression handles stay valid because transforms clone the
// expression arena wholesale. The number of replacement inputs must match.
func WithInputs(op IR, inputs []common.Node) IR {
	expect := func(n int) {
		common.Assert(len(inputs) == n, "%s takes %d inputs, got %d", OpName(op), n, len(inputs))
	}
	switch v := op.(type) {
	case Slice:
		expect(1)
		v.Input = inputs[0]
		return v
	case Filter:
		expect(1)
		v.Input = inputs[0]
		return v
	case Scan, DataFrameScan, PlaceholderScan:
		expect(0)
		return op
	case SimpleProjection:
		expect(1)
		v.Input = inputs[0]
		return v
	case Select:
		expect(1)
		v.Input = inputs[0]
		return v
	case Sort:
		expect(1)
		v.Input = inputs[0]
		return v
	case Cache:
		expect(1)
		v.Input = inputs[0]
		return v
	case GroupBy:
		expect(1)
		v.Input = inputs[0]
		return v
	case Join:
		expect(2)
		v.InputLeft = inputs[0]
		v.InputRight = inputs[1]
		return v
	case HStack:
		expect(1)
		v.Input = inputs[0]
		return v
	case Distinct:
		expect(1)
		v.Input = inputs[0]
		return v
	case MapFunction:
		expect(1)
		v.Input = inputs[0]
		return v
	case Union:
		expect(len(v.Inputs))
		v.Inputs = append([]common.Node(nil), inputs...)
		return v
	case HConcat:
		expect(len(v.Inputs))
		v.Inputs = append([]common.Node(nil), inputs...)
		return v
	case ExtContext:
		expect(1 + len(v.Contexts))
		v.Input = inputs[0]
		v.Contexts = append([]common.Node(nil), inputs[1:]...)
		return v
	case Sink:
		expect(1)
		v.Input = inputs[0]
		return v
	case SinkMultiple:
		expect(len(v.Inputs))
		v.Inputs = append([]common.Node(nil), inputs...)
		return v
	case MergeSorted:
		expect(2)
		v.InputLeft = inputs[0]
		v.InputRight = inputs[1]
		return v
	case Invalid:
		common.Assert(false, "encountered an invalid plan node")
	}
	common.Assert(false, "unknown plan variant %T", op)
	return nil
}

// WithExprRefs returns a copy of op with its expression references replaced,
// in the same order ExprRefs reports them. Inputs and the rest of the
// payload are carried over unchanged. The number of replacements must match.
func WithExprRefs(op IR, refs []expr.ExprIR) IR {
	expect := func(n int) {
		common.Assert(len(refs) == n, "%s holds %d expressions, got %d", OpName(op), n, len(refs))
	}
	switch v := op.(type) {
	case Filter:
		expect(1)
		v.Predicate = refs[0]
		return v
	case Scan:
		if v.Predicate == nil {
			expect(0)
			return v
		}
		expect(1)
		p := refs[0]
		v.Predicate = &p
		return v
	case Select:
		expect(len(v.Exprs))
		v.Exprs = append([]expr.ExprIR(nil), refs...)
		return v
	case Sort:
		expect(len(v.ByColumn))
		v.ByColumn = append([]expr.ExprIR(nil), refs...)
		return v
	case GroupBy:
		expect(len(v.Keys) + len(v.Aggs))
		v.Keys = append([]expr.ExprIR(nil), refs[:len(v.Keys)]...)
		v.Aggs = append([]expr.ExprIR(nil), refs[len(v.Keys):]...)
		return v
	case Join:
		expect(len(v.LeftOn) + len(v.RightOn))
		v.LeftOn = append([]expr.ExprIR(nil), refs[:len(v.LeftOn)]...)
		v.RightOn = append([]expr.ExprIR(nil), refs[len(v.LeftOn):]...)
		return v
	case HStack:
		expect(len(v.Exprs))
		v.Exprs = append([]expr.ExprIR(nil), refs...)
		return v
	case Slice, DataFrameScan, PlaceholderScan, SimpleProjection,
		Cache, Distinct, MapFunction, Union, HConcat, ExtContext,
		Sink, SinkMultiple, MergeSorted:
		expect(0)
		return op
	case Invalid:
		common.Assert(false, "encountered an invalid plan node")
	}
	common.Assert(false, "unknown plan variant %T", op)
	return nil
}

// ExprRefs appends op's expression references to buf and returns it. Used by
// renderers and by structural validation of deserialized plans.
func ExprRefs(op IR, buf []expr.ExprIR) []expr.ExprIR {
	switch v := op.(type) {
	case Filter:
		return append(buf, v.Predicate)
	case Scan:
		if v.Predicate != nil {
			return append(buf, *v.Predicate)
		}
		return buf
	case Select:
		return append(buf, v.Exprs...)
	case Sort:
		return append(buf, v.ByColumn...)
	case GroupBy:
		buf = append(buf, v.Keys...)
		return append(buf, v.Aggs...)
	case Join:
		buf = append(buf, v.LeftOn...)
		return append(buf, v.RightOn...)
	case HStack:
		return append(buf, v.Exprs...)
	case Slice, DataFrameScan, PlaceholderScan, SimpleProjection,
		Cache, Distinct, MapFunction, Union, HConcat, ExtContext,
		Sink, SinkMultiple, MergeSorted:
		return buf
	case Invalid:
		common.Assert(false, "encountered an invalid plan node")
	}
	common.Assert(false, "unknown plan variant %T", op)
	return nil
}
