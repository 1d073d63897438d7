package expr

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
)

// OutputField resolves the field an expression produces over the given input
// schema. Unknown columns and type-invalid combinations come from user-built
// expressions, so they are reported as errors rather than assertions.
func OutputField(a *common.Arena[AExpr], schema *frame.Schema, e ExprIR) (frame.Field, error) {
	ty, err := typeOf(a, schema, e.Node)
	if err != nil {
		return frame.Field{}, err
	}
	name := e.OutputName
	if name == "" {
		name = RootName(a, e.Node)
	}
	return frame.Field{Name: name, Type: ty}, nil
}

func typeOf(a *common.Arena[AExpr], schema *frame.Schema, n common.Node) (common.Type, error) {
	switch v := a.Get(n).(type) {
	case Column:
		i, ok := schema.Index(v.Name)
		if !ok {
			return common.DefaultType, common.Errorf(common.NoSuchObjectError,
				"unknown column %q", v.Name)
		}
		return schema.Field(i).Type, nil

	case Literal:
		return v.Value.Type(), nil

	case BinaryExpr:
		left, err := typeOf(a, schema, v.Left)
		if err != nil {
			return common.DefaultType, err
		}
		right, err := typeOf(a, schema, v.Right)
		if err != nil {
			return common.DefaultType, err
		}
		return binaryOutputType(v.Op, left, right)

	case Agg:
		input, err := typeOf(a, schema, v.Input)
		if err != nil {
			return common.DefaultType, err
		}
		return aggOutputType(v.Op, input)

	case Cast:
		if _, err := typeOf(a, schema, v.Input); err != nil {
			return common.DefaultType, err
		}
		return v.To, nil
	}
	common.Assert(false, "unknown expression variant %T", a.Get(n))
	return common.DefaultType, nil
}

func isNumeric(t common.Type) bool {
	return t == common.Int64Type || t == common.Float64Type
}

func binaryOutputType(op Operator, left, right common.Type) (common.Type, error) {
	switch {
	case op.isComparison():
		if left != right && !(isNumeric(left) && isNumeric(right)) {
			return common.DefaultType, common.Errorf(common.SchemaMismatchError,
				"cannot compare %s with %s", left, right)
		}
		return common.BoolType, nil

	case op.isLogical():
		if left != common.BoolType || right != common.BoolType {
			return common.DefaultType, common.Errorf(common.SchemaMismatchError,
				"operator %s requires bool operands, got %s and %s", op, left, right)
		}
		return common.BoolType, nil

	default: // arithmetic
		if !isNumeric(left) || !isNumeric(right) {
			return common.DefaultType, common.Errorf(common.SchemaMismatchError,
				"cannot apply %s to %s and %s", op, left, right)
		}
		if left == common.Float64Type || right == common.Float64Type {
			return common.Float64Type, nil
		}
		return common.Int64Type, nil
	}
}

func aggOutputType(op AggOp, input common.Type) (common.Type, error) {
	switch op {
	case AggCount:
		return common.Int64Type, nil
	case AggMean:
		if !isNumeric(input) {
			return common.DefaultType, common.Errorf(common.SchemaMismatchError,
				"cannot take mean of %s", input)
		}
		return common.Float64Type, nil
	case AggSum:
		if !isNumeric(input) && input != common.BoolType {
			return common.DefaultType, common.Errorf(common.SchemaMismatchError,
				"cannot sum %s", input)
		}
		if input == common.BoolType {
			return common.Int64Type, nil
		}
		return input, nil
	case AggMin, AggMax:
		return input, nil
	}
	common.Assert(false, "unknown aggregation %d", int(op))
	return common.DefaultType, nil
}
