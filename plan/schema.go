package plan

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
)

// SchemaOf resolves the output schema of node n. Operators that change the
// column set store their schema; the rest pass their input's schema through,
// so resolution walks down until it hits a stored schema, then applies any
// MapFunctions it crossed on the way. The walk is a plain loop: each step
// descends exactly one input, so depth costs no goroutine stack.
func (v View) SchemaOf(n common.Node) *frame.Schema {
	var pending []Function
	var schema *frame.Schema

walk:
	for {
		switch op := v.IRs.Get(n).(type) {
		case Scan:
			schema = scanSchema(op.Schema, op.OutputSchema)
			break walk
		case DataFrameScan:
			schema = scanSchema(op.Schema, op.OutputSchema)
			break walk
		case PlaceholderScan:
			schema = scanSchema(op.Schema, op.OutputSchema)
			break walk
		case SimpleProjection:
			schema = op.Columns
			break walk
		case Select:
			schema = op.Schema
			break walk
		case GroupBy:
			schema = op.Schema
			break walk
		case Join:
			schema = op.Schema
			break walk
		case HStack:
			schema = op.Schema
			break walk
		case HConcat:
			schema = op.Schema
			break walk
		case ExtContext:
			schema = op.Schema
			break walk
		case SinkMultiple:
			// A multi-sink job produces no rows.
			schema = frame.NewSchema(nil)
			break walk

		case Slice:
			n = op.Input
		case Filter:
			n = op.Input
		case Sort:
			n = op.Input
		case Cache:
			n = op.Input
		case Distinct:
			n = op.Input
		case Sink:
			n = op.Input
		case Union:
			common.Assert(len(op.Inputs) > 0, "union with no inputs")
			n = op.Inputs[0]
		case MergeSorted:
			n = op.InputLeft
		case MapFunction:
			pending = append(pending, op.Function)
			n = op.Input

		case Invalid:
			common.Assert(false, "encountered an invalid plan node")
		default:
			common.Assert(false, "unknown plan variant %T", op)
		}
	}

	// Functions were collected top-down; apply them bottom-up.
	for i := len(pending) - 1; i >= 0; i-- {
		schema = FunctionSchema(pending[i], schema)
	}
	return schema
}

func scanSchema(schema, output *frame.Schema) *frame.Schema {
	if output != nil {
		return output
	}
	return schema
}

// FunctionSchema computes the schema a MapFunction produces from its input
// schema. The plan is assumed well formed: a function naming a column its
// input does not have is a programming error.
func FunctionSchema(fn Function, input *frame.Schema) *frame.Schema {
	switch f := fn.(type) {
	case Rename:
		renames := make(map[string]string, len(f.Existing))
		for i, old := range f.Existing {
			_, ok := input.Index(old)
			common.Assert(ok, "rename of unknown column %q", old)
			renames[old] = f.New[i]
		}
		fields := input.Fields()
		for i := range fields {
			if newName, ok := renames[fields[i].Name]; ok {
				fields[i].Name = newName
			}
		}
		return frame.NewSchema(fields)

	case DropColumns:
		dropped := make(map[string]bool, len(f.Columns))
		for _, c := range f.Columns {
			_, ok := input.Index(c)
			common.Assert(ok, "drop of unknown column %q", c)
			dropped[c] = true
		}
		fields := make([]frame.Field, 0, input.Len())
		for _, field := range input.Fields() {
			if !dropped[field.Name] {
				fields = append(fields, field)
			}
		}
		return frame.NewSchema(fields)

	case RowIndex:
		fields := make([]frame.Field, 0, input.Len()+1)
		fields = append(fields, frame.Field{Name: f.Name, Type: common.Int64Type})
		fields = append(fields, input.Fields()...)
		return frame.NewSchema(fields)

	case Hint:
		return input
	}
	common.Assert(false, "unknown function variant %T", fn)
	return nil
}
