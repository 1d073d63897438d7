package frame

import (
	"bytes"
	"encoding/json"

	"github.com/planardb/planar/common"
)

// DataFrame is an in-memory, column-major table: one Value slice per schema
// field, all of equal height. Plans hold frames as opaque payloads and treat
// them as immutable once attached, so a frame pointer is shared rather than
// copied when plans are rebuilt.
type DataFrame struct {
	schema  *Schema
	columns [][]common.Value
	height  int
}

// NewDataFrame creates an empty frame with the given schema.
func NewDataFrame(schema *Schema) *DataFrame {
	common.Assert(schema != nil, "frame requires a schema")
	return &DataFrame{
		schema:  schema,
		columns: make([][]common.Value, schema.Len()),
	}
}

// AppendRow adds one row. Each value must match the type of its column;
// typed NULLs are allowed. The frame is unchanged on error.
func (df *DataFrame) AppendRow(values ...common.Value) error {
	if len(values) != df.schema.Len() {
		return common.Errorf(common.SchemaMismatchError,
			"row has %d values, schema has %d columns", len(values), df.schema.Len())
	}
	for i, v := range values {
		if v.Type() != df.schema.Field(i).Type {
			return common.Errorf(common.SchemaMismatchError,
				"column %q expects %s, row has %s",
				df.schema.Field(i).Name, df.schema.Field(i).Type, v.Type())
		}
	}
	for i, v := range values {
		df.columns[i] = append(df.columns[i], v)
	}
	df.height++
	return nil
}

// Schema returns the frame's schema.
func (df *DataFrame) Schema() *Schema {
	return df.schema
}

// NumRows returns the height of the frame.
func (df *DataFrame) NumRows() int {
	return df.height
}

// NumColumns returns the width of the frame.
func (df *DataFrame) NumColumns() int {
	return df.schema.Len()
}

// At returns the value at the given row and column.
func (df *DataFrame) At(row, col int) common.Value {
	common.Assert(row >= 0 && row < df.height, "row %d out of range [0, %d)", row, df.height)
	common.Assert(col >= 0 && col < df.schema.Len(), "column %d out of range [0, %d)", col, df.schema.Len())
	return df.columns[col][row]
}

// Column returns the values of the named column.
func (df *DataFrame) Column(name string) ([]common.Value, bool) {
	i, ok := df.schema.Index(name)
	if !ok {
		return nil, false
	}
	return df.columns[i], true
}

// Row materializes row i as a value slice.
func (df *DataFrame) Row(i int) []common.Value {
	common.Assert(i >= 0 && i < df.height, "row %d out of range [0, %d)", i, df.height)
	row := make([]common.Value, df.schema.Len())
	for c := range df.columns {
		row[c] = df.columns[c][i]
	}
	return row
}

// Equal reports whether both frames have equal schemas and cell-for-cell
// equal contents.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df == other {
		return true
	}
	if df == nil || other == nil {
		return false
	}
	if !df.schema.Equal(other.schema) || df.height != other.height {
		return false
	}
	for c := range df.columns {
		for r := 0; r < df.height; r++ {
			if !df.columns[c][r].Equal(other.columns[c][r]) {
				return false
			}
		}
	}
	return true
}

// frameJSON is the wire form of a DataFrame: the schema, the height, and one
// plain JSON array per column (numbers, strings, booleans, nulls). The
// schema directs decoding, which keeps the cells compact and keeps 64-bit
// integers exact.
type frameJSON struct {
	Schema  *Schema `json:"schema"`
	Height  int     `json:"height"`
	Columns [][]any `json:"columns"`
}

func (df *DataFrame) MarshalJSON() ([]byte, error) {
	out := frameJSON{
		Schema:  df.schema,
		Height:  df.height,
		Columns: make([][]any, len(df.columns)),
	}
	for c, col := range df.columns {
		cells := make([]any, len(col))
		for r, v := range col {
			if v.IsNull() {
				cells[r] = nil
				continue
			}
			switch v.Type() {
			case common.Int64Type:
				cells[r] = v.Int64Value()
			case common.Float64Type:
				cells[r] = v.Float64Value()
			case common.StringType:
				cells[r] = v.StringValue()
			case common.BoolType:
				cells[r] = v.BoolValue()
			}
		}
		out.Columns[c] = cells
	}
	return json.Marshal(out)
}

func (df *DataFrame) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var in frameJSON
	if err := dec.Decode(&in); err != nil {
		return err
	}
	if in.Schema == nil {
		return common.Errorf(common.SerializeError, "frame missing schema")
	}
	if len(in.Columns) != in.Schema.Len() {
		return common.Errorf(common.SerializeError,
			"frame has %d columns, schema has %d", len(in.Columns), in.Schema.Len())
	}

	columns := make([][]common.Value, len(in.Columns))
	for c, cells := range in.Columns {
		if len(cells) != in.Height {
			return common.Errorf(common.SerializeError,
				"column %d has %d rows, frame height is %d", c, len(cells), in.Height)
		}
		ty := in.Schema.Field(c).Type
		col := make([]common.Value, len(cells))
		for r, cell := range cells {
			v, err := cellValue(ty, cell)
			if err != nil {
				return err
			}
			col[r] = v
		}
		columns[c] = col
	}

	df.schema = in.Schema
	df.columns = columns
	df.height = in.Height
	return nil
}

func cellValue(ty common.Type, cell any) (common.Value, error) {
	if cell == nil {
		return common.NewNullValue(ty), nil
	}
	switch ty {
	case common.Int64Type:
		num, ok := cell.(json.Number)
		if !ok {
			return common.Value{}, common.Errorf(common.SerializeError, "i64 cell is not a number")
		}
		i, err := num.Int64()
		if err != nil {
			return common.Value{}, common.Errorf(common.SerializeError, "i64 cell %s: %v", num, err)
		}
		return common.NewInt64Value(i), nil
	case common.Float64Type:
		num, ok := cell.(json.Number)
		if !ok {
			return common.Value{}, common.Errorf(common.SerializeError, "f64 cell is not a number")
		}
		f, err := num.Float64()
		if err != nil {
			return common.Value{}, common.Errorf(common.SerializeError, "f64 cell %s: %v", num, err)
		}
		return common.NewFloat64Value(f), nil
	case common.StringType:
		s, ok := cell.(string)
		if !ok {
			return common.Value{}, common.Errorf(common.SerializeError, "str cell is not a string")
		}
		return common.NewStringValue(s), nil
	case common.BoolType:
		b, ok := cell.(bool)
		if !ok {
			return common.Value{}, common.Errorf(common.SerializeError, "bool cell is not a boolean")
		}
		return common.NewBoolValue(b), nil
	}
	return common.Value{}, common.Errorf(common.SerializeError, "cell with unknown type")
}
