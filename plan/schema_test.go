package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
)

func TestSchemaOfPassthroughChain(t *testing.T) {
	p := salesPlan(t)
	v := p.View()

	// Slice and Sort pass the group-by schema through unchanged.
	group, ok := v.Get(2).(GroupBy)
	assert.True(t, ok)
	assert.Same(t, group.Schema, v.SchemaOf(p.Root()))
}

func TestSchemaOfScans(t *testing.T) {
	irs := common.NewArena[IR]()
	exprs := common.NewArena[expr.AExpr]()
	full := salesSchema()
	out := frame.NewSchema([]frame.Field{{Name: "amount", Type: common.Int64Type}})

	plain := irs.Add(DataFrameScan{DF: salesFrame(t), Schema: full})
	projected := irs.Add(DataFrameScan{DF: salesFrame(t), Schema: full, OutputSchema: out})
	file := irs.Add(Scan{
		Paths:        []string{"sales.csv"},
		Format:       FormatCSV,
		Schema:       full,
		OutputSchema: out,
		Options:      ScanOptions{NRows: -1},
	})
	ph := irs.Add(PlaceholderScan{Schema: full})
	v := New(ph, irs, exprs).View()

	assert.Same(t, full, v.SchemaOf(plain))
	assert.Same(t, out, v.SchemaOf(projected))
	assert.Same(t, out, v.SchemaOf(file))
	assert.Same(t, full, v.SchemaOf(ph))
}

func TestSchemaOfUnionAndSinks(t *testing.T) {
	irs := common.NewArena[IR]()
	exprs := common.NewArena[expr.AExpr]()
	a := irs.Add(DataFrameScan{DF: salesFrame(t), Schema: salesSchema()})
	b := irs.Add(DataFrameScan{DF: salesFrame(t), Schema: salesSchema()})
	union := irs.Add(Union{Inputs: []common.Node{a, b}})
	sink := irs.Add(Sink{Input: union, Target: MemorySink{}})
	multi := irs.Add(SinkMultiple{Inputs: []common.Node{sink}})
	v := New(multi, irs, exprs).View()

	first, ok := v.Get(a).(DataFrameScan)
	assert.True(t, ok)
	assert.Same(t, first.Schema, v.SchemaOf(union))
	assert.Same(t, first.Schema, v.SchemaOf(sink))
	assert.Equal(t, 0, v.SchemaOf(multi).Len())
}

func TestSchemaOfStoredSchemas(t *testing.T) {
	v := everythingPlan(t).View()
	for i := 0; i < v.IRs.Len(); i++ {
		n := common.Node(i)
		switch op := v.Get(n).(type) {
		case Select:
			assert.Same(t, op.Schema, v.SchemaOf(n))
		case GroupBy:
			assert.Same(t, op.Schema, v.SchemaOf(n))
		case Join:
			assert.Same(t, op.Schema, v.SchemaOf(n))
		case HStack:
			assert.Same(t, op.Schema, v.SchemaOf(n))
		case HConcat:
			assert.Same(t, op.Schema, v.SchemaOf(n))
		case ExtContext:
			assert.Same(t, op.Schema, v.SchemaOf(n))
		case SimpleProjection:
			assert.Same(t, op.Columns, v.SchemaOf(n))
		}
	}
}

func TestSchemaOfMapFunctionChain(t *testing.T) {
	irs := common.NewArena[IR]()
	exprs := common.NewArena[expr.AExpr]()
	scan := irs.Add(DataFrameScan{DF: salesFrame(t), Schema: salesSchema()})
	renamed := irs.Add(MapFunction{
		Input:    scan,
		Function: Rename{Existing: []string{"region"}, New: []string{"area"}},
	})
	indexed := irs.Add(MapFunction{
		Input:    renamed,
		Function: RowIndex{Name: "idx", Offset: 0},
	})
	v := New(indexed, irs, exprs).View()

	// The rename applies before the row index even though the walk meets
	// them in the opposite order.
	want := frame.NewSchema([]frame.Field{
		{Name: "idx", Type: common.Int64Type},
		{Name: "area", Type: common.StringType},
		{Name: "amount", Type: common.Int64Type},
		{Name: "qty", Type: common.Int64Type},
	})
	got := v.SchemaOf(indexed)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestFunctionSchema(t *testing.T) {
	input := salesSchema()

	t.Run("rename", func(t *testing.T) {
		got := FunctionSchema(Rename{Existing: []string{"qty"}, New: []string{"count"}}, input)
		assert.Equal(t, []string{"region", "amount", "count"}, got.Names())
	})
	t.Run("drop", func(t *testing.T) {
		got := FunctionSchema(DropColumns{Columns: []string{"region", "qty"}}, input)
		assert.Equal(t, []string{"amount"}, got.Names())
	})
	t.Run("row index", func(t *testing.T) {
		got := FunctionSchema(RowIndex{Name: "idx", Offset: 5}, input)
		assert.Equal(t, []string{"idx", "region", "amount", "qty"}, got.Names())
		assert.Equal(t, common.Int64Type, got.Field(0).Type)
	})
	t.Run("hint", func(t *testing.T) {
		got := FunctionSchema(Hint{Sorted: []SortedHint{{Column: "amount"}}}, input)
		assert.Same(t, input, got)
	})
	t.Run("unknown column", func(t *testing.T) {
		assert.Panics(t, func() {
			FunctionSchema(Rename{Existing: []string{"ghost"}, New: []string{"g"}}, input)
		})
		assert.Panics(t, func() {
			FunctionSchema(DropColumns{Columns: []string{"ghost"}}, input)
		})
	})
}
