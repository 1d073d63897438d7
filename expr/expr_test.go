package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
)

func testSchema() *frame.Schema {
	return frame.NewSchema([]frame.Field{
		{Name: "a", Type: common.Int64Type},
		{Name: "b", Type: common.Float64Type},
		{Name: "s", Type: common.StringType},
		{Name: "flag", Type: common.BoolType},
	})
}

func TestLowerAndDisplay(t *testing.T) {
	testCases := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{"column", Col("a"), `col("a")`},
		{"literal", LitInt64(3), "3"},
		{"comparison", Col("a").Gt(LitInt64(2)), `[(col("a")) > (2)]`},
		{"logic", Col("flag").And(Col("a").Lt(LitInt64(10))), `[(col("flag")) & ([(col("a")) < (10)])]`},
		{"arithmetic", Col("a").Add(Col("b")), `[(col("a")) + (col("b"))]`},
		{"agg", Col("b").Sum(), `col("b").sum()`},
		{"cast", Col("a").Cast(common.Float64Type), `col("a").cast(f64)`},
		{"alias", Col("a").Add(LitInt64(1)).Alias("a_plus"), `[(col("a")) + (1)].alias("a_plus")`},
		{"redundant alias hidden", Col("a").Alias("a"), `col("a")`},
		{"string literal", Col("s").Eq(LitString("x")), `[(col("s")) == ("x")]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := common.NewArena[AExpr]()
			e := Lower(a, tc.expr)
			assert.Equal(t, tc.expected, Display(a, e))
		})
	}
}

func TestLowerOutputName(t *testing.T) {
	a := common.NewArena[AExpr]()

	// Natural name is the leftmost referenced column.
	e := Lower(a, Col("a").Add(Col("b")))
	assert.Equal(t, "a", e.OutputName)

	// The outermost alias wins over inner ones.
	e = Lower(a, Col("a").Alias("inner").Alias("outer"))
	assert.Equal(t, "outer", e.OutputName)

	// A pure literal is named "literal".
	e = Lower(a, LitInt64(1))
	assert.Equal(t, "literal", e.OutputName)
}

func TestOutputField(t *testing.T) {
	schema := testSchema()

	testCases := []struct {
		name     string
		expr     Expr
		expected frame.Field
	}{
		{"column keeps type", Col("b"), frame.Field{Name: "b", Type: common.Float64Type}},
		{"comparison is bool", Col("a").Gt(LitInt64(0)), frame.Field{Name: "a", Type: common.BoolType}},
		{"int plus float widens", Col("a").Add(Col("b")), frame.Field{Name: "a", Type: common.Float64Type}},
		{"int plus int stays int", Col("a").Mul(LitInt64(2)), frame.Field{Name: "a", Type: common.Int64Type}},
		{"mean is float", Col("a").Mean(), frame.Field{Name: "a", Type: common.Float64Type}},
		{"count is int", Col("s").Count(), frame.Field{Name: "s", Type: common.Int64Type}},
		{"min keeps type", Col("s").Min(), frame.Field{Name: "s", Type: common.StringType}},
		{"cast overrides", Col("a").Cast(common.StringType), frame.Field{Name: "a", Type: common.StringType}},
		{"alias names result", Col("a").Sum().Alias("total"), frame.Field{Name: "total", Type: common.Int64Type}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := common.NewArena[AExpr]()
			e := Lower(a, tc.expr)
			field, err := OutputField(a, schema, e)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, field)
		})
	}
}

func TestOutputFieldErrors(t *testing.T) {
	schema := testSchema()

	testCases := []struct {
		name string
		expr Expr
		code common.ErrorCode
	}{
		{"unknown column", Col("missing"), common.NoSuchObjectError},
		{"arithmetic on string", Col("s").Add(LitInt64(1)), common.SchemaMismatchError},
		{"logic on ints", Col("a").And(Col("a")), common.SchemaMismatchError},
		{"mean of string", Col("s").Mean(), common.SchemaMismatchError},
		{"compare int with string", Col("a").Eq(Col("s")), common.SchemaMismatchError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := common.NewArena[AExpr]()
			e := Lower(a, tc.expr)
			_, err := OutputField(a, schema, e)
			require.Error(t, err)
			code, ok := common.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestAExprSerdeRoundTrip(t *testing.T) {
	a := common.NewArena[AExpr]()
	e := Lower(a, Col("a").Add(Col("b")).Gt(LitFloat64(1.5)).Alias("hot"))
	assert.Equal(t, "hot", e.OutputName)

	for i := 0; i < a.Len(); i++ {
		node := a.Get(common.Node(i))
		data, err := EncodeAExpr(node)
		require.NoError(t, err)

		back, err := DecodeAExpr(data)
		require.NoError(t, err)
		assert.Equal(t, node, back, "node %d changed across the round trip", i)
	}
}

func TestDecodeAExprUnknownTag(t *testing.T) {
	_, err := DecodeAExpr([]byte(`{"op":"Window","payload":{}}`))
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.SerializeError, code)
}
