package lazy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/plan"
)

func salesSchema() *frame.Schema {
	return frame.NewSchema([]frame.Field{
		{Name: "region", Type: common.StringType},
		{Name: "amount", Type: common.Int64Type},
		{Name: "qty", Type: common.Int64Type},
	})
}

func salesFrame(t *testing.T) *frame.DataFrame {
	t.Helper()
	df := frame.NewDataFrame(salesSchema())
	require.NoError(t, df.AppendRow(
		common.NewStringValue("north"), common.NewInt64Value(120), common.NewInt64Value(3)))
	require.NoError(t, df.AppendRow(
		common.NewStringValue("south"), common.NewInt64Value(80), common.NewInt64Value(1)))
	return df
}

// rootOp resolves the frame's current root operator, failing the test if
// the chain failed.
func rootOp(t *testing.T, lf LazyFrame) plan.IR {
	t.Helper()
	p, err := lf.Plan()
	require.NoError(t, err)
	return p.View().Get(p.Root())
}

func TestScanFrame(t *testing.T) {
	df := salesFrame(t)
	lf := ScanFrame(df)

	scan, ok := rootOp(t, lf).(plan.DataFrameScan)
	require.True(t, ok)
	assert.Same(t, df, scan.DF)
	assert.Same(t, df.Schema(), scan.Schema)
	assert.Same(t, df.Schema(), lf.Schema())
	assert.NoError(t, lf.Err())
}

func TestScanFiles(t *testing.T) {
	schema := salesSchema()
	paths := []string{"a.csv", "b.csv"}
	lf := ScanFiles(paths, plan.FormatCSV, schema)

	scan, ok := rootOp(t, lf).(plan.Scan)
	require.True(t, ok)
	assert.Equal(t, []string{"a.csv", "b.csv"}, scan.Paths)
	assert.Equal(t, plan.FormatCSV, scan.Format)
	assert.Equal(t, int64(-1), scan.Options.NRows)
	assert.Same(t, schema, lf.Schema())

	// The path slice is copied at scan time.
	paths[0] = "mutated.csv"
	assert.Equal(t, "a.csv", scan.Paths[0])
}

func TestScanPlaceholder(t *testing.T) {
	schema := salesSchema()
	lf := ScanPlaceholder(schema)

	ph, ok := rootOp(t, lf).(plan.PlaceholderScan)
	require.True(t, ok)
	assert.Same(t, schema, ph.Schema)
	assert.Same(t, schema, lf.Schema())
}

func TestScanConstructorsRejectMisuse(t *testing.T) {
	assert.Panics(t, func() { ScanFrame(nil) })
	assert.Panics(t, func() { ScanFiles(nil, plan.FormatCSV, salesSchema()) })
	assert.Panics(t, func() { ScanFiles([]string{"a.csv"}, plan.FormatCSV, nil) })
	assert.Panics(t, func() { ScanPlaceholder(nil) })
}

func TestFirstErrorWins(t *testing.T) {
	lf := ScanFrame(salesFrame(t)).
		Filter(expr.Col("missing").Gt(expr.LitInt64(1))).
		Project("also_missing").
		Slice(0, 5)

	_, err := lf.Plan()
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.NoSuchObjectError, code)
	assert.Contains(t, err.Error(), `"missing"`)
	assert.NotContains(t, err.Error(), "also_missing")

	assert.Nil(t, lf.Schema())
	assert.Error(t, lf.Err())
}

func TestPoisonedFrameIsInert(t *testing.T) {
	bad := ScanFrame(salesFrame(t)).Project("missing")
	require.Error(t, bad.Err())

	// No operation on a poisoned frame panics or changes the error.
	after := bad.
		Filter(expr.Col("amount").Gt(expr.LitInt64(0))).
		Select(expr.Col("region")).
		Sort("amount", true).
		Drop("region").
		SinkMemory()
	assert.Equal(t, bad.Err(), after.Err())
}

func TestFromPlanResumesBuilding(t *testing.T) {
	df := salesFrame(t)
	first := ScanFrame(df).Filter(expr.Col("amount").Gt(expr.LitInt64(100)))
	p, err := first.Plan()
	require.NoError(t, err)

	resumed := FromPlan(p).Slice(0, 1)
	p2, err := resumed.Plan()
	require.NoError(t, err)

	slice, ok := p2.View().Get(p2.Root()).(plan.Slice)
	require.True(t, ok)
	assert.Equal(t, p.Root(), slice.Input)
	assert.True(t, df.Schema().Equal(p2.OutputSchema()))

	// The finished plan still points at its own root.
	_, ok = p.View().Get(p.Root()).(plan.Filter)
	assert.True(t, ok)
}

func TestBranchesShareArenas(t *testing.T) {
	base := ScanFrame(salesFrame(t))
	high := base.Filter(expr.Col("amount").Gt(expr.LitInt64(100)))
	low := base.Filter(expr.Col("amount").LtEq(expr.LitInt64(100)))

	both := Concat([]LazyFrame{high, low}, plan.UnionOptions{})
	p, err := both.Plan()
	require.NoError(t, err)

	// One scan, two filters, one union: the branches share the scan node
	// instead of duplicating it.
	require.Equal(t, 4, p.View().IRs.Len())
	union, ok := p.View().Get(p.Root()).(plan.Union)
	require.True(t, ok)
	require.Len(t, union.Inputs, 2)
	hi, ok := p.View().Get(union.Inputs[0]).(plan.Filter)
	require.True(t, ok)
	lo, ok := p.View().Get(union.Inputs[1]).(plan.Filter)
	require.True(t, ok)
	assert.Equal(t, hi.Input, lo.Input)
}

func TestPlanOnZeroFramePanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = LazyFrame{}.Plan() })
}
