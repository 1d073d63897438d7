package planar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/lazy"
	"github.com/planardb/planar/plan"
)

func salesSchema() *frame.Schema {
	return frame.NewSchema([]frame.Field{
		{Name: "region", Type: common.StringType},
		{Name: "amount", Type: common.Int64Type},
	})
}

func salesFrame(t *testing.T) *frame.DataFrame {
	t.Helper()
	df := frame.NewDataFrame(salesSchema())
	require.NoError(t, df.AppendRow(common.NewStringValue("north"), common.NewInt64Value(120)))
	require.NoError(t, df.AppendRow(common.NewStringValue("south"), common.NewInt64Value(80)))
	return df
}

// rootOp resolves lf's plan and returns its top operator, failing the test
// if the pipeline carried an error.
func rootOp(t *testing.T, lf lazy.LazyFrame) plan.IR {
	t.Helper()
	p, err := lf.Plan()
	require.NoError(t, err)
	return p.View().Get(p.Root())
}

func wantCode(t *testing.T, err error, code common.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	got, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, code, got)
}

func TestSessionScanMaterializedTable(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	df := salesFrame(t)
	require.NoError(t, s.ImportFrame("sales", df))

	lf, err := s.ScanTable("sales")
	require.NoError(t, err)
	scan, ok := rootOp(t, lf).(plan.DataFrameScan)
	require.True(t, ok)
	assert.Same(t, df, scan.DF)
}

func TestSessionScanSchemaOnlyTable(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.CreateTable("pending", salesSchema()))

	lf, err := s.ScanTable("pending")
	require.NoError(t, err)
	ph, ok := rootOp(t, lf).(plan.PlaceholderScan)
	require.True(t, ok)
	assert.True(t, ph.Schema.Equal(salesSchema()))
}

func TestSessionScanMissingTable(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	_, err = s.ScanTable("absent")
	wantCode(t, err, common.NoSuchObjectError)
}

func TestSessionDropTable(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.ImportFrame("sales", salesFrame(t)))
	require.NoError(t, s.DropTable("sales"))

	_, err = s.ScanTable("sales")
	wantCode(t, err, common.NoSuchObjectError)
}

func TestSessionTemplateRoundTrip(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.ImportFrame("sales", salesFrame(t)))

	lf, err := s.ScanTable("sales")
	require.NoError(t, err)
	report := lf.Filter(expr.Col("amount").Gt(expr.LitInt64(100)))
	require.NoError(t, s.SaveTemplate("big_sales", report))

	// The stored form has placeholders where the frame was.
	loaded, err := s.LoadTemplate("big_sales")
	require.NoError(t, err)
	p, err := loaded.Plan()
	require.NoError(t, err)
	assert.Contains(t, p.Describe(), "PLACEHOLDER")

	// Binding back to the table restores a runnable pipeline.
	bound, err := s.BindTemplate("big_sales", "sales")
	require.NoError(t, err)
	bp, err := bound.Plan()
	require.NoError(t, err)
	assert.Contains(t, bp.Describe(), "DF [")
	assert.NotContains(t, bp.Describe(), "PLACEHOLDER")
}

func TestSessionLoadTemplateResumesBuilding(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.ImportFrame("sales", salesFrame(t)))
	lf, err := s.ScanTable("sales")
	require.NoError(t, err)
	require.NoError(t, s.SaveTemplate("raw", lf))

	loaded, err := s.LoadTemplate("raw")
	require.NoError(t, err)
	_, ok := rootOp(t, loaded.Limit(1)).(plan.Slice)
	assert.True(t, ok)
}

func TestSessionBindRejectsSchemaOnlyTable(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.ImportFrame("sales", salesFrame(t)))
	require.NoError(t, s.CreateTable("pending", salesSchema()))

	lf, err := s.ScanTable("sales")
	require.NoError(t, err)
	require.NoError(t, s.SaveTemplate("report", lf))

	_, err = s.BindTemplate("report", "pending")
	wantCode(t, err, common.InvalidBindTargetError)
}

func TestSessionSaveTemplateSurfacesBuilderError(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.ImportFrame("sales", salesFrame(t)))
	lf, err := s.ScanTable("sales")
	require.NoError(t, err)

	bad := lf.Filter(expr.Col("missing").Gt(expr.LitInt64(0)))
	err = s.SaveTemplate("bad", bad)
	wantCode(t, err, common.NoSuchObjectError)
	assert.Empty(t, s.Templates.List())
}

func TestSessionPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewSession(dir)
	require.NoError(t, err)
	require.NoError(t, s1.ImportFrame("sales", salesFrame(t)))
	lf, err := s1.ScanTable("sales")
	require.NoError(t, err)
	require.NoError(t, s1.SaveTemplate("report", lf))

	s2, err := NewSession(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"report"}, s2.Templates.List())

	bound, err := s2.BindTemplate("report", "sales")
	require.NoError(t, err)
	scan, ok := rootOp(t, bound).(plan.DataFrameScan)
	require.True(t, ok)
	assert.True(t, salesFrame(t).Equal(scan.DF))
}

func TestSessionCachePipeline(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.ImportFrame("sales", salesFrame(t)))
	lf, err := s.ScanTable("sales")
	require.NoError(t, err)

	_, ok := rootOp(t, lf.Cache(s.CacheIDs)).(plan.Cache)
	assert.True(t, ok)
}
