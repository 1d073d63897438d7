package lazy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/plan"
)

func reportPipeline(t *testing.T) LazyFrame {
	t.Helper()
	return ScanFrame(salesFrame(t)).
		Filter(expr.Col("amount").Gt(expr.LitInt64(100))).
		GroupBy(expr.Col("region")).
		Agg(expr.Col("amount").Sum().Alias("total")).
		Sort("total", true)
}

func TestSerializeBinaryRoundTrip(t *testing.T) {
	lf := reportPipeline(t)

	var buf bytes.Buffer
	require.NoError(t, lf.SerializeBinary(&buf))

	back, err := DeserializeBinary(&buf)
	require.NoError(t, err)

	want, err := lf.Plan()
	require.NoError(t, err)
	got, err := back.Plan()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, lf.Schema().Equal(back.Schema()))
}

func TestSerializeJSONRoundTrip(t *testing.T) {
	lf := reportPipeline(t)

	var buf bytes.Buffer
	require.NoError(t, lf.SerializeJSON(&buf))

	back, err := DeserializeJSON(&buf)
	require.NoError(t, err)

	want, err := lf.Plan()
	require.NoError(t, err)
	got, err := back.Plan()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDeserializedFrameKeepsBuilding(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reportPipeline(t).SerializeBinary(&buf))

	back, err := DeserializeBinary(&buf)
	require.NoError(t, err)

	extended := back.Limit(10)
	require.NoError(t, extended.Err())
	_, ok := rootOp(t, extended).(plan.Slice)
	assert.True(t, ok)
}

func TestTemplateRoundTripAndBind(t *testing.T) {
	lf := ScanFrame(salesFrame(t)).Filter(expr.Col("amount").Gt(expr.LitInt64(100)))

	var buf bytes.Buffer
	require.NoError(t, lf.SerializeTemplate(&buf))

	fresh := salesFrame(t)
	bound, err := DeserializeTemplateAndBind(&buf, fresh)
	require.NoError(t, err)

	p, err := bound.Plan()
	require.NoError(t, err)
	f, ok := p.View().Get(p.Root()).(plan.Filter)
	require.True(t, ok)
	scan, ok := p.View().Get(f.Input).(plan.DataFrameScan)
	require.True(t, ok)
	assert.Same(t, fresh, scan.DF)
}

func TestTemplateBindRejectsWrongShape(t *testing.T) {
	lf := ScanFrame(salesFrame(t)).Filter(expr.Col("amount").Gt(expr.LitInt64(100)))

	var buf bytes.Buffer
	require.NoError(t, lf.SerializeTemplate(&buf))

	_, err := DeserializeTemplateAndBind(&buf, usersFrame(t))
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.SchemaMismatchError, code)
}

func TestSerializeSurfacesBuilderError(t *testing.T) {
	poisoned := ScanFrame(salesFrame(t)).Project("missing")

	var buf bytes.Buffer
	require.Error(t, poisoned.SerializeBinary(&buf))
	require.Error(t, poisoned.SerializeJSON(&buf))
	require.Error(t, poisoned.SerializeTemplate(&buf))
	assert.Zero(t, buf.Len())
}

func TestDeserializeBinaryRejectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reportPipeline(t).SerializeBinary(&buf))

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF
	_, err := DeserializeBinary(bytes.NewReader(raw))
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.SerializeError, code)
}
