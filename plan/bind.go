package plan

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
)

// bindData rebuilds the plan with every PlaceholderScan replaced by a copy
// of the node dataNode resolves to in dataArena. The same node is planted at
// every placeholder site.
//
// Each substitution site is validated: the supplied node must be a
// DataFrameScan (InvalidBindTargetError otherwise), and its schema must have
// as many columns as the placeholder's (SchemaMismatchError otherwise).
// Column names and types are deliberately not compared; the count check is
// the whole contract, and callers who need stricter matching compare the
// schemas themselves before binding. The first failing site aborts the
// rebuild, so no partially bound plan ever escapes.
//
// A template without placeholders binds successfully against anything the
// data arena resolves, producing a plain copy; validation happens per site,
// and with no sites there is nothing to check. Resolving dataNode against
// the wrong arena is a programming error and panics.
func bindData(v View, dataNode common.Node, dataArena *common.Arena[IR]) (Plan, error) {
	data := dataArena.Get(dataNode)

	dst := common.NewArenaWithCapacity[IR](v.IRs.Len())
	root, err := rebuild(v, dst, func(op IR, children []common.Node) (IR, error) {
		ph, ok := op.(PlaceholderScan)
		if !ok {
			return WithInputs(op, children), nil
		}
		dfs, ok := data.(DataFrameScan)
		if !ok {
			return nil, common.Errorf(common.InvalidBindTargetError,
				"bind requires the data node to be a DataFrameScan, got %s", OpName(data))
		}
		if ph.Schema.Len() != dfs.Schema.Len() {
			return nil, common.Errorf(common.SchemaMismatchError,
				"schema mismatch: template expects %d columns, data has %d",
				ph.Schema.Len(), dfs.Schema.Len())
		}
		return dfs, nil
	})
	if err != nil {
		return Plan{}, err
	}
	return Plan{root: root, irs: dst, exprs: v.Exprs.Clone()}, nil
}

// bindToFrame wraps df in a fresh single-node arena as a DataFrameScan with
// no projection, then binds it.
func bindToFrame(v View, df *frame.DataFrame) (Plan, error) {
	a := common.NewArenaWithCapacity[IR](1)
	n := a.Add(DataFrameScan{DF: df, Schema: df.Schema()})
	return bindData(v, n, a)
}
