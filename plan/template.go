package plan

import (
	"github.com/planardb/planar/common"
)

// toTemplate rebuilds the plan with every DataFrameScan replaced by a
// PlaceholderScan carrying the same schema and projection. Everything else
// is carried over unchanged, so the template has the source plan's exact
// shape minus its data. Template-ization never fails and never touches the
// source plan.
func toTemplate(v View) Plan {
	dst := common.NewArenaWithCapacity[IR](v.IRs.Len())
	root, err := rebuild(v, dst, func(op IR, children []common.Node) (IR, error) {
		if s, ok := op.(DataFrameScan); ok {
			return PlaceholderScan{Schema: s.Schema, OutputSchema: s.OutputSchema}, nil
		}
		return WithInputs(op, children), nil
	})
	common.Assert(err == nil, "template rebuild failed: %v", err)
	return Plan{root: root, irs: dst, exprs: v.Exprs.Clone()}
}
