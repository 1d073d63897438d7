package lazy

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/plan"
)

// GroupBy is a grouped frame waiting for its aggregations. It is produced
// by LazyFrame.GroupBy and consumed by Agg.
type GroupBy struct {
	lf            LazyFrame
	keys          []expr.Expr
	maintainOrder bool
}

// GroupBy starts a grouped aggregation over the given key expressions.
func (lf LazyFrame) GroupBy(keys ...expr.Expr) GroupBy {
	return GroupBy{lf: lf, keys: keys}
}

// MaintainOrder makes the grouped output preserve the order in which groups
// are first seen.
func (g GroupBy) MaintainOrder() GroupBy {
	g.maintainOrder = true
	return g
}

// Agg evaluates the aggregations per group. The output schema is the keys
// followed by the aggregations.
func (g GroupBy) Agg(aggs ...expr.Expr) LazyFrame {
	lf := g.lf
	if lf.err != nil {
		return lf
	}
	if len(g.keys) == 0 {
		return lf.fail(common.Errorf(common.SchemaMismatchError,
			"group by requires at least one key"))
	}
	keyIRs, keyFields, err := lf.lowerAll(g.keys, lf.schema)
	if err != nil {
		return lf.fail(err)
	}
	aggIRs, aggFields, err := lf.lowerAll(aggs, lf.schema)
	if err != nil {
		return lf.fail(err)
	}
	fields := make([]frame.Field, 0, len(keyFields)+len(aggFields))
	fields = append(append(fields, keyFields...), aggFields...)
	schema, err := schemaFromFields(fields)
	if err != nil {
		return lf.fail(err)
	}
	return lf.push(plan.GroupBy{
		Input:         lf.root,
		Keys:          keyIRs,
		Aggs:          aggIRs,
		Schema:        schema,
		MaintainOrder: g.maintainOrder,
	}, schema)
}
