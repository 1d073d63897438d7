package plan

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
)

// CopyInto rebuilds the viewed subtree inside the destination arenas and
// returns its new root handle. The whole source expression arena is appended
// to dstExprs with internal handles rebased, and every copied operator has
// its expression references rebased to match. Plans built in separate arenas
// are spliced together this way (joins, concats, contexts). The destination
// arenas must be distinct from the source's.
func (v View) CopyInto(dstIRs *common.Arena[IR], dstExprs *common.Arena[expr.AExpr]) common.Node {
	common.Assert(v.IRs != dstIRs && v.Exprs != dstExprs, "cannot copy a plan into its own arenas")

	delta := common.Node(dstExprs.Len())
	for i := 0; i < v.Exprs.Len(); i++ {
		dstExprs.Add(rebaseAExpr(v.Exprs.Get(common.Node(i)), delta))
	}

	var refBuf []expr.ExprIR
	root, err := rebuild(v, dstIRs, func(op IR, children []common.Node) (IR, error) {
		op = WithInputs(op, children)
		if delta == 0 {
			return op, nil
		}
		refBuf = ExprRefs(op, refBuf[:0])
		if len(refBuf) == 0 {
			return op, nil
		}
		for i := range refBuf {
			refBuf[i].Node += delta
		}
		return WithExprRefs(op, refBuf), nil
	})
	common.Assert(err == nil, "subtree copy failed: %v", err)
	return root
}

func rebaseAExpr(e expr.AExpr, delta common.Node) expr.AExpr {
	switch v := e.(type) {
	case expr.BinaryExpr:
		v.Left += delta
		v.Right += delta
		return v
	case expr.Agg:
		v.Input += delta
		return v
	case expr.Cast:
		v.Input += delta
		return v
	default:
		return e
	}
}
