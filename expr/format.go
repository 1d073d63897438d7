package expr

import (
	"fmt"

	"github.com/planardb/planar/common"
)

// Display renders the expression the way it appears inside plan
// descriptions. An alias suffix is shown only when the output name differs
// from the expression's natural name.
func Display(a *common.Arena[AExpr], e ExprIR) string {
	body := displayNode(a, e.Node)
	if e.OutputName != "" && e.OutputName != RootName(a, e.Node) {
		return fmt.Sprintf("%s.alias(%q)", body, e.OutputName)
	}
	return body
}

// DisplayAll renders a comma-separated expression list.
func DisplayAll(a *common.Arena[AExpr], exprs []ExprIR) string {
	out := ""
	for i, e := range exprs {
		if i > 0 {
			out += ", "
		}
		out += Display(a, e)
	}
	return out
}

func displayNode(a *common.Arena[AExpr], n common.Node) string {
	switch v := a.Get(n).(type) {
	case Column:
		return fmt.Sprintf("col(%q)", v.Name)
	case Literal:
		return v.Value.String()
	case BinaryExpr:
		return fmt.Sprintf("[(%s) %s (%s)]",
			displayNode(a, v.Left), v.Op, displayNode(a, v.Right))
	case Agg:
		return fmt.Sprintf("%s.%s()", displayNode(a, v.Input), v.Op)
	case Cast:
		return fmt.Sprintf("%s.cast(%s)", displayNode(a, v.Input), v.To)
	}
	common.Assert(false, "unknown expression variant %T", a.Get(n))
	return ""
}

// RootName returns the natural output name of an expression tree: the
// leftmost column it references, or "literal" when it references none.
func RootName(a *common.Arena[AExpr], n common.Node) string {
	switch v := a.Get(n).(type) {
	case Column:
		return v.Name
	case Literal:
		return "literal"
	case BinaryExpr:
		return RootName(a, v.Left)
	case Agg:
		return RootName(a, v.Input)
	case Cast:
		return RootName(a, v.Input)
	}
	common.Assert(false, "unknown expression variant %T", a.Get(n))
	return ""
}
