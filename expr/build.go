package expr

import (
	"github.com/planardb/planar/common"
)

type exprKind int8

const (
	kindColumn exprKind = iota
	kindLiteral
	kindBinary
	kindAgg
	kindCast
	kindAlias
)

// Expr is the user-facing expression builder: a small immutable tree that is
// lowered into an arena when it joins a plan. Building an Expr is pure
// bookkeeping; column names and types are checked at lowering time by the
// plan builder, against the schema the expression will actually see.
type Expr struct {
	kind     exprKind
	name     string // column name or alias
	value    common.Value
	op       Operator
	agg      AggOp
	to       common.Type
	children []Expr
}

// Col references the named input column.
func Col(name string) Expr {
	return Expr{kind: kindColumn, name: name}
}

// Lit embeds a constant value.
func Lit(v common.Value) Expr {
	common.Assert(!v.IsNil(), "literal requires an initialized value")
	return Expr{kind: kindLiteral, value: v}
}

// LitInt64 embeds an integer constant.
func LitInt64(v int64) Expr {
	return Lit(common.NewInt64Value(v))
}

// LitFloat64 embeds a floating-point constant.
func LitFloat64(v float64) Expr {
	return Lit(common.NewFloat64Value(v))
}

// LitString embeds a string constant.
func LitString(v string) Expr {
	return Lit(common.NewStringValue(v))
}

// LitBool embeds a boolean constant.
func LitBool(v bool) Expr {
	return Lit(common.NewBoolValue(v))
}

func (e Expr) binary(op Operator, other Expr) Expr {
	return Expr{kind: kindBinary, op: op, children: []Expr{e, other}}
}

func (e Expr) Eq(other Expr) Expr    { return e.binary(OpEq, other) }
func (e Expr) NotEq(other Expr) Expr { return e.binary(OpNotEq, other) }
func (e Expr) Lt(other Expr) Expr    { return e.binary(OpLt, other) }
func (e Expr) LtEq(other Expr) Expr  { return e.binary(OpLtEq, other) }
func (e Expr) Gt(other Expr) Expr    { return e.binary(OpGt, other) }
func (e Expr) GtEq(other Expr) Expr  { return e.binary(OpGtEq, other) }
func (e Expr) And(other Expr) Expr   { return e.binary(OpAnd, other) }
func (e Expr) Or(other Expr) Expr    { return e.binary(OpOr, other) }
func (e Expr) Add(other Expr) Expr   { return e.binary(OpPlus, other) }
func (e Expr) Sub(other Expr) Expr   { return e.binary(OpMinus, other) }
func (e Expr) Mul(other Expr) Expr   { return e.binary(OpMultiply, other) }
func (e Expr) Div(other Expr) Expr   { return e.binary(OpDivide, other) }
func (e Expr) Mod(other Expr) Expr   { return e.binary(OpModulus, other) }

func (e Expr) agged(op AggOp) Expr {
	return Expr{kind: kindAgg, agg: op, children: []Expr{e}}
}

func (e Expr) Sum() Expr   { return e.agged(AggSum) }
func (e Expr) Min() Expr   { return e.agged(AggMin) }
func (e Expr) Max() Expr   { return e.agged(AggMax) }
func (e Expr) Mean() Expr  { return e.agged(AggMean) }
func (e Expr) Count() Expr { return e.agged(AggCount) }

// Cast converts the expression to the given type.
func (e Expr) Cast(to common.Type) Expr {
	return Expr{kind: kindCast, to: to, children: []Expr{e}}
}

// Alias names the result column. The outermost alias wins; aliases deeper in
// the tree keep their structure but contribute no name.
func (e Expr) Alias(name string) Expr {
	return Expr{kind: kindAlias, name: name, children: []Expr{e}}
}

// Lower interns the expression into the arena and resolves its output name:
// the outermost alias if present, otherwise the leftmost referenced column,
// otherwise "literal". Lowering never fails; schema checks happen where the
// expression joins a plan.
func Lower(a *common.Arena[AExpr], e Expr) ExprIR {
	output := ""
	body := e
	for body.kind == kindAlias {
		if output == "" {
			output = body.name
		}
		body = body.children[0]
	}
	node := lowerNode(a, body)
	if output == "" {
		output = RootName(a, node)
	}
	return ExprIR{Node: node, OutputName: output}
}

func lowerNode(a *common.Arena[AExpr], e Expr) common.Node {
	switch e.kind {
	case kindAlias:
		return lowerNode(a, e.children[0])
	case kindColumn:
		return a.Add(Column{Name: e.name})
	case kindLiteral:
		return a.Add(Literal{Value: e.value})
	case kindBinary:
		left := lowerNode(a, e.children[0])
		right := lowerNode(a, e.children[1])
		return a.Add(BinaryExpr{Left: left, Op: e.op, Right: right})
	case kindAgg:
		input := lowerNode(a, e.children[0])
		return a.Add(Agg{Input: input, Op: e.agg})
	case kindCast:
		input := lowerNode(a, e.children[0])
		return a.Add(Cast{Input: input, To: e.to})
	}
	common.Assert(false, "unknown expression kind %d", e.kind)
	return 0
}
