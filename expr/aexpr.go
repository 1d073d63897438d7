package expr

import (
	"github.com/planardb/planar/common"
)

// ExprIR points at an expression tree inside an arena and carries the name
// its result column will have. Plan nodes store ExprIRs instead of inline
// trees, so rebuilding a plan moves handles rather than expression structure.
type ExprIR struct {
	Node       common.Node `json:"node"`
	OutputName string      `json:"output_name"`
}

// AExpr is the arena form of an expression node. The variant set is closed:
// exactly the types in this file implement it, and code that dispatches on
// an AExpr may assume no others exist.
type AExpr interface {
	aexprNode()
}

// Column references a named input column.
type Column struct {
	Name string `json:"name"`
}

// Literal is a constant value.
type Literal struct {
	Value common.Value `json:"value"`
}

// BinaryExpr combines two expressions with a binary operator.
type BinaryExpr struct {
	Left  common.Node `json:"left"`
	Op    Operator    `json:"op"`
	Right common.Node `json:"right"`
}

// Agg reduces its input expression to a single value per group.
type Agg struct {
	Input common.Node `json:"input"`
	Op    AggOp       `json:"op"`
}

// Cast converts its input to another type.
type Cast struct {
	Input common.Node `json:"input"`
	To    common.Type `json:"to"`
}

func (Column) aexprNode()     {}
func (Literal) aexprNode()    {}
func (BinaryExpr) aexprNode() {}
func (Agg) aexprNode()        {}
func (Cast) aexprNode()       {}

// OpName returns the stable variant name, used as the serialization tag.
func OpName(e AExpr) string {
	switch e.(type) {
	case Column:
		return "Column"
	case Literal:
		return "Literal"
	case BinaryExpr:
		return "BinaryExpr"
	case Agg:
		return "Agg"
	case Cast:
		return "Cast"
	}
	common.Assert(false, "unknown expression variant %T", e)
	return ""
}

type Operator int

const (
	OpEq Operator = iota
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpPlus
	OpMinus
	OpMultiply
	OpDivide
	OpModulus
)

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulus:
		return "%"
	}
	return "???"
}

// isComparison reports whether the operator produces a boolean from two
// comparable operands.
func (o Operator) isComparison() bool {
	switch o {
	case OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq:
		return true
	}
	return false
}

func (o Operator) isLogical() bool {
	return o == OpAnd || o == OpOr
}

func (o Operator) MarshalText() ([]byte, error) {
	s := o.String()
	if s == "???" {
		return nil, common.Errorf(common.SerializeError, "cannot serialize unknown operator %d", int(o))
	}
	return []byte(s), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	ops := []Operator{
		OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq,
		OpAnd, OpOr, OpPlus, OpMinus, OpMultiply, OpDivide, OpModulus,
	}
	for _, op := range ops {
		if op.String() == string(text) {
			*o = op
			return nil
		}
	}
	return common.Errorf(common.SerializeError, "unknown operator %q", string(text))
}

type AggOp int

const (
	AggSum AggOp = iota
	AggMin
	AggMax
	AggMean
	AggCount
)

func (a AggOp) String() string {
	switch a {
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggMean:
		return "mean"
	case AggCount:
		return "count"
	}
	return "???"
}

func (a AggOp) MarshalText() ([]byte, error) {
	s := a.String()
	if s == "???" {
		return nil, common.Errorf(common.SerializeError, "cannot serialize unknown aggregation %d", int(a))
	}
	return []byte(s), nil
}

func (a *AggOp) UnmarshalText(text []byte) error {
	for _, op := range []AggOp{AggSum, AggMin, AggMax, AggMean, AggCount} {
		if op.String() == string(text) {
			*a = op
			return nil
		}
	}
	return common.Errorf(common.SerializeError, "unknown aggregation %q", string(text))
}
