// Package lazy provides the fluent LazyFrame builder over the plan IR.
// Every operation appends nodes to the frame's arenas and resolves the
// result schema immediately, so a successfully built frame always carries a
// plan whose stored schemas are valid. Validation failures (unknown columns,
// mismatched argument lists, expressions that do not type-check) do not
// abort the chain: they poison the frame, later operations pass the poison
// through untouched, and the first error surfaces on the terminal Plan call.
package lazy

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/plan"
)

// LazyFrame is a logical plan under construction: arenas shared along the
// chain, the handle of the current root, and the schema that root produces.
// Methods take and return values; each result is a new frame and the
// receiver stays usable, so one frame can fan out into several downstream
// chains that share subtrees through the common arenas. A LazyFrame must
// come from a Scan constructor, FromPlan, or a Deserialize entry point; the
// zero value is invalid. Frames are not safe for concurrent building.
type LazyFrame struct {
	irs    *common.Arena[plan.IR]
	exprs  *common.Arena[expr.AExpr]
	root   common.Node
	schema *frame.Schema
	err    error
}

func newLazyFrame() LazyFrame {
	return LazyFrame{
		irs:   common.NewArena[plan.IR](),
		exprs: common.NewArena[expr.AExpr](),
	}
}

// ScanFrame starts a plan that reads the given in-memory frame. The frame
// is referenced, not copied, and must not be mutated afterwards.
func ScanFrame(df *frame.DataFrame) LazyFrame {
	common.Assert(df != nil, "frame scan requires a frame")
	lf := newLazyFrame()
	return lf.push(plan.DataFrameScan{DF: df, Schema: df.Schema()}, df.Schema())
}

// ScanFiles starts a plan that reads files of one format sharing one schema.
func ScanFiles(paths []string, format plan.FileFormat, schema *frame.Schema) LazyFrame {
	common.Assert(len(paths) > 0, "file scan requires at least one path")
	common.Assert(schema != nil, "file scan requires a schema")
	lf := newLazyFrame()
	return lf.push(plan.Scan{
		Paths:   append([]string(nil), paths...),
		Format:  format,
		Schema:  schema,
		Options: plan.ScanOptions{NRows: -1},
	}, schema)
}

// ScanPlaceholder starts a template plan: a placeholder scan that a later
// bind will replace with concrete data of the same shape.
func ScanPlaceholder(schema *frame.Schema) LazyFrame {
	common.Assert(schema != nil, "placeholder scan requires a schema")
	lf := newLazyFrame()
	return lf.push(plan.PlaceholderScan{Schema: schema}, schema)
}

// FromPlan resumes building on top of a finished plan. The frame appends to
// the plan's arenas; the plan itself stays valid, since arenas never free
// entries.
func FromPlan(p plan.Plan) LazyFrame {
	v := p.View()
	return LazyFrame{irs: v.IRs, exprs: v.Exprs, root: v.Root, schema: v.SchemaOf(v.Root)}
}

// Plan returns the built plan, or the first error recorded along the chain.
func (lf LazyFrame) Plan() (plan.Plan, error) {
	if lf.err != nil {
		return plan.Plan{}, lf.err
	}
	common.Assert(lf.irs != nil, "lazy frame must come from a constructor")
	return plan.New(lf.root, lf.irs, lf.exprs), nil
}

// Schema returns the schema of the current root, or nil once the chain has
// failed.
func (lf LazyFrame) Schema() *frame.Schema {
	if lf.err != nil {
		return nil
	}
	return lf.schema
}

// Err returns the first error recorded along the chain, if any.
func (lf LazyFrame) Err() error {
	return lf.err
}

// push appends op and advances the frame to it.
func (lf LazyFrame) push(op plan.IR, schema *frame.Schema) LazyFrame {
	lf.root = lf.irs.Add(op)
	lf.schema = schema
	return lf
}

// pushFunction appends a MapFunction node. The caller has validated the
// function against the current schema, so FunctionSchema cannot panic.
func (lf LazyFrame) pushFunction(fn plan.Function) LazyFrame {
	schema := plan.FunctionSchema(fn, lf.schema)
	return lf.push(plan.MapFunction{Input: lf.root, Function: fn}, schema)
}

// fail poisons the frame. The first failure sticks; every operation on a
// poisoned frame returns it unchanged.
func (lf LazyFrame) fail(err error) LazyFrame {
	lf.err = err
	return lf
}

func (lf LazyFrame) view() plan.View {
	return plan.View{Root: lf.root, IRs: lf.irs, Exprs: lf.exprs}
}

// lowerChecked interns e in the chain's expression arena and resolves the
// field it produces over schema.
func (lf LazyFrame) lowerChecked(e expr.Expr, schema *frame.Schema) (expr.ExprIR, frame.Field, error) {
	ir := expr.Lower(lf.exprs, e)
	field, err := expr.OutputField(lf.exprs, schema, ir)
	return ir, field, err
}

func (lf LazyFrame) lowerAll(exprs []expr.Expr, schema *frame.Schema) ([]expr.ExprIR, []frame.Field, error) {
	if len(exprs) == 0 {
		return nil, nil, nil
	}
	irs := make([]expr.ExprIR, len(exprs))
	fields := make([]frame.Field, len(exprs))
	for i, e := range exprs {
		ir, field, err := lf.lowerChecked(e, schema)
		if err != nil {
			return nil, nil, err
		}
		irs[i] = ir
		fields[i] = field
	}
	return irs, fields, nil
}

// schemaFromFields builds a schema from computed output fields, reporting
// duplicate output names as a recoverable error.
func schemaFromFields(fields []frame.Field) (*frame.Schema, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, common.Errorf(common.DuplicateObjectError,
				"duplicate output column %q", f.Name)
		}
		seen[f.Name] = true
	}
	return frame.NewSchema(fields), nil
}
