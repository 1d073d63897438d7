package plan

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
)

// Plan owns a logical plan: the root handle plus the two arenas its nodes
// live in. Plans are immutable once built; every transform returns a new
// Plan with fresh arenas and leaves the receiver untouched. The zero Plan is
// invalid.
type Plan struct {
	root  common.Node
	irs   *common.Arena[IR]
	exprs *common.Arena[expr.AExpr]
}

// New assembles a Plan from a root and the arenas it was built in. The root
// must be a handle the operator arena issued.
func New(root common.Node, irs *common.Arena[IR], exprs *common.Arena[expr.AExpr]) Plan {
	common.Assert(irs != nil && exprs != nil, "plan requires both arenas")
	irs.Get(root) // root must resolve in the operator arena
	return Plan{root: root, irs: irs, exprs: exprs}
}

// Root returns the handle of the plan's top node.
func (p Plan) Root() common.Node {
	return p.root
}

// View returns a non-owning view of the plan for read-only traversal.
func (p Plan) View() View {
	return View{Root: p.root, IRs: p.irs, Exprs: p.exprs}
}

// ToTemplate returns a copy of the plan with every DataFrameScan replaced by
// a PlaceholderScan carrying the same schema. See toTemplate.
func (p Plan) ToTemplate() Plan {
	return toTemplate(p.View())
}

// BindData returns a copy of the plan with every PlaceholderScan replaced by
// the node dataNode resolves to in dataArena. See bindData for the
// validation contract.
func (p Plan) BindData(dataNode common.Node, dataArena *common.Arena[IR]) (Plan, error) {
	return bindData(p.View(), dataNode, dataArena)
}

// BindToFrame binds the plan's placeholders to an in-memory frame.
func (p Plan) BindToFrame(df *frame.DataFrame) (Plan, error) {
	return bindToFrame(p.View(), df)
}

// Describe renders the plan one operator per line, inputs indented beneath
// their consumers.
func (p Plan) Describe() string {
	return p.View().Describe()
}

// DescribeTree renders the plan as a box-drawing tree.
func (p Plan) DescribeTree() string {
	return p.View().DescribeTree()
}

// Dot renders the plan as a graphviz graph.
func (p Plan) Dot() string {
	return p.View().Dot()
}

// OutputSchema resolves the schema the whole plan produces.
func (p Plan) OutputSchema() *frame.Schema {
	return p.View().SchemaOf(p.root)
}

// View is a non-owning window onto a plan: a root handle plus borrowed
// arenas. Copying a View never copies plan structure, and nothing reached
// through a View is mutated. Views stay valid as long as the plan they were
// taken from, since arenas never free entries.
type View struct {
	Root  common.Node
	IRs   *common.Arena[IR]
	Exprs *common.Arena[expr.AExpr]
}

// Get resolves an operator handle against the view's arena.
func (v View) Get(n common.Node) IR {
	return v.IRs.Get(n)
}

// WithRoot returns a view over the same arenas rooted at n, used to inspect
// a subtree in place.
func (v View) WithRoot(n common.Node) View {
	v.IRs.Get(n)
	return View{Root: n, IRs: v.IRs, Exprs: v.Exprs}
}

// ToTemplate template-izes the viewed plan. The result owns fresh arenas.
func (v View) ToTemplate() Plan {
	return toTemplate(v)
}

// BindData binds the viewed plan's placeholders to the given data node.
func (v View) BindData(dataNode common.Node, dataArena *common.Arena[IR]) (Plan, error) {
	return bindData(v, dataNode, dataArena)
}

// BindToFrame binds the viewed plan's placeholders to an in-memory frame.
func (v View) BindToFrame(df *frame.DataFrame) (Plan, error) {
	return bindToFrame(v, df)
}
