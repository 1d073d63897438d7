package lazy

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/plan"
)

// adopt makes other's subtree addressable from lf's arenas. Frames branched
// off one chain share arenas already and the subtree is referenced as-is;
// frames built in separate arenas are spliced in by copy.
func (lf LazyFrame) adopt(other LazyFrame) common.Node {
	if other.irs == lf.irs {
		return other.root
	}
	return other.view().CopyInto(lf.irs, lf.exprs)
}

// Join combines lf with other on key expressions. leftOn types against lf's
// schema, rightOn against other's; the two lists run parallel. For semi and
// anti joins the result keeps the left schema; otherwise it is the left
// columns followed by the right columns minus the right keys, with
// Options.Suffix (default "_right") applied to names that collide.
func (lf LazyFrame) Join(other LazyFrame, leftOn, rightOn []expr.Expr, opts plan.JoinOptions) LazyFrame {
	if lf.err != nil {
		return lf
	}
	if other.err != nil {
		return lf.fail(other.err)
	}
	if opts.How == plan.JoinCross {
		if len(leftOn) != 0 || len(rightOn) != 0 {
			return lf.fail(common.Errorf(common.SchemaMismatchError,
				"cross join takes no keys"))
		}
	} else if len(leftOn) == 0 || len(leftOn) != len(rightOn) {
		return lf.fail(common.Errorf(common.SchemaMismatchError,
			"join got %d left keys and %d right keys", len(leftOn), len(rightOn)))
	}
	if opts.Suffix == "" {
		opts.Suffix = "_right"
	}
	leftIRs, _, err := lf.lowerAll(leftOn, lf.schema)
	if err != nil {
		return lf.fail(err)
	}
	rightIRs, rightKeys, err := lf.lowerAll(rightOn, other.schema)
	if err != nil {
		return lf.fail(err)
	}
	schema, err := joinSchema(lf.schema, other.schema, rightKeys, opts)
	if err != nil {
		return lf.fail(err)
	}
	right := lf.adopt(other)
	return lf.push(plan.Join{
		InputLeft:  lf.root,
		InputRight: right,
		Schema:     schema,
		LeftOn:     leftIRs,
		RightOn:    rightIRs,
		Options:    opts,
	}, schema)
}

func joinSchema(left, right *frame.Schema, rightKeys []frame.Field, opts plan.JoinOptions) (*frame.Schema, error) {
	if opts.How == plan.JoinSemi || opts.How == plan.JoinAnti {
		return left, nil
	}
	keyNames := make(map[string]bool, len(rightKeys))
	for _, f := range rightKeys {
		keyNames[f.Name] = true
	}
	fields := left.Fields()
	taken := make(map[string]bool, left.Len()+right.Len())
	for _, f := range fields {
		taken[f.Name] = true
	}
	for _, f := range right.Fields() {
		if keyNames[f.Name] {
			continue
		}
		name := f.Name
		if taken[name] {
			name += opts.Suffix
		}
		if taken[name] {
			return nil, common.Errorf(common.DuplicateObjectError,
				"duplicate output column %q", name)
		}
		taken[name] = true
		fields = append(fields, frame.Field{Name: name, Type: f.Type})
	}
	return frame.NewSchema(fields), nil
}

// MergeSorted merges lf with other, both already sorted on key, preserving
// the sort order. The two schemas must be identical.
func (lf LazyFrame) MergeSorted(other LazyFrame, key string) LazyFrame {
	if lf.err != nil {
		return lf
	}
	if other.err != nil {
		return lf.fail(other.err)
	}
	if !lf.schema.Equal(other.schema) {
		return lf.fail(common.Errorf(common.SchemaMismatchError,
			"merge sorted requires identical schemas, got %s and %s", lf.schema, other.schema))
	}
	if _, ok := lf.schema.Index(key); !ok {
		return lf.fail(common.Errorf(common.NoSuchObjectError, "unknown column %q", key))
	}
	right := lf.adopt(other)
	return lf.push(plan.MergeSorted{InputLeft: lf.root, InputRight: right, Key: key}, lf.schema)
}

// WithContext makes the contexts' columns available to later expressions:
// the schema extends with every context column not already present, first
// occurrence wins.
func (lf LazyFrame) WithContext(contexts ...LazyFrame) LazyFrame {
	if lf.err != nil {
		return lf
	}
	common.Assert(len(contexts) > 0, "with context requires at least one context")
	for _, c := range contexts {
		if c.err != nil {
			return lf.fail(c.err)
		}
	}
	fields := lf.schema.Fields()
	taken := make(map[string]bool, len(fields))
	for _, f := range fields {
		taken[f.Name] = true
	}
	nodes := make([]common.Node, len(contexts))
	for i, c := range contexts {
		for _, f := range c.schema.Fields() {
			if !taken[f.Name] {
				taken[f.Name] = true
				fields = append(fields, f)
			}
		}
		nodes[i] = lf.adopt(c)
	}
	schema := frame.NewSchema(fields)
	return lf.push(plan.ExtContext{Input: lf.root, Contexts: nodes, Schema: schema}, schema)
}

// Concat concatenates frames vertically. All inputs must share one schema;
// the first frame's arenas host the result.
func Concat(frames []LazyFrame, opts plan.UnionOptions) LazyFrame {
	common.Assert(len(frames) > 0, "concat requires at least one frame")
	lf := frames[0]
	if lf.err != nil {
		return lf
	}
	inputs := make([]common.Node, len(frames))
	inputs[0] = lf.root
	for i, f := range frames[1:] {
		if f.err != nil {
			return lf.fail(f.err)
		}
		if !lf.schema.Equal(f.schema) {
			return lf.fail(common.Errorf(common.SchemaMismatchError,
				"concat requires identical schemas, got %s and %s", lf.schema, f.schema))
		}
		inputs[i+1] = lf.adopt(f)
	}
	return lf.push(plan.Union{Inputs: inputs, Options: opts}, lf.schema)
}

// HConcat concatenates frames horizontally into one wider frame. Column
// names must be disjoint across inputs.
func HConcat(frames []LazyFrame, opts plan.HConcatOptions) LazyFrame {
	common.Assert(len(frames) > 0, "hconcat requires at least one frame")
	lf := frames[0]
	if lf.err != nil {
		return lf
	}
	var fields []frame.Field
	taken := make(map[string]bool)
	inputs := make([]common.Node, len(frames))
	inputs[0] = lf.root
	for i, f := range frames {
		if f.err != nil {
			return lf.fail(f.err)
		}
		for _, field := range f.schema.Fields() {
			if taken[field.Name] {
				return lf.fail(common.Errorf(common.DuplicateObjectError,
					"duplicate output column %q", field.Name))
			}
			taken[field.Name] = true
			fields = append(fields, field)
		}
		if i > 0 {
			inputs[i] = lf.adopt(f)
		}
	}
	schema := frame.NewSchema(fields)
	return lf.push(plan.HConcat{Inputs: inputs, Schema: schema, Options: opts}, schema)
}

// SinkAll fans several sink plans into one job. Every frame must already
// end in a sink.
func SinkAll(frames ...LazyFrame) LazyFrame {
	common.Assert(len(frames) > 0, "sink all requires at least one frame")
	lf := frames[0]
	if lf.err != nil {
		return lf
	}
	inputs := make([]common.Node, len(frames))
	inputs[0] = lf.root
	for i, f := range frames[1:] {
		if f.err != nil {
			return lf.fail(f.err)
		}
		inputs[i+1] = lf.adopt(f)
	}
	for _, in := range inputs {
		_, ok := lf.irs.Get(in).(plan.Sink)
		common.Assert(ok, "sink all requires sink-terminated plans, got %s", plan.OpName(lf.irs.Get(in)))
	}
	return lf.push(plan.SinkMultiple{Inputs: inputs}, frame.NewSchema(nil))
}
