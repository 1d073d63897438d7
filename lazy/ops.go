package lazy

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/plan"
)

// Filter keeps the rows where the predicate is true. The predicate must
// type-check to bool against the current schema.
func (lf LazyFrame) Filter(predicate expr.Expr) LazyFrame {
	if lf.err != nil {
		return lf
	}
	ir, field, err := lf.lowerChecked(predicate, lf.schema)
	if err != nil {
		return lf.fail(err)
	}
	if field.Type != common.BoolType {
		return lf.fail(common.Errorf(common.SchemaMismatchError,
			"filter predicate must be bool, got %s", field.Type))
	}
	return lf.push(plan.Filter{Input: lf.root, Predicate: ir}, lf.schema)
}

// Select computes a new set of columns from expressions; only the computed
// columns survive, in the order given.
func (lf LazyFrame) Select(exprs ...expr.Expr) LazyFrame {
	if lf.err != nil {
		return lf
	}
	irs, fields, err := lf.lowerAll(exprs, lf.schema)
	if err != nil {
		return lf.fail(err)
	}
	schema, err := schemaFromFields(fields)
	if err != nil {
		return lf.fail(err)
	}
	return lf.push(plan.Select{Input: lf.root, Exprs: irs, Schema: schema}, schema)
}

// Project narrows or reorders columns by name, with no expression
// evaluation involved.
func (lf LazyFrame) Project(columns ...string) LazyFrame {
	if lf.err != nil {
		return lf
	}
	fields := make([]frame.Field, 0, len(columns))
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		i, ok := lf.schema.Index(name)
		if !ok {
			return lf.fail(common.Errorf(common.NoSuchObjectError, "unknown column %q", name))
		}
		if seen[name] {
			return lf.fail(common.Errorf(common.DuplicateObjectError,
				"duplicate output column %q", name))
		}
		seen[name] = true
		fields = append(fields, lf.schema.Field(i))
	}
	schema := frame.NewSchema(fields)
	return lf.push(plan.SimpleProjection{Input: lf.root, Columns: schema}, schema)
}

// WithColumns adds computed columns. A column whose output name matches an
// existing column replaces it in place; the rest are appended in order.
func (lf LazyFrame) WithColumns(exprs ...expr.Expr) LazyFrame {
	if lf.err != nil {
		return lf
	}
	irs, outputs, err := lf.lowerAll(exprs, lf.schema)
	if err != nil {
		return lf.fail(err)
	}
	fields := lf.schema.Fields()
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	seen := make(map[string]bool, len(outputs))
	for _, f := range outputs {
		if seen[f.Name] {
			return lf.fail(common.Errorf(common.DuplicateObjectError,
				"duplicate output column %q", f.Name))
		}
		seen[f.Name] = true
		if i, ok := index[f.Name]; ok {
			fields[i] = f
		} else {
			index[f.Name] = len(fields)
			fields = append(fields, f)
		}
	}
	schema := frame.NewSchema(fields)
	return lf.push(plan.HStack{Input: lf.root, Exprs: irs, Schema: schema}, schema)
}

// Sort orders rows by one column, nulls first.
func (lf LazyFrame) Sort(column string, descending bool) LazyFrame {
	return lf.SortBy([]expr.Expr{expr.Col(column)}, plan.SortOptions{
		Descending: []bool{descending},
		NullsLast:  []bool{false},
	})
}

// SortBy orders rows by expressions. Options.Descending and NullsLast must
// be empty or run parallel to by; empty means ascending, nulls first.
func (lf LazyFrame) SortBy(by []expr.Expr, opts plan.SortOptions) LazyFrame {
	if lf.err != nil {
		return lf
	}
	if len(by) == 0 {
		return lf.fail(common.Errorf(common.SchemaMismatchError,
			"sort requires at least one key"))
	}
	if len(opts.Descending) == 0 {
		opts.Descending = make([]bool, len(by))
	}
	if len(opts.NullsLast) == 0 {
		opts.NullsLast = make([]bool, len(by))
	}
	if len(opts.Descending) != len(by) || len(opts.NullsLast) != len(by) {
		return lf.fail(common.Errorf(common.SchemaMismatchError,
			"sort got %d keys, %d descending flags and %d nulls-last flags",
			len(by), len(opts.Descending), len(opts.NullsLast)))
	}
	irs, _, err := lf.lowerAll(by, lf.schema)
	if err != nil {
		return lf.fail(err)
	}
	return lf.push(plan.Sort{Input: lf.root, ByColumn: irs, Options: opts}, lf.schema)
}

// Slice keeps length rows starting at offset. A negative offset counts from
// the end of the input.
func (lf LazyFrame) Slice(offset int64, length uint64) LazyFrame {
	if lf.err != nil {
		return lf
	}
	return lf.push(plan.Slice{Input: lf.root, Offset: offset, Len: length}, lf.schema)
}

// Limit keeps the first n rows.
func (lf LazyFrame) Limit(n uint64) LazyFrame {
	return lf.Slice(0, n)
}

// Distinct drops duplicate rows. An empty Options.Subset means all columns
// participate.
func (lf LazyFrame) Distinct(opts plan.DistinctOptions) LazyFrame {
	if lf.err != nil {
		return lf
	}
	for _, name := range opts.Subset {
		if _, ok := lf.schema.Index(name); !ok {
			return lf.fail(common.Errorf(common.NoSuchObjectError, "unknown column %q", name))
		}
	}
	return lf.push(plan.Distinct{Input: lf.root, Options: opts}, lf.schema)
}

// Cache marks the subtree built so far for reuse, minting an id from ids.
func (lf LazyFrame) Cache(ids plan.CacheIDAllocator) LazyFrame {
	if lf.err != nil {
		return lf
	}
	common.Assert(ids != nil, "cache requires an id allocator")
	return lf.push(plan.Cache{Input: lf.root, ID: ids.NextCacheID()}, lf.schema)
}

// Rename gives existing columns new names. existing and updated run
// parallel.
func (lf LazyFrame) Rename(existing, updated []string) LazyFrame {
	if lf.err != nil {
		return lf
	}
	if len(existing) != len(updated) {
		return lf.fail(common.Errorf(common.SchemaMismatchError,
			"rename got %d existing names and %d new names", len(existing), len(updated)))
	}
	renames := make(map[string]string, len(existing))
	for i, old := range existing {
		if _, ok := lf.schema.Index(old); !ok {
			return lf.fail(common.Errorf(common.NoSuchObjectError, "unknown column %q", old))
		}
		if _, dup := renames[old]; dup {
			return lf.fail(common.Errorf(common.DuplicateObjectError,
				"column %q renamed twice", old))
		}
		renames[old] = updated[i]
	}
	seen := make(map[string]bool, lf.schema.Len())
	for _, f := range lf.schema.Fields() {
		name := f.Name
		if to, ok := renames[name]; ok {
			name = to
		}
		if seen[name] {
			return lf.fail(common.Errorf(common.DuplicateObjectError,
				"duplicate output column %q", name))
		}
		seen[name] = true
	}
	return lf.pushFunction(plan.Rename{
		Existing: append([]string(nil), existing...),
		New:      append([]string(nil), updated...),
	})
}

// Drop removes the named columns.
func (lf LazyFrame) Drop(columns ...string) LazyFrame {
	if lf.err != nil {
		return lf
	}
	for _, name := range columns {
		if _, ok := lf.schema.Index(name); !ok {
			return lf.fail(common.Errorf(common.NoSuchObjectError, "unknown column %q", name))
		}
	}
	return lf.pushFunction(plan.DropColumns{Columns: append([]string(nil), columns...)})
}

// WithRowIndex prepends an int64 row-numbering column starting at offset.
func (lf LazyFrame) WithRowIndex(name string, offset int64) LazyFrame {
	if lf.err != nil {
		return lf
	}
	if _, ok := lf.schema.Index(name); ok {
		return lf.fail(common.Errorf(common.DuplicateObjectError,
			"duplicate output column %q", name))
	}
	return lf.pushFunction(plan.RowIndex{Name: name, Offset: offset})
}

// HintSorted asserts, without checking, that columns arrive sorted. It
// never changes the schema or the data.
func (lf LazyFrame) HintSorted(hints ...plan.SortedHint) LazyFrame {
	if lf.err != nil {
		return lf
	}
	common.Assert(len(hints) > 0, "sorted hint requires at least one column")
	for _, h := range hints {
		if _, ok := lf.schema.Index(h.Column); !ok {
			return lf.fail(common.Errorf(common.NoSuchObjectError, "unknown column %q", h.Column))
		}
	}
	return lf.pushFunction(plan.Hint{Sorted: append([]plan.SortedHint(nil), hints...)})
}

// SinkFile ends the plan with a write to the given file.
func (lf LazyFrame) SinkFile(path string, format plan.FileFormat) LazyFrame {
	if lf.err != nil {
		return lf
	}
	return lf.push(plan.Sink{
		Input:  lf.root,
		Target: plan.FileSink{Path: path, Format: format},
	}, lf.schema)
}

// SinkMemory ends the plan with an in-memory collection.
func (lf LazyFrame) SinkMemory() LazyFrame {
	if lf.err != nil {
		return lf
	}
	return lf.push(plan.Sink{Input: lf.root, Target: plan.MemorySink{}}, lf.schema)
}
