// Package plan defines the arena-allocated logical plan IR: a closed set of
// operator variants stored in an append-only arena and connected by Node
// handles instead of pointers. A Plan is the owning bundle of a root handle,
// the operator arena, and the expression arena; a View is the non-owning
// window used for read-only traversal. Structural transforms (template-izing
// a plan, binding data back into it) rebuild the arena bottom-up with an
// explicit work stack, so plan depth is bounded by heap, not by the
// goroutine stack.
//
// The variant set is closed on purpose: every dispatch in this package
// switches over exactly the types below, and a variant none of them match is
// a programming error, not a recoverable condition.
package plan

import (
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/expr"
	"github.com/planardb/planar/frame"
)

// IR is one logical operator stored in a plan arena. Exactly the variant
// types in this file implement it.
type IR interface {
	irNode()
}

// SliceArgs is an optional offset/length window some operators push down.
type SliceArgs struct {
	Offset int64  `json:"offset"`
	Len    uint64 `json:"len"`
}

// Slice keeps Len rows starting at Offset. A negative offset counts from
// the end of the input.
type Slice struct {
	Input  common.Node `json:"input"`
	Offset int64       `json:"offset"`
	Len    uint64      `json:"len"`
}

// Filter keeps the rows where the predicate evaluates to true.
type Filter struct {
	Input     common.Node `json:"input"`
	Predicate expr.ExprIR `json:"predicate"`
}

// ScanOptions carries scan-level knobs shared by all file formats.
type ScanOptions struct {
	// NRows limits the scan to the first n rows; negative means no limit.
	NRows   int64 `json:"n_rows"`
	Rechunk bool  `json:"rechunk"`
}

// Scan reads rows from files. Schema describes the full file schema;
// OutputSchema, when set, is the projected subset the scan will produce.
type Scan struct {
	Paths        []string      `json:"paths"`
	Format       FileFormat    `json:"format"`
	Schema       *frame.Schema `json:"schema"`
	OutputSchema *frame.Schema `json:"output_schema,omitempty"`
	Predicate    *expr.ExprIR  `json:"predicate,omitempty"`
	Options      ScanOptions   `json:"options"`
}

// DataFrameScan reads an in-memory frame. The frame is held by pointer and
// treated as immutable, so rebuilt plans share it instead of copying it.
type DataFrameScan struct {
	DF           *frame.DataFrame `json:"df"`
	Schema       *frame.Schema    `json:"schema"`
	OutputSchema *frame.Schema    `json:"output_schema,omitempty"`
}

// PlaceholderScan marks the spot where a DataFrameScan was stripped out of a
// template. It keeps the schema (and projection) of the data it stands in
// for, so a later bind can be checked against it.
type PlaceholderScan struct {
	Schema       *frame.Schema `json:"schema"`
	OutputSchema *frame.Schema `json:"output_schema,omitempty"`
}

// SimpleProjection narrows or reorders columns by name, with no expression
// evaluation involved.
type SimpleProjection struct {
	Input   common.Node   `json:"input"`
	Columns *frame.Schema `json:"columns"`
}

// ProjectionOptions carries evaluation knobs for expression projections.
type ProjectionOptions struct {
	RunParallel     bool `json:"run_parallel"`
	ShouldBroadcast bool `json:"should_broadcast"`
}

// Select computes a new set of columns from expressions; only the computed
// columns survive.
type Select struct {
	Input   common.Node       `json:"input"`
	Exprs   []expr.ExprIR     `json:"exprs"`
	Schema  *frame.Schema     `json:"schema"`
	Options ProjectionOptions `json:"options"`
}

// SortOptions describes per-key sort behavior. Descending and NullsLast run
// parallel to the by-columns of the Sort node.
type SortOptions struct {
	Descending    []bool `json:"descending"`
	NullsLast     []bool `json:"nulls_last"`
	MaintainOrder bool   `json:"maintain_order"`
}

// Sort orders rows by the given expressions.
type Sort struct {
	Input    common.Node   `json:"input"`
	ByColumn []expr.ExprIR `json:"by_column"`
	Slice    *SliceArgs    `json:"slice,omitempty"`
	Options  SortOptions   `json:"options"`
}

// Cache marks its subtree for reuse. Plans that share a subtree reference
// the same Cache node; the ID tells an executor which materializations are
// interchangeable.
type Cache struct {
	Input common.Node `json:"input"`
	ID    CacheID     `json:"id"`
}

// GroupBy groups by key expressions and evaluates aggregations per group.
type GroupBy struct {
	Input         common.Node   `json:"input"`
	Keys          []expr.ExprIR `json:"keys"`
	Aggs          []expr.ExprIR `json:"aggs"`
	Schema        *frame.Schema `json:"schema"`
	MaintainOrder bool          `json:"maintain_order"`
	Slice         *SliceArgs    `json:"slice,omitempty"`
}

type JoinType int8

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinSemi
	JoinAnti
	JoinCross
)

func (j JoinType) String() string {
	switch j {
	case JoinInner:
		return "inner"
	case JoinLeft:
		return "left"
	case JoinRight:
		return "right"
	case JoinFull:
		return "full"
	case JoinSemi:
		return "semi"
	case JoinAnti:
		return "anti"
	case JoinCross:
		return "cross"
	}
	return "unknown"
}

func (j JoinType) MarshalText() ([]byte, error) {
	s := j.String()
	if s == "unknown" {
		return nil, common.Errorf(common.SerializeError, "cannot serialize unknown join type %d", int8(j))
	}
	return []byte(s), nil
}

func (j *JoinType) UnmarshalText(text []byte) error {
	types := []JoinType{JoinInner, JoinLeft, JoinRight, JoinFull, JoinSemi, JoinAnti, JoinCross}
	for _, jt := range types {
		if jt.String() == string(text) {
			*j = jt
			return nil
		}
	}
	return common.Errorf(common.SerializeError, "unknown join type %q", string(text))
}

// JoinOptions configures how two inputs are matched.
type JoinOptions struct {
	How        JoinType `json:"how"`
	Suffix     string   `json:"suffix"`
	NullsEqual bool     `json:"nulls_equal"`
}

// Join combines two inputs on key expressions. LeftOn and RightOn run
// parallel to each other.
type Join struct {
	InputLeft  common.Node   `json:"input_left"`
	InputRight common.Node   `json:"input_right"`
	Schema     *frame.Schema `json:"schema"`
	LeftOn     []expr.ExprIR `json:"left_on"`
	RightOn    []expr.ExprIR `json:"right_on"`
	Options    JoinOptions   `json:"options"`
}

// HStack adds computed columns to its input; existing columns survive unless
// an expression reuses their name.
type HStack struct {
	Input   common.Node       `json:"input"`
	Exprs   []expr.ExprIR     `json:"exprs"`
	Schema  *frame.Schema     `json:"schema"`
	Options ProjectionOptions `json:"options"`
}

type UniqueKeep int8

const (
	KeepFirst UniqueKeep = iota
	KeepLast
	KeepAny
	KeepNone
)

func (k UniqueKeep) String() string {
	switch k {
	case KeepFirst:
		return "first"
	case KeepLast:
		return "last"
	case KeepAny:
		return "any"
	case KeepNone:
		return "none"
	}
	return "unknown"
}

func (k UniqueKeep) MarshalText() ([]byte, error) {
	s := k.String()
	if s == "unknown" {
		return nil, common.Errorf(common.SerializeError, "cannot serialize unknown keep strategy %d", int8(k))
	}
	return []byte(s), nil
}

func (k *UniqueKeep) UnmarshalText(text []byte) error {
	for _, kk := range []UniqueKeep{KeepFirst, KeepLast, KeepAny, KeepNone} {
		if kk.String() == string(text) {
			*k = kk
			return nil
		}
	}
	return common.Errorf(common.SerializeError, "unknown keep strategy %q", string(text))
}

// DistinctOptions configures duplicate elimination. An empty Subset means
// all columns participate.
type DistinctOptions struct {
	Subset        []string   `json:"subset,omitempty"`
	Keep          UniqueKeep `json:"keep"`
	MaintainOrder bool       `json:"maintain_order"`
	Slice         *SliceArgs `json:"slice,omitempty"`
}

// Distinct drops duplicate rows.
type Distinct struct {
	Input   common.Node     `json:"input"`
	Options DistinctOptions `json:"options"`
}

// MapFunction applies a structural function (rename, drop, row index, hint)
// to its input. The function set is closed; see function.go.
type MapFunction struct {
	Input    common.Node `json:"input"`
	Function Function    `json:"function"`
}

// UnionOptions configures vertical concatenation.
type UnionOptions struct {
	MaintainOrder bool       `json:"maintain_order"`
	Parallel      bool       `json:"parallel"`
	Rechunk       bool       `json:"rechunk"`
	Slice         *SliceArgs `json:"slice,omitempty"`
}

// Union concatenates its inputs vertically. All inputs share one schema.
type Union struct {
	Inputs  []common.Node `json:"inputs"`
	Options UnionOptions  `json:"options"`
}

// HConcatOptions configures horizontal concatenation.
type HConcatOptions struct {
	Parallel bool `json:"parallel"`
}

// HConcat concatenates its inputs horizontally into one wider frame.
type HConcat struct {
	Inputs  []common.Node  `json:"inputs"`
	Schema  *frame.Schema  `json:"schema"`
	Options HConcatOptions `json:"options"`
}

// ExtContext extends the primary input with columns resolved against extra
// context plans.
type ExtContext struct {
	Input    common.Node   `json:"input"`
	Contexts []common.Node `json:"contexts"`
	Schema   *frame.Schema `json:"schema"`
}

// Sink writes its input to a destination; see sink.go for the target set.
type Sink struct {
	Input  common.Node `json:"input"`
	Target SinkTarget  `json:"target"`
}

// SinkMultiple fans several sink plans into one job.
type SinkMultiple struct {
	Inputs []common.Node `json:"inputs"`
}

// MergeSorted merges two inputs that are each sorted on Key, preserving the
// sort order.
type MergeSorted struct {
	InputLeft  common.Node `json:"input_left"`
	InputRight common.Node `json:"input_right"`
	Key        string      `json:"key"`
}

// Invalid is the poisoned node. No constructor in this module produces one;
// reaching it in any traversal is a programming error and panics.
type Invalid struct{}

func (Slice) irNode()            {}
func (Filter) irNode()           {}
func (Scan) irNode()             {}
func (DataFrameScan) irNode()    {}
func (PlaceholderScan) irNode()  {}
func (SimpleProjection) irNode() {}
func (Select) irNode()           {}
func (Sort) irNode()             {}
func (Cache) irNode()            {}
func (GroupBy) irNode()          {}
func (Join) irNode()             {}
func (HStack) irNode()           {}
func (Distinct) irNode()         {}
func (MapFunction) irNode()      {}
func (Union) irNode()            {}
func (HConcat) irNode()          {}
func (ExtContext) irNode()       {}
func (Sink) irNode()             {}
func (SinkMultiple) irNode()     {}
func (MergeSorted) irNode()      {}
func (Invalid) irNode()          {}

// OpName returns the stable variant name of an operator, used as its
// serialization tag and in diagnostics.
func OpName(op IR) string {
	switch op.(type) {
	case Slice:
		return "Slice"
	case Filter:
		return "Filter"
	case Scan:
		return "Scan"
	case DataFrameScan:
		return "DataFrameScan"
	case PlaceholderScan:
		return "PlaceholderScan"
	case SimpleProjection:
		return "SimpleProjection"
	case Select:
		return "Select"
	case Sort:
		return "Sort"
	case Cache:
		return "Cache"
	case GroupBy:
		return "GroupBy"
	case Join:
		return "Join"
	case HStack:
		return "HStack"
	case Distinct:
		return "Distinct"
	case MapFunction:
		return "MapFunction"
	case Union:
		return "Union"
	case HConcat:
		return "HConcat"
	case ExtContext:
		return "ExtContext"
	case Sink:
		return "Sink"
	case SinkMultiple:
		return "SinkMultiple"
	case MergeSorted:
		return "MergeSorted"
	case Invalid:
		return "Invalid"
	}
	common.Assert(false, "unknown plan variant %T", op)
	return ""
}

type FileFormat int8

const (
	FormatCSV FileFormat = iota
	FormatParquet
	FormatIPC
	FormatNDJSON
)

func (f FileFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	case FormatIPC:
		return "ipc"
	case FormatNDJSON:
		return "ndjson"
	}
	return "unknown"
}

func (f FileFormat) MarshalText() ([]byte, error) {
	s := f.String()
	if s == "unknown" {
		return nil, common.Errorf(common.SerializeError, "cannot serialize unknown file format %d", int8(f))
	}
	return []byte(s), nil
}

func (f *FileFormat) UnmarshalText(text []byte) error {
	for _, ff := range []FileFormat{FormatCSV, FormatParquet, FormatIPC, FormatNDJSON} {
		if ff.String() == string(text) {
			*f = ff
			return nil
		}
	}
	return common.Errorf(common.SerializeError, "unknown file format %q", string(text))
}
