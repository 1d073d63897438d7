package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/planardb/planar/common"
)

// Function is the payload of a MapFunction node: a structural transformation
// whose effect on the schema is known without evaluating anything. The
// variant set is closed, like the operator set itself.
type Function interface {
	fmt.Stringer
	functionIR()
}

// Rename gives existing columns new names. Existing and New run parallel.
type Rename struct {
	Existing []string `json:"existing"`
	New      []string `json:"new"`
}

// DropColumns removes the named columns.
type DropColumns struct {
	Columns []string `json:"columns"`
}

// RowIndex prepends a row-numbering column starting at Offset.
type RowIndex struct {
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
}

// SortedHint asserts, without checking, that a column arrives sorted.
type SortedHint struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
	NullsLast  bool   `json:"nulls_last"`
}

// Hint attaches ordering facts an executor may exploit. It never changes
// the schema or the data.
type Hint struct {
	Sorted []SortedHint `json:"sorted"`
}

func (Rename) functionIR()      {}
func (DropColumns) functionIR() {}
func (RowIndex) functionIR()    {}
func (Hint) functionIR()        {}

func (r Rename) String() string {
	pairs := make([]string, len(r.Existing))
	for i, old := range r.Existing {
		pairs[i] = old + " -> " + r.New[i]
	}
	return fmt.Sprintf("RENAME[%s]", strings.Join(pairs, ", "))
}

func (d DropColumns) String() string {
	return fmt.Sprintf("DROP[%s]", strings.Join(d.Columns, ", "))
}

func (r RowIndex) String() string {
	return fmt.Sprintf("ROW_INDEX[%s, offset: %d]", r.Name, r.Offset)
}

func (h Hint) String() string {
	parts := make([]string, len(h.Sorted))
	for i, s := range h.Sorted {
		dir := "asc"
		if s.Descending {
			dir = "desc"
		}
		parts[i] = s.Column + " " + dir
	}
	return fmt.Sprintf("HINT[sorted: %s]", strings.Join(parts, ", "))
}

func functionName(fn Function) string {
	switch fn.(type) {
	case Rename:
		return "Rename"
	case DropColumns:
		return "DropColumns"
	case RowIndex:
		return "RowIndex"
	case Hint:
		return "Hint"
	}
	common.Assert(false, "unknown function variant %T", fn)
	return ""
}

// functionEnvelope tags the function variant on the wire, since a Function
// field cannot be decoded without knowing its concrete type.
type functionEnvelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encodeFunction(fn Function) (json.RawMessage, error) {
	payload, err := json.Marshal(fn)
	if err != nil {
		return nil, err
	}
	return json.Marshal(functionEnvelope{Kind: functionName(fn), Payload: payload})
}

func decodeFunction(data json.RawMessage) (Function, error) {
	var env functionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "Rename":
		var v Rename
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		if len(v.Existing) != len(v.New) {
			return nil, common.Errorf(common.SerializeError,
				"rename has %d existing names and %d new names", len(v.Existing), len(v.New))
		}
		return v, nil
	case "DropColumns":
		var v DropColumns
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "RowIndex":
		var v RowIndex
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Hint":
		var v Hint
		if err := json.Unmarshal(env.Payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, common.Errorf(common.SerializeError, "unknown function tag %q", env.Kind)
}

func (m MapFunction) MarshalJSON() ([]byte, error) {
	fn, err := encodeFunction(m.Function)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Input    common.Node     `json:"input"`
		Function json.RawMessage `json:"function"`
	}{m.Input, fn})
}

func (m *MapFunction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Input    common.Node     `json:"input"`
		Function json.RawMessage `json:"function"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fn, err := decodeFunction(raw.Function)
	if err != nil {
		return err
	}
	m.Input = raw.Input
	m.Function = fn
	return nil
}
