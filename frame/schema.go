package frame

import (
	"encoding/json"
	"strings"

	"github.com/planardb/planar/common"
)

// Field is a named, typed column slot in a Schema.
type Field struct {
	Name string      `json:"name"`
	Type common.Type `json:"type"`
}

// Schema is an ordered set of uniquely named fields. Order is significant:
// two schemas with the same fields in different orders are different schemas.
// A Schema is immutable once built, so plans and frames share pointers to it
// freely.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from the given fields. Duplicate or untyped
// fields are a programming error; paths that assemble schemas from external
// input validate before calling.
func NewSchema(fields []Field) *Schema {
	s := &Schema{
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range s.fields {
		_, dup := s.index[f.Name]
		common.Assert(!dup, "schema: duplicate column %q", f.Name)
		common.Assert(f.Type != common.DefaultType, "schema: column %q has no type", f.Name)
		s.index[f.Name] = i
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the field at position i.
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the field list, safe for callers to rearrange.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Names returns the column names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named column and whether it exists.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Equal reports whether both schemas have the same fields in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if other.fields[i] != f {
			return false
		}
	}
	return true
}

// String renders the schema as [name: type, ...].
func (s *Schema) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.String())
	}
	b.WriteByte(']')
	return b.String()
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields)
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return common.Errorf(common.SerializeError, "schema: duplicate column %q", f.Name)
		}
		if f.Type == common.DefaultType {
			return common.Errorf(common.SerializeError, "schema: column %q has no type", f.Name)
		}
		seen[f.Name] = true
	}
	*s = *NewSchema(fields)
	return nil
}
