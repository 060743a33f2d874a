package formkit

import (
	"bytes"
	"slices"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// SchemaID is the remote identity of a published schema. The store issues
// integer ids; SchemaID accepts JSON numbers or strings and writes numeric
// ids back as numbers.
type SchemaID string

// String returns the id as text.
func (id SchemaID) String() string { return string(id) }

func (id SchemaID) numeric() bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// MarshalJSON implements json.Marshaler.
func (id SchemaID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *SchemaID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = SchemaID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = SchemaID(n.String())
	return nil
}

// Schema is a named, ordered collection of fields. Fields[i].Order == i
// holds for every schema produced by this package.
type Schema struct {
	ID        SchemaID
	Name      string
	Fields    []FieldDefinition
	CreatedAt time.Time
}

// Published reports whether the schema has a remote identity.
func (s Schema) Published() bool { return s.ID != "" }

// Clone returns a deep copy of s.
func (s Schema) Clone() Schema {
	out := s
	out.Fields = cloneFields(s.Fields)
	return out
}

// Field looks up a field by its remote name.
func (s Schema) Field(name string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// OrderedFields returns a copy of the fields sorted by Order. The sort is
// stable so ties keep their sequence position.
func (s Schema) OrderedFields() []FieldDefinition {
	out := cloneFields(s.Fields)
	slices.SortStableFunc(out, func(a, b FieldDefinition) int { return a.Order - b.Order })
	return out
}

// Equal compares name, id and fields.
func (s Schema) Equal(o Schema) bool {
	return s.ID == o.ID && s.Name == o.Name &&
		slices.EqualFunc(s.Fields, o.Fields, FieldDefinition.Equal)
}

func cloneFields(in []FieldDefinition) []FieldDefinition {
	if in == nil {
		return nil
	}
	out := make([]FieldDefinition, len(in))
	for i, f := range in {
		out[i] = f.Clone()
	}
	return out
}
