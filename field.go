package formkit

import (
	"slices"

	"github.com/google/uuid"
)

// FieldType is the closed enumeration of field kinds.
type FieldType string

const (
	TypeText   FieldType = "text"
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
	TypeSelect FieldType = "select"
)

// FieldTypes lists every valid FieldType in display order.
var FieldTypes = []FieldType{TypeText, TypeNumber, TypeDate, TypeSelect}

// Valid reports whether t is one of the four known types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeSelect:
		return true
	}
	return false
}

// FieldDefinition is one schema field. ClientID is a local key that stays
// stable across reorders and is never sent to the remote store.
type FieldDefinition struct {
	ClientID string    `json:"cid"`
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options"`
	Order    int       `json:"order"`
}

// NewField returns a default field with a freshly generated client id.
func NewField() FieldDefinition {
	return NewFieldWithID(uuid.NewString())
}

// NewFieldWithID returns a default field using cid as its client id.
func NewFieldWithID(cid string) FieldDefinition {
	return FieldDefinition{
		ClientID: cid,
		Type:     TypeText,
		Options:  []string{},
	}
}

// Clone returns a copy that shares no memory with f.
func (f FieldDefinition) Clone() FieldDefinition {
	f.Options = cloneOptions(f.Options)
	return f
}

// Equal compares every attribute, options element-wise.
func (f FieldDefinition) Equal(o FieldDefinition) bool {
	return f.ClientID == o.ClientID &&
		f.Name == o.Name &&
		f.Type == o.Type &&
		f.Required == o.Required &&
		f.Order == o.Order &&
		slices.Equal(f.Options, o.Options)
}

// Apply merges p into a copy of f. ClientID and Order are never touched.
// Switching the type away from select keeps the stored options; they are
// cleared when the schema is validated for publish.
func (f FieldDefinition) Apply(p FieldPatch) FieldDefinition {
	out := f.Clone()
	if p.name != nil {
		out.Name = *p.name
	}
	if p.typ != nil {
		out.Type = *p.typ
	}
	if p.required != nil {
		out.Required = *p.required
	}
	if p.options != nil {
		out.Options = cloneOptions(*p.options)
	}
	return out
}

// FieldPatch is a partial set of field attributes. Build one with Patch.
type FieldPatch struct {
	name     *string
	typ      *FieldType
	required *bool
	options  *[]string
}

// Patch starts an empty FieldPatch.
func Patch() FieldPatch { return FieldPatch{} }

// Name sets the field name.
func (p FieldPatch) Name(s string) FieldPatch { p.name = &s; return p }

// Type sets the field type.
func (p FieldPatch) Type(t FieldType) FieldPatch { p.typ = &t; return p }

// Required sets the required flag.
func (p FieldPatch) Required(b bool) FieldPatch { p.required = &b; return p }

// Options replaces the option list.
func (p FieldPatch) Options(opts ...string) FieldPatch {
	o := cloneOptions(opts)
	p.options = &o
	return p
}

// Empty reports whether the patch changes nothing.
func (p FieldPatch) Empty() bool {
	return p.name == nil && p.typ == nil && p.required == nil && p.options == nil
}

func cloneOptions(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
