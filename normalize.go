package formkit

import (
	"slices"
	"time"
)

// RemoteField is a field definition as the store returns it. Every
// attribute may be missing; Order is nil when the store omitted it.
type RemoteField struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options"`
	Order    *int      `json:"order,omitempty"`
}

// RemoteForm is the store's representation of a schema. FieldsJSON holds
// the ordered definitions; Fields is the legacy per-row list.
type RemoteForm struct {
	ID         SchemaID      `json:"id"`
	Name       string        `json:"name"`
	Fields     []RemoteField `json:"fields,omitempty"`
	FieldsJSON []RemoteField `json:"fields_json,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Schema normalizes rf. See FromRemote.
func (rf RemoteForm) Schema() Schema {
	return FromRemote(rf.ID, rf.Name, rf.FieldsJSON, rf.Fields, rf.CreatedAt)
}

// FromRemote builds a Schema from the store's representation. fieldsJSON is
// preferred when non-empty, otherwise legacy is used. Each field gets a
// fresh client id, a missing type becomes text, a missing order defaults to
// the array index, and the result is stably sorted by order and renumbered
// so Order matches position. Unknown types are kept for validation to
// report.
func FromRemote(id SchemaID, name string, fieldsJSON, legacy []RemoteField, createdAt time.Time) Schema {
	src := fieldsJSON
	if len(src) == 0 {
		src = legacy
	}
	type ranked struct {
		f    FieldDefinition
		rank int
	}
	rows := make([]ranked, 0, len(src))
	for i, rf := range src {
		f := NewField()
		f.Name = rf.Name
		if rf.Type != "" {
			f.Type = rf.Type
		}
		f.Required = rf.Required
		f.Options = cloneOptions(rf.Options)
		rank := i
		if rf.Order != nil {
			rank = *rf.Order
		}
		rows = append(rows, ranked{f: f, rank: rank})
	}
	slices.SortStableFunc(rows, func(a, b ranked) int { return a.rank - b.rank })
	fields := make([]FieldDefinition, len(rows))
	for i, r := range rows {
		fields[i] = r.f
	}
	return Schema{ID: id, Name: name, Fields: Renumber(fields), CreatedAt: createdAt}
}

// RepairFields makes a field list restored from local storage safe to edit:
// blank or repeated client ids are replaced, nil options become empty, a
// blank type becomes text, and Order is renumbered by position.
func RepairFields(fields []FieldDefinition) []FieldDefinition {
	seen := make(map[string]struct{}, len(fields))
	out := make([]FieldDefinition, len(fields))
	for i, f := range fields {
		f = f.Clone()
		if _, dup := seen[f.ClientID]; f.ClientID == "" || dup {
			f.ClientID = NewField().ClientID
		}
		seen[f.ClientID] = struct{}{}
		if f.Type == "" {
			f.Type = TypeText
		}
		out[i] = f
	}
	return Renumber(out)
}
