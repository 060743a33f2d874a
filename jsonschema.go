package formkit

import (
	js "github.com/reoring/formkit/jsonschema"
)

// JSONSchema projects s into a JSON Schema object describing its instance
// data. Select fields become string enums; date fields use format "date".
// Fields with a blank name are skipped.
func (s Schema) JSONSchema() *js.Schema {
	out := &js.Schema{
		Schema:               js.Draft2020,
		Title:                s.Name,
		Type:                 "object",
		Properties:           make(map[string]*js.Schema, len(s.Fields)),
		AdditionalProperties: false,
	}
	for _, f := range s.OrderedFields() {
		if f.Name == "" {
			continue
		}
		order := f.Order
		p := &js.Schema{Title: f.Name, Order: &order}
		switch f.Type {
		case TypeNumber:
			p.Type = "number"
		case TypeDate:
			p.Type = "string"
			p.Format = "date"
		case TypeSelect:
			p.Type = "string"
			p.Enum = NormalizeOptions(f.Options)
		default:
			p.Type = "string"
		}
		out.Properties[f.Name] = p
		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}
