// Package bind maps a published schema to value editors and collects a
// data record against it.
package bind

import (
	"context"
	"fmt"

	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/codec"
)

// EditorKind is the shape of input an editor collects.
type EditorKind int

const (
	// SingleLine is free text, possibly constrained by InputType.
	SingleLine EditorKind = iota
	// Choice picks one of Options.
	Choice
)

func (k EditorKind) String() string {
	if k == Choice {
		return "choice"
	}
	return "single_line"
}

// Editor is the input contract for one field.
type Editor struct {
	Field     string
	Type      formkit.FieldType
	Kind      EditorKind
	InputType string // "text", "number" or "date"; empty for Choice
	Required  bool
	Options   []string
	Order     int
}

// Editors returns one editor per field, in field order.
func Editors(s formkit.Schema) []Editor {
	fields := s.OrderedFields()
	out := make([]Editor, 0, len(fields))
	for _, f := range fields {
		out = append(out, EditorFor(f))
	}
	return out
}

// EditorFor builds the editor of a single field. Unknown types fall back to
// a text input.
func EditorFor(f formkit.FieldDefinition) Editor {
	e := Editor{Field: f.Name, Type: f.Type, Required: f.Required, Order: f.Order}
	switch f.Type {
	case formkit.TypeSelect:
		e.Kind = Choice
		e.Options = append([]string{}, f.Options...)
	case formkit.TypeNumber:
		e.InputType = "number"
	case formkit.TypeDate:
		e.InputType = "date"
	default:
		e.InputType = "text"
	}
	return e
}

// Parse converts raw input into the field's value. Empty input is the zero
// Value, which ApplyEdit treats as a cleared field. Number input must be a
// decimal; dates are canonicalized to YYYY-MM-DD. Choices are not checked
// against Options here; Validate does that.
func (e Editor) Parse(input string) (formkit.Value, error) {
	if input == "" {
		return formkit.Value{}, nil
	}
	ctx := context.Background()
	path := formkit.Root().Field("data").Field(e.Field)
	switch e.Type {
	case formkit.TypeNumber:
		n, err := codec.Number().Decode(ctx, input)
		if err != nil {
			return formkit.Value{}, reroot(err, path, e.Field)
		}
		return formkit.Number(n), nil
	case formkit.TypeDate:
		d, err := codec.CanonicalDate(ctx, input)
		if err != nil {
			return formkit.Value{}, reroot(err, path, e.Field)
		}
		return formkit.Date(d), nil
	case formkit.TypeSelect:
		v, _ := codec.Identity().Decode(ctx, input)
		return formkit.Choice(v), nil
	default:
		v, _ := codec.Identity().Decode(ctx, input)
		return formkit.Text(v), nil
	}
}

// reroot moves codec issues from "/" to the field's data path.
func reroot(err error, p formkit.PathRef, field string) error {
	iss, ok := formkit.AsIssues(err)
	if !ok {
		return fmt.Errorf("%s: %w", field, err)
	}
	out := make(formkit.Issues, len(iss))
	for i, it := range iss {
		it.Path = p.Pointer()
		it.Field = field
		if it.Params == nil {
			it.Params = map[string]any{}
		}
		it.Params["field"] = field
		out[i] = it
	}
	return out
}

// Format renders v for the editor's input. Numbers use the shortest
// decimal form.
func (e Editor) Format(v formkit.Value) string {
	if v.Kind() == formkit.KindNone {
		return ""
	}
	return v.String()
}
