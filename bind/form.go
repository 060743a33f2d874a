package bind

import (
	"context"
	"errors"

	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/remote"
)

// ErrUnpublishedSchema is returned when data entry is attempted against a
// schema without a remote id.
var ErrUnpublishedSchema = errors.New("bind: schema is not published")

// Sink persists instances.
type Sink interface {
	CreateInstance(ctx context.Context, p remote.InstancePayload) (remote.Instance, error)
	UpdateInstance(ctx context.Context, id formkit.SchemaID, p remote.InstancePayload) (remote.Instance, error)
}

// Form collects one record against a published schema. It never changes
// the schema.
type Form struct {
	schema  formkit.Schema
	editors []Editor
	data    formkit.Record
	id      formkit.SchemaID // instance id when editing
	opts    []formkit.ValidateOpt
}

// New starts an empty record.
func New(s formkit.Schema, opts ...formkit.ValidateOpt) (*Form, error) {
	if !s.Published() {
		return nil, ErrUnpublishedSchema
	}
	s = s.Clone()
	return &Form{schema: s, editors: Editors(s), data: formkit.Record{}, opts: opts}, nil
}

// Edit loads an existing instance for editing. Values that do not fit their
// field types are dropped and reported; the form is still returned.
func Edit(s formkit.Schema, in remote.Instance, opts ...formkit.ValidateOpt) (*Form, error) {
	f, err := New(s, opts...)
	if err != nil {
		return nil, err
	}
	f.id = in.ID
	rec, err := in.Record(f.schema)
	f.data = rec
	return f, err
}

func (f *Form) Schema() formkit.Schema { return f.schema.Clone() }

func (f *Form) Editors() []Editor { return append([]Editor(nil), f.editors...) }

// InstanceID is empty for a new record.
func (f *Form) InstanceID() formkit.SchemaID { return f.id }

func (f *Form) editor(name string) (Editor, bool) {
	for _, e := range f.editors {
		if e.Field == name {
			return e, true
		}
	}
	return Editor{}, false
}

// Set parses input with the field's editor and stores it. On a parse error
// the record is unchanged.
func (f *Form) Set(name, input string) error {
	e, ok := f.editor(name)
	if !ok {
		return formkit.Issues{formkit.Root().Field("data").Field(name).Issue(formkit.CodeUnknownField, "field", name)}
	}
	v, err := e.Parse(input)
	if err != nil {
		return err
	}
	f.data = ApplyEdit(f.data, name, v)
	return nil
}

// SetValue stores an already typed value.
func (f *Form) SetValue(name string, v formkit.Value) { f.data = ApplyEdit(f.data, name, v) }

func (f *Form) Clear(name string) { f.data = ClearEdit(f.data, name) }

func (f *Form) Value(name string) formkit.Value { return f.data[name] }

// Input renders the current value of name for its editor.
func (f *Form) Input(name string) string {
	e, _ := f.editor(name)
	return e.Format(f.data[name])
}

// Data returns a copy of the record.
func (f *Form) Data() formkit.Record { return f.data.Clone() }

// Validate runs instance validation and returns the normalized record.
func (f *Form) Validate() (formkit.Record, error) {
	return formkit.ValidateInstance(f.schema, f.data, f.opts...)
}

// Submit validates, then creates the instance or updates the one being
// edited. On a validation or remote error nothing is submitted and the
// entered data stays in place.
func (f *Form) Submit(ctx context.Context, sink Sink) (remote.Instance, error) {
	rec, err := f.Validate()
	if err != nil {
		return remote.Instance{}, err
	}
	p := remote.InstancePayload{Form: f.schema.ID, Data: rec}
	var in remote.Instance
	if f.id != "" {
		in, err = sink.UpdateInstance(ctx, f.id, p)
	} else {
		in, err = sink.CreateInstance(ctx, p)
	}
	if err != nil {
		return remote.Instance{}, err
	}
	if in.ID != "" {
		f.id = in.ID
	}
	return in, nil
}
