package formkit

import (
	"slices"
	"sort"
	"strings"
)

// FieldPayload is one field as the remote store receives it.
type FieldPayload struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options"`
	Order    int       `json:"order"`
}

// PublishPayload is the create/update body for a schema.
type PublishPayload struct {
	Name   string         `json:"name"`
	Fields []FieldPayload `json:"fields_data"`
}

// NormalizeOptions trims entries, drops blanks and removes duplicates,
// keeping the first occurrence.
func NormalizeOptions(opts []string) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		o = strings.TrimSpace(o)
		if o == "" || slices.Contains(out, o) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// ValidateSchema checks s before publish and returns the normalized payload.
// The error, when non-nil, is Issues in field order with the name issue
// first. s is never modified.
//
// An empty option list on a select field passes; every instance value for
// such a field is rejected later by ValidateInstance.
func ValidateSchema(s Schema) (PublishPayload, error) {
	var iss Issues
	root := Root()
	name := strings.TrimSpace(s.Name)
	if name == "" {
		iss = AppendIssues(iss, root.Field("name").Issue(CodeEmptySchemaName))
	}
	payload := PublishPayload{Name: name, Fields: make([]FieldPayload, 0, len(s.Fields))}
	seen := make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		at := root.Field("fields").Index(i)
		fname := strings.TrimSpace(f.Name)
		switch {
		case fname == "":
			iss = AppendIssues(iss, at.Field("name").Issue(CodeEmptyFieldName, "index", i))
		default:
			if first, dup := seen[fname]; dup {
				iss = AppendIssues(iss, at.Field("name").Issue(CodeDuplicateFieldName, "field", fname, "first", first))
			} else {
				seen[fname] = i
			}
		}
		if !f.Type.Valid() {
			iss = AppendIssues(iss, at.Field("type").Issue(CodeInvalidFieldType, "field", fname, "value", string(f.Type)))
		}
		opts := []string{}
		if f.Type == TypeSelect {
			opts = NormalizeOptions(f.Options)
		}
		payload.Fields = append(payload.Fields, FieldPayload{
			Name:     fname,
			Type:     f.Type,
			Required: f.Required,
			Options:  opts,
			Order:    i,
		})
	}
	if len(iss) > 0 {
		return PublishPayload{}, iss
	}
	return payload, nil
}

// ValidateInstance checks data against the published schema s and returns
// the normalized record. Empty values of optional fields are dropped; keys
// without a field follow opt.Unknown. Number and date payloads are not
// parsed here, editors own that.
func ValidateInstance(s Schema, data Record, opts ...ValidateOpt) (Record, error) {
	opt := lastOpt(opts)
	var iss Issues
	base := Root().Field("data")
	out := make(Record, len(data))
	known := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.OrderedFields() {
		known[f.Name] = struct{}{}
		at := base.Field(f.Name)
		v, present := data[f.Name]
		if !present || v.Empty() {
			if f.Required {
				iss = AppendIssues(iss, at.Issue(CodeMissingRequiredField, "field", f.Name))
			}
		} else if want := KindFor(f.Type); v.Kind() != want {
			iss = AppendIssues(iss, at.Issue(CodeTypeMismatch, "field", f.Name, "expected", string(f.Type), "got", v.Kind().String()))
		} else if f.Type == TypeSelect && !slices.Contains(NormalizeOptions(f.Options), v.String()) {
			iss = AppendIssues(iss, at.Issue(CodeInvalidOptionValue, "field", f.Name, "value", v.String()))
		} else {
			out[f.Name] = v
		}
		if opt.FailFast && len(iss) > 0 {
			return nil, iss
		}
	}
	extra := make([]string, 0)
	for k := range data {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		switch opt.Unknown {
		case UnknownStrict:
			it := base.Field(k).Issue(CodeUnknownField, "field", k)
			it.Cause = ErrUnknownField
			iss = AppendIssues(iss, it)
			if opt.FailFast {
				return nil, iss
			}
		case UnknownPassthrough:
			out[k] = data[k]
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}
