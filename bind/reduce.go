package bind

import formkit "github.com/reoring/formkit"

// ApplyEdit returns a copy of data with name set to v. data is never
// modified. An empty Value removes the key.
func ApplyEdit(data formkit.Record, name string, v formkit.Value) formkit.Record {
	out := data.Clone()
	if out == nil {
		out = formkit.Record{}
	}
	if v.Kind() == formkit.KindNone {
		delete(out, name)
		return out
	}
	out[name] = v
	return out
}

// ClearEdit returns a copy of data without name.
func ClearEdit(data formkit.Record, name string) formkit.Record {
	return ApplyEdit(data, name, formkit.Value{})
}
