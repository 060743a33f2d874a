package formkit

// Direction selects the neighbor MoveField swaps with.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// End makes AddField append.
const End = -1

// Renumber returns a copy of fields with Order set to each position.
func Renumber(fields []FieldDefinition) []FieldDefinition {
	out := make([]FieldDefinition, len(fields))
	for i, f := range fields {
		f = f.Clone()
		f.Order = i
		out[i] = f
	}
	return out
}

// AddField inserts a new default field right after position at, or at the
// end when at is negative or past the last index.
func AddField(fields []FieldDefinition, at int) []FieldDefinition {
	return InsertField(fields, at, NewField())
}

// InsertField is AddField with a caller supplied field.
func InsertField(fields []FieldDefinition, at int, f FieldDefinition) []FieldDefinition {
	next := make([]FieldDefinition, 0, len(fields)+1)
	if at < 0 || at >= len(fields) {
		next = append(next, fields...)
		next = append(next, f)
	} else {
		next = append(next, fields[:at+1]...)
		next = append(next, f)
		next = append(next, fields[at+1:]...)
	}
	return Renumber(next)
}

// IndexOf returns the position of cid, or -1.
func IndexOf(fields []FieldDefinition, cid string) int {
	for i, f := range fields {
		if f.ClientID == cid {
			return i
		}
	}
	return -1
}

// PatchField merges p into the field with the given client id. An unknown
// id returns fields itself; the row may have been removed earlier in the
// same session.
func PatchField(fields []FieldDefinition, cid string, p FieldPatch) []FieldDefinition {
	i := IndexOf(fields, cid)
	if i == -1 {
		return fields
	}
	next := cloneFields(fields)
	next[i] = next[i].Apply(p)
	return next
}

// RemoveField drops the field with the given client id and renumbers the
// rest. An unknown id returns fields itself.
func RemoveField(fields []FieldDefinition, cid string) []FieldDefinition {
	i := IndexOf(fields, cid)
	if i == -1 {
		return fields
	}
	next := make([]FieldDefinition, 0, len(fields)-1)
	next = append(next, fields[:i]...)
	next = append(next, fields[i+1:]...)
	return Renumber(next)
}

// MoveField swaps the field with its neighbor in dir. Unknown ids and moves
// past either boundary return fields itself. Only the two swapped entries
// change their Order.
func MoveField(fields []FieldDefinition, cid string, dir Direction) []FieldDefinition {
	i := IndexOf(fields, cid)
	if i == -1 {
		return fields
	}
	to := i + int(dir)
	if dir != Up && dir != Down || to < 0 || to >= len(fields) {
		return fields
	}
	next := cloneFields(fields)
	next[i], next[to] = next[to], next[i]
	next[i].Order = i
	next[to].Order = to
	return next
}

// OrderDense reports whether Order matches position for every field.
func OrderDense(fields []FieldDefinition) bool {
	for i, f := range fields {
		if f.Order != i {
			return false
		}
	}
	return true
}
