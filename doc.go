// Package formkit is a schema-driven form engine. It provides:
//
//   - An in-memory field schema model (FieldDefinition, Schema) with a
//     dense, zero-based Order invariant
//   - Pure ordered mutations (AddField, PatchField, RemoveField, MoveField)
//   - Schema validation before publish and instance validation at data
//     entry, reported through Issues (JSON Pointer, code, message)
//   - Tagged instance values (Text, Number, Date, Choice) keyed by field type
//   - Normalization of the remote store's representation (FromRemote)
//
// Drafts live under draft/, editing sessions under session/, data entry
// under bind/, the REST collaborator under remote/ and the CLI under
// cmd/formkit.
//
// Typical usage:
//
//	fields := formkit.AddField(nil, formkit.End)
//	fields = formkit.PatchField(fields, fields[0].ClientID, formkit.Patch().Name("qty").Type(formkit.TypeNumber))
//	payload, err := formkit.ValidateSchema(formkit.Schema{Name: "stock", Fields: fields})
//
//	rec, err := formkit.ValidateInstance(published, formkit.Record{"qty": formkit.Number(5)})
package formkit
