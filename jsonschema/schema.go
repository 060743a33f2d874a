package jsonschema

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Core
	Schema string   `json:"$schema,omitempty"`
	Title  string   `json:"title,omitempty"`
	Type   string   `json:"type,omitempty"`
	Format string   `json:"format,omitempty"`
	Enum   []string `json:"enum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Extension: position of a property in the rendered form.
	Order *int `json:"x-order,omitempty"`
}

// Draft2020 is the meta-schema URI written on exported documents.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"
