// Package schemafile reads and writes schema documents and data records as
// YAML or JSON files.
package schemafile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	formkit "github.com/reoring/formkit"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatOf picks the format from a file extension. Anything that is not
// .json is read as YAML, which also accepts JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Document is the on-disk shape of a schema.
type Document struct {
	ID     formkit.SchemaID `yaml:"id,omitempty" json:"id,omitempty"`
	Name   string           `yaml:"name" json:"name"`
	Fields []DocumentField  `yaml:"fields" json:"fields"`
}

type DocumentField struct {
	Name     string            `yaml:"name" json:"name"`
	Type     formkit.FieldType `yaml:"type,omitempty" json:"type,omitempty"`
	Required bool              `yaml:"required,omitempty" json:"required,omitempty"`
	Options  []string          `yaml:"options,omitempty" json:"options,omitempty"`
	Order    *int              `yaml:"order,omitempty" json:"order,omitempty"`
}

// Schema normalizes the document the same way remote schemas are: fresh
// client ids, text as the default type, order defaulting to position.
func (d Document) Schema() formkit.Schema {
	rows := make([]formkit.RemoteField, len(d.Fields))
	for i, f := range d.Fields {
		rows[i] = formkit.RemoteField{Name: f.Name, Type: f.Type, Required: f.Required, Options: f.Options, Order: f.Order}
	}
	return formkit.FromRemote(d.ID, d.Name, rows, nil, time.Time{})
}

// DocumentOf renders s in field order.
func DocumentOf(s formkit.Schema) Document {
	d := Document{ID: s.ID, Name: s.Name, Fields: []DocumentField{}}
	for _, f := range s.OrderedFields() {
		order := f.Order
		d.Fields = append(d.Fields, DocumentField{Name: f.Name, Type: f.Type, Required: f.Required, Options: f.Options, Order: &order})
	}
	return d
}

// Parse decodes a schema document.
func Parse(data []byte, format Format) (formkit.Schema, error) {
	var d Document
	if err := unmarshal(data, format, &d); err != nil {
		return formkit.Schema{}, fmt.Errorf("parse schema document: %w", err)
	}
	return d.Schema(), nil
}

// Load reads a schema document from path.
func Load(path string) (formkit.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return formkit.Schema{}, err
	}
	return Parse(data, FormatOf(path))
}

// Marshal encodes s as a document.
func Marshal(s formkit.Schema, format Format) ([]byte, error) {
	d := DocumentOf(s)
	if format == JSON {
		return json.MarshalIndent(d, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseData decodes a data record. Timestamps are reduced to YYYY-MM-DD.
func ParseData(data []byte, format Format) (map[string]any, error) {
	raw := map[string]any{}
	if err := unmarshal(data, format, &raw); err != nil {
		return nil, fmt.Errorf("parse data document: %w", err)
	}
	for k, v := range raw {
		if t, ok := v.(time.Time); ok {
			raw[k] = t.Format("2006-01-02")
		}
	}
	return raw, nil
}

// LoadData reads a data record from path.
func LoadData(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseData(data, FormatOf(path))
}

// unmarshal rejects JSON documents with repeated keys; YAML decoding does
// that on its own.
func unmarshal(data []byte, format Format, v any) error {
	if format == JSON {
		if err := formkit.DetectDuplicateKeys(data); err != nil {
			return err
		}
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}
