package schemafile_test

import (
	"os"
	"path/filepath"
	"testing"

	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/schemafile"
)

const stockYAML = `
id: 7
name: stock
fields:
  - name: color
    type: select
    options: [red, blue]
    order: 1
  - name: qty
    type: number
    required: true
    order: 0
  - name: note
`

func TestParse_YAML(t *testing.T) {
	s, err := schemafile.Parse([]byte(stockYAML), schemafile.YAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.ID != "7" || s.Name != "stock" || len(s.Fields) != 3 {
		t.Fatalf("schema: %+v", s)
	}
	if s.Fields[0].Name != "qty" || s.Fields[1].Name != "color" || s.Fields[2].Type != formkit.TypeText {
		t.Fatalf("fields not ordered/defaulted: %+v", s.Fields)
	}
	if !formkit.OrderDense(s.Fields) {
		t.Fatalf("orders not dense")
	}
}

func TestLoad_JSONByExtension(t *testing.T) {
	p := filepath.Join(t.TempDir(), "s.json")
	_ = os.WriteFile(p, []byte(`{"name":"n","fields":[{"name":"d","type":"date"}]}`), 0o600)
	s, err := schemafile.Load(p)
	if err != nil || s.Published() || s.Fields[0].Type != formkit.TypeDate {
		t.Fatalf("load json: %+v %v", s, err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	s, _ := schemafile.Parse([]byte(stockYAML), schemafile.YAML)
	for _, f := range []schemafile.Format{schemafile.YAML, schemafile.JSON} {
		b, err := schemafile.Marshal(s, f)
		if err != nil {
			t.Fatalf("%s marshal: %v", f, err)
		}
		back, err := schemafile.Parse(b, f)
		if err != nil {
			t.Fatalf("%s parse: %v\n%s", f, err, b)
		}
		if back.Name != s.Name || back.ID != s.ID || len(back.Fields) != len(s.Fields) {
			t.Fatalf("%s round trip: %+v", f, back)
		}
		for i := range s.Fields {
			a, b := s.Fields[i], back.Fields[i]
			if a.Name != b.Name || a.Type != b.Type || a.Required != b.Required || a.Order != b.Order {
				t.Fatalf("%s field %d: %+v vs %+v", f, i, a, b)
			}
		}
	}
}

func TestParseData(t *testing.T) {
	raw, err := schemafile.ParseData([]byte("qty: 5\ncolor: red\nexpires: 2025-01-01\n"), schemafile.YAML)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := schemafile.Parse([]byte(stockYAML+"  - name: expires\n    type: date\n"), schemafile.YAML)
	rec, err := formkit.DecodeRecord(s, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f, _ := rec["qty"].Float(); f != 5 || rec["expires"].String() != "2025-01-01" {
		t.Fatalf("record: %v", rec)
	}
}

func TestParse_JSONDuplicateKey(t *testing.T) {
	_, err := schemafile.Parse([]byte(`{"name":"a","fields":[],"fields":[{"name":"x"}]}`), schemafile.JSON)
	iss, ok := formkit.AsIssues(err)
	if !ok || iss[0].Code != formkit.CodeDuplicateKey || iss[0].Path != "/fields" {
		t.Fatalf("expected duplicate_key at /fields, got %v", err)
	}
}

func TestParse_YAMLDuplicateKey(t *testing.T) {
	if _, err := schemafile.Parse([]byte("name: a\nname: b\n"), schemafile.YAML); err == nil {
		t.Fatalf("yaml duplicate key accepted")
	}
}
