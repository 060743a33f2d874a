package i18n

import "testing"

func TestTranslator_DefaultAndPersian(t *testing.T) {
	// default is en
	if msg := T("empty_schema_name", nil); msg == "empty_schema_name" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("fa")
	if msg := T("empty_schema_name", nil); msg == "form name is required" {
		t.Fatalf("expected persian message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	msg := T("missing_required_field", map[string]string{"field": "qty"})
	if msg != "qty is required" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code echo, got %q", msg)
	}
	SetLanguage("xx")
	if msg := T("empty_field_name", nil); msg != "all fields need a name" {
		t.Fatalf("unsupported language should fall back to en, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator_Custom(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if msg := T("type_mismatch", nil); msg != "X:type_mismatch" {
		t.Fatalf("custom translator not used: %q", msg)
	}
}
