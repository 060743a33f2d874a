package middleware_test

import (
	"context"
	"errors"
	"testing"

	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/middleware"
)

func stockSchema() formkit.Schema {
	return formkit.Schema{
		ID:   "1",
		Name: "stock",
		Fields: []formkit.FieldDefinition{
			{Name: "qty", Type: formkit.TypeNumber, Required: true, Order: 0},
			{Name: "color", Type: formkit.TypeSelect, Options: []string{"red", "blue"}, Order: 1},
		},
	}
}

func TestDecodeData(t *testing.T) {
	rec, err := middleware.DecodeData([]byte(`{"form":1,"data":{"qty":3,"color":"red"}}`), stockSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := rec["qty"].Float(); !ok || n != 3 {
		t.Fatalf("qty: %v", rec["qty"])
	}
}

func TestDecodeData_Issues(t *testing.T) {
	_, err := middleware.DecodeData([]byte(`{"data":{"color":"green"}}`), stockSchema())
	iss, ok := formkit.AsIssues(err)
	if !ok || !iss.Has(formkit.CodeMissingRequiredField) || !iss.Has(formkit.CodeInvalidOptionValue) {
		t.Fatalf("expected required and option issues, got %v", err)
	}
	body := middleware.ErrorPayload(iss)["issues"].([]middleware.IssueBody)
	if len(body) != len(iss) || body[0].Path == "" {
		t.Fatalf("payload: %+v", body)
	}
}

func TestDecodeData_DuplicateAndMissing(t *testing.T) {
	_, err := middleware.DecodeData([]byte(`{"data":{"qty":1,"qty":2}}`), stockSchema())
	if iss, ok := formkit.AsIssues(err); !ok || !iss.Has(formkit.CodeDuplicateKey) {
		t.Fatalf("expected duplicate_key, got %v", err)
	}
	if _, err := middleware.DecodeData([]byte(`{"form":1}`), stockSchema()); !errors.Is(err, middleware.ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
}

func TestRecordContext(t *testing.T) {
	if _, ok := middleware.RecordFromContext(context.Background()); ok {
		t.Fatalf("empty context has a record")
	}
	ctx := middleware.ContextWithRecord(context.Background(), formkit.Record{"qty": formkit.Number(1)})
	if r, ok := middleware.RecordFromContext(ctx); !ok || len(r) != 1 {
		t.Fatalf("record not found")
	}
}
