// Package middleware holds the transport-neutral pieces shared by the HTTP
// adapters: request-scoped records and the issues response shape.
package middleware

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	formkit "github.com/reoring/formkit"
)

type ctxKeyRecord struct{}

// ContextWithRecord attaches a validated record to the context.
func ContextWithRecord(ctx context.Context, r formkit.Record) context.Context {
	return context.WithValue(ctx, ctxKeyRecord{}, r)
}

// RecordFromContext retrieves the record stored by ContextWithRecord.
func RecordFromContext(ctx context.Context) (formkit.Record, bool) {
	r, ok := ctx.Value(ctxKeyRecord{}).(formkit.Record)
	return r, ok
}

// IssueBody is the wire form of one issue.
type IssueBody struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(iss formkit.Issues) map[string]any {
	out := make([]IssueBody, len(iss))
	for i, it := range iss {
		out[i] = IssueBody{Path: it.Path, Code: it.Code, Field: it.Field, Message: it.Message, Params: it.Params}
	}
	return map[string]any{"issues": out}
}

// ErrMissingData is returned when a body has no "data" object.
var ErrMissingData = errors.New("middleware: body has no data object")

// DecodeData reads an instance body of the form {"data": {...}} and returns
// the record validated against s. Duplicate keys are rejected before
// decoding.
func DecodeData(body []byte, s formkit.Schema, opts ...formkit.ValidateOpt) (formkit.Record, error) {
	if err := formkit.DetectDuplicateKeys(body); err != nil {
		return nil, err
	}
	var p struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.Data == nil {
		return nil, ErrMissingData
	}
	rec, err := formkit.DecodeRecord(s, p.Data)
	if err != nil {
		return nil, err
	}
	return formkit.ValidateInstance(s, rec, opts...)
}
