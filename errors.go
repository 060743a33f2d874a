package formkit

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes for schema validation (before publish).
const (
	CodeEmptySchemaName    = "empty_schema_name"
	CodeEmptyFieldName     = "empty_field_name"
	CodeInvalidFieldType   = "invalid_field_type"
	CodeDuplicateFieldName = "duplicate_field_name"
)

// Issue codes for instance validation (at data-entry time).
const (
	CodeMissingRequiredField = "missing_required_field"
	CodeInvalidOptionValue   = "invalid_option_value"
	CodeTypeMismatch         = "type_mismatch"
	CodeUnknownField         = "unknown_field"
	// CodeInvalidFormat is reported by editor codecs, not by ValidateInstance.
	CodeInvalidFormat = "invalid_format"
)

// CodeDuplicateKey marks a JSON object key that appears more than once.
const CodeDuplicateKey = "duplicate_key"

// ErrUnknownField is the cause attached to unknown_field issues.
var ErrUnknownField = errors.New("formkit: field not defined in schema")

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /fields/2/name or /data/qty).
	Code    string // One of the codes listed above.
	Field   string // Field name the issue refers to, when there is one.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"got":"green"}) for i18n
	// and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. missing_required_field at /data/qty
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// First returns the issue shown to users when only one message fits.
func (iss Issues) First() (Issue, bool) {
	if len(iss) == 0 {
		return Issue{}, false
	}
	return iss[0], true
}

// Has reports whether any issue carries the given code.
func (iss Issues) Has(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IsSchemaCode reports whether code belongs to schema validation.
func IsSchemaCode(code string) bool {
	switch code {
	case CodeEmptySchemaName, CodeEmptyFieldName, CodeInvalidFieldType, CodeDuplicateFieldName:
		return true
	}
	return false
}

// IsInstanceCode reports whether code belongs to instance validation.
func IsInstanceCode(code string) bool {
	switch code {
	case CodeMissingRequiredField, CodeInvalidOptionValue, CodeTypeMismatch, CodeUnknownField:
		return true
	}
	return false
}
