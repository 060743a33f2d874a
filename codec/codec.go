// Package codec converts between raw editor input (always a string) and
// the typed payload a field stores.
package codec

import (
	"context"

	formkit "github.com/reoring/formkit"
)

// Codec performs bidirectional transformation between the wire
// representation A and the domain representation B.
type Codec[A, B any] interface {
	Decode(ctx context.Context, a A) (B, error) // A -> B, Issues on failure.
	Encode(ctx context.Context, b B) (A, error) // B -> canonical A.
}

func formatIssue(expected, input string, cause error) formkit.Issues {
	it := formkit.Root().Issue(formkit.CodeInvalidFormat, "expected", expected, "input", input)
	it.Cause = cause
	return formkit.Issues{it}
}
