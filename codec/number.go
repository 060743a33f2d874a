package codec

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// Number returns a Codec between decimal strings and float64. NaN and
// infinities are rejected; Encode uses the shortest representation.
func Number() Codec[string, float64] { return numberCodec{} }

type numberCodec struct{}

func (numberCodec) Decode(_ context.Context, a string) (float64, error) {
	s := strings.TrimSpace(a)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, formatIssue("number", a, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, formatIssue("number", a, nil)
	}
	return f, nil
}

func (numberCodec) Encode(_ context.Context, b float64) (string, error) {
	return strconv.FormatFloat(b, 'f', -1, 64), nil
}
