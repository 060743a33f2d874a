package codec

import (
	"context"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date form, as produced by HTML date
// inputs.
const DateLayout = "2006-01-02"

// Date returns a Codec between date strings and time.Time. Decode accepts
// YYYY-MM-DD, RFC3339 and RFC3339Nano; Encode always writes YYYY-MM-DD in
// the value's own location.
func Date() Codec[string, time.Time] { return dateCodec{} }

type dateCodec struct{}

func (dateCodec) Decode(_ context.Context, a string) (time.Time, error) {
	t, err := parseDate(strings.TrimSpace(a))
	if err != nil {
		return time.Time{}, formatIssue("date", a, err)
	}
	return t, nil
}

func (dateCodec) Encode(_ context.Context, b time.Time) (string, error) {
	return b.Format(DateLayout), nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t, nil
	}
	// Accept RFC3339Nano (trailing zeros optional)
	if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
		return t2, nil
	}
	if t3, err3 := time.Parse(time.RFC3339, s); err3 == nil {
		return t3, nil
	}
	return time.Time{}, err
}

// CanonicalDate decodes s and re-encodes it as YYYY-MM-DD.
func CanonicalDate(ctx context.Context, s string) (string, error) {
	c := Date()
	t, err := c.Decode(ctx, s)
	if err != nil {
		return "", err
	}
	return c.Encode(ctx, t)
}
