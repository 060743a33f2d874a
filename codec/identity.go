package codec

import "context"

// Identity returns a Codec[string,string] that passes text through
// unchanged. Text and select editors use it.
func Identity() Codec[string, string] { return identityCodec{} }

type identityCodec struct{}

func (identityCodec) Decode(_ context.Context, a string) (string, error) { return a, nil }
func (identityCodec) Encode(_ context.Context, b string) (string, error) { return b, nil }
